// Package app bootstraps a griddle process: logging, configuration,
// in-process stations, the station client set, the orchestration
// engine, the HTTP API, and configuration hot reload.
package app
