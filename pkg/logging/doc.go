// Package logging provides the structured logging system for griddle.
//
// It is a thin wrapper around Go's standard slog package that keys every
// log entry with a subsystem identifier, so output from the different
// parts of the kitchen (Registry, Pipeline, Station, Events, ...) can be
// filtered and correlated.
//
// # Usage
//
//	logging.Init(logging.LevelInfo, os.Stdout)
//
//	logging.Info("Bootstrap", "starting griddle")
//	logging.Debug("Config", "loaded configuration from %s", path)
//	logging.Error("Registry", err, "failed to record order %s", orderID)
//
// Level filtering happens at the handler, so arguments of suppressed
// entries are never formatted.
package logging
