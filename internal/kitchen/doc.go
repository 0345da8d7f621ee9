// Package kitchen implements the order orchestration engine. The Manager
// accepts free-text orders, resolves them into station plans, drives the
// pipeline executor, records lifecycle and progress in the registry, and
// publishes transition events. It is registered as the api.KitchenHandler
// during bootstrap; all other surfaces (HTTP, CLI, simulator) reach it
// through that interface.
package kitchen
