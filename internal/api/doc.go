// Package api provides the central API layer for griddle's service
// locator pattern.
//
// It is the single point of communication between packages: shared types
// (Order, Plan, StepResult, OrderEvent), typed error kinds, and the
// handler registry. Service packages provide implementations that are
// registered here during bootstrap; consumers resolve them through the
// Get* functions instead of importing the implementing package.
//
// This keeps the dependency graph flat: the kitchen engine, the HTTP
// server, and the CLI all depend on this package and never on each
// other.
//
// # Error kinds
//
//   - UnknownOrderError: an operation referenced an order identifier not
//     present in the registry.
//   - InvalidStateTransitionError: attempted terminal transition on an
//     already-terminal order. Surfaced loudly, never swallowed.
//   - StationError: a station call timed out, was unreachable, or its
//     tool returned an error result. Carries the station identity.
//   - ErrOrderCancelled: the order was cancelled before completing.
package api
