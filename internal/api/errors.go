package api

import (
	"errors"
	"fmt"
)

// UnknownOrderError indicates an operation referenced an order identifier
// that is not present in the registry.
type UnknownOrderError struct {
	// OrderID is the identifier that could not be resolved.
	OrderID string
}

func (e *UnknownOrderError) Error() string {
	return fmt.Sprintf("order %s not found", e.OrderID)
}

// IsUnknownOrder checks if an error is an UnknownOrderError using error
// unwrapping, supporting wrapped errors.
func IsUnknownOrder(err error) bool {
	var unknownErr *UnknownOrderError
	return errors.As(err, &unknownErr)
}

// InvalidStateTransitionError indicates an attempt to complete or fail an
// order that is already in a terminal state. This is a programming-contract
// violation: the first terminal transition wins and history is never
// overwritten.
type InvalidStateTransitionError struct {
	// OrderID is the order whose transition was rejected.
	OrderID string

	// From is the order's current (terminal) status.
	From OrderStatus

	// To is the status the caller attempted to transition to.
	To OrderStatus
}

func (e *InvalidStateTransitionError) Error() string {
	return fmt.Sprintf("order %s: invalid state transition %s -> %s", e.OrderID, e.From, e.To)
}

// IsInvalidStateTransition checks if an error is an
// InvalidStateTransitionError using error unwrapping.
func IsInvalidStateTransition(err error) bool {
	var transitionErr *InvalidStateTransitionError
	return errors.As(err, &transitionErr)
}

// StationErrorKind categorizes station-level failures.
type StationErrorKind string

const (
	// StationErrorTimeout indicates a station call exceeded its per-step budget.
	StationErrorTimeout StationErrorKind = "timeout"

	// StationErrorUnavailable indicates the station could not be reached at all.
	StationErrorUnavailable StationErrorKind = "unavailable"

	// StationErrorToolFailed indicates the station was reached but the tool
	// invocation returned an error result.
	StationErrorToolFailed StationErrorKind = "tool_failed"
)

// StationError wraps a failure from a station capability provider with the
// station identity and failure kind. The pipeline converts every station
// failure into one of these so the order's failure summary can name the
// failing station.
type StationError struct {
	// Station is the capability provider that failed.
	Station Station

	// Tool is the operation being invoked when the failure occurred.
	Tool string

	// Kind categorizes the failure.
	Kind StationErrorKind

	// Err is the underlying error, if any.
	Err error
}

func (e *StationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("station %s: %s %s: %v", e.Station, e.Tool, e.Kind, e.Err)
	}
	return fmt.Sprintf("station %s: %s %s", e.Station, e.Tool, e.Kind)
}

func (e *StationError) Unwrap() error {
	return e.Err
}

// AsStationError extracts a StationError from an error chain, returning
// nil when the chain contains none.
func AsStationError(err error) *StationError {
	var stationErr *StationError
	if errors.As(err, &stationErr) {
		return stationErr
	}
	return nil
}

// ErrOrderCancelled indicates an order was cancelled by the caller before
// reaching a terminal state on its own.
var ErrOrderCancelled = errors.New("order cancelled by caller")
