package api

import (
	"time"
)

// OrderStatus represents the lifecycle state of an order.
// An order starts InProgress and transitions exactly once to either
// Completed or Failed. Terminal states are never left.
type OrderStatus string

const (
	// OrderStatusInProgress indicates the order pipeline is still running.
	OrderStatusInProgress OrderStatus = "InProgress"

	// OrderStatusCompleted indicates every planned step finished successfully.
	OrderStatusCompleted OrderStatus = "Completed"

	// OrderStatusFailed indicates a step failed, timed out, or the order
	// was cancelled before reaching completion.
	OrderStatusFailed OrderStatus = "Failed"
)

// IsTerminal reports whether the status permits no further transitions.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusCompleted || s == OrderStatusFailed
}

// ProgressEntry is a single append-only progress log record for an order.
type ProgressEntry struct {
	// Timestamp is when the progress message was recorded.
	Timestamp time.Time `json:"timestamp"`

	// Message is the human-readable progress text, usually a station's
	// completion string for one pipeline step.
	Message string `json:"message"`
}

// Order is a snapshot of a tracked order. The registry owns the live
// record; every accessor returns copies, so holders of an Order can
// never mutate registry state.
type Order struct {
	// ID is the opaque unique identifier allocated at submission time.
	ID string `json:"id"`

	// Text is the original free-text order, immutable after submission.
	Text string `json:"text"`

	// Status is the current lifecycle state.
	Status OrderStatus `json:"status"`

	// SubmittedAt is when the order entered the registry.
	SubmittedAt time.Time `json:"submittedAt"`

	// CompletedAt is set exactly once, together with the terminal status.
	CompletedAt *time.Time `json:"completedAt,omitempty"`

	// Result holds the final response text. Empty until terminal; on
	// failure it carries a human-readable error summary.
	Result string `json:"result"`

	// Progress is the ordered, append-only progress log.
	Progress []ProgressEntry `json:"progress"`
}

// Station identifies one of the four kitchen capability providers.
type Station string

const (
	StationGrill   Station = "grill"
	StationFryer   Station = "fryer"
	StationDessert Station = "dessert"
	StationPlating Station = "plating"
)

// Stations lists all stations in their pipeline ordering convention:
// grill, fryer, dessert, plating.
var Stations = []Station{StationGrill, StationFryer, StationDessert, StationPlating}

// PlanStep is a single planned station invocation.
type PlanStep struct {
	// ID uniquely identifies the step within its plan. Used for
	// dependency references and failure reporting.
	ID string `json:"id"`

	// Station is the capability provider the tool belongs to.
	Station Station `json:"station"`

	// Tool is the station operation name (e.g. "cook_patty").
	Tool string `json:"tool"`

	// Args is the parameter bag passed to the tool.
	Args map[string]interface{} `json:"args,omitempty"`

	// DependsOn lists step IDs that must complete before this step may
	// run. An empty list means the step is ready immediately. The
	// resolver emits edges matching the grill→fryer→dessert→plating
	// station ordering so the executor never has to hard-code it.
	DependsOn []string `json:"dependsOn,omitempty"`
}

// Plan is the ordered set of station invocations derived from order
// text. A plan with zero steps is valid and yields a minimal
// completion message.
type Plan struct {
	Steps []PlanStep `json:"steps"`
}

// StepResult carries the outcome of one completed pipeline step.
type StepResult struct {
	// Seq is the monotonically increasing sequence number within one
	// execution, starting at 1.
	Seq int `json:"seq"`

	// StepID is the plan step that produced this result.
	StepID string `json:"stepId"`

	// Station is the capability provider that handled the step.
	Station Station `json:"station"`

	// Tool is the operation that was invoked.
	Tool string `json:"tool"`

	// Message is the station's human-readable completion string.
	Message string `json:"message"`
}

// StreamSentinel is the final chunk of every streamed submission,
// delivered even on failure so consumers have a reliable end-of-stream
// marker.
const StreamSentinel = "[DONE]"

// OrderEventKind distinguishes the four lifecycle notifications.
type OrderEventKind string

const (
	// EventOrderStarted is published immediately after registry creation.
	EventOrderStarted OrderEventKind = "OrderStarted"

	// EventOrderProgressUpdated is published once per completed step.
	EventOrderProgressUpdated OrderEventKind = "OrderProgressUpdated"

	// EventOrderCompleted is published after a successful terminal transition.
	EventOrderCompleted OrderEventKind = "OrderCompleted"

	// EventOrderFailed is published after a failed terminal transition.
	EventOrderFailed OrderEventKind = "OrderFailed"
)

// OrderEvent is the notification payload delivered to subscribers.
// Delivery order to a single subscriber matches the order of state
// transitions for any given order.
type OrderEvent struct {
	// Kind identifies the lifecycle transition.
	Kind OrderEventKind `json:"kind"`

	// Order is the order snapshot at the time of the transition.
	Order Order `json:"order"`

	// Message carries the incremental progress text for
	// OrderProgressUpdated events; empty otherwise.
	Message string `json:"message,omitempty"`
}
