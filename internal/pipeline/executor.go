package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"griddle/internal/api"
	"griddle/pkg/logging"

	"github.com/mark3labs/mcp-go/mcp"
)

// StationCaller is what the executor needs from the station layer: the
// ability to invoke one named tool on one station. The station client set
// implements this against live MCP servers; tests substitute mocks.
type StationCaller interface {
	CallTool(ctx context.Context, station api.Station, tool string, args map[string]interface{}) (*mcp.CallToolResult, error)
}

// StepSink receives each StepResult as soon as its step completes,
// before the next step is dispatched. Implementations must be fast or
// hand off to their own buffering; the executor calls them inline.
type StepSink func(api.StepResult)

// DefaultStepTimeout is the per-step budget applied when the executor is
// constructed without an explicit one.
const DefaultStepTimeout = 5 * time.Second

// Executor drives a plan against the station capability set. Steps run
// in dependency order; among steps whose predecessors have completed,
// plan order decides. A single execution is finite and not restartable.
//
// Failure semantics are fail-fast: the first step that times out, cannot
// reach its station, or returns an error result stops the execution, and
// the remaining steps are skipped. No retries happen at this layer.
type Executor struct {
	caller      StationCaller
	stepTimeout time.Duration
}

// New creates an executor with the given per-step timeout budget. A
// budget of zero or below selects DefaultStepTimeout.
func New(caller StationCaller, stepTimeout time.Duration) *Executor {
	if stepTimeout <= 0 {
		stepTimeout = DefaultStepTimeout
	}
	return &Executor{caller: caller, stepTimeout: stepTimeout}
}

// Execute runs every step of the plan, emitting a StepResult to sink as
// each step completes. It returns the completed results; on failure the
// returned error names the failing station and the results cover exactly
// the steps that completed before it.
//
// Cancellation of ctx stops dispatch and yields api.ErrOrderCancelled,
// whether it arrives between steps or while a step is in flight.
func (e *Executor) Execute(ctx context.Context, plan api.Plan, sink StepSink) ([]api.StepResult, error) {
	if sink == nil {
		sink = func(api.StepResult) {}
	}

	order, err := topoOrder(plan)
	if err != nil {
		return nil, err
	}

	results := make([]api.StepResult, 0, len(order))
	for _, step := range order {
		if ctxErr := ctx.Err(); ctxErr != nil {
			logging.Debug("Pipeline", "Execution stopped before step %s: %v", step.ID, ctxErr)
			return results, fmt.Errorf("step %s not dispatched: %w", step.ID, api.ErrOrderCancelled)
		}

		message, err := e.runStep(ctx, step)
		if err != nil {
			logging.Debug("Pipeline", "Step %s failed, skipping %d remaining steps", step.ID, len(order)-len(results)-1)
			return results, err
		}

		result := api.StepResult{
			Seq:     len(results) + 1,
			StepID:  step.ID,
			Station: step.Station,
			Tool:    step.Tool,
			Message: message,
		}
		results = append(results, result)
		sink(result)
	}

	return results, nil
}

// runStep invokes one station tool under the per-step budget and maps
// every failure mode onto a StationError.
func (e *Executor) runStep(ctx context.Context, step api.PlanStep) (string, error) {
	stepCtx, cancel := context.WithTimeout(ctx, e.stepTimeout)
	defer cancel()

	logging.Debug("Pipeline", "Dispatching step %s to station %s (%s)", step.ID, step.Station, step.Tool)

	result, err := e.caller.CallTool(stepCtx, step.Station, step.Tool, step.Args)
	if err != nil {
		if ctx.Err() != nil {
			return "", fmt.Errorf("step %s interrupted: %w", step.ID, api.ErrOrderCancelled)
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return "", &api.StationError{
				Station: step.Station,
				Tool:    step.Tool,
				Kind:    api.StationErrorTimeout,
				Err:     fmt.Errorf("no response within %s", e.stepTimeout),
			}
		}
		if stationErr := api.AsStationError(err); stationErr != nil {
			return "", stationErr
		}
		return "", &api.StationError{
			Station: step.Station,
			Tool:    step.Tool,
			Kind:    api.StationErrorUnavailable,
			Err:     err,
		}
	}

	message := textContent(result)
	if result.IsError {
		return "", &api.StationError{
			Station: step.Station,
			Tool:    step.Tool,
			Kind:    api.StationErrorToolFailed,
			Err:     errors.New(message),
		}
	}

	return message, nil
}

// topoOrder resolves the plan's dependency graph into an execution
// sequence. The resolver emits simple chains, but the executor accepts
// any acyclic graph so conditional station inclusion composes cleanly.
func topoOrder(plan api.Plan) ([]api.PlanStep, error) {
	known := make(map[string]bool, len(plan.Steps))
	for _, step := range plan.Steps {
		if known[step.ID] {
			return nil, fmt.Errorf("plan invalid: duplicate step id %q", step.ID)
		}
		known[step.ID] = true
	}

	done := make(map[string]bool, len(plan.Steps))
	ordered := make([]api.PlanStep, 0, len(plan.Steps))
	remaining := append([]api.PlanStep(nil), plan.Steps...)

	for len(remaining) > 0 {
		progressed := false
		next := remaining[:0]
		for _, step := range remaining {
			if ready(step, done, known) {
				ordered = append(ordered, step)
				done[step.ID] = true
				progressed = true
			} else {
				next = append(next, step)
			}
		}
		remaining = next
		if !progressed {
			return nil, fmt.Errorf("plan invalid: dependency cycle involving step %q", remaining[0].ID)
		}
	}

	return ordered, nil
}

func ready(step api.PlanStep, done, known map[string]bool) bool {
	for _, dep := range step.DependsOn {
		// Unknown predecessors are ignored rather than deadlocking the
		// plan; the resolver never emits them.
		if known[dep] && !done[dep] {
			return false
		}
	}
	return true
}

// textContent extracts the first text payload from a tool result.
func textContent(result *mcp.CallToolResult) string {
	if result == nil {
		return ""
	}
	for _, content := range result.Content {
		if text, ok := content.(mcp.TextContent); ok {
			return text.Text
		}
	}
	return ""
}
