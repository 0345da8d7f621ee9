package pipeline

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"griddle/internal/api"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockCaller implements StationCaller for testing.
type mockCaller struct {
	calls    []toolCall
	respond  func(station api.Station, tool string) (*mcp.CallToolResult, error)
	perStep  map[string]time.Duration // optional artificial latency keyed by tool
	blockCtx bool                     // block until ctx expires
}

type toolCall struct {
	station api.Station
	tool    string
	args    map[string]interface{}
}

func textResult(message string) *mcp.CallToolResult {
	return &mcp.CallToolResult{Content: []mcp.Content{mcp.NewTextContent(message)}}
}

func (m *mockCaller) CallTool(ctx context.Context, station api.Station, tool string, args map[string]interface{}) (*mcp.CallToolResult, error) {
	m.calls = append(m.calls, toolCall{station: station, tool: tool, args: args})

	if m.blockCtx {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if delay, ok := m.perStep[tool]; ok {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if m.respond != nil {
		return m.respond(station, tool)
	}
	return textResult(fmt.Sprintf("%s done", tool)), nil
}

func chainPlan(tools ...string) api.Plan {
	var plan api.Plan
	for i, tool := range tools {
		step := api.PlanStep{ID: tool, Station: api.StationGrill, Tool: tool}
		if i > 0 {
			step.DependsOn = []string{tools[i-1]}
		}
		plan.Steps = append(plan.Steps, step)
	}
	return plan
}

func TestExecutor_SequentialExecution(t *testing.T) {
	mock := &mockCaller{}
	executor := New(mock, time.Second)

	var seen []api.StepResult
	results, err := executor.Execute(context.Background(), chainPlan("cook_patty", "melt_cheese"), func(r api.StepResult) {
		seen = append(seen, r)
	})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, results, seen)

	assert.Equal(t, 1, results[0].Seq)
	assert.Equal(t, 2, results[1].Seq)
	assert.Equal(t, "cook_patty done", results[0].Message)
	assert.Equal(t, "melt_cheese", mock.calls[1].tool)
}

func TestExecutor_EmptyPlan(t *testing.T) {
	mock := &mockCaller{}
	executor := New(mock, time.Second)

	results, err := executor.Execute(context.Background(), api.Plan{}, nil)
	require.NoError(t, err)
	assert.Empty(t, results)
	assert.Empty(t, mock.calls)
}

func TestExecutor_FailFastKeepsEarlierResults(t *testing.T) {
	mock := &mockCaller{
		respond: func(station api.Station, tool string) (*mcp.CallToolResult, error) {
			if tool == "melt_cheese" {
				return nil, errors.New("grill is on fire")
			}
			return textResult(tool + " done"), nil
		},
	}
	executor := New(mock, time.Second)

	results, err := executor.Execute(context.Background(), chainPlan("cook_patty", "melt_cheese", "toast_bun"), nil)
	require.Error(t, err)

	stationErr := api.AsStationError(err)
	require.NotNil(t, stationErr)
	assert.Equal(t, api.StationGrill, stationErr.Station)
	assert.Equal(t, "melt_cheese", stationErr.Tool)
	assert.Equal(t, api.StationErrorUnavailable, stationErr.Kind)

	// Only the step before the failure completed; toast_bun was skipped.
	require.Len(t, results, 1)
	assert.Equal(t, "cook_patty", results[0].StepID)
	assert.Len(t, mock.calls, 2)
}

func TestExecutor_StepTimeoutBudget(t *testing.T) {
	mock := &mockCaller{blockCtx: true}
	executor := New(mock, 20*time.Millisecond)

	start := time.Now()
	results, err := executor.Execute(context.Background(), chainPlan("cook_patty"), nil)
	require.Error(t, err)
	assert.Less(t, time.Since(start), time.Second)

	stationErr := api.AsStationError(err)
	require.NotNil(t, stationErr)
	assert.Equal(t, api.StationErrorTimeout, stationErr.Kind)
	assert.Empty(t, results)
}

func TestExecutor_ToolErrorResult(t *testing.T) {
	mock := &mockCaller{
		respond: func(station api.Station, tool string) (*mcp.CallToolResult, error) {
			return &mcp.CallToolResult{
				Content: []mcp.Content{mcp.NewTextContent("fryer jammed")},
				IsError: true,
			}, nil
		},
	}
	executor := New(mock, time.Second)

	_, err := executor.Execute(context.Background(), chainPlan("fry_standard"), nil)
	require.Error(t, err)

	stationErr := api.AsStationError(err)
	require.NotNil(t, stationErr)
	assert.Equal(t, api.StationErrorToolFailed, stationErr.Kind)
	assert.Contains(t, stationErr.Error(), "fryer jammed")
}

func TestExecutor_CancellationBetweenSteps(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	mock := &mockCaller{
		respond: func(station api.Station, tool string) (*mcp.CallToolResult, error) {
			cancel() // cancel while the first step is in flight
			return textResult(tool + " done"), nil
		},
	}
	executor := New(mock, time.Second)

	results, err := executor.Execute(ctx, chainPlan("cook_patty", "melt_cheese"), nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, api.ErrOrderCancelled))

	// The in-flight step completed, the next was never dispatched.
	require.Len(t, results, 1)
	assert.Len(t, mock.calls, 1)
}

func TestExecutor_DependencyOrdering(t *testing.T) {
	mock := &mockCaller{}
	executor := New(mock, time.Second)

	// Plan listed out of order: dependencies must still decide sequence.
	plan := api.Plan{Steps: []api.PlanStep{
		{ID: "plate_meal", Station: api.StationPlating, Tool: "plate_meal", DependsOn: []string{"fry_standard"}},
		{ID: "cook_patty", Station: api.StationGrill, Tool: "cook_patty"},
		{ID: "fry_standard", Station: api.StationFryer, Tool: "fry_standard", DependsOn: []string{"cook_patty"}},
	}}

	results, err := executor.Execute(context.Background(), plan, nil)
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, "cook_patty", results[0].StepID)
	assert.Equal(t, "fry_standard", results[1].StepID)
	assert.Equal(t, "plate_meal", results[2].StepID)
}

func TestExecutor_RejectsCyclesAndDuplicates(t *testing.T) {
	executor := New(&mockCaller{}, time.Second)

	_, err := executor.Execute(context.Background(), api.Plan{Steps: []api.PlanStep{
		{ID: "a", Station: api.StationGrill, Tool: "a", DependsOn: []string{"b"}},
		{ID: "b", Station: api.StationGrill, Tool: "b", DependsOn: []string{"a"}},
	}}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cycle")

	_, err = executor.Execute(context.Background(), api.Plan{Steps: []api.PlanStep{
		{ID: "a", Station: api.StationGrill, Tool: "a"},
		{ID: "a", Station: api.StationGrill, Tool: "a"},
	}}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate")
}
