package kitchen

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"griddle/internal/api"
	"griddle/internal/events"
	"griddle/internal/intent"
	"griddle/internal/pipeline"
	"griddle/internal/registry"
	"griddle/pkg/logging"
)

// DefaultStreamDelay is the pause between word chunks of a streamed
// response when no delay is configured.
const DefaultStreamDelay = 150 * time.Millisecond

// StreamSentinel is the final chunk of every streamed submission,
// re-exported from the api package for convenience.
const StreamSentinel = api.StreamSentinel

// Config tunes manager behavior. Zero values select the defaults.
type Config struct {
	// StepTimeout bounds each station call. Defaults to
	// pipeline.DefaultStepTimeout.
	StepTimeout time.Duration

	// StreamDelay is the pause between word chunks of a streamed
	// response. Defaults to DefaultStreamDelay; tests set it to a
	// negative value to disable pausing entirely.
	StreamDelay time.Duration
}

// Manager is the orchestration engine façade. It owns the intent
// resolver and pipeline executor, drives the order registry through its
// lifecycle, and publishes transition events on the bus. It implements
// api.KitchenHandler.
type Manager struct {
	resolver *intent.Resolver
	executor *pipeline.Executor
	registry *registry.Registry
	bus      *events.Bus

	// streamDelay holds a time.Duration; atomic so config hot reloads
	// can retune it while streams are in flight.
	streamDelay atomic.Int64

	mu      sync.Mutex
	cancels map[string]context.CancelFunc
	closed  bool
}

// NewManager wires the engine together. The caller routes pipeline steps
// to stations; registry and bus are shared with the HTTP surface.
func NewManager(caller pipeline.StationCaller, reg *registry.Registry, bus *events.Bus, cfg Config) *Manager {
	streamDelay := cfg.StreamDelay
	if streamDelay == 0 {
		streamDelay = DefaultStreamDelay
	}
	m := &Manager{
		resolver: intent.NewResolver(),
		executor: pipeline.New(caller, cfg.StepTimeout),
		registry: reg,
		bus:      bus,
		cancels:  make(map[string]context.CancelFunc),
	}
	m.streamDelay.Store(int64(streamDelay))
	return m
}

// SetStreamDelay retunes the pause between streamed word chunks. It
// applies to chunks emitted after the call, including in-flight streams.
func (m *Manager) SetStreamDelay(d time.Duration) {
	m.streamDelay.Store(int64(d))
}

// Submit processes an order to its terminal state and returns the final
// response text. Station failures come back as the failure text, not as
// an error; the error return fires only when the manager is shutting
// down.
func (m *Manager) Submit(ctx context.Context, text string) (string, error) {
	order, runCtx, finish, err := m.admit(ctx, text)
	if err != nil {
		return "", err
	}
	defer finish()

	final := m.run(runCtx, order)
	return final.Result, nil
}

// SubmitStreamed processes an order while yielding output chunks: an
// acknowledgment first, then one chunk per word of the final result,
// then StreamSentinel. The channel closes after the sentinel. The order
// ID is valid for GetProgress immediately.
func (m *Manager) SubmitStreamed(ctx context.Context, text string) (string, <-chan string) {
	chunks := make(chan string, 8)

	order, runCtx, finish, err := m.admit(ctx, text)
	if err != nil {
		// Shutdown in progress: honor the always-terminates contract
		// with a failure text and the sentinel.
		go func() {
			defer close(chunks)
			chunks <- fmt.Sprintf("Order failed: %v", err)
			chunks <- StreamSentinel
		}()
		return "", chunks
	}

	go func() {
		defer close(chunks)
		defer finish()

		chunks <- fmt.Sprintf("👨‍🍳 Order %s received! Firing up the kitchen...", order.ID)

		final := m.run(runCtx, order)

		for i, word := range strings.Fields(final.Result) {
			chunk := word
			if i > 0 {
				chunk = " " + word
			}
			select {
			case chunks <- chunk:
			case <-ctx.Done():
				// Caller walked away; hand over the sentinel only if
				// there is still room, never block on it.
				select {
				case chunks <- StreamSentinel:
				default:
				}
				return
			}
			if delay := time.Duration(m.streamDelay.Load()); delay > 0 {
				time.Sleep(delay)
			}
		}
		chunks <- StreamSentinel
	}()

	return order.ID, chunks
}

// GetProgress returns the progress recorded so far for an order. Unknown
// identifiers yield an empty slice.
func (m *Manager) GetProgress(orderID string) []string {
	return m.registry.Progress(orderID)
}

// History returns snapshots of all known orders, newest first.
func (m *Manager) History() []api.Order {
	return m.registry.List()
}

// Get returns the snapshot of a single order.
func (m *Manager) Get(orderID string) (api.Order, error) {
	return m.registry.Get(orderID)
}

// Cancel stops dispatching steps for an in-flight order. The order
// transitions to Failed through the normal pipeline error path, keeping
// the progress recorded so far.
func (m *Manager) Cancel(orderID string) error {
	order, err := m.registry.Get(orderID)
	if err != nil {
		return err
	}
	if order.Status.IsTerminal() {
		return &api.InvalidStateTransitionError{
			OrderID: orderID,
			From:    order.Status,
			To:      api.OrderStatusFailed,
		}
	}

	m.mu.Lock()
	cancel, ok := m.cancels[orderID]
	m.mu.Unlock()
	if !ok {
		return &api.UnknownOrderError{OrderID: orderID}
	}

	logging.Info("Kitchen", "cancelling order %s", orderID)
	cancel()
	return nil
}

// Close rejects new submissions and cancels all in-flight orders. Their
// runs drain through the normal failure path.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	for id, cancel := range m.cancels {
		logging.Info("Kitchen", "shutdown cancelling order %s", id)
		cancel()
	}
}

// admit creates the order record and registers its cancel function so
// Cancel can reach the run from the moment the order ID is visible.
func (m *Manager) admit(ctx context.Context, text string) (api.Order, context.Context, func(), error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return api.Order{}, nil, nil, errors.New("kitchen is shutting down")
	}

	order := m.registry.Create(text)
	runCtx, cancel := context.WithCancel(ctx)
	m.cancels[order.ID] = cancel

	finish := func() {
		cancel()
		m.mu.Lock()
		delete(m.cancels, order.ID)
		m.mu.Unlock()
	}
	return order, runCtx, finish, nil
}

// run drives one order to its terminal state and returns the terminal
// snapshot. It never returns an error: failures land in the order record
// and the corresponding event.
func (m *Manager) run(ctx context.Context, order api.Order) api.Order {
	m.bus.Publish(api.OrderEvent{Kind: api.EventOrderStarted, Order: order})

	plan := m.resolver.Resolve(order.Text)
	logging.Info("Kitchen", "order %s resolved into %d steps: %s", order.ID, len(plan.Steps), intent.Describe(plan))

	sink := func(sr api.StepResult) {
		if err := m.registry.AppendProgress(order.ID, sr.Message); err != nil {
			logging.Error("Kitchen", err, "failed to record progress for order %s", order.ID)
			return
		}
		if snap, err := m.registry.Get(order.ID); err == nil {
			m.bus.Publish(api.OrderEvent{
				Kind:    api.EventOrderProgressUpdated,
				Order:   snap,
				Message: sr.Message,
			})
		}
	}

	results, err := m.executor.Execute(ctx, plan, sink)
	if err != nil {
		return m.fail(order.ID, err)
	}

	messages := make([]string, 0, len(results))
	for _, sr := range results {
		messages = append(messages, sr.Message)
	}
	result := "🛎️ Order up! " + strings.Join(messages, " ")

	completed, terr := m.registry.Complete(order.ID, result)
	if terr != nil {
		logging.Error("Kitchen", terr, "failed to complete order %s", order.ID)
		completed, _ = m.registry.Get(order.ID)
		return completed
	}
	m.bus.Publish(api.OrderEvent{Kind: api.EventOrderCompleted, Order: completed})
	logging.Info("Kitchen", "order %s completed after %d steps", order.ID, len(results))
	return completed
}

// fail records the terminal failure and publishes the event.
func (m *Manager) fail(orderID string, cause error) api.Order {
	text := failureText(cause)

	failed, terr := m.registry.Fail(orderID, text)
	if terr != nil {
		logging.Error("Kitchen", terr, "failed to record failure for order %s", orderID)
		failed, _ = m.registry.Get(orderID)
		return failed
	}
	m.bus.Publish(api.OrderEvent{Kind: api.EventOrderFailed, Order: failed, Message: text})
	logging.Warn("Kitchen", "order %s failed: %s", orderID, text)
	return failed
}

// failureText turns a pipeline error into the customer-facing failure
// summary that names the failing station.
func failureText(err error) string {
	if errors.Is(err, api.ErrOrderCancelled) {
		return "🚫 Order cancelled before the kitchen finished."
	}
	if stationErr := api.AsStationError(err); stationErr != nil {
		switch stationErr.Kind {
		case api.StationErrorTimeout:
			return fmt.Sprintf("⏱️ Order failed: the %s station timed out while running %s.",
				stationErr.Station, stationErr.Tool)
		case api.StationErrorUnavailable:
			return fmt.Sprintf("🔌 Order failed: the %s station is unavailable (%s).",
				stationErr.Station, stationErr.Tool)
		default:
			return fmt.Sprintf("💥 Order failed: the %s station reported an error running %s.",
				stationErr.Station, stationErr.Tool)
		}
	}
	return fmt.Sprintf("💥 Order failed: %v", err)
}
