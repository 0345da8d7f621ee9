package registry

import (
	"sync"
	"time"

	"griddle/internal/api"
	"griddle/pkg/logging"

	"github.com/google/uuid"
)

// DefaultRetain is the default maximum number of orders kept in history.
// Orders beyond the cap are evicted oldest-first, terminal orders only,
// so in-flight orders are never dropped.
const DefaultRetain = 1000

// Registry is the concurrent store of order lifecycle records. It is the
// single shared-mutable-state surface of the system and the sole owner of
// order records: every accessor returns snapshots, never live references.
//
// All mutating operations on a given order are linearizable (guarded by
// one mutex); the critical sections are short map-and-slice updates, so
// operations on different orders do not suffer head-of-line blocking in
// any practical sense.
type Registry struct {
	mu     sync.RWMutex
	orders map[string]*record
	// ids holds order IDs in submission order, oldest first.
	ids    []string
	retain int
}

// record is the registry-private mutable state of one order.
type record struct {
	order api.Order
}

// New creates a registry retaining at most retain orders. A retain value
// of zero or below selects DefaultRetain.
func New(retain int) *Registry {
	if retain <= 0 {
		retain = DefaultRetain
	}
	return &Registry{
		orders: make(map[string]*record),
		retain: retain,
	}
}

// Create allocates a fresh identifier, inserts an order in InProgress
// state, and returns its snapshot. Safe under arbitrary concurrent calls;
// identifiers are UUIDs and never reused.
func (r *Registry) Create(orderText string) api.Order {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := uuid.NewString()
	rec := &record{
		order: api.Order{
			ID:          id,
			Text:        orderText,
			Status:      api.OrderStatusInProgress,
			SubmittedAt: time.Now(),
		},
	}
	r.orders[id] = rec
	r.ids = append(r.ids, id)
	r.evictLocked()

	logging.Debug("Registry", "Created order %s", id)
	return snapshot(rec)
}

// AppendProgress appends a message to the order's progress log. Entries
// are ordered by emission time and never reordered or removed. Returns
// an UnknownOrderError when the identifier is not present.
func (r *Registry) AppendProgress(orderID, message string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.orders[orderID]
	if !ok {
		return &api.UnknownOrderError{OrderID: orderID}
	}
	rec.order.Progress = append(rec.order.Progress, api.ProgressEntry{
		Timestamp: time.Now(),
		Message:   message,
	})
	return nil
}

// Complete transitions the order to Completed exactly once, setting the
// result and completion time atomically with the status. A second
// terminal transition is rejected with an InvalidStateTransitionError;
// the first transition's result and completedAt remain untouched.
func (r *Registry) Complete(orderID, result string) (api.Order, error) {
	return r.terminal(orderID, api.OrderStatusCompleted, result)
}

// Fail transitions the order to Failed exactly once, recording the
// human-readable error summary as the result. Progress recorded before
// the failure is preserved for diagnostics.
func (r *Registry) Fail(orderID, errorMessage string) (api.Order, error) {
	return r.terminal(orderID, api.OrderStatusFailed, errorMessage)
}

func (r *Registry) terminal(orderID string, status api.OrderStatus, result string) (api.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.orders[orderID]
	if !ok {
		return api.Order{}, &api.UnknownOrderError{OrderID: orderID}
	}
	if rec.order.Status.IsTerminal() {
		err := &api.InvalidStateTransitionError{
			OrderID: orderID,
			From:    rec.order.Status,
			To:      status,
		}
		// Double-terminal is a programming-contract violation: reject
		// loudly instead of silently overwriting history.
		logging.Error("Registry", err, "Rejected terminal transition for order %s", orderID)
		return api.Order{}, err
	}

	now := time.Now()
	rec.order.Status = status
	rec.order.CompletedAt = &now
	rec.order.Result = result

	logging.Debug("Registry", "Order %s -> %s", orderID, status)
	return snapshot(rec), nil
}

// Get returns the current snapshot of an order.
func (r *Registry) Get(orderID string) (api.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.orders[orderID]
	if !ok {
		return api.Order{}, &api.UnknownOrderError{OrderID: orderID}
	}
	return snapshot(rec), nil
}

// Progress returns the progress messages recorded so far. Unknown
// identifiers yield an empty slice, never an error.
func (r *Registry) Progress(orderID string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.orders[orderID]
	if !ok {
		return []string{}
	}
	messages := make([]string, len(rec.order.Progress))
	for i, entry := range rec.order.Progress {
		messages[i] = entry.Message
	}
	return messages
}

// List returns snapshots of all known orders, most recently submitted
// first.
func (r *Registry) List() []api.Order {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]api.Order, 0, len(r.ids))
	for i := len(r.ids) - 1; i >= 0; i-- {
		if rec, ok := r.orders[r.ids[i]]; ok {
			out = append(out, snapshot(rec))
		}
	}
	return out
}

// Len returns the number of orders currently retained.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.orders)
}

// evictLocked drops the oldest terminal orders while the registry is over
// its retention cap. In-flight orders are skipped. Caller holds the lock.
func (r *Registry) evictLocked() {
	if len(r.orders) <= r.retain {
		return
	}

	kept := r.ids[:0]
	for _, id := range r.ids {
		rec := r.orders[id]
		if len(r.orders) > r.retain && rec.order.Status.IsTerminal() {
			delete(r.orders, id)
			logging.Debug("Registry", "Evicted order %s (retention cap %d)", id, r.retain)
			continue
		}
		kept = append(kept, id)
	}
	r.ids = kept
}

// snapshot copies the record so callers can never mutate registry state.
func snapshot(rec *record) api.Order {
	out := rec.order
	if rec.order.CompletedAt != nil {
		completedAt := *rec.order.CompletedAt
		out.CompletedAt = &completedAt
	}
	out.Progress = make([]api.ProgressEntry, len(rec.order.Progress))
	copy(out.Progress, rec.order.Progress)
	return out
}
