package api

import (
	"context"
	"sync"
)

// KitchenHandler is the contract of the order orchestration engine. The
// kitchen package registers its manager here during bootstrap; every other
// package (HTTP server, CLI, simulator) reaches the engine only through
// this interface, keeping inter-package dependencies out of the tree.
type KitchenHandler interface {
	// Submit processes an order to its terminal state and returns the
	// final response text. Failures surface as a normal result string,
	// never as a transport-level error; the returned error is reserved
	// for submission being impossible (e.g. shutdown in progress).
	Submit(ctx context.Context, text string) (string, error)

	// SubmitStreamed processes an order while yielding output chunks as
	// they become available: an acknowledgment chunk first, then one
	// chunk per unit of the final result, then a final sentinel chunk.
	// The channel is closed after the sentinel, even on failure. The
	// returned order ID can be used with GetProgress immediately.
	SubmitStreamed(ctx context.Context, text string) (orderID string, chunks <-chan string)

	// GetProgress returns the progress messages recorded so far for the
	// order. Unknown identifiers yield an empty slice, never an error.
	GetProgress(orderID string) []string

	// History returns snapshots of all known orders, newest first.
	History() []Order

	// Get returns the snapshot of a single order.
	Get(orderID string) (Order, error)

	// Cancel stops dispatching steps for a still-InProgress order and
	// transitions it to Failed with a cancelled error kind. Progress
	// already recorded remains intact.
	Cancel(orderID string) error
}

// EventBusHandler is the notification surface. Multiple independent
// observers may subscribe; slow observers never block order progress.
type EventBusHandler interface {
	// Subscribe registers an observer with the given buffer size and
	// returns its event channel plus an unsubscribe function. Events
	// overflowing the buffer are dropped oldest-first.
	Subscribe(buffer int) (<-chan OrderEvent, func())
}

var (
	kitchenHandler  KitchenHandler
	eventBusHandler EventBusHandler

	// handlerMutex protects handler registration and access.
	handlerMutex sync.RWMutex
)

// RegisterKitchen registers the kitchen handler implementation. Only one
// handler can be registered at a time; subsequent registrations replace
// the previous handler. Thread-safe.
func RegisterKitchen(h KitchenHandler) {
	handlerMutex.Lock()
	defer handlerMutex.Unlock()
	kitchenHandler = h
}

// GetKitchen returns the registered kitchen handler, or nil if none has
// been registered yet.
func GetKitchen() KitchenHandler {
	handlerMutex.RLock()
	defer handlerMutex.RUnlock()
	return kitchenHandler
}

// RegisterEventBus registers the event bus handler implementation.
func RegisterEventBus(h EventBusHandler) {
	handlerMutex.Lock()
	defer handlerMutex.Unlock()
	eventBusHandler = h
}

// GetEventBus returns the registered event bus handler, or nil if none
// has been registered yet.
func GetEventBus() EventBusHandler {
	handlerMutex.RLock()
	defer handlerMutex.RUnlock()
	return eventBusHandler
}
