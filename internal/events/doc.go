// Package events implements the publish-subscribe notification bus for
// order lifecycle transitions.
//
// The kitchen manager publishes four logical events (OrderStarted,
// OrderProgressUpdated, OrderCompleted, OrderFailed) and any number of
// independent observers (the SSE feed, tests, future consoles) subscribe
// to the stream.
//
// # Backpressure policy
//
// Each subscriber owns a bounded queue. When the queue is full, the
// oldest queued event is dropped to make room for the newest one
// (drop-oldest). Publishing never blocks, so a slow observer cannot
// stall order pipelines. Drop counts are logged per subscriber.
package events
