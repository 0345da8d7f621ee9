// Package server exposes the orchestration engine over HTTP: blocking
// order submission, accumulated progress per order, order history,
// cancellation, and a server-sent-events feed of lifecycle events.
package server
