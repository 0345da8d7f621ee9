package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"griddle/internal/api"
	"griddle/pkg/logging"
)

type orderRequest struct {
	Order string `json:"order"`
}

type orderResponse struct {
	Response string `json:"response"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// handleSubmitOrder accepts a free-text order and blocks until the order
// reaches a terminal state. Station failures come back as 200 with the
// failure text; only submission itself failing is an error status.
func (s *Server) handleSubmitOrder(w http.ResponseWriter, r *http.Request) {
	kitchen := api.GetKitchen()
	if kitchen == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "kitchen not ready"})
		return
	}

	var req orderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: fmt.Sprintf("invalid request body: %v", err)})
		return
	}
	if strings.TrimSpace(req.Order) == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "order text is required"})
		return
	}

	result, err := kitchen.Submit(r.Context(), req.Order)
	if err != nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, orderResponse{Response: result})
}

// handleSubmitOrderStreamed accepts an order and streams the response
// chunks as plain text while the kitchen works: acknowledgment, the
// result word by word, then the end-of-stream sentinel. The allocated
// order ID travels in the X-Order-Id header so callers can poll
// progress while the stream runs.
func (s *Server) handleSubmitOrderStreamed(w http.ResponseWriter, r *http.Request) {
	kitchen := api.GetKitchen()
	if kitchen == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "kitchen not ready"})
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "streaming unsupported"})
		return
	}

	var req orderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: fmt.Sprintf("invalid request body: %v", err)})
		return
	}
	if strings.TrimSpace(req.Order) == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "order text is required"})
		return
	}

	orderID, chunks := kitchen.SubmitStreamed(r.Context(), req.Order)
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("X-Order-Id", orderID)
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	first := true
	for chunk := range chunks {
		var err error
		switch {
		case chunk == api.StreamSentinel:
			_, err = fmt.Fprintf(w, "\n%s\n", chunk)
		case first:
			// The acknowledgment gets its own line.
			_, err = fmt.Fprintf(w, "%s\n", chunk)
			first = false
		default:
			_, err = fmt.Fprint(w, chunk)
		}
		if err != nil {
			// Client went away; drain so the stream goroutine finishes.
			for range chunks {
			}
			return
		}
		flusher.Flush()
	}
}

// handleOrderStream returns the progress strings accumulated so far for
// an order. Unknown identifiers yield 200 with an empty array.
func (s *Server) handleOrderStream(w http.ResponseWriter, r *http.Request) {
	kitchen := api.GetKitchen()
	if kitchen == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "kitchen not ready"})
		return
	}

	progress := kitchen.GetProgress(r.PathValue("id"))
	if progress == nil {
		progress = []string{}
	}
	writeJSON(w, http.StatusOK, progress)
}

// handleOrderHistory returns snapshots of all known orders, newest first.
func (s *Server) handleOrderHistory(w http.ResponseWriter, r *http.Request) {
	kitchen := api.GetKitchen()
	if kitchen == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "kitchen not ready"})
		return
	}

	history := kitchen.History()
	if history == nil {
		history = []api.Order{}
	}
	writeJSON(w, http.StatusOK, history)
}

// handleCancelOrder requests cancellation of an in-flight order. The
// order drains through its normal failure path, so 202 means the
// cancellation was accepted, not that the order is already terminal.
func (s *Server) handleCancelOrder(w http.ResponseWriter, r *http.Request) {
	kitchen := api.GetKitchen()
	if kitchen == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "kitchen not ready"})
		return
	}

	orderID := r.PathValue("id")
	err := kitchen.Cancel(orderID)
	switch {
	case err == nil:
		writeJSON(w, http.StatusAccepted, map[string]string{"status": "cancelling", "orderId": orderID})
	case api.IsUnknownOrder(err):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
	case api.IsInvalidStateTransition(err):
		writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error()})
	default:
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
	}
}

// handleEvents streams order lifecycle events as server-sent events
// until the client disconnects.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	bus := api.GetEventBus()
	if bus == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "event bus not ready"})
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "streaming unsupported"})
		return
	}

	ch, unsubscribe := bus.Subscribe(s.eventBuffer)
	defer unsubscribe()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case event, open := <-ch:
			if !open {
				return
			}
			payload, err := json.Marshal(event)
			if err != nil {
				logging.Error("API", err, "failed to encode order event")
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Kind, payload)
			flusher.Flush()
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logging.Error("API", err, "failed to encode response")
	}
}
