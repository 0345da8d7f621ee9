package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"griddle/pkg/logging"
)

const shutdownTimeout = 10 * time.Second

// Server is the HTTP front of the orchestration engine. It reaches the
// engine and the event bus through the api handler registry, so it has
// no compile-time dependency on the kitchen package.
type Server struct {
	port        int
	eventBuffer int

	mu         sync.Mutex
	listener   net.Listener
	httpServer *http.Server
	running    bool
}

// NewServer creates the API server for the given port. Port 0 asks the
// OS for a free port. eventBuffer sizes the per-connection queue of the
// SSE feed; zero or below selects the bus default.
func NewServer(port, eventBuffer int) *Server {
	return &Server{port: port, eventBuffer: eventBuffer}
}

// Start binds the listener and serves in the background. It returns once
// the listener is bound.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("API server already running on port %d", s.port)
	}

	listener, err := net.Listen("tcp", fmt.Sprintf(":%d", s.port))
	if err != nil {
		return fmt.Errorf("failed to listen on port %d: %w", s.port, err)
	}
	s.listener = listener
	s.port = listener.Addr().(*net.TCPAddr).Port

	s.httpServer = &http.Server{Handler: s.routes()}

	go func() {
		if err := s.httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
			logging.Error("API", err, "API server stopped unexpectedly")
		}
	}()

	s.running = true
	logging.Info("API", "API server listening on port %d", s.port)
	return nil
}

// Stop gracefully shuts the server down. In-flight blocking submissions
// get the shutdown timeout to reach a terminal state.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}
	s.running = false

	shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop API server: %w", err)
	}
	logging.Info("API", "API server stopped")
	return nil
}

// Port returns the bound port. Only meaningful after Start when the
// server was created with port 0.
func (s *Server) Port() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.port
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/order", s.handleSubmitOrder)
	mux.HandleFunc("POST /api/order/stream", s.handleSubmitOrderStreamed)
	mux.HandleFunc("GET /api/order-stream/{id}", s.handleOrderStream)
	mux.HandleFunc("GET /api/order-history", s.handleOrderHistory)
	mux.HandleFunc("POST /api/order/{id}/cancel", s.handleCancelOrder)
	mux.HandleFunc("GET /api/events", s.handleEvents)
	return mux
}
