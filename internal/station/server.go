package station

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"griddle/internal/api"
	"griddle/pkg/logging"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const shutdownTimeout = 5 * time.Second

// ServerOption configures a station Server.
type ServerOption func(*Server)

// WithoutDelays disables the simulated per-tool work time. Used in tests
// and when running the orchestrator against in-process stations.
func WithoutDelays() ServerOption {
	return func(s *Server) {
		s.simulateDelays = false
	}
}

// Server exposes one kitchen station as an MCP server over streamable
// HTTP. The root path answers a plain-text identity probe so operators
// can check which station owns a port.
type Server struct {
	station        api.Station
	port           int
	simulateDelays bool

	mcpServer  *server.MCPServer
	httpServer *http.Server

	mu       sync.Mutex
	listener net.Listener
	running  bool
}

// NewServer creates a station server for the given port. Port 0 asks the
// OS for a free port; the bound address is available via Endpoint after
// Start.
func NewServer(st api.Station, port int, opts ...ServerOption) *Server {
	s := &Server{
		station:        st,
		port:           port,
		simulateDelays: true,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.mcpServer = server.NewMCPServer(
		fmt.Sprintf("griddle-%s", st),
		"1.0.0",
		server.WithToolCapabilities(false),
	)
	s.registerTools()

	return s
}

func (s *Server) registerTools() {
	for _, spec := range Catalog(s.station) {
		opts := []mcp.ToolOption{mcp.WithDescription(spec.Description)}
		for _, arg := range spec.Args {
			var argOpts []mcp.PropertyOption
			if arg.Required {
				argOpts = append(argOpts, mcp.Required())
			}
			argOpts = append(argOpts, mcp.Description(arg.Description))
			if arg.Number {
				opts = append(opts, mcp.WithNumber(arg.Name, argOpts...))
			} else {
				opts = append(opts, mcp.WithString(arg.Name, argOpts...))
			}
		}
		s.mcpServer.AddTool(mcp.NewTool(spec.Name, opts...), s.toolHandler(spec))
	}
}

func (s *Server) toolHandler(spec ToolSpec) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := request.GetArguments()

		if s.simulateDelays && spec.Delay > 0 {
			timer := time.NewTimer(spec.Delay)
			defer timer.Stop()
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-timer.C:
			}
		}

		message := spec.Respond(args)
		logging.Debug("Station", "%s handled %s: %s", s.station, spec.Name, message)
		return mcp.NewToolResultText(message), nil
	}
}

// Start binds the listener and serves in the background. It returns once
// the listener is bound so Endpoint is valid immediately after.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("station %s already running on port %d", s.station, s.port)
	}

	listener, err := net.Listen("tcp", fmt.Sprintf(":%d", s.port))
	if err != nil {
		return fmt.Errorf("failed to listen on port %d: %w", s.port, err)
	}
	s.listener = listener
	s.port = listener.Addr().(*net.TCPAddr).Port

	mux := http.NewServeMux()
	mux.Handle("/mcp", server.NewStreamableHTTPServer(s.mcpServer))
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		fmt.Fprintln(w, Identity(s.station))
	})

	s.httpServer = &http.Server{Handler: mux}

	go func() {
		if err := s.httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
			logging.Error("Station", err, "%s server stopped unexpectedly", s.station)
		}
	}()

	s.running = true
	logging.Info("Station", "%s station listening on %s", s.station, s.Endpoint())
	return nil
}

// Stop gracefully shuts the server down, waiting up to the shutdown
// timeout for in-flight tool calls to finish.
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
		return fmt.Errorf("failed to stop %s station: %w", s.station, err)
	}
	logging.Info("Station", "%s station stopped", s.station)
	return nil
}

// Port returns the bound port. Only meaningful after Start when the
// server was created with port 0.
func (s *Server) Port() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.port
}

// Endpoint returns the MCP endpoint URL clients should connect to.
func (s *Server) Endpoint() string {
	return fmt.Sprintf("http://localhost:%d/mcp", s.port)
}

// Station returns the station this server hosts.
func (s *Server) Station() api.Station {
	return s.station
}
