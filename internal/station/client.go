package station

import (
	"context"
	"fmt"
	"sync"

	"griddle/internal/api"
	"griddle/pkg/logging"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"
	"golang.org/x/sync/errgroup"
)

// Client is an MCP client bound to one station endpoint.
type Client struct {
	station  api.Station
	endpoint string

	mu        sync.RWMutex
	client    client.MCPClient
	connected bool
}

// NewClient creates a client for a station endpoint. The connection is
// established by Connect.
func NewClient(st api.Station, endpoint string) *Client {
	return &Client{station: st, endpoint: endpoint}
}

// Connect establishes the streamable HTTP transport and completes the
// MCP initialize handshake.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.connected {
		return nil
	}

	mcpClient, err := client.NewStreamableHttpClient(c.endpoint)
	if err != nil {
		return fmt.Errorf("failed to create client for %s station: %w", c.station, err)
	}

	initResult, err := mcpClient.Initialize(ctx, mcp.InitializeRequest{
		Params: struct {
			ProtocolVersion string                 `json:"protocolVersion"`
			Capabilities    mcp.ClientCapabilities `json:"capabilities"`
			ClientInfo      mcp.Implementation     `json:"clientInfo"`
		}{
			ProtocolVersion: "2024-11-05",
			ClientInfo: mcp.Implementation{
				Name:    "griddle-orchestrator",
				Version: "1.0.0",
			},
			Capabilities: mcp.ClientCapabilities{},
		},
	})
	if err != nil {
		mcpClient.Close()
		return fmt.Errorf("failed to initialize %s station: %w", c.station, err)
	}

	c.client = mcpClient
	c.connected = true
	logging.Debug("StationClient", "Connected to %s station at %s (server: %s %s)",
		c.station, c.endpoint, initResult.ServerInfo.Name, initResult.ServerInfo.Version)
	return nil
}

// CallTool executes a tool on the station.
func (c *Client) CallTool(ctx context.Context, name string, args map[string]interface{}) (*mcp.CallToolResult, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.connected {
		return nil, &api.StationError{
			Station: c.station,
			Tool:    name,
			Kind:    api.StationErrorUnavailable,
			Err:     fmt.Errorf("not connected to %s", c.endpoint),
		}
	}

	result, err := c.client.CallTool(ctx, mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ListTools returns the tools the station advertises.
func (c *Client) ListTools(ctx context.Context) ([]mcp.Tool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.connected {
		return nil, fmt.Errorf("not connected to %s station", c.station)
	}

	result, err := c.client.ListTools(ctx, mcp.ListToolsRequest{})
	if err != nil {
		return nil, fmt.Errorf("failed to list tools on %s station: %w", c.station, err)
	}
	return result.Tools, nil
}

// Ping checks connection health.
func (c *Client) Ping(ctx context.Context) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.connected {
		return fmt.Errorf("not connected to %s station", c.station)
	}
	return c.client.Ping(ctx)
}

// Close shuts down the transport.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.connected {
		return nil
	}
	c.connected = false
	return c.client.Close()
}

// ClientSet holds one client per station and routes tool calls by
// station name. It satisfies the pipeline's station caller contract.
type ClientSet struct {
	clients map[api.Station]*Client
}

// NewClientSet builds a client per configured endpoint. Connections are
// established by Connect.
func NewClientSet(endpoints map[api.Station]string) *ClientSet {
	clients := make(map[api.Station]*Client, len(endpoints))
	for st, endpoint := range endpoints {
		clients[st] = NewClient(st, endpoint)
	}
	return &ClientSet{clients: clients}
}

// Connect connects all station clients in parallel and fails if any
// station is unreachable.
func (cs *ClientSet) Connect(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, c := range cs.clients {
		g.Go(func() error {
			return c.Connect(ctx)
		})
	}
	return g.Wait()
}

// CallTool routes a tool call to the named station. Unknown stations and
// transport failures surface as unavailable-station errors.
func (cs *ClientSet) CallTool(ctx context.Context, st api.Station, tool string, args map[string]interface{}) (*mcp.CallToolResult, error) {
	c, ok := cs.clients[st]
	if !ok {
		return nil, &api.StationError{
			Station: st,
			Tool:    tool,
			Kind:    api.StationErrorUnavailable,
			Err:     fmt.Errorf("no client configured for station %q", st),
		}
	}
	return c.CallTool(ctx, tool, args)
}

// Ping reports per-station connectivity.
func (cs *ClientSet) Ping(ctx context.Context) map[api.Station]error {
	results := make(map[api.Station]error, len(cs.clients))
	for st, c := range cs.clients {
		results[st] = c.Ping(ctx)
	}
	return results
}

// Close shuts down all station clients. The first error wins but every
// client is closed.
func (cs *ClientSet) Close() error {
	var firstErr error
	for st, c := range cs.clients {
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("failed to close %s station client: %w", st, err)
		}
	}
	return firstErr
}
