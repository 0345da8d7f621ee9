package config

import (
	"fmt"
	"time"

	"griddle/internal/api"

	"gopkg.in/yaml.v3"
)

// Duration is a time.Duration that unmarshals from YAML strings like
// "5s" or "150ms".
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// GriddleConfig is the top-level configuration structure for griddle.
type GriddleConfig struct {
	API       APIConfig                        `yaml:"api"`
	Stations  map[api.Station]StationConfig    `yaml:"stations"`
	Pipeline  PipelineConfig                   `yaml:"pipeline"`
	Kitchen   KitchenConfig                    `yaml:"kitchen"`
	Registry  RegistryConfig                   `yaml:"registry"`
	Events    EventsConfig                     `yaml:"events"`
	Simulator SimulatorConfig                  `yaml:"simulator"`
}

// APIConfig configures the HTTP API server.
type APIConfig struct {
	Port int    `yaml:"port,omitempty"` // Port for the HTTP API (default: 8090)
	Host string `yaml:"host,omitempty"` // Host to bind to (default: localhost)
}

// StationConfig locates one station. When Endpoint is empty the station
// is run in-process on Port and reached via localhost.
type StationConfig struct {
	Port     int    `yaml:"port,omitempty"`     // Port the in-process station listens on
	Endpoint string `yaml:"endpoint,omitempty"` // External MCP endpoint URL; overrides Port
}

// MCPEndpoint returns the endpoint the orchestrator connects to.
func (s StationConfig) MCPEndpoint() string {
	if s.Endpoint != "" {
		return s.Endpoint
	}
	return fmt.Sprintf("http://localhost:%d/mcp", s.Port)
}

// PipelineConfig tunes step execution.
type PipelineConfig struct {
	StepTimeout Duration `yaml:"stepTimeout,omitempty"` // Per-step budget (default: 5s)
}

// KitchenConfig tunes the orchestration engine.
type KitchenConfig struct {
	StreamDelay Duration `yaml:"streamDelay,omitempty"` // Pause between streamed word chunks (default: 150ms)
}

// RegistryConfig tunes order retention.
type RegistryConfig struct {
	Retain int `yaml:"retain,omitempty"` // Terminal orders kept before eviction (default: 1000)
}

// EventsConfig tunes the notification bus.
type EventsConfig struct {
	Buffer int `yaml:"buffer,omitempty"` // Per-subscriber channel buffer (default: 64)
}

// SimulatorConfig tunes the traffic generator.
type SimulatorConfig struct {
	Interval      Duration `yaml:"interval,omitempty"`      // Pause between submissions (default: 3s)
	ChaosRatio    float64  `yaml:"chaosRatio,omitempty"`    // Fraction of nonsense orders, 0..1
	PoolFile      string   `yaml:"poolFile,omitempty"`      // Markdown bullet list of normal orders
	ChaosPoolFile string   `yaml:"chaosPoolFile,omitempty"` // Markdown bullet list of chaos orders
}
