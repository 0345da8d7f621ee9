package config

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"griddle/internal/api"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, configFileName), []byte(content), 0o644))
}

func TestLoadConfigDefaultsWhenMissing(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, GetDefaultConfig(), cfg)
}

func TestLoadConfigOverlaysFile(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `
api:
  port: 9000
pipeline:
  stepTimeout: 2s
stations:
  grill:
    port: 9001
  fryer:
    port: 9002
  dessert:
    port: 9003
  plating:
    endpoint: http://plating.kitchen.local:8080/mcp
simulator:
  chaosRatio: 0.5
`)

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.API.Port)
	assert.Equal(t, 2*time.Second, time.Duration(cfg.Pipeline.StepTimeout))
	assert.Equal(t, "http://localhost:9001/mcp", cfg.Stations[api.StationGrill].MCPEndpoint())
	assert.Equal(t, "http://plating.kitchen.local:8080/mcp", cfg.Stations[api.StationPlating].MCPEndpoint())
	assert.Equal(t, 0.5, cfg.Simulator.ChaosRatio)
	// Sections absent from the file keep their defaults.
	assert.Equal(t, 1000, cfg.Registry.Retain)
	assert.Equal(t, 64, cfg.Events.Buffer)
}

func TestLoadConfigRejectsMalformedYAML(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "api: [not a mapping")

	_, err := LoadConfig(dir)
	assert.Error(t, err)
}

func TestLoadConfigRejectsBadDuration(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "pipeline:\n  stepTimeout: soon\n")

	_, err := LoadConfig(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid duration")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*GriddleConfig)
		wantErr string
	}{
		{"defaults pass", func(c *GriddleConfig) {}, ""},
		{"api port out of range", func(c *GriddleConfig) { c.API.Port = 0 }, "api.port"},
		{"missing station", func(c *GriddleConfig) { delete(c.Stations, api.StationFryer) }, "stations.fryer"},
		{"duplicate station port", func(c *GriddleConfig) {
			c.Stations[api.StationFryer] = StationConfig{Port: c.Stations[api.StationGrill].Port}
		}, "conflicts"},
		{"external endpoint skips port check", func(c *GriddleConfig) {
			c.Stations[api.StationFryer] = StationConfig{Endpoint: "http://fryer:8080/mcp"}
		}, ""},
		{"zero step timeout", func(c *GriddleConfig) { c.Pipeline.StepTimeout = 0 }, "stepTimeout"},
		{"zero retain", func(c *GriddleConfig) { c.Registry.Retain = 0 }, "retain"},
		{"zero buffer", func(c *GriddleConfig) { c.Events.Buffer = 0 }, "buffer"},
		{"chaos ratio above one", func(c *GriddleConfig) { c.Simulator.ChaosRatio = 1.5 }, "chaosRatio"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := GetDefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestWatcherDeliversValidReloads(t *testing.T) {
	dir := t.TempDir()

	var mu sync.Mutex
	var reloaded []GriddleConfig
	w := NewWatcher(dir, func(cfg GriddleConfig) {
		mu.Lock()
		reloaded = append(reloaded, cfg)
		mu.Unlock()
	})
	require.NoError(t, w.Start())
	defer w.Stop()

	writeConfig(t, dir, "api:\n  port: 9100\n")

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(reloaded) > 0
	}, 5*time.Second, 50*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 9100, reloaded[len(reloaded)-1].API.Port)
}

func TestWatcherSkipsInvalidEdits(t *testing.T) {
	dir := t.TempDir()

	var mu sync.Mutex
	count := 0
	w := NewWatcher(dir, func(GriddleConfig) {
		mu.Lock()
		count++
		mu.Unlock()
	})
	require.NoError(t, w.Start())
	defer w.Stop()

	writeConfig(t, dir, "api: [broken")

	// Give the debounce window time to fire; the invalid edit must not
	// reach the callback.
	time.Sleep(2 * DefaultDebounceInterval)
	mu.Lock()
	defer mu.Unlock()
	assert.Zero(t, count)
}
