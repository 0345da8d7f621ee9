package config

import (
	"fmt"

	"griddle/internal/api"
)

// Validate checks the configuration for values the process cannot run
// with. It is called after loading and after every hot reload.
func (c GriddleConfig) Validate() error {
	if c.API.Port < 1 || c.API.Port > 65535 {
		return fmt.Errorf("api.port %d out of range", c.API.Port)
	}

	seen := map[int]string{c.API.Port: "api"}
	for _, st := range api.Stations {
		sc, ok := c.Stations[st]
		if !ok {
			return fmt.Errorf("stations.%s is not configured", st)
		}
		if sc.Endpoint != "" {
			continue
		}
		if sc.Port < 1 || sc.Port > 65535 {
			return fmt.Errorf("stations.%s.port %d out of range", st, sc.Port)
		}
		if other, taken := seen[sc.Port]; taken {
			return fmt.Errorf("stations.%s.port %d conflicts with %s", st, sc.Port, other)
		}
		seen[sc.Port] = string(st)
	}

	if c.Pipeline.StepTimeout <= 0 {
		return fmt.Errorf("pipeline.stepTimeout must be positive")
	}
	if c.Registry.Retain < 1 {
		return fmt.Errorf("registry.retain must be at least 1")
	}
	if c.Events.Buffer < 1 {
		return fmt.Errorf("events.buffer must be at least 1")
	}
	if c.Simulator.ChaosRatio < 0 || c.Simulator.ChaosRatio > 1 {
		return fmt.Errorf("simulator.chaosRatio %v must be between 0 and 1", c.Simulator.ChaosRatio)
	}
	if c.Simulator.Interval <= 0 {
		return fmt.Errorf("simulator.interval must be positive")
	}
	return nil
}
