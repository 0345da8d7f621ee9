package config

import (
	"time"

	"griddle/internal/api"
)

// GetDefaultConfig returns the configuration used when no config file is
// present: everything in-process on localhost with the standard ports.
func GetDefaultConfig() GriddleConfig {
	return GriddleConfig{
		API: APIConfig{
			Port: 8090,
			Host: "localhost",
		},
		Stations: map[api.Station]StationConfig{
			api.StationGrill:   {Port: 8091},
			api.StationFryer:   {Port: 8092},
			api.StationDessert: {Port: 8093},
			api.StationPlating: {Port: 8094},
		},
		Pipeline: PipelineConfig{
			StepTimeout: Duration(5 * time.Second),
		},
		Kitchen: KitchenConfig{
			StreamDelay: Duration(150 * time.Millisecond),
		},
		Registry: RegistryConfig{
			Retain: 1000,
		},
		Events: EventsConfig{
			Buffer: 64,
		},
		Simulator: SimulatorConfig{
			Interval:   Duration(3 * time.Second),
			ChaosRatio: 0.2,
		},
	}
}
