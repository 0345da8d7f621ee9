package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"griddle/internal/api"
	"griddle/internal/config"
	"griddle/internal/events"
	"griddle/internal/kitchen"
	"griddle/internal/registry"
	"griddle/internal/server"
	"griddle/internal/station"
	"griddle/pkg/logging"
)

// connectTimeout bounds the initial handshake with all stations.
const connectTimeout = 15 * time.Second

// Application bootstraps and runs a full griddle instance: the four
// stations in-process (unless configured as external endpoints), the
// station client set, the orchestration engine, and the HTTP API.
//
// The bootstrap follows a two-phase pattern:
//  1. NewApplication: logging, configuration
//  2. Run: start services, serve until the context is cancelled
type Application struct {
	config     *Config
	griddleCfg config.GriddleConfig
	configPath string

	mu        sync.Mutex
	apiServer *server.Server
}

// NewApplication loads configuration and prepares the application.
func NewApplication(cfg *Config) (*Application, error) {
	appLogLevel := logging.LevelInfo
	if cfg.Debug {
		appLogLevel = logging.LevelDebug
	}
	var logOutput io.Writer = os.Stdout
	if cfg.Silent {
		logOutput = io.Discard
	}
	logging.Init(appLogLevel, logOutput)

	configPath := cfg.ConfigPath
	if configPath == "" {
		configPath = config.GetDefaultConfigPathOrPanic()
	}

	var griddleCfg config.GriddleConfig
	if cfg.GriddleConfig != nil {
		griddleCfg = *cfg.GriddleConfig
	} else {
		var err error
		griddleCfg, err = config.LoadConfig(configPath)
		if err != nil {
			logging.Error("Bootstrap", err, "Failed to load configuration from %s", configPath)
			return nil, fmt.Errorf("failed to load configuration from %s: %w", configPath, err)
		}
	}

	return &Application{
		config:     cfg,
		griddleCfg: griddleCfg,
		configPath: configPath,
	}, nil
}

// GriddleConfig returns the effective configuration.
func (a *Application) GriddleConfig() config.GriddleConfig {
	return a.griddleCfg
}

// APIPort returns the bound API port once Run has started the server,
// and 0 before that. Useful when the API was configured with port 0.
func (a *Application) APIPort() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.apiServer == nil {
		return 0
	}
	return a.apiServer.Port()
}

// Run starts everything and serves until ctx is cancelled, then shuts
// down in reverse order: API first so no new orders arrive, then the
// kitchen, clients, and stations.
func (a *Application) Run(ctx context.Context) error {
	cfg := a.griddleCfg

	// Stations without an external endpoint run in-process.
	var stations []*station.Server
	endpoints := make(map[api.Station]string, len(cfg.Stations))
	for st, sc := range cfg.Stations {
		if sc.Endpoint != "" {
			endpoints[st] = sc.Endpoint
			logging.Info("Bootstrap", "using external %s station at %s", st, sc.Endpoint)
			continue
		}
		srv := station.NewServer(st, sc.Port)
		if err := srv.Start(ctx); err != nil {
			stopStations(stations)
			return fmt.Errorf("failed to start %s station: %w", st, err)
		}
		stations = append(stations, srv)
		// Read the endpoint back from the server so port 0 works.
		endpoints[st] = srv.Endpoint()
	}

	clients := station.NewClientSet(endpoints)
	connectCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	err := clients.Connect(connectCtx)
	cancel()
	if err != nil {
		stopStations(stations)
		return fmt.Errorf("failed to connect to stations: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	for st, pingErr := range clients.Ping(pingCtx) {
		if pingErr != nil {
			logging.Warn("Bootstrap", "%s station connected but not responding to ping: %v", st, pingErr)
		}
	}
	cancel()

	reg := registry.New(cfg.Registry.Retain)
	bus := events.NewBus()
	manager := kitchen.NewManager(clients, reg, bus, kitchen.Config{
		StepTimeout: time.Duration(cfg.Pipeline.StepTimeout),
		StreamDelay: time.Duration(cfg.Kitchen.StreamDelay),
	})
	api.RegisterKitchen(manager)
	api.RegisterEventBus(bus)

	apiServer := server.NewServer(cfg.API.Port, cfg.Events.Buffer)
	a.mu.Lock()
	a.apiServer = apiServer
	a.mu.Unlock()
	if err := apiServer.Start(ctx); err != nil {
		manager.Close()
		_ = clients.Close()
		stopStations(stations)
		return fmt.Errorf("failed to start API server: %w", err)
	}

	watcher := config.NewWatcher(a.configPath, func(newCfg config.GriddleConfig) {
		// Only stream pacing applies live; everything else needs a
		// restart because it is baked into running services.
		manager.SetStreamDelay(time.Duration(newCfg.Kitchen.StreamDelay))
		logging.Info("Bootstrap", "applied reloaded stream delay %s; other changes take effect on restart",
			time.Duration(newCfg.Kitchen.StreamDelay))
	})
	if err := watcher.Start(); err != nil {
		logging.Warn("Bootstrap", "configuration hot reload disabled: %v", err)
	} else {
		defer watcher.Stop()
	}

	logging.Info("Bootstrap", "griddle is up: %d in-process stations, API on port %d",
		len(stations), apiServer.Port())

	<-ctx.Done()
	logging.Info("Bootstrap", "shutting down")

	shutdownCtx := context.Background()
	if err := apiServer.Stop(shutdownCtx); err != nil {
		logging.Error("Bootstrap", err, "API server shutdown failed")
	}
	manager.Close()
	if err := clients.Close(); err != nil {
		logging.Error("Bootstrap", err, "station client shutdown failed")
	}
	stopStations(stations)
	return nil
}

func stopStations(stations []*station.Server) {
	for _, srv := range stations {
		if err := srv.Stop(context.Background()); err != nil {
			logging.Error("Bootstrap", err, "%s station shutdown failed", srv.Station())
		}
	}
}
