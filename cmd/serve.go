package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"griddle/internal/app"

	"github.com/spf13/cobra"
)

// serveDebug enables verbose logging across the application.
var serveDebug bool

// serveSilent suppresses all log output. Useful when another process
// captures stdout.
var serveSilent bool

// serveConfigPath overrides the user config directory.
var serveConfigPath string

// serveCmd starts the whole kitchen in one process: the four stations,
// the orchestration engine, and the HTTP API.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the kitchen: stations, orchestration engine, and HTTP API",
	Long: `Starts the four kitchen stations (grill, fryer, dessert, plating) as
in-process MCP servers, connects the orchestrator to them, and serves
the order API over HTTP.

Stations configured with an external endpoint are not started locally;
the orchestrator connects to them where they already run (see
'griddle station' for running one standalone).

Configuration is read from config.yaml in the user config directory or
the directory given with --config-path. The file is watched while the
process runs; compatible changes apply without a restart.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

// runServe is the main entry point for the serve command.
func runServe(cmd *cobra.Command, args []string) error {
	cfg := app.NewConfig(serveDebug, serveSilent, serveConfigPath)

	application, err := app.NewApplication(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return application.Run(ctx)
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().BoolVar(&serveDebug, "debug", false, "Enable debug logging")
	serveCmd.Flags().BoolVar(&serveSilent, "silent", false, "Suppress all log output")
	serveCmd.Flags().StringVar(&serveConfigPath, "config-path", "", "Directory containing config.yaml (default: ~/.config/griddle)")
}
