package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"griddle/internal/api"
	"griddle/internal/config"
	"griddle/internal/station"
	"griddle/pkg/logging"

	"github.com/spf13/cobra"
)

var (
	stationPort       int
	stationDebug      bool
	stationSilent     bool
	stationConfigPath string
)

// stationCmd runs a single station standalone so it can live on its
// own host or be restarted independently of the orchestrator.
var stationCmd = &cobra.Command{
	Use:       "station <grill|fryer|dessert|plating>",
	Short:     "Run one kitchen station as a standalone MCP server",
	Long: `Runs a single station as an MCP server over streamable HTTP. Point the
orchestrator at it by setting stations.<name>.endpoint in config.yaml.

Without --port, the station's configured port is used.`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"grill", "fryer", "dessert", "plating"},
	RunE:      runStation,
}

func runStation(cmd *cobra.Command, args []string) error {
	st := api.Station(args[0])
	if len(station.Catalog(st)) == 0 {
		return fmt.Errorf("unknown station %q (want grill, fryer, dessert, or plating)", args[0])
	}

	logLevel := logging.LevelInfo
	if stationDebug {
		logLevel = logging.LevelDebug
	}
	var logOutput io.Writer = os.Stdout
	if stationSilent {
		logOutput = io.Discard
	}
	logging.Init(logLevel, logOutput)

	port := stationPort
	if port == 0 {
		configPath := stationConfigPath
		if configPath == "" {
			configPath = config.GetDefaultConfigPathOrPanic()
		}
		cfg, err := config.LoadConfig(configPath)
		if err != nil {
			return err
		}
		port = cfg.Stations[st].Port
	}

	srv := station.NewServer(st, port)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := srv.Start(ctx); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), station.Identity(st))
	fmt.Fprintf(cmd.OutOrStdout(), "Serving MCP at %s\n", srv.Endpoint())

	<-ctx.Done()
	return srv.Stop(context.Background())
}

func init() {
	rootCmd.AddCommand(stationCmd)

	stationCmd.Flags().IntVar(&stationPort, "port", 0, "Port to listen on (default: the station's configured port)")
	stationCmd.Flags().BoolVar(&stationDebug, "debug", false, "Enable debug logging")
	stationCmd.Flags().BoolVar(&stationSilent, "silent", false, "Suppress all log output")
	stationCmd.Flags().StringVar(&stationConfigPath, "config-path", "", "Directory containing config.yaml (default: ~/.config/griddle)")
}
