package cmd

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"griddle/internal/config"
	"griddle/internal/simulator"
	"griddle/pkg/logging"

	"github.com/spf13/cobra"
)

var (
	simulateAddress    string
	simulateInterval   time.Duration
	simulateChaosRatio float64
	simulateCount      int
	simulatePoolFile   string
	simulateChaosFile  string
	simulateSeed       int64
	simulateConfigPath string
	simulateDebug      bool
	simulateSilent     bool
)

// simulateCmd generates order traffic against a running instance.
var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Generate order traffic against a running griddle instance",
	Long: `Submits randomly selected orders at a fixed interval. A configurable
fraction of submissions comes from a "chaos" pool of nonsense text,
which exercises the resolver's fallback behavior.

Order pools can be overridden with markdown files containing one order
per "- " bullet line.`,
	Args: cobra.NoArgs,
	RunE: runSimulate,
}

func runSimulate(cmd *cobra.Command, args []string) error {
	logLevel := logging.LevelInfo
	if simulateDebug {
		logLevel = logging.LevelDebug
	}
	var logOutput io.Writer = os.Stdout
	if simulateSilent {
		logOutput = io.Discard
	}
	logging.Init(logLevel, logOutput)

	configPath := simulateConfigPath
	if configPath == "" {
		configPath = config.GetDefaultConfigPathOrPanic()
	}
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return err
	}

	// Flags win over config.yaml's simulator section.
	interval := time.Duration(cfg.Simulator.Interval)
	if cmd.Flags().Changed("interval") {
		interval = simulateInterval
	}
	chaosRatio := cfg.Simulator.ChaosRatio
	if cmd.Flags().Changed("chaos-ratio") {
		chaosRatio = simulateChaosRatio
	}
	poolFile := cfg.Simulator.PoolFile
	if cmd.Flags().Changed("pool-file") {
		poolFile = simulatePoolFile
	}
	chaosFile := cfg.Simulator.ChaosPoolFile
	if cmd.Flags().Changed("chaos-pool-file") {
		chaosFile = simulateChaosFile
	}

	sim := simulator.New(simulator.Config{
		BaseURL:    simulateAddress,
		Interval:   interval,
		ChaosRatio: chaosRatio,
		Count:      simulateCount,
		NormalPool: simulator.LoadPool(poolFile, simulator.DefaultNormalOrders),
		ChaosPool:  simulator.LoadPool(chaosFile, simulator.DefaultChaosOrders),
		Seed:       simulateSeed,
	})

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return sim.Run(ctx)
}

func init() {
	rootCmd.AddCommand(simulateCmd)

	simulateCmd.Flags().StringVar(&simulateAddress, "address", "http://localhost:8090", "Base URL of the griddle API")
	simulateCmd.Flags().DurationVar(&simulateInterval, "interval", 3*time.Second, "Pause between submissions")
	simulateCmd.Flags().Float64Var(&simulateChaosRatio, "chaos-ratio", 0.2, "Fraction of nonsense orders, 0..1")
	simulateCmd.Flags().IntVar(&simulateCount, "count", 0, "Stop after this many orders (0 = run until interrupted)")
	simulateCmd.Flags().StringVar(&simulatePoolFile, "pool-file", "", "Markdown bullet list overriding the normal order pool")
	simulateCmd.Flags().StringVar(&simulateChaosFile, "chaos-pool-file", "", "Markdown bullet list overriding the chaos order pool")
	simulateCmd.Flags().Int64Var(&simulateSeed, "seed", 0, "Seed for reproducible order selection (0 = random)")
	simulateCmd.Flags().StringVar(&simulateConfigPath, "config-path", "", "Directory containing config.yaml (default: ~/.config/griddle)")
	simulateCmd.Flags().BoolVar(&simulateDebug, "debug", false, "Enable debug logging")
	simulateCmd.Flags().BoolVar(&simulateSilent, "silent", false, "Suppress all log output")
}
