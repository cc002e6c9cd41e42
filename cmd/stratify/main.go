package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ajitpratap0/stratify/internal/pipeline"
	"github.com/ajitpratap0/stratify/pkg/config"
	"github.com/ajitpratap0/stratify/pkg/logger"
	"github.com/ajitpratap0/stratify/pkg/metrics"
	"github.com/ajitpratap0/stratify/pkg/observability"
)

var version = "0.1.0"

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "stratify:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configFile string

	root := &cobra.Command{
		Use:   "stratify",
		Short: "Stratify - build a small stratified train/test subset",
		Long: `Stratify loads a headerless delimited dataset, draws a fixed number of rows
per class for a train subset and a test subset, prints the combined subset
and writes it with a row index to a new file.

With no flags it reads iris.data and writes iris_subset.csv, drawing 4 train
rows and 1 test row per class.

Settings are resolved as defaults < --config file < STRATIFY_* environment
variables < flags.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := resolveConfig(cmd.Flags(), configFile)
			if err != nil {
				return err
			}
			return runSubset(cmd.Context(), cfg, cmd.OutOrStdout())
		},
	}

	root.Flags().StringVarP(&configFile, "config", "c", "", "Path to a YAML configuration file")
	registerRunFlags(root.Flags())

	root.AddCommand(newVersionCmd(), newConfigCmd())
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Stratify v%s\n", version)
			fmt.Fprintf(out, "Go version: %s\n", runtime.Version())
			fmt.Fprintf(out, "OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	}
}

func newConfigCmd() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration files",
	}

	var force bool
	initCmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Write the default configuration as YAML",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "stratify.yaml"
			if len(args) == 1 {
				path = args[0]
			}
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists, use --force to overwrite", path)
			}
			if err := config.Save(path, config.Default()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
			return nil
		},
	}
	initCmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite an existing file")

	configCmd.AddCommand(initCmd)
	return configCmd
}

// runSubset sets up logging and tracing for cfg and runs the pipeline once
func runSubset(ctx context.Context, cfg *config.Config, out io.Writer) error {
	if err := logger.Init(logger.Config{
		Level:       cfg.Logging.Level,
		Encoding:    cfg.Logging.Encoding,
		Development: cfg.Logging.Development,
	}); err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	log := logger.Get().With(zap.String("component", "stratify-cli"))

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if path := cfg.Observability.TraceFile; path != "" {
		shutdown, err := observability.InitFileTracing(path, observability.DefaultTracingConfig(version))
		if err != nil {
			return err
		}
		defer func() {
			if err := shutdown(context.Background()); err != nil {
				log.Warn("failed to flush traces", zap.Error(err))
			}
		}()
	}

	p, err := pipeline.NewSubsetPipeline(cfg, log,
		pipeline.WithOutput(out),
		pipeline.WithMetrics(metrics.NewCollector("stratify")),
		pipeline.WithVersion(version))
	if err != nil {
		return err
	}

	result, err := p.Run(ctx)
	if err != nil {
		return err
	}

	log.Info("subset written",
		zap.String("path", cfg.Destination.Path),
		zap.Int("rows", result.Split.Combined.Nrow()),
		zap.Uint64("seed", result.Split.Seed),
		zap.Any("metrics", p.Metrics()))
	return nil
}
