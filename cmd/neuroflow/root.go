package main

import (
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/neuroflow/backend/internal/services"
)

var version = "dev"

const defaultMLServiceURL = "http://localhost:8001"

// rootOptions holds the persistent flags shared by every subcommand.
type rootOptions struct {
	debug   bool
	mlURL   string
	timeout time.Duration
	logger  *slog.Logger
}

func (o *rootOptions) predictor() *services.Predictor {
	return services.NewPredictor(services.PredictorConfig{
		BaseURL:        o.mlURL,
		PredictTimeout: o.timeout,
	}, nil, o.logger)
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "neuroflow",
		Short: "NeuroFlow - ADHD-aware task prioritization from the command line",
		Long: `NeuroFlow scores tasks for priority and completion likelihood.

Predictions come from the external model server when it is reachable and from
the local fallback formula otherwise. Every command prints JSON.`,
		Version:      version,
		SilenceUsage: true,
	}

	envURL := os.Getenv("ML_SERVICE_URL")
	if envURL == "" {
		envURL = defaultMLServiceURL
	}
	cmd.PersistentFlags().BoolVar(&opts.debug, "debug", false, "Enable debug logging")
	cmd.PersistentFlags().StringVar(&opts.mlURL, "ml-url", envURL, "Base URL of the model server")
	cmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", services.DefaultPredictTimeout, "Timeout for a single prediction call")

	cmd.PersistentPreRun = func(cmd *cobra.Command, _ []string) {
		opts.logger = newLogger(cmd.ErrOrStderr(), opts.debug)
	}

	cmd.AddCommand(newStatusCommand(opts))
	cmd.AddCommand(newModelInfoCommand(opts))
	cmd.AddCommand(newPredictCommand(opts))
	cmd.AddCommand(newBatchCommand(opts))
	cmd.AddCommand(newSimulateCommand(opts))
	cmd.AddCommand(newCompareCommand(opts))
	cmd.AddCommand(newReadinessCommand())

	return cmd
}

// newLogger writes text logs to w at INFO, or DEBUG when debug is set.
func newLogger(w io.Writer, debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func execute() error {
	return newRootCommand().Execute()
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
