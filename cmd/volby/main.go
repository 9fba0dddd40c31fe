package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alvmarrod/election-weaver/internal/app"
	"github.com/alvmarrod/election-weaver/internal/config"
	"github.com/alvmarrod/election-weaver/internal/metrics"
	"github.com/alvmarrod/election-weaver/internal/version"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

type options struct {
	configPath  string
	workers     int
	cachePath   string
	metricsPath string
	logLevel    string
}

func main() {
	// Configure logging
	logrus.SetLevel(logrus.InfoLevel)
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	if err := newRootCommand().Execute(); err != nil {
		logrus.Error(err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:           "volby DISTRICT OUTPUT",
		Short:         "Export municipality results of one district to CSV",
		Example:       `  volby "Benešov" benesov.csv`,
		Version:       version.Version,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts, args[0], args[1])
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.configPath, "config", "c", "", "path to a JSON config file")
	flags.IntVarP(&opts.workers, "workers", "w", 0, "municipalities fetched concurrently (1 = sequential)")
	flags.StringVar(&opts.cachePath, "cache", "", "SQLite page cache path")
	flags.StringVar(&opts.metricsPath, "metrics", "", "write run metrics as JSON to this path")
	flags.StringVar(&opts.logLevel, "log-level", "", "log level (debug, info, warn, error)")

	return cmd
}

func run(cmd *cobra.Command, opts *options, district, output string) error {
	logrus.Infof("Election Weaver v%s starting...", version.Version)

	cfg, err := config.LoadConfig(opts.configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := applyFlags(cfg, cmd, opts); err != nil {
		return err
	}

	level, _ := logrus.ParseLevel(cfg.LogLevel)
	logrus.SetLevel(level)

	logrus.Infof("Configuration loaded: root=%s, workers=%d, cache=%q",
		cfg.RootURL, cfg.ConcurrentWorkers, cfg.CachePath)

	tracker := metrics.NewTracker()

	fetcher, closeFetcher, err := app.NewFetcher(cfg, tracker)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeFetcher(); err != nil {
			logrus.Errorf("Failed to flush page cache: %v", err)
		}
	}()

	// Cancel in-flight fetches on SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Start progress logger
	stopProgress := make(chan struct{})
	go func() {
		ticker := time.NewTicker(10 * time.Second)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				logrus.Info(tracker.LogProgress())
			case <-stopProgress:
				return
			}
		}
	}()

	runErr := app.New(cfg, fetcher, tracker).Run(ctx, district, output)
	close(stopProgress)

	logrus.Info("Final stats: " + tracker.LogProgress())
	writeMetrics(cfg, tracker, terminationReason(ctx, runErr))

	if errors.Is(runErr, app.ErrDistrictNotFound) {
		return fmt.Errorf("district %q was not found in the listing", district)
	}
	return runErr
}

// applyFlags lets explicitly set flags override the config file
func applyFlags(cfg *config.Config, cmd *cobra.Command, opts *options) error {
	flags := cmd.Flags()
	if flags.Changed("workers") {
		cfg.ConcurrentWorkers = opts.workers
	}
	if flags.Changed("cache") {
		cfg.CachePath = opts.cachePath
	}
	if flags.Changed("metrics") {
		cfg.MetricsPath = opts.metricsPath
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = opts.logLevel
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}
	return nil
}

func terminationReason(ctx context.Context, err error) string {
	switch {
	case err == nil:
		return "completed"
	case ctx.Err() != nil:
		return "signal"
	case errors.Is(err, app.ErrDistrictNotFound):
		return "district_not_found"
	default:
		return "error"
	}
}

func writeMetrics(cfg *config.Config, tracker *metrics.Tracker, reason string) {
	if cfg.MetricsPath == "" {
		return
	}
	if err := tracker.WriteToFile(cfg.MetricsPath, reason); err != nil {
		logrus.Errorf("Failed to write metrics: %v", err)
		return
	}
	logrus.Infof("Metrics written to %s", cfg.MetricsPath)
}
