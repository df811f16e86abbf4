// Package cmd implements the dataneko CLI commands.
package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/dataneko/internal/config"
	"github.com/theirongolddev/dataneko/internal/counter"
	"github.com/theirongolddev/dataneko/internal/daemon"
	"github.com/theirongolddev/dataneko/internal/economy"
	"github.com/theirongolddev/dataneko/internal/pipeline"
	"github.com/theirongolddev/dataneko/internal/recorder"
	"github.com/theirongolddev/dataneko/internal/store"
)

var (
	flagDB      string
	flagQuiet   bool
	flagVerbose bool
)

var rootCmd = &cobra.Command{
	Use:          "dataneko",
	Short:        "Data usage tracker with a points-powered pet",
	Long:         "Track WiFi and mobile data usage, predict the month's total and turn saved allowance into points for your cat.",
	SilenceUsage: true,
	RunE:         runStatus,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		setupLogging()
	},
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagDB, "db", "", "SQLite database path (default: <data_dir>/dataneko.db)")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Suppress progress output")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Debug logging")
}

func setupLogging() {
	level := slog.LevelInfo
	switch {
	case flagVerbose:
		level = slog.LevelDebug
	case flagQuiet:
		level = slog.LevelWarn
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

// env bundles everything a command needs against one open database.
type env struct {
	cfg     config.Config
	store   *store.Store
	usage   *pipeline.Aggregator
	economy *economy.Manager
	app     *daemon.App
}

func (r *env) Close() error {
	return r.store.Close()
}

// loadConfig reads and validates configuration.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config %s: %w", config.ConfigPath(), err)
	}
	return cfg, nil
}

// openEnv is the shared setup path used by all data commands.
func openEnv(ctx context.Context) (*env, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	logger := slog.Default()

	dbPath := flagDB
	if dbPath == "" {
		dbPath = cfg.DBPath()
	}
	s, err := store.Open(dbPath)
	if err != nil {
		return nil, err
	}
	s.WithLogger(logger)

	usage, err := pipeline.NewAggregator(s, cfg.FirstWeekday())
	if err != nil {
		_ = s.Close()
		return nil, err
	}
	econ, err := economy.Load(ctx, s, logger)
	if err != nil {
		_ = s.Close()
		return nil, err
	}

	classifier := counter.Classifier{
		WifiPrefixes: cfg.Counters.WifiPrefixes,
		WWANPrefixes: cfg.Counters.WWANPrefixes,
	}
	reader := counter.NewProcReader(cfg.Counters.ProcDir, classifier, logger)

	return &env{
		cfg:     cfg,
		store:   s,
		usage:   usage,
		economy: econ,
		app: &daemon.App{
			Recorder:    recorder.New(s, reader, logger),
			Usage:       usage,
			Economy:     econ,
			PlanLimitGB: cfg.Plan.LimitGB,
			Logger:      logger,
		},
	}, nil
}

// parseDate reads a --date flag value in local time, defaulting to now.
func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Now(), nil
	}
	d, err := time.ParseInLocation("2006-01-02", s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --date %q (want YYYY-MM-DD)", s)
	}
	return d, nil
}

func progress(format string, args ...any) {
	if flagQuiet {
		return
	}
	fmt.Fprintf(os.Stderr, format, args...)
}
