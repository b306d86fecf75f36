package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/okian/tripmap/internal/adapters/repository"
	"github.com/okian/tripmap/internal/domain/model"
	"github.com/okian/tripmap/internal/synth"
	"github.com/okian/tripmap/pkg/logger"
)

// Default configuration constants.
const (
	defaultSeedTimeout = 10 * time.Minute
)

func main() {
	defaults := synth.DefaultConfig()
	var (
		dbPath    = flag.String("db", defaults.DBPath, "SQLite database file")
		districts = flag.Int("districts", defaults.Districts, "Number of districts")
		pois      = flag.Int("pois", defaults.POIs, "Number of points of interest")
		start     = flag.String("start", defaults.Start.Format(model.DateLayout), "First survey day (YYYY-MM-DD)")
		days      = flag.Int("days", defaults.Days, "Number of survey days")
		seed      = flag.Int64("seed", defaults.Seed, "Random seed")
		workers   = flag.Int("workers", defaults.Workers, "Concurrent day generators")
		verbose   = flag.Bool("verbose", false, "Enable verbose logging")
		help      = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		synth.ShowHelp()
		return
	}

	level := "info"
	if *verbose {
		level = "debug"
	}
	if err := logger.Init(logger.WithLevel(level)); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	startDate, err := time.Parse(model.DateLayout, *start)
	if err != nil {
		os.Stderr.WriteString("invalid -start: " + err.Error() + "\n")
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, defaultSeedTimeout)
	defer cancel()

	cfg := synth.Config{
		DBPath:    *dbPath,
		Districts: *districts,
		POIs:      *pois,
		Start:     startDate,
		Days:      *days,
		Seed:      *seed,
		Workers:   *workers,
		BatchSize: defaults.BatchSize,
		Verbose:   *verbose,
	}

	store, err := repository.Open(ctx, cfg.DBPath, repository.WithBatchSize(cfg.BatchSize))
	if err != nil {
		logger.Get().Error(ctx, "opening database failed", logger.Error(err))
		os.Exit(1)
	}
	defer store.Close()

	if _, err := synth.Run(ctx, cfg, store); err != nil {
		logger.Get().Error(ctx, "seeding failed", logger.Error(err))
		stop()
		cancel()
		_ = store.Close()
		os.Exit(1)
	}
}
