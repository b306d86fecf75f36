package synth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/okian/tripmap/internal/adapters/repository"
	"github.com/okian/tripmap/pkg/logger"
)

// ErrInvalidConfig reports a survey that cannot be generated.
var ErrInvalidConfig = errors.New("invalid synth config")

// Validate checks the survey dimensions.
func (c Config) Validate() error {
	switch {
	case c.Districts < 1:
		return fmt.Errorf("%w: need at least one district", ErrInvalidConfig)
	case c.POIs < 0:
		return fmt.Errorf("%w: negative POI count", ErrInvalidConfig)
	case c.Days < 1:
		return fmt.Errorf("%w: need at least one day", ErrInvalidConfig)
	case c.Start.IsZero():
		return fmt.Errorf("%w: missing start date", ErrInvalidConfig)
	}
	return nil
}

// Run generates the survey of cfg and writes it to store. The schema is
// created first; the store is expected to be empty.
func Run(ctx context.Context, cfg Config, store repository.Writer) (*Stats, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	stats := &Stats{Batch: uuid.NewString(), StartTime: time.Now()}
	log := logger.Get().Named("synth").With(logger.String("batch", stats.Batch))

	log.Info(ctx, "seeding synthetic survey",
		logger.Int("districts", cfg.Districts),
		logger.Int("pois", cfg.POIs),
		logger.Int("days", cfg.Days),
		logger.Int64("seed", cfg.Seed),
	)

	if err := store.Migrate(ctx); err != nil {
		return nil, err
	}

	survey := NewSurvey(cfg)
	for _, at := range survey.AreaTypes {
		if _, err := store.InsertAreaType(ctx, at); err != nil {
			return nil, err
		}
		stats.AreaTypes++
	}
	for _, a := range survey.Areas {
		if _, err := store.InsertArea(ctx, a); err != nil {
			return nil, err
		}
		stats.Areas++
	}

	days, err := generateDays(ctx, cfg, survey)
	if err != nil {
		return nil, err
	}
	for _, day := range days {
		if err := store.InsertModeStats(ctx, day.ModeStats); err != nil {
			return nil, err
		}
		if err := store.InsertPoiTrips(ctx, day.PoiTrips); err != nil {
			return nil, err
		}
		stats.ModeStats += len(day.ModeStats)
		stats.PoiTrips += len(day.PoiTrips)
		if cfg.Verbose {
			log.Debug(ctx, "day written",
				logger.String("date", day.Date.Format("2006-01-02")),
				logger.Int("modeStats", len(day.ModeStats)),
				logger.Int("poiTrips", len(day.PoiTrips)),
			)
		}
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	log.Info(ctx, "synthetic survey seeded",
		logger.Int("modeStats", stats.ModeStats),
		logger.Int("poiTrips", stats.PoiTrips),
		logger.Duration("duration", stats.Duration),
	)
	return stats, nil
}

// generateDays builds every survey day on cfg.Workers goroutines and returns
// them in date order.
func generateDays(ctx context.Context, cfg Config, survey Survey) ([]Day, error) {
	type dayResult struct {
		index int
		day   Day
	}

	indexes := make(chan int)
	results := make(chan dayResult, cfg.Days)
	workerCount := max(1, min(cfg.Workers, cfg.Days))

	for w := 0; w < workerCount; w++ {
		go func() {
			for d := range indexes {
				results <- dayResult{index: d, day: GenerateDay(survey, cfg.Seed, cfg.Start, d)}
			}
		}()
	}

	go func() {
		defer close(indexes)
		for d := 0; d < cfg.Days; d++ {
			select {
			case indexes <- d:
			case <-ctx.Done():
				return
			}
		}
	}()

	days := make([]Day, cfg.Days)
	for i := 0; i < cfg.Days; i++ {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("context cancelled during generation: %w", ctx.Err())
		case r := <-results:
			days[r.index] = r.day
		}
	}
	return days, nil
}
