package synth_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/okian/tripmap/internal/adapters/repository"
	"github.com/okian/tripmap/internal/domain/model"
	"github.com/okian/tripmap/internal/synth"
	"github.com/okian/tripmap/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(logger.WithLevel("error")); err != nil {
		panic(err)
	}
}

func smallConfig(t *testing.T) synth.Config {
	cfg := synth.DefaultConfig()
	cfg.DBPath = filepath.Join(t.TempDir(), "synth.db")
	cfg.Districts = 5
	cfg.POIs = 2
	cfg.Days = 7
	return cfg
}

func dayTrips(d synth.Day) float64 {
	var total float64
	for _, s := range d.ModeStats {
		total += s.Trips
	}
	return total
}

func TestGenerateDay(t *testing.T) {
	Convey("Given a small survey", t, func() {
		cfg := smallConfig(t)
		survey := synth.NewSurvey(cfg)

		Convey("Then districts and POIs are laid out with distinct ids", func() {
			So(len(survey.AreaTypes), ShouldEqual, 2)
			So(len(survey.Areas), ShouldEqual, 7)
			So(survey.Areas[0].Name, ShouldEqual, "Keskusta")
			So(survey.Areas[5].ID, ShouldEqual, int64(6))
			So(survey.Areas[5].Name, ShouldEqual, "Stadium")
		})

		Convey("When generating the same day twice", func() {
			a := synth.GenerateDay(survey, cfg.Seed, cfg.Start, 2)
			b := synth.GenerateDay(survey, cfg.Seed, cfg.Start, 2)

			Convey("Then the output is identical", func() {
				So(a, ShouldResemble, b)
				So(a.ModeStats, ShouldNotBeEmpty)
				So(a.PoiTrips, ShouldNotBeEmpty)
			})
		})

		Convey("When generating a weekday and a weekend day", func() {
			monday := synth.GenerateDay(survey, cfg.Seed, cfg.Start, 0)
			saturday := synth.GenerateDay(survey, cfg.Seed, cfg.Start, 5)

			Convey("Then the weekend is quieter", func() {
				So(monday.Date.Format(model.DateLayout), ShouldEqual, "2023-05-01")
				So(dayTrips(saturday), ShouldBeLessThan, dayTrips(monday))
			})
		})

		Convey("Then POI trips only reference districts and POIs", func() {
			day := synth.GenerateDay(survey, cfg.Seed, cfg.Start, 0)
			for _, p := range day.PoiTrips {
				So(p.AreaID, ShouldBeBetweenOrEqual, int64(1), int64(5))
				So(p.POIID, ShouldBeBetweenOrEqual, int64(6), int64(7))
				So(p.Trips, ShouldBeGreaterThan, 0)
			}
		})
	})
}

func TestRun(t *testing.T) {
	Convey("Given an empty SQLite store", t, func() {
		ctx := context.Background()
		cfg := smallConfig(t)
		store, err := repository.Open(ctx, cfg.DBPath, repository.WithBatchSize(cfg.BatchSize))
		So(err, ShouldBeNil)
		defer store.Close()

		Convey("When seeding a week", func() {
			stats, err := synth.Run(ctx, cfg, store)

			Convey("Then every row is written", func() {
				So(err, ShouldBeNil)
				So(stats.Batch, ShouldNotBeEmpty)
				So(stats.AreaTypes, ShouldEqual, 2)
				So(stats.Areas, ShouldEqual, 7)
				So(stats.ModeStats, ShouldBeGreaterThan, 0)
				So(stats.PoiTrips, ShouldBeGreaterThan, 0)
			})

			Convey("Then the store answers selections over the seeded week", func() {
				at, err := store.AreaType(ctx, synth.DistrictType)
				So(err, ShouldBeNil)
				sel := model.Selection{
					Quantity: model.QuantityTrips,
					Range:    model.DateRange{Start: cfg.Start, End: cfg.Start.AddDate(0, 0, 6)},
				}
				values, err := store.ModeValues(ctx, sel, at.ID)
				So(err, ShouldBeNil)
				So(values, ShouldNotBeEmpty)

				trips, err := store.PoiTrips(ctx, sel, at.ID, 6)
				So(err, ShouldBeNil)
				So(trips, ShouldNotBeEmpty)
			})
		})
	})

	Convey("Given an invalid config", t, func() {
		cfg := synth.DefaultConfig()
		cfg.Days = 0

		Convey("Then Run refuses it before touching the store", func() {
			_, err := synth.Run(context.Background(), cfg, nil)
			So(errors.Is(err, synth.ErrInvalidConfig), ShouldBeTrue)
		})
	})
}
