package service_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/okian/tripmap/internal/adapters/repository"
	service "github.com/okian/tripmap/internal/app"
	"github.com/okian/tripmap/internal/domain/model"
	"github.com/okian/tripmap/pkg/logger"
	"github.com/okian/tripmap/pkg/metrics"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	// Initialize logging for tests
	if err := logger.Init(logger.WithLevel("error")); err != nil {
		panic(err)
	}
}

// latencySum returns the running sample sum of one analytics latency histogram.
func latencySum(name string) float64 {
	families, err := metrics.GetRegistry().Gather()
	So(err, ShouldBeNil)
	for _, f := range families {
		if f.GetName() == "tripmap_analytics_"+name && len(f.GetMetric()) > 0 {
			return f.GetMetric()[0].GetHistogram().GetSampleSum()
		}
	}
	return 0
}

func day(s string) time.Time {
	t, err := time.Parse(model.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

// seededStore holds two districts and one stadium POI with a week of trips
// starting Monday 2023-05-01.
func seededStore(t *testing.T) *repository.SQLiteStore {
	ctx := context.Background()
	store, err := repository.Open(ctx, filepath.Join(t.TempDir(), "trips.db"))
	So(err, ShouldBeNil)
	So(store.Migrate(ctx), ShouldBeNil)

	districts, err := store.InsertAreaType(ctx, model.AreaType{Identifier: "tre:tilastoalue", Name: "Districts"})
	So(err, ShouldBeNil)
	pois, err := store.InsertAreaType(ctx, model.AreaType{Identifier: "tre:poi", Name: "POIs", IsPOI: true})
	So(err, ShouldBeNil)
	for _, a := range []model.Area{
		{ID: 1, AreaTypeID: districts, Identifier: "d1", Name: "Keskusta"},
		{ID: 2, AreaTypeID: districts, Identifier: "d2", Name: "Hervanta"},
		{ID: 9, AreaTypeID: pois, Identifier: "p9", Name: "Stadium"},
	} {
		_, err := store.InsertArea(ctx, a)
		So(err, ShouldBeNil)
	}

	var stats []repository.ModeStat
	var trips []repository.PoiTrip
	for d := 0; d < 7; d++ {
		date := day("2023-05-01").AddDate(0, 0, d)
		stats = append(stats,
			repository.ModeStat{AreaTypeID: districts, AreaID: 1, Date: date, Mode: "car", Trips: 10, Length: 100},
			repository.ModeStat{AreaTypeID: districts, AreaID: 1, Date: date, Mode: "walk", Trips: 5, Length: 5},
			repository.ModeStat{AreaTypeID: districts, AreaID: 2, Date: date, Mode: "car", Trips: 1, Length: 20},
		)
		trips = append(trips,
			repository.PoiTrip{AreaTypeID: districts, AreaID: 1, POIID: 9, Date: date, Mode: "car", IsInbound: true, Trips: 2, Length: 8},
			repository.PoiTrip{AreaTypeID: districts, AreaID: 2, POIID: 9, Date: date, Mode: "bus", IsInbound: false, Trips: 1, Length: 3},
		)
	}
	So(store.InsertModeStats(ctx, stats), ShouldBeNil)
	So(store.InsertPoiTrips(ctx, trips), ShouldBeNil)
	return store
}

func week() model.Selection {
	return model.Selection{
		Mode:  "car",
		Range: model.DateRange{Start: day("2023-05-01"), End: day("2023-05-07")},
	}
}

func eventually(cond func() bool) bool {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(10 * time.Millisecond)
	}
	return cond()
}

func TestService_New(t *testing.T) {
	Convey("Given a new service with custom options", t, func() {
		svc, err := service.New(nil,
			service.WithWorkerCount(2),
			service.WithQueueSize(10),
			service.WithCacheSize(16),
			service.WithDefaults("tre:poi", "walk"),
		)

		Convey("Then it should be created successfully", func() {
			So(err, ShouldBeNil)
			So(svc, ShouldNotBeNil)
			So(svc.GetStats()["started"], ShouldEqual, false)
		})

		Convey("Then empty selection fields take the defaults", func() {
			sel := svc.Normalize(model.Selection{})
			So(sel.AreaType, ShouldEqual, "tre:poi")
			So(sel.Mode, ShouldEqual, "walk")
			So(sel.Quantity, ShouldEqual, model.QuantityTrips)
		})
	})

	Convey("Given an invalid default top N", t, func() {
		_, err := service.New(nil, service.WithTopN(0))

		Convey("Then construction fails", func() {
			So(err, ShouldNotBeNil)
		})
	})
}

func TestService_AreaMetrics(t *testing.T) {
	Convey("Given a service over a seeded store", t, func() {
		ctx := context.Background()
		store := seededStore(t)
		defer store.Close()
		svc, err := service.New(store, service.WithVisibilityThreshold(10), service.WithColorClasses(2))
		So(err, ShouldBeNil)

		Convey("When projecting car trips for the week", func() {
			res, err := svc.AreaMetrics(ctx, week())

			Convey("Then every area gets a metric in area order", func() {
				So(err, ShouldBeNil)
				So(res.Status, ShouldEqual, service.StatusOK)
				So(res.RangeDays, ShouldEqual, 7)
				So(res.Classes, ShouldEqual, 2)
				So(len(res.Metrics), ShouldEqual, 2)
				So(res.Metrics[0].AreaID, ShouldEqual, int64(1))
				So(res.Metrics[1].AreaID, ShouldEqual, int64(2))
			})

			Convey("Then the busy district is visible with a daily average", func() {
				m := res.Metrics[0]
				So(m.AbsoluteValue, ShouldEqual, 70.0)
				So(m.RelativeShare, ShouldAlmostEqual, 70.0/105.0)
				So(m.DailyAverage, ShouldAlmostEqual, 10.0)
				So(m.Transparent, ShouldBeFalse)
				So(m.Elevation, ShouldEqual, 1.0)
			})

			Convey("Then the quiet district falls below the visibility threshold", func() {
				m := res.Metrics[1]
				So(m.NoData(), ShouldBeTrue)
				So(m.Transparent, ShouldBeTrue)
				So(m.Elevation, ShouldEqual, 0.0)
			})

			Convey("Then synthetic shares are attached", func() {
				So(res.Metrics[0].SyntheticShares["walk_and_bicycle"], ShouldAlmostEqual, 35.0/105.0)
			})

			Convey("Then the result is served from the cache afterwards", func() {
				So(svc.GetStats()["projections"], ShouldEqual, int64(1))
				again, err := svc.AreaMetrics(ctx, week())
				So(err, ShouldBeNil)
				So(again, ShouldResemble, res)
			})
		})

		Convey("When a fresh projection is timed", func() {
			before := latencySum("projection_latency_milliseconds")
			_, err := svc.AreaMetrics(ctx, week())
			So(err, ShouldBeNil)

			Convey("Then sub-millisecond latency is not truncated to zero", func() {
				So(latencySum("projection_latency_milliseconds"), ShouldBeGreaterThan, before)
			})
		})

		Convey("When projecting an unknown mode", func() {
			sel := week()
			sel.Mode = "hovercraft"
			res, err := svc.AreaMetrics(ctx, sel)

			Convey("Then a no_data result is returned instead of an error", func() {
				So(err, ShouldBeNil)
				So(res.Status, ShouldEqual, service.StatusNoData)
				So(res.Reason, ShouldEqual, service.ReasonUnknownMode)
			})
		})

		Convey("When the date range holds no trips", func() {
			sel := week()
			sel.Range = model.DateRange{Start: day("2024-01-01"), End: day("2024-01-07")}
			res, err := svc.AreaMetrics(ctx, sel)

			Convey("Then insufficient data is reported as no_data", func() {
				So(err, ShouldBeNil)
				So(res.Status, ShouldEqual, service.StatusNoData)
				So(res.Reason, ShouldEqual, service.ReasonInsufficientData)
				So(res.Metrics, ShouldBeEmpty)
			})
		})

		Convey("When the area type does not exist", func() {
			sel := week()
			sel.AreaType = "nowhere"
			_, err := svc.AreaMetrics(ctx, sel)

			Convey("Then not found is returned", func() {
				So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
			})
		})
	})
}

func TestService_PoiAggregate(t *testing.T) {
	Convey("Given a service over a seeded store", t, func() {
		ctx := context.Background()
		store := seededStore(t)
		defer store.Close()
		svc, err := service.New(store)
		So(err, ShouldBeNil)

		Convey("When aggregating the stadium", func() {
			agg, err := svc.PoiAggregate(ctx, week(), 9, 0)

			Convey("Then totals and averages cover both directions", func() {
				So(err, ShouldBeNil)
				So(agg.POI, ShouldEqual, int64(9))
				So(agg.Name, ShouldEqual, "Stadium")
				So(agg.InboundTotal, ShouldEqual, 14.0)
				So(agg.OutboundTotal, ShouldEqual, 7.0)
				So(agg.Total(), ShouldEqual, 21.0)
				So(agg.InboundAvgLength, ShouldAlmostEqual, 8.0)
				So(agg.OutboundAvgLength, ShouldAlmostEqual, 3.0)
			})

			Convey("Then counterparts are named and ranked per direction", func() {
				So(len(agg.TopInbound), ShouldEqual, 1)
				So(agg.TopInbound[0].AreaID, ShouldEqual, int64(1))
				So(agg.TopInbound[0].Name, ShouldEqual, "Keskusta")
				So(agg.TopInbound[0].Share, ShouldEqual, 1.0)
				So(agg.TopInbound[0].ModeBreakdown.Map()["car"], ShouldEqual, 14.0)
				So(len(agg.TopOutbound), ShouldEqual, 1)
				So(agg.TopOutbound[0].AreaID, ShouldEqual, int64(2))
			})
		})

		Convey("When aggregating an unknown POI", func() {
			_, err := svc.PoiAggregate(ctx, week(), 99, 3)

			Convey("Then not found is returned", func() {
				So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
			})
		})
	})
}

func TestService_Warm(t *testing.T) {
	Convey("Given a service over a seeded store", t, func() {
		ctx := context.Background()
		store := seededStore(t)
		defer store.Close()
		svc, err := service.New(store, service.WithWorkerCount(2))
		So(err, ShouldBeNil)

		Convey("When warming before start", func() {
			_, err := svc.Warm(ctx, week())

			Convey("Then the service reports it is not started", func() {
				So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
			})
		})

		Convey("When warming a started service", func() {
			So(svc.Start(ctx), ShouldBeNil)
			defer func() { So(svc.Stop(ctx), ShouldBeNil) }()

			n, err := svc.Warm(ctx, week())

			Convey("Then one job per POI is queued and cached by the workers", func() {
				So(err, ShouldBeNil)
				So(n, ShouldEqual, 1)
				So(eventually(func() bool {
					return svc.GetStats()["aggregates"] == int64(1)
				}), ShouldBeTrue)
				So(svc.GetStats()["started"], ShouldEqual, true)
			})
		})
	})
}
