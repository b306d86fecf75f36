package model_test

import (
	"testing"
	"time"

	model "github.com/okian/tripmap/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func day(s string) time.Time {
	t, err := time.Parse(model.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestDateRange(t *testing.T) {
	convey.Convey("Given an inclusive date range", t, func() {
		convey.Convey("When start and end are the same day", func() {
			r := model.DateRange{Start: day("2023-05-01"), End: day("2023-05-01")}

			convey.Convey("Then it spans one day", func() {
				convey.So(r.Days(), convey.ShouldEqual, 1)
				convey.So(r.Valid(), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the range covers a full month", func() {
			r := model.DateRange{Start: day("2023-05-01"), End: day("2023-05-31")}

			convey.Convey("Then both ends are counted", func() {
				convey.So(r.Days(), convey.ShouldEqual, 31)
			})
		})

		convey.Convey("When the range crosses a DST switch", func() {
			r := model.DateRange{
				Start: time.Date(2023, 3, 25, 0, 0, 0, 0, time.FixedZone("EET", 2*3600)),
				End:   time.Date(2023, 3, 27, 0, 0, 0, 0, time.FixedZone("EEST", 3*3600)),
			}

			convey.Convey("Then days are counted by calendar date", func() {
				convey.So(r.Days(), convey.ShouldEqual, 3)
			})
		})

		convey.Convey("When the range is inverted", func() {
			r := model.DateRange{Start: day("2023-05-02"), End: day("2023-05-01")}

			convey.Convey("Then it is invalid and empty", func() {
				convey.So(r.Valid(), convey.ShouldBeFalse)
				convey.So(r.Days(), convey.ShouldEqual, 0)
			})
		})
	})
}

func TestWeekSubset(t *testing.T) {
	convey.Convey("Given week subset names", t, func() {
		convey.Convey("When parsing them", func() {
			convey.Convey("Then known names round-trip", func() {
				for _, s := range []string{"", "weekend", "workday"} {
					w, err := model.ParseWeekSubset(s)
					convey.So(err, convey.ShouldBeNil)
					convey.So(w.String(), convey.ShouldEqual, s)
				}
				_, err := model.ParseWeekSubset("holiday")
				convey.So(err, convey.ShouldNotBeNil)
			})
		})

		convey.Convey("When checking weekdays", func() {
			convey.Convey("Then weekend covers Saturday and Sunday only", func() {
				convey.So(model.WeekWeekend.Includes(time.Saturday), convey.ShouldBeTrue)
				convey.So(model.WeekWeekend.Includes(time.Monday), convey.ShouldBeFalse)
				convey.So(model.WeekWorkday.Includes(time.Sunday), convey.ShouldBeFalse)
				convey.So(model.WeekAll.Includes(time.Sunday), convey.ShouldBeTrue)
			})
		})
	})
}

func TestSelectionKey(t *testing.T) {
	convey.Convey("Given two selections differing only in week subset", t, func() {
		a := model.Selection{
			AreaType: "tre:tilastoalue", Mode: "car", Quantity: model.QuantityTrips,
			Range: model.DateRange{Start: day("2023-05-01"), End: day("2023-05-07")},
		}
		b := a
		b.WeekSubset = model.WeekWeekend

		convey.Convey("Then their keys differ", func() {
			convey.So(a.Key(), convey.ShouldEqual, "tre:tilastoalue|car|trips||2023-05-01|2023-05-07")
			convey.So(b.Key(), convey.ShouldNotEqual, a.Key())
		})
	})
}

func TestBreakdownAndAggregate(t *testing.T) {
	convey.Convey("Given a breakdown in canonical order", t, func() {
		b := model.Breakdown{{Mode: "car", Trips: 10}, {Mode: "walk", Trips: 5}}

		convey.Convey("Then it exposes both order and values", func() {
			convey.So(b.Modes(), convey.ShouldResemble, []string{"car", "walk"})
			convey.So(b.Map(), convey.ShouldResemble, map[string]float64{"car": 10, "walk": 5})
		})
	})

	convey.Convey("Given a POI aggregate", t, func() {
		p := model.PoiAggregate{InboundTotal: 35, OutboundTotal: 12}

		convey.Convey("Then the combined total adds both directions", func() {
			convey.So(p.Total(), convey.ShouldEqual, 47.0)
			convey.So(model.DirectionOf(true), convey.ShouldEqual, model.Inbound)
			convey.So(model.DirectionOf(false), convey.ShouldEqual, model.Outbound)
		})
	})

	convey.Convey("Given an area metric below the threshold", t, func() {
		m := model.AreaMetric{ColorBucket: model.NoDataBucket}

		convey.Convey("Then it reports no data", func() {
			convey.So(m.NoData(), convey.ShouldBeTrue)
		})
	})
}
