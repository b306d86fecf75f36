package repository_test

import (
	"testing"

	"github.com/okian/tripmap/internal/adapters/repository"
	"github.com/okian/tripmap/internal/domain/model"
	"github.com/okian/tripmap/internal/domain/modes"
	. "github.com/smartystreets/goconvey/convey"
)

func TestPivotModeShares(t *testing.T) {
	registry := modes.NewRegistry([]modes.Mode{
		{Identifier: "car"},
		{Identifier: "walk"},
		{Identifier: "bicycle"},
		{Identifier: "walk_and_bicycle", Components: []string{"walk", "bicycle"}},
	})

	Convey("Given long per-(area, mode) values", t, func() {
		values := []model.AreaModeValue{
			{AreaID: 2, Mode: "car", Value: 30},
			{AreaID: 2, Mode: "walk", Value: 10},
			{AreaID: 1, Mode: "car", Value: 5},
			{AreaID: 2, Mode: "bicycle", Value: 10},
			{AreaID: 2, Mode: "car", Value: 50},
			{AreaID: 3, Mode: "car", Value: 0},
		}

		Convey("When pivoting", func() {
			wide, err := repository.PivotModeShares(values, registry)
			So(err, ShouldBeNil)

			Convey("Then there is one row per area in first-seen order", func() {
				So(wide.Len(), ShouldEqual, 3)
				So(wide.Schema().Names(), ShouldResemble, []string{
					"area_id", "car", "car_rel", "walk", "walk_rel", "bicycle", "bicycle_rel",
					"walk_and_bicycle", "walk_and_bicycle_rel",
				})
				rows := wide.Rows()
				So(rows[0].Int("area_id"), ShouldEqual, int64(2))
				So(rows[1].Int("area_id"), ShouldEqual, int64(1))
			})

			Convey("And repeated pairs are summed before shares are taken", func() {
				r := wide.Rows()[0]
				So(r.Float("car"), ShouldEqual, 80.0)
				So(r.Float("car_rel"), ShouldAlmostEqual, 0.8)
				So(r.Float("walk_and_bicycle"), ShouldEqual, 20.0)
				So(r.Float("walk_and_bicycle_rel"), ShouldAlmostEqual, 0.2)
				So(r.Float("car_rel")+r.Float("walk_rel")+r.Float("bicycle_rel"), ShouldAlmostEqual, 1.0)
			})

			Convey("And modes missing from an area are zero", func() {
				r := wide.Rows()[1]
				So(r.Float("walk"), ShouldEqual, 0.0)
				So(r.Float("car_rel"), ShouldEqual, 1.0)
			})

			Convey("And an area with no trips has zero shares", func() {
				r := wide.Rows()[2]
				So(r.Float("car_rel"), ShouldEqual, 0.0)
			})
		})
	})

	Convey("Given no values", t, func() {
		wide, err := repository.PivotModeShares(nil, registry)

		Convey("Then the pivot is empty but keeps its columns", func() {
			So(err, ShouldBeNil)
			So(wide.Len(), ShouldEqual, 0)
			So(wide.Has("car_rel"), ShouldBeTrue)
		})
	})
}
