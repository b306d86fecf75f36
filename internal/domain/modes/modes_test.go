package modes_test

import (
	"testing"

	"github.com/okian/tripmap/internal/domain/modes"
	. "github.com/smartystreets/goconvey/convey"
)

func TestRegistry(t *testing.T) {
	Convey("Given the default registry", t, func() {
		r := modes.NewRegistry(modes.Defaults())

		Convey("When looking up modes", func() {
			Convey("Then registered modes are found", func() {
				So(r.Has("car"), ShouldBeTrue)
				So(r.Has("hovercraft"), ShouldBeFalse)
				m, ok := r.Get("walk_and_bicycle")
				So(ok, ShouldBeTrue)
				So(m.Synthetic(), ShouldBeTrue)
			})
		})

		Convey("When listing real modes", func() {
			Convey("Then synthetic modes are excluded", func() {
				So(r.Real(), ShouldResemble, []string{"car", "bicycle", "walk", "bus", "tram", "train", "other"})
				So(len(r.Synthetic()), ShouldEqual, 2)
			})
		})

		Convey("When ordering with a preferred first mode", func() {
			Convey("Then it moves to the front and the rest keep their order", func() {
				So(r.Ordered("bus"), ShouldResemble, []string{"bus", "car", "bicycle", "walk", "tram", "train", "other"})
				So(r.Ordered("car"), ShouldResemble, r.Real())
				So(r.Ordered("unknown"), ShouldResemble, r.Real())
			})
		})
	})

	Convey("Given modes with duplicates and blanks", t, func() {
		r := modes.NewRegistry([]modes.Mode{
			{Identifier: "car", Name: "Car"},
			{Identifier: ""},
			{Identifier: "car", Name: "Auto"},
		})

		Convey("Then the first occurrence wins", func() {
			So(r.Identifiers(), ShouldResemble, []string{"car"})
			m, _ := r.Get("car")
			So(m.Name, ShouldEqual, "Car")
		})
	})
}
