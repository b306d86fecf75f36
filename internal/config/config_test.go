package config_test

import (
	"errors"
	"runtime"
	"testing"

	"github.com/okian/tripmap/internal/config"
	"github.com/okian/tripmap/internal/domain/modes"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.VisibilityThreshold, convey.ShouldEqual, 100.0)
			convey.So(cfg.ColorClasses, convey.ShouldEqual, 7)
			convey.So(cfg.TopN, convey.ShouldEqual, 5)
			convey.So(cfg.CacheSize, convey.ShouldEqual, 1024)
			convey.So(cfg.WorkerCount, convey.ShouldEqual, runtime.NumCPU())
			convey.So(cfg.DefaultAreaType, convey.ShouldEqual, "tre:tilastoalue")
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})

		convey.Convey("Then the built-in mode registry is used", func() {
			r := cfg.Registry()
			convey.So(r.Has("car"), convey.ShouldBeTrue)
			convey.So(r.Has("public_transportation"), convey.ShouldBeTrue)
		})
	})
}

func TestConfig_Validate(t *testing.T) {
	convey.Convey("Given invalid configs", t, func() {
		cases := []struct {
			name   string
			mutate func(c *config.Config)
		}{
			{"empty addr", func(c *config.Config) { c.Addr = "" }},
			{"empty db path", func(c *config.Config) { c.DBPath = "" }},
			{"zero classes", func(c *config.Config) { c.ColorClasses = 0 }},
			{"zero top n", func(c *config.Config) { c.TopN = 0 }},
			{"zero queue", func(c *config.Config) { c.QueueSize = 0 }},
			{"negative visibility", func(c *config.Config) { c.VisibilityThreshold = -1 }},
			{"bad format", func(c *config.Config) { c.LogFormat = "xml" }},
			{"unknown default mode", func(c *config.Config) { c.DefaultMode = "hovercraft" }},
			{"dangling synthetic mode", func(c *config.Config) {
				c.Modes = []modes.Mode{{Identifier: "car"}, {Identifier: "mix", Components: []string{"car", "tram"}}}
			}},
		}

		for _, tc := range cases {
			cfg := config.New()
			tc.mutate(cfg)

			convey.Convey("Then "+tc.name+" is rejected", func() {
				convey.So(errors.Is(cfg.Validate(), config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		}
	})
}
