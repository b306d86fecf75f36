package config_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/okian/tripmap/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()
		clearConfigEnvVars(t)

		convey.Convey("When loading config with defaults only", func() {
			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
				convey.So(cfg.TopN, convey.ShouldEqual, 5)
				convey.So(cfg.ColorClasses, convey.ShouldEqual, 7)
				convey.So(cfg.ShutdownTimeout, convey.ShouldEqual, 10*time.Second)
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			t.Setenv("TRIPMAP_ADDR", ":8080")
			t.Setenv("TRIPMAP_QUEUE_SIZE", "500")
			t.Setenv("TRIPMAP_WORKER_COUNT", "3")
			t.Setenv("TRIPMAP_TOP_N", "10")
			t.Setenv("TRIPMAP_VISIBILITY_THRESHOLD", "25.5")
			t.Setenv("TRIPMAP_SHUTDOWN_TIMEOUT", "3s")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.QueueSize, convey.ShouldEqual, 500)
				convey.So(cfg.WorkerCount, convey.ShouldEqual, 3)
				convey.So(cfg.TopN, convey.ShouldEqual, 10)
				convey.So(cfg.VisibilityThreshold, convey.ShouldEqual, 25.5)
				convey.So(cfg.ShutdownTimeout, convey.ShouldEqual, 3*time.Second)
			})
		})

		convey.Convey("When loading config with YAML file", func() {
			yamlContent := `
addr: ":9090"
db_path: "/tmp/trips.db"
color_classes: 5
default_mode: "walk"
modes:
  - identifier: walk
    name: Walking
    colors:
      zero: "#ffffff"
      primary: "#00aa00"
  - identifier: bicycle
    name: Cycling
  - identifier: active
    name: Active modes
    components: [walk, bicycle]
`
			t.Setenv("TRIPMAP_CONFIG", createTempConfigFile(t, yamlContent))

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load from YAML file", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.DBPath, convey.ShouldEqual, "/tmp/trips.db")
				convey.So(cfg.ColorClasses, convey.ShouldEqual, 5)
				convey.So(len(cfg.Modes), convey.ShouldEqual, 3)
				convey.So(cfg.Modes[0].Colors.Primary, convey.ShouldEqual, "#00aa00")
			})

			convey.Convey("Then the registry reflects the file", func() {
				r := cfg.Registry()
				convey.So(r.Identifiers(), convey.ShouldResemble, []string{"walk", "bicycle", "active"})
				convey.So(r.Has("car"), convey.ShouldBeFalse)
				active, ok := r.Get("active")
				convey.So(ok, convey.ShouldBeTrue)
				convey.So(active.Synthetic(), convey.ShouldBeTrue)
			})

			convey.Convey("And env vars still take precedence", func() {
				t.Setenv("TRIPMAP_ADDR", ":7070")
				cfg, err := config.Load(ctx)
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":7070")
			})
		})

		convey.Convey("When the YAML file does not exist", func() {
			t.Setenv("TRIPMAP_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))

			_, err := config.Load(ctx)

			convey.Convey("Then a load error is returned", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When a value fails validation", func() {
			t.Setenv("TRIPMAP_TOP_N", "0")

			_, err := config.Load(ctx)

			convey.Convey("Then an invalid config error is returned", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When a value cannot be decoded", func() {
			t.Setenv("TRIPMAP_QUEUE_SIZE", "lots")

			_, err := config.Load(ctx)

			convey.Convey("Then a load error is returned", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
			})
		})
	})
}

func createTempConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

// clearConfigEnvVars unsets every TRIPMAP_ variable for the duration of the test.
func clearConfigEnvVars(t *testing.T) {
	t.Helper()
	for _, kv := range os.Environ() {
		name, _, _ := strings.Cut(kv, "=")
		if strings.HasPrefix(name, config.EnvPrefix) {
			t.Setenv(name, "")
			_ = os.Unsetenv(name)
		}
	}
}

