package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
)

func TestLoggerInit(t *testing.T) {
	if err := Init(); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}
	defer func() {
		if err := Sync(); err != nil {
			t.Errorf("failed to sync logger: %v", err)
		}
	}()

	if Get() == nil {
		t.Fatal("logger is nil after initialization")
	}

	if err := Init(WithFormat("xml")); err == nil {
		t.Fatal("expected unknown format to fail")
	}
	if err := Init(WithLevel("loud")); err == nil {
		t.Fatal("expected unknown level to fail")
	}
}

func TestLoggerJSONFields(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(WithFormat(FormatJSON), WithOutput(&buf), WithLevel("debug"))
	if err != nil {
		t.Fatalf("failed to build logger: %v", err)
	}
	defer SetLevel(0)

	l.With(String("request_id", "r-1")).Named("api").Debug(context.Background(), "served",
		Int("status", 200), Int64("poi", 9), Bool("cached", true))

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not json: %v (%q)", err, buf.String())
	}
	if entry["msg"] != "served" || entry["request_id"] != "r-1" {
		t.Fatalf("unexpected entry: %v", entry)
	}
	api, ok := entry["api"].(map[string]any)
	if !ok {
		t.Fatalf("named group missing: %v", entry)
	}
	if api["cached"] != true || api["poi"] != float64(9) {
		t.Fatalf("unexpected group fields: %v", api)
	}
	if src, _ := api["source"].(string); !strings.Contains(src, "logger_test.go") {
		t.Fatalf("source should point at the caller, got %q", src)
	}
}

func TestLoggerLevelFilter(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(WithOutput(&buf), WithLevel("warn"))
	if err != nil {
		t.Fatalf("failed to build logger: %v", err)
	}
	defer SetLevel(0)

	ctx := context.Background()
	l.Info(ctx, "hidden")
	l.Warn(ctx, "shown")
	if strings.Contains(buf.String(), "hidden") || !strings.Contains(buf.String(), "shown") {
		t.Fatalf("level filter not applied: %q", buf.String())
	}
}

func TestLoggerNamed(t *testing.T) {
	if err := Init(); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}

	namedLogger := Named("test")
	if namedLogger == nil {
		t.Fatal("named logger is nil")
	}
	namedLogger.Info(context.Background(), "test message")
}
