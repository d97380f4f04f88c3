package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  slog.Level
	}{
		{"info", "info", slog.LevelInfo},
		{"debug", "debug", slog.LevelDebug},
		{"trace", "trace", LevelTrace},
		{"uppercase DEBUG", "DEBUG", slog.LevelDebug},
		{"mixed case Trace", "Trace", LevelTrace},
		{"warn", "warn", slog.LevelWarn},
		{"warning", "WARNING", slog.LevelWarn},
		{"error", "error", slog.LevelError},
		{"padded", " debug ", slog.LevelDebug},
		{"unknown defaults to info", "verbose", slog.LevelInfo},
		{"empty defaults to info", "", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseLevel(tt.input); got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestNewLogger_LevelFiltering(t *testing.T) {
	tests := []struct {
		level      string
		logAtDebug bool
		logAtTrace bool
	}{
		{"info", false, false},
		{"debug", true, false},
		{"trace", true, true},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			var buf bytes.Buffer
			logger := NewLogger(tt.level, &buf)

			logger.Debug("debug message")
			if got := strings.Contains(buf.String(), "debug message"); got != tt.logAtDebug {
				t.Errorf("debug visible = %v, want %v", got, tt.logAtDebug)
			}

			buf.Reset()
			logger.Log(context.Background(), LevelTrace, "trace message")
			if got := strings.Contains(buf.String(), "level=TRACE"); got != tt.logAtTrace {
				t.Errorf("trace visible = %v, want %v (buf: %q)", got, tt.logAtTrace, buf.String())
			}
		})
	}
}

func TestNewLogger_WarnAndError(t *testing.T) {
	tests := []struct {
		level    string
		showInfo bool
		showWarn bool
	}{
		{"warn", false, true},
		{"error", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			var buf bytes.Buffer
			logger := NewLogger(tt.level, &buf)

			logger.Info("info message")
			logger.Warn("warn message")
			logger.Error("error message")

			out := buf.String()
			if got := strings.Contains(out, "info message"); got != tt.showInfo {
				t.Errorf("info visible = %v, want %v", got, tt.showInfo)
			}
			if got := strings.Contains(out, "warn message"); got != tt.showWarn {
				t.Errorf("warn visible = %v, want %v", got, tt.showWarn)
			}
			if !strings.Contains(out, "error message") {
				t.Error("error record dropped")
			}
		})
	}
}

func TestTracing(t *testing.T) {
	if Tracing(nil) {
		t.Error("nil logger reports tracing")
	}
	if Tracing(NewLogger("debug", &bytes.Buffer{})) {
		t.Error("debug logger reports tracing")
	}
	if !Tracing(NewLogger("trace", &bytes.Buffer{})) {
		t.Error("trace logger does not report tracing")
	}
}

func TestDiscard(t *testing.T) {
	// must not panic and must not write anywhere observable
	Discard().Error("dropped")
}

func TestEventLog(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "run")
	l := NewEventLog(dir)
	if l == nil {
		t.Fatal("expected event log")
	}

	delta := -0.5
	l.Scenario(ScenarioEvent{Model: "chain3", Species: "A", Status: "ok", Delta: &delta, Reaches: true})
	l.Scenario(ScenarioEvent{Model: "chain3", Index: 1, Species: "B", Status: "failed", Error: "boom"})
	l.Close()
	l.Scenario(ScenarioEvent{Species: "after close"})

	data, err := os.ReadFile(filepath.Join(dir, "events.jsonl"))
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %q", len(lines), data)
	}

	var first, second map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &first); err != nil {
		t.Fatal(err)
	}
	if first["species"] != "A" || first["delta"] != -0.5 || first["reaches"] != true {
		t.Errorf("unexpected entry %v", first)
	}
	if ts, ok := first["time"].(string); !ok || ts == "" || strings.HasPrefix(ts, "0001") {
		t.Errorf("time not stamped: %v", first["time"])
	}
	if err := json.Unmarshal([]byte(lines[1]), &second); err != nil {
		t.Fatal(err)
	}
	if _, ok := second["delta"]; ok {
		t.Errorf("failed scenario carries a delta: %v", second)
	}
	if second["error"] != "boom" {
		t.Errorf("error = %v", second["error"])
	}
}

func TestEventLog_Concurrent(t *testing.T) {
	dir := t.TempDir()
	l := NewEventLog(dir)
	defer l.Close()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			l.Scenario(ScenarioEvent{Index: i, Status: "ok"})
		}(i)
	}
	wg.Wait()

	data, err := os.ReadFile(filepath.Join(dir, "events.jsonl"))
	if err != nil {
		t.Fatal(err)
	}
	if n := strings.Count(string(data), "\n"); n != 20 {
		t.Errorf("expected 20 lines, got %d", n)
	}
}

func TestEventLog_NilSafety(t *testing.T) {
	var l *EventLog
	l.Scenario(ScenarioEvent{Status: "ok"})
	l.Close()
}
