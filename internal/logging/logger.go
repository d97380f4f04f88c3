// Package logging provides leveled logging and a scenario event trace:
//   - A leveled slog.Logger for stderr (operational output)
//   - An EventLog writing one ScenarioEvent per line (events.jsonl)
package logging

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// LevelTrace sits below Debug. The sweep driver logs every accepted
// solver step at this level.
const LevelTrace = slog.LevelDebug - 4

var levels = map[string]slog.Level{
	"trace":   LevelTrace,
	"debug":   slog.LevelDebug,
	"info":    slog.LevelInfo,
	"warn":    slog.LevelWarn,
	"warning": slog.LevelWarn,
	"error":   slog.LevelError,
}

// ParseLevel maps a level name, ignoring case, to a slog.Level. Unknown
// names are info.
func ParseLevel(s string) slog.Level {
	if lvl, ok := levels[strings.ToLower(strings.TrimSpace(s))]; ok {
		return lvl
	}
	return slog.LevelInfo
}

// NewLogger returns a text logger on w that drops records below level and
// prints LevelTrace as TRACE.
func NewLogger(level string, w io.Writer) *slog.Logger {
	lvl := ParseLevel(level)
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level:       lvl,
		ReplaceAttr: traceLabel,
	}))
}

func traceLabel(_ []string, a slog.Attr) slog.Attr {
	if a.Key != slog.LevelKey {
		return a
	}
	if lvl, ok := a.Value.Any().(slog.Level); ok && lvl == LevelTrace {
		a.Value = slog.StringValue("TRACE")
	}
	return a
}

// Tracing reports whether logger emits LevelTrace records.
func Tracing(logger *slog.Logger) bool {
	return logger != nil && logger.Enabled(context.Background(), LevelTrace)
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 4}))
}

// ScenarioEvent is one line of events.jsonl. Delta is nil for a failed
// scenario.
type ScenarioEvent struct {
	Time    time.Time `json:"time"`
	Model   string    `json:"model"`
	Index   int       `json:"index"`
	Species string    `json:"species"`
	Status  string    `json:"status"`
	Delta   *float64  `json:"delta,omitempty"`
	Reaches bool      `json:"reaches"`
	Steps   int       `json:"steps"`
	Elapsed string    `json:"elapsed"`
	Error   string    `json:"error,omitempty"`
	Warning string    `json:"warning,omitempty"`
}

// EventLog appends scenario events to dir/events.jsonl. It is safe for
// concurrent use and every method is a no-op on a nil receiver.
type EventLog struct {
	mu   sync.Mutex
	file *os.File
	enc  *json.Encoder
}

// NewEventLog opens dir/events.jsonl for append, creating dir as needed.
// It returns nil when the file cannot be opened.
func NewEventLog(dir string) *EventLog {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil
	}
	f, err := os.OpenFile(filepath.Join(dir, "events.jsonl"), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil
	}
	return &EventLog{file: f, enc: json.NewEncoder(f)}
}

// Scenario writes e as one line, stamping the current time when e has none.
func (l *EventLog) Scenario(e ScenarioEvent) {
	if l == nil {
		return
	}
	if e.Time.IsZero() {
		e.Time = time.Now().UTC()
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return
	}
	_ = l.enc.Encode(e)
}

func (l *EventLog) Close() {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file != nil {
		l.file.Close()
		l.file = nil
	}
}
