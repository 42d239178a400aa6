package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"bogus", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := parseLevel(tt.in); got != tt.want {
			t.Fatalf("parseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := New(Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func TestConsoleHandlerOutput(t *testing.T) {
	var buf bytes.Buffer
	lvl := new(slog.LevelVar)
	logger := slog.New(newConsoleHandler(&buf, lvl))

	NewComponentLogger(logger, "stacker").Info("field stacked",
		Int("sources", 3),
		String("mode", "smart-mean"),
	)

	line := buf.String()
	if !strings.Contains(line, " INFO stacker: field stacked") {
		t.Fatalf("line = %q, want component prefix and message", line)
	}
	if !strings.Contains(line, "sources=3") || !strings.Contains(line, "mode=smart-mean") {
		t.Fatalf("line = %q, want key=value attrs", line)
	}
	if strings.Contains(line, FieldComponent+"=") {
		t.Fatalf("line = %q, component must render as prefix, not attr", line)
	}
	if !strings.HasSuffix(line, "\n") {
		t.Fatalf("line = %q, want trailing newline", line)
	}
}

func TestConsoleHandlerQuotesAwkwardValues(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(newConsoleHandler(&buf, new(slog.LevelVar)))

	logger.Warn("problem", String("detail", "two words"), String("empty", ""))

	line := buf.String()
	if !strings.Contains(line, `detail="two words"`) {
		t.Fatalf("line = %q, want quoted multi-word value", line)
	}
	if !strings.Contains(line, `empty=""`) {
		t.Fatalf("line = %q, want quoted empty value", line)
	}
	if !strings.Contains(line, " WARN ") {
		t.Fatalf("line = %q, want WARN label", line)
	}
}

func TestConsoleHandlerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	lvl := new(slog.LevelVar)
	lvl.Set(slog.LevelWarn)
	logger := slog.New(newConsoleHandler(&buf, lvl))

	logger.Info("hidden")
	if buf.Len() != 0 {
		t.Fatalf("info record leaked below level: %q", buf.String())
	}
	logger.Error("visible")
	if !strings.Contains(buf.String(), "ERROR") {
		t.Fatalf("output = %q, want ERROR record", buf.String())
	}
}

func TestConsoleHandlerFlattensGroups(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(newConsoleHandler(&buf, new(slog.LevelVar)))

	logger.WithGroup("run").Info("started", Int("fields", 7))
	if !strings.Contains(buf.String(), "run.fields=7") {
		t.Fatalf("output = %q, want dotted group key", buf.String())
	}
}

func TestJSONHandlerKeyNames(t *testing.T) {
	var buf bytes.Buffer
	lvl := new(slog.LevelVar)
	logger := slog.New(newJSONHandler(&buf, lvl))

	logger.Info("started", Int("fields", 7))

	line := buf.String()
	for _, want := range []string{`"ts":`, `"level":"info"`, `"msg":"started"`, `"fields":7`} {
		if !strings.Contains(line, want) {
			t.Fatalf("line = %q, want %s", line, want)
		}
	}
}

func TestNopLoggerDiscards(t *testing.T) {
	logger := NewNop()
	if logger.Enabled(context.Background(), slog.LevelError) {
		t.Fatal("nop logger must be disabled at every level")
	}
}
