package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"":         slog.LevelInfo,
		"DEBUG":    slog.LevelDebug,
		" warn ":   slog.LevelWarn,
		"warning":  slog.LevelWarn,
		"error":    slog.LevelError,
		"whatever": slog.LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestSlogLogger_JSONForNonTerminal(t *testing.T) {
	t.Setenv(LogFormatEnv, "")
	t.Setenv(LogLevelEnv, "")
	buf := &bytes.Buffer{}
	l := NewSlogLogger(buf).With("page", "example")

	l.Warning("attempt %d failed", 2)

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("expected a JSON record, got %q: %v", buf.String(), err)
	}
	if rec["msg"] != "attempt 2 failed" || rec["level"] != "WARN" || rec["page"] != "example" {
		t.Fatalf("unexpected record: %v", rec)
	}
}

func TestSlogLogger_TextFormatOverride(t *testing.T) {
	t.Setenv(LogFormatEnv, "text")
	buf := &bytes.Buffer{}
	NewSlogLogger(buf).Info("session loaded")
	if !strings.Contains(buf.String(), `msg="session loaded"`) {
		t.Fatalf("expected a text record, got %q", buf.String())
	}
}

func TestSlogLogger_LevelFilter(t *testing.T) {
	t.Setenv(LogFormatEnv, "json")
	t.Setenv(LogLevelEnv, "error")
	buf := &bytes.Buffer{}
	l := NewSlogLogger(buf)
	l.Info("hidden")
	l.Warning("hidden")
	l.Error("shown")
	if strings.Contains(buf.String(), "hidden") || !strings.Contains(buf.String(), "shown") {
		t.Fatalf("level filter not applied: %q", buf.String())
	}
	if err := l.Close(); err != nil {
		t.Fatal(err)
	}
}
