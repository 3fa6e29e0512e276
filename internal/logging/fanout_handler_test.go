package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestTeeHandlerCollapsesNilHandlers(t *testing.T) {
	if _, ok := TeeHandler(nil, nil).(NoopHandler); !ok {
		t.Fatal("expected NoopHandler when every handler is nil")
	}
	var buf bytes.Buffer
	inner := slog.NewJSONHandler(&buf, nil)
	if got := TeeHandler(nil, inner); got != inner {
		t.Fatalf("expected lone handler returned unwrapped, got %T", got)
	}
}

func TestTeeHandlerRoutesByLevel(t *testing.T) {
	var console, file bytes.Buffer
	h := TeeHandler(
		slog.NewTextHandler(&console, &slog.HandlerOptions{Level: slog.LevelInfo}),
		slog.NewJSONHandler(&file, &slog.HandlerOptions{Level: slog.LevelDebug}),
	)
	if !h.Enabled(context.Background(), slog.LevelDebug) {
		t.Fatal("expected debug enabled through the file handler")
	}

	logger := slog.New(h).With("audio", "take1.wav").WithGroup("gladia")
	logger.Debug("polling", "attempt", 2)
	logger.Info("transcribed", "job_id", "abc")

	if strings.Contains(console.String(), "polling") {
		t.Fatalf("console received debug record: %q", console.String())
	}
	if !strings.Contains(console.String(), "gladia.job_id=abc") {
		t.Fatalf("console missing grouped attr: %q", console.String())
	}
	out := file.String()
	if !strings.Contains(out, `"polling"`) || !strings.Contains(out, `"transcribed"`) {
		t.Fatalf("file missing records: %q", out)
	}
	if strings.Count(out, `"audio":"take1.wav"`) != 2 {
		t.Fatalf("expected audio attr on both file records: %q", out)
	}
}

func TestTeeHandlerDisabledWhenNoHandlerAccepts(t *testing.T) {
	var a, b bytes.Buffer
	h := TeeHandler(
		slog.NewJSONHandler(&a, &slog.HandlerOptions{Level: slog.LevelWarn}),
		slog.NewJSONHandler(&b, &slog.HandlerOptions{Level: slog.LevelError}),
	)
	if h.Enabled(context.Background(), slog.LevelInfo) {
		t.Fatal("expected info disabled")
	}
}
