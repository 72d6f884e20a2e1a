package logging

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	sonic "github.com/bytedance/sonic"
	"go.opentelemetry.io/otel/trace"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()

	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]any
		if err := sonic.UnmarshalString(line, &entry); err != nil {
			t.Fatalf("decode log line %q: %v", line, err)
		}
		out = append(out, entry)
	}
	return out
}

func TestParseLevel(t *testing.T) {
	tests := map[string]Level{
		"debug":   LevelDebug,
		" INFO ":  LevelInfo,
		"warning": LevelWarn,
		"warn":    LevelWarn,
		"error":   LevelError,
		"fatal":   LevelInfo,
		"verbose": LevelInfo,
		"":        LevelInfo,
	}
	for raw, want := range tests {
		if got := ParseLevel(raw); got != want {
			t.Fatalf("ParseLevel(%q) = %s, want %s", raw, got, want)
		}
	}
}

func TestLogger_WritesKeyValues(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSONWriter(&buf, LevelInfo).Named("scheduler").With("service", "league-vault-api")

	logger.Debug("hidden")
	logger.Info("job completed",
		"job", "auction-rollover",
		"took", 1500*time.Millisecond,
		"error", errors.New("boom"),
		42, "bad key",
		"dangling",
	)

	lines := decodeLines(t, &buf)
	if len(lines) != 1 {
		t.Fatalf("expected one line above the level threshold, got %d", len(lines))
	}
	entry := lines[0]
	if entry["msg"] != "job completed" || entry["logger"] != "scheduler" {
		t.Fatalf("unexpected entry: %v", entry)
	}
	if entry["service"] != "league-vault-api" || entry["job"] != "auction-rollover" {
		t.Fatalf("missing fields: %v", entry)
	}
	if entry["took"] != float64(1500) {
		t.Fatalf("expected duration in ms, got %v", entry["took"])
	}
	if entry["error"] != "boom" || entry["arg"] != "bad key" {
		t.Fatalf("unexpected error/arg fields: %v", entry)
	}
	if v, ok := entry["dangling"]; !ok || v != nil {
		t.Fatalf("expected dangling key logged as null, got %v", entry)
	}
	if caller, _ := entry["caller"].(string); !strings.Contains(caller, "logger_test.go") {
		t.Fatalf("expected caller in test file, got %q", caller)
	}
}

func TestLogger_ContextAddsTraceIDs(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSONWriter(&buf, LevelDebug)

	spanCtx := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID: trace.TraceID{1, 2, 3},
		SpanID:  trace.SpanID{4, 5, 6},
	})
	ctx := trace.ContextWithSpanContext(context.Background(), spanCtx)

	logger.WarnContext(ctx, "traced")
	logger.InfoContext(context.Background(), "untraced")

	lines := decodeLines(t, &buf)
	if len(lines) != 2 {
		t.Fatalf("expected two lines, got %d", len(lines))
	}
	if lines[0]["trace_id"] != spanCtx.TraceID().String() || lines[0]["span_id"] != spanCtx.SpanID().String() {
		t.Fatalf("missing trace ids: %v", lines[0])
	}
	if _, ok := lines[1]["trace_id"]; ok {
		t.Fatalf("unexpected trace id without span: %v", lines[1])
	}
}

func TestLogger_NilAndDefault(t *testing.T) {
	var buf bytes.Buffer
	SetDefault(NewJSONWriter(&buf, LevelInfo))
	t.Cleanup(func() { SetDefault(nil) })

	var logger *Logger
	logger.Info("via default")
	if !strings.Contains(buf.String(), "via default") {
		t.Fatalf("nil logger should fall back to the default, got %q", buf.String())
	}
	if err := logger.Sync(); err != nil {
		t.Fatalf("sync nil logger: %v", err)
	}
	if logger.Enabled(LevelError) {
		t.Fatalf("nil logger wraps a nop core")
	}
}
