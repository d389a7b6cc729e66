package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
)

func TestCriticalLevelRendered(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, slog.LevelInfo, "json")

	log.Critical("db down", "attempt", 3)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("decode log line: %v", err)
	}
	if entry["level"] != "CRITICAL" {
		t.Fatalf("expected CRITICAL level, got %v", entry["level"])
	}
	if entry["attempt"] != float64(3) {
		t.Fatalf("expected attempt attr, got %v", entry["attempt"])
	}
}

func TestBusinessErrorLogsAtWarn(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, slog.LevelDebug, "json")

	log.BusinessError("recipes.update: not creator", errors.New("not creator"), "recipe_id", "r-1")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("decode log line: %v", err)
	}
	if entry["level"] != "WARN" {
		t.Fatalf("expected WARN, got %v", entry["level"])
	}
	if entry["err"] != "not creator" || entry["recipe_id"] != "r-1" {
		t.Fatalf("unexpected attrs: %v", entry)
	}
}

func TestNilErrorIsSkipped(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, slog.LevelDebug, "text")

	log.InternalError("ignored", nil)

	if buf.Len() != 0 {
		t.Fatalf("expected no output, got %q", buf.String())
	}
}

func TestFromContext(t *testing.T) {
	fallback := NewNop()
	if got := FromContext(context.Background(), fallback); got != fallback {
		t.Fatalf("expected fallback logger")
	}

	scoped := fallback.With("request_id", "abc")
	ctx := WithContext(context.Background(), scoped)
	if got := FromContext(ctx, fallback); got != scoped {
		t.Fatalf("expected scoped logger")
	}
}

func TestParseLevel(t *testing.T) {
	cases := []struct {
		value string
		env   string
		want  slog.Level
	}{
		{"", "development", slog.LevelDebug},
		{"", "production", slog.LevelInfo},
		{"warning", "production", slog.LevelWarn},
		{"fatal", "production", LevelCritical},
		{"nonsense", "production", slog.LevelInfo},
	}
	for _, tc := range cases {
		if got := parseLevel(tc.value, tc.env); got != tc.want {
			t.Fatalf("parseLevel(%q, %q) = %v, want %v", tc.value, tc.env, got, tc.want)
		}
	}
}
