package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestLogger_JSONRecordsCarryLevelAndMessage(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, "info", "json")

	l.LogInfo("quote computed for %s", "deluxe")
	l.LogDebug("dropped below level")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected a single record, got %d: %q", len(lines), buf.String())
	}

	var rec map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &rec); err != nil {
		t.Fatalf("record is not json: %v", err)
	}
	if rec["level"] != "INFO" || rec["msg"] != "quote computed for deluxe" {
		t.Fatalf("unexpected record %+v", rec)
	}
}

func TestLogger_AccessAndWith(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, "debug", "text").With("component", "web")

	l.Access(context.Background(), "access", slog.String("path", "/liveness"))

	out := buf.String()
	if !strings.Contains(out, "component=web") || !strings.Contains(out, "path=/liveness") {
		t.Fatalf("unexpected output %q", out)
	}
}
