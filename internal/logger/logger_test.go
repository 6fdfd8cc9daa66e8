package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/akave-ai/seclog/internal/config"
)

func TestNew_JSONFormat(t *testing.T) {
	cfg := &config.ObservabilityConfig{
		ServiceName: "seclog",
		Environment: "production",
		Logging:     config.LoggingConfig{Level: "info"},
	}
	var buf bytes.Buffer
	l := NewWithWriter(cfg, &buf)

	l.Debug().Msg("hidden")
	l.Info().Int("count", 3).Msg("stored")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d: %q", len(lines), buf.String())
	}
	var got map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &got); err != nil {
		t.Fatalf("expected JSON line: %v", err)
	}
	if got["service"] != "seclog" || got["env"] != "production" || got["message"] != "stored" {
		t.Fatalf("unexpected fields: %v", got)
	}
}

func TestNew_ConsoleInDevelopment(t *testing.T) {
	cfg := &config.ObservabilityConfig{
		ServiceName: "seclog",
		Environment: "development",
		Logging:     config.LoggingConfig{Level: "debug"},
	}
	var buf bytes.Buffer
	l := NewWithWriter(cfg, &buf)
	l.Debug().Msg("visible")

	out := buf.String()
	if !strings.Contains(out, "visible") {
		t.Fatalf("expected debug message, got %q", out)
	}
	if strings.HasPrefix(strings.TrimSpace(out), "{") {
		t.Fatalf("expected console output, got JSON: %q", out)
	}
}
