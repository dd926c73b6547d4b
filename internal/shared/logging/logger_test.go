package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"":        slog.LevelInfo,
		"DEBUG":   slog.LevelDebug,
		" warn ":  slog.LevelWarn,
		"warning": slog.LevelWarn,
		"err":     slog.LevelError,
		"trace":   slog.LevelDebug - 2,
		"bogus":   slog.LevelInfo,
	}
	for input, expected := range cases {
		if got := ParseLevel(input); got != expected {
			t.Fatalf("ParseLevel(%q) expected %v got %v", input, expected, got)
		}
	}
}

func TestNewJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, Config{Level: "info", Format: "json"})
	logger.Info("hello", slog.String("section", "tables"))

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected json output, got %q: %v", buf.String(), err)
	}
	if entry["section"] != "tables" {
		t.Fatalf("unexpected entry %v", entry)
	}
}

func TestNewPrettyFormatHasNoColorInBuffers(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, Config{Level: "debug", Format: "pretty"})
	logger.Debug("booking step", slog.Int("step", 3))

	out := buf.String()
	if !strings.Contains(out, "booking step") || !strings.Contains(out, "step=3") {
		t.Fatalf("unexpected output %q", out)
	}
	if strings.Contains(out, "\x1b[") {
		t.Fatalf("expected no ansi escapes, got %q", out)
	}
}

func TestNewRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, Config{Level: "error"})
	logger.Info("dropped")
	if buf.Len() != 0 {
		t.Fatalf("expected info to be filtered, got %q", buf.String())
	}
}

func TestNewTeeKeepsFileCopyPlain(t *testing.T) {
	var console, file bytes.Buffer
	logger := NewTee(&console, &file, Config{Level: "info", Format: "pretty", Color: true})
	logger.With(slog.String("section", "menu")).Info("dashboard loaded", slog.Int("failures", 0))

	if !strings.Contains(console.String(), "\x1b[") {
		t.Fatalf("expected colored console output, got %q", console.String())
	}
	out := file.String()
	if strings.Contains(out, "\x1b[") {
		t.Fatalf("expected no ansi escapes in file, got %q", out)
	}
	for _, want := range []string{"level=INFO", `msg="dashboard loaded"`, "section=menu", "failures=0"} {
		if !strings.Contains(out, want) {
			t.Fatalf("file output %q missing %q", out, want)
		}
	}
}

func TestNewTeeHonoursLevelAndFormat(t *testing.T) {
	var console, file bytes.Buffer
	logger := NewTee(&console, &file, Config{Level: "warn", Format: "json"})
	logger.Info("dropped")
	logger.Warn("kept")

	for name, buf := range map[string]*bytes.Buffer{"console": &console, "file": &file} {
		var entry map[string]any
		if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
			t.Fatalf("%s: expected one json entry, got %q: %v", name, buf.String(), err)
		}
		if entry["msg"] != "kept" {
			t.Fatalf("%s: unexpected entry %v", name, entry)
		}
	}
}
