package logging

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
)

// Config captures the minimal settings needed to configure a slog logger.
type Config struct {
	// Level represents the textual log level (debug, info, warn, error).
	Level string
	// Format controls the output encoding (json, text or pretty).
	Format string
	// AddSource toggles slog's source attribution.
	AddSource bool
	// Color forces ANSI colors in the pretty format. Without it colors are
	// used only when the writer is a terminal.
	Color bool
}

// ParseLevel converts textual levels into slog levels, defaulting to info.
func ParseLevel(raw string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug", "dbg":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error", "err":
		return slog.LevelError
	case "trace":
		return slog.LevelDebug - 2
	default:
		return slog.LevelInfo
	}
}

// New builds a slog.Logger for the provided writer using the supplied configuration.
func New(w io.Writer, cfg Config) *slog.Logger {
	if w == nil {
		w = os.Stdout
	}
	return slog.New(newHandler(w, cfg))
}

// NewTee logs every record to console and to file. The console copy uses the
// configured format; the file copy of the pretty format is plain text so log
// files never carry escape codes.
func NewTee(console, file io.Writer, cfg Config) *slog.Logger {
	if console == nil {
		console = os.Stdout
	}
	if file == nil {
		return New(console, cfg)
	}
	fileCfg := cfg
	fileCfg.Color = false
	if isPretty(cfg.Format) {
		fileCfg.Format = "text"
	}
	return slog.New(teeHandler{newHandler(console, cfg), newHandler(file, fileCfg)})
}

func newHandler(w io.Writer, cfg Config) slog.Handler {
	level := ParseLevel(cfg.Level)
	handlerOpts := &slog.HandlerOptions{Level: level, AddSource: cfg.AddSource}
	switch {
	case strings.EqualFold(strings.TrimSpace(cfg.Format), "json"):
		return slog.NewJSONHandler(w, handlerOpts)
	case isPretty(cfg.Format):
		return tint.NewHandler(w, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
			AddSource:  cfg.AddSource,
			NoColor:    !cfg.Color && !isTerminal(w),
		})
	default:
		return slog.NewTextHandler(w, handlerOpts)
	}
}

func isPretty(format string) bool {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "pretty", "tint", "color":
		return true
	}
	return false
}

// teeHandler hands every record to each of its handlers.
type teeHandler []slog.Handler

func (t teeHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range t {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (t teeHandler) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	for _, h := range t {
		if h.Enabled(ctx, r.Level) {
			errs = append(errs, h.Handle(ctx, r.Clone()))
		}
	}
	return errors.Join(errs...)
}

func (t teeHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make(teeHandler, len(t))
	for i, h := range t {
		out[i] = h.WithAttrs(attrs)
	}
	return out
}

func (t teeHandler) WithGroup(name string) slog.Handler {
	out := make(teeHandler, len(t))
	for i, h := range t {
		out[i] = h.WithGroup(name)
	}
	return out
}

// isTerminal is a best-effort check so colors never end up in log files.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}
