package logger

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// ErrInvalidFormat is returned for an unknown output format.
var ErrInvalidFormat = errors.New("logger: invalid format")

// Output formats.
const (
	FormatJSON = "json"
	FormatText = "text"
)

// Config configures the root logger.
type Config struct {
	Level  string       `env:"LOG_LEVEL" envDefault:"info" yaml:"level"`
	Format string       `env:"LOG_FORMAT" envDefault:"json" yaml:"format"`
	Sentry SentryConfig `yaml:"sentry"`

	// Output defaults to os.Stdout.
	Output io.Writer `env:"-" yaml:"-"`
}

// New builds a logger from cfg. Records go to Output and, when a Sentry DSN
// is configured, to Sentry as well. Extractors apply to both destinations.
func New(cfg Config, extractors ...ContextExtractor) (*slog.Logger, error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	out := cfg.Output
	if out == nil {
		out = os.Stdout
	}

	opts := &slog.HandlerOptions{Level: level}
	var h slog.Handler
	switch strings.ToLower(strings.TrimSpace(cfg.Format)) {
	case "", FormatJSON:
		h = slog.NewJSONHandler(out, opts)
	case FormatText:
		h = slog.NewTextHandler(out, opts)
	default:
		return nil, errors.Join(ErrInvalidFormat, fmt.Errorf("format %q", cfg.Format))
	}

	if sh, ok := newSentryHandler(cfg.Sentry, h); ok {
		h = newTee(h, sh)
	}
	return slog.New(NewContextHandler(h, extractors...)), nil
}

// ParseLevel parses debug, info, warn or error. Empty means info.
func ParseLevel(s string) (slog.Level, error) {
	if strings.TrimSpace(s) == "" {
		return slog.LevelInfo, nil
	}
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return 0, fmt.Errorf("logger: invalid level %q: %w", s, err)
	}
	return l, nil
}

// Discard returns a logger that drops everything.
// Packages use it when no logger is configured.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
