package logger

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/getsentry/sentry-go"
	sentryslog "github.com/getsentry/sentry-go/slog"
)

// SentryConfig enables Sentry reporting. An empty DSN disables it.
type SentryConfig struct {
	DSN         string `env:"SENTRY_DSN" yaml:"dsn"`
	Environment string `env:"SENTRY_ENVIRONMENT" envDefault:"production" yaml:"environment"`
	Release     string `env:"SENTRY_RELEASE" yaml:"release"`
	// MinLevel is the lowest level stored as a Sentry log. Errors always
	// create issues.
	MinLevel string `env:"SENTRY_MIN_LEVEL" envDefault:"warn" yaml:"min_level"`
}

// newSentryHandler initializes the Sentry SDK. It reports false when Sentry
// is not configured or fails to start; the failure is logged to fallback.
func newSentryHandler(cfg SentryConfig, fallback slog.Handler) (slog.Handler, bool) {
	if cfg.DSN == "" {
		return nil, false
	}
	if err := sentry.Init(sentry.ClientOptions{
		Dsn:         cfg.DSN,
		Environment: cfg.Environment,
		Release:     cfg.Release,
		EnableLogs:  true,
	}); err != nil {
		slog.New(fallback).Error("failed to initialize sentry", slog.String("error", err.Error()))
		return nil, false
	}

	return sentryslog.Option{
		EventLevel: []slog.Level{slog.LevelError},
		LogLevel:   sentryLogLevels(cfg.MinLevel),
	}.NewSentryHandler(context.Background()), true
}

// sentryLogLevels lists the levels at or above minLevel. Invalid input means warn.
func sentryLogLevels(minLevel string) []slog.Level {
	lowest, err := ParseLevel(minLevel)
	if err != nil || strings.TrimSpace(minLevel) == "" {
		lowest = slog.LevelWarn
	}
	var out []slog.Level
	for _, l := range []slog.Level{slog.LevelDebug, slog.LevelInfo, slog.LevelWarn, slog.LevelError} {
		if l >= lowest {
			out = append(out, l)
		}
	}
	if len(out) == 0 {
		out = []slog.Level{slog.LevelError}
	}
	return out
}

// Flush waits up to timeout for buffered Sentry events.
// It is a no-op when Sentry was never initialized.
func Flush(timeout time.Duration) bool {
	return sentry.Flush(timeout)
}

// tee writes every record to primary and to secondary. A failure of one
// side does not stop the other.
type tee struct {
	primary, secondary slog.Handler
}

func newTee(primary, secondary slog.Handler) slog.Handler {
	return &tee{primary: primary, secondary: secondary}
}

func (t *tee) Enabled(ctx context.Context, level slog.Level) bool {
	return t.primary.Enabled(ctx, level) || t.secondary.Enabled(ctx, level)
}

func (t *tee) Handle(ctx context.Context, rec slog.Record) error {
	var errA, errB error
	if t.primary.Enabled(ctx, rec.Level) {
		errA = t.primary.Handle(ctx, rec.Clone())
	}
	if t.secondary.Enabled(ctx, rec.Level) {
		errB = t.secondary.Handle(ctx, rec.Clone())
	}
	return errors.Join(errA, errB)
}

func (t *tee) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &tee{primary: t.primary.WithAttrs(attrs), secondary: t.secondary.WithAttrs(attrs)}
}

func (t *tee) WithGroup(name string) slog.Handler {
	return &tee{primary: t.primary.WithGroup(name), secondary: t.secondary.WithGroup(name)}
}
