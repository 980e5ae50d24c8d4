// Package logger builds the application slog.Logger.
//
// Records are written as JSON (or text) to stdout. When a Sentry DSN is
// configured they are also sent to Sentry: errors become issues and warnings
// are kept as searchable logs. Without a DSN the Sentry side is skipped, so
// the same code path runs in development.
//
//	log, err := logger.New(logger.Config{Level: "debug"}, requestID)
//	if err != nil {
//		return err
//	}
//	defer logger.Flush(2 * time.Second)
//
// A ContextExtractor pulls one attribute out of the record context on every
// call. Attributes can also be attached to a context directly:
//
//	ctx = logger.WithAttrs(ctx, slog.String("platform", "github"))
//	log.InfoContext(ctx, "login started")
package logger
