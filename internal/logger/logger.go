package logger

import (
	"log/slog"
	"os"

	"github.com/getsentry/sentry-go"
	slogmulti "github.com/samber/slog-multi"
	slogsentry "github.com/samber/slog-sentry/v2"
)

// Init wires the process-wide slog default: human-readable text at debug
// level in development, JSON at info level otherwise. When a Sentry DSN is
// configured, error-level records are fanned out to Sentry as well.
func Init(isDev bool, sentryDSN string) {
	var base slog.Handler
	if isDev {
		base = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})
	} else {
		base = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	}

	handler := base
	if sentryDSN != "" {
		err := sentry.Init(sentry.ClientOptions{
			Dsn:              sentryDSN,
			TracesSampleRate: 1.0,
		})
		if err != nil {
			slog.New(base).Warn("sentry init failed, continuing without it", "error", err)
		} else {
			handler = slogmulti.Fanout(
				base,
				slogsentry.Option{Level: slog.LevelError}.NewSentryHandler(),
			)
		}
	}

	slog.SetDefault(slog.New(handler))
}
