// Package errtrack reports server-side failures to Sentry.
package errtrack

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/getsentry/sentry-go"
)

// Config configures the Sentry client.
type Config struct {
	DSN         string
	Environment string
	Release     string
	ServerName  string
}

// Init initialises Sentry. An empty DSN leaves reporting disabled and every
// capture becomes a no-op.
func Init(cfg Config) error {
	if cfg.DSN == "" {
		slog.Info("sentry DSN not configured, error tracking disabled")
		return nil
	}

	err := sentry.Init(sentry.ClientOptions{
		Dsn:         cfg.DSN,
		Environment: cfg.Environment,
		Release:     cfg.Release,
		ServerName:  cfg.ServerName,
		BeforeSend: func(event *sentry.Event, hint *sentry.EventHint) *sentry.Event {
			if event.Request != nil && event.Request.Headers != nil {
				delete(event.Request.Headers, "Authorization")
				delete(event.Request.Headers, "Cookie")
			}
			return event
		},
	})
	if err != nil {
		return fmt.Errorf("sentry init: %w", err)
	}

	slog.Info("sentry initialized", "environment", cfg.Environment, "release", cfg.Release)
	return nil
}

// CaptureMessage records a message with string tags on an isolated scope.
func CaptureMessage(message string, tags map[string]string) {
	sentry.WithScope(func(scope *sentry.Scope) {
		scope.SetTags(tags)
		scope.SetLevel(sentry.LevelError)
		sentry.CaptureMessage(message)
	})
}

// CaptureError records err with string tags on an isolated scope.
func CaptureError(err error, tags map[string]string) {
	if err == nil {
		return
	}
	sentry.WithScope(func(scope *sentry.Scope) {
		scope.SetTags(tags)
		sentry.CaptureException(err)
	})
}

// Flush waits for buffered events to be delivered.
func Flush(timeout time.Duration) bool {
	return sentry.Flush(timeout)
}
