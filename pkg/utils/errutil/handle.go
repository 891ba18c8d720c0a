package errutil

import (
	"context"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
)

// Handle logs err and, when a Sentry client is configured, reports it.
// It is the terminal sink for errors that have nowhere to propagate, such as
// failures of builds launched after the webhook response was sent.
func Handle(ctx context.Context, msg string, err error) {
	if err == nil {
		return
	}

	ctxlog.From(ctx).Error(msg, "error", err)
	Report(ctx, msg, err)
}

// Report sends err to Sentry without logging it. Nothing happens when Sentry
// is not configured.
func Report(ctx context.Context, msg string, err error) {
	if err == nil {
		return
	}

	hub := sentry.GetHubFromContext(ctx)
	if hub == nil {
		hub = sentry.CurrentHub()
	}
	if hub.Client() == nil {
		return
	}

	hub.WithScope(func(scope *sentry.Scope) {
		scope.SetTag("message", msg)
		if gErr := goerr.Unwrap(err); gErr != nil {
			scope.SetContext("goerr", sentry.Context(gErr.Values()))
		}
		hub.CaptureException(err)
	})
}

// Flush waits for buffered Sentry events, used on shutdown
func Flush(timeout time.Duration) {
	if sentry.CurrentHub().Client() == nil {
		return
	}
	sentry.Flush(timeout)
}
