package apperr

import (
	"context"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// MarkReported flags an application error as logged. It returns true only
// for the first caller; errors that are not *Error are never marked.
func MarkReported(err error) bool {
	var appErr *Error
	if !errors.As(err, &appErr) {
		return false
	}
	return appErr.reported.CompareAndSwap(false, true)
}

// Report logs err once, at the first layer that observes it, and returns it
// unchanged. Client errors are logged at warn, everything else at error with
// the stack attached.
func Report(ctx context.Context, logger zerolog.Logger, err error, msg string) error {
	if err == nil || !MarkReported(err) {
		return err
	}
	var appErr *Error
	errors.As(err, &appErr)
	ev := logger.Error().Stack()
	if appErr.Code < 500 {
		ev = logger.Warn()
	}
	ev.Ctx(ctx).Err(err).Str("kind", appErr.Kind.String()).Int("code", appErr.Code).Msg(msg)
	return err
}
