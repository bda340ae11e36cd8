package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"usersvc/m/internal/logging"
)

// RequestIDHeader carries the request correlation id in both directions.
const RequestIDHeader = "X-Request-ID"

// requestContext binds the per-request logging fields before any handler
// runs and clears them after the response, on every exit path.
func (h *Handler) requestContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fields := logging.NewFields()
		defer fields.Clear()

		requestID := r.Header.Get(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		fields.Bind(map[string]any{
			"request_id":  requestID,
			"remote_addr": r.RemoteAddr,
			"method":      r.Method,
			"path":        r.URL.Path,
		})
		ctx := logging.WithFields(r.Context(), fields)
		w.Header().Set(RequestIDHeader, requestID)

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		h.logger.Info().Ctx(ctx).Msg("incoming request")
		defer func() {
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			h.logger.Info().Ctx(ctx).
				Int("status", status).
				Dur("duration", time.Since(start)).
				Msg("outgoing response")
		}()

		next.ServeHTTP(ww, r.WithContext(ctx))
	})
}

// recoverer turns a panic into an error for the registry.
func (h *Handler) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rvr := recover()
			if rvr == nil {
				return
			}
			if rvr == http.ErrAbortHandler {
				panic(rvr)
			}
			err, ok := rvr.(error)
			if ok {
				err = errors.WithStack(err)
			} else {
				err = errors.Errorf("panic: %v", rvr)
			}
			h.handleError(w, r, err)
		}()
		next.ServeHTTP(w, r)
	})
}
