package api

import (
	"net/http"

	"github.com/pkg/errors"

	"usersvc/m/internal/apperr"
	"usersvc/m/internal/metrics"
)

const unexpectedMessage = "An unexpected internal server error occurred."

type validationBody struct {
	Error   string              `json:"error"`
	Details []apperr.FieldError `json:"details"`
}

// wrap adapts an error-returning handler; every returned error goes to
// handleError, which is the only place error bodies are written.
func (h *Handler) wrap(fn func(http.ResponseWriter, *http.Request) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := fn(w, r); err != nil {
			h.handleError(w, r, err)
		}
	}
}

// handleError translates err into a status and JSON body. Branches are
// tried in apperr.Classify order; the first match wins.
func (h *Handler) handleError(w http.ResponseWriter, r *http.Request, err error) {
	ctx := r.Context()
	var (
		status int
		body   any
	)

	category := apperr.Classify(err)
	switch category {
	case apperr.CategoryApplication:
		var appErr *apperr.Error
		errors.As(err, &appErr)
		h.logger.Warn().Ctx(ctx).Stack().Err(err).
			Str("kind", appErr.Kind.String()).
			Msgf("application error caught: %s", appErr.Message)
		status, body = appErr.Code, appErr.Body()

	case apperr.CategoryValidation:
		var valErr *apperr.ValidationError
		errors.As(err, &valErr)
		h.logger.Warn().Ctx(ctx).Interface("details", valErr.Details).Msg("validation error caught")
		details := valErr.Details
		if details == nil {
			details = []apperr.FieldError{}
		}
		status, body = http.StatusBadRequest, validationBody{Error: "Validation Error", Details: details}

	case apperr.CategoryHTTP:
		var httpErr *apperr.HTTPError
		errors.As(err, &httpErr)
		h.logger.Warn().Ctx(ctx).Msgf("http error caught: %d - %s", httpErr.Code, httpErr.Message)
		status, body = httpErr.Code, map[string]any{
			"message": httpErr.Message,
			"code":    httpErr.Code,
			"name":    httpErr.Name,
		}

	default:
		if !apperr.HasStack(err) {
			err = errors.WithStack(err)
		}
		h.logger.Error().Ctx(ctx).Stack().Err(err).Msg("unhandled exception")
		status, body = http.StatusInternalServerError, map[string]any{
			"message": unexpectedMessage,
			"code":    http.StatusInternalServerError,
		}
	}

	metrics.RecordErrorResponse(category.String(), status)
	respondJSON(w, status, body)
}
