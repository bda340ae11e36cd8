package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"usersvc/m/internal/apperr"
	"usersvc/m/internal/logging"
	"usersvc/m/internal/metrics"
	"usersvc/m/internal/scope"
)

// Options tunes optional parts of the HTTP surface.
type Options struct {
	// StaticDir, when set, is served for paths no route matches.
	StaticDir string
}

// Handler bundles dependencies for HTTP handlers.
type Handler struct {
	db        *sqlx.DB
	logger    zerolog.Logger
	staticDir string
	users     func(ctx context.Context) (UserService, error)
}

// New constructs a Handler.
func New(db *sqlx.DB, logger zerolog.Logger, opts Options) *Handler {
	return &Handler{
		db:        db,
		logger:    logger,
		staticDir: opts.StaticDir,
		users:     resolveUserService,
	}
}

// Router wires up the HTTP API.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(metrics.InstrumentHandler)
	r.Use(h.requestContext)
	r.Use(h.recoverer)
	r.Use(scope.Middleware(h.db, logging.Named(h.logger, "scope")))

	r.NotFound(h.wrap(h.notFound))
	r.MethodNotAllowed(h.wrap(h.methodNotAllowed))

	r.Get("/", h.home)
	r.Get("/health", h.wrap(h.health))
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Get("/hello", h.hello)
	r.Get("/hello2/{name}", h.hello2)

	r.Get("/users", h.wrap(h.listUsers))
	r.Post("/users", h.wrap(h.createUser))

	return r
}

func (h *Handler) home(w http.ResponseWriter, r *http.Request) {
	respondHTML(w, http.StatusOK, "<p>Hello, World!</p>")
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) error {
	if h.db != nil {
		if err := h.db.PingContext(r.Context()); err != nil {
			return apperr.Storage("Database is unreachable.", errors.WithStack(err))
		}
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	return nil
}

func (h *Handler) notFound(w http.ResponseWriter, r *http.Request) error {
	if h.serveStatic(w, r) {
		return nil
	}
	return apperr.NewHTTPError(http.StatusNotFound)
}

func (h *Handler) methodNotAllowed(w http.ResponseWriter, r *http.Request) error {
	return apperr.NewHTTPError(http.StatusMethodNotAllowed)
}

func (h *Handler) serveStatic(w http.ResponseWriter, r *http.Request) bool {
	if h.staticDir == "" || (r.Method != http.MethodGet && r.Method != http.MethodHead) {
		return false
	}
	name := filepath.Join(h.staticDir, filepath.FromSlash(path.Clean("/"+r.URL.Path)))
	info, err := os.Stat(name)
	if err != nil || info.IsDir() {
		return false
	}
	http.ServeFile(w, r, name)
	return true
}

func decodeJSON(r *http.Request, dest interface{}) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dest); err != nil {
		return decodeError(err)
	}
	if decoder.More() {
		return &apperr.ValidationError{Details: []apperr.FieldError{{
			Field: "body", Rule: "json", Message: "request body must contain a single JSON object",
		}}}
	}
	return nil
}

func decodeError(err error) *apperr.ValidationError {
	var typeErr *json.UnmarshalTypeError
	var syntaxErr *json.SyntaxError
	fe := apperr.FieldError{Field: "body", Rule: "json", Message: err.Error()}
	switch {
	case errors.Is(err, io.EOF):
		fe.Rule, fe.Message = "required", "request body must not be empty"
	case errors.As(err, &typeErr) && typeErr.Field == "":
		fe.Rule, fe.Message = "type", "request body must be a JSON object"
	case errors.As(err, &typeErr):
		fe.Field, fe.Rule = typeErr.Field, "type"
		fe.Message = fmt.Sprintf("%s must be of type %s", typeErr.Field, typeErr.Type)
	case errors.As(err, &syntaxErr):
		fe.Message = fmt.Sprintf("malformed JSON at offset %d", syntaxErr.Offset)
	case strings.HasPrefix(err.Error(), "json: unknown field "):
		fe.Field = strings.Trim(strings.TrimPrefix(err.Error(), "json: unknown field "), `"`)
		fe.Rule, fe.Message = "unknown", fmt.Sprintf("%s is not a recognised field", fe.Field)
	}
	return &apperr.ValidationError{Details: []apperr.FieldError{fe}}
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	encoder := json.NewEncoder(w)
	encoder.SetEscapeHTML(false)
	_ = encoder.Encode(payload)
}

func respondHTML(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}
