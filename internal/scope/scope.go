// Package scope resolves request-scoped collaborators. Each request gets at
// most one storage connection and one repository/service pair, built on
// first use and released when the request ends.
package scope

import (
	"context"
	"net/http"
	"sync"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"usersvc/m/internal/apperr"
	"usersvc/m/internal/logging"
	"usersvc/m/internal/metrics"
	"usersvc/m/internal/repository"
	"usersvc/m/internal/service"
)

type scopeKey struct{}

// ErrClosed is returned when a collaborator is requested after Close.
var ErrClosed = errors.New("request scope closed")

// Scope owns the collaborators built for a single request.
type Scope struct {
	db     *sqlx.DB
	logger zerolog.Logger

	mu     sync.Mutex
	conn   *sqlx.Conn
	users  *service.UserService
	closed bool
}

// New returns an empty scope over db.
func New(db *sqlx.DB, logger zerolog.Logger) *Scope {
	return &Scope{db: db, logger: logger}
}

// UserService returns the request's service, acquiring a connection and
// building the repository on the first call.
func (s *Scope) UserService(ctx context.Context) (*service.UserService, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, errors.WithStack(ErrClosed)
	}
	if s.users != nil {
		return s.users, nil
	}

	conn, err := s.db.Connx(ctx)
	if err != nil {
		return nil, apperr.Report(ctx, s.logger,
			apperr.Storage("Failed to acquire a storage connection.", errors.WithStack(err)), "acquire connection failed")
	}
	metrics.ConnectionAcquired()
	s.conn = conn

	repo := repository.NewUserRepository(conn, logging.Named(s.logger, "repository"))
	s.users = service.NewUserService(repo, logging.Named(s.logger, "service"))
	s.logger.Debug().Ctx(ctx).Msg("request scope resolved user service")
	return s.users, nil
}

// Close releases the connection, if one was acquired. It is safe to call
// more than once.
func (s *Scope) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	s.users = nil
	if s.conn == nil {
		return nil
	}
	err := s.conn.Close()
	s.conn = nil
	metrics.ConnectionReleased()
	return errors.Wrap(err, "release storage connection")
}

// WithScope returns a copy of ctx carrying s.
func WithScope(ctx context.Context, s *Scope) context.Context {
	return context.WithValue(ctx, scopeKey{}, s)
}

// FromContext returns the scope bound to ctx.
func FromContext(ctx context.Context) (*Scope, bool) {
	s, ok := ctx.Value(scopeKey{}).(*Scope)
	return s, ok
}

// Middleware opens a Scope for every request and closes it once the
// downstream handler returns or panics.
func Middleware(db *sqlx.DB, logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s := New(db, logger)
			defer func() {
				if err := s.Close(); err != nil {
					logger.Error().Ctx(r.Context()).Err(err).Msg("failed to release request scope")
				}
			}()
			next.ServeHTTP(w, r.WithContext(WithScope(r.Context(), s)))
		})
	}
}
