// Package repository implements service.UserRepository on top of sqlx.
package repository

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"usersvc/m/domain"
	"usersvc/m/internal/apperr"
	"usersvc/m/internal/service"
)

// Queryer is the subset of *sqlx.DB and *sqlx.Conn the repository needs.
type Queryer interface {
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	QueryRowxContext(ctx context.Context, query string, args ...interface{}) *sqlx.Row
	Rebind(query string) string
}

type userRow struct {
	ID       int64          `db:"id"`
	Name     string         `db:"name"`
	Age      int            `db:"age"`
	Nickname sql.NullString `db:"nickname"`
}

func (r userRow) toDomain() (domain.User, error) {
	u := domain.User{ID: r.ID, Name: r.Name, Age: r.Age}
	if r.Nickname.Valid {
		nick := r.Nickname.String
		u.Nickname = &nick
	}
	return u, u.Validate()
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

// UserRepository stores users in the users table.
type UserRepository struct {
	db     Queryer
	logger zerolog.Logger
}

var _ service.UserRepository = (*UserRepository)(nil)

// NewUserRepository constructs a UserRepository over db.
func NewUserRepository(db Queryer, logger zerolog.Logger) *UserRepository {
	return &UserRepository{db: db, logger: logger}
}

// GetUsers returns up to limit users ordered by id. A non-positive limit
// means service.DefaultLimit.
func (r *UserRepository) GetUsers(ctx context.Context, limit int) ([]domain.User, error) {
	if limit <= 0 {
		limit = service.DefaultLimit
	}

	var rows []userRow
	query := r.db.Rebind(`SELECT id, name, age, nickname FROM users ORDER BY id LIMIT ?`)
	if err := r.db.SelectContext(ctx, &rows, query, limit); err != nil {
		return nil, apperr.Report(ctx, r.logger,
			apperr.Storage("Failed to read users.", errors.WithStack(err)), "select users failed")
	}

	users := make([]domain.User, 0, len(rows))
	for _, row := range rows {
		u, err := row.toDomain()
		if err != nil {
			integrityErr := apperr.DataIntegrity("Stored user record failed validation.", err).
				WithPayload(map[string]any{"record_id": row.ID})
			return nil, apperr.Report(ctx, r.logger, integrityErr, "invalid user row")
		}
		users = append(users, u)
	}
	r.logger.Debug().Ctx(ctx).Int("count", len(users)).Int("limit", limit).Msg("selected users")
	return users, nil
}

// AddUser inserts user and returns it with the id assigned by storage.
func (r *UserRepository) AddUser(ctx context.Context, user domain.User) (domain.User, error) {
	if user.Persisted() {
		return domain.User{}, apperr.Report(ctx, r.logger,
			apperr.InvalidInput("User already has an id.", nil), "refusing to insert persisted user")
	}
	if err := user.Validate(); err != nil {
		return domain.User{}, apperr.Report(ctx, r.logger,
			apperr.InvalidInput(err.Error(), err), "refusing to insert invalid user")
	}

	query := r.db.Rebind(`INSERT INTO users (name, age, nickname) VALUES (?, ?, ?) RETURNING id`)
	var id int64
	if err := r.db.QueryRowxContext(ctx, query, user.Name, user.Age, nullString(user.Nickname)).Scan(&id); err != nil {
		return domain.User{}, apperr.Report(ctx, r.logger,
			apperr.Storage("Failed to persist user.", errors.WithStack(err)), "insert user failed")
	}

	user.ID = id
	r.logger.Debug().Ctx(ctx).Int64("user_id", id).Msg("inserted user")
	return user, nil
}
