package repository

import (
	"context"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"usersvc/m/domain"
	"usersvc/m/internal/apperr"
	"usersvc/m/internal/database"
	"usersvc/m/internal/migrations"
)

func newSQLite(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := database.Connect(database.SQLite, filepath.Join(t.TempDir(), "users.db"), 2)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, migrations.Run(db))
	return db
}

func mustUser(t *testing.T, name string, age int, nickname *string) domain.User {
	t.Helper()
	u, err := domain.NewUser(name, age, nickname)
	require.NoError(t, err)
	return u
}

func requireKind(t *testing.T, err error, kind apperr.Kind) *apperr.Error {
	t.Helper()
	var appErr *apperr.Error
	require.True(t, errors.As(err, &appErr), "expected *apperr.Error, got %v", err)
	require.Equal(t, kind, appErr.Kind)
	return appErr
}

func TestAddUserAssignsUniqueIDs(t *testing.T) {
	repo := NewUserRepository(newSQLite(t), zerolog.Nop())
	ctx := context.Background()
	nick := "Janey"

	first, err := repo.AddUser(ctx, mustUser(t, "John Doe", 30, nil))
	require.NoError(t, err)
	second, err := repo.AddUser(ctx, mustUser(t, "Jane Smith", 25, &nick))
	require.NoError(t, err)

	assert.True(t, first.Persisted())
	assert.Greater(t, second.ID, first.ID)
	assert.Equal(t, "Jane Smith", second.Name)
	assert.Equal(t, 25, second.Age)
	require.NotNil(t, second.Nickname)
	assert.Equal(t, "Janey", *second.Nickname)
}

func TestGetUsersRoundTrip(t *testing.T) {
	repo := NewUserRepository(newSQLite(t), zerolog.Nop())
	ctx := context.Background()

	users, err := repo.GetUsers(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, users)

	nick := "2"
	_, err = repo.AddUser(ctx, mustUser(t, "test", 20, nil))
	require.NoError(t, err)
	_, err = repo.AddUser(ctx, mustUser(t, "test2", 22, &nick))
	require.NoError(t, err)

	users, err = repo.GetUsers(ctx, 10)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "test", users[0].Name)
	assert.Nil(t, users[0].Nickname)
	assert.Equal(t, "2", *users[1].Nickname)

	again, err := repo.GetUsers(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, users, again)
}

func TestGetUsersHonoursLimit(t *testing.T) {
	repo := NewUserRepository(newSQLite(t), zerolog.Nop())
	ctx := context.Background()
	for _, name := range []string{"a", "b", "c"} {
		_, err := repo.AddUser(ctx, mustUser(t, name, 1, nil))
		require.NoError(t, err)
	}

	for limit := 1; limit <= 4; limit++ {
		users, err := repo.GetUsers(ctx, limit)
		require.NoError(t, err)
		assert.LessOrEqual(t, len(users), limit)
	}

	users, err := repo.GetUsers(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, users, 3)
}

func TestGetUsersOverConnection(t *testing.T) {
	db := newSQLite(t)
	ctx := context.Background()
	conn, err := db.Connx(ctx)
	require.NoError(t, err)
	defer conn.Close()

	repo := NewUserRepository(conn, zerolog.Nop())
	added, err := repo.AddUser(ctx, mustUser(t, "Ann", 25, nil))
	require.NoError(t, err)

	users, err := repo.GetUsers(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []domain.User{added}, users)
}

func TestGetUsersCorruptedRow(t *testing.T) {
	db := newSQLite(t)
	res, err := db.Exec(`INSERT INTO users (name, age) VALUES ('', 3)`)
	require.NoError(t, err)
	id, err := res.LastInsertId()
	require.NoError(t, err)

	_, err = NewUserRepository(db, zerolog.Nop()).GetUsers(context.Background(), 10)
	appErr := requireKind(t, err, apperr.KindDataIntegrity)
	assert.Equal(t, 500, appErr.Code)
	assert.Equal(t, id, appErr.Payload["record_id"])
	assert.True(t, errors.Is(err, domain.ErrInvalidUser))
}

func TestAddUserRejectsPersistedOrInvalidUsers(t *testing.T) {
	repo := NewUserRepository(newSQLite(t), zerolog.Nop())
	ctx := context.Background()

	_, err := repo.AddUser(ctx, domain.User{ID: 3, Name: "Ann", Age: 1})
	requireKind(t, err, apperr.KindInvalidInput)

	_, err = repo.AddUser(ctx, domain.User{Name: "Ann", Age: -1})
	requireKind(t, err, apperr.KindInvalidInput)
}

func TestGetUsersStorageFailure(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDB.Close()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, name, age, nickname FROM users ORDER BY id LIMIT ?`)).
		WithArgs(100).
		WillReturnError(errors.New("no such table: users"))

	repo := NewUserRepository(sqlx.NewDb(mockDB, "sqlmock"), zerolog.Nop())
	_, err = repo.GetUsers(context.Background(), 0)
	requireKind(t, err, apperr.KindStorage)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAddUserStorageFailure(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDB.Close()

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO users (name, age, nickname) VALUES (?, ?, ?) RETURNING id`)).
		WithArgs("Ann", 25, nil).
		WillReturnError(errors.New("database is locked"))

	repo := NewUserRepository(sqlx.NewDb(mockDB, "sqlmock"), zerolog.Nop())
	_, err = repo.AddUser(context.Background(), mustUser(t, "Ann", 25, nil))
	appErr := requireKind(t, err, apperr.KindStorage)
	assert.Equal(t, "Failed to persist user.", appErr.Message)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAddUserScansReturnedID(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDB.Close()

	mock.ExpectQuery("INSERT INTO users").
		WithArgs("Ann", 25, "annie").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(42))

	nick := "annie"
	repo := NewUserRepository(sqlx.NewDb(mockDB, "sqlmock"), zerolog.Nop())
	u, err := repo.AddUser(context.Background(), mustUser(t, "Ann", 25, &nick))
	require.NoError(t, err)
	assert.Equal(t, int64(42), u.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
