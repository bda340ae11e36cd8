package seed

import (
	"context"
	"database/sql"
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"usersvc/m/domain"
)

// LoadUsers inserts the users listed in the CSV at csvPath when the users
// table is empty. Columns are name, age and an optional nickname; the first
// line is a header. It returns the number of rows inserted.
func LoadUsers(ctx context.Context, db *sqlx.DB, csvPath string) (int, error) {
	var count int
	if err := db.GetContext(ctx, &count, `SELECT COUNT(*) FROM users`); err != nil {
		return 0, errors.Wrap(err, "count users")
	}
	if count > 0 {
		return 0, nil
	}

	file, err := os.Open(csvPath)
	if err != nil {
		return 0, errors.Wrapf(err, "open user seed %s", csvPath)
	}
	defer file.Close()

	users, err := readUsers(file)
	if err != nil {
		return 0, err
	}

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, errors.Wrap(err, "begin seed transaction")
	}
	stmt, err := tx.PreparexContext(ctx, tx.Rebind(`INSERT INTO users (name, age, nickname) VALUES (?, ?, ?)`))
	if err != nil {
		_ = tx.Rollback()
		return 0, errors.Wrap(err, "prepare user insert")
	}
	defer stmt.Close()

	for _, u := range users {
		if _, err := stmt.ExecContext(ctx, u.Name, u.Age, nullNickname(u)); err != nil {
			_ = tx.Rollback()
			return 0, errors.Wrapf(err, "insert seed user %q", u.Name)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, errors.Wrap(err, "commit seed users")
	}
	return len(users), nil
}

func nullNickname(u domain.User) sql.NullString {
	if u.Nickname == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *u.Nickname, Valid: true}
}

func readUsers(r io.Reader) ([]domain.User, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	// Skip header
	if _, err := reader.Read(); err != nil {
		return nil, errors.Wrap(err, "read user seed header")
	}

	var users []domain.User
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, "read user seed row")
		}
		if len(record) < 2 {
			return nil, errors.Errorf("seed row %v: expected at least name and age", record)
		}
		age, err := strconv.Atoi(strings.TrimSpace(record[1]))
		if err != nil {
			return nil, errors.Wrapf(err, "seed row %v: age", record)
		}
		var nickname *string
		if len(record) > 2 && strings.TrimSpace(record[2]) != "" {
			nick := strings.TrimSpace(record[2])
			nickname = &nick
		}
		u, err := domain.NewUser(strings.TrimSpace(record[0]), age, nickname)
		if err != nil {
			return nil, errors.Wrapf(err, "seed row %v", record)
		}
		users = append(users, u)
	}
	return users, nil
}
