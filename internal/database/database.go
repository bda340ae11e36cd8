package database

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/pkg/errors"
	_ "modernc.org/sqlite"
)

// Supported driver names.
const (
	SQLite   = "sqlite"
	Postgres = "postgres"
)

// Connect opens and pings a database using the provided driver and DSN.
func Connect(driver, dsn string, maxOpenConns int) (*sqlx.DB, error) {
	if driver != SQLite && driver != Postgres {
		return nil, errors.WithStack(fmt.Errorf("unsupported database driver: %s", driver))
	}
	db, err := sqlx.Connect(driver, dsn)
	if err != nil {
		return nil, errors.Wrapf(err, "connect %s", driver)
	}
	if maxOpenConns > 0 {
		db.SetMaxOpenConns(maxOpenConns)
	}
	return db, nil
}
