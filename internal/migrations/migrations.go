// Schema migrations: SQL files embedded in the binary, applied with golang-migrate.
package migrations

import (
	"embed"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed sql/*.sql
var files embed.FS

// Runner applies the embedded migrations to one database.
type Runner struct {
	m *migrate.Migrate
}

// NewRunner opens a migrator for a postgres:// (or pgx://) URL.
func NewRunner(databaseURL string) (*Runner, error) {
	src, err := iofs.New(files, "sql")
	if err != nil {
		return nil, fmt.Errorf("migrations source: %w", err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, DriverURL(databaseURL))
	if err != nil {
		return nil, fmt.Errorf("migrations init: %w", err)
	}
	return &Runner{m: m}, nil
}

// Up applies all pending migrations, or n of them when n > 0.
func (r *Runner) Up(n int) error {
	var err error
	if n > 0 {
		err = r.m.Steps(n)
	} else {
		err = r.m.Up()
	}
	if errors.Is(err, migrate.ErrNoChange) {
		return nil
	}
	return err
}

// Down rolls back all migrations, or n of them when n > 0.
func (r *Runner) Down(n int) error {
	var err error
	if n > 0 {
		err = r.m.Steps(-n)
	} else {
		err = r.m.Down()
	}
	if errors.Is(err, migrate.ErrNoChange) {
		return nil
	}
	return err
}

func (r *Runner) Close() error {
	srcErr, dbErr := r.m.Close()
	return errors.Join(srcErr, dbErr)
}

// DriverURL rewrites a libpq style URL for the golang-migrate pgx/v5 driver, which registers as "pgx5".
func DriverURL(databaseURL string) string {
	for _, prefix := range []string{"postgres://", "postgresql://", "pgx://"} {
		if strings.HasPrefix(databaseURL, prefix) {
			return "pgx5://" + strings.TrimPrefix(databaseURL, prefix)
		}
	}
	return databaseURL
}
