package data

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"

	"entgo.io/ent/dialect"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/postgres/*.sql migrations/sqlite3/*.sql
var migrationsFS embed.FS

// Migrate applies all pending migrations for the given dialect.
func Migrate(db *sql.DB, dialectName string) error {
	var (
		dir      string
		dbDriver database.Driver
		err      error
	)
	switch dialectName {
	case dialect.Postgres:
		dir = "migrations/postgres"
		dbDriver, err = postgres.WithInstance(db, &postgres.Config{})
	case dialect.SQLite:
		dir = "migrations/sqlite3"
		dbDriver, err = sqlite3.WithInstance(db, &sqlite3.Config{})
	default:
		return fmt.Errorf("unsupported database driver %q", dialectName)
	}
	if err != nil {
		return fmt.Errorf("failed to create database driver: %w", err)
	}

	sub, err := fs.Sub(migrationsFS, dir)
	if err != nil {
		return err
	}
	sourceDriver, err := iofs.New(sub, ".")
	if err != nil {
		return fmt.Errorf("failed to create migration source: %w", err)
	}
	defer sourceDriver.Close()

	// Closing the migrate instance would close db, which the caller owns.
	m, err := migrate.NewWithInstance("iofs", sourceDriver, dialectName, dbDriver)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}
