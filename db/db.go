// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/danielhkuo/syncmeet/cliparse"
)

//go:embed migrations
var migrationsFS embed.FS

// ErrUnsupportedDriver is returned for a database type other than postgres or sqlite.
var ErrUnsupportedDriver = errors.New("unsupported database type")

// Open connects to the configured store and verifies the connection.
func Open(cfg cliparse.Config) (*sql.DB, error) {
	const op = "db.Open"

	switch cfg.DatabaseType {
	case cliparse.DatabasePostgres, cliparse.DatabaseSQLite:
	default:
		return nil, fmt.Errorf("%s: %w: %q", op, ErrUnsupportedDriver, cfg.DatabaseType)
	}

	// modernc registers itself as "sqlite", lib/pq as "postgres"
	conn, err := sql.Open(cfg.DatabaseType, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("%s: ping: %w", op, err)
	}
	return conn, nil
}

// Migrate applies every pending up migration for the given dialect.
// It is safe to call on every start; an up-to-date schema is not an error.
// The connection stays open afterwards.
func Migrate(conn *sql.DB, dbType string) error {
	const op = "db.Migrate"

	var (
		driver database.Driver
		err    error
	)
	switch dbType {
	case cliparse.DatabasePostgres:
		driver, err = postgres.WithInstance(conn, &postgres.Config{})
	case cliparse.DatabaseSQLite:
		driver, err = sqlite.WithInstance(conn, &sqlite.Config{})
	default:
		return fmt.Errorf("%s: %w: %q", op, ErrUnsupportedDriver, dbType)
	}
	if err != nil {
		return fmt.Errorf("%s: driver: %w", op, err)
	}

	src, err := iofs.New(migrationsFS, "migrations/"+dbType)
	if err != nil {
		return fmt.Errorf("%s: source: %w", op, err)
	}

	m, err := migrate.NewWithInstance("iofs", src, dbType, driver)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("%s: up: %w", op, err)
	}
	return nil
}
