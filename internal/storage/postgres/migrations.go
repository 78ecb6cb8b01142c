package postgres

import (
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

// Migrations holds the schema as golang-migrate files
// (NNNNNN_name.up.sql / .down.sql) under "migrations".
//
//go:embed migrations/*.sql
var Migrations embed.FS

// NewMigrator returns a golang-migrate instance over the embedded schema for
// the database at dsn.
//
// Postcondition: The caller must Close the returned Migrate.
func NewMigrator(dsn string) (*migrate.Migrate, error) {
	src, err := iofs.New(Migrations, "migrations")
	if err != nil {
		return nil, fmt.Errorf("opening embedded migrations: %w", err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, dsn)
	if err != nil {
		return nil, fmt.Errorf("creating migrator: %w", err)
	}
	return m, nil
}

// MigrateUp applies every pending migration to the database at dsn.
//
// Postcondition: Returns the schema version now in place. A database that is
// already current is not an error.
func MigrateUp(dsn string) (uint, error) {
	m, err := NewMigrator(dsn)
	if err != nil {
		return 0, err
	}
	defer m.Close()
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return 0, fmt.Errorf("applying migrations: %w", err)
	}
	version, dirty, err := m.Version()
	if err != nil {
		return 0, fmt.Errorf("reading schema version: %w", err)
	}
	if dirty {
		return version, fmt.Errorf("schema version %d is dirty", version)
	}
	return version, nil
}
