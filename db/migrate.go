// Package db provides local SQLite persistence for generation history.
//
// migrate.go wraps golang-migrate for schema management. Migrations live
// in db/migrations as numbered up/down SQL pairs.
package db

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	_ "github.com/golang-migrate/migrate/v4/source/file" // File source driver
)

// MigrateUp applies all pending up migrations.
// ErrNoChange is handled gracefully: no pending migrations is not an error.
//
// The migrator takes ownership of the connection and closes it when
// complete; do not reuse db afterwards.
func MigrateUp(db *sql.DB, migrationsPath string) error {
	driver, err := sqlite.WithInstance(db, &sqlite.Config{})
	if err != nil {
		return fmt.Errorf("db: failed to create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(migrationsPath, "main", driver)
	if err != nil {
		return fmt.Errorf("db: failed to create migrator: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			return nil
		}
		return fmt.Errorf("db: failed to apply migrations: %w", err)
	}
	return nil
}

// MigrateUpFromPath applies all pending migrations using a database
// path, managing its own connection lifecycle. This is what main calls
// at startup before opening the long-lived connection.
func MigrateUpFromPath(dbPath, migrationsPath string) error {
	conn, err := OpenWithDefaults(dbPath)
	if err != nil {
		return err
	}
	// The migrator only takes ownership once it is constructed; the
	// close here covers the earlier failure paths and is a no-op after
	// the migrator has already closed the connection.
	defer conn.Close()
	return MigrateUp(conn, migrationsPath)
}
