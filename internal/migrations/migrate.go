package migrations

import (
	"embed"
	"fmt"
	"log"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	pg "github.com/golang-migrate/migrate/v4/database/postgres"
	sqlitemigrate "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
)

//go:embed postgres/*.sql sqlite/*.sql
var migrationFiles embed.FS

const migrationsTable = "schema_migrations_migrate"

// RunMigrations applies the embedded migrations for the connected driver.
// The migrate instance is not closed: closing it would close db as well.
func RunMigrations(db *sqlx.DB) error {
	if db == nil {
		return fmt.Errorf("database is nil")
	}

	driverName := db.DriverName()
	var (
		driver database.Driver
		err    error
	)
	switch driverName {
	case "postgres":
		driver, err = pg.WithInstance(db.DB, &pg.Config{MigrationsTable: migrationsTable})
	case "sqlite":
		driver, err = sqlitemigrate.WithInstance(db.DB, &sqlitemigrate.Config{MigrationsTable: migrationsTable})
	default:
		return fmt.Errorf("no migrations for driver %q", driverName)
	}
	if err != nil {
		return fmt.Errorf("failed to create migrate driver: %w", err)
	}

	source, err := iofs.New(migrationFiles, driverName)
	if err != nil {
		return fmt.Errorf("failed to open embedded migrations: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, driverName, driver)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("migration up failed: %w", err)
	}

	version, dirty, verr := m.Version()
	if verr != nil && verr != migrate.ErrNilVersion {
		log.Printf("[MIGRATE] Could not read schema version: %v", verr)
	}
	log.Printf("[MIGRATE] Migrations applied (driver=%s version=%d dirty=%v)", driverName, version, dirty)
	return nil
}
