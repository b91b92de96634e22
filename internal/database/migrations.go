package database

import (
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.uber.org/zap"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

// Migrate brings the schema up to date. Running it against an already migrated
// database is a no-op.
func (db *DB) Migrate() error {
	log := db.logger()
	log.Info("running migrations")

	source, err := iofs.New(embedMigrations, "migrations")
	if err != nil {
		return fmt.Errorf("failed to load migrations: %w", err)
	}
	driver, err := sqlite.WithInstance(db.DB, &sqlite.Config{})
	if err != nil {
		return fmt.Errorf("failed to prepare migration driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", source, DriverName, driver)
	if err != nil {
		return fmt.Errorf("failed to prepare migrations: %w", err)
	}

	switch err := m.Up(); {
	case err == nil:
		version, _, _ := m.Version()
		log.Info("migrations completed", zap.Uint("version", version))
	case errors.Is(err, migrate.ErrNoChange):
		log.Info("no migration required")
	default:
		return fmt.Errorf("migration failed: %w", err)
	}
	return nil
}

func (db *DB) logger() *zap.Logger {
	if db.log == nil {
		return zap.NewNop()
	}
	return db.log
}
