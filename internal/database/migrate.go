package database

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/rs/zerolog"
)

// DefaultMigrationsDir is the migrations location relative to the working directory
const DefaultMigrationsDir = "migrations"

// MigrateDirection selects whether migrations are applied or rolled back
type MigrateDirection int

const (
	MigrateUp MigrateDirection = iota
	MigrateDown
)

// Migrate applies (or rolls back) the file migrations in dir against databaseURL
// and returns the resulting schema version.
func Migrate(databaseURL, dir string, direction MigrateDirection, logger zerolog.Logger) (uint, error) {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return 0, fmt.Errorf("failed to open database for migrations: %w", err)
	}
	defer db.Close()

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return 0, fmt.Errorf("failed to create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance("file://"+dir, "postgres", driver)
	if err != nil {
		return 0, fmt.Errorf("failed to create migrate instance: %w", err)
	}

	switch direction {
	case MigrateDown:
		err = m.Down()
	default:
		err = m.Up()
	}
	noChange := errors.Is(err, migrate.ErrNoChange)
	if err != nil && !noChange {
		return 0, fmt.Errorf("failed to apply migrations: %w", err)
	}

	version, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		logger.Info().Msg("migrations: database has no applied migrations")
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get migration version: %w", err)
	}
	if dirty {
		return version, fmt.Errorf("migration version %d is dirty - manual intervention required", version)
	}

	if noChange {
		logger.Info().Uint("version", version).Msg("migrations: database is up to date")
	} else {
		logger.Info().Uint("version", version).Msg("migrations: applied successfully")
	}
	return version, nil
}
