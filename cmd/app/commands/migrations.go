package commands

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/mysql"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite3"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

// RunMigrations executes database migrations for the given driver.
// Determines the migration path from the driver (sqlite3, postgres or mysql)
// and applies all pending migrations. Returns nil if no migrations to apply.
func RunMigrations(logger *slog.Logger, driver, connectionString string) error {
	logger.Info("running database migrations",
		slog.String("driver", driver),
	)

	migrationsPath, databaseURL, err := migrationTarget(driver, connectionString)
	if err != nil {
		return err
	}

	m, err := migrate.New(migrationsPath, databaseURL)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	defer closeMigrate(m, logger)

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	logger.Info("migrations completed successfully")
	return nil
}

// migrationTarget maps the sql driver name to the migration source path and
// a database URL in the scheme golang-migrate expects.
func migrationTarget(driver, connectionString string) (string, string, error) {
	switch driver {
	case "sqlite3":
		url := connectionString
		if !strings.HasPrefix(url, "sqlite3://") {
			url = "sqlite3://" + url
		}
		return "file://migrations/sqlite", url, nil
	case "postgres":
		return "file://migrations/postgresql", connectionString, nil
	case "mysql":
		url := connectionString
		if !strings.HasPrefix(url, "mysql://") {
			url = "mysql://" + url
		}
		return "file://migrations/mysql", url, nil
	default:
		return "", "", fmt.Errorf("unsupported database driver: %s", driver)
	}
}
