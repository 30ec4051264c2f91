package db

import (
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	pgxmigrate "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
)

//go:embed migrations/sqlite/*.sql migrations/postgres/*.sql
var migrationFiles embed.FS

// RunMigrations applies the embedded migrations for driver on a dedicated
// connection, which is closed afterwards.
func RunMigrations(driver, databaseURL string) error {
	var (
		conn *sqlx.DB
		err  error
	)
	switch driver {
	case DriverSQLite:
		dsn, dsnErr := sqliteDSN(databaseURL)
		if dsnErr != nil {
			return dsnErr
		}
		conn, err = sqlx.Connect("sqlite", dsn)
	case DriverPostgres:
		conn, err = sqlx.Connect("pgx", databaseURL)
	default:
		return fmt.Errorf("unsupported database driver %q", driver)
	}
	if err != nil {
		return fmt.Errorf("failed to connect for migrations: %w", err)
	}

	m, err := newMigrate(driver, conn)
	if err != nil {
		conn.Close()
		return err
	}
	// Closing the migrate instance also closes conn.
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

func newMigrate(driver string, conn *sqlx.DB) (*migrate.Migrate, error) {
	var (
		instance database.Driver
		err      error
	)
	switch driver {
	case DriverSQLite:
		instance, err = sqlite.WithInstance(conn.DB, &sqlite.Config{})
	case DriverPostgres:
		instance, err = pgxmigrate.WithInstance(conn.DB, &pgxmigrate.Config{})
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create migration driver: %w", err)
	}

	source, err := iofs.New(migrationFiles, "migrations/"+driver)
	if err != nil {
		return nil, fmt.Errorf("failed to load migrations: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, driver, instance)
	if err != nil {
		return nil, fmt.Errorf("failed to create migration instance: %w", err)
	}
	return m, nil
}
