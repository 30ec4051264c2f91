package db

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Connect opens the database named by driver ("sqlite" or "postgres").
func Connect(ctx context.Context, driver, databaseURL string) (*sqlx.DB, error) {
	switch driver {
	case DriverSQLite:
		return NewSQLiteDB(ctx, databaseURL)
	case DriverPostgres:
		return NewPostgresDB(ctx, databaseURL)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
}

// ensureDir ensures the parent directory of the DB file exists
func ensureDir(dbFile string) error {
	return os.MkdirAll(filepath.Dir(dbFile), 0755)
}

func sqliteDSN(dbFile string) (string, error) {
	absPath, err := filepath.Abs(dbFile)
	if err != nil {
		return "", fmt.Errorf("failed to get absolute database path: %w", err)
	}
	if err := ensureDir(absPath); err != nil {
		return "", fmt.Errorf("failed to create database directory: %w", err)
	}
	return absPath + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", nil
}

// NewSQLiteDB opens a single-connection SQLite database, creating its directory.
func NewSQLiteDB(ctx context.Context, dbFile string) (*sqlx.DB, error) {
	dsn, err := sqliteDSN(dbFile)
	if err != nil {
		return nil, err
	}

	db, err := sqlx.ConnectContext(ctx, "sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	return db, nil
}

// NewPostgresDB opens a pgx-backed pool and verifies it within five seconds.
func NewPostgresDB(ctx context.Context, databaseURL string) (*sqlx.DB, error) {
	if strings.TrimSpace(databaseURL) == "" {
		return nil, fmt.Errorf("DATABASE_URL is empty")
	}

	db, err := sqlx.Open("pgx", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxIdleTime(2 * time.Minute)
	db.SetConnMaxLifetime(time.Hour)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return db, nil
}
