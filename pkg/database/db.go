package database

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

type Config struct {
	DSN      string
	MaxConns int
	Timeout  time.Duration
}

// ConfigFromEnv reads DB config from environment variables.
// HEALTHDASH_DB may be a postgres URL or a sqlite file path.
func ConfigFromEnv() Config {
	dsn := os.Getenv("HEALTHDASH_DB")
	if dsn == "" {
		dsn = DefaultPath()
	}
	return Config{DSN: dsn, MaxConns: 1, Timeout: 5 * time.Second}
}

// DefaultPath is the per-user sqlite file used when nothing is configured.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".healthdash", "healthdash.db")
}

// DriverFor picks the sql driver for a DSN.
func DriverFor(dsn string) string {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		return "postgres"
	}
	return "sqlite3"
}

// Connect opens a *sqlx.DB and verifies connectivity with a ping
func Connect(cfg Config) (*sqlx.DB, error) {
	driver := DriverFor(cfg.DSN)
	dsn := cfg.DSN
	if driver == "sqlite3" {
		if err := os.MkdirAll(filepath.Dir(dsn), 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
		dsn += "?_journal_mode=WAL&_busy_timeout=5000"
	}
	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	maxConns := cfg.MaxConns
	if maxConns <= 0 {
		maxConns = 1
	}
	db.SetMaxOpenConns(maxConns)
	db.SetMaxIdleConns(maxConns)
	db.SetConnMaxLifetime(30 * time.Minute)

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}
	return db, nil
}
