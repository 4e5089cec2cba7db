package database

import (
	"database/sql"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"healthdeck/internal/platform/config"
)

// New opens the service database and verifies connectivity. The returned
// handle is constructed once in main and injected into every repository;
// nothing in the codebase reaches for shared global connection state.
func New(cfg config.DatabaseConfig) (*sql.DB, error) {
	if dir := filepath.Dir(cfg.Path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, err
		}
	}

	// busy_timeout keeps concurrent writers from failing fast on SQLITE_BUSY;
	// foreign_keys enables the endpoint -> health_checks cascade.
	db, err := sql.Open("sqlite3", cfg.Path+"?_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(cfg.MaxConnections)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	if err := db.Ping(); err != nil {
		return nil, err
	}

	return db, nil
}
