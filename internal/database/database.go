// Package database is the document-store adapter backing the availability
// engine: businesses and appointments live in SQLite, and everything the
// engine consumes is read out as plain data.
package database

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3" // sqlite3 driver
	"github.com/rs/zerolog"
)

// DB wraps the SQLite connection.
type DB struct {
	*sql.DB
	logger *zerolog.Logger
}

var (
	ErrNotFound               = errors.New("not found")
	ErrConcurrentModification = errors.New("concurrent modification")
)

// NewDB opens (creating if needed) the database at path.
func NewDB(path string, logger *zerolog.Logger) (*DB, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// WAL mode and a busy timeout keep concurrent readers cheap.
	dsn := path + "?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	instance := &DB{DB: db, logger: logger}
	if err := instance.createTables(); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	logger.Info().Str("path", path).Msg("Database initialized")
	return instance, nil
}

func (db *DB) createTables() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS businesses (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			category TEXT,
			description TEXT,
			address TEXT,
			phone TEXT,
			opening_hour TEXT,
			closing_hour TEXT,
			weekly_hours TEXT,
			booking_window_days INTEGER,
			booking_interval_minutes INTEGER,
			auto_approve BOOLEAN NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS appointments (
			id TEXT PRIMARY KEY,
			business_id TEXT NOT NULL,
			business_name TEXT,
			user_id TEXT NOT NULL,
			user_name TEXT,
			user_phone TEXT,
			date TEXT NOT NULL,
			time TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'pending',
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			version INTEGER NOT NULL DEFAULT 1,
			FOREIGN KEY(business_id) REFERENCES businesses(id)
		)`,

		`CREATE INDEX IF NOT EXISTS idx_appointments_business_date ON appointments(business_id, date, status)`,
		`CREATE INDEX IF NOT EXISTS idx_appointments_user ON appointments(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_appointments_status ON appointments(status)`,
	}

	for _, query := range queries {
		if _, err := db.Exec(query); err != nil {
			return fmt.Errorf("error executing query %s: %w", query, err)
		}
	}

	return db.ensureNewColumns()
}

// ensureNewColumns adds columns introduced after the initial schema.
func (db *DB) ensureNewColumns() error {
	migrations := []string{
		`ALTER TABLE appointments ADD COLUMN version INTEGER NOT NULL DEFAULT 1`,
		`ALTER TABLE businesses ADD COLUMN auto_approve BOOLEAN NOT NULL DEFAULT 0`,
		`ALTER TABLE businesses ADD COLUMN booking_window_days INTEGER`,
		`ALTER TABLE businesses ADD COLUMN booking_interval_minutes INTEGER`,
	}

	for _, m := range migrations {
		if _, err := db.Exec(m); err != nil && !strings.Contains(strings.ToLower(err.Error()), "duplicate column") {
			if db.logger != nil {
				db.logger.Debug().Err(err).Str("migration", m).Msg("Migration skipped")
			}
		}
	}
	return nil
}

func (db *DB) Close() error {
	return db.DB.Close()
}
