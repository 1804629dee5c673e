package db

import (
	"database/sql"
	"fmt"
	"log"
	"strings"

	_ "github.com/lib/pq"
)

// DB wraps the Postgres connection used by the turn audit log.
type DB struct {
	*sql.DB
}

// New opens a connection from the provided connection string. When the first
// ping fails and no sslmode was specified, the connection is retried with
// SSL disabled (local Postgres rarely has certs).
func New(connectionString string) (*DB, error) {
	if connectionString == "" {
		return nil, fmt.Errorf("database connection string is required")
	}

	sqlDB, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := sqlDB.Ping(); err != nil {
		if !strings.Contains(strings.ToLower(connectionString), "sslmode") {
			log.Println("retrying database connection with SSL disabled")
			sqlDB.Close()
			retry := connectionString
			if strings.Contains(retry, "?") {
				retry += "&sslmode=disable"
			} else {
				retry += "?sslmode=disable"
			}
			var err2 error
			sqlDB, err2 = sql.Open("postgres", retry)
			if err2 != nil {
				return nil, fmt.Errorf("failed to open database: %w", err2)
			}
		}
		if err := sqlDB.Ping(); err != nil {
			return nil, fmt.Errorf("failed to ping database: %w", err)
		}
	}

	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	return &DB{DB: sqlDB}, nil
}

// EnsureSchema creates the turn log table if it does not exist yet.
func (db *DB) EnsureSchema() error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS turns (
			id TEXT PRIMARY KEY,
			conversation_id TEXT NOT NULL,
			intent TEXT NOT NULL,
			query TEXT NOT NULL DEFAULT '',
			reply TEXT NOT NULL DEFAULT '',
			final BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create turns table: %w", err)
	}
	_, err = db.Exec(`CREATE INDEX IF NOT EXISTS turns_conversation_idx ON turns (conversation_id, created_at)`)
	if err != nil {
		return fmt.Errorf("failed to create turns index: %w", err)
	}
	return nil
}

// HealthCheck verifies the database connection is healthy.
func (db *DB) HealthCheck() error {
	return db.Ping()
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.DB.Close()
}
