package db

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteClient manages the connection to a SQLite database file.
type SQLiteClient struct {
	db *sql.DB
}

// NewSQLiteClient opens (or creates) a SQLite database file and verifies the
// connection. Foreign-key enforcement is switched on; SQLite leaves it off
// by default and the seeded tables depend on it.
func NewSQLiteClient(ctx context.Context, path string) (*SQLiteClient, error) {
	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &SQLiteClient{db: db}, nil
}

// Close closes the database connection.
func (c *SQLiteClient) Close() error {
	return c.db.Close()
}

// DB returns the underlying database handle.
func (c *SQLiteClient) DB() *sql.DB {
	return c.db
}
