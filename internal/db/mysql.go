package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/go-sql-driver/mysql"
)

// MySQLClient manages the connection to MySQL. The DSN carries no default
// database; provisioning qualifies every table with the target database name.
type MySQLClient struct {
	db *sql.DB
}

// NewMySQLClient opens a MySQL connection and verifies it.
func NewMySQLClient(ctx context.Context, connString string) (*MySQLClient, error) {
	db, err := sql.Open("mysql", connString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &MySQLClient{db: db}, nil
}

// Close closes the database connection.
func (c *MySQLClient) Close() error {
	return c.db.Close()
}

// DB returns the underlying database handle.
func (c *MySQLClient) DB() *sql.DB {
	return c.db
}

// SplitDSN strips the database name from a MySQL DSN
// (user:pass@tcp(host:port)/database?params), returning a schemaless DSN
// for the connection and the database name, which may be empty when the
// DSN ends in a bare slash.
func SplitDSN(dsn string) (schemalessDSN, database string, err error) {
	base := dsn
	params := ""
	if i := strings.Index(dsn, "?"); i >= 0 {
		base, params = dsn[:i], dsn[i:]
	}

	slash := strings.LastIndex(base, "/")
	if slash < 0 {
		return "", "", fmt.Errorf("invalid MySQL DSN (missing '/' before database name): %s", dsn)
	}

	return base[:slash+1] + params, base[slash+1:], nil
}
