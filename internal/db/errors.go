package db

import (
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
)

// Provisioning error taxonomy. Classify attaches one of these sentinels to a
// driver error so callers can match with errors.Is regardless of backend.
var (
	// ErrConnection indicates the database could not be reached or refused
	// the credentials.
	ErrConnection = errors.New("connection failed")

	// ErrDuplicateObject indicates the database, schema, or table already
	// exists. Provisioning is not re-runnable without manual cleanup.
	ErrDuplicateObject = errors.New("object already exists")

	// ErrConstraintViolation indicates a foreign-key or other constraint
	// rejected a row.
	ErrConstraintViolation = errors.New("constraint violation")

	// ErrClient indicates the statement itself was rejected.
	ErrClient = errors.New("client error")
)

// StepError reports which provisioning step failed, with the statement that
// was being executed. The wrapped error carries the taxonomy sentinel.
type StepError struct {
	Step      string
	Statement string
	Err       error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %s: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// Classify maps a driver error onto the provisioning taxonomy by wrapping it
// with the matching sentinel. Errors that fit no category are returned as-is.
func Classify(err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return fmt.Errorf("%w: %w", classifyPostgres(pgErr.Code), err)
	}

	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return fmt.Errorf("%w: %w", classifyMySQL(myErr), err)
	}

	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return fmt.Errorf("%w: %w", classifySQLite(liteErr), err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return fmt.Errorf("%w: %w", ErrConnection, err)
	}

	return err
}

// classifyPostgres maps a SQLSTATE code. See §A of the PostgreSQL manual.
func classifyPostgres(code string) error {
	switch code {
	case "42P04", "42P06", "42P07": // duplicate database / schema / table
		return ErrDuplicateObject
	}
	switch {
	case strings.HasPrefix(code, "08"), strings.HasPrefix(code, "28"):
		return ErrConnection
	case strings.HasPrefix(code, "23"):
		return ErrConstraintViolation
	default:
		return ErrClient
	}
}

func classifyMySQL(myErr *mysql.MySQLError) error {
	switch myErr.Number {
	case 1007, 1050: // database exists, table exists
		return ErrDuplicateObject
	case 1216, 1217, 1451, 1452: // foreign key violations
		return ErrConstraintViolation
	case 1044, 1045, 1130: // access denied, host not allowed
		return ErrConnection
	default:
		return ErrClient
	}
}

func classifySQLite(liteErr sqlite3.Error) error {
	if liteErr.Code == sqlite3.ErrConstraint {
		return ErrConstraintViolation
	}
	// SQLite reports duplicate DDL as a generic error; the message is the
	// only discriminator.
	if strings.Contains(liteErr.Error(), "already exists") {
		return ErrDuplicateObject
	}
	return ErrClient
}
