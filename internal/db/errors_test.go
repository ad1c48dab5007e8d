package db

import (
	"errors"
	"fmt"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
)

func TestClassifyPostgres(t *testing.T) {
	tests := []struct {
		name string
		code string
		want error
	}{
		{name: "duplicate database", code: "42P04", want: ErrDuplicateObject},
		{name: "duplicate schema", code: "42P06", want: ErrDuplicateObject},
		{name: "duplicate table", code: "42P07", want: ErrDuplicateObject},
		{name: "foreign key violation", code: "23503", want: ErrConstraintViolation},
		{name: "connection failure", code: "08006", want: ErrConnection},
		{name: "invalid password", code: "28P01", want: ErrConnection},
		{name: "syntax error", code: "42601", want: ErrClient},
		{name: "undefined table", code: "42P01", want: ErrClient},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Classify(&pgconn.PgError{Code: tt.code, Message: tt.name})
			if !errors.Is(err, tt.want) {
				t.Errorf("Classify(code %s) = %v, want sentinel %v", tt.code, err, tt.want)
			}
		})
	}
}

func TestClassifyMySQL(t *testing.T) {
	tests := []struct {
		name   string
		number uint16
		want   error
	}{
		{name: "database exists", number: 1007, want: ErrDuplicateObject},
		{name: "table exists", number: 1050, want: ErrDuplicateObject},
		{name: "fk violation on insert", number: 1452, want: ErrConstraintViolation},
		{name: "fk violation on delete", number: 1451, want: ErrConstraintViolation},
		{name: "access denied", number: 1045, want: ErrConnection},
		{name: "syntax error", number: 1064, want: ErrClient},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Classify(&mysql.MySQLError{Number: tt.number, Message: tt.name})
			if !errors.Is(err, tt.want) {
				t.Errorf("Classify(number %d) = %v, want sentinel %v", tt.number, err, tt.want)
			}
		})
	}
}

func TestClassifySQLite(t *testing.T) {
	constraintErr := sqlite3.Error{Code: sqlite3.ErrConstraint}
	if err := Classify(constraintErr); !errors.Is(err, ErrConstraintViolation) {
		t.Errorf("Classify(constraint) = %v, want ErrConstraintViolation", err)
	}
}

func TestClassifyUnknownPassthrough(t *testing.T) {
	plain := errors.New("something else entirely")
	if got := Classify(plain); got != plain {
		t.Errorf("Classify(plain error) = %v, want unchanged error", got)
	}
	if Classify(nil) != nil {
		t.Error("Classify(nil) should be nil")
	}
}

func TestStepError(t *testing.T) {
	underlying := fmt.Errorf("%w: boom", ErrDuplicateObject)
	err := &StepError{Step: "create-database", Statement: "CREATE DATABASE example", Err: underlying}

	if !errors.Is(err, ErrDuplicateObject) {
		t.Error("StepError should unwrap to the taxonomy sentinel")
	}

	var stepErr *StepError
	if !errors.As(fmt.Errorf("provision: %w", err), &stepErr) {
		t.Fatal("StepError not recoverable with errors.As")
	}
	if stepErr.Step != "create-database" {
		t.Errorf("Step = %q, want create-database", stepErr.Step)
	}
}
