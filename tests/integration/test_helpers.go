//go:build integration
// +build integration

package integration

import (
	"database/sql"
	"testing"

	"github.com/halvard/dbseed/internal/provision"
)

// openRaw opens a SQLite file without foreign-key enforcement, so tests can
// plant inconsistencies the constraints would otherwise block.
func openRaw(t *testing.T, path string) *sql.DB {
	t.Helper()

	dbh, err := sql.Open("sqlite3", path)
	if err != nil {
		t.Fatalf("Failed to open SQLite file: %v", err)
	}
	t.Cleanup(func() { _ = dbh.Close() })
	return dbh
}

// rowCount returns the number of rows in a (dialect-quoted) table.
func rowCount(t *testing.T, dbh *sql.DB, table string) int64 {
	t.Helper()

	var n int64
	if err := dbh.QueryRow("SELECT count(*) FROM " + table).Scan(&n); err != nil {
		t.Fatalf("Failed to count rows in %s: %v", table, err)
	}
	return n
}

// verifyReportClean checks that a verification report covers the three
// seeded tables and that every table verified clean.
func verifyReportClean(t *testing.T, report *provision.Report) {
	t.Helper()

	if len(report.Tables) != 3 {
		t.Fatalf("Expected 3 tables in report, got %d", len(report.Tables))
	}
	if !report.OK() {
		for _, tr := range report.Tables {
			if !tr.OK() {
				t.Errorf("Table did not verify: %s", tr)
			}
		}
	}
}

// findTableReport returns the report entry for a table, or fails.
func findTableReport(t *testing.T, report *provision.Report, table string) provision.TableReport {
	t.Helper()

	for _, tr := range report.Tables {
		if tr.Table == table {
			return tr
		}
	}
	t.Fatalf("Table %s not found in report", table)
	return provision.TableReport{}
}
