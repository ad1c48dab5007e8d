//go:build integration
// +build integration

package integration

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/halvard/dbseed"
	"github.com/halvard/dbseed/internal/db"
)

// mysqlTestDSN returns a schemaless server DSN from the environment, or
// skips. Each test appends its own unique database name.
func mysqlTestDSN(t *testing.T) string {
	t.Helper()

	dsn := os.Getenv("MYSQL_TEST_DSN")
	if dsn == "" {
		t.Skip("MYSQL_TEST_DSN not set; skipping MySQL integration test")
	}
	return strings.TrimSuffix(dsn, "/")
}

func provisionTempMySQLDatabase(t *testing.T) (databaseURL, database string) {
	t.Helper()

	ctx := context.Background()
	database = fmt.Sprintf("dbseed_test_%d", time.Now().UnixNano())
	databaseURL = "mysql://" + mysqlTestDSN(t) + "/" + database

	if err := dbseed.Provision(ctx, databaseURL, testOptions()); err != nil {
		t.Fatalf("Provision failed: %v", err)
	}

	t.Cleanup(func() { dropMySQLDatabase(t, database) })
	return databaseURL, database
}

func dropMySQLDatabase(t *testing.T, database string) {
	t.Helper()

	ctx := context.Background()
	client, err := db.NewMySQLClient(ctx, mysqlTestDSN(t)+"/")
	if err != nil {
		t.Logf("Cleanup connection failed: %v", err)
		return
	}
	defer client.Close()

	if _, err := client.DB().ExecContext(ctx, "DROP DATABASE IF EXISTS "+database); err != nil {
		t.Logf("Cleanup drop failed: %v", err)
	}
}

func TestMySQLProvisionAndVerify(t *testing.T) {
	ctx := context.Background()
	databaseURL, database := provisionTempMySQLDatabase(t)

	report, err := dbseed.Verify(ctx, databaseURL, testOptions())
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	verifyReportClean(t, report)

	client, err := db.NewMySQLClient(ctx, mysqlTestDSN(t)+"/")
	if err != nil {
		t.Fatalf("Failed to connect: %v", err)
	}
	defer client.Close()

	var desc *string
	query := fmt.Sprintf("SELECT description FROM %s.customer WHERE id = 1", database)
	if err := client.DB().QueryRowContext(ctx, query).Scan(&desc); err != nil {
		t.Fatalf("Failed to read customer 1: %v", err)
	}
	if desc == nil || *desc == "" {
		t.Error("customer id=1 has no description")
	}
}

func TestMySQLRerunFailsAtCreateDatabase(t *testing.T) {
	databaseURL, _ := provisionTempMySQLDatabase(t)

	err := dbseed.Provision(context.Background(), databaseURL, testOptions())
	if err == nil {
		t.Fatal("Second provision run should fail")
	}
	if !errors.Is(err, db.ErrDuplicateObject) {
		t.Errorf("Expected duplicate-object error, got: %v", err)
	}

	var stepErr *db.StepError
	if !errors.As(err, &stepErr) {
		t.Fatalf("Expected StepError, got: %v", err)
	}
	if stepErr.Step != "create-database" {
		t.Errorf("Failed at step %s, want create-database", stepErr.Step)
	}
}

func TestMySQLDeleteReferencedCustomerBlocked(t *testing.T) {
	ctx := context.Background()
	_, database := provisionTempMySQLDatabase(t)

	client, err := db.NewMySQLClient(ctx, mysqlTestDSN(t)+"/")
	if err != nil {
		t.Fatalf("Failed to connect: %v", err)
	}
	defer client.Close()

	var referenced int64
	query := fmt.Sprintf("SELECT customer_id FROM %s.`order` WHERE customer_id IS NOT NULL LIMIT 1", database)
	if err := client.DB().QueryRowContext(ctx, query).Scan(&referenced); err != nil {
		t.Fatalf("No referenced customer found: %v", err)
	}

	_, err = client.DB().ExecContext(ctx,
		fmt.Sprintf("DELETE FROM %s.customer WHERE id = ?", database), referenced)
	if err == nil {
		t.Fatal("Deleting a referenced customer should be blocked (no cascade configured)")
	}
	if !errors.Is(db.Classify(err), db.ErrConstraintViolation) {
		t.Errorf("Expected constraint violation, got: %v", err)
	}
}
