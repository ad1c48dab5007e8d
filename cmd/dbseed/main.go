package main

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/halvard/dbseed"
	"github.com/halvard/dbseed/internal/db"
	"github.com/halvard/dbseed/internal/provision"
)

var (
	dbURL       string
	mysqlURL    string
	sqlitePath  string
	host        string
	port        int
	user        string
	password    string
	database    string
	customers   int
	orders      int
	items       int
	seed        int64
	stmtTimeout time.Duration
	dryRun      bool
)

var rootCmd = &cobra.Command{
	Use:           "dbseed",
	Short:         "Provision and seed the example database",
	Long:          `dbseed creates the example database with the simple schema, the customer, order, and item tables, and seeds them with pseudo-random rows whose foreign keys always reference existing parents. The procedure is not idempotent: re-running against a provisioned target fails with a duplicate-object error.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var provisionCmd = &cobra.Command{
	Use:   "provision",
	Short: "Create the database, schema, tables, and seed data",
	RunE:  runProvision,
}

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Check row counts, id ranges, and referential integrity of a provisioned target",
	RunE:  runVerify,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&dbURL, "db-url", "", "PostgreSQL connection URL (overrides the host/user/password/database flags)")
	pf.StringVar(&mysqlURL, "mysql-url", "", "MySQL connection string")
	pf.StringVar(&sqlitePath, "sqlite", "", "SQLite database file path")
	pf.StringVar(&host, "host", "127.0.0.1", "PostgreSQL host")
	pf.IntVar(&port, "port", 5432, "PostgreSQL port")
	pf.StringVar(&user, "user", "postgres", "PostgreSQL user")
	pf.StringVar(&password, "password", "postgres", "PostgreSQL password")
	pf.StringVarP(&database, "database", "d", provision.DefaultDatabase, "Database to create and seed")
	pf.IntVar(&customers, "customers", provision.DefaultCounts.Customers, "Rows to seed into customer")
	pf.IntVar(&orders, "orders", provision.DefaultCounts.Orders, "Rows to seed into order")
	pf.IntVar(&items, "items", provision.DefaultCounts.Items, "Rows to seed into item")

	provisionCmd.Flags().Int64Var(&seed, "seed", 0, "Random seed for generated data (0 = time-based)")
	provisionCmd.Flags().DurationVar(&stmtTimeout, "statement-timeout", 0, "Timeout per statement (0 = none)")
	provisionCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the plan without executing it")

	rootCmd.AddCommand(provisionCmd)
	rootCmd.AddCommand(verifyCmd)
}

// buildDatabaseURL resolves the mutually exclusive target flags into one
// connection URL. With no backend flag set, the PostgreSQL flags with their
// defaults apply.
func buildDatabaseURL() (string, error) {
	count := 0
	for _, v := range []string{dbURL, mysqlURL, sqlitePath} {
		if v != "" {
			count++
		}
	}
	if count > 1 {
		return "", fmt.Errorf("only one of --db-url, --mysql-url, or --sqlite can be specified")
	}

	switch {
	case dbURL != "":
		return dbURL, nil
	case mysqlURL != "":
		if strings.HasPrefix(mysqlURL, "mysql://") {
			return mysqlURL, nil
		}
		return "mysql://" + mysqlURL, nil
	case sqlitePath != "":
		return "sqlite://" + sqlitePath, nil
	default:
		u := url.URL{
			Scheme: "postgres",
			User:   url.UserPassword(user, password),
			Host:   fmt.Sprintf("%s:%d", host, port),
			Path:   "/" + database,
		}
		return u.String(), nil
	}
}

// targetDialect infers the plan dialect and database name for display. The
// database comes from the URL itself, resolved the same way a real run
// resolves it, so a dry run prints the plan the run would execute.
func targetDialect(databaseURL string) (provision.Dialect, string) {
	switch {
	case strings.HasPrefix(databaseURL, "mysql://"):
		name := provision.DefaultDatabase
		if _, parsed, err := db.SplitDSN(strings.TrimPrefix(databaseURL, "mysql://")); err == nil && parsed != "" {
			name = parsed
		}
		return provision.DialectMySQL, name
	case strings.HasPrefix(databaseURL, "sqlite://"):
		return provision.DialectSQLite, ""
	default:
		name := provision.DefaultDatabase
		if u, err := url.Parse(databaseURL); err == nil && strings.TrimPrefix(u.Path, "/") != "" {
			name = strings.TrimPrefix(u.Path, "/")
		}
		return provision.DialectPostgres, name
	}
}

func seedOptions() *dbseed.Options {
	return &dbseed.Options{
		Customers:        customers,
		Orders:           orders,
		Items:            items,
		Seed:             seed,
		StatementTimeout: stmtTimeout,
		Progress:         os.Stdout,
	}
}

func runProvision(cmd *cobra.Command, args []string) error {
	target, err := buildDatabaseURL()
	if err != nil {
		return err
	}

	if dryRun {
		dialect, name := targetDialect(target)
		for _, step := range provision.Plan(dialect, name) {
			if step.Skip {
				fmt.Printf("%s: -- %s\n", step.Name, skipReason(step))
				continue
			}
			fmt.Printf("%s: %s\n", step.Name, step.Statement)
		}
		return nil
	}

	if err := dbseed.Provision(cmd.Context(), target, seedOptions()); err != nil {
		// Surface the failing statement; the remaining steps were aborted
		// and partial state is left behind.
		var stepErr *db.StepError
		if errors.As(err, &stepErr) && stepErr.Statement != "" {
			fmt.Fprintf(os.Stderr, "failed statement:\n  %s\n", stepErr.Statement)
		}
		return err
	}
	return nil
}

func skipReason(step provision.Step) string {
	if step.Note != "" {
		return "skipped: " + step.Note
	}
	return "skipped"
}

func runVerify(cmd *cobra.Command, args []string) error {
	target, err := buildDatabaseURL()
	if err != nil {
		return err
	}

	report, err := dbseed.Verify(cmd.Context(), target, seedOptions())
	if err != nil {
		return err
	}

	for _, tr := range report.Tables {
		fmt.Println(tr.String())
	}
	if !report.OK() {
		return fmt.Errorf("verification failed")
	}
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
