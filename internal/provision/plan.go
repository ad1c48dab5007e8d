// Package provision creates and seeds the example database: the simple
// schema, the customer, order, and item tables with their foreign keys, and
// pseudo-random rows with valid references. Steps run in a fixed order; the
// first failure aborts the rest and nothing is rolled back.
package provision

import (
	"fmt"
	"io"
	"time"
)

// Dialect selects the SQL variant for a backend.
type Dialect int

const (
	DialectPostgres Dialect = iota
	DialectMySQL
	DialectSQLite
)

func (d Dialect) String() string {
	switch d {
	case DialectPostgres:
		return "postgres"
	case DialectMySQL:
		return "mysql"
	case DialectSQLite:
		return "sqlite"
	default:
		return "unknown"
	}
}

// SchemaName is the namespace holding the seeded tables (PostgreSQL only;
// MySQL treats schemas as databases and SQLite has neither).
const SchemaName = "simple"

// DefaultDatabase is the database created by the first provisioning step.
const DefaultDatabase = "example"

// Counts configures how many rows each table receives.
type Counts struct {
	Customers int
	Orders    int
	Items     int
}

// DefaultCounts matches the original provisioning script.
var DefaultCounts = Counts{Customers: 1000, Orders: 10000, Items: 100000}

// Config carries provisioning options. The zero value provisions the
// example database with the default row counts.
type Config struct {
	// Database is the target database name. Defaults to "example".
	// Ignored for SQLite.
	Database string

	// Counts are the per-table row counts. Zero fields take the defaults.
	Counts Counts

	// Seed seeds the data generator. 0 seeds from the current time.
	Seed int64

	// StatementTimeout bounds each individual step. 0 means no limit.
	StatementTimeout time.Duration

	// Progress receives one line per completed step. nil discards it.
	Progress io.Writer
}

func (cfg Config) withDefaults() Config {
	if cfg.Database == "" {
		cfg.Database = DefaultDatabase
	}
	if cfg.Counts.Customers == 0 {
		cfg.Counts.Customers = DefaultCounts.Customers
	}
	if cfg.Counts.Orders == 0 {
		cfg.Counts.Orders = DefaultCounts.Orders
	}
	if cfg.Counts.Items == 0 {
		cfg.Counts.Items = DefaultCounts.Items
	}
	if cfg.Progress == nil {
		cfg.Progress = io.Discard
	}
	return cfg
}

// Step is one entry of the provisioning plan. Skipped steps are dialect
// no-ops kept in the plan so every backend reports the same sequence.
type Step struct {
	Name      string
	Statement string
	Skip      bool
	Note      string
}

// Step names, in execution order.
const (
	StepCreateDatabase      = "create-database"
	StepCreateSchema        = "create-schema"
	StepCreateTableCustomer = "create-table-customer"
	StepCreateTableOrder    = "create-table-order"
	StepCreateTableItem     = "create-table-item"
	StepSeedCustomer        = "seed-customer"
	StepSeedOrder           = "seed-order"
	StepSeedItem            = "seed-item"
)

// CustomerTable returns the qualified customer table name for the dialect.
func (d Dialect) CustomerTable(database string) string {
	return d.qualify("customer", database)
}

// OrderTable returns the qualified order table name. "order" is a reserved
// word everywhere, so the bare name is always quoted.
func (d Dialect) OrderTable(database string) string {
	if d == DialectMySQL {
		return d.qualify("`order`", database)
	}
	return d.qualify(`"order"`, database)
}

// ItemTable returns the qualified item table name for the dialect.
func (d Dialect) ItemTable(database string) string {
	return d.qualify("item", database)
}

func (d Dialect) qualify(name, database string) string {
	switch d {
	case DialectPostgres:
		return SchemaName + "." + name
	case DialectMySQL:
		return database + "." + name
	default:
		return name
	}
}

// Plan returns the fixed, ordered provisioning steps for a dialect.
// Later steps depend on the side effects of earlier ones: the schema needs
// the database, each table needs the schema, the order table references
// customer, and item references order. Callers must not reorder.
func Plan(d Dialect, database string) []Step {
	if database == "" {
		database = DefaultDatabase
	}

	customer := d.CustomerTable(database)
	order := d.OrderTable(database)
	item := d.ItemTable(database)

	steps := make([]Step, 0, 8)

	switch d {
	case DialectPostgres:
		steps = append(steps,
			Step{Name: StepCreateDatabase, Statement: "CREATE DATABASE " + database},
			Step{Name: StepCreateSchema, Statement: "CREATE SCHEMA " + SchemaName},
		)
	case DialectMySQL:
		steps = append(steps,
			Step{Name: StepCreateDatabase, Statement: "CREATE DATABASE " + database},
			Step{Name: StepCreateSchema, Skip: true, Note: "MySQL schemas are databases"},
		)
	case DialectSQLite:
		steps = append(steps,
			Step{Name: StepCreateDatabase, Skip: true, Note: "SQLite has no databases; the file is the target"},
			Step{Name: StepCreateSchema, Skip: true, Note: "SQLite has no schemas"},
		)
	}

	steps = append(steps,
		Step{
			Name:      StepCreateTableCustomer,
			Statement: fmt.Sprintf("CREATE TABLE %s (id BIGINT PRIMARY KEY, description TEXT)", customer),
		},
		Step{
			Name:      StepCreateTableOrder,
			Statement: createOrderTable(d, order, customer),
		},
		Step{
			Name:      StepCreateTableItem,
			Statement: createItemTable(d, item, order),
		},
		Step{Name: StepSeedCustomer, Statement: seedStatement(d, customer, "id", "description")},
		Step{Name: StepSeedOrder, Statement: seedStatement(d, order, "id", "order_description", "customer_id")},
		Step{Name: StepSeedItem, Statement: seedStatement(d, item, "id", "item_description", "order_id")},
	)

	return steps
}

func createOrderTable(d Dialect, order, customer string) string {
	if d == DialectMySQL {
		// MySQL parses inline column REFERENCES but silently ignores them;
		// the constraint must be table-level to be enforced.
		return fmt.Sprintf(
			"CREATE TABLE %s (id BIGINT PRIMARY KEY, order_description TEXT, customer_id BIGINT, FOREIGN KEY (customer_id) REFERENCES %s(id))",
			order, customer)
	}
	return fmt.Sprintf(
		"CREATE TABLE %s (id BIGINT PRIMARY KEY, order_description TEXT, customer_id BIGINT REFERENCES %s(id))",
		order, customer)
}

func createItemTable(d Dialect, item, order string) string {
	if d == DialectMySQL {
		return fmt.Sprintf(
			"CREATE TABLE %s (id BIGINT PRIMARY KEY, item_description TEXT, order_id BIGINT, FOREIGN KEY (order_id) REFERENCES %s(id))",
			item, order)
	}
	return fmt.Sprintf(
		"CREATE TABLE %s (id BIGINT PRIMARY KEY, item_description TEXT, order_id BIGINT REFERENCES %s(id))",
		item, order)
}

// seedStatement returns the representative bulk-load statement for a seed
// step, used for dry-run display and error reporting.
func seedStatement(d Dialect, table string, columns ...string) string {
	cols := columns[0]
	marks := "?"
	for _, c := range columns[1:] {
		cols += ", " + c
		marks += ", ?"
	}
	if d == DialectPostgres {
		return fmt.Sprintf("COPY %s (%s) FROM STDIN", table, cols)
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", table, cols, marks)
}
