package provision

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/halvard/dbseed/internal/datagen"
	"github.com/halvard/dbseed/internal/db"
)

// seedBatchRows is the row count per multi-row INSERT for the database/sql
// backends. 250 rows keeps the bind-variable count well under SQLite's
// limit.
const seedBatchRows = 250

// validate rejects configurations the generator cannot satisfy. It runs
// after defaulting, so zero counts have already been replaced and only
// explicitly non-positive values fail. Foreign-key ids are drawn uniformly
// from [1, count], which needs every count to be at least 1.
func (cfg Config) validate() error {
	c := cfg.Counts
	if c.Customers <= 0 || c.Orders <= 0 || c.Items <= 0 {
		return fmt.Errorf("%w: row counts must be positive, got customers=%d orders=%d items=%d",
			db.ErrClient, c.Customers, c.Orders, c.Items)
	}
	return nil
}

func stepFailure(step Step, err error) error {
	return &db.StepError{Step: step.Name, Statement: step.Statement, Err: db.Classify(err)}
}

// boundCtx derives a per-statement context. A zero timeout means no limit.
func boundCtx(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout > 0 {
		return context.WithTimeout(ctx, timeout)
	}
	return context.WithCancel(ctx)
}

func logStep(w io.Writer, step Step, note string) {
	fmt.Fprintf(w, "%s: %s\n", step.Name, note)
}

func skipNote(step Step) string {
	if step.Note != "" {
		return "skipped (" + step.Note + ")"
	}
	return "skipped"
}

// execSQL runs one DDL step over database/sql, honoring skip markers and the
// per-statement timeout.
func execSQL(ctx context.Context, dbh *sql.DB, step Step, cfg Config) error {
	if step.Skip {
		logStep(cfg.Progress, step, skipNote(step))
		return nil
	}
	sctx, cancel := boundCtx(ctx, cfg.StatementTimeout)
	defer cancel()
	if _, err := dbh.ExecContext(sctx, step.Statement); err != nil {
		return stepFailure(step, err)
	}
	logStep(cfg.Progress, step, "ok")
	return nil
}

func insertPrefix(table string, columns ...string) string {
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES ", table, strings.Join(columns, ", "))
}

func placeholderGroup(n int) string {
	return "(" + strings.TrimSuffix(strings.Repeat("?, ", n), ", ") + ")"
}

// seedSQL bulk-loads one table through database/sql: multi-row INSERT
// batches inside a single transaction, so a failed load leaves the table
// empty rather than partially filled.
func seedSQL(ctx context.Context, dbh *sql.DB, step Step, cfg Config, prefix string, columns, total int, row func(i int) []any) error {
	tx, err := dbh.BeginTx(ctx, nil)
	if err != nil {
		return stepFailure(step, err)
	}

	group := placeholderGroup(columns)
	for start := 0; start < total; start += seedBatchRows {
		n := seedBatchRows
		if start+n > total {
			n = total - start
		}

		var sb strings.Builder
		sb.WriteString(prefix)
		args := make([]any, 0, n*columns)
		for i := 0; i < n; i++ {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(group)
			args = append(args, row(start+i)...)
		}

		sctx, cancel := boundCtx(ctx, cfg.StatementTimeout)
		_, err := tx.ExecContext(sctx, sb.String(), args...)
		cancel()
		if err != nil {
			_ = tx.Rollback()
			return stepFailure(step, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return stepFailure(step, err)
	}
	logStep(cfg.Progress, step, fmt.Sprintf("%d rows", total))
	return nil
}

// seedSQLBackend loads the three tables in dependency order for the
// database/sql dialects. steps must be the full plan; the last three
// entries are the seed steps.
func seedSQLBackend(ctx context.Context, dbh *sql.DB, d Dialect, cfg Config, gen *datagen.Generator, steps []Step) error {
	customer := d.CustomerTable(cfg.Database)
	order := d.OrderTable(cfg.Database)
	item := d.ItemTable(cfg.Database)

	err := seedSQL(ctx, dbh, steps[5], cfg,
		insertPrefix(customer, "id", "description"), 2, cfg.Counts.Customers,
		func(i int) []any {
			return []any{int64(i + 1), gen.Description()}
		})
	if err != nil {
		return err
	}

	err = seedSQL(ctx, dbh, steps[6], cfg,
		insertPrefix(order, "id", "order_description", "customer_id"), 3, cfg.Counts.Orders,
		func(i int) []any {
			return []any{int64(i + 1), gen.Description(), gen.RefID(cfg.Counts.Customers)}
		})
	if err != nil {
		return err
	}

	return seedSQL(ctx, dbh, steps[7], cfg,
		insertPrefix(item, "id", "item_description", "order_id"), 3, cfg.Counts.Items,
		func(i int) []any {
			return []any{int64(i + 1), gen.Description(), gen.RefID(cfg.Counts.Orders)}
		})
}

// tableCheck is one table's verification queries.
type tableCheck struct {
	table       string
	want        int64
	countQuery  string
	orphanQuery string
}

func verifyChecks(d Dialect, cfg Config) []tableCheck {
	customer := d.CustomerTable(cfg.Database)
	order := d.OrderTable(cfg.Database)
	item := d.ItemTable(cfg.Database)

	return []tableCheck{
		{
			table:      "customer",
			want:       int64(cfg.Counts.Customers),
			countQuery: countQuery(customer),
		},
		{
			table:       "order",
			want:        int64(cfg.Counts.Orders),
			countQuery:  countQuery(order),
			orphanQuery: orphanQuery(order, "customer_id", customer),
		},
		{
			table:       "item",
			want:        int64(cfg.Counts.Items),
			countQuery:  countQuery(item),
			orphanQuery: orphanQuery(item, "order_id", order),
		},
	}
}

func countQuery(table string) string {
	return fmt.Sprintf("SELECT count(*), coalesce(min(id), 0), coalesce(max(id), 0) FROM %s", table)
}

func orphanQuery(table, fk, parent string) string {
	return fmt.Sprintf(
		"SELECT count(*) FROM %s c WHERE c.%s IS NOT NULL AND NOT EXISTS (SELECT 1 FROM %s p WHERE p.id = c.%s)",
		table, fk, parent, fk)
}

// verifySQLDB runs the verification checks over database/sql.
func verifySQLDB(ctx context.Context, dbh *sql.DB, d Dialect, cfg Config) (*Report, error) {
	report := &Report{}
	for _, chk := range verifyChecks(d, cfg) {
		tr := TableReport{Table: chk.table, WantRows: chk.want}
		if err := dbh.QueryRowContext(ctx, chk.countQuery).Scan(&tr.Rows, &tr.MinID, &tr.MaxID); err != nil {
			return nil, fmt.Errorf("verify %s: %w", chk.table, db.Classify(err))
		}
		if chk.orphanQuery != "" {
			if err := dbh.QueryRowContext(ctx, chk.orphanQuery).Scan(&tr.Orphans); err != nil {
				return nil, fmt.Errorf("verify %s: %w", chk.table, db.Classify(err))
			}
		}
		report.Tables = append(report.Tables, tr)
	}
	return report, nil
}
