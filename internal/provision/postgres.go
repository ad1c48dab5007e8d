package provision

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/halvard/dbseed/internal/datagen"
	"github.com/halvard/dbseed/internal/db"
)

// Postgres provisions a PostgreSQL cluster. The admin URL points at the
// maintenance database (usually postgres), which is where CREATE DATABASE
// has to run; the target URL points at the database being created.
type Postgres struct {
	adminURL  string
	targetURL string
}

// NewPostgres creates a PostgreSQL provisioner.
func NewPostgres(adminURL, targetURL string) *Postgres {
	return &Postgres{adminURL: adminURL, targetURL: targetURL}
}

// Provision runs the full plan: database, schema, tables, seed data.
// CREATE DATABASE cannot run inside a transaction, so the sequence as a
// whole is not atomic; the first failing step aborts the rest and leaves
// whatever partial state the engine holds.
func (p *Postgres) Provision(ctx context.Context, cfg Config) error {
	cfg = cfg.withDefaults()
	if err := cfg.validate(); err != nil {
		return err
	}
	steps := Plan(DialectPostgres, cfg.Database)
	gen := datagen.New(cfg.Seed)

	admin, err := db.NewPostgresClient(ctx, p.adminURL)
	if err != nil {
		return stepFailure(steps[0], err)
	}
	err = p.exec(ctx, admin, steps[0], cfg)
	_ = admin.Close(ctx)
	if err != nil {
		return err
	}

	target, err := db.NewPostgresClient(ctx, p.targetURL)
	if err != nil {
		return stepFailure(steps[1], err)
	}
	defer func() { _ = target.Close(ctx) }()

	for _, step := range steps[1:5] {
		if err := p.exec(ctx, target, step, cfg); err != nil {
			return err
		}
	}

	seeds := []struct {
		step    Step
		table   pgx.Identifier
		columns []string
		total   int
		row     func(i int) ([]any, error)
	}{
		{
			step:    steps[5],
			table:   pgx.Identifier{SchemaName, "customer"},
			columns: []string{"id", "description"},
			total:   cfg.Counts.Customers,
			row: func(i int) ([]any, error) {
				return []any{int64(i + 1), gen.Description()}, nil
			},
		},
		{
			step:    steps[6],
			table:   pgx.Identifier{SchemaName, "order"},
			columns: []string{"id", "order_description", "customer_id"},
			total:   cfg.Counts.Orders,
			row: func(i int) ([]any, error) {
				return []any{int64(i + 1), gen.Description(), gen.RefID(cfg.Counts.Customers)}, nil
			},
		},
		{
			step:    steps[7],
			table:   pgx.Identifier{SchemaName, "item"},
			columns: []string{"id", "item_description", "order_id"},
			total:   cfg.Counts.Items,
			row: func(i int) ([]any, error) {
				return []any{int64(i + 1), gen.Description(), gen.RefID(cfg.Counts.Orders)}, nil
			},
		},
	}

	for _, s := range seeds {
		sctx, cancel := boundCtx(ctx, cfg.StatementTimeout)
		_, err := target.Conn().CopyFrom(sctx, s.table, s.columns, pgx.CopyFromSlice(s.total, s.row))
		cancel()
		if err != nil {
			return stepFailure(s.step, err)
		}
		logStep(cfg.Progress, s.step, fmt.Sprintf("%d rows", s.total))
	}

	return nil
}

func (p *Postgres) exec(ctx context.Context, client *db.PostgresClient, step Step, cfg Config) error {
	if step.Skip {
		logStep(cfg.Progress, step, skipNote(step))
		return nil
	}
	sctx, cancel := boundCtx(ctx, cfg.StatementTimeout)
	defer cancel()
	if _, err := client.Conn().Exec(sctx, step.Statement); err != nil {
		return stepFailure(step, err)
	}
	logStep(cfg.Progress, step, "ok")
	return nil
}

// Verify checks an already-provisioned target: row counts, id ranges, and
// orphaned foreign keys.
func (p *Postgres) Verify(ctx context.Context, cfg Config) (*Report, error) {
	cfg = cfg.withDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	target, err := db.NewPostgresClient(ctx, p.targetURL)
	if err != nil {
		return nil, db.Classify(err)
	}
	defer func() { _ = target.Close(ctx) }()

	report := &Report{}
	for _, chk := range verifyChecks(DialectPostgres, cfg) {
		tr := TableReport{Table: chk.table, WantRows: chk.want}
		if err := target.Conn().QueryRow(ctx, chk.countQuery).Scan(&tr.Rows, &tr.MinID, &tr.MaxID); err != nil {
			return nil, fmt.Errorf("verify %s: %w", chk.table, db.Classify(err))
		}
		if chk.orphanQuery != "" {
			if err := target.Conn().QueryRow(ctx, chk.orphanQuery).Scan(&tr.Orphans); err != nil {
				return nil, fmt.Errorf("verify %s: %w", chk.table, db.Classify(err))
			}
		}
		report.Tables = append(report.Tables, tr)
	}
	return report, nil
}
