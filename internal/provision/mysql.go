package provision

import (
	"context"

	"github.com/halvard/dbseed/internal/datagen"
	"github.com/halvard/dbseed/internal/db"
)

// MySQL provisions a MySQL server. The DSN must not name a default
// database; every table reference is qualified with the target database,
// so a single connection covers the whole plan.
type MySQL struct {
	dsn string
}

// NewMySQL creates a MySQL provisioner.
func NewMySQL(dsn string) *MySQL {
	return &MySQL{dsn: dsn}
}

// Provision runs the full plan. The create-schema step is a recorded no-op:
// MySQL schemas are databases, so the create-database step already made the
// namespace.
func (m *MySQL) Provision(ctx context.Context, cfg Config) error {
	cfg = cfg.withDefaults()
	if err := cfg.validate(); err != nil {
		return err
	}
	steps := Plan(DialectMySQL, cfg.Database)
	gen := datagen.New(cfg.Seed)

	client, err := db.NewMySQLClient(ctx, m.dsn)
	if err != nil {
		return stepFailure(steps[0], err)
	}
	defer func() { _ = client.Close() }()

	for _, step := range steps[:5] {
		if err := execSQL(ctx, client.DB(), step, cfg); err != nil {
			return err
		}
	}

	return seedSQLBackend(ctx, client.DB(), DialectMySQL, cfg, gen, steps)
}

// Verify checks an already-provisioned target.
func (m *MySQL) Verify(ctx context.Context, cfg Config) (*Report, error) {
	cfg = cfg.withDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	client, err := db.NewMySQLClient(ctx, m.dsn)
	if err != nil {
		return nil, db.Classify(err)
	}
	defer func() { _ = client.Close() }()

	return verifySQLDB(ctx, client.DB(), DialectMySQL, cfg)
}
