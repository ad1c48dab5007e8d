package provision

import (
	"context"

	"github.com/halvard/dbseed/internal/datagen"
	"github.com/halvard/dbseed/internal/db"
)

// SQLite provisions a database file. The create-database and create-schema
// steps are recorded no-ops; the file itself is the database and SQLite has
// no schema namespaces.
type SQLite struct {
	path string
}

// NewSQLite creates a SQLite provisioner for the given file path.
func NewSQLite(path string) *SQLite {
	return &SQLite{path: path}
}

// Provision runs the full plan against the file, creating it if needed.
// Re-running against an existing file fails at the first create-table step.
func (s *SQLite) Provision(ctx context.Context, cfg Config) error {
	cfg = cfg.withDefaults()
	if err := cfg.validate(); err != nil {
		return err
	}
	steps := Plan(DialectSQLite, cfg.Database)
	gen := datagen.New(cfg.Seed)

	client, err := db.NewSQLiteClient(ctx, s.path)
	if err != nil {
		return stepFailure(steps[2], err)
	}
	defer func() { _ = client.Close() }()

	for _, step := range steps[:5] {
		if err := execSQL(ctx, client.DB(), step, cfg); err != nil {
			return err
		}
	}

	return seedSQLBackend(ctx, client.DB(), DialectSQLite, cfg, gen, steps)
}

// Verify checks an already-provisioned file.
func (s *SQLite) Verify(ctx context.Context, cfg Config) (*Report, error) {
	cfg = cfg.withDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	client, err := db.NewSQLiteClient(ctx, s.path)
	if err != nil {
		return nil, db.Classify(err)
	}
	defer func() { _ = client.Close() }()

	return verifySQLDB(ctx, client.DB(), DialectSQLite, cfg)
}
