package migration

import (
	"context"

	"calcdash/internal/errors"

	"github.com/jmoiron/sqlx"
)

// Migrator defines the interface for database migration operations
type Migrator interface {
	Run(ctx context.Context, db *sqlx.DB) error
	Version() string
}

// MigrationRunner handles database schema migrations
type MigrationRunner struct {
	version string
}

// NewRunner creates a new migration runner
func NewRunner() *MigrationRunner {
	return &MigrationRunner{
		version: "1.0.0",
	}
}

// Version returns the migration version
func (r *MigrationRunner) Version() string {
	return r.version
}

// Run executes all database migrations in the correct order
func (r *MigrationRunner) Run(ctx context.Context, db *sqlx.DB) error {
	if err := r.createSectionsTable(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create dashboard_sections table")
	}

	if err := r.createApplyLogTable(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create upload_applies table")
	}

	return nil
}

func isPostgres(db *sqlx.DB) bool {
	return db.DriverName() == "postgres"
}

func (r *MigrationRunner) createSectionsTable(ctx context.Context, db *sqlx.DB) error {
	ddl := `
		CREATE TABLE IF NOT EXISTS dashboard_sections (
			section TEXT PRIMARY KEY,
			payload TEXT NOT NULL,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)
	`
	if isPostgres(db) {
		ddl = `
		CREATE TABLE IF NOT EXISTS dashboard_sections (
			section VARCHAR(64) PRIMARY KEY,
			payload JSONB NOT NULL,
			updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
		)
	`
	}
	_, err := db.ExecContext(ctx, ddl)
	return err
}

// createApplyLogTable records every committed upload apply.
func (r *MigrationRunner) createApplyLogTable(ctx context.Context, db *sqlx.DB) error {
	ddl := `
		CREATE TABLE IF NOT EXISTS upload_applies (
			id TEXT PRIMARY KEY,
			mode TEXT NOT NULL,
			sections TEXT NOT NULL,
			institution_rows INTEGER NOT NULL DEFAULT 0,
			course_rows INTEGER NOT NULL DEFAULT 0,
			applied_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)
	`
	if isPostgres(db) {
		ddl = `
		CREATE TABLE IF NOT EXISTS upload_applies (
			id UUID PRIMARY KEY,
			mode VARCHAR(16) NOT NULL,
			sections TEXT NOT NULL,
			institution_rows INTEGER NOT NULL DEFAULT 0,
			course_rows INTEGER NOT NULL DEFAULT 0,
			applied_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
		)
	`
	}
	_, err := db.ExecContext(ctx, ddl)
	return err
}
