package postgres

import (
	"context"
	"database/sql"
	"fmt"

	// Import the PostgreSQL driver.
	_ "github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/voxmetrics/callsight/internal/profile"
)

// DB is the PostgreSQL implementation of store.Driver. Embeddings live in
// a pgvector column, which also enables server-side cosine search.
type DB struct {
	db      *sql.DB
	profile *profile.Profile
}

// NewDB opens the PostgreSQL database and bootstraps the schema.
func NewDB(profile *profile.Profile) (*DB, error) {
	if profile == nil {
		return nil, errors.New("profile is nil")
	}
	if profile.DSN == "" {
		return nil, errors.New("dsn is required")
	}

	sqlDB, err := sql.Open("postgres", profile.DSN)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open db")
	}
	if err := sqlDB.Ping(); err != nil {
		return nil, errors.Wrap(err, "failed to ping db")
	}

	driver := &DB{db: sqlDB, profile: profile}
	if err := driver.migrate(context.Background()); err != nil {
		return nil, errors.Wrap(err, "failed to bootstrap schema")
	}
	return driver, nil
}

func (d *DB) migrate(ctx context.Context) error {
	if _, err := d.db.ExecContext(ctx, "CREATE EXTENSION IF NOT EXISTS vector"); err != nil {
		return errors.Wrap(err, "pgvector extension is required")
	}

	stmt := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS call (
			id TEXT PRIMARY KEY,
			agent_id TEXT NOT NULL,
			customer_id TEXT NOT NULL,
			language TEXT NOT NULL DEFAULT 'en',
			start_ts BIGINT NOT NULL,
			duration_seconds INTEGER NOT NULL,
			transcript TEXT NOT NULL,
			sentiment_score DOUBLE PRECISION,
			agent_talk_ratio DOUBLE PRECISION,
			degraded BOOLEAN NOT NULL DEFAULT FALSE,
			embedding vector(%d),
			created_ts BIGINT NOT NULL,
			updated_ts BIGINT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_call_agent_id ON call (agent_id);
		CREATE INDEX IF NOT EXISTS idx_call_start_ts ON call (start_ts);
	`, d.profile.AIEmbeddingDim)
	_, err := d.db.ExecContext(ctx, stmt)
	return err
}

// GetDB returns the underlying *sql.DB.
func (d *DB) GetDB() *sql.DB {
	return d.db
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.db.Close()
}
