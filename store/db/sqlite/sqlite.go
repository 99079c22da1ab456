package sqlite

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"

	// Import the pure-Go SQLite driver.
	_ "modernc.org/sqlite"

	"github.com/voxmetrics/callsight/internal/profile"
)

// DB is the SQLite implementation of store.Driver.
type DB struct {
	db      *sql.DB
	profile *profile.Profile
}

// NewDB opens the SQLite database and bootstraps the schema.
func NewDB(profile *profile.Profile) (*DB, error) {
	if profile == nil {
		return nil, errors.New("profile is nil")
	}
	if profile.DSN == "" {
		return nil, errors.New("dsn is required")
	}

	// busy_timeout keeps concurrent writers from failing immediately;
	// WAL lets queries run alongside ingestion.
	dsn := profile.DSN + "?_pragma=busy_timeout(10000)&_pragma=journal_mode(WAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open db with dsn: %s", profile.DSN)
	}

	driver := &DB{db: sqlDB, profile: profile}
	if err := driver.migrate(context.Background()); err != nil {
		return nil, errors.Wrap(err, "failed to bootstrap schema")
	}
	return driver, nil
}

func (d *DB) migrate(ctx context.Context) error {
	stmt := `
		CREATE TABLE IF NOT EXISTS call (
			id TEXT PRIMARY KEY,
			agent_id TEXT NOT NULL,
			customer_id TEXT NOT NULL,
			language TEXT NOT NULL DEFAULT 'en',
			start_ts INTEGER NOT NULL,
			duration_seconds INTEGER NOT NULL,
			transcript TEXT NOT NULL,
			sentiment_score REAL,
			agent_talk_ratio REAL,
			degraded INTEGER NOT NULL DEFAULT 0,
			embedding TEXT,
			created_ts INTEGER NOT NULL,
			updated_ts INTEGER NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_call_agent_id ON call (agent_id);
		CREATE INDEX IF NOT EXISTS idx_call_start_ts ON call (start_ts);
	`
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
