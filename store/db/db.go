// Package db builds the concrete store driver for a profile.
//
// PostgreSQL: full support including server-side vector search (pgvector).
// SQLite: embedded driver for development and tests; embeddings are
// serialized as JSON text and similarity runs in the in-memory index.
package db

import (
	"github.com/pkg/errors"

	"github.com/voxmetrics/callsight/internal/profile"
	"github.com/voxmetrics/callsight/store"
	"github.com/voxmetrics/callsight/store/db/postgres"
	"github.com/voxmetrics/callsight/store/db/sqlite"
)

// NewDBDriver creates a new db driver based on the profile.
func NewDBDriver(profile *profile.Profile) (store.Driver, error) {
	var driver store.Driver
	var err error

	switch profile.Driver {
	case "sqlite":
		driver, err = sqlite.NewDB(profile)
	case "postgres":
		driver, err = postgres.NewDB(profile)
	default:
		return nil, errors.Errorf("unknown db driver %q: only 'sqlite' and 'postgres' are supported", profile.Driver)
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to create db driver")
	}
	return driver, nil
}
