// Package store provides database access for persisted calls and their
// derived insights. The engine core never issues raw storage queries;
// it goes through this collaborator.
package store

import (
	"github.com/voxmetrics/callsight/internal/profile"
)

// Store provides database access to all raw objects.
type Store struct {
	profile *profile.Profile
	driver  Driver
}

// New creates a new instance of Store.
func New(driver Driver, profile *profile.Profile) *Store {
	return &Store{
		driver:  driver,
		profile: profile,
	}
}

// GetDriver returns the underlying driver.
func (s *Store) GetDriver() Driver {
	return s.driver
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.driver.Close()
}
