package store

import (
	"context"
	"database/sql"
)

// Driver is an interface for store driver.
// It contains all methods that a database driver should implement.
type Driver interface {
	GetDB() *sql.DB
	Close() error

	// Call model related methods.
	UpsertCall(ctx context.Context, call *Call) (*Call, error)
	GetCall(ctx context.Context, id string) (*Call, error)
	ListCalls(ctx context.Context, find *FindCall) ([]*Call, error)
	UpdateCallInsights(ctx context.Context, update *UpdateCallInsights) error
	DeleteCall(ctx context.Context, id string) error

	// LoadAllEmbeddings loads every persisted (call id, embedding) pair
	// for similarity index warm-up.
	LoadAllEmbeddings(ctx context.Context) ([]*CallEmbedding, error)

	// VectorSearch performs server-side vector similarity search.
	// Drivers without vector support return an error.
	VectorSearch(ctx context.Context, opts *VectorSearchOptions) ([]*CallWithScore, error)
}
