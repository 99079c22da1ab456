package store

import "context"

// Call is the persisted call record. Features and embedding are value
// columns owned by the call row.
type Call struct {
	ID              string
	AgentID         string
	CustomerID      string
	Language        string
	StartTs         int64
	DurationSeconds int
	Transcript      string

	// Derived insights; nil until computed.
	SentimentScore *float64
	AgentTalkRatio *float64
	Degraded       bool
	// Embedding is nil when no embedding has been computed. Such calls
	// are excluded from similarity but still retrievable.
	Embedding []float32

	CreatedTs int64
	UpdatedTs int64
}

// FindCall is the find condition for calls.
type FindCall struct {
	ID           *string
	AgentID      *string
	MinSentiment *float64
	MaxSentiment *float64
	Limit        *int
	Offset       *int
}

// UpdateCallInsights updates the derived insight columns of a call.
type UpdateCallInsights struct {
	ID             string
	SentimentScore *float64
	AgentTalkRatio *float64
	Degraded       *bool
	Embedding      []float32
}

// CallEmbedding is the (call id, embedding) pair served to the similarity
// index at warm-up.
type CallEmbedding struct {
	CallID    string
	Embedding []float32
}

// VectorSearchOptions represents the options for server-side vector search.
type VectorSearchOptions struct {
	Vector []float32
	Limit  int
}

// CallWithScore is a server-side vector search result.
type CallWithScore struct {
	Call  *Call
	Score float64
}

// UpsertCall inserts or replaces a call record.
func (s *Store) UpsertCall(ctx context.Context, call *Call) (*Call, error) {
	return s.driver.UpsertCall(ctx, call)
}

// GetCall gets a call by id. Returns (nil, nil) when the call does not
// exist.
func (s *Store) GetCall(ctx context.Context, id string) (*Call, error) {
	return s.driver.GetCall(ctx, id)
}

// ListCalls lists calls matching the find condition.
func (s *Store) ListCalls(ctx context.Context, find *FindCall) ([]*Call, error) {
	return s.driver.ListCalls(ctx, find)
}

// UpdateCallInsights updates the derived insight columns of a call.
func (s *Store) UpdateCallInsights(ctx context.Context, update *UpdateCallInsights) error {
	return s.driver.UpdateCallInsights(ctx, update)
}

// DeleteCall deletes a call record.
func (s *Store) DeleteCall(ctx context.Context, id string) error {
	return s.driver.DeleteCall(ctx, id)
}

// LoadAllEmbeddings loads every persisted (call id, embedding) pair, for
// similarity index warm-up.
func (s *Store) LoadAllEmbeddings(ctx context.Context) ([]*CallEmbedding, error) {
	return s.driver.LoadAllEmbeddings(ctx)
}

// VectorSearch performs server-side vector similarity search where the
// driver supports it (postgres with pgvector).
func (s *Store) VectorSearch(ctx context.Context, opts *VectorSearchOptions) ([]*CallWithScore, error) {
	return s.driver.VectorSearch(ctx, opts)
}
