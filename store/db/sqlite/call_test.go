package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voxmetrics/callsight/internal/profile"
	"github.com/voxmetrics/callsight/store"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	dir := t.TempDir()
	p := &profile.Profile{
		Mode:           "dev",
		Driver:         "sqlite",
		Data:           dir,
		DSN:            filepath.Join(dir, "test.db"),
		AIEmbeddingDim: 4,
	}
	db, err := NewDB(p)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func ptr[T any](v T) *T { return &v }

func testCall(id string) *store.Call {
	return &store.Call{
		ID:              id,
		AgentID:         "a-1",
		CustomerID:      "u-1",
		Language:        "en",
		StartTs:         1748772000,
		DurationSeconds: 540,
		Transcript:      "Agent: hello\nCustomer: hi",
	}
}

func TestUpsertCall(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	call := testCall("c-1")
	call.SentimentScore = ptr(0.4)
	call.AgentTalkRatio = ptr(0.6)
	call.Embedding = []float32{1, 0, 0, 0}

	_, err := db.UpsertCall(ctx, call)
	require.NoError(t, err)

	got, err := db.GetCall(ctx, "c-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "a-1", got.AgentID)
	assert.Equal(t, "Agent: hello\nCustomer: hi", got.Transcript)
	require.NotNil(t, got.SentimentScore)
	assert.InDelta(t, 0.4, *got.SentimentScore, 1e-9)
	assert.Equal(t, []float32{1, 0, 0, 0}, got.Embedding)
	assert.NotZero(t, got.CreatedTs)
}

func TestUpsertCall_Replaces(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	call := testCall("c-1")
	_, err := db.UpsertCall(ctx, call)
	require.NoError(t, err)

	call.AgentID = "a-2"
	call.SentimentScore = ptr(-0.3)
	_, err = db.UpsertCall(ctx, call)
	require.NoError(t, err)

	list, err := db.ListCalls(ctx, &store.FindCall{})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "a-2", list[0].AgentID)
	require.NotNil(t, list[0].SentimentScore)
	assert.InDelta(t, -0.3, *list[0].SentimentScore, 1e-9)
}

func TestGetCall_Missing(t *testing.T) {
	db := newTestDB(t)
	got, err := db.GetCall(context.Background(), "missing")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestListCalls_Filters(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	for _, c := range []*store.Call{
		func() *store.Call { c := testCall("c-1"); c.SentimentScore = ptr(0.8); return c }(),
		func() *store.Call { c := testCall("c-2"); c.AgentID = "a-2"; c.SentimentScore = ptr(-0.5); return c }(),
		func() *store.Call { c := testCall("c-3"); c.SentimentScore = ptr(0.1); return c }(),
	} {
		_, err := db.UpsertCall(ctx, c)
		require.NoError(t, err)
	}

	byAgent, err := db.ListCalls(ctx, &store.FindCall{AgentID: ptr("a-2")})
	require.NoError(t, err)
	require.Len(t, byAgent, 1)
	assert.Equal(t, "c-2", byAgent[0].ID)

	positive, err := db.ListCalls(ctx, &store.FindCall{MinSentiment: ptr(0.0)})
	require.NoError(t, err)
	assert.Len(t, positive, 2)

	limited, err := db.ListCalls(ctx, &store.FindCall{Limit: ptr(2)})
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestUpdateCallInsights(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	_, err := db.UpsertCall(ctx, testCall("c-1"))
	require.NoError(t, err)

	require.NoError(t, db.UpdateCallInsights(ctx, &store.UpdateCallInsights{
		ID:             "c-1",
		SentimentScore: ptr(0.7),
		AgentTalkRatio: ptr(0.3),
		Degraded:       ptr(false),
		Embedding:      []float32{0, 1, 0, 0},
	}))

	got, err := db.GetCall(ctx, "c-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	require.NotNil(t, got.SentimentScore)
	assert.InDelta(t, 0.7, *got.SentimentScore, 1e-9)
	assert.Equal(t, []float32{0, 1, 0, 0}, got.Embedding)
}

func TestDeleteCall(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	_, err := db.UpsertCall(ctx, testCall("c-1"))
	require.NoError(t, err)

	require.NoError(t, db.DeleteCall(ctx, "c-1"))
	got, err := db.GetCall(ctx, "c-1")
	require.NoError(t, err)
	assert.Nil(t, got)

	// Unknown ids are a no-op.
	require.NoError(t, db.DeleteCall(ctx, "missing"))
}

func TestLoadAllEmbeddings(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	withVec := testCall("c-1")
	withVec.Embedding = []float32{1, 2, 3, 4}
	_, err := db.UpsertCall(ctx, withVec)
	require.NoError(t, err)

	_, err = db.UpsertCall(ctx, testCall("c-2"))
	require.NoError(t, err)

	embeddings, err := db.LoadAllEmbeddings(ctx)
	require.NoError(t, err)
	require.Len(t, embeddings, 1)
	assert.Equal(t, "c-1", embeddings[0].CallID)
	assert.Equal(t, []float32{1, 2, 3, 4}, embeddings[0].Embedding)
}

func TestVectorSearch_Unsupported(t *testing.T) {
	db := newTestDB(t)
	_, err := db.VectorSearch(context.Background(), &store.VectorSearchOptions{
		Vector: []float32{1, 0, 0, 0},
	})
	assert.Error(t, err)
}
