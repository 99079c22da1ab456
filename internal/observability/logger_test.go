package observability

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestContext_Fields(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	reqCtx := NewRequestContext(logger, "ingest", "c-1")
	require.NotEmpty(t, reqCtx.RequestID)

	reqCtx.Info("call processed", slog.Bool(LogFieldDegraded, true))

	out := buf.String()
	assert.Contains(t, out, reqCtx.RequestID)
	assert.Contains(t, out, `"call_id":"c-1"`)
	assert.Contains(t, out, `"component":"ingest"`)
	assert.Contains(t, out, `"degraded":true`)
}

func TestRequestContext_UniqueIDs(t *testing.T) {
	logger := slog.Default()
	first := NewRequestContext(logger, "ingest", "c-1")
	second := NewRequestContext(logger, "ingest", "c-1")
	assert.NotEqual(t, first.RequestID, second.RequestID)
}

func TestContextRoundTrip(t *testing.T) {
	reqCtx := NewRequestContext(slog.Default(), "recommend", "c-2")
	ctx := WithRequestContext(context.Background(), reqCtx)

	got, ok := FromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, reqCtx, got)

	_, ok = FromContext(context.Background())
	assert.False(t, ok)
}
