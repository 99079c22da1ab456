package insight

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	inserr "github.com/voxmetrics/callsight/internal/errors"
)

// fakeEmbedding returns a deterministic vector per text.
type fakeEmbedding struct {
	dimensions int
	err        error
	fixed      [][]float32
	calls      int
}

func (f *fakeEmbedding) Embed(ctx context.Context, text string) ([]float32, error) {
	vecs, err := f.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

func (f *fakeEmbedding) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if f.fixed != nil {
		return f.fixed, nil
	}
	vecs := make([][]float32, len(texts))
	for i, text := range texts {
		vec := make([]float32, f.dimensions)
		for j := range vec {
			vec[j] = float32(len(text)%7) + float32(j)
		}
		vecs[i] = vec
	}
	return vecs, nil
}

func (f *fakeEmbedding) Dimensions() int {
	return f.dimensions
}

func TestEmbedder_Embed(t *testing.T) {
	ctx := context.Background()
	embedder := NewEmbedder(&fakeEmbedding{dimensions: 4}, nil)

	vec, degraded := embedder.Embed(ctx, "Agent: hello\nCustomer: hi")
	assert.False(t, degraded)
	assert.Len(t, vec, 4)
}

func TestEmbedder_Deterministic(t *testing.T) {
	ctx := context.Background()
	text := strings.Repeat("Agent: the quarterly numbers look strong this year.\n", 80)

	embedder := NewEmbedder(&fakeEmbedding{dimensions: 8}, nil)
	first, degraded1 := embedder.Embed(ctx, text)
	second, degraded2 := embedder.Embed(ctx, text)

	assert.False(t, degraded1)
	assert.False(t, degraded2)
	assert.Equal(t, first, second)
}

func TestEmbedder_EmptyText(t *testing.T) {
	ctx := context.Background()
	service := &fakeEmbedding{dimensions: 4}
	embedder := NewEmbedder(service, nil)

	vec, degraded := embedder.Embed(ctx, "   \n  ")
	assert.True(t, degraded)
	assert.Equal(t, make([]float32, 4), vec)
	assert.Zero(t, service.calls)
}

func TestEmbedder_ModelUnavailable(t *testing.T) {
	ctx := context.Background()
	service := &fakeEmbedding{dimensions: 4, err: inserr.ModelUnavailable("down")}
	embedder := NewEmbedder(service, nil)

	vec, degraded := embedder.Embed(ctx, "Customer: hello")
	assert.True(t, degraded)
	assert.Equal(t, make([]float32, 4), vec)
}

func TestEmbedder_WrongDimension(t *testing.T) {
	ctx := context.Background()
	service := &fakeEmbedding{dimensions: 4, fixed: [][]float32{{1, 2}}}
	embedder := NewEmbedder(service, nil)

	vec, degraded := embedder.Embed(ctx, "Customer: hello")
	assert.True(t, degraded)
	assert.Len(t, vec, 4)
}

func TestAverageVectors(t *testing.T) {
	pooled := averageVectors([][]float32{
		{1, 2, 3},
		{3, 4, 5},
	})
	assert.Equal(t, []float32{2, 3, 4}, pooled)

	assert.Nil(t, averageVectors(nil))
	assert.Nil(t, averageVectors([][]float32{{1, 2}, {1}}))
	assert.Equal(t, []float32{7}, averageVectors([][]float32{{7}}))
}

func TestChunkTranscript(t *testing.T) {
	t.Run("short text stays whole", func(t *testing.T) {
		chunks := chunkTranscript("Agent: hello")
		require.Len(t, chunks, 1)
		assert.Equal(t, "Agent: hello", chunks[0])
	})

	t.Run("long text splits on line boundaries", func(t *testing.T) {
		var b strings.Builder
		for i := 0; i < 100; i++ {
			b.WriteString("Customer: I want to talk about the renewal pricing again.\n")
		}
		chunks := chunkTranscript(b.String())
		require.Greater(t, len(chunks), 1)
		for _, chunk := range chunks {
			assert.LessOrEqual(t, len(chunk), chunkSize)
		}
	})

	t.Run("overlong single line is force-split", func(t *testing.T) {
		line := strings.Repeat("word ", 800)
		chunks := chunkTranscript(line)
		require.Greater(t, len(chunks), 1)
		for _, chunk := range chunks {
			assert.LessOrEqual(t, len(chunk), chunkSize)
		}
	})

	t.Run("deterministic", func(t *testing.T) {
		text := strings.Repeat("Agent: some call content goes here.\n", 120)
		assert.Equal(t, chunkTranscript(text), chunkTranscript(text))
	})
}

func TestOverlapTail(t *testing.T) {
	assert.Equal(t, "short", overlapTail("short", 150))
	assert.Equal(t, "line two", overlapTail(strings.Repeat("x", 200)+"\nline two", 20))
}
