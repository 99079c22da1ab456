package insight

import (
	"context"
	"log/slog"
	"strings"

	"github.com/voxmetrics/callsight/plugin/ai"
)

// Embedder turns transcript text into a fixed-dimension embedding. Long
// transcripts are chunked and average-pooled with a deterministic policy,
// so the same transcript always yields the same vector.
type Embedder struct {
	service ai.EmbeddingService
	logger  *slog.Logger
}

// NewEmbedder creates an embedder backed by the given embedding service.
func NewEmbedder(service ai.EmbeddingService, logger *slog.Logger) *Embedder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Embedder{service: service, logger: logger}
}

// Dimensions returns the fixed output dimension D.
func (e *Embedder) Dimensions() int {
	return e.service.Dimensions()
}

// Embed generates the embedding for a transcript text. It always returns
// a vector of exactly D entries: when the model is unavailable, returns a
// wrong-length vector, or the text is empty, the result is the zero
// vector with degraded=true so downstream indexing never special-cases a
// missing embedding.
func (e *Embedder) Embed(ctx context.Context, text string) (Embedding, bool) {
	dims := e.service.Dimensions()
	if strings.TrimSpace(text) == "" {
		return make(Embedding, dims), true
	}

	chunks := chunkTranscript(text)
	vectors, err := e.service.EmbedBatch(ctx, chunks)
	if err != nil {
		e.logger.Warn("embedding model unavailable, using zero vector",
			"chunks", len(chunks), "error", err)
		return make(Embedding, dims), true
	}

	pooled := averageVectors(vectors)
	if len(pooled) != dims {
		e.logger.Warn("embedding model returned unexpected dimension, using zero vector",
			"want", dims, "got", len(pooled))
		return make(Embedding, dims), true
	}

	e.logger.Debug("transcript embedded",
		"chunks", len(chunks), "dimension", dims)
	return pooled, false
}

// averageVectors computes the element-wise average of multiple vectors.
func averageVectors(vectors [][]float32) []float32 {
	if len(vectors) == 0 {
		return nil
	}
	n := len(vectors[0])
	if n == 0 {
		return nil
	}

	result := make([]float32, n)
	for _, vec := range vectors {
		if len(vec) != n {
			return nil
		}
		for i := 0; i < n; i++ {
			result[i] += vec[i]
		}
	}

	count := float32(len(vectors))
	for i := 0; i < n; i++ {
		result[i] /= count
	}
	return result
}
