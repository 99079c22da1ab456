package ai

import (
	"context"
	"errors"
	"fmt"

	"github.com/sashabaranov/go-openai"

	inserr "github.com/voxmetrics/callsight/internal/errors"
)

// EmbeddingService is the vector embedding service interface.
type EmbeddingService interface {
	// Embed generates a vector for a single text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates vectors for multiple texts.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the vector dimension.
	Dimensions() int
}

type embeddingService struct {
	client     *openai.Client
	model      string
	dimensions int
}

// NewEmbeddingService creates a new EmbeddingService.
func NewEmbeddingService(cfg *EmbeddingConfig) (EmbeddingService, error) {
	if cfg.Dimensions <= 0 {
		return nil, errors.New("embedding dimensions must be positive")
	}
	return &embeddingService{
		client:     newClient(cfg.APIKey, cfg.BaseURL),
		model:      cfg.Model,
		dimensions: cfg.Dimensions,
	}, nil
}

func (s *embeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := s.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vectors) == 0 {
		return nil, errors.New("empty embedding result")
	}
	return vectors[0], nil
}

func (s *embeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, errors.New("no texts provided for embedding")
	}

	req := openai.EmbeddingRequest{
		Input:      texts,
		Model:      openai.EmbeddingModel(s.model),
		Dimensions: s.dimensions,
	}

	var resp openai.EmbeddingResponse
	err := withRetry(ctx, defaultMaxRetries, func() error {
		var reqErr error
		resp, reqErr = s.client.CreateEmbeddings(ctx, req)
		return reqErr
	})
	if err != nil {
		return nil, fmt.Errorf("create embeddings failed: %w", err)
	}

	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("embedding response count %d does not match input count %d", len(resp.Data), len(texts))
	}

	vectors := make([][]float32, len(resp.Data))
	for i, data := range resp.Data {
		if len(data.Embedding) != s.dimensions {
			return nil, inserr.DimensionMismatch(s.dimensions, len(data.Embedding))
		}
		vectors[i] = data.Embedding
	}

	return vectors, nil
}

func (s *embeddingService) Dimensions() int {
	return s.dimensions
}

// disabledEmbedding is the null embedding service used when AI is disabled.
// Every call reports the model as unavailable so callers take their
// degraded path.
type disabledEmbedding struct {
	dimensions int
}

// NewDisabledEmbeddingService returns an EmbeddingService that always
// reports unavailability while still advertising a fixed dimension.
func NewDisabledEmbeddingService(dimensions int) EmbeddingService {
	return &disabledEmbedding{dimensions: dimensions}
}

func (s *disabledEmbedding) Embed(_ context.Context, _ string) ([]float32, error) {
	return nil, inserr.ModelUnavailable("embedding model is not configured")
}

func (s *disabledEmbedding) EmbedBatch(_ context.Context, _ []string) ([][]float32, error) {
	return nil, inserr.ModelUnavailable("embedding model is not configured")
}

func (s *disabledEmbedding) Dimensions() int {
	return s.dimensions
}
