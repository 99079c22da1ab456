package main

import (
	"context"
	"log/slog"
	"time"

	"github.com/voxmetrics/callsight/internal/profile"
	"github.com/voxmetrics/callsight/plugin/ai"
	"github.com/voxmetrics/callsight/server/insight"
	"github.com/voxmetrics/callsight/server/insight/vector"
	"github.com/voxmetrics/callsight/server/runner/ingest"
	"github.com/voxmetrics/callsight/server/service/analytics"
	"github.com/voxmetrics/callsight/store"
	"github.com/voxmetrics/callsight/store/db"
)

// engine wires the full insight stack for one command invocation.
type engine struct {
	profile     *profile.Profile
	store       *store.Store
	extractor   *insight.Extractor
	embedder    *insight.Embedder
	index       *vector.MemoryIndex
	recommender *insight.Recommender
	analytics   *analytics.Service
	runner      *ingest.Runner
}

// newEngine loads the profile, opens the store, builds the AI services
// (falling back to disabled implementations when AI is off), and warms
// the similarity index from persisted embeddings.
func newEngine(ctx context.Context, topK int) (*engine, error) {
	p, err := profile.New(version)
	if err != nil {
		return nil, err
	}

	driver, err := db.NewDBDriver(p)
	if err != nil {
		return nil, err
	}
	s := store.New(driver, p)

	cfg := ai.NewConfigFromProfile(p)
	if err := cfg.Validate(); err != nil {
		s.Close()
		return nil, err
	}

	var embeddingService ai.EmbeddingService
	var sentimentService ai.SentimentService
	coachService := ai.NewNoOpCoach()
	if cfg.Enabled {
		if embeddingService, err = ai.NewEmbeddingService(&cfg.Embedding); err != nil {
			s.Close()
			return nil, err
		}
		if sentimentService, err = ai.NewSentimentService(&cfg.Sentiment); err != nil {
			s.Close()
			return nil, err
		}
		if cfg.Coach.Enabled {
			if coachService, err = ai.NewCoachService(&cfg.Coach); err != nil {
				s.Close()
				return nil, err
			}
		}
	} else {
		slog.Warn("AI is disabled, insights will be degraded")
		embeddingService = ai.NewDisabledEmbeddingService(p.AIEmbeddingDim)
		sentimentService = ai.NewDisabledSentimentService()
	}

	logger := slog.Default()
	extractor := insight.NewExtractor(sentimentService, logger)
	embedder := insight.NewEmbedder(embeddingService, logger)

	index := vector.NewMemoryIndex(p.AIEmbeddingDim)
	if err := ingest.WarmIndex(ctx, s, index, logger); err != nil {
		s.Close()
		return nil, err
	}

	e := &engine{
		profile:     p,
		store:       s,
		extractor:   extractor,
		embedder:    embedder,
		index:       index,
		recommender: insight.NewRecommender(index, coachService, &storeCallSource{store: s}, topK, logger),
		analytics:   analytics.NewService(s, time.Minute, logger),
		runner:      ingest.NewRunner(s, extractor, embedder, index, logger),
	}
	return e, nil
}

func (e *engine) close() {
	if err := e.store.Close(); err != nil {
		slog.Warn("failed to close store", "error", err)
	}
}

// storeCallSource adapts the store's call records to the recommender's
// call source.
type storeCallSource struct {
	store *store.Store
}

func (s *storeCallSource) GetCall(ctx context.Context, id string) (*insight.Call, error) {
	record, err := s.store.GetCall(ctx, id)
	if err != nil || record == nil {
		return nil, err
	}
	return toInsightCall(record), nil
}

func toInsightCall(record *store.Call) *insight.Call {
	call := &insight.Call{
		ID:            record.ID,
		AgentID:       record.AgentID,
		CustomerID:    record.CustomerID,
		StartTime:     time.Unix(record.StartTs, 0),
		Duration:      time.Duration(record.DurationSeconds) * time.Second,
		RawTranscript: record.Transcript,
		Transcript:    insight.ParseTranscript(record.Transcript),
		Embedding:     record.Embedding,
	}
	call.Features.Degraded = record.Degraded
	if record.SentimentScore != nil {
		call.Features.SentimentScore = *record.SentimentScore
	}
	if record.AgentTalkRatio != nil {
		call.Features.AgentTalkRatio = *record.AgentTalkRatio
	} else {
		call.Features.AgentTalkRatio = 0.5
	}
	return call
}
