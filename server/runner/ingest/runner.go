// Package ingest runs the batch call-insight pipeline: parse each raw
// transcript, score its features, embed it, persist the record, and feed
// the similarity index. One bad call never aborts a batch.
package ingest

import (
	"context"
	"log/slog"
	"time"

	"github.com/lithammer/shortuuid/v4"
	"golang.org/x/sync/errgroup"

	inserr "github.com/voxmetrics/callsight/internal/errors"
	"github.com/voxmetrics/callsight/internal/observability"
	"github.com/voxmetrics/callsight/server/insight"
	"github.com/voxmetrics/callsight/server/insight/vector"
	"github.com/voxmetrics/callsight/store"
)

const defaultConcurrency = 4

// RawCall is one unprocessed call handed to the runner.
type RawCall struct {
	ID              string    `json:"call_id"`
	AgentID         string    `json:"agent_id"`
	CustomerID      string    `json:"customer_id"`
	Language        string    `json:"language"`
	StartTime       time.Time `json:"start_time"`
	DurationSeconds int       `json:"duration_seconds"`
	Transcript      string    `json:"transcript"`
}

// Outcome reports the result of processing one call.
type Outcome struct {
	CallID   string
	Degraded bool
	Err      error
}

// CallStore is the persistence surface the runner needs.
type CallStore interface {
	UpsertCall(ctx context.Context, call *store.Call) (*store.Call, error)
}

// Runner processes batches of raw calls with bounded parallelism.
type Runner struct {
	store       CallStore
	extractor   *insight.Extractor
	embedder    *insight.Embedder
	index       vector.Index
	concurrency int
	logger      *slog.Logger
}

// NewRunner creates an ingest runner.
func NewRunner(store CallStore, extractor *insight.Extractor, embedder *insight.Embedder, index vector.Index, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		store:       store,
		extractor:   extractor,
		embedder:    embedder,
		index:       index,
		concurrency: defaultConcurrency,
		logger:      logger,
	}
}

// SetConcurrency bounds the number of calls processed in parallel.
func (r *Runner) SetConcurrency(n int) {
	if n > 0 {
		r.concurrency = n
	}
}

// Run processes every raw call and returns one outcome per input, in
// input order. Per-call failures are recorded in the outcome; only
// context cancellation aborts the batch.
func (r *Runner) Run(ctx context.Context, raws []*RawCall) ([]Outcome, error) {
	outcomes := make([]Outcome, len(raws))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)
	for i, raw := range raws {
		i, raw := i, raw
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			outcomes[i] = r.processOne(gctx, raw)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return outcomes, err
	}

	processed, degraded, failed := 0, 0, 0
	for _, o := range outcomes {
		switch {
		case o.Err != nil:
			failed++
		case o.Degraded:
			degraded++
		default:
			processed++
		}
	}
	r.logger.Info("ingest batch finished",
		"total", len(raws), "ok", processed, "degraded", degraded, "failed", failed)
	return outcomes, nil
}

func (r *Runner) processOne(ctx context.Context, raw *RawCall) Outcome {
	id := raw.ID
	if id == "" {
		id = shortuuid.New()
	}
	out := Outcome{CallID: id}

	if raw.Transcript == "" {
		out.Err = inserr.InvalidArgument("transcript is empty")
		return out
	}

	reqCtx := observability.NewRequestContext(r.logger, "ingest", id)
	ctx = observability.WithRequestContext(ctx, reqCtx)

	transcript := insight.ParseTranscript(raw.Transcript)
	features := r.extractor.Extract(ctx, transcript)
	embedding, embedDegraded := r.embedder.Embed(ctx, transcript.Text())
	out.Degraded = features.Degraded || embedDegraded

	record := &store.Call{
		ID:              id,
		AgentID:         raw.AgentID,
		CustomerID:      raw.CustomerID,
		Language:        raw.Language,
		StartTs:         raw.StartTime.Unix(),
		DurationSeconds: raw.DurationSeconds,
		Transcript:      raw.Transcript,
		SentimentScore:  &features.SentimentScore,
		AgentTalkRatio:  &features.AgentTalkRatio,
		Degraded:        out.Degraded,
	}
	if !embedDegraded {
		record.Embedding = embedding
	}
	if record.Language == "" {
		record.Language = "en"
	}

	if _, err := r.store.UpsertCall(ctx, record); err != nil {
		out.Err = inserr.Wrap(err, inserr.ErrCodeExternalServiceFailure, "failed to persist call")
		return out
	}

	if !embedDegraded {
		if err := r.index.Upsert(id, embedding); err != nil {
			out.Err = err
			return out
		}
	}

	reqCtx.Debug("call processed",
		slog.Float64("sentiment", features.SentimentScore),
		slog.Float64("talk_ratio", features.AgentTalkRatio),
		slog.Bool(observability.LogFieldDegraded, out.Degraded),
		slog.Int64(observability.LogFieldDuration, reqCtx.DurationMs()))
	return out
}

// WarmIndex loads every persisted embedding into the similarity index.
// Vectors whose dimension no longer matches the index are skipped with a
// warning rather than failing startup.
func WarmIndex(ctx context.Context, s interface {
	LoadAllEmbeddings(ctx context.Context) ([]*store.CallEmbedding, error)
}, index vector.Index, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}

	embeddings, err := s.LoadAllEmbeddings(ctx)
	if err != nil {
		return err
	}

	skipped := 0
	for _, ce := range embeddings {
		if err := index.Upsert(ce.CallID, ce.Embedding); err != nil {
			logger.Warn("skipping stored embedding", "call_id", ce.CallID, "error", err)
			skipped++
		}
	}
	logger.Info("similarity index warmed", "loaded", index.Len(), "skipped", skipped)
	return nil
}
