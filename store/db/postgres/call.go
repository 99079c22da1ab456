package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/pgvector/pgvector-go"
	"github.com/pkg/errors"

	"github.com/voxmetrics/callsight/store"
)

// placeholder returns the numbered PostgreSQL placeholder $n.
func placeholder(n int) string {
	return fmt.Sprintf("$%d", n)
}

// nullableVector keeps a nil embedding as SQL NULL instead of an empty
// vector literal, which pgvector would reject for a fixed-dimension column.
func nullableVector(vec []float32) any {
	if vec == nil {
		return nil
	}
	return pgvector.NewVector(vec)
}

// UpsertCall inserts or replaces a call record.
func (d *DB) UpsertCall(ctx context.Context, call *store.Call) (*store.Call, error) {
	now := time.Now().Unix()
	if call.CreatedTs == 0 {
		call.CreatedTs = now
	}
	call.UpdatedTs = now

	stmt := `
		INSERT INTO call (
			id, agent_id, customer_id, language, start_ts, duration_seconds,
			transcript, sentiment_score, agent_talk_ratio, degraded, embedding,
			created_ts, updated_ts
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (id)
		DO UPDATE SET
			agent_id = EXCLUDED.agent_id,
			customer_id = EXCLUDED.customer_id,
			language = EXCLUDED.language,
			start_ts = EXCLUDED.start_ts,
			duration_seconds = EXCLUDED.duration_seconds,
			transcript = EXCLUDED.transcript,
			sentiment_score = EXCLUDED.sentiment_score,
			agent_talk_ratio = EXCLUDED.agent_talk_ratio,
			degraded = EXCLUDED.degraded,
			embedding = EXCLUDED.embedding,
			updated_ts = EXCLUDED.updated_ts
	`
	if _, err := d.db.ExecContext(ctx, stmt,
		call.ID,
		call.AgentID,
		call.CustomerID,
		call.Language,
		call.StartTs,
		call.DurationSeconds,
		call.Transcript,
		call.SentimentScore,
		call.AgentTalkRatio,
		call.Degraded,
		nullableVector(call.Embedding),
		call.CreatedTs,
		call.UpdatedTs,
	); err != nil {
		return nil, errors.Wrap(err, "failed to upsert call")
	}

	return call, nil
}

// GetCall gets a call by id. Returns (nil, nil) when absent.
func (d *DB) GetCall(ctx context.Context, id string) (*store.Call, error) {
	list, err := d.ListCalls(ctx, &store.FindCall{ID: &id})
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}
	return list[0], nil
}

// ListCalls lists calls matching the find condition.
func (d *DB) ListCalls(ctx context.Context, find *store.FindCall) ([]*store.Call, error) {
	where, args := []string{"1 = 1"}, []any{}

	if find.ID != nil {
		where, args = append(where, "id = "+placeholder(len(args)+1)), append(args, *find.ID)
	}
	if find.AgentID != nil {
		where, args = append(where, "agent_id = "+placeholder(len(args)+1)), append(args, *find.AgentID)
	}
	if find.MinSentiment != nil {
		where, args = append(where, "sentiment_score >= "+placeholder(len(args)+1)), append(args, *find.MinSentiment)
	}
	if find.MaxSentiment != nil {
		where, args = append(where, "sentiment_score <= "+placeholder(len(args)+1)), append(args, *find.MaxSentiment)
	}

	query := `
		SELECT
			id, agent_id, customer_id, language, start_ts, duration_seconds,
			transcript, sentiment_score, agent_talk_ratio, degraded,
			embedding::text, created_ts, updated_ts
		FROM call
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY start_ts DESC, id ASC
	`
	if find.Limit != nil {
		query += " LIMIT " + placeholder(len(args)+1)
		args = append(args, *find.Limit)
		if find.Offset != nil {
			query += " OFFSET " + placeholder(len(args)+1)
			args = append(args, *find.Offset)
		}
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list calls")
	}
	defer rows.Close()

	list := []*store.Call{}
	for rows.Next() {
		var call store.Call
		var embedding sql.NullString
		if err := rows.Scan(
			&call.ID,
			&call.AgentID,
			&call.CustomerID,
			&call.Language,
			&call.StartTs,
			&call.DurationSeconds,
			&call.Transcript,
			&call.SentimentScore,
			&call.AgentTalkRatio,
			&call.Degraded,
			&embedding,
			&call.CreatedTs,
			&call.UpdatedTs,
		); err != nil {
			return nil, errors.Wrap(err, "failed to scan call")
		}

		if embedding.Valid && embedding.String != "" {
			var vec pgvector.Vector
			if err := vec.Parse(embedding.String); err != nil {
				return nil, errors.Wrapf(err, "corrupt embedding for call %s", call.ID)
			}
			call.Embedding = vec.Slice()
		}
		list = append(list, &call)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return list, nil
}

// UpdateCallInsights updates the derived insight columns of a call.
func (d *DB) UpdateCallInsights(ctx context.Context, update *store.UpdateCallInsights) error {
	set, args := []string{}, []any{}

	set, args = append(set, "updated_ts = "+placeholder(len(args)+1)), append(args, time.Now().Unix())
	if update.SentimentScore != nil {
		set, args = append(set, "sentiment_score = "+placeholder(len(args)+1)), append(args, *update.SentimentScore)
	}
	if update.AgentTalkRatio != nil {
		set, args = append(set, "agent_talk_ratio = "+placeholder(len(args)+1)), append(args, *update.AgentTalkRatio)
	}
	if update.Degraded != nil {
		set, args = append(set, "degraded = "+placeholder(len(args)+1)), append(args, *update.Degraded)
	}
	if update.Embedding != nil {
		set, args = append(set, "embedding = "+placeholder(len(args)+1)), append(args, pgvector.NewVector(update.Embedding))
	}
	args = append(args, update.ID)

	stmt := "UPDATE call SET " + strings.Join(set, ", ") + " WHERE id = " + placeholder(len(args))
	if _, err := d.db.ExecContext(ctx, stmt, args...); err != nil {
		return errors.Wrap(err, "failed to update call insights")
	}
	return nil
}

// DeleteCall deletes a call record. Deleting an unknown id is a no-op.
func (d *DB) DeleteCall(ctx context.Context, id string) error {
	if _, err := d.db.ExecContext(ctx, "DELETE FROM call WHERE id = $1", id); err != nil {
		return errors.Wrap(err, "failed to delete call")
	}
	return nil
}

// LoadAllEmbeddings loads every persisted (call id, embedding) pair.
func (d *DB) LoadAllEmbeddings(ctx context.Context) ([]*store.CallEmbedding, error) {
	rows, err := d.db.QueryContext(ctx,
		"SELECT id, embedding FROM call WHERE embedding IS NOT NULL ORDER BY id ASC")
	if err != nil {
		return nil, errors.Wrap(err, "failed to load embeddings")
	}
	defer rows.Close()

	list := []*store.CallEmbedding{}
	for rows.Next() {
		var ce store.CallEmbedding
		var vec pgvector.Vector
		if err := rows.Scan(&ce.CallID, &vec); err != nil {
			return nil, errors.Wrap(err, "failed to scan embedding")
		}
		ce.Embedding = vec.Slice()
		list = append(list, &ce)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return list, nil
}

// VectorSearch performs server-side cosine similarity search using
// pgvector. The <=> operator computes cosine distance
// (1 - cosine_similarity), so ordering by distance ascending returns the
// most similar calls first.
func (d *DB) VectorSearch(ctx context.Context, opts *store.VectorSearchOptions) ([]*store.CallWithScore, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 10
	}

	query := `
		SELECT
			id, agent_id, customer_id, language, start_ts, duration_seconds,
			transcript, sentiment_score, agent_talk_ratio, degraded,
			embedding::text, created_ts, updated_ts,
			1 - (embedding <=> $1) AS score
		FROM call
		WHERE embedding IS NOT NULL
		ORDER BY embedding <=> $2, id ASC
		LIMIT $3
	`

	vec := pgvector.NewVector(opts.Vector)
	rows, err := d.db.QueryContext(ctx, query, vec, vec, limit)
	if err != nil {
		return nil, errors.Wrap(err, "failed to vector search")
	}
	defer rows.Close()

	results := []*store.CallWithScore{}
	for rows.Next() {
		var result store.CallWithScore
		var call store.Call
		var embedding sql.NullString
		if err := rows.Scan(
			&call.ID,
			&call.AgentID,
			&call.CustomerID,
			&call.Language,
			&call.StartTs,
			&call.DurationSeconds,
			&call.Transcript,
			&call.SentimentScore,
			&call.AgentTalkRatio,
			&call.Degraded,
			&embedding,
			&call.CreatedTs,
			&call.UpdatedTs,
			&result.Score,
		); err != nil {
			return nil, errors.Wrap(err, "failed to scan vector search result")
		}

		if embedding.Valid && embedding.String != "" {
			var v pgvector.Vector
			if err := v.Parse(embedding.String); err != nil {
				return nil, errors.Wrapf(err, "corrupt embedding for call %s", call.ID)
			}
			call.Embedding = v.Slice()
		}
		result.Call = &call
		results = append(results, &result)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return results, nil
}
