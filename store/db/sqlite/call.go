package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/voxmetrics/callsight/store"
)

// UpsertCall inserts or replaces a call record.
func (d *DB) UpsertCall(ctx context.Context, call *store.Call) (*store.Call, error) {
	now := time.Now().Unix()
	if call.CreatedTs == 0 {
		call.CreatedTs = now
	}
	call.UpdatedTs = now

	embedding, err := marshalEmbedding(call.Embedding)
	if err != nil {
		return nil, err
	}

	stmt := `
		INSERT INTO call (
			id, agent_id, customer_id, language, start_ts, duration_seconds,
			transcript, sentiment_score, agent_talk_ratio, degraded, embedding,
			created_ts, updated_ts
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id)
		DO UPDATE SET
			agent_id = excluded.agent_id,
			customer_id = excluded.customer_id,
			language = excluded.language,
			start_ts = excluded.start_ts,
			duration_seconds = excluded.duration_seconds,
			transcript = excluded.transcript,
			sentiment_score = excluded.sentiment_score,
			agent_talk_ratio = excluded.agent_talk_ratio,
			degraded = excluded.degraded,
			embedding = excluded.embedding,
			updated_ts = excluded.updated_ts
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
		boolToInt(call.Degraded),
		embedding,
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
		where, args = append(where, "id = ?"), append(args, *find.ID)
	}
	if find.AgentID != nil {
		where, args = append(where, "agent_id = ?"), append(args, *find.AgentID)
	}
	if find.MinSentiment != nil {
		where, args = append(where, "sentiment_score >= ?"), append(args, *find.MinSentiment)
	}
	if find.MaxSentiment != nil {
		where, args = append(where, "sentiment_score <= ?"), append(args, *find.MaxSentiment)
	}

	query := `
		SELECT
			id, agent_id, customer_id, language, start_ts, duration_seconds,
			transcript, sentiment_score, agent_talk_ratio, degraded, embedding,
			created_ts, updated_ts
		FROM call
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY start_ts DESC, id ASC
	`
	if find.Limit != nil {
		query += " LIMIT ?"
		args = append(args, *find.Limit)
		if find.Offset != nil {
			query += " OFFSET ?"
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
		call, err := scanCall(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, call)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return list, nil
}

// UpdateCallInsights updates the derived insight columns of a call.
func (d *DB) UpdateCallInsights(ctx context.Context, update *store.UpdateCallInsights) error {
	set, args := []string{"updated_ts = ?"}, []any{time.Now().Unix()}

	if update.SentimentScore != nil {
		set, args = append(set, "sentiment_score = ?"), append(args, *update.SentimentScore)
	}
	if update.AgentTalkRatio != nil {
		set, args = append(set, "agent_talk_ratio = ?"), append(args, *update.AgentTalkRatio)
	}
	if update.Degraded != nil {
		set, args = append(set, "degraded = ?"), append(args, boolToInt(*update.Degraded))
	}
	if update.Embedding != nil {
		embedding, err := marshalEmbedding(update.Embedding)
		if err != nil {
			return err
		}
		set, args = append(set, "embedding = ?"), append(args, embedding)
	}
	args = append(args, update.ID)

	stmt := "UPDATE call SET " + strings.Join(set, ", ") + " WHERE id = ?"
	if _, err := d.db.ExecContext(ctx, stmt, args...); err != nil {
		return errors.Wrap(err, "failed to update call insights")
	}
	return nil
}

// DeleteCall deletes a call record. Deleting an unknown id is a no-op.
func (d *DB) DeleteCall(ctx context.Context, id string) error {
	if _, err := d.db.ExecContext(ctx, "DELETE FROM call WHERE id = ?", id); err != nil {
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
		var raw sql.NullString
		if err := rows.Scan(&ce.CallID, &raw); err != nil {
			return nil, errors.Wrap(err, "failed to scan embedding")
		}
		if !raw.Valid {
			continue
		}
		if err := json.Unmarshal([]byte(raw.String), &ce.Embedding); err != nil {
			return nil, errors.Wrapf(err, "corrupt embedding for call %s", ce.CallID)
		}
		list = append(list, &ce)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return list, nil
}

// VectorSearch is NOT supported for SQLite. Server-side similarity
// requires PostgreSQL with the pgvector extension; with SQLite the
// in-memory index handles similarity.
func (d *DB) VectorSearch(_ context.Context, _ *store.VectorSearchOptions) ([]*store.CallWithScore, error) {
	return nil, errors.New("vector search requires PostgreSQL with pgvector extension")
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCall(row rowScanner) (*store.Call, error) {
	var call store.Call
	var degraded int
	var embedding sql.NullString

	if err := row.Scan(
		&call.ID,
		&call.AgentID,
		&call.CustomerID,
		&call.Language,
		&call.StartTs,
		&call.DurationSeconds,
		&call.Transcript,
		&call.SentimentScore,
		&call.AgentTalkRatio,
		&degraded,
		&embedding,
		&call.CreatedTs,
		&call.UpdatedTs,
	); err != nil {
		return nil, errors.Wrap(err, "failed to scan call")
	}

	call.Degraded = degraded != 0
	if embedding.Valid && embedding.String != "" {
		if err := json.Unmarshal([]byte(embedding.String), &call.Embedding); err != nil {
			return nil, errors.Wrapf(err, "corrupt embedding for call %s", call.ID)
		}
	}
	return &call, nil
}

// marshalEmbedding serializes a vector as JSON text; nil stays NULL.
func marshalEmbedding(vec []float32) (any, error) {
	if vec == nil {
		return nil, nil
	}
	data, err := json.Marshal(vec)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal embedding")
	}
	return string(data), nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
