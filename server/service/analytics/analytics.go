// Package analytics aggregates per-agent insight statistics from
// persisted calls.
package analytics

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/voxmetrics/callsight/store"
)

// AgentStats is the aggregated leaderboard row for one agent. Averages
// skip calls whose insights have not been computed yet.
type AgentStats struct {
	AgentID      string  `json:"agent_id"`
	AvgSentiment float64 `json:"avg_sentiment"`
	AvgTalkRatio float64 `json:"avg_talk_ratio"`
	TotalCalls   int     `json:"total_calls"`
}

// CallLister is the read surface the service needs.
type CallLister interface {
	ListCalls(ctx context.Context, find *store.FindCall) ([]*store.Call, error)
}

// Service computes agent analytics with a short-lived cache, so repeated
// leaderboard reads do not rescan the call table.
type Service struct {
	store  CallLister
	ttl    time.Duration
	logger *slog.Logger

	mu       sync.RWMutex
	cached   []AgentStats
	cachedAt time.Time
}

// NewService creates an analytics service. A zero ttl disables caching.
func NewService(store CallLister, ttl time.Duration, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, ttl: ttl, logger: logger}
}

// AgentLeaderboard returns per-agent stats sorted by average sentiment
// descending, ties broken by agent id ascending.
func (s *Service) AgentLeaderboard(ctx context.Context) ([]AgentStats, error) {
	s.mu.RLock()
	if s.cached != nil && time.Since(s.cachedAt) < s.ttl {
		stats := s.cached
		s.mu.RUnlock()
		return stats, nil
	}
	s.mu.RUnlock()

	calls, err := s.store.ListCalls(ctx, &store.FindCall{})
	if err != nil {
		return nil, err
	}
	stats := aggregate(calls)

	s.mu.Lock()
	s.cached = stats
	s.cachedAt = time.Now()
	s.mu.Unlock()

	s.logger.Debug("agent leaderboard recomputed", "agents", len(stats), "calls", len(calls))
	return stats, nil
}

// Invalidate drops the cached leaderboard, forcing the next read to
// recompute. Called after ingestion.
func (s *Service) Invalidate() {
	s.mu.Lock()
	s.cached = nil
	s.mu.Unlock()
}

type accumulator struct {
	sentimentSum float64
	sentimentN   int
	ratioSum     float64
	ratioN       int
	total        int
}

func aggregate(calls []*store.Call) []AgentStats {
	byAgent := map[string]*accumulator{}
	for _, call := range calls {
		acc := byAgent[call.AgentID]
		if acc == nil {
			acc = &accumulator{}
			byAgent[call.AgentID] = acc
		}
		acc.total++
		if call.SentimentScore != nil {
			acc.sentimentSum += *call.SentimentScore
			acc.sentimentN++
		}
		if call.AgentTalkRatio != nil {
			acc.ratioSum += *call.AgentTalkRatio
			acc.ratioN++
		}
	}

	stats := make([]AgentStats, 0, len(byAgent))
	for agentID, acc := range byAgent {
		row := AgentStats{AgentID: agentID, TotalCalls: acc.total}
		if acc.sentimentN > 0 {
			row.AvgSentiment = acc.sentimentSum / float64(acc.sentimentN)
		}
		if acc.ratioN > 0 {
			row.AvgTalkRatio = acc.ratioSum / float64(acc.ratioN)
		}
		stats = append(stats, row)
	}

	sort.Slice(stats, func(i, j int) bool {
		if stats[i].AvgSentiment != stats[j].AvgSentiment {
			return stats[i].AvgSentiment > stats[j].AvgSentiment
		}
		return stats[i].AgentID < stats[j].AgentID
	})
	return stats
}
