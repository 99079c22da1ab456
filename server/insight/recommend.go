package insight

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/voxmetrics/callsight/plugin/ai"
	"github.com/voxmetrics/callsight/server/insight/vector"
)

// Rule thresholds for the deterministic nudge table.
const (
	highTalkRatio = 0.7
	lowTalkRatio  = 0.4
	lowSentiment  = -0.3
	// exemplarSentimentGap is how much higher a neighbor's sentiment must
	// be before it is surfaced as a coaching exemplar.
	exemplarSentimentGap = 0.5

	defaultTopK   = 5
	minNudges     = 3
	previewLength = 200
)

// generalNudges pad the rule output up to minNudges suggestions.
var generalNudges = []string{
	"Ask discovery questions",
	"Confirm understanding regularly",
	"Focus on customer value",
	"Use the customer's name more often",
	"Summarize key points clearly",
}

// CallSource looks up calls for neighbor enrichment. Implementations
// returning (nil, nil) for unknown ids are tolerated.
type CallSource interface {
	GetCall(ctx context.Context, id string) (*Call, error)
}

// Recommender synthesizes coaching recommendations from a call's
// features and its nearest neighbors in the similarity index.
type Recommender struct {
	index  vector.Index
	coach  ai.CoachService
	calls  CallSource
	topK   int
	logger *slog.Logger
}

// NewRecommender creates a recommender. calls may be nil, in which case
// neighbor results carry ids and scores only. topK <= 0 selects the
// default of 5.
func NewRecommender(index vector.Index, coach ai.CoachService, calls CallSource, topK int, logger *slog.Logger) *Recommender {
	if coach == nil {
		coach = ai.NewNoOpCoach()
	}
	if topK <= 0 {
		topK = defaultTopK
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Recommender{
		index:  index,
		coach:  coach,
		calls:  calls,
		topK:   topK,
		logger: logger,
	}
}

// Recommend produces the similar-call list and ranked coaching nudges for
// a call. The generative coach is best-effort: any failure falls back to
// the rule-based nudges unchanged.
func (r *Recommender) Recommend(ctx context.Context, call *Call) (*Recommendation, error) {
	neighbors := r.neighbors(call)
	similar := r.enrich(ctx, neighbors)

	neighborFeats := r.neighborFeatures(ctx, neighbors)
	nudges := ruleNudges(call.Features, neighborFeats, neighborIDs(neighbors))

	if augmented, err := r.coach.Suggest(ctx, &ai.CoachRequest{
		SentimentScore:    call.Features.SentimentScore,
		AgentTalkRatio:    call.Features.AgentTalkRatio,
		TranscriptPreview: preview(call.RawTranscript),
		RuleNudges:        nudges,
	}); err != nil {
		r.logger.Debug("generative coaching unavailable, using rule-based nudges",
			"call_id", call.ID, "error", err)
	} else {
		nudges = dedupe(append(nudges, augmented...))
	}

	return &Recommendation{
		SimilarCalls: similar,
		Nudges:       nudges,
	}, nil
}

// neighbors queries the index with the call's embedding, excluding the
// call itself. Calls without an embedding get no neighbors.
func (r *Recommender) neighbors(call *Call) []vector.SimilarityResult {
	if len(call.Embedding) != r.index.Dimension() {
		return nil
	}

	// Query one extra so the result stays full after self-exclusion.
	results := r.index.Query(call.Embedding, r.topK+1)
	filtered := results[:0]
	for _, res := range results {
		if res.CallID == call.ID {
			continue
		}
		filtered = append(filtered, res)
	}
	if len(filtered) > r.topK {
		filtered = filtered[:r.topK]
	}
	return filtered
}

func (r *Recommender) enrich(ctx context.Context, neighbors []vector.SimilarityResult) []SimilarCall {
	similar := make([]SimilarCall, 0, len(neighbors))
	for _, n := range neighbors {
		sc := SimilarCall{CallID: n.CallID, Score: n.Score}
		if r.calls != nil {
			if c, err := r.calls.GetCall(ctx, n.CallID); err == nil && c != nil {
				sc.AgentID = c.AgentID
				sc.TranscriptPreview = preview(c.RawTranscript)
			}
		}
		similar = append(similar, sc)
	}
	return similar
}

// neighborFeatures fetches the best-matching neighbor's features, when a
// call source is available. The rule table only needs the top neighbor.
func (r *Recommender) neighborFeatures(ctx context.Context, neighbors []vector.SimilarityResult) *CallFeatures {
	if r.calls == nil || len(neighbors) == 0 {
		return nil
	}
	c, err := r.calls.GetCall(ctx, neighbors[0].CallID)
	if err != nil || c == nil {
		return nil
	}
	feats := c.Features
	return &feats
}

func neighborIDs(neighbors []vector.SimilarityResult) []string {
	ids := make([]string, len(neighbors))
	for i, n := range neighbors {
		ids[i] = n.CallID
	}
	return ids
}

// ruleNudges evaluates the deterministic rule table against the call's
// features and, where available, the best neighbor's features. Output is
// ordered most actionable first with duplicates removed.
func ruleNudges(f CallFeatures, best *CallFeatures, ids []string) []string {
	var nudges []string

	if f.SentimentScore < lowSentiment {
		nudges = append(nudges, "De-escalate: acknowledge the customer's frustration before pitching")
	} else if f.SentimentScore < 0 {
		nudges = append(nudges, "Use positive language to improve the customer's mood")
	}

	if f.AgentTalkRatio > highTalkRatio {
		nudges = append(nudges, "Reduce agent talk time: let the customer speak more")
	} else if f.AgentTalkRatio < lowTalkRatio {
		nudges = append(nudges, "Take more initiative in the conversation")
	}

	// Exemplar rule: a struggling call with a close neighbor that went
	// materially better points the agent at that call.
	if f.SentimentScore < lowSentiment && best != nil && len(ids) > 0 &&
		best.SentimentScore >= f.SentimentScore+exemplarSentimentGap &&
		best.AgentTalkRatio < f.AgentTalkRatio {
		nudges = append(nudges,
			fmt.Sprintf("Review call %s as an exemplar: similar conversation with higher customer sentiment", ids[0]))
	}

	for _, g := range generalNudges {
		if len(nudges) >= minNudges {
			break
		}
		nudges = append(nudges, g)
	}

	return dedupe(nudges)
}

// dedupe removes duplicate nudge texts preserving first-seen order.
func dedupe(nudges []string) []string {
	seen := make(map[string]struct{}, len(nudges))
	out := nudges[:0]
	for _, n := range nudges {
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}

// preview truncates a transcript for display and prompts.
func preview(raw string) string {
	if len(raw) <= previewLength {
		return raw
	}
	return raw[:previewLength] + "..."
}
