package insight

import (
	"context"
	"log/slog"
	"strings"

	"github.com/voxmetrics/callsight/plugin/ai"
)

// Extractor derives CallFeatures from a transcript. It is a pure function
// of the transcript content given a fixed underlying sentiment model.
type Extractor struct {
	sentiment ai.SentimentService
	logger    *slog.Logger
}

// NewExtractor creates a feature extractor backed by the given sentiment
// service.
func NewExtractor(sentiment ai.SentimentService, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{sentiment: sentiment, logger: logger}
}

// Extract computes sentiment score and agent talk ratio for a transcript.
// If the sentiment model is unavailable or the transcript is empty, it
// returns neutral defaults with the Degraded flag set; extraction never
// fails.
func (e *Extractor) Extract(ctx context.Context, t Transcript) CallFeatures {
	features := CallFeatures{
		SentimentScore: 0,
		AgentTalkRatio: 0.5,
		Degraded:       true,
	}

	agentWords, customerWords := partitionWords(t)
	total := agentWords + customerWords
	if total == 0 {
		// Empty transcript: neutral defaults, flagged degraded.
		return features
	}
	features.AgentTalkRatio = float64(agentWords) / float64(total)

	score, degraded := e.scoreSentiment(ctx, t)
	features.SentimentScore = score
	features.Degraded = degraded
	return features
}

// partitionWords counts words per speaker role. Untagged lines split
// their words evenly between agent and customer.
func partitionWords(t Transcript) (agentWords, customerWords int) {
	for _, u := range t {
		words := countWords(u.Text)
		switch u.Speaker {
		case RoleAgent:
			agentWords += words
		case RoleCustomer:
			customerWords += words
		default:
			agentWords += words / 2
			customerWords += words - words/2
		}
	}
	return agentWords, customerWords
}

// scoreSentiment judges the customer-attributed utterances, or the whole
// transcript when no speaker tags were found, and maps the model's
// label+confidence output onto the canonical [-1,1] scale.
func (e *Extractor) scoreSentiment(ctx context.Context, t Transcript) (score float64, degraded bool) {
	text := customerText(t)
	if strings.TrimSpace(text) == "" {
		return 0, true
	}

	judgement, err := e.sentiment.Judge(ctx, text)
	if err != nil {
		e.logger.Warn("sentiment model unavailable, using neutral default", "error", err)
		return 0, true
	}

	switch judgement.Label {
	case "positive":
		score = judgement.Confidence
	case "negative":
		score = -judgement.Confidence
	default:
		score = 0
	}
	return clamp(score, -1, 1), false
}

// customerText returns the customer-attributed text, falling back to the
// full transcript when no utterance carries a customer tag.
func customerText(t Transcript) string {
	var parts []string
	for _, u := range t {
		if u.Speaker == RoleCustomer {
			parts = append(parts, u.Text)
		}
	}
	if len(parts) == 0 {
		return t.Text()
	}
	return strings.Join(parts, "\n")
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
