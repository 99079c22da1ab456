// Package insight implements the call-insight engine: it turns raw
// sales-call transcripts into scored features and fixed-dimension
// embeddings, and synthesizes coaching recommendations from a call's
// features and its nearest neighbors.
package insight

import (
	"time"
)

// Role identifies the speaker of an utterance.
type Role string

const (
	RoleAgent    Role = "agent"
	RoleCustomer Role = "customer"
	RoleUnknown  Role = "unknown"
)

// Utterance is a single speaker-attributed line of a transcript.
type Utterance struct {
	Speaker Role
	Text    string
}

// Transcript is the ordered sequence of utterances of one call.
// It is immutable once parsed.
type Transcript []Utterance

// Text joins the utterance texts into a single string.
func (t Transcript) Text() string {
	switch len(t) {
	case 0:
		return ""
	case 1:
		return t[0].Text
	}
	n := 0
	for _, u := range t {
		n += len(u.Text) + 1
	}
	b := make([]byte, 0, n)
	for i, u := range t {
		if i > 0 {
			b = append(b, '\n')
		}
		b = append(b, u.Text...)
	}
	return string(b)
}

// CallFeatures holds the scored features derived from a transcript.
type CallFeatures struct {
	// SentimentScore is in [-1,1]; -1 maximally negative, +1 maximally
	// positive, 0 neutral.
	SentimentScore float64
	// AgentTalkRatio is the fraction of spoken words attributable to the
	// agent, in [0,1].
	AgentTalkRatio float64
	// Degraded marks features computed under fallback conditions (model
	// unavailable, empty transcript). A degraded result is not an error.
	Degraded bool
}

// Embedding is a fixed-dimension vector representing the semantic content
// of a transcript.
type Embedding = []float32

// Call is the aggregate unit of storage and retrieval. CallFeatures and
// Embedding are value objects owned by the call.
type Call struct {
	ID            string
	AgentID       string
	CustomerID    string
	StartTime     time.Time
	Duration      time.Duration
	RawTranscript string
	Transcript    Transcript
	Features      CallFeatures
	// Embedding is nil when the call has no computed embedding; such
	// calls are excluded from similarity queries but still retrievable.
	Embedding Embedding
}

// SimilarCall is one neighbor in a recommendation, enriched with display
// fields where the call source can supply them.
type SimilarCall struct {
	CallID            string  `json:"call_id"`
	Score             float64 `json:"score"`
	AgentID           string  `json:"agent_id,omitempty"`
	TranscriptPreview string  `json:"transcript_preview,omitempty"`
}

// Recommendation is the synthesized output for one call: its nearest
// neighbors and an ordered, deduplicated list of coaching nudges.
// Recomputed per request, never persisted.
type Recommendation struct {
	SimilarCalls []SimilarCall `json:"similar_calls"`
	Nudges       []string      `json:"nudges"`
}
