package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"

	inserr "github.com/voxmetrics/callsight/internal/errors"
)

// Judgement is the native output shape of the sentiment model: a class
// label with a confidence in [0,1]. Normalization to the engine's [-1,1]
// scalar scale belongs to the feature extractor, not this package.
type Judgement struct {
	Label      string  `json:"label"`      // positive, negative, neutral
	Confidence float64 `json:"confidence"` // 0..1
}

// SentimentService is the sentiment scoring model interface.
type SentimentService interface {
	// Judge classifies the sentiment of the given text.
	Judge(ctx context.Context, text string) (*Judgement, error)
}

const sentimentSystemPrompt = `You are a sentiment classifier for sales-call transcripts.
Classify the overall sentiment of the customer's speech.
Respond with only a JSON object: {"label": "positive"|"negative"|"neutral", "confidence": <float 0..1>}`

type sentimentService struct {
	client *openai.Client
	model  string
}

// NewSentimentService creates a new SentimentService.
func NewSentimentService(cfg *SentimentConfig) (SentimentService, error) {
	if cfg.Model == "" {
		return nil, fmt.Errorf("sentiment model is required")
	}
	return &sentimentService{
		client: newClient(cfg.APIKey, cfg.BaseURL),
		model:  cfg.Model,
	}, nil
}

func (s *sentimentService) Judge(ctx context.Context, text string) (*Judgement, error) {
	if strings.TrimSpace(text) == "" {
		return nil, inserr.InvalidArgument("text is empty")
	}

	req := openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: sentimentSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: text},
		},
		Temperature: 0,
	}

	var resp openai.ChatCompletionResponse
	err := withRetry(ctx, defaultMaxRetries, func() error {
		var reqErr error
		resp, reqErr = s.client.CreateChatCompletion(ctx, req)
		return reqErr
	})
	if err != nil {
		return nil, inserr.Wrap(err, inserr.ErrCodeModelUnavailable, "sentiment completion failed")
	}
	if len(resp.Choices) == 0 {
		return nil, inserr.ModelUnavailable("empty sentiment response")
	}

	judgement, err := parseJudgement(resp.Choices[0].Message.Content)
	if err != nil {
		return nil, inserr.Wrap(err, inserr.ErrCodeModelUnavailable, "unparseable sentiment response")
	}
	return judgement, nil
}

// parseJudgement extracts a Judgement from a model response. Small models
// frequently wrap JSON in markdown code fences or prepend filler, so the
// parser strips fences and extracts the first {...} object.
func parseJudgement(resp string) (*Judgement, error) {
	s := strings.TrimSpace(resp)

	if idx := strings.Index(s, "```"); idx != -1 {
		s = s[idx+3:]
		if strings.HasPrefix(s, "json") {
			s = s[4:]
		}
		if end := strings.Index(s, "```"); end != -1 {
			s = s[:end]
		}
	}

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start == -1 || end <= start {
		return nil, fmt.Errorf("no JSON object in response")
	}

	var j Judgement
	if err := json.Unmarshal([]byte(s[start:end+1]), &j); err != nil {
		return nil, fmt.Errorf("unmarshal judgement: %w", err)
	}

	j.Label = strings.ToLower(strings.TrimSpace(j.Label))
	switch j.Label {
	case "positive", "negative", "neutral":
	default:
		return nil, fmt.Errorf("unknown sentiment label %q", j.Label)
	}
	if j.Confidence < 0 {
		j.Confidence = 0
	}
	if j.Confidence > 1 {
		j.Confidence = 1
	}
	return &j, nil
}

// disabledSentiment is the null sentiment service used when AI is disabled.
type disabledSentiment struct{}

// NewDisabledSentimentService returns a SentimentService that always
// reports unavailability so callers take their degraded path.
func NewDisabledSentimentService() SentimentService {
	return disabledSentiment{}
}

func (disabledSentiment) Judge(_ context.Context, _ string) (*Judgement, error) {
	return nil, inserr.ModelUnavailable("sentiment model is not configured")
}
