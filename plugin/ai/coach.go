package ai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"

	inserr "github.com/voxmetrics/callsight/internal/errors"
)

// CoachRequest carries the call facts the generative coach works from.
type CoachRequest struct {
	SentimentScore float64
	AgentTalkRatio float64
	// TranscriptPreview is a short excerpt of the call, never the full text.
	TranscriptPreview string
	// RuleNudges are the deterministic suggestions to rephrase or extend.
	RuleNudges []string
}

// CoachService generates coaching suggestions. It is a best-effort
// enhancement: callers must treat any error as "use the rule-based nudges
// unchanged".
type CoachService interface {
	Suggest(ctx context.Context, req *CoachRequest) ([]string, error)
}

const maxCoachNudges = 3

type coachService struct {
	client      *openai.Client
	model       string
	maxTokens   int
	temperature float32
	timeout     time.Duration
	limiter     *rate.Limiter
}

// NewCoachService creates a new CoachService. Calls are rate-limited and
// bounded by a short timeout so a slow provider cannot stall
// recommendation synthesis.
func NewCoachService(cfg *CoachConfig) (CoachService, error) {
	if !cfg.Enabled {
		return NewNoOpCoach(), nil
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("coach model is required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	ratePerMin := cfg.RatePerMin
	if ratePerMin <= 0 {
		ratePerMin = 30
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 256
	}

	return &coachService{
		client:      newClient(cfg.APIKey, cfg.BaseURL),
		model:       cfg.Model,
		maxTokens:   maxTokens,
		temperature: cfg.Temperature,
		timeout:     timeout,
		limiter:     rate.NewLimiter(rate.Limit(float64(ratePerMin)/60.0), ratePerMin),
	}, nil
}

func (s *coachService) Suggest(ctx context.Context, req *CoachRequest) ([]string, error) {
	if !s.limiter.Allow() {
		return nil, inserr.ExternalServiceFailure("coaching rate limit exceeded", nil)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	prompt := buildCoachPrompt(req)
	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens:   s.maxTokens,
		Temperature: s.temperature,
	})
	if err != nil {
		return nil, inserr.ExternalServiceFailure("coaching completion failed", err)
	}
	if len(resp.Choices) == 0 {
		return nil, inserr.ExternalServiceFailure("empty coaching response", nil)
	}

	nudges := parseNudgeLines(resp.Choices[0].Message.Content)
	if len(nudges) == 0 {
		return nil, inserr.ExternalServiceFailure("no usable coaching suggestions", nil)
	}
	return nudges, nil
}

func buildCoachPrompt(req *CoachRequest) string {
	var b strings.Builder
	b.WriteString("Based on this sales call analysis:\n")
	fmt.Fprintf(&b, "- Customer sentiment score: %.2f (-1 to 1 scale)\n", req.SentimentScore)
	fmt.Fprintf(&b, "- Agent talk ratio: %.2f\n", req.AgentTalkRatio)
	if req.TranscriptPreview != "" {
		fmt.Fprintf(&b, "- Transcript preview: %s\n", req.TranscriptPreview)
	}
	if len(req.RuleNudges) > 0 {
		b.WriteString("- Current suggestions:\n")
		for _, n := range req.RuleNudges {
			fmt.Fprintf(&b, "  - %s\n", n)
		}
	}
	fmt.Fprintf(&b, "\nGenerate %d brief coaching tips (max 40 words each) for the sales agent.\n", maxCoachNudges)
	b.WriteString("Focus on practical improvements. One tip per line, no numbering.")
	return b.String()
}

// parseNudgeLines splits a completion into at most maxCoachNudges
// non-empty suggestion lines, stripping list markers.
func parseNudgeLines(content string) []string {
	var nudges []string
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimLeft(line, "-*0123456789. ")
		if line == "" {
			continue
		}
		nudges = append(nudges, line)
		if len(nudges) >= maxCoachNudges {
			break
		}
	}
	return nudges
}

// noOpCoach always reports unavailability so the synthesizer's logic path
// never branches on whether coaching is configured.
type noOpCoach struct{}

// NewNoOpCoach returns the null CoachService.
func NewNoOpCoach() CoachService {
	return noOpCoach{}
}

func (noOpCoach) Suggest(_ context.Context, _ *CoachRequest) ([]string, error) {
	return nil, inserr.ExternalServiceFailure("coaching service is not configured", nil)
}
