package ai

import (
	"errors"
	"time"

	"github.com/voxmetrics/callsight/internal/profile"
)

// Config represents AI configuration.
type Config struct {
	Enabled bool

	Embedding EmbeddingConfig
	Sentiment SentimentConfig
	Coach     CoachConfig
}

// EmbeddingConfig represents vector embedding configuration.
type EmbeddingConfig struct {
	Model      string // text-embedding-3-small
	Dimensions int    // 384
	APIKey     string
	BaseURL    string
}

// SentimentConfig represents sentiment scoring configuration.
type SentimentConfig struct {
	Model   string // gpt-4o-mini
	APIKey  string
	BaseURL string
}

// CoachConfig represents generative coaching configuration.
type CoachConfig struct {
	Enabled     bool
	Model       string
	APIKey      string
	BaseURL     string
	MaxTokens   int           // default: 256
	Temperature float32       // default: 0.7
	Timeout     time.Duration // default: 5s; the coach is best-effort
	RatePerMin  int           // default: 30
}

// NewConfigFromProfile creates AI config from the runtime profile.
func NewConfigFromProfile(p *profile.Profile) *Config {
	cfg := &Config{
		Enabled: p.IsAIEnabled(),
	}

	if !cfg.Enabled {
		return cfg
	}

	cfg.Embedding = EmbeddingConfig{
		Model:      p.AIEmbeddingModel,
		Dimensions: p.AIEmbeddingDim,
		APIKey:     p.AIAPIKey,
		BaseURL:    p.AIBaseURL,
	}

	cfg.Sentiment = SentimentConfig{
		Model:   p.AISentimentModel,
		APIKey:  p.AIAPIKey,
		BaseURL: p.AIBaseURL,
	}

	cfg.Coach = CoachConfig{
		Enabled:     p.AICoachEnabled,
		Model:       p.AICoachModel,
		APIKey:      p.AIAPIKey,
		BaseURL:     p.AIBaseURL,
		MaxTokens:   256,
		Temperature: float32(p.AICoachTemperature),
		Timeout:     5 * time.Second,
		RatePerMin:  30,
	}

	return cfg
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if !c.Enabled {
		return nil
	}

	if c.Embedding.APIKey == "" {
		return errors.New("embedding API key is required")
	}
	if c.Embedding.Dimensions <= 0 {
		return errors.New("embedding dimensions must be positive")
	}
	if c.Sentiment.Model == "" {
		return errors.New("sentiment model is required")
	}
	if c.Coach.Enabled && c.Coach.Model == "" {
		return errors.New("coach model is required when coaching is enabled")
	}

	return nil
}
