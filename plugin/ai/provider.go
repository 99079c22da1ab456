// Package ai provides the model provider stack for the call-insight engine:
// embedding generation, sentiment judgement, and optional generative
// coaching. All providers speak the OpenAI-compatible API.
package ai

import (
	"context"
	"log/slog"
	"math"
	"time"

	"github.com/sashabaranov/go-openai"
)

const defaultMaxRetries = 3

// newClient builds an OpenAI-compatible client for the given credentials.
func newClient(apiKey, baseURL string) *openai.Client {
	clientConfig := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		clientConfig.BaseURL = baseURL
	}
	return openai.NewClientWithConfig(clientConfig)
}

// withRetry executes a function with exponential backoff retry.
func withRetry(ctx context.Context, maxRetries int, fn func() error) error {
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}
	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			if attempt < maxRetries-1 {
				waitTime := time.Duration(math.Pow(2, float64(attempt))) * time.Second
				slog.Debug("AI request failed, retrying",
					"attempt", attempt+1,
					"wait_time", waitTime,
					"error", err)
				select {
				case <-time.After(waitTime):
				case <-ctx.Done():
					return ctx.Err()
				}
			}
		}
	}
	return lastErr
}
