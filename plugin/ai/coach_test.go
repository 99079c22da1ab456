package ai

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	inserr "github.com/voxmetrics/callsight/internal/errors"
)

func TestParseNudgeLines(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    []string
	}{
		{
			"plain lines",
			"Slow down when quoting prices\nAsk for the budget early",
			[]string{"Slow down when quoting prices", "Ask for the budget early"},
		},
		{
			"dash list markers stripped",
			"- Slow down\n- Listen more",
			[]string{"Slow down", "Listen more"},
		},
		{
			"numbered list markers stripped",
			"1. First tip\n2. Second tip",
			[]string{"First tip", "Second tip"},
		},
		{
			"blank lines skipped",
			"\n\nOnly tip\n\n",
			[]string{"Only tip"},
		},
		{
			"capped at three",
			"one\ntwo\nthree\nfour\nfive",
			[]string{"one", "two", "three"},
		},
		{
			"empty content",
			"",
			nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parseNudgeLines(tt.content))
		})
	}
}

func TestBuildCoachPrompt(t *testing.T) {
	prompt := buildCoachPrompt(&CoachRequest{
		SentimentScore:    -0.42,
		AgentTalkRatio:    0.81,
		TranscriptPreview: "Agent: hello",
		RuleNudges:        []string{"Reduce agent talk time: let the customer speak more"},
	})

	assert.Contains(t, prompt, "-0.42")
	assert.Contains(t, prompt, "0.81")
	assert.Contains(t, prompt, "Agent: hello")
	assert.Contains(t, prompt, "Reduce agent talk time")
	assert.True(t, strings.Contains(prompt, "coaching tips"))
}

func TestNewCoachService(t *testing.T) {
	t.Run("disabled returns noop", func(t *testing.T) {
		svc, err := NewCoachService(&CoachConfig{Enabled: false})
		require.NoError(t, err)

		_, err = svc.Suggest(context.Background(), &CoachRequest{})
		require.Error(t, err)
		assert.True(t, inserr.IsCode(err, inserr.ErrCodeExternalServiceFailure))
	})

	t.Run("enabled requires model", func(t *testing.T) {
		_, err := NewCoachService(&CoachConfig{Enabled: true})
		assert.Error(t, err)
	})
}

func TestNoOpCoach(t *testing.T) {
	coach := NewNoOpCoach()
	nudges, err := coach.Suggest(context.Background(), &CoachRequest{SentimentScore: 0.2})
	require.Error(t, err)
	assert.Nil(t, nudges)
	assert.True(t, inserr.IsCode(err, inserr.ErrCodeExternalServiceFailure))
}
