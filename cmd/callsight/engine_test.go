package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voxmetrics/callsight/server/insight"
	"github.com/voxmetrics/callsight/store"
)

func TestToInsightCall(t *testing.T) {
	sentiment := 0.4
	ratio := 0.7
	record := &store.Call{
		ID:              "c-1",
		AgentID:         "a-1",
		CustomerID:      "u-1",
		StartTs:         1748772000,
		DurationSeconds: 540,
		Transcript:      "Agent: hello\nCustomer: hi",
		SentimentScore:  &sentiment,
		AgentTalkRatio:  &ratio,
		Embedding:       []float32{1, 0},
	}

	call := toInsightCall(record)
	assert.Equal(t, "c-1", call.ID)
	assert.Equal(t, time.Unix(1748772000, 0), call.StartTime)
	assert.Equal(t, 9*time.Minute, call.Duration)
	assert.InDelta(t, 0.4, call.Features.SentimentScore, 1e-9)
	assert.InDelta(t, 0.7, call.Features.AgentTalkRatio, 1e-9)
	assert.False(t, call.Features.Degraded)
	assert.Equal(t, []float32{1, 0}, call.Embedding)

	require.Len(t, call.Transcript, 2)
	assert.Equal(t, insight.RoleAgent, call.Transcript[0].Speaker)
}

func TestToInsightCall_MissingInsights(t *testing.T) {
	call := toInsightCall(&store.Call{ID: "c-1", Transcript: "hello", Degraded: true})
	assert.Zero(t, call.Features.SentimentScore)
	assert.InDelta(t, 0.5, call.Features.AgentTalkRatio, 1e-9)
	assert.True(t, call.Features.Degraded)
	assert.Nil(t, call.Embedding)
}
