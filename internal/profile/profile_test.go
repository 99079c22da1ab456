package profile

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfile_Validate(t *testing.T) {
	t.Run("sqlite defaults", func(t *testing.T) {
		dir := t.TempDir()
		p := &Profile{Mode: "dev", Driver: "sqlite", Data: dir, AIEmbeddingDim: 384}
		require.NoError(t, p.Validate())
		assert.Equal(t, filepath.Join(dir, "callsight_dev.db"), p.DSN)
	})

	t.Run("unknown mode falls back to dev", func(t *testing.T) {
		p := &Profile{Mode: "staging", Driver: "sqlite", Data: t.TempDir(), AIEmbeddingDim: 384}
		require.NoError(t, p.Validate())
		assert.Equal(t, "dev", p.Mode)
		assert.True(t, p.IsDev())
	})

	t.Run("postgres requires dsn", func(t *testing.T) {
		p := &Profile{Mode: "prod", Driver: "postgres", Data: t.TempDir(), AIEmbeddingDim: 384}
		assert.Error(t, p.Validate())

		p.DSN = "postgres://localhost/callsight"
		assert.NoError(t, p.Validate())
	})

	t.Run("unknown driver", func(t *testing.T) {
		p := &Profile{Mode: "dev", Driver: "mysql", Data: t.TempDir(), AIEmbeddingDim: 384}
		assert.Error(t, p.Validate())
	})

	t.Run("non-positive embedding dimension", func(t *testing.T) {
		p := &Profile{Mode: "dev", Driver: "sqlite", Data: t.TempDir()}
		assert.Error(t, p.Validate())
	})

	t.Run("missing data directory", func(t *testing.T) {
		p := &Profile{Mode: "dev", Driver: "sqlite", Data: "/definitely/not/a/dir", AIEmbeddingDim: 384}
		assert.Error(t, p.Validate())
	})
}

func TestProfile_IsAIEnabled(t *testing.T) {
	assert.False(t, (&Profile{AIEnabled: true}).IsAIEnabled())
	assert.False(t, (&Profile{AIAPIKey: "sk-test"}).IsAIEnabled())
	assert.True(t, (&Profile{AIEnabled: true, AIAPIKey: "sk-test"}).IsAIEnabled())
}

func TestNew_Defaults(t *testing.T) {
	t.Setenv("CALLSIGHT_DATA", t.TempDir())

	p, err := New("test")
	require.NoError(t, err)

	assert.Equal(t, "dev", p.Mode)
	assert.Equal(t, "sqlite", p.Driver)
	assert.Equal(t, 384, p.AIEmbeddingDim)
	assert.Equal(t, "text-embedding-3-small", p.AIEmbeddingModel)
	assert.Equal(t, "gpt-4o-mini", p.AISentimentModel)
	assert.False(t, p.IsAIEnabled())
	assert.Equal(t, "test", p.Version)
}
