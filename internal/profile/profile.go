package profile

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// Profile is the runtime configuration for the call-insight engine.
type Profile struct {
	// Mode can be "prod" or "dev"
	Mode string
	// Data is the data directory
	Data string
	// DSN points to where callsight stores its own data
	DSN string
	// Driver is the database driver (sqlite or postgres)
	Driver string
	// Version is the current version of the binary
	Version string

	// AI configuration
	AIEnabled          bool    // CALLSIGHT_AI_ENABLED
	AIAPIKey           string  // CALLSIGHT_AI_API_KEY
	AIBaseURL          string  // CALLSIGHT_AI_BASE_URL (default: https://api.openai.com/v1)
	AIEmbeddingModel   string  // CALLSIGHT_AI_EMBEDDING_MODEL (default: text-embedding-3-small)
	AIEmbeddingDim     int     // CALLSIGHT_AI_EMBEDDING_DIM (default: 384)
	AISentimentModel   string  // CALLSIGHT_AI_SENTIMENT_MODEL (default: gpt-4o-mini)
	AICoachEnabled     bool    // CALLSIGHT_AI_COACH_ENABLED
	AICoachModel       string  // CALLSIGHT_AI_COACH_MODEL (default: gpt-4o-mini)
	AICoachTemperature float64 // CALLSIGHT_AI_COACH_TEMPERATURE (default: 0.7)
}

func (p *Profile) IsDev() bool {
	return p.Mode != "prod"
}

// IsAIEnabled returns true if AI is enabled and an API key is configured.
func (p *Profile) IsAIEnabled() bool {
	return p.AIEnabled && p.AIAPIKey != ""
}

// New builds a profile from environment variables and an optional config
// file, applying defaults for anything unset.
func New(version string) (*Profile, error) {
	v := viper.New()
	v.SetEnvPrefix("callsight")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("mode", "dev")
	v.SetDefault("driver", "sqlite")
	v.SetDefault("data", "")
	v.SetDefault("dsn", "")
	v.SetDefault("ai_enabled", false)
	v.SetDefault("ai_base_url", "https://api.openai.com/v1")
	v.SetDefault("ai_embedding_model", "text-embedding-3-small")
	v.SetDefault("ai_embedding_dim", 384)
	v.SetDefault("ai_sentiment_model", "gpt-4o-mini")
	v.SetDefault("ai_coach_enabled", false)
	v.SetDefault("ai_coach_model", "gpt-4o-mini")
	v.SetDefault("ai_coach_temperature", 0.7)

	// Optional config file next to the data directory or in the CWD.
	v.SetConfigName("callsight")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if dir := os.Getenv("CALLSIGHT_DATA"); dir != "" {
		v.AddConfigPath(dir)
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, errors.Wrap(err, "failed to read config file")
		}
	}

	p := &Profile{
		Mode:               v.GetString("mode"),
		Data:               v.GetString("data"),
		DSN:                v.GetString("dsn"),
		Driver:             v.GetString("driver"),
		Version:            version,
		AIEnabled:          v.GetBool("ai_enabled"),
		AIAPIKey:           v.GetString("ai_api_key"),
		AIBaseURL:          v.GetString("ai_base_url"),
		AIEmbeddingModel:   v.GetString("ai_embedding_model"),
		AIEmbeddingDim:     v.GetInt("ai_embedding_dim"),
		AISentimentModel:   v.GetString("ai_sentiment_model"),
		AICoachEnabled:     v.GetBool("ai_coach_enabled"),
		AICoachModel:       v.GetString("ai_coach_model"),
		AICoachTemperature: v.GetFloat64("ai_coach_temperature"),
	}

	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// Validate normalizes and validates the profile.
func (p *Profile) Validate() error {
	if p.Mode != "prod" && p.Mode != "dev" {
		p.Mode = "dev"
	}

	if p.Data == "" {
		if p.Mode == "prod" {
			p.Data = "/var/opt/callsight"
		} else {
			p.Data = "."
		}
	}
	absData, err := filepath.Abs(p.Data)
	if err != nil {
		return errors.Wrapf(err, "unable to resolve data directory %q", p.Data)
	}
	p.Data = absData
	if _, err := os.Stat(p.Data); err != nil {
		return errors.Wrapf(err, "unable to access data directory %q", p.Data)
	}

	switch p.Driver {
	case "sqlite":
		if p.DSN == "" {
			p.DSN = filepath.Join(p.Data, fmt.Sprintf("callsight_%s.db", p.Mode))
		}
	case "postgres":
		if p.DSN == "" {
			return errors.New("dsn is required for postgres driver")
		}
	default:
		return errors.Errorf("unknown db driver %q: only 'sqlite' and 'postgres' are supported", p.Driver)
	}

	if p.AIEmbeddingDim <= 0 {
		return errors.Errorf("embedding dimension must be positive, got %d", p.AIEmbeddingDim)
	}
	return nil
}
