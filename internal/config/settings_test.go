package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Veraticus/regulaite/internal/common"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromViperDefaults(t *testing.T) {
	t.Setenv("GOOGLE_API_KEY", "")
	t.Setenv("GEMINI_API_KEY", "")

	v := viper.New()
	SetDefaults(v)
	s := FromViper(v)

	assert.Equal(t, "pattern", s.ClassifierStrategy)
	assert.Equal(t, "gemini", s.LLM.Provider)
	assert.Equal(t, DefaultLLMTimeout, s.LLM.Timeout)
	assert.Equal(t, DefaultLLMRateLimit, s.LLM.RateLimit)
	assert.Empty(t, s.LLM.APIKey)
	assert.Equal(t, DefaultServerPort, s.Server.Port)
	assert.Equal(t, []string{DefaultCORSOrigin}, s.Server.CORSOrigins)
	assert.Equal(t, DefaultAMQPQueue, s.AMQP.Queue)
	require.NoError(t, s.Validate())
	require.NoError(t, s.ValidateServer())
	assert.ErrorIs(t, s.ValidateAMQP(), common.ErrMissingConfig)
}

func TestFromViperAPIKeyFallback(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "env-key")

	v := viper.New()
	SetDefaults(v)
	v.Set("llm.provider", "Anthropic")
	s := FromViper(v)
	assert.Equal(t, "anthropic", s.LLM.Provider)
	assert.Equal(t, "env-key", s.LLM.APIKey)

	v.Set("llm.api_key", "explicit")
	assert.Equal(t, "explicit", FromViper(v).LLM.APIKey)
}

func TestValidate(t *testing.T) {
	valid := Settings{
		ClassifierStrategy: "pattern",
		LLM:                LLM{Provider: "openai", Timeout: time.Second},
	}
	require.NoError(t, valid.Validate())

	tests := []struct {
		mutate func(s *Settings)
		name   string
	}{
		{name: "bad strategy", mutate: func(s *Settings) { s.ClassifierStrategy = "magic" }},
		{name: "bad provider", mutate: func(s *Settings) { s.LLM.Provider = "mystery" }},
		{name: "zero timeout", mutate: func(s *Settings) { s.LLM.Timeout = 0 }},
		{name: "negative rate limit", mutate: func(s *Settings) { s.LLM.RateLimit = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := valid
			tt.mutate(&s)
			assert.ErrorIs(t, s.Validate(), common.ErrInvalidConfig)
		})
	}

	assert.ErrorIs(t, Settings{Server: Server{Port: 70000}}.ValidateServer(), common.ErrInvalidConfig)
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)
	t.Setenv("REGULAITE_TEST_DIR", "/tmp/rules")

	assert.Empty(t, ExpandPath(""))
	assert.Equal(t, home, ExpandPath("~"))
	assert.Equal(t, filepath.Join(home, "rules.yaml"), ExpandPath("~/rules.yaml"))
	assert.Equal(t, "/tmp/rules/table.yaml", ExpandPath("$REGULAITE_TEST_DIR/table.yaml"))
	assert.Equal(t, "relative/path", ExpandPath("relative/path"))
}
