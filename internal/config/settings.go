package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/Veraticus/regulaite/internal/common"
	"github.com/spf13/viper"
)

// Defaults applied when a key is not configured.
const (
	DefaultLLMProvider  = "gemini"
	DefaultLLMTimeout   = 20 * time.Second
	DefaultLLMRateLimit = 60
	DefaultServerPort   = 8000
	DefaultCORSOrigin   = "http://localhost:5173"
	DefaultAMQPExchange = "regulaite"
	DefaultAMQPQueue    = "regulaite.checks"
	DefaultResultKey    = "regulaite.results"
)

// LLM configures the outbound text-generation service.
type LLM struct {
	Provider    string
	Model       string
	APIKey      string
	BaseURL     string
	Timeout     time.Duration
	RateLimit   int
	MaxTokens   int
	Temperature float64
}

// Server configures the HTTP service.
type Server struct {
	CORSOrigins []string
	Port        int
}

// AMQP configures the queue worker.
type AMQP struct {
	URL       string
	Exchange  string
	Queue     string
	ResultKey string
}

// Settings is the typed view of the process configuration.
type Settings struct {
	LLM                LLM
	AMQP               AMQP
	RulesPath          string
	ClassifierStrategy string
	Server             Server
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("classifier.strategy", "pattern")
	v.SetDefault("llm.provider", DefaultLLMProvider)
	v.SetDefault("llm.timeout", DefaultLLMTimeout)
	v.SetDefault("llm.rate_limit", DefaultLLMRateLimit)
	v.SetDefault("llm.temperature", 0.2)
	v.SetDefault("llm.max_tokens", 1024)
	v.SetDefault("server.port", DefaultServerPort)
	v.SetDefault("server.cors_origins", []string{DefaultCORSOrigin})
	v.SetDefault("amqp.exchange", DefaultAMQPExchange)
	v.SetDefault("amqp.queue", DefaultAMQPQueue)
	v.SetDefault("amqp.result_key", DefaultResultKey)
}

// FromViper reads Settings from v. Provider API keys fall back to the
// conventional environment variables when llm.api_key is not set.
func FromViper(v *viper.Viper) Settings {
	s := Settings{
		RulesPath:          ExpandPath(v.GetString("rules.path")),
		ClassifierStrategy: strings.ToLower(v.GetString("classifier.strategy")),
		LLM: LLM{
			Provider:    strings.ToLower(v.GetString("llm.provider")),
			Model:       v.GetString("llm.model"),
			APIKey:      v.GetString("llm.api_key"),
			BaseURL:     v.GetString("llm.base_url"),
			Timeout:     v.GetDuration("llm.timeout"),
			RateLimit:   v.GetInt("llm.rate_limit"),
			MaxTokens:   v.GetInt("llm.max_tokens"),
			Temperature: v.GetFloat64("llm.temperature"),
		},
		Server: Server{
			Port:        v.GetInt("server.port"),
			CORSOrigins: v.GetStringSlice("server.cors_origins"),
		},
		AMQP: AMQP{
			URL:       v.GetString("amqp.url"),
			Exchange:  v.GetString("amqp.exchange"),
			Queue:     v.GetString("amqp.queue"),
			ResultKey: v.GetString("amqp.result_key"),
		},
	}

	if s.LLM.APIKey == "" {
		s.LLM.APIKey = apiKeyFromEnv(s.LLM.Provider)
	}

	return s
}

func apiKeyFromEnv(provider string) string {
	var names []string
	switch provider {
	case "gemini":
		names = []string{"GOOGLE_API_KEY", "GEMINI_API_KEY"}
	case "anthropic":
		names = []string{"ANTHROPIC_API_KEY"}
	case "openai":
		names = []string{"OPENAI_API_KEY"}
	}
	for _, name := range names {
		if key := os.Getenv(name); key != "" {
			return key
		}
	}
	return ""
}

// Validate checks the settings needed by every command.
func (s Settings) Validate() error {
	switch s.ClassifierStrategy {
	case "", "pattern", "model":
	default:
		return fmt.Errorf("%w: classifier.strategy must be pattern or model, got %q", common.ErrInvalidConfig, s.ClassifierStrategy)
	}

	switch s.LLM.Provider {
	case "gemini", "anthropic", "openai":
	default:
		return fmt.Errorf("%w: unsupported llm.provider %q", common.ErrInvalidConfig, s.LLM.Provider)
	}

	if s.LLM.Timeout <= 0 {
		return fmt.Errorf("%w: llm.timeout must be positive", common.ErrInvalidConfig)
	}
	if s.LLM.RateLimit < 0 {
		return fmt.Errorf("%w: llm.rate_limit must not be negative", common.ErrInvalidConfig)
	}
	return nil
}

// ValidateServer checks the settings used by the HTTP service.
func (s Settings) ValidateServer() error {
	if s.Server.Port <= 0 || s.Server.Port > 65535 {
		return fmt.Errorf("%w: server.port %d out of range", common.ErrInvalidConfig, s.Server.Port)
	}
	return nil
}

// ValidateAMQP checks the settings used by the queue worker.
func (s Settings) ValidateAMQP() error {
	if s.AMQP.URL == "" {
		return fmt.Errorf("%w: amqp.url is required", common.ErrMissingConfig)
	}
	if s.AMQP.Exchange == "" || s.AMQP.Queue == "" || s.AMQP.ResultKey == "" {
		return fmt.Errorf("%w: amqp.exchange, amqp.queue and amqp.result_key are required", common.ErrMissingConfig)
	}
	return nil
}
