package llm

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrServiceUnavailable is returned when no provider credential is configured.
	ErrServiceUnavailable = errors.New("text generation service unavailable")
	// ErrMalformedResponse is returned when a provider reply cannot be used.
	ErrMalformedResponse = errors.New("malformed text generation response")
)

// Format is the shape a caller expects the reply in.
type Format string

const (
	// FormatText asks for free prose.
	FormatText Format = "text"
	// FormatJSON asks for a single JSON object matching Request.Schema.
	FormatJSON Format = "json"
)

// Field declares one property of an expected JSON reply.
type Field struct {
	Name        string
	Type        string // string, number, integer or boolean
	Description string
	Enum        []string
}

// Request is a single generation call.
type Request struct {
	System string
	Prompt string
	Format Format
	Schema []Field
}

// Response carries the generated text. For FormatJSON requests the text is
// a bare JSON object with any markdown wrapping removed.
type Response struct {
	Text  string
	Model string
}

// Generator produces text for a prompt.
type Generator interface {
	Generate(ctx context.Context, req Request) (Response, error)
}

// Config holds provider configuration.
type Config struct {
	Provider    string
	APIKey      string
	Model       string
	BaseURL     string
	Timeout     time.Duration
	Temperature float64
	MaxTokens   int
	RateLimit   int // requests per minute, 0 disables limiting
}
