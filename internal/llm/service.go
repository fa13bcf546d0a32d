package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// ServiceOptions configures a Service.
type ServiceOptions struct {
	Logger    *slog.Logger
	Name      string
	Timeout   time.Duration
	RateLimit int
}

// Service wraps a provider with a per-call timeout, an outbound rate limit and
// reply validation. It is safe for concurrent use.
type Service struct {
	provider Generator
	limiter  *rateLimiter
	logger   *slog.Logger
	name     string
	timeout  time.Duration
}

// NewService wraps provider.
func NewService(provider Generator, opts ServiceOptions) *Service {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Name == "" {
		opts.Name = "llm"
	}

	return &Service{
		provider: provider,
		limiter:  newRateLimiter(opts.RateLimit),
		logger:   opts.Logger.With("provider", opts.Name),
		name:     opts.Name,
		timeout:  opts.Timeout,
	}
}

// Name returns the provider name.
func (s *Service) Name() string {
	return s.name
}

// Generate performs exactly one provider call. Waiting for the rate limiter
// counts against the same timeout as the call itself.
func (s *Service) Generate(ctx context.Context, req Request) (Response, error) {
	if req.Format == "" {
		req.Format = FormatText
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.limiter.wait(ctx); err != nil {
		return Response{}, err
	}

	start := time.Now()
	resp, err := s.provider.Generate(ctx, req)
	elapsed := time.Since(start)
	if err != nil {
		s.logger.Warn("text generation failed",
			"format", req.Format,
			"duration", elapsed,
			"error", err)
		return Response{}, fmt.Errorf("%s: %w", s.name, err)
	}

	resp, err = validate(req, resp)
	if err != nil {
		s.logger.Warn("unusable text generation reply",
			"format", req.Format,
			"error", err)
		return Response{}, fmt.Errorf("%s: %w", s.name, err)
	}

	s.logger.Debug("text generation completed",
		"format", req.Format,
		"duration", elapsed,
		"chars", len(resp.Text))
	return resp, nil
}

func validate(req Request, resp Response) (Response, error) {
	text := strings.TrimSpace(resp.Text)
	if text == "" {
		return Response{}, fmt.Errorf("%w: empty reply", ErrMalformedResponse)
	}

	if req.Format == FormatJSON {
		text = CleanJSON(text)
		if !json.Valid([]byte(text)) {
			return Response{}, fmt.Errorf("%w: reply is not valid JSON", ErrMalformedResponse)
		}
	}

	resp.Text = text
	return resp, nil
}
