package llm

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubProvider records calls and replies with fixed values.
type stubProvider struct {
	err      error
	block    chan struct{}
	reply    string
	requests []Request
	mu       sync.Mutex
}

func (s *stubProvider) Generate(ctx context.Context, req Request) (Response, error) {
	s.mu.Lock()
	s.requests = append(s.requests, req)
	s.mu.Unlock()

	if s.block != nil {
		select {
		case <-s.block:
		case <-ctx.Done():
			return Response{}, ctx.Err()
		}
	}
	if s.err != nil {
		return Response{}, s.err
	}
	return Response{Text: s.reply}, nil
}

func (s *stubProvider) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.requests)
}

func TestServiceGenerate(t *testing.T) {
	tests := []struct {
		name      string
		provider  *stubProvider
		req       Request
		want      string
		wantErr   error
		anyErrStr string
	}{
		{
			name:     "text reply is trimmed",
			provider: &stubProvider{reply: "  hello \n"},
			req:      Request{Prompt: "hi"},
			want:     "hello",
		},
		{
			name:     "json reply is unwrapped",
			provider: &stubProvider{reply: "```json\n{\"amount\": 5}\n```"},
			req:      Request{Prompt: "hi", Format: FormatJSON},
			want:     `{"amount": 5}`,
		},
		{
			name:     "empty reply is malformed",
			provider: &stubProvider{reply: "   "},
			req:      Request{Prompt: "hi"},
			wantErr:  ErrMalformedResponse,
		},
		{
			name:     "non json reply is malformed",
			provider: &stubProvider{reply: "I think it is rent"},
			req:      Request{Prompt: "hi", Format: FormatJSON},
			wantErr:  ErrMalformedResponse,
		},
		{
			name:      "provider error is wrapped",
			provider:  &stubProvider{err: errors.New("connection reset")},
			req:       Request{Prompt: "hi"},
			anyErrStr: "test: connection reset",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewService(tt.provider, ServiceOptions{Name: "test", Timeout: time.Second})
			resp, err := svc.Generate(context.Background(), tt.req)

			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			case tt.anyErrStr != "":
				require.Error(t, err)
				assert.Equal(t, tt.anyErrStr, err.Error())
			default:
				require.NoError(t, err)
				assert.Equal(t, tt.want, resp.Text)
			}
			assert.Equal(t, 1, tt.provider.calls())
		})
	}
}

func TestServiceDefaultsFormat(t *testing.T) {
	provider := &stubProvider{reply: "ok"}
	svc := NewService(provider, ServiceOptions{})
	assert.Equal(t, "llm", svc.Name())

	_, err := svc.Generate(context.Background(), Request{Prompt: "hi"})
	require.NoError(t, err)
	require.Len(t, provider.requests, 1)
	assert.Equal(t, FormatText, provider.requests[0].Format)
}

func TestServiceTimeout(t *testing.T) {
	provider := &stubProvider{block: make(chan struct{})}
	svc := NewService(provider, ServiceOptions{Timeout: 30 * time.Millisecond})

	start := time.Now()
	_, err := svc.Generate(context.Background(), Request{Prompt: "hi"})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), time.Second)
	assert.Equal(t, 1, provider.calls())
}

func TestServiceRateLimitWaitCountsAgainstTimeout(t *testing.T) {
	provider := &stubProvider{reply: "ok"}
	svc := NewService(provider, ServiceOptions{Timeout: 30 * time.Millisecond, RateLimit: 1})

	_, err := svc.Generate(context.Background(), Request{Prompt: "first"})
	require.NoError(t, err)

	_, err = svc.Generate(context.Background(), Request{Prompt: "second"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limiter canceled")
	assert.Equal(t, 1, provider.calls())
}

func TestNewRequiresAPIKey(t *testing.T) {
	svc, err := New(context.Background(), Config{Provider: "openai"}, nil)
	assert.Nil(t, svc)
	assert.ErrorIs(t, err, ErrServiceUnavailable)

	_, err = New(context.Background(), Config{Provider: "carrier-pigeon", APIKey: "k"}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported LLM provider")

	svc, err = New(context.Background(), Config{Provider: "OpenAI", APIKey: "k"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "openai", svc.Name())
}
