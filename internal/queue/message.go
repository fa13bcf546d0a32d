// Package queue runs compliance checks submitted over AMQP.
package queue

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Veraticus/regulaite/internal/engine"
	"github.com/google/uuid"
)

// ErrMalformedMessage marks a delivery that can never be processed.
var ErrMalformedMessage = errors.New("malformed message")

// CheckRequest asks for one transaction text to be checked.
type CheckRequest struct {
	SubmittedAt time.Time `json:"submitted_at"`
	ID          string    `json:"id"`
	Text        string    `json:"text"`
}

// NewCheckRequest creates a request with a fresh ID.
func NewCheckRequest(text string) CheckRequest {
	return CheckRequest{
		ID:          uuid.NewString(),
		Text:        text,
		SubmittedAt: time.Now().UTC(),
	}
}

// ToJSON encodes the request.
func (r CheckRequest) ToJSON() ([]byte, error) {
	return json.Marshal(r)
}

// ParseCheckRequest decodes and validates a request body. A missing ID is
// replaced with a fresh one.
func ParseCheckRequest(body []byte) (CheckRequest, error) {
	var req CheckRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return CheckRequest{}, fmt.Errorf("%w: %w", ErrMalformedMessage, err)
	}
	if strings.TrimSpace(req.Text) == "" {
		return CheckRequest{}, fmt.Errorf("%w: text is empty", ErrMalformedMessage)
	}
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	return req, nil
}

// CheckResult carries the pipeline output for a request.
type CheckResult struct {
	CompletedAt time.Time     `json:"completed_at"`
	ID          string        `json:"id"`
	Result      engine.Result `json:"result"`
}

// ToJSON encodes the result.
func (r CheckResult) ToJSON() ([]byte, error) {
	return json.Marshal(r)
}
