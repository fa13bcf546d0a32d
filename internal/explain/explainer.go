// Package explain turns compliance verdicts into plain-language guidance.
package explain

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Veraticus/regulaite/internal/common"
	"github.com/Veraticus/regulaite/internal/llm"
	"github.com/Veraticus/regulaite/internal/model"
)

// UnavailableMessage is returned verbatim when no text generation service is configured.
const UnavailableMessage = "Explanation unavailable: no text generation service is configured."

const failurePrefix = "Explanation generation failed: "

const systemPrompt = "You are a tax compliance assistant for Indian MSMEs."

const promptTemplate = `Explain the compliance result below in SIMPLE and CLEAR English.
Do not invent laws.
Do not give legal advice.
Only explain what is present.

Compliance data:
%s

Output format:
- Short explanation
- Applicable section (if any)
- Suggested next action`

// Explainer produces explanations through an optional generator.
type Explainer struct {
	generator llm.Generator
	logger    *slog.Logger
}

// New creates an Explainer. A nil generator makes every call return
// UnavailableMessage.
func New(generator llm.Generator, logger *slog.Logger) *Explainer {
	return &Explainer{generator: generator, logger: common.OrDefault(logger)}
}

// Explain describes verdict. It makes at most one generator call and never
// fails: problems are reported in the returned text.
func (e *Explainer) Explain(ctx context.Context, verdict model.ComplianceVerdict) string {
	if e.generator == nil {
		return UnavailableMessage
	}

	prompt, err := BuildPrompt(verdict)
	if err != nil {
		return failurePrefix + err.Error()
	}

	resp, err := e.generator.Generate(ctx, llm.Request{
		System: systemPrompt,
		Prompt: prompt,
		Format: llm.FormatText,
	})
	switch {
	case errors.Is(err, llm.ErrServiceUnavailable):
		return UnavailableMessage
	case err != nil:
		e.logger.Warn("explanation generation failed", "error", err)
		return failurePrefix + err.Error()
	}

	text := strings.TrimSpace(resp.Text)
	if text == "" {
		e.logger.Warn("explanation generation returned no text")
		return failurePrefix + llm.ErrMalformedResponse.Error()
	}
	return text
}

// BuildPrompt renders the instruction template with the verdict embedded as JSON.
func BuildPrompt(verdict model.ComplianceVerdict) (string, error) {
	data, err := json.MarshalIndent(verdict, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode verdict: %w", err)
	}
	return fmt.Sprintf(promptTemplate, data), nil
}

// IsFallback reports whether text is one of the fixed fallback strings
// rather than generated prose.
func IsFallback(text string) bool {
	return text == UnavailableMessage || strings.HasPrefix(text, failurePrefix)
}
