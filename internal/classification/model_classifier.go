package classification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"github.com/Veraticus/regulaite/internal/common"
	"github.com/Veraticus/regulaite/internal/llm"
	"github.com/Veraticus/regulaite/internal/model"
)

const classifySystemPrompt = `You extract structured data from short financial transaction descriptions written by small Indian businesses.
Classify the transaction into exactly one transaction_type and report the amount in rupees as a whole number (0 if no amount is stated).
Do not guess amounts that are not written in the text.`

// ModelClassifier delegates extraction to a text-generation service and uses
// fallback whenever the service cannot produce a usable answer.
type ModelClassifier struct {
	generator llm.Generator
	fallback  Classifier
	logger    *slog.Logger
}

// NewModelClassifier creates a model-backed classifier.
func NewModelClassifier(generator llm.Generator, fallback Classifier, logger *slog.Logger) *ModelClassifier {
	if fallback == nil {
		fallback = NewDefaultPatternClassifier()
	}
	return &ModelClassifier{
		generator: generator,
		fallback:  fallback,
		logger:    common.OrDefault(logger),
	}
}

// Classify asks the model and falls back on any error.
func (mc *ModelClassifier) Classify(ctx context.Context, text string) model.TransactionRecord {
	if mc.generator == nil {
		return mc.fallback.Classify(ctx, text)
	}

	resp, err := mc.generator.Generate(ctx, llm.Request{
		System: classifySystemPrompt,
		Prompt: "Transaction: " + text,
		Format: llm.FormatJSON,
		Schema: classifySchema(),
	})
	if err != nil {
		mc.logFallback(err)
		return mc.fallback.Classify(ctx, text)
	}

	record, err := parseModelRecord(resp.Text, text)
	if err != nil {
		mc.logFallback(err)
		return mc.fallback.Classify(ctx, text)
	}
	return record
}

func (mc *ModelClassifier) logFallback(err error) {
	level := slog.LevelWarn
	if errors.Is(err, llm.ErrServiceUnavailable) {
		level = slog.LevelDebug
	}
	mc.logger.Log(context.Background(), level, "model classification failed, using patterns", "error", err)
}

func classifySchema() []llm.Field {
	names := make([]string, 0, len(model.Categories()))
	for _, c := range model.Categories() {
		names = append(names, string(c))
	}
	return []llm.Field{
		{Name: "transaction_type", Description: "kind of transaction", Enum: names},
		{Name: "amount", Type: "integer", Description: "transaction amount in rupees"},
		{Name: "category", Description: "short accounting label"},
	}
}

type modelReply struct {
	TransactionType string          `json:"transaction_type"`
	Category        string          `json:"category"`
	Amount          json.RawMessage `json:"amount"`
}

// parseModelRecord validates a model reply. The label is always derived
// from the category; the model's own label is ignored.
func parseModelRecord(reply, rawText string) (model.TransactionRecord, error) {
	var parsed modelReply
	if err := json.Unmarshal([]byte(llm.CleanJSON(reply)), &parsed); err != nil {
		return model.TransactionRecord{}, fmt.Errorf("%w: %w", llm.ErrMalformedResponse, err)
	}

	category, ok := model.ParseCategory(parsed.TransactionType)
	if !ok {
		return model.TransactionRecord{}, fmt.Errorf("%w: unknown transaction_type %q", llm.ErrMalformedResponse, parsed.TransactionType)
	}

	amount, err := parseModelAmount(parsed.Amount)
	if err != nil {
		return model.TransactionRecord{}, err
	}

	return model.NewTransactionRecord(category, amount, rawText), nil
}

// parseModelAmount accepts a JSON number, a numeric string, or null.
func parseModelAmount(raw json.RawMessage) (int64, error) {
	s := strings.TrimSpace(string(raw))
	if s == "" || s == "null" {
		return 0, nil
	}

	if unquoted, err := strconv.Unquote(s); err == nil {
		s = strings.ReplaceAll(strings.TrimSpace(unquoted), ",", "")
		if s == "" {
			return 0, nil
		}
	}

	value, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, fmt.Errorf("%w: amount %s is not a number", llm.ErrMalformedResponse, string(raw))
	}
	if value < 0 || value >= math.MaxInt64 {
		return 0, fmt.Errorf("%w: amount %s out of range", llm.ErrMalformedResponse, string(raw))
	}
	return int64(value), nil
}
