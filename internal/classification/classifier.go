// Package classification turns free-text transaction descriptions into
// structured transaction records.
//
// Two strategies share the Classifier interface: PatternClassifier applies
// ordered keyword rules, and ModelClassifier asks a text-generation service
// and falls back to another Classifier on any failure. Neither ever fails.
package classification

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Veraticus/regulaite/internal/common"
	"github.com/Veraticus/regulaite/internal/llm"
	"github.com/Veraticus/regulaite/internal/model"
)

// Strategy names accepted by New.
const (
	StrategyPattern = "pattern"
	StrategyModel   = "model"
)

// Classifier turns text into a transaction record.
type Classifier interface {
	Classify(ctx context.Context, text string) model.TransactionRecord
}

// New builds the classifier for strategy. The model strategy without a
// generator degrades to the pattern strategy.
func New(strategy string, generator llm.Generator, logger *slog.Logger) (Classifier, error) {
	logger = common.OrDefault(logger)
	patterns := NewDefaultPatternClassifier()
	logger.Debug("pattern classifier ready", "patterns", patterns.PatternCount())

	switch strings.ToLower(strategy) {
	case "", StrategyPattern:
		return patterns, nil
	case StrategyModel:
		if generator == nil {
			logger.Warn("model classifier requested without a text generation service, using patterns")
			return patterns, nil
		}
		return NewModelClassifier(generator, patterns, logger), nil
	default:
		return nil, fmt.Errorf("unknown classifier strategy: %s", strategy)
	}
}
