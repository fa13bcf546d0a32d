// Package engine runs the compliance pipeline: classify, evaluate, explain.
package engine

import (
	"context"
	"log/slog"
	"time"

	"github.com/Veraticus/regulaite/internal/common"
	"github.com/Veraticus/regulaite/internal/model"
	"github.com/google/uuid"
)

// Result is the combined output of one pipeline run.
type Result struct {
	ID          string                  `json:"id"`
	Explanation string                  `json:"explanation"`
	Transaction model.TransactionRecord `json:"transaction"`
	Compliance  model.ComplianceVerdict `json:"compliance"`
}

// Engine sequences the pipeline stages. It holds no per-run state and is
// safe for concurrent use when its stages are.
type Engine struct {
	classifier Classifier
	evaluator  Evaluator
	explainer  Explainer
	logger     *slog.Logger
}

// New creates an engine from its stages.
func New(classifier Classifier, evaluator Evaluator, explainer Explainer, logger *slog.Logger) *Engine {
	return &Engine{
		classifier: classifier,
		evaluator:  evaluator,
		explainer:  explainer,
		logger:     common.OrDefault(logger),
	}
}

// Run classifies text, evaluates it and explains the verdict. Every stage
// runs exactly once and Run always returns a complete result.
func (e *Engine) Run(ctx context.Context, text string) Result {
	result := e.Assess(ctx, text)

	start := time.Now()
	result.Explanation = e.explainer.Explain(ctx, result.Compliance)
	e.logger.Debug("explanation generated",
		"id", result.ID,
		"duration", time.Since(start))

	return result
}

// Assess runs classification and evaluation only, leaving Explanation empty.
func (e *Engine) Assess(ctx context.Context, text string) Result {
	id := uuid.NewString()

	txn := e.classifier.Classify(ctx, text)
	e.logger.Debug("transaction classified",
		"id", id,
		"category", txn.Category,
		"amount", txn.Amount)

	verdict := e.evaluator.Evaluate(txn)
	e.logger.Info("compliance evaluated",
		"id", id,
		"category", txn.Category,
		"amount", txn.Amount,
		"status", verdict.Status,
		"section", verdict.Section())

	return Result{
		ID:          id,
		Transaction: txn,
		Compliance:  verdict,
	}
}
