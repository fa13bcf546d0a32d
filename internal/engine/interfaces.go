package engine

import (
	"context"

	"github.com/Veraticus/regulaite/internal/model"
)

// Classifier turns free text into a transaction record. It must not fail.
type Classifier interface {
	Classify(ctx context.Context, text string) model.TransactionRecord
}

// Evaluator checks a transaction record against the rule table.
type Evaluator interface {
	Evaluate(txn model.TransactionRecord) model.ComplianceVerdict
}

// Explainer describes a verdict in plain language. It must not fail.
type Explainer interface {
	Explain(ctx context.Context, verdict model.ComplianceVerdict) string
}
