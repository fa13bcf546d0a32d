// Package compliance evaluates a single classified transaction against the
// rule table. Evaluation is pure: no I/O and no state between calls.
package compliance

import (
	"fmt"
	"strconv"

	"github.com/Veraticus/regulaite/internal/model"
)

// RuleSource resolves the rule for a category. It must be total.
type RuleSource interface {
	Lookup(category model.Category) model.RuleEntry
}

// Evaluator checks transactions against an injected rule table.
type Evaluator struct {
	rules RuleSource
}

// NewEvaluator creates an evaluator over rules. A nil source has no rules.
func NewEvaluator(rules RuleSource) *Evaluator {
	return &Evaluator{rules: rules}
}

// Evaluate returns the verdict for txn. Only the single transaction is
// considered; amounts are never accumulated across calls.
func (e *Evaluator) Evaluate(txn model.TransactionRecord) model.ComplianceVerdict {
	var rule model.RuleEntry
	if e.rules != nil {
		rule = e.rules.Lookup(txn.Category)
	}

	verdict := model.ComplianceVerdict{
		Category:    txn.Category,
		Amount:      txn.Amount,
		AppliedRule: rule,
		Status:      model.StatusCompliant,
		GSTRelevant: rule.GSTRelevant,
	}

	if rule.HasWithholding() && txn.Amount >= rule.Threshold {
		withheld := WithholdingAmount(txn.Amount, rule.RatePercent)

		verdict.WithholdingRequired = true
		verdict.Status = model.StatusNonCompliant
		verdict.WithholdingAmount = withheld
		verdict.NetPayable = txn.Amount - withheld
		verdict.Issues = append(verdict.Issues, model.Issue{
			Kind:        model.IssueWithholding,
			Section:     rule.Section,
			RatePercent: rule.RatePercent,
			Reason: fmt.Sprintf("Amount %d exceeds withholding threshold of %d for Sec %s.",
				txn.Amount, rule.Threshold, rule.Section),
		})
	}

	if len(verdict.Issues) == 0 {
		verdict.Issues = []model.Issue{{Kind: model.IssueNone, Reason: model.NoActionReason}}
	}

	return verdict
}

// WithholdingAmount is the tax to deduct at ratePercent, truncated to whole
// currency units.
func WithholdingAmount(amount int64, ratePercent float64) int64 {
	if amount <= 0 || ratePercent <= 0 {
		return 0
	}
	// Rates carry at most two decimals, so basis points are exact.
	bps := int64(ratePercent*100 + 0.5)
	return amount/10000*bps + amount%10000*bps/10000
}

// FormatRate renders a rate percent without trailing zeros.
func FormatRate(ratePercent float64) string {
	return strconv.FormatFloat(ratePercent, 'f', -1, 64) + "%"
}
