package explain

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/Veraticus/regulaite/internal/compliance"
	"github.com/Veraticus/regulaite/internal/model"
)

var bulletRegex = regexp.MustCompile(`^\s*(?:[-*•]|\d+[.)])\s+(.+)$`)

// ParseActions pulls bullet or numbered lines out of generated prose.
func ParseActions(explanation string) []string {
	if IsFallback(explanation) {
		return nil
	}

	var actions []string
	for _, line := range strings.Split(explanation, "\n") {
		m := bulletRegex.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		action := strings.TrimSpace(strings.Trim(m[1], "*"))
		if action != "" {
			actions = append(actions, action)
		}
	}
	return actions
}

// SuggestedActions returns fixed next steps for a verdict. It is used when
// no explanation prose is available to derive actions from.
func SuggestedActions(verdict model.ComplianceVerdict, counterparty string) []string {
	if counterparty == "" {
		counterparty = "the payee"
	}

	var actions []string
	if verdict.WithholdingRequired {
		rule := verdict.AppliedRule
		actions = append(actions,
			fmt.Sprintf("Deduct TDS of %s (%s) under Sec %s from the bill.",
				FormatRupees(verdict.WithholdingAmount), compliance.FormatRate(rule.RatePercent), rule.Section),
			fmt.Sprintf("Pay only %s to %s.", FormatRupees(verdict.NetPayable), counterparty),
			"Deposit the deducted TDS to the government by the 7th of next month.",
			"Issue the TDS certificate to the vendor after filing returns.",
		)
	} else {
		actions = append(actions,
			"No TDS deduction is required for this transaction.",
			fmt.Sprintf("Pay the full amount of %s to %s.", FormatRupees(verdict.Amount), counterparty),
		)
	}

	if verdict.GSTRelevant {
		actions = append(actions, "Check that the invoice carries the correct GST details.")
	}
	return actions
}

// FormatRupees renders an amount with Indian digit grouping, e.g. ₹2,50,000.
func FormatRupees(amount int64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}

	digits := fmt.Sprintf("%d", amount)
	if len(digits) <= 3 {
		return "₹" + sign + digits
	}

	head, tail := digits[:len(digits)-3], digits[len(digits)-3:]
	var groups []string
	for len(head) > 2 {
		groups = append([]string{head[len(head)-2:]}, groups...)
		head = head[:len(head)-2]
	}
	groups = append([]string{head}, groups...)
	return "₹" + sign + strings.Join(groups, ",") + "," + tail
}
