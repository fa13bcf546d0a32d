package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/Veraticus/regulaite/internal/compliance"
	"github.com/Veraticus/regulaite/internal/engine"
	"github.com/Veraticus/regulaite/internal/explain"
	"github.com/Veraticus/regulaite/internal/model"
	"github.com/Veraticus/regulaite/internal/rules"
	"github.com/charmbracelet/lipgloss"
)

// StatusBadge renders a verdict status in its color.
func StatusBadge(status model.ComplianceStatus) string {
	if status == model.StatusNonCompliant {
		return ErrorStyle.Render(ErrorIcon + " " + string(status))
	}
	return SuccessStyle.Render(SuccessIcon + " " + string(status))
}

func field(label, value string) string {
	return lipgloss.JoinHorizontal(lipgloss.Top, LabelStyle.Render(label), value)
}

// RenderResult renders one pipeline result as a box.
func RenderResult(res engine.Result) string {
	txn, v := res.Transaction, res.Compliance

	lines := []string{
		field("Status", StatusBadge(v.Status)),
		field("Type", string(txn.Category)),
		field("Category", txn.Label),
		field("Amount", explain.FormatRupees(txn.Amount)),
		field("GST", yesNo(v.GSTRelevant)),
	}

	if v.WithholdingRequired {
		lines = append(lines,
			field("TDS", fmt.Sprintf("Sec %s at %s", v.AppliedRule.Section, compliance.FormatRate(v.AppliedRule.RatePercent))),
			field("Deduct", explain.FormatRupees(v.WithholdingAmount)),
			field("Net payable", explain.FormatRupees(v.NetPayable)),
		)
	}

	lines = append(lines, "")
	for _, issue := range v.Issues {
		lines = append(lines, issueLine(issue))
	}

	if res.Explanation != "" {
		explanation := res.Explanation
		if explain.IsFallback(explanation) {
			explanation = SubtleStyle.Render(explanation)
		}
		lines = append(lines, "", BoldStyle.Render("Explanation"), explanation)
	}

	return RenderBox("Compliance check "+SubtleStyle.Render(shortID(res.ID)), strings.Join(lines, "\n"))
}

func issueLine(issue model.Issue) string {
	if issue.Kind == model.IssueWithholding {
		return WarningStyle.Render(WarningIcon + " " + issue.Reason)
	}
	return SuccessStyle.Render(SuccessIcon + " " + issue.Reason)
}

// BatchRow is one entry of a batch check.
type BatchRow struct {
	Entry  model.StatementEntry
	Result engine.Result
}

// RenderBatch writes a table of batch results followed by a status count.
func RenderBatch(w io.Writer, rows []BatchRow) error {
	header := fmt.Sprintf("%-12s %-22s %14s %-16s %s", "DATE", "TYPE", "AMOUNT", "STATUS", "DESCRIPTION")
	if _, err := fmt.Fprintln(w, TableHeaderStyle.Render(header)); err != nil {
		return err
	}

	flagged := 0
	for _, row := range rows {
		v := row.Result.Compliance
		status := string(v.Status)
		if v.WithholdingRequired {
			flagged++
			status = fmt.Sprintf("TDS %s", v.AppliedRule.Section)
		}

		date := ""
		if !row.Entry.Date.IsZero() {
			date = row.Entry.Date.Format("2006-01-02")
		}

		line := fmt.Sprintf("%-12s %-22s %14s %-16s %s",
			date,
			row.Result.Transaction.Category,
			explain.FormatRupees(row.Result.Transaction.Amount),
			status,
			truncate(row.Entry.Description, 48))
		if v.WithholdingRequired {
			line = WarningStyle.Render(line)
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}

	summary := fmt.Sprintf("%d checked, %d need TDS deduction", len(rows), flagged)
	if flagged > 0 {
		summary = FormatWarning(summary)
	} else {
		summary = FormatSuccess(summary)
	}
	_, err := fmt.Fprintln(w, "\n"+summary)
	return err
}

// RenderRules writes the rule table.
func RenderRules(w io.Writer, table *rules.Table) error {
	if _, err := fmt.Fprintln(w, FormatTitle("Rule table ("+table.Source()+")")); err != nil {
		return err
	}

	header := fmt.Sprintf("%-22s %-9s %-6s %14s %s", "CATEGORY", "SECTION", "RATE", "THRESHOLD", "GST")
	if _, err := fmt.Fprintln(w, TableHeaderStyle.Render(header)); err != nil {
		return err
	}

	for _, row := range table.Entries() {
		section, rate, threshold := "-", "-", "-"
		if row.Rule.HasWithholding() {
			section = row.Rule.Section
			rate = compliance.FormatRate(row.Rule.RatePercent)
			threshold = explain.FormatRupees(row.Rule.Threshold)
		}
		if _, err := fmt.Fprintf(w, "%-22s %-9s %-6s %14s %s\n",
			row.Category, section, rate, threshold, yesNo(row.Rule.GSTRelevant)); err != nil {
			return err
		}
	}
	return nil
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-1]) + "…"
}
