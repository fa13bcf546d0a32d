package model

// RuleEntry is the compliance rule for one category.
// An entry with an empty Section carries no withholding obligation.
type RuleEntry struct {
	Section     string  `json:"section,omitempty" yaml:"section,omitempty"`
	RatePercent float64 `json:"rate_percent,omitempty" yaml:"rate,omitempty"`
	Threshold   int64   `json:"threshold,omitempty" yaml:"threshold,omitempty"`
	GSTRelevant bool    `json:"gst_relevant" yaml:"gst"`
}

// HasWithholding reports whether the entry names a withholding section.
func (r RuleEntry) HasWithholding() bool {
	return r.Section != ""
}

// IsEmpty reports whether the entry imposes no obligation at all.
func (r RuleEntry) IsEmpty() bool {
	return r == RuleEntry{}
}

// ComplianceStatus is the overall verdict for a transaction.
type ComplianceStatus string

const (
	// StatusCompliant means no action is required.
	StatusCompliant ComplianceStatus = "Compliant"
	// StatusNonCompliant means at least one obligation was triggered.
	StatusNonCompliant ComplianceStatus = "Non-Compliant"
)

// IssueKind identifies what an Issue is about.
type IssueKind string

const (
	// IssueWithholding is raised when tax must be deducted at source.
	IssueWithholding IssueKind = "Withholding"
	// IssueNone is the sentinel recorded when nothing was triggered.
	IssueNone IssueKind = "None"
)

// NoActionReason is the reason text of the sentinel issue.
const NoActionReason = "No compliance action required"

// Issue describes one compliance finding.
type Issue struct {
	Kind        IssueKind `json:"type"`
	Section     string    `json:"section,omitempty"`
	Reason      string    `json:"reason"`
	RatePercent float64   `json:"rate,omitempty"`
}

// ComplianceVerdict is the evaluator's output for one transaction.
type ComplianceVerdict struct {
	Category            Category         `json:"transaction_type"`
	Status              ComplianceStatus `json:"compliance_status"`
	Issues              []Issue          `json:"issues"`
	AppliedRule         RuleEntry        `json:"applied_rule"`
	Amount              int64            `json:"amount"`
	WithholdingAmount   int64            `json:"withholding_amount,omitempty"`
	NetPayable          int64            `json:"net_payable,omitempty"`
	WithholdingRequired bool             `json:"tds_applicable"`
	GSTRelevant         bool             `json:"gst_applicable"`
}

// Section returns the section of the first withholding issue, if any.
func (v ComplianceVerdict) Section() string {
	for _, issue := range v.Issues {
		if issue.Kind == IssueWithholding {
			return issue.Section
		}
	}
	return ""
}
