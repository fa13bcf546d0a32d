package statement

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"

	"github.com/Veraticus/regulaite/internal/common"
	"github.com/Veraticus/regulaite/internal/model"
	"github.com/aclindsa/ofxgo"
)

var (
	severityRegex = regexp.MustCompile(`(?i)<SEVERITY>(Info|Warn|Error)</SEVERITY>`)
	// An SGML opening tag alone on a line with its closing bracket missing.
	unclosedTagRegex = regexp.MustCompile(`(?m)^(\s*<[A-Z][A-Z0-9._]*[A-Z0-9])$`)
)

var cardPrefixes = []string{
	"POS PURCHASE ",
	"PURCHASE AUTHORIZED ON ",
	"DEBIT CARD PURCHASE ",
	"ACH DEBIT ",
	"NEFT DR ",
	"IMPS ",
	"UPI/",
}

// OFXReader reads OFX/QFX bank and credit card statements.
type OFXReader struct {
	logger *slog.Logger
}

// NewOFXReader creates an OFX reader.
func NewOFXReader(logger *slog.Logger) *OFXReader {
	return &OFXReader{logger: common.OrDefault(logger)}
}

func preprocessOFX(content string) string {
	content = strings.TrimLeft(content, " \t\r\n")
	content = severityRegex.ReplaceAllStringFunc(content, strings.ToUpper)
	return unclosedTagRegex.ReplaceAllString(content, "$1>")
}

// Read parses every bank and credit card transaction in r.
func (o *OFXReader) Read(ctx context.Context, r io.Reader) ([]model.StatementEntry, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read OFX file: %w", err)
	}

	resp, err := ofxgo.ParseResponse(strings.NewReader(preprocessOFX(string(content))))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse OFX file: %w", common.ErrUnsupportedFormat, err)
	}

	var entries []model.StatementEntry
	for _, msg := range resp.Bank {
		if stmt, ok := msg.(*ofxgo.StatementResponse); ok && stmt.BankTranList != nil {
			entries = append(entries, convertAll(stmt.BankTranList.Transactions)...)
		}
	}
	for _, msg := range resp.CreditCard {
		if stmt, ok := msg.(*ofxgo.CCStatementResponse); ok && stmt.BankTranList != nil {
			entries = append(entries, convertAll(stmt.BankTranList.Transactions)...)
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	o.logger.Info("parsed OFX statement",
		"entries", len(entries),
		"bank_statements", len(resp.Bank),
		"card_statements", len(resp.CreditCard))

	return entries, nil
}

func convertAll(txns []ofxgo.Transaction) []model.StatementEntry {
	entries := make([]model.StatementEntry, 0, len(txns))
	for _, tx := range txns {
		entries = append(entries, convertTransaction(tx))
	}
	return entries
}

// convertTransaction keeps the absolute amount; debits are negative in OFX.
func convertTransaction(tx ofxgo.Transaction) model.StatementEntry {
	amount, _ := tx.TrnAmt.Float64()
	if amount < 0 {
		amount = -amount
	}

	return model.StatementEntry{
		ID:          string(tx.FiTID),
		Date:        tx.DtPosted.Time,
		Description: describe(tx),
		Amount:      int64(amount),
	}
}

// describe builds a description from payee, name and memo, dropping card
// network prefixes that carry no meaning for classification.
func describe(tx ofxgo.Transaction) string {
	name := strings.TrimSpace(string(tx.Name))
	if tx.Payee != nil && tx.Payee.Name != "" {
		name = strings.TrimSpace(string(tx.Payee.Name))
	}

	for _, prefix := range cardPrefixes {
		if strings.HasPrefix(strings.ToUpper(name), prefix) {
			name = strings.TrimSpace(name[len(prefix):])
			break
		}
	}

	memo := strings.TrimSpace(string(tx.Memo))
	switch {
	case memo == "" || strings.EqualFold(memo, name):
		return name
	case name == "":
		return memo
	default:
		return name + " " + memo
	}
}
