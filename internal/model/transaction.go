// Package model defines the value objects that flow through the compliance pipeline.
package model

import (
	"fmt"
	"time"
)

// TransactionRecord is the structured result of classifying a free-text description.
type TransactionRecord struct {
	Category Category `json:"transaction_type"`
	Label    string   `json:"category"`
	RawText  string   `json:"raw_text"`
	Amount   int64    `json:"amount"`
}

// NewTransactionRecord builds a record whose label is derived from the category.
func NewTransactionRecord(category Category, amount int64, rawText string) TransactionRecord {
	if !category.Valid() {
		category = CategoryOther
	}
	if amount < 0 {
		amount = 0
	}
	return TransactionRecord{
		Category: category,
		Amount:   amount,
		Label:    LabelFor(category),
		RawText:  rawText,
	}
}

// StatementEntry is a single line read from a bank statement or a plain-text batch file.
type StatementEntry struct {
	Date        time.Time `json:"date,omitempty"`
	ID          string    `json:"id"`
	Description string    `json:"description"`
	Amount      int64     `json:"amount"`
}

// Text is the classifier input for the entry. A known amount is appended
// with the "amount" keyword so extraction picks it up.
func (e StatementEntry) Text() string {
	if e.Amount <= 0 {
		return e.Description
	}
	return fmt.Sprintf("%s amount %d", e.Description, e.Amount)
}
