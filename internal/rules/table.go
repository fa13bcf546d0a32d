// Package rules holds the regulatory parameters applied to each transaction category.
//
// A Table is built once at start-up, either from the built-in defaults or from a
// YAML file, and is read-only afterwards. It is safe for concurrent use.
package rules

import (
	"fmt"
	"os"
	"sort"

	"github.com/Veraticus/regulaite/internal/common"
	"github.com/Veraticus/regulaite/internal/config"
	"github.com/Veraticus/regulaite/internal/model"
	"gopkg.in/yaml.v3"
)

// Table maps categories to their compliance rules.
type Table struct {
	entries map[model.Category]model.RuleEntry
	source  string
}

// Default returns the built-in rule table.
func Default() *Table {
	return &Table{
		source: "built-in",
		entries: map[model.Category]model.RuleEntry{
			model.CategoryRent: {
				Section:     "194I",
				RatePercent: 10,
				Threshold:   240000,
				GSTRelevant: false,
			},
			model.CategoryProfessionalService: {
				Section:     "194J",
				RatePercent: 10,
				Threshold:   30000,
				GSTRelevant: true,
			},
			model.CategoryContractor: {
				Section:     "194C",
				RatePercent: 2,
				Threshold:   30000,
				GSTRelevant: true,
			},
			model.CategoryPurchase: {GSTRelevant: true},
			model.CategorySale:     {GSTRelevant: true},
			model.CategoryOther:    {},
		},
	}
}

// New builds a table from explicit entries. Categories missing from entries
// resolve to an empty rule.
func New(entries map[model.Category]model.RuleEntry) (*Table, error) {
	t := &Table{
		source:  "custom",
		entries: make(map[model.Category]model.RuleEntry, len(entries)),
	}
	for category, entry := range entries {
		if !category.Valid() {
			return nil, fmt.Errorf("%w: unknown category %q", common.ErrInvalidConfig, category)
		}
		if err := validateEntry(category, entry); err != nil {
			return nil, err
		}
		t.entries[category] = entry
	}
	return t, nil
}

// Lookup returns the rule for a category. Unknown categories get an empty entry.
func (t *Table) Lookup(category model.Category) model.RuleEntry {
	if t == nil {
		return model.RuleEntry{}
	}
	return t.entries[category]
}

// Source describes where the table was loaded from.
func (t *Table) Source() string {
	if t == nil {
		return ""
	}
	return t.source
}

// Row is a single category/rule pair used for listing.
type Row struct {
	Category model.Category  `json:"category"`
	Rule     model.RuleEntry `json:"rule"`
}

// Entries returns every known category with its rule, in detection order.
func (t *Table) Entries() []Row {
	rows := make([]Row, 0, len(model.Categories()))
	for _, category := range model.Categories() {
		rows = append(rows, Row{Category: category, Rule: t.Lookup(category)})
	}
	return rows
}

type fileFormat struct {
	Rules map[string]model.RuleEntry `yaml:"rules"`
}

// LoadFile reads a YAML rule table from disk.
//
// The file has a single top-level "rules" mapping keyed by category name:
//
//	rules:
//	  Rent:
//	    section: 194I
//	    rate: 10
//	    threshold: 240000
//	    gst: false
func LoadFile(path string) (*Table, error) {
	path = config.ExpandPath(path)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rule table: %w", err)
	}

	t, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to load rule table %s: %w", path, err)
	}
	t.source = path
	return t, nil
}

// Parse decodes a YAML rule table.
func Parse(data []byte) (*Table, error) {
	var f fileFormat
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrInvalidConfig, err)
	}
	if len(f.Rules) == 0 {
		return nil, fmt.Errorf("%w: no rules defined", common.ErrInvalidConfig)
	}

	names := make([]string, 0, len(f.Rules))
	for name := range f.Rules {
		names = append(names, name)
	}
	sort.Strings(names)

	entries := make(map[model.Category]model.RuleEntry, len(f.Rules))
	for _, name := range names {
		category, ok := model.ParseCategory(name)
		if !ok {
			return nil, fmt.Errorf("%w: unknown category %q", common.ErrInvalidConfig, name)
		}
		if _, dup := entries[category]; dup {
			return nil, fmt.Errorf("%w: category %q defined twice", common.ErrInvalidConfig, category)
		}
		entries[category] = f.Rules[name]
	}

	return New(entries)
}

func validateEntry(category model.Category, entry model.RuleEntry) error {
	switch {
	case entry.Threshold < 0:
		return fmt.Errorf("%w: %s threshold must not be negative", common.ErrInvalidConfig, category)
	case entry.RatePercent < 0 || entry.RatePercent > 100:
		return fmt.Errorf("%w: %s rate must be between 0 and 100", common.ErrInvalidConfig, category)
	case entry.Section == "" && (entry.RatePercent != 0 || entry.Threshold != 0):
		return fmt.Errorf("%w: %s has a rate or threshold without a section", common.ErrInvalidConfig, category)
	}
	return nil
}
