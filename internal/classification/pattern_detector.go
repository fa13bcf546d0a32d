package classification

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/Veraticus/regulaite/internal/model"
)

// Pattern is one category detection rule.
type Pattern struct {
	Name     string
	Category model.Category
	Regex    string
	Priority int // Higher priority patterns are checked first
}

// compiledPattern holds a compiled regex pattern with metadata.
type compiledPattern struct {
	regex *regexp.Regexp
	Pattern
}

// PatternClassifier is the deterministic classification strategy. It is
// immutable after construction and safe for concurrent use.
type PatternClassifier struct {
	patterns []compiledPattern
}

// NewPatternClassifier compiles patterns and orders them by priority. Ties
// keep their given order.
func NewPatternClassifier(patterns []Pattern) (*PatternClassifier, error) {
	compiled := make([]compiledPattern, 0, len(patterns))

	for _, p := range patterns {
		if !p.Category.Valid() {
			return nil, fmt.Errorf("pattern %s has unknown category %q", p.Name, p.Category)
		}

		regexStr := p.Regex
		if !strings.HasPrefix(regexStr, "(?i)") {
			regexStr = "(?i)" + regexStr
		}

		regex, err := regexp.Compile(regexStr)
		if err != nil {
			return nil, fmt.Errorf("failed to compile pattern %s: %w", p.Name, err)
		}

		compiled = append(compiled, compiledPattern{Pattern: p, regex: regex})
	}

	sort.SliceStable(compiled, func(i, j int) bool {
		return compiled[i].Priority > compiled[j].Priority
	})

	return &PatternClassifier{patterns: compiled}, nil
}

// NewDefaultPatternClassifier returns a classifier using DefaultPatterns.
func NewDefaultPatternClassifier() *PatternClassifier {
	pc, err := NewPatternClassifier(DefaultPatterns())
	if err != nil {
		panic(fmt.Sprintf("default patterns are invalid: %v", err))
	}
	return pc
}

// Detect returns the category of the first matching pattern, or Other.
func (pc *PatternClassifier) Detect(text string) model.Category {
	lowered := strings.ToLower(text)
	for _, p := range pc.patterns {
		if p.regex.MatchString(lowered) {
			return p.Category
		}
	}
	return model.CategoryOther
}

// Classify detects the category and amount of text. It never fails.
func (pc *PatternClassifier) Classify(_ context.Context, text string) model.TransactionRecord {
	return model.NewTransactionRecord(pc.Detect(text), ExtractAmount(text), text)
}

// PatternCount returns the number of loaded patterns.
func (pc *PatternClassifier) PatternCount() int {
	return len(pc.patterns)
}
