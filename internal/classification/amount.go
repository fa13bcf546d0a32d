package classification

import (
	"regexp"
	"strconv"
	"strings"
)

const (
	fallbackMin = 100
	fallbackMax = 10_000_000
)

var (
	// A number directly after a currency symbol or an amount keyword. Numbers
	// never end on a separator, so "2024," is the token "2024".
	markedAmountRegex = regexp.MustCompile(`(?:₹|\$|€|£|\b(?:rs|inr|amt|amount|of)\b\.?)\s*:?\s*(\d(?:[\d,]*\d)?(?:\.\d+)?)`)
	numberRegex       = regexp.MustCompile(`\d(?:[\d,]*\d)?(?:\.\d+)?`)
	yearRegex         = regexp.MustCompile(`^(?:19|20)\d{2}$`)
)

// ExtractAmount finds the transaction amount in free text.
//
// A number following a currency marker or keyword wins. Otherwise the first
// number strictly between 100 and 10,000,000 is used, skipping bare four digit
// years. Thousands separators are ignored and decimals truncated. No match
// yields 0.
func ExtractAmount(text string) int64 {
	lowered := strings.ToLower(text)

	if m := markedAmountRegex.FindStringSubmatch(lowered); m != nil {
		if amount, ok := parseAmount(m[1]); ok {
			return amount
		}
	}

	for _, token := range numberRegex.FindAllString(lowered, -1) {
		if yearRegex.MatchString(token) {
			continue
		}
		amount, ok := parseAmount(token)
		if ok && amount > fallbackMin && amount < fallbackMax {
			return amount
		}
	}
	return 0
}

// parseAmount converts "2,50,000.75" into 250000.
func parseAmount(token string) (int64, bool) {
	cleaned := strings.ReplaceAll(token, ",", "")
	if whole, _, found := strings.Cut(cleaned, "."); found {
		cleaned = whole
	}
	if cleaned == "" {
		return 0, false
	}

	value, err := strconv.ParseInt(cleaned, 10, 64)
	if err != nil || value < 0 {
		return 0, false
	}
	return value, true
}
