package model

import "strings"

// Category is the closed set of transaction kinds the checker recognizes.
type Category string

const (
	// CategoryRent represents rent paid for premises or equipment.
	CategoryRent Category = "Rent"
	// CategoryContractor represents payments to contractors and labour.
	CategoryContractor Category = "Contractor"
	// CategoryProfessionalService represents consulting, legal, audit and similar fees.
	CategoryProfessionalService Category = "Professional Service"
	// CategoryPurchase represents purchases of goods.
	CategoryPurchase Category = "Purchase"
	// CategorySale represents sales and invoices raised.
	CategorySale Category = "Sale"
	// CategoryOther represents anything not matched by a detection rule.
	CategoryOther Category = "Other"
)

// Categories lists every category in detection order, Other last.
func Categories() []Category {
	return []Category{
		CategoryRent,
		CategoryContractor,
		CategoryProfessionalService,
		CategoryPurchase,
		CategorySale,
		CategoryOther,
	}
}

var categoryLabels = map[Category]string{
	CategoryRent:                "Rent Expense",
	CategoryContractor:          "Contract Expense",
	CategoryProfessionalService: "Professional Fees",
	CategoryPurchase:            "Purchase of Goods",
	CategorySale:                "Sales Revenue",
	CategoryOther:               "Uncategorized",
}

// LabelFor returns the accounting label for a category.
// Unknown categories get the Other label.
func LabelFor(c Category) string {
	if label, ok := categoryLabels[c]; ok {
		return label
	}
	return categoryLabels[CategoryOther]
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	_, ok := categoryLabels[c]
	return ok
}

func (c Category) String() string {
	return string(c)
}

// ParseCategory resolves a category name case-insensitively.
// Both "Professional Service" and "ProfessionalService" are accepted.
func ParseCategory(s string) (Category, bool) {
	normalized := strings.ToLower(strings.Join(strings.Fields(s), ""))
	for _, c := range Categories() {
		if strings.ToLower(strings.ReplaceAll(string(c), " ", "")) == normalized {
			return c, true
		}
	}
	return "", false
}
