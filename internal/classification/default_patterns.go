package classification

import "github.com/Veraticus/regulaite/internal/model"

// DefaultPatterns returns the detection rules in the order they are tried.
// Rent is matched as a whole word and must precede the contractor rule so
// that "rent contract" is treated as rent.
func DefaultPatterns() []Pattern {
	return []Pattern{
		{
			Name:     "Rent",
			Category: model.CategoryRent,
			Regex:    `\brent\b`,
			Priority: 100,
		},
		{
			Name:     "Contract Work",
			Category: model.CategoryContractor,
			Regex:    `contract|labour|construction|work order`,
			Priority: 90,
		},
		{
			Name:     "Professional Fees",
			Category: model.CategoryProfessionalService,
			Regex:    `consult|professional|fee|legal|audit`,
			Priority: 80,
		},
		{
			Name:     "Goods Purchase",
			Category: model.CategoryPurchase,
			Regex:    `purchase|bought|buy|procure`,
			Priority: 70,
		},
		{
			Name:     "Sales",
			Category: model.CategorySale,
			Regex:    `sale|sold|invoice`,
			Priority: 60,
		},
	}
}
