package model

import "strings"

// Category classifies a match by the genders on court.
type Category int

const (
	CategoryUndefined Category = iota
	CategoryMens
	CategoryMixed
	CategoryImbalancedMixed
	CategoryLadies
)

// Categories lists the rateable categories in report order.
var Categories = []Category{CategoryMens, CategoryMixed, CategoryImbalancedMixed, CategoryLadies}

func (c Category) String() string {
	switch c {
	case CategoryMens:
		return "Mens"
	case CategoryMixed:
		return "Mixed"
	case CategoryImbalancedMixed:
		return "Imbalanced Mixed"
	case CategoryLadies:
		return "Ladies"
	default:
		return "Undefined"
	}
}

// Slug is the lower-case, underscore form used in partition names.
func (c Category) Slug() string {
	return strings.ReplaceAll(strings.ToLower(c.String()), " ", "_")
}

// ParseCategory accepts a category name in any case or spacing ("MIXED",
// "imbalanced_mixed") or a four-letter gender code such as "LMLM".
func ParseCategory(s string) Category {
	norm := strings.ToLower(strings.TrimSpace(s))
	norm = strings.NewReplacer("_", " ", "-", " ").Replace(norm)
	for _, c := range Categories {
		if norm == strings.ToLower(c.String()) {
			return c
		}
	}
	return fromGenderCode(strings.ToUpper(strings.TrimSpace(s)))
}

// fromGenderCode maps a court layout (winner pair then loser pair) to a category.
func fromGenderCode(code string) Category {
	if len(code) != 4 || strings.Trim(code, "LM") != "" {
		return CategoryUndefined
	}
	switch code {
	case "MMMM":
		return CategoryMens
	case "LLLL":
		return CategoryLadies
	case "LMLM", "MLML":
		return CategoryMixed
	}
	return CategoryImbalancedMixed
}
