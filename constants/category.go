package constants

import (
	"strings"
)

type Category string

const (
	Electricity Category = "electricity"
	Water       Category = "water"
	Gas         Category = "gas"
	Internet    Category = "internet"
	HOA         Category = "hoa"
	CreditCard  Category = "credit_card"
	Other       Category = "other"
)

var allCategories = []Category{
	Electricity,
	Water,
	Gas,
	Internet,
	HOA,
	CreditCard,
	Other,
}

var categoryLabels = map[Category]string{
	Electricity: "Electricity",
	Water:       "Water",
	Gas:         "Gas",
	Internet:    "Internet / Mobile",
	HOA:         "Home / HOA",
	CreditCard:  "Credit Card",
	Other:       "Other",
}

func AsStringSlice() []string {
	result := make([]string, len(allCategories))
	for i, cat := range allCategories {
		result[i] = string(cat)
	}
	return result
}

// ParseCategory reports whether input is already one of the closed set values.
func ParseCategory(input string) (Category, bool) {
	normalized := strings.ToLower(strings.TrimSpace(input))
	if normalized == "" {
		return "", false
	}
	for _, cat := range allCategories {
		if normalized == string(cat) {
			return cat, true
		}
	}
	return "", false
}

func (c Category) Label() string {
	if l, ok := categoryLabels[c]; ok {
		return l
	}
	return categoryLabels[Other]
}
