package resolver

import (
	"regexp"
	"strings"

	"github.com/joseph-ayodele/bills-tracker/constants"
)

// ResolveCategory picks a category, highest precedence first:
//  1. providerID is a known provider hint
//  2. rawCategory is already a member of the closed set
//  3. a category keyword occurs as a whole word in any of providerID,
//     nameOrText, rawCategory
//  4. other
func ResolveCategory(providerID, rawCategory, nameOrText string) constants.Category {
	if providerID != "" {
		if hint, ok := constants.FindProviderHint(strings.TrimSpace(providerID)); ok {
			return hint.Category
		}
	}
	if c, ok := constants.ParseCategory(NormalizeSearchValue(rawCategory)); ok {
		return c
	}

	search := make([]string, 0, 3)
	for _, v := range []string{providerID, nameOrText, rawCategory} {
		if n := NormalizeSearchValue(v); n != "" {
			search = append(search, n)
		}
	}
	for _, m := range categoryMatchers {
		for _, s := range search {
			if m.re.MatchString(s) {
				return m.category
			}
		}
	}
	return constants.Other
}

type categoryMatcher struct {
	category constants.Category
	re       *regexp.Regexp
}

// categoryMatchers keep the table order; within a row keywords are tried in
// declaration order.
var categoryMatchers = buildCategoryMatchers(constants.CategoryKeywordTable)

func buildCategoryMatchers(table []constants.CategoryKeywords) []categoryMatcher {
	var out []categoryMatcher
	for _, row := range table {
		for _, kw := range row.Keywords {
			if n := NormalizeSearchValue(kw); n != "" {
				out = append(out, categoryMatcher{
					category: row.Category,
					re:       regexp.MustCompile(`\b` + regexp.QuoteMeta(n) + `\b`),
				})
			}
		}
	}
	return out
}

// CanApplyInferred reports whether an inferred category may replace current.
// A confident category is only kept or confirmed, never overwritten.
func CanApplyInferred(current string, inferred constants.Category) bool {
	c := NormalizeSearchValue(current)
	return c == "" || c == string(constants.Other) || c == string(inferred)
}
