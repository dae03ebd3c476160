package constants

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCategory(t *testing.T) {
	c, ok := ParseCategory("  HOA ")
	require.True(t, ok)
	assert.Equal(t, HOA, c)

	_, ok = ParseCategory("utilities")
	assert.False(t, ok)
	_, ok = ParseCategory("")
	assert.False(t, ok)
}

func TestCategoryLabelFallsBackToOther(t *testing.T) {
	assert.Equal(t, "Credit Card", CreditCard.Label())
	assert.Equal(t, "Other", Category("nope").Label())
	assert.Len(t, AsStringSlice(), 7)
}

func TestProviderHintsAreUniqueAndCategorized(t *testing.T) {
	seen := map[string]bool{}
	for _, h := range ProviderHints {
		assert.False(t, seen[h.ProviderID], "duplicate provider id %s", h.ProviderID)
		seen[h.ProviderID] = true
		_, ok := ParseCategory(string(h.Category))
		assert.True(t, ok, "provider %s has unknown category %s", h.ProviderID, h.Category)
		assert.NotEmpty(t, h.Keywords)
	}

	h, ok := FindProviderHint("edesur")
	require.True(t, ok)
	assert.Equal(t, Electricity, h.Category)
	_, ok = FindProviderHint("unknown")
	assert.False(t, ok)
}

func TestSniffFormat(t *testing.T) {
	assert.Equal(t, PDF, SniffFormat([]byte("%PDF-1.7\n..."), ""))
	assert.Equal(t, PDF, SniffFormat([]byte("\n\n%PDF-1.4"), "bin"))
	assert.Equal(t, IMAGE, SniffFormat([]byte("\x89PNG\r\n\x1a\n0000"), ""))
	assert.Equal(t, IMAGE, SniffFormat([]byte("garbage"), ".JPG"))
	assert.Equal(t, "", SniffFormat([]byte("garbage"), "txt"))
}

func TestMoneyLineKeywordsIncludeAccentedPeriod(t *testing.T) {
	assert.Contains(t, MoneyLineKeywords, "Período")
	assert.Contains(t, MoneyLineKeywords, "Periodo")
}
