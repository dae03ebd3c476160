package llm

import (
	"regexp"
	"strings"

	"github.com/joseph-ayodele/bills-tracker/constants"
)

// TextBudget bounds how much of a bill is sent for extraction.
type TextBudget struct {
	FirstLines int
	LastLines  int
	MaxChars   int
}

var DefaultTextBudget = TextBudget{FirstLines: 60, LastLines: 40, MaxChars: 8000}

var reMoneyLine = regexp.MustCompile(`(?i)(` + strings.Join(constants.MoneyLineKeywords, "|") + `)`)

// ExtractRelevantText keeps the head and tail of the document plus every
// distinct line that mentions money, dates or periods, in three labelled
// blocks, truncated to MaxChars characters.
func ExtractRelevantText(fullText string, budget TextBudget) string {
	if budget.FirstLines <= 0 {
		budget.FirstLines = DefaultTextBudget.FirstLines
	}
	if budget.LastLines <= 0 {
		budget.LastLines = DefaultTextBudget.LastLines
	}
	if budget.MaxChars <= 0 {
		budget.MaxChars = DefaultTextBudget.MaxChars
	}

	lines := toLines(fullText)
	first := lines[:min(budget.FirstLines, len(lines))]
	last := lines[len(lines)-min(budget.LastLines, len(lines)):]

	seen := make(map[string]struct{})
	var money []string
	for _, l := range lines {
		if !reMoneyLine.MatchString(l) {
			continue
		}
		if _, ok := seen[l]; ok {
			continue
		}
		seen[l] = struct{}{}
		money = append(money, l)
	}

	parts := make([]string, 0, len(first)+len(money)+len(last)+3)
	parts = append(parts, "=== FIRST LINES ===")
	parts = append(parts, first...)
	parts = append(parts, "=== MONEY LINES ===")
	parts = append(parts, money...)
	parts = append(parts, "=== LAST LINES ===")
	parts = append(parts, last...)

	combined := strings.Join(parts, "\n")
	if r := []rune(combined); len(r) > budget.MaxChars {
		combined = string(r[:budget.MaxChars])
	}
	return combined
}

// toLines splits on newlines, trims, and drops empty lines.
func toLines(s string) []string {
	raw := strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n")
	out := make([]string, 0, len(raw))
	for _, l := range raw {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	return out
}
