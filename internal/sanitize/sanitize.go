// Package sanitize turns untrusted extraction values into typed, nullable fields.
// None of the functions return errors; anything unusable becomes nil.
package sanitize

import (
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"
)

var reNonNumeric = regexp.MustCompile(`[^0-9.,-]+`)

// String returns the trimmed value, or nil for non-strings and blank strings.
func String(v any) *string {
	s, ok := v.(string)
	if !ok {
		if p, isPtr := v.(*string); isPtr && p != nil {
			s, ok = *p, true
		}
	}
	if !ok {
		return nil
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// Number accepts finite numbers or numeric strings with locale-ambiguous
// separators. When both ',' and '.' appear, the one occurring last is the
// decimal separator. A lone comma is decimal, repeated commas are thousands,
// repeated dots are thousands, and a lone dot is decimal.
func Number(v any) *float64 {
	switch t := v.(type) {
	case float64:
		return finite(t)
	case float32:
		return finite(float64(t))
	case int:
		f := float64(t)
		return &f
	case int32:
		f := float64(t)
		return &f
	case int64:
		f := float64(t)
		return &f
	case json.Number:
		return parseNumericString(t.String())
	case *float64:
		if t == nil {
			return nil
		}
		return finite(*t)
	case string:
		return parseNumericString(t)
	default:
		return nil
	}
}

// Integer is Number rounded half away from zero. Values outside the int64
// range yield nil.
func Integer(v any) *int {
	f := Number(v)
	if f == nil {
		return nil
	}
	r := math.Round(*f)
	if r >= math.MaxInt64 || r < math.MinInt64 {
		return nil
	}
	i := int(r)
	return &i
}

func parseNumericString(s string) *float64 {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return nil
	}
	numeric := reNonNumeric.ReplaceAllString(trimmed, "")
	if numeric == "" {
		return nil
	}

	commas := strings.Count(numeric, ",")
	dots := strings.Count(numeric, ".")
	normalized := numeric

	switch {
	case commas > 0 && dots > 0:
		if strings.LastIndex(numeric, ",") > strings.LastIndex(numeric, ".") {
			normalized = strings.ReplaceAll(numeric, ".", "")
			normalized = strings.ReplaceAll(normalized, ",", ".")
		} else {
			normalized = strings.ReplaceAll(numeric, ",", "")
		}
	case commas == 1:
		normalized = strings.ReplaceAll(numeric, ",", ".")
	case commas > 1:
		normalized = strings.ReplaceAll(numeric, ",", "")
	case dots > 1:
		normalized = strings.ReplaceAll(numeric, ".", "")
	}

	return parseLeadingFloat(normalized)
}

// parseLeadingFloat parses the longest numeric prefix, so "12.5-3" yields 12.5
// and "-" yields nil.
func parseLeadingFloat(s string) *float64 {
	end := 0
	seenDigit, seenDot := false, false
scan:
	for i, r := range s {
		switch {
		case r == '-' && i == 0:
		case r >= '0' && r <= '9':
			seenDigit = true
		case r == '.' && !seenDot:
			seenDot = true
		default:
			break scan
		}
		end = i + 1
	}
	if !seenDigit {
		return nil
	}
	f, err := strconv.ParseFloat(strings.TrimSuffix(s[:end], "."), 64)
	if err != nil {
		return nil
	}
	return finite(f)
}

func finite(f float64) *float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}
