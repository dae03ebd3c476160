package llm

import (
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/joseph-ayodele/bills-tracker/internal/sanitize"
)

// RepairDocument coerces a decoded model answer towards the billing schema so
// it can be validated a second time:
//   - unknown keys are removed and missing keys are added as null
//   - numeric strings in number fields are parsed, unparseable ones become null
//   - scalars in string fields are stringified
//   - malformed hoaDetails / rubros collapse to null / []
//
// It returns the repaired map and a list of what was touched.
func RepairDocument(doc map[string]any) (map[string]any, []string) {
	out := maps.Clone(doc)
	changed := make([]string, 0, 8)

	keepOnly(out, slices.Concat([]string{"text"}, topStringFields, topNumberFields, []string{"hoaDetails"}), "", &changed)

	switch v := out["text"].(type) {
	case string:
	case nil:
		if _, ok := out["text"]; !ok {
			out["text"] = nil
			changed = append(changed, "text(missing)")
		}
	default:
		out["text"] = fmt.Sprint(v)
		changed = append(changed, "text(type)")
	}
	for _, k := range topStringFields {
		repairString(out, k, "", &changed)
	}
	for _, k := range topNumberFields {
		repairNumber(out, k, "", false, &changed)
	}

	switch h := out["hoaDetails"].(type) {
	case nil:
	case map[string]any:
		out["hoaDetails"] = repairHoaDetails(h, &changed)
	default:
		out["hoaDetails"] = nil
		changed = append(changed, "hoaDetails(type)")
	}
	return out, changed
}

func repairHoaDetails(in map[string]any, changed *[]string) map[string]any {
	const prefix = "hoaDetails."
	h := maps.Clone(in)
	allowed := slices.Concat(hoaStringFields, hoaIntegerFields, hoaNumberFields, []string{"rubros"})
	keepOnly(h, allowed, prefix, changed)

	for _, k := range hoaStringFields {
		repairString(h, k, prefix, changed)
	}
	for _, k := range hoaIntegerFields {
		repairNumber(h, k, prefix, true, changed)
	}
	for _, k := range hoaNumberFields {
		repairNumber(h, k, prefix, false, changed)
	}

	items, ok := h["rubros"].([]any)
	if !ok {
		h["rubros"] = []any{}
		*changed = append(*changed, prefix+"rubros(type)")
		return h
	}
	rubros := make([]any, 0, len(items))
	for i, it := range items {
		p := fmt.Sprintf("%srubros[%d].", prefix, i)
		r, ok := it.(map[string]any)
		if !ok {
			r = map[string]any{}
			*changed = append(*changed, p[:len(p)-1]+"(type)")
		} else {
			r = maps.Clone(r)
		}
		keepOnly(r, []string{"rubroNumber", "label", "total"}, p, changed)
		repairNumber(r, "rubroNumber", p, true, changed)
		repairString(r, "label", p, changed)
		repairNumber(r, "total", p, false, changed)
		rubros = append(rubros, r)
	}
	h["rubros"] = rubros
	return h
}

// keepOnly drops keys outside allowed and adds the missing ones as null.
func keepOnly(m map[string]any, allowed []string, prefix string, changed *[]string) {
	for k := range maps.Clone(m) {
		if !slices.Contains(allowed, k) {
			delete(m, k)
			*changed = append(*changed, prefix+k+"(unknown)")
		}
	}
	for _, k := range allowed {
		if _, ok := m[k]; !ok {
			m[k] = nil
			*changed = append(*changed, prefix+k+"(missing)")
		}
	}
}

func repairString(m map[string]any, k, prefix string, changed *[]string) {
	switch v := m[k].(type) {
	case nil, string:
	case float64:
		m[k] = strconv.FormatFloat(v, 'f', -1, 64)
		*changed = append(*changed, prefix+k)
	default:
		m[k] = nil
		*changed = append(*changed, prefix+k+"(type)")
	}
}

func repairNumber(m map[string]any, k, prefix string, integer bool, changed *[]string) {
	switch v := m[k].(type) {
	case nil, float64:
	case string:
		var n any
		if integer {
			if p := sanitize.Integer(v); p != nil {
				n = float64(*p)
			}
		} else if p := sanitize.Number(v); p != nil {
			n = *p
		}
		m[k] = n
		if n == nil && strings.TrimSpace(v) != "" {
			*changed = append(*changed, prefix+k+"(unparseable)")
		} else {
			*changed = append(*changed, prefix+k)
		}
	default:
		m[k] = nil
		*changed = append(*changed, prefix+k+"(type)")
	}
}
