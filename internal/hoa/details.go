// Package hoa derives per-period HOA summaries from extraction output and
// compares two periods rubro by rubro.
package hoa

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/joseph-ayodele/bills-tracker/internal/entity"
	"github.com/joseph-ayodele/bills-tracker/internal/llm"
	"github.com/joseph-ayodele/bills-tracker/internal/sanitize"
)

// NormalizedHoaDetails is the canonical form of one statement. It is rebuilt
// from raw extraction output on every parse.
type NormalizedHoaDetails struct {
	BuildingCode          *string
	BuildingAddress       *string
	UnitCode              *string
	UnitLabel             *string
	OwnerName             *string
	PeriodYear            *int
	PeriodMonth           *int
	PeriodLabel           *string
	PeriodKey             *string
	TotalToPayUnit        *float64
	TotalBuildingExpenses *float64
	Rubros                []entity.HoaRubro
}

type HoaTotals struct {
	RubrosTotal      *float64 `json:"rubrosTotal"`
	RubrosWithTotals int      `json:"rubrosWithTotals"`
}

// NormalizeHoaDetails accepts a decoded JSON object, raw JSON, or the typed
// extraction result. Anything that is not an object yields nil.
func NormalizeHoaDetails(details any) *NormalizedHoaDetails {
	src, ok := asMap(details)
	if !ok {
		return nil
	}

	year := sanitize.Integer(src["periodYear"])
	month := sanitize.Integer(src["periodMonth"])
	key := BuildPeriodKey(year, month)

	label := sanitize.String(src["periodLabel"])
	if label == nil && key != nil {
		l := DefaultPeriodLabel(*year, *month)
		label = &l
	}

	var rubros []entity.HoaRubro
	if items, ok := src["rubros"].([]any); ok {
		rubros = make([]entity.HoaRubro, 0, len(items))
		for _, it := range items {
			r, _ := it.(map[string]any)
			rubros = append(rubros, entity.HoaRubro{
				RubroNumber: sanitize.Integer(r["rubroNumber"]),
				Label:       sanitize.String(r["label"]),
				Total:       sanitize.Number(r["total"]),
			})
		}
	} else {
		rubros = []entity.HoaRubro{}
	}

	return &NormalizedHoaDetails{
		BuildingCode:          sanitize.String(src["buildingCode"]),
		BuildingAddress:       sanitize.String(src["buildingAddress"]),
		UnitCode:              sanitize.String(src["unitCode"]),
		UnitLabel:             sanitize.String(src["unitLabel"]),
		OwnerName:             sanitize.String(src["ownerName"]),
		PeriodYear:            year,
		PeriodMonth:           month,
		PeriodLabel:           label,
		PeriodKey:             key,
		TotalToPayUnit:        sanitize.Number(src["totalToPayUnit"]),
		TotalBuildingExpenses: sanitize.Number(src["totalBuildingExpenses"]),
		Rubros:                rubros,
	}
}

func asMap(v any) (map[string]any, bool) {
	switch t := v.(type) {
	case nil:
		return nil, false
	case map[string]any:
		return t, t != nil
	case json.RawMessage:
		return decodeMap(t)
	case []byte:
		return decodeMap(t)
	case *llm.HoaDetails:
		if t == nil {
			return nil, false
		}
		return encodeMap(t)
	case llm.HoaDetails:
		return encodeMap(t)
	default:
		return nil, false
	}
}

func encodeMap(v any) (map[string]any, bool) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, false
	}
	return decodeMap(b)
}

func decodeMap(b []byte) (map[string]any, bool) {
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil || m == nil {
		return nil, false
	}
	return m, true
}

// BuildPeriodKey returns "YYYY-MM", or nil unless year > 0 and month is 1..12.
func BuildPeriodKey(year, month *int) *string {
	if year == nil || month == nil || *year <= 0 || *month < 1 || *month > 12 {
		return nil
	}
	k := fmt.Sprintf("%d-%02d", *year, *month)
	return &k
}

func DefaultPeriodLabel(year, month int) string {
	return fmt.Sprintf("%02d/%d", month, year)
}

// CalculateHoaTotals sums every rubro with a total. An empty list has a nil total.
func CalculateHoaTotals(rubros []entity.HoaRubro) HoaTotals {
	sum := decimal.Zero
	n := 0
	for _, r := range rubros {
		if r.Total == nil {
			continue
		}
		sum = sum.Add(decimal.NewFromFloat(*r.Total))
		n++
	}
	if n == 0 {
		return HoaTotals{RubrosTotal: nil, RubrosWithTotals: 0}
	}
	total := sum.InexactFloat64()
	return HoaTotals{RubrosTotal: &total, RubrosWithTotals: n}
}
