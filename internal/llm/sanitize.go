package llm

import (
	"github.com/joseph-ayodele/bills-tracker/internal/sanitize"
)

// SanitizeBillingResult maps a decoded answer onto BillingParseResult.
// Anything that is not an object yields an all-null result.
func SanitizeBillingResult(v any) BillingParseResult {
	data, _ := v.(map[string]any)
	return BillingParseResult{
		Text:                 sanitize.String(data["text"]),
		ProviderID:           sanitize.String(data["providerId"]),
		ProviderNameDetected: sanitize.String(data["providerNameDetected"]),
		Category:             sanitize.String(data["category"]),
		TotalAmount:          sanitize.Number(data["totalAmount"]),
		Currency:             sanitize.String(data["currency"]),
		IssueDate:            sanitize.String(data["issueDate"]),
		DueDate:              sanitize.String(data["dueDate"]),
		PeriodStart:          sanitize.String(data["periodStart"]),
		PeriodEnd:            sanitize.String(data["periodEnd"]),
		HoaDetails:           sanitizeHoaDetails(data["hoaDetails"]),
	}
}

func sanitizeHoaDetails(v any) *HoaDetails {
	d, ok := v.(map[string]any)
	if !ok || d == nil {
		return nil
	}
	return &HoaDetails{
		BuildingCode:          sanitize.String(d["buildingCode"]),
		BuildingAddress:       sanitize.String(d["buildingAddress"]),
		UnitCode:              sanitize.String(d["unitCode"]),
		UnitLabel:             sanitize.String(d["unitLabel"]),
		OwnerName:             sanitize.String(d["ownerName"]),
		PeriodLabel:           sanitize.String(d["periodLabel"]),
		PeriodYear:            sanitize.Integer(d["periodYear"]),
		PeriodMonth:           sanitize.Integer(d["periodMonth"]),
		FirstDueAmount:        sanitize.Number(d["firstDueAmount"]),
		SecondDueAmount:       sanitize.Number(d["secondDueAmount"]),
		TotalBuildingExpenses: sanitize.Number(d["totalBuildingExpenses"]),
		TotalToPayUnit:        sanitize.Number(d["totalToPayUnit"]),
		Rubros:                sanitizeRubros(d["rubros"]),
	}
}

func sanitizeRubros(v any) []HoaRubro {
	items, ok := v.([]any)
	if !ok {
		return []HoaRubro{}
	}
	out := make([]HoaRubro, 0, len(items))
	for _, it := range items {
		r, _ := it.(map[string]any)
		out = append(out, HoaRubro{
			RubroNumber: sanitize.Integer(r["rubroNumber"]),
			Label:       sanitize.String(r["label"]),
			Total:       sanitize.Number(r["total"]),
		})
	}
	return out
}
