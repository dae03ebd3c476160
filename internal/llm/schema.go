package llm

const SchemaName = "billing_parse_result"

var (
	topStringFields = []string{"providerId", "providerNameDetected", "category", "currency", "issueDate", "dueDate", "periodStart", "periodEnd"}
	topNumberFields = []string{"totalAmount"}

	hoaStringFields  = []string{"buildingCode", "buildingAddress", "unitCode", "unitLabel", "ownerName", "periodLabel"}
	hoaIntegerFields = []string{"periodYear", "periodMonth"}
	hoaNumberFields  = []string{"firstDueAmount", "secondDueAmount", "totalBuildingExpenses", "totalToPayUnit"}
)

// BuildBillingJSONSchema returns a JSON-Schema (draft 2020-12 subset) as a generic map.
// Every key is required but nullable so the same document works as a strict
// structured-output constraint and for local validation.
func BuildBillingJSONSchema() map[string]any {
	props := map[string]any{
		"text": nullable("string"),
	}
	for _, k := range topStringFields {
		props[k] = nullable("string")
	}
	for _, k := range topNumberFields {
		props[k] = nullable("number")
	}
	props["hoaDetails"] = map[string]any{
		"anyOf": []any{
			map[string]any{"type": "null"},
			hoaDetailsSchema(),
		},
	}

	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties":           props,
		"required":             requiredKeys(props),
	}
}

func hoaDetailsSchema() map[string]any {
	props := map[string]any{}
	for _, k := range hoaStringFields {
		props[k] = nullable("string")
	}
	for _, k := range hoaIntegerFields {
		props[k] = nullable("number")
	}
	for _, k := range hoaNumberFields {
		props[k] = nullable("number")
	}
	rubro := map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"rubroNumber": nullable("number"),
			"label":       nullable("string"),
			"total":       nullable("number"),
		},
		"required": []string{"rubroNumber", "label", "total"},
	}
	props["rubros"] = map[string]any{"type": "array", "items": rubro}

	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties":           props,
		"required":             requiredKeys(props),
	}
}

func nullable(typ string) map[string]any {
	return map[string]any{
		"anyOf": []any{
			map[string]any{"type": typ},
			map[string]any{"type": "null"},
		},
	}
}

// requiredKeys lists every property in a stable order.
func requiredKeys(props map[string]any) []string {
	order := append([]string{"text"}, topStringFields...)
	order = append(order, topNumberFields...)
	order = append(order, "hoaDetails")
	order = append(order, hoaStringFields...)
	order = append(order, hoaIntegerFields...)
	order = append(order, hoaNumberFields...)
	order = append(order, "rubros")

	out := make([]string, 0, len(props))
	for _, k := range order {
		if _, ok := props[k]; ok {
			out = append(out, k)
		}
	}
	return out
}
