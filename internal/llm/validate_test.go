package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/bills-tracker/internal/common"
)

const validBill = `{
  "text": "Edesur factura",
  "providerId": "edesur",
  "providerNameDetected": "Edesur",
  "category": "electricity",
  "totalAmount": 1234.56,
  "currency": "ARS",
  "issueDate": "2024-03-01",
  "dueDate": "2024-03-15",
  "periodStart": null,
  "periodEnd": null,
  "hoaDetails": null
}`

const validHoaBill = `{
  "text": "",
  "providerId": null,
  "providerNameDetected": "Consorcio Av. Siempreviva",
  "category": "hoa",
  "totalAmount": 50000,
  "currency": null,
  "issueDate": null,
  "dueDate": "2024-03-10",
  "periodStart": null,
  "periodEnd": null,
  "hoaDetails": {
    "buildingCode": "B-12",
    "buildingAddress": "Av. Siempreviva 742",
    "unitCode": "3A",
    "unitLabel": null,
    "ownerName": "Perez",
    "periodLabel": "03/2024",
    "periodYear": 2024,
    "periodMonth": 3,
    "firstDueAmount": 50000,
    "secondDueAmount": 52000,
    "totalBuildingExpenses": 900000,
    "totalToPayUnit": 50000,
    "rubros": [
      {"rubroNumber": 1, "label": "Sueldos", "total": 400000},
      {"rubroNumber": null, "label": "  ", "total": null}
    ]
  }
}`

func newTestValidator(t *testing.T, lenient bool) *Validator {
	t.Helper()
	v, err := NewValidator(BuildBillingJSONSchema(), lenient, nil)
	require.NoError(t, err)
	return v
}

func TestValidateAcceptsSchemaConformingDocument(t *testing.T) {
	res, err := newTestValidator(t, false).Validate([]byte(validBill), "full text")
	require.NoError(t, err)

	assert.Equal(t, "Edesur factura", *res.Text)
	assert.Equal(t, "edesur", *res.ProviderID)
	assert.InDelta(t, 1234.56, *res.TotalAmount, 1e-9)
	assert.Nil(t, res.PeriodStart)
	assert.Nil(t, res.HoaDetails)
}

func TestValidateHoaDetails(t *testing.T) {
	res, err := newTestValidator(t, false).Validate([]byte(validHoaBill), "source text")
	require.NoError(t, err)

	require.NotNil(t, res.HoaDetails)
	h := res.HoaDetails
	assert.Equal(t, "B-12", *h.BuildingCode)
	assert.Nil(t, h.UnitLabel)
	assert.Equal(t, 2024, *h.PeriodYear)
	require.Len(t, h.Rubros, 2)
	assert.Equal(t, 1, *h.Rubros[0].RubroNumber)
	assert.Nil(t, h.Rubros[1].Label)

	// blank model text falls back to the full source text
	assert.Equal(t, "source text", *res.Text)
}

func TestValidateRejectsNonJSON(t *testing.T) {
	_, err := newTestValidator(t, true).Validate([]byte("not json"), "")
	assert.ErrorIs(t, err, common.ErrValidation)
}

func TestValidateStrictRejectsWrongTypes(t *testing.T) {
	doc := `{"text":"x","providerId":null,"providerNameDetected":null,"category":null,"totalAmount":"1.234,56","currency":null,"issueDate":null,"dueDate":null,"periodStart":null,"periodEnd":null,"hoaDetails":null}`
	_, err := newTestValidator(t, false).Validate([]byte(doc), "")
	var ve *common.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.ErrorIs(t, err, common.ErrValidation)
}

func TestValidateStrictAcceptsNullText(t *testing.T) {
	doc := `{"text":null,"providerId":"aysa","providerNameDetected":null,"category":"water","totalAmount":10,"currency":null,"issueDate":null,"dueDate":null,"periodStart":null,"periodEnd":null,"hoaDetails":null}`
	res, err := newTestValidator(t, false).Validate([]byte(doc), "AySA factura")
	require.NoError(t, err)
	require.NotNil(t, res.Text)
	assert.Equal(t, "AySA factura", *res.Text)
	assert.Equal(t, "aysa", *res.ProviderID)
}

func TestValidateLenientRepairsDocument(t *testing.T) {
	doc := `{"text":null,"providerId":42,"category":"water","totalAmount":"$ 1.234,56","extra":"drop me",
	  "hoaDetails":{"periodYear":"2024","periodMonth":"03","rubros":[{"rubroNumber":"7","label":"Luz","total":"10,5","x":1}, "junk"]}}`
	res, err := newTestValidator(t, true).Validate([]byte(doc), "raw pdf text")
	require.NoError(t, err)

	assert.Equal(t, "raw pdf text", *res.Text)
	assert.Equal(t, "42", *res.ProviderID)
	assert.InDelta(t, 1234.56, *res.TotalAmount, 1e-9)
	assert.Nil(t, res.Currency)
	require.NotNil(t, res.HoaDetails)
	assert.Equal(t, 3, *res.HoaDetails.PeriodMonth)
	require.Len(t, res.HoaDetails.Rubros, 2)
	assert.Equal(t, 7, *res.HoaDetails.Rubros[0].RubroNumber)
	assert.InDelta(t, 10.5, *res.HoaDetails.Rubros[0].Total, 1e-9)
	assert.Nil(t, res.HoaDetails.Rubros[1].Label)
}

func TestValidateLenientCannotRepairNonObject(t *testing.T) {
	_, err := newTestValidator(t, true).Validate([]byte(`[1,2]`), "")
	assert.ErrorIs(t, err, common.ErrValidation)
}

func TestSanitizeBillingResultNonObject(t *testing.T) {
	res := SanitizeBillingResult("nope")
	assert.Equal(t, BillingParseResult{}, res)
}

func TestRepairDocumentReportsChanges(t *testing.T) {
	_, changed := RepairDocument(map[string]any{"text": "t", "bogus": true, "hoaDetails": "x"})
	assert.Contains(t, changed, "bogus(unknown)")
	assert.Contains(t, changed, "providerId(missing)")
	assert.Contains(t, changed, "hoaDetails(type)")

	out, changed := RepairDocument(map[string]any{"providerId": nil})
	assert.Contains(t, changed, "text(missing)")
	v, ok := out["text"]
	assert.True(t, ok)
	assert.Nil(t, v)
}
