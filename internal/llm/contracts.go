package llm

import "context"

// HoaRubro is one line item of a building expense statement.
type HoaRubro struct {
	RubroNumber *int     `json:"rubroNumber"`
	Label       *string  `json:"label"`
	Total       *float64 `json:"total"`
}

// HoaDetails is the HOA-specific part of an extraction.
type HoaDetails struct {
	BuildingCode          *string    `json:"buildingCode"`
	BuildingAddress       *string    `json:"buildingAddress"`
	UnitCode              *string    `json:"unitCode"`
	UnitLabel             *string    `json:"unitLabel"`
	OwnerName             *string    `json:"ownerName"`
	PeriodLabel           *string    `json:"periodLabel"`
	PeriodYear            *int       `json:"periodYear"`
	PeriodMonth           *int       `json:"periodMonth"`
	FirstDueAmount        *float64   `json:"firstDueAmount"`
	SecondDueAmount       *float64   `json:"secondDueAmount"`
	TotalBuildingExpenses *float64   `json:"totalBuildingExpenses"`
	TotalToPayUnit        *float64   `json:"totalToPayUnit"`
	Rubros                []HoaRubro `json:"rubros"`
}

// BillingParseResult is the sanitized outcome of one extraction.
// Every field is independently nullable.
type BillingParseResult struct {
	Text                 *string     `json:"text"`
	ProviderID           *string     `json:"providerId"`
	ProviderNameDetected *string     `json:"providerNameDetected"`
	Category             *string     `json:"category"`
	TotalAmount          *float64    `json:"totalAmount"`
	Currency             *string     `json:"currency"`
	IssueDate            *string     `json:"issueDate"`
	DueDate              *string     `json:"dueDate"`
	PeriodStart          *string     `json:"periodStart"`
	PeriodEnd            *string     `json:"periodEnd"`
	HoaDetails           *HoaDetails `json:"hoaDetails"`
}

type ExtractRequest struct {
	Text       string // full extracted text
	FileName   string // hint only
	DocumentID string // for log correlation
}

// FieldExtractor is the interface the parse pipeline depends on.
type FieldExtractor interface {
	Extract(ctx context.Context, req ExtractRequest) (*BillingParseResult, []byte /*rawJSON*/, error)
}

// Prompt is what every backend receives: instructions, the reduced bill text,
// and the schema the answer must satisfy.
type Prompt struct {
	System     string
	User       string
	SchemaName string
	Schema     map[string]any
}

// Backend performs one call against an extraction service.
type Backend interface {
	Name() string
	Complete(ctx context.Context, p Prompt) (Response, error)
}
