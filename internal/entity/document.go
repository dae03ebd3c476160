package entity

import (
	"encoding/json"
	"time"

	"github.com/joseph-ayodele/bills-tracker/constants"
)

// BillDocument represents an uploaded or manually entered bill.
type BillDocument struct {
	ID          string `json:"id"`
	UserID      string `json:"userId"`
	FileName    string `json:"fileName"`
	ContentType string `json:"contentType,omitempty"`
	PDFURL      string `json:"pdfUrl,omitempty"`
	StorageURL  string `json:"storageUrl,omitempty"`

	Provider             *string         `json:"provider"`
	ProviderID           *string         `json:"providerId"`
	ProviderNameDetected *string         `json:"providerNameDetected"`
	Category             *string         `json:"category"`
	TotalAmount          *float64        `json:"totalAmount"`
	Amount               *float64        `json:"amount"`
	Currency             *string         `json:"currency"`
	IssueDate            *time.Time      `json:"issueDate"`
	DueDate              *time.Time      `json:"dueDate"`
	PeriodStart          *time.Time      `json:"periodStart"`
	PeriodEnd            *time.Time      `json:"periodEnd"`
	HoaDetails           json.RawMessage `json:"hoaDetails,omitempty"`

	Status       constants.DocumentStatus `json:"status"`
	TextExtract  *string                  `json:"textExtract,omitempty"`
	ErrorMessage *string                  `json:"errorMessage"`
	LastParsedAt *time.Time               `json:"lastParsedAt"`
	Version      int64                    `json:"version"`
	CreatedAt    time.Time                `json:"createdAt"`
	UpdatedAt    time.Time                `json:"updatedAt"`
}

// SourceURL is where the original file can be downloaded from.
func (d *BillDocument) SourceURL() string {
	if d.PDFURL != "" {
		return d.PDFURL
	}
	return d.StorageURL
}

// Field is an optional patch value; Set=false leaves the column untouched.
type Field[T any] struct {
	Set   bool
	Value T
}

func SetField[T any](v T) Field[T] { return Field[T]{Set: true, Value: v} }

// DocumentPatch is a partial update; only fields with Set=true are written.
type DocumentPatch struct {
	TextExtract          Field[*string]
	Provider             Field[*string]
	ProviderID           Field[*string]
	ProviderNameDetected Field[*string]
	Category             Field[*string]
	TotalAmount          Field[*float64]
	Amount               Field[*float64]
	Currency             Field[*string]
	IssueDate            Field[*time.Time]
	DueDate              Field[*time.Time]
	PeriodStart          Field[*time.Time]
	PeriodEnd            Field[*time.Time]
	HoaDetails           Field[json.RawMessage]
	Status               Field[constants.DocumentStatus]
	ErrorMessage         Field[*string]
	LastParsedAt         Field[*time.Time]
}

// Apply merges the patch into d in place.
func (p DocumentPatch) Apply(d *BillDocument) {
	apply(&d.TextExtract, p.TextExtract)
	apply(&d.Provider, p.Provider)
	apply(&d.ProviderID, p.ProviderID)
	apply(&d.ProviderNameDetected, p.ProviderNameDetected)
	apply(&d.Category, p.Category)
	apply(&d.TotalAmount, p.TotalAmount)
	apply(&d.Amount, p.Amount)
	apply(&d.Currency, p.Currency)
	apply(&d.IssueDate, p.IssueDate)
	apply(&d.DueDate, p.DueDate)
	apply(&d.PeriodStart, p.PeriodStart)
	apply(&d.PeriodEnd, p.PeriodEnd)
	apply(&d.HoaDetails, p.HoaDetails)
	apply(&d.Status, p.Status)
	apply(&d.ErrorMessage, p.ErrorMessage)
	apply(&d.LastParsedAt, p.LastParsedAt)
}

func apply[T any](dst *T, f Field[T]) {
	if f.Set {
		*dst = f.Value
	}
}
