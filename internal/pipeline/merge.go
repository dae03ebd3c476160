package pipeline

import (
	"regexp"
	"strings"
	"time"

	"github.com/joseph-ayodele/bills-tracker/constants"
	"github.com/joseph-ayodele/bills-tracker/internal/entity"
	"github.com/joseph-ayodele/bills-tracker/internal/llm"
	"github.com/joseph-ayodele/bills-tracker/internal/resolver"
)

// merged holds the document fields after folding an extraction result over
// the stored values.
type merged struct {
	textExtract          *string
	providerID           *string
	providerNameDetected *string
	provider             *string
	category             *string
	totalAmount          *float64
	amount               *float64
	currency             *string
	issueDate            *time.Time
	dueDate              *time.Time
	periodStart          *time.Time
	periodEnd            *time.Time
	hoa                  *llm.HoaDetails
	status               constants.DocumentStatus
	parsedAt             time.Time
}

// merge applies the field precedence rules: extracted values win, stored
// values fill the gaps, and HOA details override amount and identity.
func merge(doc *entity.BillDocument, r *llm.BillingParseResult, sourceText string, now time.Time) *merged {
	m := &merged{
		textExtract:          coalesce(r.Text, doc.TextExtract, &sourceText),
		providerID:           coalesce(r.ProviderID, doc.ProviderID),
		providerNameDetected: coalesce(r.ProviderNameDetected, doc.ProviderNameDetected),
		provider:             coalesce(r.ProviderNameDetected, r.ProviderID, doc.Provider, doc.ProviderNameDetected),
		totalAmount:          coalesce(r.TotalAmount, doc.TotalAmount),
		amount:               coalesce(r.TotalAmount, doc.Amount),
		currency:             coalesce(r.Currency, doc.Currency),
		hoa:                  r.HoaDetails,
		parsedAt:             now,
	}

	rawCategory := coalesce(r.Category, doc.Category)
	// Bill text is left to applyInference, which matches provider keywords.
	name := deref(coalesce(m.providerNameDetected, m.provider))
	cat := resolver.ResolveCategory(deref(m.providerID), deref(rawCategory), name)
	m.category = ptr(string(cat))

	if h := r.HoaDetails; h != nil {
		m.category = ptr(string(constants.HOA))
		if h.TotalToPayUnit != nil {
			m.totalAmount = ptr(*h.TotalToPayUnit)
			m.amount = ptr(*h.TotalToPayUnit)
			m.currency = coalesce(r.Currency, ptr(constants.HOACurrency))
		}
		if isBlank(deref(m.providerID)) {
			m.providerID = ptr(constants.HOAProviderID)
		}
		if isBlank(deref(m.provider)) {
			m.provider = coalesce(r.ProviderNameDetected, ptr(constants.HOAProviderName))
		}
	}

	m.issueDate = parseDate(r.IssueDate)
	m.dueDate = parseDate(r.DueDate)
	m.periodStart = parseDate(r.PeriodStart)
	m.periodEnd = parseDate(r.PeriodEnd)

	m.status = constants.StatusNeedsReview
	if m.textExtract != nil && !isBlank(*m.textExtract) {
		m.status = constants.StatusParsed
	}
	return m
}

// applyInference fills a missing provider identity from keyword hints in
// the file name or text. A confident category is never replaced by a
// conflicting guess.
func (m *merged) applyInference(inf *resolver.Inferrer, fileName, text string) {
	current := deref(m.category)
	if m.providerID != nil && current != string(constants.Other) {
		return
	}
	found, ok := inf.InferProviderFromContent(fileName, text)
	if !ok || !resolver.CanApplyInferred(current, found.Hint.Category) {
		return
	}
	if m.providerID == nil {
		m.providerID = ptr(found.Hint.ProviderID)
	}
	if m.provider == nil {
		m.provider = ptr(found.Hint.ProviderName)
	}
	if current == "" || current == string(constants.Other) {
		m.category = ptr(string(found.Hint.Category))
	}
}

func (m *merged) patch() (entity.DocumentPatch, error) {
	hoa, err := encodeHoaDetails(m.hoa)
	if err != nil {
		return entity.DocumentPatch{}, err
	}
	var none *string
	p := entity.DocumentPatch{
		TextExtract:          entity.SetField(m.textExtract),
		Provider:             entity.SetField(m.provider),
		ProviderID:           entity.SetField(m.providerID),
		ProviderNameDetected: entity.SetField(m.providerNameDetected),
		Category:             entity.SetField(m.category),
		TotalAmount:          entity.SetField(m.totalAmount),
		Amount:               entity.SetField(m.amount),
		Currency:             entity.SetField(m.currency),
		HoaDetails:           entity.SetField(hoa),
		Status:               entity.SetField(m.status),
		ErrorMessage:         entity.SetField(none),
		LastParsedAt:         entity.SetField(&m.parsedAt),
	}
	// unparseable dates leave the stored value alone
	if m.issueDate != nil {
		p.IssueDate = entity.SetField(m.issueDate)
	}
	if m.dueDate != nil {
		p.DueDate = entity.SetField(m.dueDate)
	}
	if m.periodStart != nil {
		p.PeriodStart = entity.SetField(m.periodStart)
	}
	if m.periodEnd != nil {
		p.PeriodEnd = entity.SetField(m.periodEnd)
	}
	return p, nil
}

var reISODate = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"02/01/2006",
	"2006/01/02",
}

// parseDate reads a bare YYYY-MM-DD as noon UTC so the calendar day survives
// any display timezone. Other layouts are tried in order; nil if none fit.
func parseDate(s *string) *time.Time {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	if reISODate.MatchString(v) {
		t, err := time.Parse(time.DateOnly, v)
		if err != nil {
			return nil
		}
		t = t.Add(12 * time.Hour)
		return &t
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			t = t.UTC()
			return &t
		}
	}
	return nil
}

func coalesce[T any](vals ...*T) *T {
	for _, v := range vals {
		if v != nil {
			return v
		}
	}
	return nil
}

func ptr[T any](v T) *T { return &v }
