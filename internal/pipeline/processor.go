// Package pipeline runs the parse of a stored bill document: obtain text,
// extract fields, merge them into the document and refresh the HOA summary.
package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/joseph-ayodele/bills-tracker/constants"
	"github.com/joseph-ayodele/bills-tracker/internal/common"
	"github.com/joseph-ayodele/bills-tracker/internal/entity"
	"github.com/joseph-ayodele/bills-tracker/internal/llm"
	"github.com/joseph-ayodele/bills-tracker/internal/resolver"
	"github.com/joseph-ayodele/bills-tracker/internal/storage"
	"github.com/joseph-ayodele/bills-tracker/internal/textextract"
)

// DocumentStore is the part of the document repository the processor needs.
type DocumentStore interface {
	Get(ctx context.Context, id string) (*entity.BillDocument, error)
	Update(ctx context.Context, id string, patch entity.DocumentPatch, expectedVersion int64) error
}

type TextExtractor interface {
	Extract(ctx context.Context, data []byte, fileName string) (textextract.Result, error)
}

type HoaUpserter interface {
	Upsert(ctx context.Context, userID string, details any) (*entity.HoaSummary, error)
}

// recordTimeout bounds the failure write, which runs even when the parse
// context is already done.
const recordTimeout = 10 * time.Second

// Processor coordinates text extraction, field extraction and persistence.
type Processor struct {
	docs   DocumentStore
	text   *TextStage
	fields llm.FieldExtractor
	hoa    HoaUpserter
	now    func() time.Time
	logger *slog.Logger
}

func NewProcessor(docs DocumentStore, fetcher storage.Fetcher, extractor TextExtractor,
	fields llm.FieldExtractor, hoa HoaUpserter, logger *slog.Logger) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{
		docs:   docs,
		text:   NewTextStage(fetcher, extractor, logger),
		fields: fields,
		hoa:    hoa,
		now:    time.Now,
		logger: logger,
	}
}

// ParseDocument parses documentID on behalf of callerUID and returns the
// refreshed document. Failures after the ownership check are written to the
// document as needs_review before the error is returned.
func (p *Processor) ParseDocument(ctx context.Context, documentID, callerUID string) (*entity.BillDocument, error) {
	ctx, reqID := common.EnsureRequestID(ctx)
	logger := p.logger.With("document_id", documentID, "req_id", reqID)
	start := time.Now()

	doc, err := p.docs.Get(ctx, documentID)
	if err != nil {
		logger.Warn("parse.load.failed", "error", err)
		return nil, err
	}
	if doc.UserID != "" && doc.UserID != callerUID {
		logger.Warn("parse.forbidden", "caller_uid", callerUID)
		return nil, common.NewAppError("FORBIDDEN", "document belongs to another user", common.ErrForbidden)
	}
	if doc.SourceURL() == "" {
		return nil, common.NewAppError("MISSING_SOURCE", "document has no pdfUrl/storageUrl", common.ErrInvalidState)
	}

	text, fresh, err := p.text.Run(ctx, doc)
	if err != nil {
		return nil, p.recordFailure(ctx, logger, doc, err, nil)
	}
	if isBlank(text) {
		err := common.NewAppError("EMPTY_TEXT", constants.MsgEmptyText, common.ErrValidation)
		return nil, p.recordFailure(ctx, logger, doc, err, nil)
	}

	var cache *string
	if fresh {
		cache = &text
	}
	result, _, err := p.fields.Extract(ctx, llm.ExtractRequest{Text: text, FileName: doc.FileName, DocumentID: doc.ID})
	if err != nil {
		return nil, p.recordFailure(ctx, logger, doc, err, cache)
	}

	now := p.now().UTC()
	m := merge(doc, result, text, now)
	m.applyInference(resolver.NewInferrer(logger), doc.FileName, text)
	patch, err := m.patch()
	if err != nil {
		return nil, p.recordFailure(ctx, logger, doc, err, cache)
	}

	if err := p.docs.Update(ctx, doc.ID, patch, 0); err != nil {
		logger.Error("parse.persist.failed", "error", err)
		return nil, err
	}

	if result.HoaDetails != nil && doc.UserID != "" {
		if _, err := p.hoa.Upsert(ctx, doc.UserID, result.HoaDetails); err != nil {
			logger.Error("parse.hoa_summary.failed", "error", err)
		}
	}

	refreshed, err := p.docs.Get(ctx, doc.ID)
	if err != nil {
		return nil, err
	}
	logger.Info("parse.ok",
		"status", refreshed.Status,
		"provider_id", deref(refreshed.ProviderID),
		"category", deref(refreshed.Category),
		"hoa", result.HoaDetails != nil,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return refreshed, nil
}

// recordFailure moves doc to needs_review with cause as the error message.
// The write is attempted even when ctx is done; its failure is joined to cause.
func (p *Processor) recordFailure(ctx context.Context, logger *slog.Logger, doc *entity.BillDocument, cause error, textExtract *string) error {
	msg := failureMessage(cause)
	patch := entity.DocumentPatch{
		Status:       entity.SetField(constants.StatusNeedsReview),
		ErrorMessage: entity.SetField(&msg),
	}
	if textExtract != nil {
		patch.TextExtract = entity.SetField(textExtract)
	}

	wctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), recordTimeout)
	defer cancel()
	if err := p.docs.Update(wctx, doc.ID, patch, 0); err != nil {
		logger.Error("parse.record_failure.failed", "error", err, "cause", cause)
		return errors.Join(cause, err)
	}
	logger.Warn("parse.needs_review", "error_message", msg)
	return cause
}

func failureMessage(err error) string {
	var appErr *common.AppError
	if errors.As(err, &appErr) && appErr.Code == "EMPTY_TEXT" {
		return appErr.Message
	}
	switch {
	case errors.Is(err, common.ErrNetwork):
		return fmt.Sprintf("%s: %v", constants.MsgDownloadFailed, err)
	case errors.Is(err, common.ErrExtraction), errors.Is(err, common.ErrValidation):
		return fmt.Sprintf("%s: %v", constants.MsgExtractionFailed, err)
	default:
		return err.Error()
	}
}

func encodeHoaDetails(h *llm.HoaDetails) (json.RawMessage, error) {
	if h == nil {
		return nil, nil
	}
	b, err := json.Marshal(h)
	if err != nil {
		return nil, fmt.Errorf("%w: encode hoa details: %w", common.ErrInternal, err)
	}
	return b, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
