package pipeline

import (
	"context"
	"log/slog"
	"strings"

	"github.com/joseph-ayodele/bills-tracker/internal/entity"
	"github.com/joseph-ayodele/bills-tracker/internal/storage"
)

// TextStage produces the text of a document, reusing the cached textExtract
// when there is one.
type TextStage struct {
	fetcher   storage.Fetcher
	extractor TextExtractor
	logger    *slog.Logger
}

func NewTextStage(fetcher storage.Fetcher, extractor TextExtractor, logger *slog.Logger) *TextStage {
	if logger == nil {
		logger = slog.Default()
	}
	return &TextStage{fetcher: fetcher, extractor: extractor, logger: logger}
}

// Run returns the document text and whether it was freshly extracted.
func (s *TextStage) Run(ctx context.Context, doc *entity.BillDocument) (string, bool, error) {
	if doc.TextExtract != nil && !isBlank(*doc.TextExtract) {
		s.logger.Debug("parse.text.cached", "document_id", doc.ID, "chars", len(*doc.TextExtract))
		return *doc.TextExtract, false, nil
	}

	data, err := s.fetcher.Fetch(ctx, doc.SourceURL())
	if err != nil {
		s.logger.Error("parse.download.failed", "document_id", doc.ID, "error", err)
		return "", false, err
	}

	res, err := s.extractor.Extract(ctx, data, doc.FileName)
	if err != nil {
		s.logger.Error("parse.extract.failed", "document_id", doc.ID, "error", err)
		return "", false, err
	}
	s.logger.Info("parse.text.extracted",
		"document_id", doc.ID,
		"method", res.Method,
		"source_type", res.SourceType,
		"chars", len(res.Text),
	)
	return res.Text, true, nil
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
