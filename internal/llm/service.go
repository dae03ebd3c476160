// Package llm turns bill text into a validated BillingParseResult by calling
// a structured-output extraction backend.
package llm

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/joseph-ayodele/bills-tracker/internal/common"
)

type ServiceConfig struct {
	Retry             RetryPolicy
	Budget            TextBudget
	RequestsPerSecond float64 // 0 disables rate limiting
	Burst             int
	Lenient           bool
}

// Service implements FieldExtractor on top of a Backend.
type Service struct {
	backend   Backend
	validator *Validator
	schema    map[string]any
	retry     RetryPolicy
	budget    TextBudget
	limiter   *rate.Limiter
	logger    *slog.Logger
}

var _ FieldExtractor = (*Service)(nil)

func NewService(backend Backend, cfg ServiceConfig, logger *slog.Logger) (*Service, error) {
	if logger == nil {
		logger = slog.Default()
	}
	schema := BuildBillingJSONSchema()
	validator, err := NewValidator(schema, cfg.Lenient, logger)
	if err != nil {
		return nil, err
	}
	s := &Service{
		backend:   backend,
		validator: validator,
		schema:    schema,
		retry:     cfg.Retry,
		budget:    cfg.Budget,
		logger:    logger,
	}
	if cfg.RequestsPerSecond > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		s.limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
	}
	return s, nil
}

func (s *Service) Extract(ctx context.Context, req ExtractRequest) (*BillingParseResult, []byte, error) {
	rid := uuid.New().String()
	start := time.Now()

	relevant := ExtractRelevantText(req.Text, s.budget)
	prompt := Prompt{
		System:     SystemPrompt,
		User:       BuildUserPrompt(relevant, req.FileName),
		SchemaName: SchemaName,
		Schema:     s.schema,
	}

	s.logger.Info("llm.extract.start",
		"req_id", rid,
		"document_id", req.DocumentID,
		"backend", s.backend.Name(),
		"text_len", len(req.Text),
		"relevant_len", len(relevant),
	)

	resp, err := CallWithRetry(ctx, s.retry, s.logger, func(ctx context.Context, attempt int) (Response, error) {
		if s.limiter != nil {
			if err := s.limiter.Wait(ctx); err != nil {
				return Response{}, err
			}
		}
		return s.backend.Complete(ctx, prompt)
	})
	if err != nil {
		s.logger.Error("llm.extract.call_failed", "req_id", rid, "error", err, "elapsed_ms", time.Since(start).Milliseconds())
		return nil, nil, fmt.Errorf("%w: %s: %w", common.ErrExtraction, s.backend.Name(), err)
	}

	jsonText, err := ExtractJSONText(resp)
	if err != nil {
		s.logger.Error("llm.extract.no_payload", "req_id", rid, "output_items", len(resp.Output))
		return nil, nil, fmt.Errorf("%w: %w", common.ErrExtraction, err)
	}
	raw := []byte(CleanModelJSON(jsonText))

	result, err := s.validator.Validate(raw, req.Text)
	if err != nil {
		s.logger.Error("llm.extract.validation_failed", "req_id", rid, "error", err, "elapsed_ms", time.Since(start).Milliseconds())
		return nil, raw, err
	}

	s.logger.Info("llm.extract.ok",
		"req_id", rid,
		"document_id", req.DocumentID,
		"provider", deref(result.ProviderID),
		"category", deref(result.Category),
		"has_hoa", result.HoaDetails != nil,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return result, raw, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
