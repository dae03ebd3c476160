// Package provider builds the configured extraction backend and wraps it in
// an llm.Service.
package provider

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/joseph-ayodele/bills-tracker/internal/common"
	"github.com/joseph-ayodele/bills-tracker/internal/llm"
	"github.com/joseph-ayodele/bills-tracker/internal/llm/gemini"
	"github.com/joseph-ayodele/bills-tracker/internal/llm/openai"
)

func NewBackend(ctx context.Context, cfg common.LLMConfig, logger *slog.Logger) (llm.Backend, error) {
	switch cfg.Provider {
	case "", "openai":
		return openai.NewClient(openai.Config{
			APIKey:      cfg.APIKey,
			BaseURL:     cfg.BaseURL,
			Model:       cfg.Model,
			Temperature: cfg.Temperature,
			Timeout:     cfg.Timeout,
		}, logger), nil
	case "gemini":
		return gemini.NewClient(ctx, gemini.Config{
			APIKey:      cfg.APIKey,
			Model:       cfg.Model,
			Temperature: cfg.Temperature,
		}, logger)
	default:
		return nil, common.NewAppError("CONFIG_ERROR", fmt.Sprintf("unknown LLM provider %q", cfg.Provider), common.ErrInvalidInput)
	}
}

// ServiceConfig maps the environment settings onto llm.ServiceConfig.
func ServiceConfig(cfg common.LLMConfig) llm.ServiceConfig {
	return llm.ServiceConfig{
		Retry:             llm.RetryPolicy{Attempts: cfg.RetryAttempts, BaseDelay: cfg.RetryBaseDelay},
		Budget:            llm.TextBudget{FirstLines: cfg.FirstLines, LastLines: cfg.LastLines, MaxChars: cfg.MaxChars},
		RequestsPerSecond: cfg.RequestsPerSecond,
		Burst:             cfg.Burst,
		Lenient:           cfg.Lenient,
	}
}

// NewFieldExtractor is NewBackend plus the retrying, validating service.
func NewFieldExtractor(ctx context.Context, cfg common.LLMConfig, logger *slog.Logger) (*llm.Service, error) {
	backend, err := NewBackend(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	return llm.NewService(backend, ServiceConfig(cfg), logger)
}
