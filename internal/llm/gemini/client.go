// Package gemini is an llm.Backend on top of the Google GenAI SDK.
package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/joseph-ayodele/bills-tracker/internal/llm"
)

type Config struct {
	APIKey      string // if empty, the SDK reads GEMINI_API_KEY / GOOGLE_API_KEY
	Model       string // default "gemini-2.5-flash"
	Temperature float32
}

// generator is the subset of *genai.Models used here.
type generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

type Client struct {
	cfg    Config
	models generator
	logger *slog.Logger
}

var _ llm.Backend = (*Client)(nil)

func NewClient(ctx context.Context, cfg Config, logger *slog.Logger) (*Client, error) {
	cc := &genai.ClientConfig{Backend: genai.BackendGeminiAPI}
	if cfg.APIKey != "" {
		cc.APIKey = cfg.APIKey
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return newWithGenerator(cfg, client.Models, logger), nil
}

func newWithGenerator(cfg Config, g generator, logger *slog.Logger) *Client {
	if cfg.Model == "" {
		cfg.Model = "gemini-2.5-flash"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{cfg: cfg, models: g, logger: logger}
}

func (c *Client) Name() string { return "gemini:" + c.cfg.Model }

// Complete asks for a JSON answer. The schema travels in the system
// instruction and is enforced locally by llm.Validator.
func (c *Client) Complete(ctx context.Context, p llm.Prompt) (llm.Response, error) {
	start := time.Now()

	schemaJSON, err := json.Marshal(p.Schema)
	if err != nil {
		return llm.Response{}, fmt.Errorf("encode schema: %w", err)
	}
	temp := c.cfg.Temperature
	config := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{Parts: []*genai.Part{
			{Text: p.System + "\nJSON Schema (" + p.SchemaName + "):\n" + string(schemaJSON)},
		}},
		ResponseMIMEType: "application/json",
		Temperature:      &temp,
	}
	contents := []*genai.Content{
		{Role: "user", Parts: []*genai.Part{{Text: p.User}}},
	}

	resp, err := c.models.GenerateContent(ctx, c.cfg.Model, contents, config)
	if err != nil {
		c.logger.Error("llm.gemini.generate_error", "model", c.cfg.Model, "error", err, "elapsed_ms", time.Since(start).Milliseconds())
		return llm.Response{}, fmt.Errorf("gemini generate: %w", classify(err))
	}
	c.logger.Info("llm.gemini.response", "model", c.cfg.Model, "candidates", len(resp.Candidates), "elapsed_ms", time.Since(start).Milliseconds())
	return toResponse(resp), nil
}

// classify maps SDK status errors onto llm.StatusError so the retry loop can
// tell permanent failures from transient ones.
func classify(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) && apiErr.Code > 0 {
		return errors.Join(&llm.StatusError{Code: apiErr.Code, Body: apiErr.Message}, err)
	}
	return err
}

func toResponse(resp *genai.GenerateContentResponse) llm.Response {
	var out llm.Response
	if resp == nil {
		return out
	}
	for _, cand := range resp.Candidates {
		if cand == nil || cand.Content == nil {
			out.Output = append(out.Output, llm.UnknownOutput{Type: "candidate"})
			continue
		}
		m := llm.MessageOutput{}
		for _, part := range cand.Content.Parts {
			if part == nil || strings.TrimSpace(part.Text) == "" {
				continue
			}
			m.Content = append(m.Content, llm.ContentPart{Type: "output_text", Text: part.Text})
		}
		out.Output = append(out.Output, m)
	}
	return out
}
