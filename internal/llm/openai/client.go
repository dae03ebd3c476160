package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/joseph-ayodele/bills-tracker/internal/llm"
)

var _ llm.Backend = (*Client)(nil)

func (c *Client) Name() string { return "openai:" + c.cfg.Model }

// Complete calls POST {BaseURL}/responses with a strict json_schema text format.
func (c *Client) Complete(ctx context.Context, p llm.Prompt) (llm.Response, error) {
	start := time.Now()

	body := map[string]any{
		"model": c.cfg.Model,
		"input": []map[string]any{
			{"role": "system", "content": []map[string]any{{"type": "input_text", "text": p.System}}},
			{"role": "user", "content": []map[string]any{{"type": "input_text", "text": p.User}}},
		},
		"text": map[string]any{
			"format": map[string]any{
				"type":   "json_schema",
				"name":   p.SchemaName,
				"schema": p.Schema,
				"strict": true,
			},
		},
	}
	if c.cfg.Temperature > 0 {
		body["temperature"] = c.cfg.Temperature
	}

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/responses"
	headers := map[string]string{"Authorization": "Bearer " + c.cfg.APIKey}

	raw, status, err := llm.SendJSON(ctx, c.http, endpoint, body, headers, c.logger)
	if err != nil {
		c.logger.Error("llm.openai.http_error", "status", status, "error", err, "elapsed_ms", time.Since(start).Milliseconds())
		return llm.Response{}, err
	}

	var decoded responseBody
	if err := json.Unmarshal(raw, &decoded); err != nil {
		c.logger.Error("llm.openai.decode_error", "error", err, "raw_bytes", len(raw))
		return llm.Response{}, fmt.Errorf("decode openai response: %w", err)
	}
	return decoded.toResponse(), nil
}

type responseBody struct {
	OutputText string       `json:"output_text"`
	Output     []outputItem `json:"output"`
}

type outputItem struct {
	Type    string `json:"type"`
	Text    string `json:"text"`
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

func (r responseBody) toResponse() llm.Response {
	out := llm.Response{OutputText: r.OutputText}
	for _, it := range r.Output {
		switch {
		case it.Type == "message":
			m := llm.MessageOutput{}
			for _, c := range it.Content {
				m.Content = append(m.Content, llm.ContentPart{Type: c.Type, Text: c.Text})
			}
			out.Output = append(out.Output, m)
		case strings.TrimSpace(it.Text) != "":
			out.Output = append(out.Output, llm.TextOutput{Type: it.Type, Text: it.Text})
		default:
			out.Output = append(out.Output, llm.UnknownOutput{Type: it.Type})
		}
	}
	return out
}
