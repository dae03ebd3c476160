package llm

import (
	"errors"
	"strings"
)

var ErrNoPayload = errors.New("no JSON text found in extraction response")

// Response is the normalized shape of a backend answer. The payload may sit
// in OutputText or in one of the Output items.
type Response struct {
	OutputText string
	Output     []OutputItem
}

// OutputItem is a closed union: MessageOutput | TextOutput | UnknownOutput.
type OutputItem interface {
	outputItem()
}

// MessageOutput carries an array of content parts.
type MessageOutput struct {
	Content []ContentPart
}

type ContentPart struct {
	Type string
	Text string
}

// TextOutput is any non-message item exposing a text field.
type TextOutput struct {
	Type string
	Text string
}

// UnknownOutput is kept so callers can log what was skipped.
type UnknownOutput struct {
	Type string
}

func (MessageOutput) outputItem() {}
func (TextOutput) outputItem()    {}
func (UnknownOutput) outputItem() {}

// ExtractJSONText locates the payload text; the first non-empty match wins.
func ExtractJSONText(resp Response) (string, error) {
	if s := strings.TrimSpace(resp.OutputText); s != "" {
		return s, nil
	}
	for _, item := range resp.Output {
		switch v := item.(type) {
		case MessageOutput:
			for _, c := range v.Content {
				if s := strings.TrimSpace(c.Text); s != "" {
					return s, nil
				}
			}
		case TextOutput:
			if s := strings.TrimSpace(v.Text); s != "" {
				return s, nil
			}
		case UnknownOutput:
		}
	}
	return "", ErrNoPayload
}

// CleanModelJSON strips markdown fences and any prose around the outermost object.
func CleanModelJSON(raw string) string {
	s := strings.TrimSpace(raw)

	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		} else {
			return s
		}
		s = strings.TrimSpace(s)
	}
	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}
	s = strings.TrimSpace(s)

	if start := strings.Index(s, "{"); start != -1 {
		if end := strings.LastIndex(s, "}"); end != -1 && end > start {
			s = strings.TrimSpace(s[start : end+1])
		}
	}
	return s
}
