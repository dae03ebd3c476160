package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSONText(t *testing.T) {
	tests := []struct {
		name string
		resp Response
		want string
	}{
		{"output text wins", Response{OutputText: "  {\"a\":1} ", Output: []OutputItem{TextOutput{Text: "other"}}}, `{"a":1}`},
		{"message content", Response{Output: []OutputItem{
			UnknownOutput{Type: "reasoning"},
			MessageOutput{Content: []ContentPart{{Type: "output_text", Text: ""}, {Type: "output_text", Text: `{"b":2}`}}},
		}}, `{"b":2}`},
		{"generic text item", Response{Output: []OutputItem{TextOutput{Type: "output_text", Text: " {} "}}}, `{}`},
		{"first match wins", Response{Output: []OutputItem{
			TextOutput{Text: "first"},
			MessageOutput{Content: []ContentPart{{Text: "second"}}},
		}}, "first"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractJSONText(tt.resp)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractJSONTextNoPayload(t *testing.T) {
	_, err := ExtractJSONText(Response{Output: []OutputItem{
		UnknownOutput{Type: "reasoning"},
		MessageOutput{},
		TextOutput{Text: "   "},
	}})
	assert.ErrorIs(t, err, ErrNoPayload)
}

func TestCleanModelJSON(t *testing.T) {
	assert.Equal(t, `{"a":1}`, CleanModelJSON("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, CleanModelJSON("Here you go: {\"a\":1} done"))
	assert.Equal(t, `{"a":{"b":2}}`, CleanModelJSON(`{"a":{"b":2}}`))
}
