package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/bills-tracker/internal/llm"
)

func TestCompletePostsResponsesRequest(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/responses", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
		  "output": [
		    {"type": "reasoning", "summary": []},
		    {"type": "message", "content": [{"type": "output_text", "text": "{\"ok\":true}"}]}
		  ]
		}`))
	}))
	defer srv.Close()

	c := NewClient(Config{APIKey: "sk-test", BaseURL: srv.URL + "/v1/", Model: "gpt-5-mini"}, nil)
	resp, err := c.Complete(context.Background(), llm.Prompt{
		System: "sys", User: "user", SchemaName: llm.SchemaName, Schema: llm.BuildBillingJSONSchema(),
	})
	require.NoError(t, err)

	text, err := llm.ExtractJSONText(resp)
	require.NoError(t, err)
	assert.Equal(t, `{"ok":true}`, text)
	require.Len(t, resp.Output, 2)
	assert.IsType(t, llm.UnknownOutput{}, resp.Output[0])

	assert.Equal(t, "gpt-5-mini", got["model"])
	_, hasTemp := got["temperature"]
	assert.False(t, hasTemp)
	format := got["text"].(map[string]any)["format"].(map[string]any)
	assert.Equal(t, "json_schema", format["type"])
	assert.Equal(t, llm.SchemaName, format["name"])
	assert.Equal(t, true, format["strict"])
	input := got["input"].([]any)
	require.Len(t, input, 2)
	assert.Equal(t, "system", input[0].(map[string]any)["role"])
}

func TestCompleteSurfacesStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"rate limited"}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewClient(Config{APIKey: "k", BaseURL: srv.URL}, nil)
	_, err := c.Complete(context.Background(), llm.Prompt{})
	var se *llm.StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusTooManyRequests, se.Code)
	assert.True(t, se.Temporary())
}

func TestCompleteOutputText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"output_text":"{}","output":[{"type":"output_text","text":"ignored"}]}`))
	}))
	defer srv.Close()

	resp, err := NewClient(Config{APIKey: "k", BaseURL: srv.URL}, nil).Complete(context.Background(), llm.Prompt{})
	require.NoError(t, err)
	assert.Equal(t, "{}", resp.OutputText)
	assert.Equal(t, llm.TextOutput{Type: "output_text", Text: "ignored"}, resp.Output[0])
}
