package ner

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenAIRecognizerSendsTemperature(t *testing.T) {
	var sent map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(body, &sent))

		content := `{"entities": [{"label": "PERSON", "text": "Rahul Kumar"}, {"label": "DATE", "text": "01/02/1990"}]}`
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":     "chatcmpl-1",
			"object": "chat.completion",
			"model":  openai.GPT4oMini,
			"choices": []map[string]any{{
				"index":         0,
				"finish_reason": "stop",
				"message":       map[string]any{"role": "assistant", "content": content},
			}},
		})
	}))
	defer srv.Close()

	clientCfg := openai.DefaultConfig("test-key")
	clientCfg.BaseURL = srv.URL + "/v1"
	r := NewOpenAIRecognizerWithClient(openai.NewClientWithConfig(clientCfg), OpenAIConfig{})

	entities, err := r.Recognize(t.Context(), "Name\nRahul Kumar\nDOB 01/02/1990")
	require.NoError(t, err)
	require.Len(t, entities, 2)
	assert.Equal(t, Entity{Label: LabelPerson, Text: "Rahul Kumar", Start: 5}, entities[0])
	assert.Equal(t, LabelDate, entities[1].Label)

	require.Contains(t, sent, "temperature")
	assert.Greater(t, sent["temperature"].(float64), 0.0)
	assert.Less(t, sent["temperature"].(float64), 0.01)
	assert.Equal(t, openai.GPT4oMini, sent["model"])
}
