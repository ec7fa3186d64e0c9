package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	goopenai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julianshen/repodoc/internal/generator"
)

func TestComplete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		assert.Equal(t, "https://example.com", r.Header.Get("HTTP-Referer"))

		var req goopenai.ChatCompletionRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "gpt-test", req.Model)
		if assert.Len(t, req.Messages, 1) {
			assert.Equal(t, "user", req.Messages[0].Role)
			assert.Equal(t, "hello", req.Messages[0].Content)
		}
		if assert.NotNil(t, req.ResponseFormat) {
			assert.Equal(t, goopenai.ChatCompletionResponseFormatTypeJSONObject, req.ResponseFormat.Type)
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"1","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"{\"project_name\":\"Demo\"}"},"finish_reason":"stop"}]}`))
	}))
	defer srv.Close()

	g := New(generator.Options{
		BaseURL:      srv.URL + "/v1",
		APIKey:       "sk-test",
		Model:        "gpt-test",
		ExtraHeaders: map[string]string{"HTTP-Referer": "https://example.com"},
	})

	out, err := g.Complete(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, `{"project_name":"Demo"}`, out)
	assert.Equal(t, "openai:gpt-test", g.Name())
}

func TestCompleteNoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"1","choices":[]}`))
	}))
	defer srv.Close()

	g := New(generator.Options{BaseURL: srv.URL, APIKey: "k", Model: "m"})
	_, err := g.Complete(context.Background(), "x")
	assert.ErrorIs(t, err, errEmptyResponse)
}

func TestCompleteAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"message":"Incorrect API key provided","type":"invalid_request_error"}}`))
	}))
	defer srv.Close()

	g := New(generator.Options{BaseURL: srv.URL, APIKey: "bad", Model: "m"})
	_, err := g.Complete(context.Background(), "x")
	require.Error(t, err)

	var apiErr *goopenai.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.HTTPStatusCode)
	assert.Contains(t, err.Error(), "Incorrect API key provided")
}
