// Package openai implements a generator on any OpenAI-compatible chat
// completions API (OpenAI, OpenRouter, Ollama).
package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	goopenai "github.com/sashabaranov/go-openai"

	"github.com/julianshen/repodoc/internal/generator"
)

func init() {
	generator.Register("openai", func(_ context.Context, opts generator.Options) (generator.Generator, error) {
		return New(opts), nil
	})
}

var errEmptyResponse = errors.New("no choices in completion response")

// Generator asks an OpenAI-compatible endpoint for a JSON object.
type Generator struct {
	client *goopenai.Client
	model  string
}

// New creates an OpenAI-compatible generator.
func New(opts generator.Options) *Generator {
	cfg := goopenai.DefaultConfig(opts.APIKey)
	if opts.BaseURL != "" {
		cfg.BaseURL = opts.BaseURL
	}
	if len(opts.ExtraHeaders) > 0 {
		cfg.HTTPClient = &http.Client{
			Transport: &headerTransport{base: http.DefaultTransport, headers: opts.ExtraHeaders},
		}
	}

	return &Generator{
		client: goopenai.NewClientWithConfig(cfg),
		model:  opts.Model,
	}
}

func (g *Generator) Name() string { return "openai:" + g.model }

// Complete sends prompt as a single user message in JSON object mode.
func (g *Generator) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.CreateChatCompletion(ctx, goopenai.ChatCompletionRequest{
		Model: g.model,
		Messages: []goopenai.ChatCompletionMessage{
			{Role: goopenai.ChatMessageRoleUser, Content: prompt},
		},
		ResponseFormat: &goopenai.ChatCompletionResponseFormat{
			Type: goopenai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errEmptyResponse
	}
	return resp.Choices[0].Message.Content, nil
}

// headerTransport adds fixed headers, such as OpenRouter's HTTP-Referer,
// to every request.
type headerTransport struct {
	base    http.RoundTripper
	headers map[string]string
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	for k, v := range t.headers {
		req.Header.Set(k, v)
	}
	return t.base.RoundTrip(req)
}
