// Package gemini implements a generator on the Gemini API.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/time/rate"
	"google.golang.org/genai"

	"github.com/julianshen/repodoc/internal/generator"
)

func init() {
	generator.Register("gemini", func(ctx context.Context, opts generator.Options) (generator.Generator, error) {
		return New(ctx, opts)
	})
}

const defaultModel = "gemini-2.5-flash"

var errEmptyResponse = errors.New("gemini returned no candidates")

// Generator asks Gemini for a JSON answer.
type Generator struct {
	client  *genai.Client
	model   string
	limiter *rate.Limiter
}

// New creates a Gemini generator. A zero RequestsPerSecond disables
// client-side rate limiting.
func New(ctx context.Context, opts generator.Options) (*Generator, error) {
	cc := &genai.ClientConfig{
		APIKey:  opts.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if opts.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: opts.BaseURL}
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("creating Gemini client: %w", err)
	}

	model := opts.Model
	if model == "" {
		model = defaultModel
	}

	limit := rate.Inf
	if opts.RequestsPerSecond > 0 {
		limit = rate.Limit(opts.RequestsPerSecond)
	}

	return &Generator{
		client:  client,
		model:   model,
		limiter: rate.NewLimiter(limit, 1),
	}, nil
}

func (g *Generator) Name() string { return "gemini:" + g.model }

// Complete sends prompt in JSON response mode and joins the text parts of
// the first candidate.
func (g *Generator) Complete(ctx context.Context, prompt string) (string, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return "", err
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model,
		[]*genai.Content{{Role: "user", Parts: []*genai.Part{{Text: prompt}}}},
		&genai.GenerateContentConfig{ResponseMIMEType: "application/json"},
	)
	if err != nil {
		return "", fmt.Errorf("gemini: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", errEmptyResponse
	}

	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		b.WriteString(part.Text)
	}
	return b.String(), nil
}
