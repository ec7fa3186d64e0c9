// Package generator hides the generative backends behind one interface.
// Backends register themselves by name from their own packages.
package generator

import (
	"context"
	"fmt"
	"strings"

	"github.com/julianshen/repodoc/internal/config"
)

// Generator sends one prompt and returns the model's raw text answer.
type Generator interface {
	Name() string
	Complete(ctx context.Context, prompt string) (string, error)
}

// Options carries everything a backend constructor needs.
type Options struct {
	BaseURL           string
	APIKey            string
	Model             string
	ExtraHeaders      map[string]string
	RequestsPerSecond float64
}

// Constructor creates a Generator.
type Constructor func(ctx context.Context, opts Options) (Generator, error)

// registry holds registered backend constructors.
var registry = map[string]Constructor{}

// Register registers a backend constructor by name.
func Register(name string, constructor Constructor) {
	registry[name] = constructor
}

// New creates the configured default Generator. A non-empty apiKey
// replaces the configured credential.
func New(ctx context.Context, cfg *config.Config, apiKey string) (Generator, error) {
	if cfg.Generator.Default == "gemini" {
		return newGemini(ctx, cfg, apiKey)
	}
	return newOpenAICompatible(ctx, cfg, apiKey)
}

func newGemini(ctx context.Context, cfg *config.Config, apiKey string) (Generator, error) {
	constructor, ok := registry["gemini"]
	if !ok {
		return nil, fmt.Errorf("gemini generator not registered")
	}

	gc := cfg.Generator.Gemini
	if apiKey == "" {
		var err error
		apiKey, err = config.ResolveAPIKey(gc.APIKeySource, gc.APIKey, "GOOGLE_API_KEY")
		if err != nil {
			return nil, fmt.Errorf("resolving Gemini API key: %w", err)
		}
	}

	return constructor(ctx, Options{
		BaseURL:           gc.BaseURL,
		APIKey:            apiKey,
		Model:             cfg.Generator.Model,
		RequestsPerSecond: gc.RequestsPerSecond,
	})
}

func newOpenAICompatible(ctx context.Context, cfg *config.Config, apiKey string) (Generator, error) {
	name := cfg.Generator.Default

	constructor, ok := registry["openai"]
	if !ok {
		return nil, fmt.Errorf("openai generator not registered")
	}

	for _, oc := range cfg.Generator.OpenAI {
		if oc.Name != name {
			continue
		}
		if apiKey == "" {
			envVar := strings.ToUpper(name) + "_API_KEY"
			var err error
			apiKey, err = config.ResolveAPIKey(oc.APIKeySource, oc.APIKey, envVar)
			if err != nil {
				return nil, fmt.Errorf("resolving %s API key: %w", name, err)
			}
		}
		return constructor(ctx, Options{
			BaseURL:      oc.BaseURL,
			APIKey:       apiKey,
			Model:        cfg.Generator.Model,
			ExtraHeaders: oc.ExtraHeaders,
		})
	}

	return nil, fmt.Errorf("unknown generator: %q", name)
}
