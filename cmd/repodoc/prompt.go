// cmd/repodoc/prompt.go
package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/huh/spinner"

	"github.com/julianshen/repodoc/internal/docgen"
	"github.com/julianshen/repodoc/internal/source"
)

// promptToken asks for a personal access token. An empty answer means the
// user declined.
func promptToken(ref source.RepoRef) (string, error) {
	var token string
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Personal access token").
				Description(fmt.Sprintf("%s is private or does not exist. Leave empty to abort.", ref.FullName())).
				Placeholder("ghp_...").
				Value(&token).
				EchoMode(huh.EchoModePassword),
		).Title("Authentication"),
	)
	if err := form.Run(); err != nil {
		return "", fmt.Errorf("token prompt: %w", err)
	}
	return strings.TrimSpace(token), nil
}

// scopeOptions lists the whole repository first, then each sub-project.
func scopeOptions(analysis docgen.MonorepoAnalysis) []huh.Option[string] {
	opts := []huh.Option[string]{huh.NewOption("Whole repository", "")}
	for _, c := range analysis.Candidates {
		opts = append(opts, huh.NewOption(c, c))
	}
	return opts
}

// promptScope lets the user pick one sub-project of a monorepo.
func promptScope(analysis docgen.MonorepoAnalysis) (string, error) {
	var scope string
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("This looks like a monorepo. What should be documented?").
				Options(scopeOptions(analysis)...).
				Value(&scope),
		),
	)
	if err := form.Run(); err != nil {
		return "", fmt.Errorf("scope prompt: %w", err)
	}
	return scope, nil
}

// withSpinner runs fn, showing a spinner when enabled.
func withSpinner(ctx context.Context, enabled bool, title string, fn func() error) error {
	if !enabled {
		return fn()
	}
	var err error
	if serr := spinner.New().Title(title).Context(ctx).Action(func() { err = fn() }).Run(); serr != nil {
		return serr
	}
	return err
}
