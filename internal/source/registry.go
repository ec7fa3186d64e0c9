package source

import (
	"fmt"
	"time"

	"github.com/julianshen/repodoc/internal/config"
)

const defaultTimeout = 30 * time.Second

// Registry resolves a host name to its Source.
type Registry struct {
	sources map[string]Source
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{sources: map[string]Source{}}
}

// Register binds host to src, replacing any previous binding.
func (r *Registry) Register(host string, src Source) {
	r.sources[host] = src
}

// For returns the Source serving ref's host.
func (r *Registry) For(ref RepoRef) (Source, error) {
	src, ok := r.sources[ref.Host]
	if !ok {
		return nil, fmt.Errorf("%w: unsupported host %q", ErrInvalidReference, ref.Host)
	}
	return src, nil
}

// NewRegistryFromConfig builds the GitHub and GitLab sources from cfg,
// resolving their shared tokens from GITHUB_SHARED_TOKEN and GITLAB_SHARED_TOKEN.
func NewRegistryFromConfig(cfg *config.Config) (*Registry, error) {
	ghToken, err := config.ResolveOptionalToken(cfg.GitHub.TokenSource, cfg.GitHub.Token, "GITHUB_SHARED_TOKEN")
	if err != nil {
		return nil, fmt.Errorf("resolving GitHub token: %w", err)
	}
	glToken, err := config.ResolveOptionalToken(cfg.GitLab.TokenSource, cfg.GitLab.Token, "GITLAB_SHARED_TOKEN")
	if err != nil {
		return nil, fmt.Errorf("resolving GitLab token: %w", err)
	}

	gh, err := NewGitHub(GitHubOptions{
		SharedToken: ghToken,
		APIURL:      cfg.GitHub.APIURL,
		GraphQLURL:  cfg.GitHub.GraphQLURL,
		Client: ClientOptions{
			RequestsPerSecond: cfg.GitHub.RequestsPerSecond,
			MaxRetries:        cfg.GitHub.MaxRetries,
			Timeout:           defaultTimeout,
		},
	})
	if err != nil {
		return nil, err
	}

	r := NewRegistry()
	r.Register(HostGitHub, gh)
	r.Register(HostGitLab, NewGitLab(GitLabOptions{
		SharedToken: glToken,
		BaseURL:     cfg.GitLab.BaseURL,
		Client: ClientOptions{
			RequestsPerSecond: cfg.GitLab.RequestsPerSecond,
			MaxRetries:        cfg.GitLab.MaxRetries,
			Timeout:           defaultTimeout,
		},
	}))
	return r, nil
}
