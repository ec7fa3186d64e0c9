package source

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// Known hosts.
const (
	HostGitHub = "github.com"
	HostGitLab = "gitlab.com"
)

var shorthandPattern = regexp.MustCompile(`^[A-Za-z0-9_.-]+/[A-Za-z0-9_.-]+$`)

// ParseRepoURL turns a repository URL or "owner/repo" shorthand into a
// RepoRef. It never touches the network.
func ParseRepoURL(raw string) (RepoRef, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return RepoRef{}, fmt.Errorf("%w: empty reference", ErrInvalidReference)
	}

	if shorthandPattern.MatchString(raw) && !strings.Contains(raw, ".com") {
		owner, name, _ := strings.Cut(raw, "/")
		return newRef(HostGitHub, owner, strings.TrimSuffix(name, ".git"), "")
	}

	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return RepoRef{}, fmt.Errorf("%w: %v", ErrInvalidReference, err)
	}

	host := strings.TrimPrefix(strings.ToLower(u.Host), "www.")
	segments := splitPath(u.Path)

	switch host {
	case HostGitHub:
		return parseGitHubPath(segments)
	case HostGitLab:
		return parseGitLabPath(segments)
	default:
		return RepoRef{}, fmt.Errorf("%w: unsupported host %q", ErrInvalidReference, u.Host)
	}
}

func parseGitHubPath(segments []string) (RepoRef, error) {
	if len(segments) < 2 {
		return RepoRef{}, fmt.Errorf("%w: expected github.com/<owner>/<repo>", ErrInvalidReference)
	}
	branch := ""
	if len(segments) >= 4 && segments[2] == "tree" {
		branch = segments[3]
	}
	return newRef(HostGitHub, segments[0], strings.TrimSuffix(segments[1], ".git"), branch)
}

// GitLab projects may live under nested groups; "/-/" starts the UI suffix.
func parseGitLabPath(segments []string) (RepoRef, error) {
	branch := ""
	for i, s := range segments {
		if s == "-" {
			rest := segments[i+1:]
			if len(rest) >= 2 && rest[0] == "tree" {
				branch = rest[1]
			}
			segments = segments[:i]
			break
		}
	}
	if len(segments) < 2 {
		return RepoRef{}, fmt.Errorf("%w: expected gitlab.com/<group>/<project>", ErrInvalidReference)
	}
	owner := strings.Join(segments[:len(segments)-1], "/")
	name := strings.TrimSuffix(segments[len(segments)-1], ".git")
	return newRef(HostGitLab, owner, name, branch)
}

func newRef(host, owner, name, branch string) (RepoRef, error) {
	if owner == "" || name == "" {
		return RepoRef{}, fmt.Errorf("%w: missing owner or repository name", ErrInvalidReference)
	}
	return RepoRef{Host: host, Owner: owner, Name: name, Branch: branch}, nil
}

func splitPath(p string) []string {
	var out []string
	for _, s := range strings.Split(p, "/") {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
