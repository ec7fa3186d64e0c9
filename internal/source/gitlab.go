package source

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"unicode/utf8"

	"github.com/xanzy/go-gitlab"
	"golang.org/x/time/rate"
)

// maxTreePages bounds a GitLab tree walk; hitting it marks the tree truncated.
const maxTreePages = 100

// GitLabOptions configures the GitLab source.
type GitLabOptions struct {
	SharedToken string
	BaseURL     string
	Client      ClientOptions
}

// GitLab implements Source on top of the GitLab v4 API. GitLab has no batch
// blob endpoint, so FetchTexts reads files one by one inside a batch.
type GitLab struct {
	opts GitLabOptions
}

// NewGitLab creates a GitLab source.
func NewGitLab(opts GitLabOptions) *GitLab {
	return &GitLab{opts: opts}
}

func (g *GitLab) client(token string) (*gitlab.Client, error) {
	if token == "" {
		token = g.opts.SharedToken
	}

	limit := rate.Inf
	if g.opts.Client.RequestsPerSecond > 0 {
		limit = rate.Limit(g.opts.Client.RequestsPerSecond)
	}

	options := []gitlab.ClientOptionFunc{
		gitlab.WithHTTPClient(&http.Client{Timeout: g.opts.Client.Timeout}),
		gitlab.WithCustomRetryMax(g.opts.Client.MaxRetries),
		gitlab.WithCustomLimiter(rate.NewLimiter(limit, 1)),
	}
	if g.opts.BaseURL != "" {
		options = append(options, gitlab.WithBaseURL(g.opts.BaseURL))
	}

	c, err := gitlab.NewClient(token, options...)
	if err != nil {
		return nil, fmt.Errorf("creating GitLab client: %w", err)
	}
	return c, nil
}

// RepoInfo looks up project metadata.
func (g *GitLab) RepoInfo(ctx context.Context, ref RepoRef, token string) (*RepoInfo, error) {
	c, err := g.client(token)
	if err != nil {
		return nil, err
	}

	p, resp, err := c.Projects.GetProject(ref.FullName(), nil, gitlab.WithContext(ctx))
	if err != nil {
		return nil, classifyMetadataStatus(gitlabStatus(resp), token != "", err)
	}

	owner := ref.Owner
	if p.Namespace != nil && p.Namespace.FullPath != "" {
		owner = p.Namespace.FullPath
	}
	return &RepoInfo{
		Owner:         owner,
		Name:          p.Path,
		DefaultBranch: p.DefaultBranch,
		Private:       p.Visibility == gitlab.PrivateVisibility,
		Description:   p.Description,
		AuthMethod:    authMethod(token),
	}, nil
}

// Tree walks the paginated recursive tree listing of branch.
func (g *GitLab) Tree(ctx context.Context, ref RepoRef, branch, token string) (*Tree, error) {
	c, err := g.client(token)
	if err != nil {
		return nil, err
	}

	tree := &Tree{}
	opts := &gitlab.ListTreeOptions{
		ListOptions: gitlab.ListOptions{PerPage: 100, Page: 1},
		Ref:         gitlab.Ptr(branch),
		Recursive:   gitlab.Ptr(true),
	}
	for page := 0; ; page++ {
		if page == maxTreePages {
			tree.Truncated = true
			break
		}

		nodes, resp, err := c.Repositories.ListTree(ref.FullName(), opts, gitlab.WithContext(ctx))
		if err != nil {
			return nil, upstream("tree listing", gitlabStatus(resp), err)
		}
		for _, n := range nodes {
			tree.Entries = append(tree.Entries, TreeEntry{Path: n.Path, Type: n.Type})
		}

		if resp == nil || resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return tree, nil
}

// FetchTexts reads each path's raw content. Unknown paths are omitted; any
// other failure fails the whole batch.
func (g *GitLab) FetchTexts(ctx context.Context, ref RepoRef, branch, token string, paths []string) (map[string]string, error) {
	c, err := g.client(token)
	if err != nil {
		return nil, err
	}

	texts := make(map[string]string, len(paths))
	for _, p := range paths {
		raw, resp, err := c.RepositoryFiles.GetRawFile(ref.FullName(), p, &gitlab.GetRawFileOptions{
			Ref: gitlab.Ptr(branch),
		}, gitlab.WithContext(ctx))
		if err != nil {
			if gitlabStatus(resp) == http.StatusNotFound {
				continue
			}
			return nil, upstream("blob batch", gitlabStatus(resp), err)
		}
		if isBinary(raw) {
			texts[p] = ""
			continue
		}
		texts[p] = string(raw)
	}
	return texts, nil
}

// isBinary applies the usual heuristic: a NUL byte in the first 8000
// bytes, or invalid UTF-8.
func isBinary(data []byte) bool {
	head := data
	if len(head) > 8000 {
		head = head[:8000]
	}
	return bytes.IndexByte(head, 0) >= 0 || !utf8.Valid(data)
}

func gitlabStatus(resp *gitlab.Response) int {
	if resp == nil || resp.Response == nil {
		return 0
	}
	return resp.StatusCode
}
