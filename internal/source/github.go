package source

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/go-github/v68/github"
)

const (
	defaultGitHubAPI     = "https://api.github.com/"
	defaultGitHubGraphQL = "https://api.github.com/graphql"
)

// GitHubOptions configures the GitHub source.
type GitHubOptions struct {
	SharedToken string // used when the caller supplies no token
	APIURL      string
	GraphQLURL  string
	Client      ClientOptions
}

// GitHub implements Source with the REST API for metadata and trees and
// the GraphQL API for batched blob text.
type GitHub struct {
	httpClient  *http.Client
	baseURL     *url.URL
	graphqlURL  string
	sharedToken string
}

// NewGitHub creates a GitHub source.
func NewGitHub(opts GitHubOptions) (*GitHub, error) {
	api := opts.APIURL
	if api == "" {
		api = defaultGitHubAPI
	}
	if !strings.HasSuffix(api, "/") {
		api += "/"
	}
	base, err := url.Parse(api)
	if err != nil {
		return nil, fmt.Errorf("parsing GitHub API URL: %w", err)
	}

	gql := opts.GraphQLURL
	if gql == "" {
		gql = defaultGitHubGraphQL
	}

	return &GitHub{
		httpClient:  newHTTPClient(opts.Client),
		baseURL:     base,
		graphqlURL:  gql,
		sharedToken: opts.SharedToken,
	}, nil
}

func (g *GitHub) client(token string) *github.Client {
	c := github.NewClient(g.httpClient)
	if token == "" {
		token = g.sharedToken
	}
	if token != "" {
		c = c.WithAuthToken(token)
	}
	c.BaseURL = g.baseURL
	return c
}

// RepoInfo looks up repository metadata.
func (g *GitHub) RepoInfo(ctx context.Context, ref RepoRef, token string) (*RepoInfo, error) {
	repo, resp, err := g.client(token).Repositories.Get(ctx, ref.Owner, ref.Name)
	if err != nil {
		return nil, classifyMetadataStatus(responseStatus(resp), token != "", err)
	}

	return &RepoInfo{
		Owner:         repo.GetOwner().GetLogin(),
		Name:          repo.GetName(),
		DefaultBranch: repo.GetDefaultBranch(),
		Private:       repo.GetPrivate(),
		SizeKB:        repo.GetSize(),
		Description:   repo.GetDescription(),
		AuthMethod:    authMethod(token),
	}, nil
}

// Tree fetches the recursive tree of branch.
func (g *GitHub) Tree(ctx context.Context, ref RepoRef, branch, token string) (*Tree, error) {
	t, resp, err := g.client(token).Git.GetTree(ctx, ref.Owner, ref.Name, branch, true)
	if err != nil {
		return nil, upstream("tree listing", responseStatus(resp), err)
	}

	tree := &Tree{
		Entries:   make([]TreeEntry, 0, len(t.Entries)),
		Truncated: t.GetTruncated(),
	}
	for _, e := range t.Entries {
		tree.Entries = append(tree.Entries, TreeEntry{
			Path: e.GetPath(),
			Type: e.GetType(),
			Size: int64(e.GetSize()),
		})
	}
	return tree, nil
}

type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

type blobObject struct {
	Text     *string `json:"text"`
	ByteSize int     `json:"byteSize"`
	IsBinary bool    `json:"isBinary"`
}

type blobQueryResponse struct {
	Data struct {
		Repository map[string]*blobObject `json:"repository"`
	} `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// FetchTexts reads all paths in one GraphQL request, aliasing each object
// lookup as f0..fN.
func (g *GitHub) FetchTexts(ctx context.Context, ref RepoRef, branch, token string, paths []string) (map[string]string, error) {
	if len(paths) == 0 {
		return map[string]string{}, nil
	}

	vars := map[string]any{"owner": ref.Owner, "name": ref.Name}
	for i, p := range paths {
		vars[fmt.Sprintf("e%d", i)] = branch + ":" + p
	}

	c := g.client(token)
	req, err := c.NewRequest(http.MethodPost, g.graphqlURL, graphQLRequest{
		Query:     buildBlobQuery(len(paths)),
		Variables: vars,
	})
	if err != nil {
		return nil, fmt.Errorf("building blob query: %w", err)
	}

	var out blobQueryResponse
	resp, err := c.Do(ctx, req, &out)
	if err != nil {
		return nil, upstream("blob batch", responseStatus(resp), err)
	}
	if out.Data.Repository == nil {
		msg := "repository not returned"
		if len(out.Errors) > 0 {
			msg = out.Errors[0].Message
		}
		return nil, upstream("blob batch", responseStatus(resp), errors.New(msg))
	}

	texts := make(map[string]string, len(paths))
	for i, p := range paths {
		obj := out.Data.Repository[fmt.Sprintf("f%d", i)]
		if obj == nil {
			continue
		}
		if obj.Text == nil || obj.IsBinary {
			texts[p] = ""
			continue
		}
		texts[p] = *obj.Text
	}
	return texts, nil
}

// buildBlobQuery renders a query with one aliased object lookup per path.
// Expressions travel as variables so paths never need escaping.
func buildBlobQuery(n int) string {
	var b strings.Builder
	b.WriteString("query($owner: String!, $name: String!")
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, ", $e%d: String!", i)
	}
	b.WriteString(") {\n  repository(owner: $owner, name: $name) {\n")
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, "    f%d: object(expression: $e%d) { ... on Blob { text byteSize isBinary } }\n", i, i)
	}
	b.WriteString("  }\n}")
	return b.String()
}

func responseStatus(resp *github.Response) int {
	if resp == nil || resp.Response == nil {
		return 0
	}
	return resp.StatusCode
}
