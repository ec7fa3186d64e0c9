// Package source talks to source-control hosts: repository metadata,
// recursive tree listings, and batched blob text retrieval.
package source

import "context"

// Entry types reported by tree listings.
const (
	EntryBlob = "blob"
	EntryTree = "tree"
)

// RepoRef identifies a repository on a host.
type RepoRef struct {
	Host   string `json:"host"`
	Owner  string `json:"owner"`
	Name   string `json:"repo"`
	Branch string `json:"branch,omitempty"` // optional, from a /tree/<branch> URL
}

// FullName returns "owner/name".
func (r RepoRef) FullName() string {
	return r.Owner + "/" + r.Name
}

// RepoInfo is the metadata returned by the validate step.
type RepoInfo struct {
	Owner         string `json:"owner"`
	Name          string `json:"repo"`
	DefaultBranch string `json:"default_branch"`
	Private       bool   `json:"is_private"`
	SizeKB        int    `json:"size_kb"`
	Description   string `json:"description"`
	AuthMethod    string `json:"auth_method"` // user_pat or public_shared
}

// TreeEntry is one entry of a recursive tree listing.
type TreeEntry struct {
	Path string `json:"path"`
	Type string `json:"type"`
	Size int64  `json:"size,omitempty"`
}

// Tree is a full recursive listing.
type Tree struct {
	Entries   []TreeEntry `json:"tree"`
	Truncated bool        `json:"truncated"`
}

// BlobPaths returns the paths of file entries in tree order.
func (t *Tree) BlobPaths() []string {
	var paths []string
	for _, e := range t.Entries {
		if e.Type == EntryBlob {
			paths = append(paths, e.Path)
		}
	}
	return paths
}

// Source is the full collaborator surface for one host. Token is the
// caller's own credential and may be empty.
type Source interface {
	RepoInfo(ctx context.Context, ref RepoRef, token string) (*RepoInfo, error)
	Tree(ctx context.Context, ref RepoRef, branch, token string) (*Tree, error)
	// FetchTexts returns the text of each path it could read. Binary or empty
	// blobs map to "". Paths the host does not know are omitted.
	FetchTexts(ctx context.Context, ref RepoRef, branch, token string, paths []string) (map[string]string, error)
}

func authMethod(token string) string {
	if token != "" {
		return "user_pat"
	}
	return "public_shared"
}
