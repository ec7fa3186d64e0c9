package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/julianshen/repodoc/internal/config"
	"github.com/julianshen/repodoc/internal/docgen"
	"github.com/julianshen/repodoc/internal/source"
)

// ---------- mocks ----------

type fakeSource struct {
	info    *source.RepoInfo
	infoErr error
	tree    *source.Tree
	texts   map[string]string
}

func (f *fakeSource) RepoInfo(_ context.Context, _ source.RepoRef, _ string) (*source.RepoInfo, error) {
	if f.infoErr != nil {
		return nil, f.infoErr
	}
	return f.info, nil
}

func (f *fakeSource) Tree(_ context.Context, _ source.RepoRef, _, _ string) (*source.Tree, error) {
	return f.tree, nil
}

func (f *fakeSource) FetchTexts(_ context.Context, _ source.RepoRef, _, _ string, paths []string) (map[string]string, error) {
	out := map[string]string{}
	for _, p := range paths {
		if t, ok := f.texts[p]; ok {
			out[p] = t
		}
	}
	return out, nil
}

type mockLLMCompleter struct {
	response string
}

func (m *mockLLMCompleter) Complete(_ context.Context, _ string) (string, error) {
	return m.response, nil
}

// ---------- test helpers ----------

const docSetJSON = `{"project_name":"Demo","tagline":"A demo","tech_stack":["Go"],"complexity_score":"Intermediate","architecture_mermaid":"graph TD\n  A-->B","readme_markdown":"# Demo\n\nHello."}`

func newFakeSource() *fakeSource {
	return &fakeSource{
		info: &source.RepoInfo{Owner: "octo", Name: "demo", DefaultBranch: "main"},
		tree: &source.Tree{Entries: []source.TreeEntry{
			{Path: "go.mod", Type: source.EntryBlob},
			{Path: "README.md", Type: source.EntryBlob},
			{Path: "packages/api/package.json", Type: source.EntryBlob},
			{Path: "internal/handlers/user.go", Type: source.EntryBlob},
		}},
		texts: map[string]string{
			"go.mod":                    "module demo",
			"README.md":                 "# demo",
			"packages/api/package.json": `{"name":"api"}`,
			"internal/handlers/user.go": "package handlers",
		},
	}
}

func newTestApp(t *testing.T, src source.Source) *app {
	t.Helper()
	reg := source.NewRegistry()
	reg.Register(source.HostGitHub, src)
	llm := &mockLLMCompleter{response: docSetJSON}
	return &app{
		cfg:     config.DefaultConfig(),
		sources: reg,
		newGenerator: func(context.Context, string) (docgen.LLMCompleter, string, error) {
			return llm, "mock", nil
		},
	}
}

func requireFile(t *testing.T, path string) {
	t.Helper()
	require.FileExists(t, path)
}
