package docgen

import (
	"context"
	"fmt"
	"sync"

	"github.com/julianshen/repodoc/internal/source"
)

// ---------- mocks ----------

type fakeSource struct {
	mu      sync.Mutex
	info    *source.RepoInfo
	tree    *source.Tree
	treeErr error
	texts   map[string]string
	failOn  map[string]bool // a batch containing one of these paths fails
	calls   [][]string
}

func (f *fakeSource) RepoInfo(_ context.Context, ref source.RepoRef, _ string) (*source.RepoInfo, error) {
	if f.info == nil {
		return nil, fmt.Errorf("%w: no metadata", source.ErrUpstream)
	}
	return f.info, nil
}

func (f *fakeSource) Tree(_ context.Context, _ source.RepoRef, _, _ string) (*source.Tree, error) {
	if f.treeErr != nil {
		return nil, f.treeErr
	}
	return f.tree, nil
}

func (f *fakeSource) FetchTexts(_ context.Context, _ source.RepoRef, _, _ string, paths []string) (map[string]string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, append([]string(nil), paths...))
	f.mu.Unlock()

	out := make(map[string]string)
	for _, p := range paths {
		if f.failOn[p] {
			return nil, fmt.Errorf("%w: batch containing %s", source.ErrUpstream, p)
		}
		if t, ok := f.texts[p]; ok {
			out[p] = t
		}
	}
	return out, nil
}

func (f *fakeSource) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type mockLLMCompleter struct {
	response string
	err      error
	prompts  []string
}

func (m *mockLLMCompleter) Complete(_ context.Context, prompt string) (string, error) {
	m.prompts = append(m.prompts, prompt)
	if m.err != nil {
		return "", m.err
	}
	return m.response, nil
}

// ---------- test helpers ----------

func blobs(paths ...string) []source.TreeEntry {
	out := make([]source.TreeEntry, len(paths))
	for i, p := range paths {
		out[i] = source.TreeEntry{Path: p, Type: source.EntryBlob}
	}
	return out
}

func numberedPaths(prefix string, n int, ext string) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("%s%02d%s", prefix, i, ext)
	}
	return out
}
