package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julianshen/repodoc/internal/docgen"
	"github.com/julianshen/repodoc/internal/source"
)

// ---------- mocks ----------

type fakeSource struct {
	mu        sync.Mutex
	info      *source.RepoInfo
	infoErr   error
	tree      *source.Tree
	texts     map[string]string
	treeCalls int
}

func (f *fakeSource) RepoInfo(_ context.Context, _ source.RepoRef, _ string) (*source.RepoInfo, error) {
	if f.infoErr != nil {
		return nil, f.infoErr
	}
	return f.info, nil
}

func (f *fakeSource) Tree(_ context.Context, _ source.RepoRef, _, _ string) (*source.Tree, error) {
	f.mu.Lock()
	f.treeCalls++
	f.mu.Unlock()
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

func (f *fakeSource) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.treeCalls
}

type mockLLM struct {
	response string
	err      error
}

func (m *mockLLM) Complete(_ context.Context, _ string) (string, error) {
	return m.response, m.err
}

type fakeCounter struct {
	n int64
}

func (c *fakeCounter) Visits(_ context.Context) (int64, error) { return c.n, nil }

func (c *fakeCounter) IncrementVisits(_ context.Context) (int64, error) {
	c.n++
	return c.n, nil
}

// ---------- test helpers ----------

const docSetResponse = `{"project_name":"Demo","tagline":"t","tech_stack":["Go"],"complexity_score":"beginner","architecture_mermaid":"","readme_markdown":"# Demo"}`

func newFakeSource() *fakeSource {
	return &fakeSource{
		info: &source.RepoInfo{Owner: "octo", Name: "demo", DefaultBranch: "main", AuthMethod: "public_shared"},
		tree: &source.Tree{Entries: []source.TreeEntry{
			{Path: "go.mod", Type: source.EntryBlob},
			{Path: "README.md", Type: source.EntryBlob},
			{Path: "cmd", Type: source.EntryTree},
			{Path: "cmd/main.go", Type: source.EntryBlob},
		}},
		texts: map[string]string{"go.mod": "module demo", "README.md": "# demo", "cmd/main.go": "package main"},
	}
}

type harness struct {
	src     *fakeSource
	llm     *mockLLM
	counter *fakeCounter
	apiKeys []string
	handler http.Handler
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{src: newFakeSource(), llm: &mockLLM{response: docSetResponse}, counter: &fakeCounter{}}

	reg := source.NewRegistry()
	reg.Register(source.HostGitHub, h.src)

	srv, err := New(Options{
		Sources: reg,
		Visits:  h.counter,
		NewGenerator: func(_ context.Context, apiKey string) (docgen.LLMCompleter, string, error) {
			h.apiKeys = append(h.apiKeys, apiKey)
			return h.llm, "mock", nil
		},
		Pipeline: docgen.DefaultConfig(),
	})
	require.NoError(t, err)
	h.handler = srv.Handler()
	return h
}

func (h *harness) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

// ---------- tests ----------

func TestNewRequiresCollaborators(t *testing.T) {
	_, err := New(Options{})
	assert.Error(t, err)

	_, err = New(Options{Sources: source.NewRegistry()})
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	h := newHarness(t)

	rec := h.do(t, http.MethodPost, "/api/validate", map[string]string{"url": "https://github.com/octo/demo"})
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "success", body["status"])
	data := body["data"].(map[string]any)
	assert.Equal(t, "main", data["default_branch"])
	assert.Equal(t, "public_shared", data["auth_method"])
}

func TestValidateErrorKinds(t *testing.T) {
	tests := []struct {
		name       string
		url        string
		infoErr    error
		wantCode   int
		wantStatus string
	}{
		{"invalid url", "https://example.com/a/b", nil, http.StatusBadRequest, ""},
		{"auth required", "octo/demo", fmt.Errorf("%w (HTTP 404)", source.ErrAuthRequired), http.StatusOK, "auth_required"},
		{"auth denied", "octo/demo", fmt.Errorf("%w (HTTP 401)", source.ErrAuthDenied), http.StatusUnauthorized, ""},
		{"upstream", "octo/demo", &source.StatusError{Op: "lookup", StatusCode: 502, Err: source.ErrUpstream}, http.StatusBadGateway, ""},
		{"unexpected", "octo/demo", errors.New("boom"), http.StatusInternalServerError, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			h.src.infoErr = tt.infoErr

			rec := h.do(t, http.MethodPost, "/api/validate", map[string]string{"url": tt.url})
			assert.Equal(t, tt.wantCode, rec.Code)
			body := decodeBody(t, rec)
			if tt.wantStatus != "" {
				assert.Equal(t, tt.wantStatus, body["status"])
				data := body["data"].(map[string]any)
				assert.Equal(t, "octo", data["owner"])
				assert.Equal(t, "demo", data["repo"])
			} else {
				assert.NotEmpty(t, body["error"])
			}
		})
	}
}

func TestValidateInternalErrorHidesDetail(t *testing.T) {
	h := newHarness(t)
	h.src.infoErr = errors.New("secret detail")

	rec := h.do(t, http.MethodPost, "/api/validate", map[string]string{"url": "octo/demo"})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "secret detail")
}

func TestStructureCachesSharedTrees(t *testing.T) {
	h := newHarness(t)
	req := map[string]string{"owner": "octo", "repo": "demo", "branch": "main"}

	for i := 0; i < 2; i++ {
		rec := h.do(t, http.MethodPost, "/api/structure", req)
		require.Equal(t, http.StatusOK, rec.Code)
		data := decodeBody(t, rec)["data"].(map[string]any)
		assert.EqualValues(t, 3, data["total_files"])
		assert.Equal(t, false, data["is_truncated"])
		assert.Contains(t, data, "monorepo_analysis")
	}
	assert.Equal(t, 1, h.src.calls())

	req["userToken"] = "ghp_user"
	h.do(t, http.MethodPost, "/api/structure", req)
	h.do(t, http.MethodPost, "/api/structure", req)
	assert.Equal(t, 3, h.src.calls())
}

func TestStructureResolvesDefaultBranch(t *testing.T) {
	h := newHarness(t)
	rec := h.do(t, http.MethodPost, "/api/structure", map[string]string{"owner": "octo", "repo": "demo"})
	require.Equal(t, http.StatusOK, rec.Code)

	// The listing was cached under the resolved default branch.
	h.do(t, http.MethodPost, "/api/structure", map[string]string{"owner": "octo", "repo": "demo", "branch": "main"})
	assert.Equal(t, 1, h.src.calls())
}

func TestStructureMissingOwner(t *testing.T) {
	h := newHarness(t)
	rec := h.do(t, http.MethodPost, "/api/structure", map[string]string{"repo": "demo"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestFilterFiles(t *testing.T) {
	h := newHarness(t)
	rec := h.do(t, http.MethodPost, "/api/filter-files", map[string]any{
		"tree": h.src.tree.Entries,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	data := decodeBody(t, rec)["data"].(map[string]any)
	assert.Equal(t, []any{"go.mod", "README.md", "cmd/main.go"}, data["files"])
	assert.EqualValues(t, 3, data["count"])
}

func TestFetchContentKeepsOrder(t *testing.T) {
	h := newHarness(t)
	rec := h.do(t, http.MethodPost, "/api/fetch-content", map[string]any{
		"owner":     "octo",
		"repo":      "demo",
		"branch":    "main",
		"filePaths": []string{"README.md", "go.mod", "missing.go"},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	raw := rec.Body.String()
	readme := strings.Index(raw, `"README.md"`)
	gomod := strings.Index(raw, `"go.mod"`)
	missing := strings.Index(raw, `"missing.go"`)
	require.True(t, readme >= 0 && gomod >= 0 && missing >= 0)
	assert.Less(t, readme, gomod)
	assert.Less(t, gomod, missing)
	assert.Contains(t, raw, docgen.BinaryPlaceholder)
}

func TestGenerate(t *testing.T) {
	h := newHarness(t)
	rec := h.do(t, http.MethodPost, "/api/generate", map[string]any{
		"tree":       h.src.tree.Entries,
		"contentMap": map[string]string{"go.mod": "module demo"},
		"apiKey":     " user-key ",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	data := decodeBody(t, rec)["data"].(map[string]any)
	assert.Equal(t, "Demo", data["project_name"])
	assert.Equal(t, "Beginner", data["complexity_score"])
	assert.True(t, strings.HasPrefix(data["architecture_mermaid"].(string), "graph TD"))
	assert.Equal(t, []string{"user-key"}, h.apiKeys)
}

func TestGenerateErrors(t *testing.T) {
	h := newHarness(t)

	rec := h.do(t, http.MethodPost, "/api/generate", map[string]any{"contentMap": map[string]string{}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	h.llm.err = errors.New("quota exceeded")
	rec = h.do(t, http.MethodPost, "/api/generate", map[string]any{"contentMap": map[string]string{"a.go": "x"}})
	assert.Equal(t, http.StatusBadGateway, rec.Code)

	h.llm.err = nil
	h.llm.response = "not json"
	rec = h.do(t, http.MethodPost, "/api/generate", map[string]any{"contentMap": map[string]string{"a.go": "x"}})
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestDocument(t *testing.T) {
	h := newHarness(t)
	rec := h.do(t, http.MethodPost, "/api/document", map[string]string{"url": "https://github.com/octo/demo"})
	require.Equal(t, http.StatusOK, rec.Code)

	data := decodeBody(t, rec)["data"].(map[string]any)
	assert.Equal(t, "github.com/octo/demo", data["repository"])
	assert.Equal(t, "main", data["branch"])
	assert.Equal(t, "mock", data["generator"])
	docs := data["documents"].([]any)
	assert.Len(t, docs, 3)
}

func TestBadJSON(t *testing.T) {
	h := newHarness(t)
	req := httptest.NewRequest(http.MethodPost, "/api/validate", strings.NewReader("{"))
	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestVisits(t *testing.T) {
	h := newHarness(t)

	rec := h.do(t, http.MethodGet, "/api/visits", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 0, decodeBody(t, rec)["data"].(map[string]any)["count"])

	h.do(t, http.MethodPost, "/api/visits", nil)
	rec = h.do(t, http.MethodPost, "/api/visits", nil)
	assert.EqualValues(t, 2, decodeBody(t, rec)["data"].(map[string]any)["count"])
}

func TestVisitsNotConfigured(t *testing.T) {
	srv, err := New(Options{
		Sources: source.NewRegistry(),
		NewGenerator: func(context.Context, string) (docgen.LLMCompleter, string, error) {
			return nil, "", errors.New("unused")
		},
	})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/visits", nil))
	assert.Equal(t, http.StatusNotImplemented, rec.Code)
}

func TestCORSAndRequestID(t *testing.T) {
	h := newHarness(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/validate", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	rec = h.do(t, http.MethodGet, "/api/visits", nil)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{source.ErrInvalidReference, http.StatusBadRequest},
		{source.ErrAuthDenied, http.StatusUnauthorized},
		{source.ErrUpstream, http.StatusBadGateway},
		{fmt.Errorf("generate: %w", docgen.ErrGeneration), http.StatusBadGateway},
		{docgen.ErrMalformedResponse, http.StatusBadGateway},
		{context.Canceled, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, statusFor(tt.err), tt.err.Error())
	}
}
