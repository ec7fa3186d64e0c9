package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/julianshen/repodoc/internal/docgen"
	"github.com/julianshen/repodoc/internal/output"
	"github.com/julianshen/repodoc/internal/source"
)

const maxBodyBytes = 8 << 20

func decode(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: invalid JSON body: %v", errBadRequest, err)
	}
	return nil
}

// repoRequest names a repository either by URL or by host/owner/repo.
type repoRequest struct {
	URL       string `json:"url"`
	Host      string `json:"host"`
	Owner     string `json:"owner"`
	Repo      string `json:"repo"`
	Branch    string `json:"branch"`
	UserToken string `json:"userToken"`
}

func (q repoRequest) ref() (source.RepoRef, error) {
	if q.URL != "" {
		return source.ParseRepoURL(q.URL)
	}
	if q.Owner == "" || q.Repo == "" {
		return source.RepoRef{}, fmt.Errorf("%w: owner and repo are required", source.ErrInvalidReference)
	}
	host := q.Host
	if host == "" {
		host = source.HostGitHub
	}
	return source.RepoRef{Host: host, Owner: q.Owner, Name: q.Repo, Branch: q.Branch}, nil
}

func (s *Server) resolve(q repoRequest) (source.RepoRef, source.Source, error) {
	ref, err := q.ref()
	if err != nil {
		return ref, nil, err
	}
	src, err := s.sources.For(ref)
	return ref, src, err
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	var req repoRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	ref, src, err := s.resolve(req)
	if err != nil {
		writeError(w, err)
		return
	}

	info, err := src.RepoInfo(r.Context(), ref, req.UserToken)
	if errors.Is(err, source.ErrAuthRequired) {
		writeAuthRequired(w, &ref)
		return
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, info)
}

func (s *Server) handleStructure(w http.ResponseWriter, r *http.Request) {
	var req repoRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	ref, src, err := s.resolve(req)
	if err != nil {
		writeError(w, err)
		return
	}
	ctx := r.Context()

	branch, err := docgen.ResolveBranch(ctx, src, ref, req.Branch, req.UserToken)
	if err != nil {
		writeError(w, err)
		return
	}

	tree, ok := s.cachedTree(ref, branch, req.UserToken)
	if !ok {
		tree, err = src.Tree(ctx, ref, branch, req.UserToken)
		if err != nil {
			writeError(w, err)
			return
		}
		if req.UserToken == "" {
			s.trees.add(ref, branch, tree)
		}
	}
	writeSuccess(w, docgen.Summarize(tree))
}

func (s *Server) cachedTree(ref source.RepoRef, branch, token string) (*source.Tree, bool) {
	if token != "" {
		return nil, false
	}
	return s.trees.get(ref, branch)
}

type filterRequest struct {
	Tree    []source.TreeEntry `json:"tree"`
	Subpath string             `json:"subpath"`
}

func (s *Server) handleFilterFiles(w http.ResponseWriter, r *http.Request) {
	var req filterRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	selected := docgen.SelectKeyFiles(req.Tree, req.Subpath, s.cfg.Selection)
	writeSuccess(w, map[string]any{"files": selected, "count": len(selected)})
}

type fetchRequest struct {
	repoRequest
	FilePaths []string `json:"filePaths"`
}

func (s *Server) handleFetchContent(w http.ResponseWriter, r *http.Request) {
	var req fetchRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	ref, src, err := s.resolve(req.repoRequest)
	if err != nil {
		writeError(w, err)
		return
	}
	ctx := r.Context()

	branch, err := docgen.ResolveBranch(ctx, src, ref, req.Branch, req.UserToken)
	if err != nil {
		writeError(w, err)
		return
	}

	asm := &docgen.Assembler{Source: src, Config: s.cfg.Fetch}
	contents, stats, err := asm.Fetch(ctx, ref, branch, req.UserToken, req.FilePaths)
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, map[string]any{"contentMap": contents, "stats": stats})
}

type generateRequest struct {
	Tree       []source.TreeEntry `json:"tree"`
	ContentMap *docgen.ContentMap `json:"contentMap"`
	APIKey     string             `json:"apiKey"`
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.ContentMap.Len() == 0 {
		writeError(w, fmt.Errorf("%w: contentMap is empty", errBadRequest))
		return
	}
	ctx := r.Context()

	llm, _, err := s.newGenerator(ctx, strings.TrimSpace(req.APIKey))
	if err != nil {
		writeError(w, err)
		return
	}
	set, err := docgen.Generate(ctx, llm, req.Tree, req.ContentMap, s.cfg.TreeListingLimit)
	if err != nil {
		writeError(w, err)
		return
	}
	docgen.EnsureDiagram(set, req.ContentMap.Paths())
	writeSuccess(w, set)
}

type documentRequest struct {
	repoRequest
	Subpath string `json:"subpath"`
	APIKey  string `json:"apiKey"`
}

type documentResponse struct {
	*output.Report
	Documents []docgen.Document `json:"documents,omitempty"`
}

func (s *Server) handleDocument(w http.ResponseWriter, r *http.Request) {
	var req documentRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	ref, src, err := s.resolve(req.repoRequest)
	if err != nil {
		writeError(w, err)
		return
	}
	ctx := r.Context()

	llm, name, err := s.newGenerator(ctx, strings.TrimSpace(req.APIKey))
	if err != nil {
		writeError(w, err)
		return
	}

	p := &docgen.Pipeline{Source: src, LLM: llm, Config: s.cfg}
	res, err := p.Run(ctx, docgen.Request{Ref: ref, Branch: req.Branch, Scope: req.Subpath, Token: req.UserToken})
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, documentResponse{Report: output.NewReport(res, name), Documents: res.Documents})
}

func (s *Server) handleVisits(w http.ResponseWriter, r *http.Request) {
	s.writeVisits(w, r, false)
}

func (s *Server) handleIncrementVisits(w http.ResponseWriter, r *http.Request) {
	s.writeVisits(w, r, true)
}

func (s *Server) writeVisits(w http.ResponseWriter, r *http.Request, increment bool) {
	if s.visits == nil {
		writeJSON(w, http.StatusNotImplemented, errorBody{Error: "visit counter is not configured"})
		return
	}
	var (
		n   int64
		err error
	)
	if increment {
		n, err = s.visits.IncrementVisits(r.Context())
	} else {
		n, err = s.visits.Visits(r.Context())
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, map[string]int64{"count": n})
}
