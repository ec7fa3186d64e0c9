package docgen

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/julianshen/repodoc/internal/config"
	"github.com/julianshen/repodoc/internal/source"
)

// Config holds all pipeline configuration.
type Config struct {
	Selection        SelectorConfig
	Fetch            AssemblerConfig
	TreeListingLimit int
}

// DefaultConfig returns the standard pipeline settings.
func DefaultConfig() Config {
	return Config{
		Selection:        DefaultSelectorConfig(),
		Fetch:            DefaultAssemblerConfig(),
		TreeListingLimit: DefaultTreeListingLimit,
	}
}

// ConfigFrom maps the [selection] and [fetch] sections onto a Config.
func ConfigFrom(cfg *config.Config) Config {
	return Config{
		Selection: SelectorConfig{
			MaxFiles:        cfg.Selection.MaxFiles,
			SparseThreshold: cfg.Selection.SparseThreshold,
			FallbackCeiling: cfg.Selection.FallbackCeiling,
		},
		Fetch: AssemblerConfig{
			BatchSize:   cfg.Fetch.BatchSize,
			MaxChars:    cfg.Fetch.MaxChars,
			Concurrency: cfg.Fetch.Concurrency,
		},
		TreeListingLimit: cfg.Selection.TreeListingLimit,
	}
}

// Request names what to document. Branch defaults to the repository's
// default branch; Token is the caller's own credential and may be empty.
type Request struct {
	Ref    source.RepoRef
	Branch string
	Scope  string
	Token  string
}

// Result is everything one pipeline run produced.
type Result struct {
	Ref       source.RepoRef
	Branch    string
	Scope     string
	Selected  []string
	Contents  *ContentMap
	Stats     FetchStats
	DocSet    *DocSet
	Documents []Document
	// Empty is set when no file qualified; nothing was generated.
	Empty    bool
	Duration time.Duration
}

// Structure is the output of the structure step.
type Structure struct {
	TotalFiles  int                `json:"total_files"`
	IsTruncated bool               `json:"is_truncated"`
	Monorepo    MonorepoAnalysis   `json:"monorepo_analysis"`
	Tree        []source.TreeEntry `json:"tree"`
}

// Pipeline composes the stages: tree -> select -> fetch -> generate -> documents.
type Pipeline struct {
	Source source.Source
	LLM    LLMCompleter
	Config Config
	// OnBatch is handed to the Assembler.
	OnBatch func(batch, total int, err error)
	// Out receives progress lines; nil means os.Stderr.
	Out io.Writer
}

func (p *Pipeline) logf(format string, args ...any) {
	out := p.Out
	if out == nil {
		out = os.Stderr
	}
	fmt.Fprintf(out, "repodoc: "+format+"\n", args...)
}

// ResolveBranch returns branch, or the default branch when it is empty.
func ResolveBranch(ctx context.Context, src source.Source, ref source.RepoRef, branch, token string) (string, error) {
	if branch != "" {
		return branch, nil
	}
	if ref.Branch != "" {
		return ref.Branch, nil
	}
	info, err := src.RepoInfo(ctx, ref, token)
	if err != nil {
		return "", err
	}
	return info.DefaultBranch, nil
}

// Analyze lists the tree of branch and runs monorepo detection on it.
func Analyze(ctx context.Context, src source.Source, ref source.RepoRef, branch, token string) (*Structure, error) {
	tree, err := src.Tree(ctx, ref, branch, token)
	if err != nil {
		return nil, err
	}
	return Summarize(tree), nil
}

// Summarize builds a Structure from an already fetched tree.
func Summarize(tree *source.Tree) *Structure {
	blobs := tree.BlobPaths()
	entries := tree.Entries
	if entries == nil {
		entries = []source.TreeEntry{}
	}
	return &Structure{
		TotalFiles:  len(blobs),
		IsTruncated: tree.Truncated,
		Monorepo:    DetectMonorepo(blobs),
		Tree:        entries,
	}
}

// Generate builds the request, calls the generator, and repairs its answer.
func Generate(ctx context.Context, llm LLMCompleter, entries []source.TreeEntry, contents *ContentMap, limit int) (*DocSet, error) {
	prompt, err := BuildRequest(entries, contents, limit)
	if err != nil {
		return nil, err
	}

	response, err := llm.Complete(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGeneration, err)
	}
	return ParseResponse(response)
}

// Run executes the full pipeline. Any stage failure stops the run.
func (p *Pipeline) Run(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()
	cfg := p.Config

	branch, err := ResolveBranch(ctx, p.Source, req.Ref, req.Branch, req.Token)
	if err != nil {
		return nil, fmt.Errorf("resolve branch: %w", err)
	}
	res := &Result{Ref: req.Ref, Branch: branch, Scope: req.Scope}

	// Stage 1: Tree
	p.logf("listing %s@%s...", req.Ref.FullName(), branch)
	tree, err := p.Source.Tree(ctx, req.Ref, branch, req.Token)
	if err != nil {
		return nil, fmt.Errorf("tree: %w", err)
	}

	// Stage 2: Select
	res.Selected = SelectKeyFiles(tree.Entries, req.Scope, cfg.Selection)
	p.logf("selected %d of %d files", len(res.Selected), len(tree.BlobPaths()))
	if len(res.Selected) == 0 {
		res.Empty = true
		res.Contents = NewContentMap()
		res.Duration = time.Since(start)
		return res, nil
	}

	// Stage 3: Fetch
	asm := &Assembler{Source: p.Source, Config: cfg.Fetch, OnBatch: p.OnBatch}
	res.Contents, res.Stats, err = asm.Fetch(ctx, req.Ref, branch, req.Token, res.Selected)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	p.logf("fetched %d files in %d batches (%d failed)", res.Contents.Len(), res.Stats.Batches, res.Stats.FailedBatches)

	// Stage 4: Generate
	p.logf("generating documentation...")
	res.DocSet, err = Generate(ctx, p.LLM, tree.Entries, res.Contents, cfg.TreeListingLimit)
	if err != nil {
		return nil, fmt.Errorf("generate: %w", err)
	}
	EnsureDiagram(res.DocSet, res.Selected)

	// Stage 5: Documents
	res.Documents = BuildDocuments(res.DocSet)
	res.Duration = time.Since(start)
	p.logf("done.")
	return res, nil
}
