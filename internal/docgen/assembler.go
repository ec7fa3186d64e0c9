package docgen

import (
	"context"
	"fmt"
	"log"

	"github.com/sourcegraph/conc/pool"

	"github.com/julianshen/repodoc/internal/source"
)

// BinaryPlaceholder stands in for content that could not be read as text.
const BinaryPlaceholder = "[Binary or Empty Files]"

// AssemblerConfig controls content retrieval.
type AssemblerConfig struct {
	BatchSize   int // paths per upstream request
	MaxChars    int // per-file budget for SmartTruncate
	Concurrency int // batches in flight; 1 means sequential
}

// DefaultAssemblerConfig returns the standard retrieval settings.
func DefaultAssemblerConfig() AssemblerConfig {
	return AssemblerConfig{
		BatchSize:   15,
		MaxChars:    DefaultMaxChars,
		Concurrency: 1,
	}
}

// FetchStats summarizes one assembly run.
type FetchStats struct {
	Requested     int `json:"requested" yaml:"requested"`
	Fetched       int `json:"fetched" yaml:"fetched"`
	Binary        int `json:"binary" yaml:"binary"`
	Truncated     int `json:"truncated" yaml:"truncated"`
	Batches       int `json:"batches" yaml:"batches"`
	FailedBatches int `json:"failed_batches" yaml:"failed_batches"`
}

// Assembler fetches and truncates the content of selected files.
type Assembler struct {
	Source source.Source
	Config AssemblerConfig
	// OnBatch, if set, is called after each batch finishes. It may be
	// called from several goroutines when Concurrency > 1.
	OnBatch func(batch, total int, err error)
}

type batchResult struct {
	paths []string
	texts map[string]string
	err   error
}

// Fetch retrieves text for paths in batches. A failed batch is logged and
// its paths are left out of the result; the other batches are unaffected.
// The only error returned is the context's.
func (a *Assembler) Fetch(ctx context.Context, ref source.RepoRef, branch, token string, paths []string) (*ContentMap, FetchStats, error) {
	cfg := a.Config
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultAssemblerConfig().BatchSize
	}

	batches := splitBatches(paths, cfg.BatchSize)
	results := make([]batchResult, len(batches))
	stats := FetchStats{Requested: len(paths), Batches: len(batches)}

	run := func(i int) {
		texts, err := a.Source.FetchTexts(ctx, ref, branch, token, batches[i])
		results[i] = batchResult{paths: batches[i], texts: texts, err: err}
		if err != nil {
			log.Printf("WARNING: content batch %d/%d failed: %v", i+1, len(batches), err)
		}
		if a.OnBatch != nil {
			a.OnBatch(i+1, len(batches), err)
		}
	}

	if cfg.Concurrency <= 1 {
		for i := range batches {
			if err := ctx.Err(); err != nil {
				return nil, stats, fmt.Errorf("fetching content: %w", err)
			}
			run(i)
		}
	} else {
		p := pool.New().WithMaxGoroutines(cfg.Concurrency)
		for i := range batches {
			p.Go(func() { run(i) })
		}
		p.Wait()
	}
	if err := ctx.Err(); err != nil {
		return nil, stats, fmt.Errorf("fetching content: %w", err)
	}

	contents := NewContentMap()
	for _, r := range results {
		if r.err != nil {
			stats.FailedBatches++
			continue
		}
		for _, p := range r.paths {
			text := r.texts[p]
			if text == "" {
				contents.Set(p, BinaryPlaceholder)
				stats.Binary++
				continue
			}
			truncated := SmartTruncate(text, cfg.MaxChars)
			if truncated != text {
				stats.Truncated++
			}
			contents.Set(p, truncated)
			stats.Fetched++
		}
	}
	return contents, stats, nil
}

func splitBatches(paths []string, size int) [][]string {
	var out [][]string
	for start := 0; start < len(paths); start += size {
		end := min(start+size, len(paths))
		out = append(out, paths[start:end])
	}
	return out
}
