package docgen

import (
	"cmp"
	"slices"
	"strings"

	"github.com/julianshen/repodoc/internal/source"
)

// SelectorConfig bounds key-file selection.
type SelectorConfig struct {
	MaxFiles        int // hard cap on the result
	SparseThreshold int // below this, fall back to tier 3
	FallbackCeiling int // tier 3 stops at this total, or at MaxFiles if lower
}

// DefaultSelectorConfig returns the standard bounds.
func DefaultSelectorConfig() SelectorConfig {
	return SelectorConfig{
		MaxFiles:        40,
		SparseThreshold: 10,
		FallbackCeiling: 20,
	}
}

type candidate struct {
	full     string
	relative string
	class    Classification
}

// SelectKeyFiles picks the files worth sending to the generator. With a
// non-empty scope only files under scope+"/" are considered, classified by
// their scope-relative path. The result holds full repository paths in
// insertion order and never contains duplicates.
func SelectKeyFiles(entries []source.TreeEntry, scope string, cfg SelectorConfig) []string {
	if cfg.MaxFiles <= 0 {
		cfg = DefaultSelectorConfig()
	}
	scope = strings.TrimSuffix(scope, "/")

	var candidates []candidate
	for _, e := range entries {
		if e.Type != source.EntryBlob {
			continue
		}
		rel := e.Path
		if scope != "" {
			var ok bool
			rel, ok = strings.CutPrefix(e.Path, scope+"/")
			if !ok {
				continue
			}
		}
		class := Classify(rel)
		if class == Ignored {
			continue
		}
		candidates = append(candidates, candidate{full: e.Path, relative: rel, class: class})
	}

	selected := []string{}
	seen := make(map[string]bool)
	add := func(p string) {
		if !seen[p] {
			seen[p] = true
			selected = append(selected, p)
		}
	}

	// Tier 1 goes in whole unless it alone exceeds the cap; then workflow
	// files yield to manifests and root docs.
	var tier1 []candidate
	for _, c := range candidates {
		if c.class == Tier1 {
			tier1 = append(tier1, c)
		}
	}
	if len(tier1) > cfg.MaxFiles {
		slices.SortStableFunc(tier1, func(a, b candidate) int {
			return cmp.Compare(workflowRank(a.relative), workflowRank(b.relative))
		})
	}
	for _, c := range tier1 {
		if len(selected) >= cfg.MaxFiles {
			break
		}
		add(c.full)
	}

	for _, c := range candidates {
		if len(selected) >= cfg.MaxFiles {
			break
		}
		if c.class == Tier2 {
			add(c.full)
		}
	}

	if len(selected) < cfg.SparseThreshold {
		ceiling := min(cfg.FallbackCeiling, cfg.MaxFiles)
		for _, c := range candidates {
			if len(selected) >= ceiling {
				break
			}
			if c.class == Tier3 {
				add(c.full)
			}
		}
	}

	return selected
}

func workflowRank(rel string) int {
	if strings.HasPrefix(rel, ".github/") {
		return 1
	}
	return 0
}
