// internal/output/formatter.go
package output

import (
	"fmt"
	"time"

	"github.com/julianshen/repodoc/internal/docgen"
)

// Report holds the collected output of one documentation run.
type Report struct {
	Repository string            `json:"repository" yaml:"repository"`
	Branch     string            `json:"branch" yaml:"branch"`
	Scope      string            `json:"scope,omitempty" yaml:"scope,omitempty"`
	Generator  string            `json:"generator,omitempty" yaml:"generator,omitempty"`
	Selected   []string          `json:"selected_files" yaml:"selected_files"`
	Stats      docgen.FetchStats `json:"fetch_stats" yaml:"fetch_stats"`
	DocSet     *docgen.DocSet    `json:"docs,omitempty" yaml:"docs,omitempty"`
	Empty      bool              `json:"empty,omitempty" yaml:"empty,omitempty"`
	Published  []string          `json:"published,omitempty" yaml:"published,omitempty"`
	DurationMs int64             `json:"duration_ms" yaml:"duration_ms"`
	Error      string            `json:"error,omitempty" yaml:"error,omitempty"`
}

// NewReport summarizes a pipeline result.
func NewReport(res *docgen.Result, generator string) *Report {
	return &Report{
		Repository: res.Ref.Host + "/" + res.Ref.FullName(),
		Branch:     res.Branch,
		Scope:      res.Scope,
		Generator:  generator,
		Selected:   res.Selected,
		Stats:      res.Stats,
		DocSet:     res.DocSet,
		Empty:      res.Empty,
		DurationMs: res.Duration.Milliseconds(),
	}
}

// Duration returns DurationMs as a time.Duration.
func (r *Report) Duration() time.Duration {
	return time.Duration(r.DurationMs) * time.Millisecond
}

// Formatter formats a Report into output bytes.
type Formatter interface {
	Format(report *Report) ([]byte, error)
}

// NewFormatter returns the formatter registered under name.
func NewFormatter(name string) (Formatter, error) {
	switch name {
	case "json":
		return NewJSONFormatter(), nil
	case "yaml":
		return NewYAMLFormatter(), nil
	case "markdown", "md":
		return NewMarkdownFormatter(), nil
	default:
		return nil, fmt.Errorf("unknown output format: %q", name)
	}
}
