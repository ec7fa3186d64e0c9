// Package docgen turns a repository file tree into generated project
// documentation: it classifies paths, detects monorepos, selects a bounded
// set of key files, assembles their content, and builds and repairs the
// generation request.
package docgen

import "context"

// LLMCompleter abstracts the generative backend for testability.
type LLMCompleter interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// MonorepoAnalysis is the verdict of DetectMonorepo.
type MonorepoAnalysis struct {
	IsMonorepo      bool     `json:"is_monorepo"`
	RootHasManifest bool     `json:"root_has_manifest"`
	Candidates      []string `json:"candidates"`
}

// Complexity levels accepted in a DocSet.
const (
	ComplexityBeginner     = "Beginner"
	ComplexityIntermediate = "Intermediate"
	ComplexityAdvanced     = "Advanced"
)

// DocSet is the structured documentation returned by the generator.
type DocSet struct {
	ProjectName         string   `json:"project_name" yaml:"project_name"`
	Tagline             string   `json:"tagline" yaml:"tagline"`
	TechStack           []string `json:"tech_stack" yaml:"tech_stack"`
	ComplexityScore     string   `json:"complexity_score" yaml:"complexity_score"`
	ArchitectureMermaid string   `json:"architecture_mermaid" yaml:"architecture_mermaid"`
	ReadmeMarkdown      string   `json:"readme_markdown" yaml:"readme_markdown"`
}

// Diagram holds a Mermaid diagram.
type Diagram struct {
	Title   string
	Content string // Mermaid source
}

// Document represents a single output file.
type Document struct {
	Path    string `json:"path"`
	Title   string `json:"title"`
	Content string `json:"content"`
}
