package docgen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildDocuments(t *testing.T) {
	docs := BuildDocuments(&DocSet{
		ProjectName:         "Demo",
		Tagline:             "Fast <and> small",
		TechStack:           []string{"Go", "SQLite"},
		ComplexityScore:     ComplexityIntermediate,
		ArchitectureMermaid: "graph TD\n  A --> B",
		ReadmeMarkdown:      "# Demo",
	})
	require.Len(t, docs, 3)

	assert.Equal(t, Document{Path: "README.md", Title: "Demo", Content: "# Demo\n"}, docs[0])

	assert.Equal(t, "ARCHITECTURE.md", docs[1].Path)
	assert.Equal(t, "# Architecture\n\n```mermaid\ngraph TD\n  A --> B\n```\n", docs[1].Content)

	assert.Equal(t, "TECH_STACK.md", docs[2].Path)
	assert.Equal(t, "# Demo\n\n"+
		"> Fast &lt;and&gt; small\n\n"+
		"- **Complexity**: Intermediate\n\n"+
		"## Tech Stack\n\n"+
		"- Go\n"+
		"- SQLite\n\n", docs[2].Content)
}

func TestBuildDocumentsSparseDocSet(t *testing.T) {
	docs := BuildDocuments(&DocSet{ReadmeMarkdown: "hello\n"})
	require.Len(t, docs, 3)
	assert.Equal(t, "README", docs[0].Title)
	assert.Equal(t, "hello\n", docs[0].Content)
	assert.Contains(t, docs[1].Content, "No architecture diagram available.")
	assert.Equal(t, "# Tech Stack\n\n", docs[2].Content)
}
