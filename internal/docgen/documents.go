package docgen

import (
	"fmt"
	"strings"
)

// BuildDocuments turns a DocSet into README.md, ARCHITECTURE.md and
// TECH_STACK.md.
func BuildDocuments(set *DocSet) []Document {
	return []Document{
		{
			Path:    "README.md",
			Title:   orDefault(set.ProjectName, "README"),
			Content: ensureNewline(set.ReadmeMarkdown),
		},
		buildArchitecturePage(set),
		buildTechStackPage(set),
	}
}

func buildArchitecturePage(set *DocSet) Document {
	var b strings.Builder
	b.WriteString("# Architecture\n\n")
	if set.ArchitectureMermaid != "" {
		writeMermaidBlock(&b, Diagram{Content: set.ArchitectureMermaid})
	} else {
		b.WriteString("No architecture diagram available.\n")
	}
	return Document{
		Path:    "ARCHITECTURE.md",
		Title:   "Architecture",
		Content: b.String(),
	}
}

func buildTechStackPage(set *DocSet) Document {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", sanitizeMarkdown(orDefault(set.ProjectName, "Tech Stack")))
	if set.Tagline != "" {
		fmt.Fprintf(&b, "> %s\n\n", sanitizeMarkdown(set.Tagline))
	}
	if set.ComplexityScore != "" {
		fmt.Fprintf(&b, "- **Complexity**: %s\n\n", set.ComplexityScore)
	}
	if len(set.TechStack) > 0 {
		b.WriteString("## Tech Stack\n\n")
		for _, t := range set.TechStack {
			fmt.Fprintf(&b, "- %s\n", sanitizeMarkdown(t))
		}
		b.WriteString("\n")
	}
	return Document{
		Path:    "TECH_STACK.md",
		Title:   "Tech Stack",
		Content: b.String(),
	}
}

// writeMermaidBlock appends a fenced mermaid code block for a diagram.
func writeMermaidBlock(b *strings.Builder, d Diagram) {
	if d.Title != "" {
		fmt.Fprintf(b, "### %s\n\n", d.Title)
	}
	b.WriteString("```mermaid\n")
	b.WriteString(ensureNewline(d.Content))
	b.WriteString("```\n")
}

// sanitizeMarkdown escapes HTML-significant characters from untrusted text to
// prevent XSS when the generated Markdown is rendered to HTML.
func sanitizeMarkdown(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	return s
}

func ensureNewline(s string) string {
	if s == "" || strings.HasSuffix(s, "\n") {
		return s
	}
	return s + "\n"
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
