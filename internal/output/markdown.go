// internal/output/markdown.go
package output

import (
	"fmt"
	"strings"
	"time"
)

// MarkdownFormatter outputs a Report as human-readable Markdown.
type MarkdownFormatter struct{}

// NewMarkdownFormatter creates a new MarkdownFormatter.
func NewMarkdownFormatter() *MarkdownFormatter {
	return &MarkdownFormatter{}
}

// Format renders the Report as Markdown.
func (f *MarkdownFormatter) Format(report *Report) ([]byte, error) {
	var b strings.Builder

	if report.Error != "" {
		b.WriteString("## Error\n\n")
		b.WriteString(report.Error)
		b.WriteString("\n")
		return []byte(b.String()), nil
	}

	title := report.Repository
	if report.DocSet != nil && report.DocSet.ProjectName != "" {
		title = report.DocSet.ProjectName
	}
	fmt.Fprintf(&b, "# %s\n\n", title)
	if report.DocSet != nil && report.DocSet.Tagline != "" {
		fmt.Fprintf(&b, "> %s\n\n", report.DocSet.Tagline)
	}

	fmt.Fprintf(&b, "- **Repository**: %s@%s\n", report.Repository, report.Branch)
	if report.Scope != "" {
		fmt.Fprintf(&b, "- **Scope**: `%s`\n", report.Scope)
	}
	if report.DocSet != nil {
		if report.DocSet.ComplexityScore != "" {
			fmt.Fprintf(&b, "- **Complexity**: %s\n", report.DocSet.ComplexityScore)
		}
		if len(report.DocSet.TechStack) > 0 {
			fmt.Fprintf(&b, "- **Tech stack**: %s\n", strings.Join(report.DocSet.TechStack, ", "))
		}
	}

	if report.Empty {
		b.WriteString("\nNo documentable files were found.\n")
	}

	if len(report.Selected) > 0 {
		b.WriteString("\n## Selected Files\n\n")
		for _, p := range report.Selected {
			fmt.Fprintf(&b, "- `%s`\n", p)
		}
	}

	if len(report.Published) > 0 {
		b.WriteString("\n## Published\n\n")
		for _, u := range report.Published {
			fmt.Fprintf(&b, "- %s\n", u)
		}
	}

	s := report.Stats
	fileLabel := "files"
	if s.Fetched == 1 {
		fileLabel = "file"
	}
	b.WriteString(fmt.Sprintf("\n---\n*Fetched %d %s in %d batches (%d failed), %s*\n",
		s.Fetched, fileLabel, s.Batches, s.FailedBatches, report.Duration().Round(100*time.Millisecond)))

	return []byte(b.String()), nil
}
