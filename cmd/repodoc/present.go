// cmd/repodoc/present.go
package main

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/cheggaaa/pb/v3"

	"github.com/julianshen/repodoc/internal/output"
)

const previewWidth = 100

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.AdaptiveColor{Light: "#5A56E0", Dark: "#9D99FF"})
	taglineStyle = lipgloss.NewStyle().Italic(true).Foreground(lipgloss.AdaptiveColor{Light: "#666666", Dark: "#999999"})
	labelStyle   = lipgloss.NewStyle().Bold(true)
	summaryBox   = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.AdaptiveColor{Light: "#888888", Dark: "#666666"}).
			Padding(0, 1)
)

// renderSummary draws a boxed overview of a report for the terminal.
func renderSummary(r *output.Report) string {
	var lines []string
	if r.DocSet != nil {
		lines = append(lines, titleStyle.Render(r.DocSet.ProjectName))
		if r.DocSet.Tagline != "" {
			lines = append(lines, taglineStyle.Render(r.DocSet.Tagline))
		}
		lines = append(lines, "")
		if r.DocSet.ComplexityScore != "" {
			lines = append(lines, labelStyle.Render("Complexity: ")+r.DocSet.ComplexityScore)
		}
		if len(r.DocSet.TechStack) > 0 {
			lines = append(lines, labelStyle.Render("Stack: ")+strings.Join(r.DocSet.TechStack, ", "))
		}
	} else {
		lines = append(lines, titleStyle.Render(r.Repository))
	}
	lines = append(lines,
		labelStyle.Render("Files: ")+fmt.Sprintf("%d selected, %d fetched, %d binary", len(r.Selected), r.Stats.Fetched, r.Stats.Binary),
		labelStyle.Render("Time: ")+r.Duration().String(),
	)
	for _, u := range r.Published {
		lines = append(lines, labelStyle.Render("Published: ")+u)
	}
	return summaryBox.Render(strings.Join(lines, "\n"))
}

// renderPreview renders markdown for the terminal.
func renderPreview(md string, width int) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", fmt.Errorf("creating glamour renderer: %w", err)
	}
	out, err := r.Render(md)
	if err != nil {
		return "", fmt.Errorf("rendering preview: %w", err)
	}
	return out, nil
}

// progressBar tracks content batches. It is started by the first batch,
// when the total is known. A nil *progressBar is a no-op.
type progressBar struct {
	mu  sync.Mutex
	w   io.Writer
	bar *pb.ProgressBar
}

func newProgressBar(w io.Writer) *progressBar {
	return &progressBar{w: w}
}

func (p *progressBar) onBatch(_, total int, _ error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.bar == nil {
		p.bar = pb.Simple.New(total)
		p.bar.SetWriter(p.w)
		p.bar.Start()
	}
	p.bar.Increment()
}

func (p *progressBar) finish() {
	if p == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.bar != nil {
		p.bar.Finish()
		p.bar = nil
	}
}
