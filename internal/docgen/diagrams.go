package docgen

import (
	"fmt"
	"log"
	"regexp"
	"strings"
)

var mermaidHeader = regexp.MustCompile(`^(graph|flowchart|sequenceDiagram|classDiagram|stateDiagram(-v2)?|erDiagram|C4\w+|mindmap|journey)\b`)

// EnsureDiagram replaces a missing or unrecognizable architecture diagram
// with FallbackDiagram(selected). It reports whether it did so.
func EnsureDiagram(set *DocSet, selected []string) bool {
	if mermaidHeader.MatchString(strings.TrimSpace(set.ArchitectureMermaid)) {
		return false
	}
	log.Printf("WARNING: generator returned no usable architecture diagram; using fallback")
	set.ArchitectureMermaid = FallbackDiagram(set.ProjectName, selected).Content
	return true
}

// FallbackDiagram draws a graph TD from the project node to each top-level
// directory of the selected files, labelled with its file count. Root-level
// files are grouped under "(root)".
func FallbackDiagram(project string, selected []string) Diagram {
	if project == "" {
		project = "Project"
	}

	var groups []string
	counts := make(map[string]int)
	for _, p := range selected {
		group := "(root)"
		if top, _, ok := strings.Cut(p, "/"); ok {
			group = top
		}
		if counts[group] == 0 {
			groups = append(groups, group)
		}
		counts[group]++
	}

	var b strings.Builder
	b.WriteString("graph TD\n")
	fmt.Fprintf(&b, "    project[\"%s\"]\n", escapeMermaid(project))
	used := make(map[string]bool)
	for _, g := range groups {
		base := "dir_" + sanitizeID(g)
		id := base
		for n := 2; used[id]; n++ {
			id = fmt.Sprintf("%s_%d", base, n)
		}
		used[id] = true
		fmt.Fprintf(&b, "    %s[\"%s\\n%d files\"]\n", id, escapeMermaid(truncateUTF8(g, 40)), counts[g])
		fmt.Fprintf(&b, "    project --> %s\n", id)
	}

	return Diagram{
		Title:   "Architecture Overview",
		Content: b.String(),
	}
}

// truncateUTF8 truncates s to at most maxRunes Unicode code points,
// avoiding corruption of multi-byte characters.
func truncateUTF8(s string, maxRunes int) string {
	runes := []rune(s)
	if len(runes) > maxRunes {
		return string(runes[:maxRunes])
	}
	return s
}

// escapeMermaid replaces characters that would break Mermaid label syntax.
func escapeMermaid(s string) string {
	s = strings.ReplaceAll(s, "\"", "#quot;")
	return s
}

var nonIDChars = regexp.MustCompile(`[^A-Za-z0-9_]`)

// sanitizeID converts a string into a safe Mermaid node identifier.
func sanitizeID(s string) string {
	return nonIDChars.ReplaceAllString(s, "_")
}
