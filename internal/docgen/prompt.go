package docgen

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"text/template"

	"github.com/julianshen/repodoc/internal/source"
)

// DefaultTreeListingLimit caps the structure section of a request.
const DefaultTreeListingLimit = 200

var (
	ErrGeneration        = errors.New("documentation generation failed")
	ErrMalformedResponse = errors.New("malformed generator response")
)

// ---------- prompt template ----------

var requestTmpl = template.Must(template.New("request").Parse(
	`You are an expert Senior Software Engineer and Technical Writer.
Your task is to analyze the following codebase and generate comprehensive documentation.

CONTEXT:
1. Project Structure:
{{range .Paths}}{{.}}
{{end}}
2. Key File Contents:
{{range .Files}}
--- START OF FILE: {{.Path}} ---
{{.Text}}
--- END OF FILE: {{.Path}} ---
{{end}}
INSTRUCTIONS:
Analyze the code logic, dependencies, and architecture.
Return a STRICT JSON object. Do not wrap the JSON in Markdown code fences.
The JSON must have exactly this structure:

{
  "project_name": "Name of the project",
  "tagline": "A short, catchy one-sentence description",
  "tech_stack": ["Array", "of", "technologies", "used"],
  "complexity_score": "Beginner | Intermediate | Advanced",
  "architecture_mermaid": "A Mermaid.js graph (TD or LR) showing the flow between modules/components",
  "readme_markdown": "The full, professional README.md content in Markdown, with install steps, usage examples, and API docs if relevant"
}

Use the readme_markdown field to write a complete README.
If information is missing, make a reasonable inference or mark it with [Check Code].
`))

type fileBlock struct {
	Path string
	Text string
}

// BuildRequest renders the generation request from the first limit tree
// entries and every content entry in map order.
func BuildRequest(entries []source.TreeEntry, contents *ContentMap, limit int) (string, error) {
	if limit <= 0 {
		limit = DefaultTreeListingLimit
	}
	entries = entries[:min(limit, len(entries))]

	paths := make([]string, len(entries))
	for i, e := range entries {
		paths[i] = e.Path
	}

	var files []fileBlock
	contents.Each(func(path, text string) {
		files = append(files, fileBlock{Path: path, Text: text})
	})

	var buf bytes.Buffer
	err := requestTmpl.Execute(&buf, struct {
		Paths []string
		Files []fileBlock
	}{
		Paths: paths,
		Files: files,
	})
	if err != nil {
		return "", fmt.Errorf("rendering prompt: %w", err)
	}
	return buf.String(), nil
}

// ---------- response handling ----------

// stringList accepts a JSON array of strings or a single comma-separated
// string.
type stringList []string

func (l *stringList) UnmarshalJSON(data []byte) error {
	var arr []string
	if err := json.Unmarshal(data, &arr); err == nil {
		*l = arr
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("tech_stack: expected array or string")
	}
	*l = strings.Split(s, ",")
	return nil
}

type rawDocSet struct {
	ProjectName         string     `json:"project_name"`
	Tagline             string     `json:"tagline"`
	TechStack           stringList `json:"tech_stack"`
	ComplexityScore     string     `json:"complexity_score"`
	ArchitectureMermaid string     `json:"architecture_mermaid"`
	ReadmeMarkdown      *string    `json:"readme_markdown"`
}

// ParseResponse strips an optional code fence from the generator output,
// decodes it, and repairs the result.
func ParseResponse(response string) (*DocSet, error) {
	cleaned := stripFence(response, "json")

	var raw rawDocSet
	if err := json.Unmarshal([]byte(cleaned), &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if raw.ReadmeMarkdown == nil || strings.TrimSpace(*raw.ReadmeMarkdown) == "" {
		return nil, fmt.Errorf("%w: readme_markdown is missing", ErrMalformedResponse)
	}

	return &DocSet{
		ProjectName:         strings.TrimSpace(raw.ProjectName),
		Tagline:             strings.TrimSpace(raw.Tagline),
		TechStack:           cleanStack(raw.TechStack),
		ComplexityScore:     canonicalComplexity(raw.ComplexityScore),
		ArchitectureMermaid: stripFence(raw.ArchitectureMermaid, "mermaid"),
		ReadmeMarkdown:      strings.TrimSpace(*raw.ReadmeMarkdown),
	}, nil
}

// stripFence removes a surrounding ```lang or ``` fence.
func stripFence(s, lang string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimPrefix(s, lang)
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

func cleanStack(stack []string) []string {
	out := []string{}
	seen := make(map[string]bool)
	for _, s := range stack {
		s = strings.TrimSpace(s)
		key := strings.ToLower(s)
		if s == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, s)
	}
	return out
}

// canonicalComplexity maps a score to its canonical spelling, or "" when
// it names none of the levels.
func canonicalComplexity(s string) string {
	for _, level := range []string{ComplexityBeginner, ComplexityIntermediate, ComplexityAdvanced} {
		if strings.EqualFold(strings.TrimSpace(s), level) {
			return level
		}
	}
	return ""
}
