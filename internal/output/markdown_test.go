// internal/output/markdown_test.go
package output

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarkdownFormatterBasic(t *testing.T) {
	f := NewMarkdownFormatter()

	out, err := f.Format(sampleReport())
	require.NoError(t, err)

	s := string(out)
	assert.Contains(t, s, "# Demo\n")
	assert.Contains(t, s, "> A demo.")
	assert.Contains(t, s, "- **Repository**: github.com/octo/demo@main")
	assert.Contains(t, s, "- **Tech stack**: Node.js, Express")
	assert.Contains(t, s, "- `src/index.js`")
	assert.Contains(t, s, "Fetched 2 files in 1 batches (0 failed), 1.5s")
}

func TestMarkdownFormatterEmpty(t *testing.T) {
	f := NewMarkdownFormatter()
	report := &Report{Repository: "github.com/octo/empty", Branch: "main", Empty: true}

	out, err := f.Format(report)
	require.NoError(t, err)

	s := string(out)
	assert.Contains(t, s, "# github.com/octo/empty")
	assert.Contains(t, s, "No documentable files were found.")
	assert.NotContains(t, s, "Selected Files")
}

func TestMarkdownFormatterWithError(t *testing.T) {
	f := NewMarkdownFormatter()
	report := &Report{Repository: "github.com/octo/demo", Error: "something went wrong"}

	out, err := f.Format(report)
	require.NoError(t, err)

	s := string(out)
	assert.Contains(t, s, "## Error")
	assert.Contains(t, s, "something went wrong")
}

func TestMarkdownFormatterPublished(t *testing.T) {
	f := NewMarkdownFormatter()
	report := sampleReport()
	report.Published = []string{"s3://docs/repodoc/run/README.md"}

	out, err := f.Format(report)
	require.NoError(t, err)
	assert.Contains(t, string(out), "## Published\n\n- s3://docs/repodoc/run/README.md\n")
}
