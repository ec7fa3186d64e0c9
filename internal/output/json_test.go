// internal/output/json_test.go
package output

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONFormatterBasic(t *testing.T) {
	f := NewJSONFormatter()

	out, err := f.Format(sampleReport())
	require.NoError(t, err)

	var decoded map[string]any
	err = json.Unmarshal(out, &decoded)
	require.NoError(t, err)

	assert.Equal(t, "github.com/octo/demo", decoded["repository"])
	assert.Equal(t, "main", decoded["branch"])
	assert.Equal(t, float64(1500), decoded["duration_ms"])
	assert.Equal(t, []any{"package.json", "src/index.js"}, decoded["selected_files"])

	docs := decoded["docs"].(map[string]any)
	assert.Equal(t, "Demo", docs["project_name"])
	assert.Equal(t, "Beginner", docs["complexity_score"])

	stats := decoded["fetch_stats"].(map[string]any)
	assert.Equal(t, float64(2), stats["fetched"])

	assert.NotContains(t, decoded, "scope")
	assert.NotContains(t, decoded, "error")
}

func TestJSONFormatterWithError(t *testing.T) {
	f := NewJSONFormatter()

	out, err := f.Format(&Report{Repository: "github.com/octo/demo", Error: "access denied"})
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(out, &decoded))
	assert.Equal(t, "access denied", decoded["error"])
	assert.NotContains(t, decoded, "docs")
}
