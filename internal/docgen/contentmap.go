package docgen

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ContentMap is a path to text mapping that remembers insertion order.
// Its JSON form is an object whose keys keep that order in both directions.
type ContentMap struct {
	paths []string
	texts map[string]string
}

// NewContentMap returns an empty map.
func NewContentMap() *ContentMap {
	return &ContentMap{texts: map[string]string{}}
}

// Set stores text for path. A new path goes to the end; an existing one
// keeps its position.
func (m *ContentMap) Set(path, text string) {
	if m.texts == nil {
		m.texts = map[string]string{}
	}
	if _, ok := m.texts[path]; !ok {
		m.paths = append(m.paths, path)
	}
	m.texts[path] = text
}

// Get returns the text stored for path.
func (m *ContentMap) Get(path string) (string, bool) {
	if m == nil {
		return "", false
	}
	text, ok := m.texts[path]
	return text, ok
}

// Len returns the number of entries.
func (m *ContentMap) Len() int {
	if m == nil {
		return 0
	}
	return len(m.paths)
}

// Paths returns the keys in insertion order.
func (m *ContentMap) Paths() []string {
	if m == nil {
		return nil
	}
	return append([]string(nil), m.paths...)
}

// Each calls fn for every entry in insertion order.
func (m *ContentMap) Each(fn func(path, text string)) {
	if m == nil {
		return
	}
	for _, p := range m.paths {
		fn(p, m.texts[p])
	}
}

func (m *ContentMap) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, p := range m.Paths() {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(p)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(m.texts[p])
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (m *ContentMap) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*m = ContentMap{texts: map[string]string{}}
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("content map: expected object, got %v", tok)
	}

	out := NewContentMap()
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("content map: unexpected key %v", tok)
		}
		var text string
		if err := dec.Decode(&text); err != nil {
			return fmt.Errorf("content map: value for %q: %w", key, err)
		}
		out.Set(key, text)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}

	*m = *out
	return nil
}
