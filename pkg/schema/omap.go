package schema

import (
	"bytes"

	"github.com/goccy/go-json"
)

// omap is a JSON object that marshals its keys in insertion order.
// Compiled schemas are built from omaps so that properties and $defs come
// out in the source document's declaration order, byte-identically on
// every run.
type omap struct {
	keys   []string
	values map[string]any
}

func newOmap() *omap {
	return &omap{values: map[string]any{}}
}

// set writes a key, preserving first-insertion position on overwrite.
func (m *omap) set(key string, value any) *omap {
	if _, exists := m.values[key]; !exists {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
	return m
}

func (m *omap) get(key string) (any, bool) {
	value, ok := m.values[key]
	return value, ok
}

func (m *omap) len() int {
	return len(m.keys)
}

// MarshalJSON implements json.Marshaler with insertion-ordered keys.
func (m *omap) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range m.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		keyJSON, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		buf.Write(keyJSON)
		buf.WriteByte(':')
		valueJSON, err := json.Marshal(m.values[key])
		if err != nil {
			return nil, err
		}
		buf.Write(valueJSON)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
