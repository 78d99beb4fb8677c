package ctxobj

import (
	"github.com/goccy/go-json"
)

// CanonicalJSON renders a value as compact JSON with lexicographically
// sorted object keys and a trailing newline. Identical values always
// produce identical bytes; bundle revisions are hashes of this encoding.
func CanonicalJSON(value any) ([]byte, error) {
	payload, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	return append(payload, '\n'), nil
}

// IndentedJSON renders a value as two-space indented JSON with sorted
// object keys and a trailing newline, for human-facing artifacts.
func IndentedJSON(value any) ([]byte, error) {
	payload, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(payload, '\n'), nil
}

// IsSerializable reports whether a value round-trips through JSON.
func IsSerializable(value any) bool {
	_, err := json.Marshal(value)
	return err == nil
}
