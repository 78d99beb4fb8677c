package schema

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// DSLVersion is the single supported schema DSL version literal.
const DSLVersion = "opactx.schema/v1"

// Base type names a DSL node may declare.
var baseTypes = map[string]bool{
	"object":  true,
	"array":   true,
	"string":  true,
	"number":  true,
	"integer": true,
	"boolean": true,
	"null":    true,
}

// Supported string formats, carried through to the compiled schema.
var stringFormats = map[string]bool{
	"date-time": true,
	"email":     true,
	"uri":       true,
	"uuid":      true,
}

// Document is a parsed but not yet validated schema DSL document. Mapping
// key order from the source is preserved; compilation emits properties and
// $defs in that order.
type Document struct {
	root *node
}

// node is an ordered YAML value: a mapping with remembered key order, a
// sequence, or a scalar.
type node struct {
	kind    nodeKind
	keys    []string
	fields  map[string]*node
	items   []*node
	scalar  any
	line    int
	column  int
}

type nodeKind int

const (
	kindMapping nodeKind = iota
	kindSequence
	kindScalar
)

// ParseDocument parses YAML bytes into a Document. Only syntax-level
// failures are reported here; shape checks belong to ValidateDocument.
func ParseDocument(data []byte) (*Document, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("parse schema DSL: %w", err)
	}
	if root.Kind == 0 || len(root.Content) == 0 {
		return nil, fmt.Errorf("schema DSL document is empty")
	}
	parsed, err := fromYAML(root.Content[0])
	if err != nil {
		return nil, err
	}
	if parsed.kind != kindMapping {
		return nil, fmt.Errorf("schema DSL must be a mapping at the top level")
	}
	return &Document{root: parsed}, nil
}

func fromYAML(y *yaml.Node) (*node, error) {
	switch y.Kind {
	case yaml.AliasNode:
		return fromYAML(y.Alias)
	case yaml.MappingNode:
		n := &node{kind: kindMapping, fields: map[string]*node{}, line: y.Line, column: y.Column}
		for i := 0; i+1 < len(y.Content); i += 2 {
			keyNode := y.Content[i]
			var key string
			if err := keyNode.Decode(&key); err != nil {
				return nil, fmt.Errorf("line %d: mapping key is not a string", keyNode.Line)
			}
			if _, exists := n.fields[key]; exists {
				return nil, fmt.Errorf("line %d: duplicate mapping key %q", keyNode.Line, key)
			}
			value, err := fromYAML(y.Content[i+1])
			if err != nil {
				return nil, err
			}
			n.keys = append(n.keys, key)
			n.fields[key] = value
		}
		return n, nil
	case yaml.SequenceNode:
		n := &node{kind: kindSequence, line: y.Line, column: y.Column}
		for _, item := range y.Content {
			value, err := fromYAML(item)
			if err != nil {
				return nil, err
			}
			n.items = append(n.items, value)
		}
		return n, nil
	case yaml.ScalarNode:
		var value any
		if err := y.Decode(&value); err != nil {
			return nil, fmt.Errorf("line %d: %w", y.Line, err)
		}
		return &node{kind: kindScalar, scalar: value, line: y.Line, column: y.Column}, nil
	default:
		return nil, fmt.Errorf("line %d: unsupported YAML node", y.Line)
	}
}

// plain converts a node back to ordinary Go values, losing key order.
// Used for defaults, examples and enum payloads where order is the
// author's list order, not mapping order.
func (n *node) plain() any {
	switch n.kind {
	case kindMapping:
		out := make(map[string]any, len(n.keys))
		for _, key := range n.keys {
			out[key] = n.fields[key].plain()
		}
		return out
	case kindSequence:
		out := make([]any, len(n.items))
		for i, item := range n.items {
			out[i] = item.plain()
		}
		return out
	default:
		return n.scalar
	}
}

func (n *node) get(key string) (*node, bool) {
	if n.kind != kindMapping {
		return nil, false
	}
	child, ok := n.fields[key]
	return child, ok
}

func (n *node) has(key string) bool {
	_, ok := n.get(key)
	return ok
}

func (n *node) stringValue() (string, bool) {
	if n.kind != kindScalar {
		return "", false
	}
	s, ok := n.scalar.(string)
	return s, ok
}

func (n *node) boolValue() (bool, bool) {
	if n.kind != kindScalar {
		return false, false
	}
	b, ok := n.scalar.(bool)
	return b, ok
}

func (n *node) intValue() (int64, bool) {
	if n.kind != kindScalar {
		return 0, false
	}
	switch v := n.scalar.(type) {
	case int:
		return int64(v), true
	case int64:
		return v, true
	case uint64:
		return int64(v), true
	default:
		return 0, false
	}
}

func (n *node) floatValue() (float64, bool) {
	if n.kind != kindScalar {
		return 0, false
	}
	switch v := n.scalar.(type) {
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint64:
		return float64(v), true
	case float64:
		return v, true
	default:
		return 0, false
	}
}
