// Package sources provides the source connector contract, the built-in
// file/http/exec connectors, and the concurrent fetch join that preserves
// declared configuration order. A connector must be deterministic for
// fixed inputs and must not embed policy-aware logic.
package sources

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// Connector fetches one JSON-serializable payload.
type Connector interface {
	Fetch(ctx context.Context) (any, error)
}

// Describer is optionally implemented by connectors that can summarize
// their target (a path, a host) for event streams.
type Describer interface {
	Describe() string
}

// Factory builds a connector from its configured parameters. projectDir
// anchors relative paths.
type Factory func(projectDir string, with map[string]any) (Connector, error)

// Registry maps connector type keys to factories. It is populated at
// process start by the CLI layer and passed into the pipeline as an
// explicit dependency; nothing looks connectors up globally.
type Registry struct {
	factories map[string]Factory
}

// NewRegistry returns a registry with the built-in connectors installed.
func NewRegistry() *Registry {
	r := &Registry{factories: map[string]Factory{}}
	r.Register("file", NewFileSource)
	r.Register("http", NewHTTPSource)
	r.Register("exec", NewExecSource)
	return r
}

// Register installs a factory under a type key, replacing any previous one.
func (r *Registry) Register(typeKey string, factory Factory) {
	r.factories[typeKey] = factory
}

// New builds a connector for a type key.
func (r *Registry) New(typeKey, projectDir string, with map[string]any) (Connector, error) {
	factory, ok := r.factories[typeKey]
	if !ok {
		return nil, fmt.Errorf("unknown source type: %s (known: %s)", typeKey, strings.Join(r.Types(), ", "))
	}
	return factory(projectDir, with)
}

// Types returns the registered type keys, sorted.
func (r *Registry) Types() []string {
	keys := make([]string, 0, len(r.factories))
	for key := range r.factories {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func stringParam(with map[string]any, key string) (string, bool) {
	value, ok := with[key].(string)
	return value, ok
}

func floatParam(with map[string]any, key string) (float64, bool) {
	switch v := with[key].(type) {
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case float64:
		return v, true
	default:
		return 0, false
	}
}
