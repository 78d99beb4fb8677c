// Package transform implements the transform executor: a registry of
// named operations applied to the context object in strict list order,
// the built-in operations, and Starlark plugin transforms.
//
// Every operation reads and writes the same context object; there is no
// copy-on-write fan-out. Path arguments are validated at construction
// time, so a misconfigured transform list fails before any mutation.
package transform

import (
	"fmt"
	"sort"

	"github.com/opactx/opactx/pkg/config"
	"github.com/opactx/opactx/pkg/ctxobj"
)

// Env is the immutable per-build environment transforms read from. The
// context object itself is the only thing a transform mutates.
type Env struct {
	// ProjectDir anchors relative paths for plugin scripts.
	ProjectDir string

	// Intent holds the loaded standards and exceptions mappings.
	Intent map[string]any

	// Sources maps source names to fetched payloads, in no particular
	// order; ordering guarantees live in the fetch join, not here.
	Sources map[string]any

	// Schema is the compiled schema, used by validate_schema checkpoints.
	Schema map[string]any
}

// Transform is one named operation over the context object.
type Transform interface {
	Name() string
	Apply(obj *ctxobj.Object, env *Env) error
}

// Factory builds a transform from its configured parameters, validating
// them eagerly. A factory error is a configuration error, not a runtime
// transform failure.
type Factory func(projectDir string, with map[string]any) (Transform, error)

// Error is a transform failure attributed to a path in the context.
type Error struct {
	Transform string
	Path      string
	Message   string
}

func (e *Error) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("transform %s: %s: %s", e.Transform, e.Path, e.Message)
	}
	return fmt.Sprintf("transform %s: %s", e.Transform, e.Message)
}

func failf(name, path, format string, args ...any) *Error {
	return &Error{Transform: name, Path: path, Message: fmt.Sprintf(format, args...)}
}

// Registry maps name+kind to a factory. The CLI layer populates it at
// process start and passes it into the pipeline explicitly.
type Registry struct {
	builtins map[string]Factory
	plugins  map[string]Factory
}

// NewRegistry returns a registry with all built-in operations installed.
func NewRegistry() *Registry {
	r := &Registry{builtins: map[string]Factory{}, plugins: map[string]Factory{}}
	r.RegisterBuiltin("mount", newMount)
	r.RegisterBuiltin("merge", newMerge)
	r.RegisterBuiltin("pick", newPick)
	r.RegisterBuiltin("rename", newRename)
	r.RegisterBuiltin("coerce", newCoerce)
	r.RegisterBuiltin("defaults", newDefaults)
	r.RegisterBuiltin("validate_schema", newValidateSchema)
	r.RegisterBuiltin("ref_resolve", newRefResolve)
	r.RegisterBuiltin("sort_stable", newSortStable)
	r.RegisterBuiltin("dedupe", newDedupe)
	r.RegisterBuiltin("canonicalize", newCanonicalize)
	return r
}

// RegisterBuiltin installs a builtin factory under a name.
func (r *Registry) RegisterBuiltin(name string, factory Factory) {
	r.builtins[name] = factory
}

// RegisterPlugin installs a plugin factory under a name. Unregistered
// plugin names fall back to the Starlark script loader.
func (r *Registry) RegisterPlugin(name string, factory Factory) {
	r.plugins[name] = factory
}

// Builtins returns the registered builtin operation names, sorted.
func (r *Registry) Builtins() []string {
	return sortedNames(r.builtins)
}

// Plugins returns the registered plugin names, sorted. Unregistered
// plugin names still resolve to project-local Starlark scripts.
func (r *Registry) Plugins() []string {
	return sortedNames(r.plugins)
}

func sortedNames(factories map[string]Factory) []string {
	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Build constructs one transform from its spec.
func (r *Registry) Build(projectDir string, spec config.Transform) (Transform, error) {
	switch spec.KindOrDefault() {
	case "builtin":
		factory, ok := r.builtins[spec.Name]
		if !ok {
			return nil, fmt.Errorf("unknown builtin transform: %s", spec.Name)
		}
		return factory(projectDir, spec.With)
	case "plugin":
		if factory, ok := r.plugins[spec.Name]; ok {
			return factory(projectDir, spec.With)
		}
		return newStarlark(spec.Name, projectDir, spec.With)
	default:
		return nil, fmt.Errorf("transform %s: unknown kind %q", spec.Name, spec.Kind)
	}
}

// BuildAll constructs the whole transform list up front. Any parameter or
// path problem is reported here, before a single transform runs.
func (r *Registry) BuildAll(projectDir string, specs []config.Transform) ([]Transform, error) {
	transforms := make([]Transform, 0, len(specs))
	for _, spec := range specs {
		t, err := r.Build(projectDir, spec)
		if err != nil {
			return nil, err
		}
		transforms = append(transforms, t)
	}
	return transforms, nil
}

// Kind reports whether a transform is a builtin or a Starlark plugin.
func Kind(t Transform) string {
	if _, ok := t.(*starlarkPlugin); ok {
		return "plugin"
	}
	return "builtin"
}

// Apply runs transforms strictly in list order over the same context
// object, stopping at the first failure.
func Apply(obj *ctxobj.Object, env *Env, transforms []Transform) error {
	for _, t := range transforms {
		if err := t.Apply(obj, env); err != nil {
			return err
		}
	}
	return nil
}
