// Package config loads and validates the pipeline configuration. The
// configuration is immutable after load; every later stage receives the
// same value.
package config

// SupportedVersion is the single accepted configuration version literal.
const SupportedVersion = "v1"

// Config is the pipeline configuration, loaded once per invocation.
type Config struct {
	// Version is the configuration format version. Only "v1" is accepted.
	Version string `yaml:"version" validate:"required"`

	// SchemaPath points at the schema input: a DSL document (.yaml/.yml)
	// or a JSON Schema document (.json), relative to the project directory.
	SchemaPath string `yaml:"schema" validate:"required"`

	// ContextDir holds the intent documents (standards.yaml, exceptions.yaml).
	ContextDir string `yaml:"context_dir" validate:"required"`

	// Sources are the external data connectors to fetch, in declared order.
	Sources []Source `yaml:"sources" validate:"dive"`

	// Transforms are the operations applied to the context, in list order.
	Transforms []Transform `yaml:"transforms" validate:"dive"`

	// Output configures bundle emission.
	Output Output `yaml:"output"`
}

// Source names a connector invocation.
type Source struct {
	// Name keys the fetched payload under context.sources.<name>.
	Name string `yaml:"name" validate:"required"`

	// Type selects the connector (file, http, exec, or a registered plugin).
	Type string `yaml:"type" validate:"required"`

	// With carries connector-specific parameters.
	With map[string]any `yaml:"with"`
}

// Transform names one operation in the transform list.
type Transform struct {
	// Name selects the operation.
	Name string `yaml:"name" validate:"required"`

	// Kind is builtin or plugin. Empty defaults to builtin.
	Kind string `yaml:"kind" validate:"omitempty,oneof=builtin plugin"`

	// With carries operation-specific parameters.
	With map[string]any `yaml:"with"`
}

// Output configures where and how the bundle is written.
type Output struct {
	// Dir is the bundle output directory.
	Dir string `yaml:"dir" validate:"required"`

	// IncludePolicy copies parse-checked .rego files from the project's
	// policy directory into the bundle. The policy is never evaluated.
	IncludePolicy bool `yaml:"include_policy"`

	// Tarball additionally packages the bundle as <dir>.tar.gz.
	Tarball bool `yaml:"tarball"`
}

// KindOrDefault returns the transform kind with the builtin default applied.
func (t Transform) KindOrDefault() string {
	if t.Kind == "" {
		return "builtin"
	}
	return t.Kind
}
