package schema

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
)

// LoadResult is the outcome of resolving a configured schema input.
type LoadResult struct {
	// Schema is the compiled (or directly supplied) schema document.
	Schema map[string]any

	// Path is the resolved source path the schema was read from.
	Path string

	// ArtifactPath is where the compiled artifact was written, when the
	// source was DSL and emission was requested.
	ArtifactPath string

	// CompiledFromDSL reports whether the DSL compilation path ran.
	CompiledFromDSL bool
}

// ArtifactPath returns the fixed location for a compiled schema artifact:
// the source filename with a .json extension under build/schema inside
// the project. The artifact is generated output and never hand-edited.
func ArtifactPath(projectDir, schemaPath string) string {
	base := filepath.Base(schemaPath)
	if ext := filepath.Ext(base); ext != "" {
		base = strings.TrimSuffix(base, ext)
	}
	return filepath.Join(projectDir, "build", "schema", base+".json")
}

// LoadCompiled resolves a schema input by file extension: .yaml/.yml is
// parsed as DSL, structurally validated and compiled (optionally writing
// the build artifact); .json is consumed as a schema directly. Both paths
// end in a CheckSchema self-check, so a loaded schema is always known to
// be well-formed.
func LoadCompiled(projectDir, schemaPath string, emitArtifact bool) (*LoadResult, error) {
	resolved := schemaPath
	if !filepath.IsAbs(resolved) {
		resolved = filepath.Join(projectDir, resolved)
	}
	data, err := os.ReadFile(resolved)
	if err != nil {
		return nil, fmt.Errorf("read schema: %w", err)
	}

	result := &LoadResult{Path: resolved}
	switch strings.ToLower(filepath.Ext(resolved)) {
	case ".yaml", ".yml":
		doc, err := ParseDocument(data)
		if err != nil {
			return nil, err
		}
		if errs := ValidateDocument(doc); len(errs) > 0 {
			return nil, ErrorList(errs)
		}
		compiled, errs := Compile(doc)
		if len(errs) > 0 {
			return nil, ErrorList(errs)
		}
		result.CompiledFromDSL = true
		result.Schema, err = compiled.Map()
		if err != nil {
			return nil, fmt.Errorf("decode compiled schema: %w", err)
		}
		if emitArtifact {
			artifact := ArtifactPath(projectDir, resolved)
			payload, err := compiled.Bytes()
			if err != nil {
				return nil, fmt.Errorf("render compiled schema: %w", err)
			}
			if err := os.MkdirAll(filepath.Dir(artifact), 0o755); err != nil {
				return nil, fmt.Errorf("create artifact directory: %w", err)
			}
			if err := os.WriteFile(artifact, payload, 0o644); err != nil {
				return nil, fmt.Errorf("write compiled schema artifact: %w", err)
			}
			result.ArtifactPath = artifact
		}
	default:
		var schema map[string]any
		if err := json.Unmarshal(data, &schema); err != nil {
			return nil, fmt.Errorf("invalid JSON schema %s: %w", resolved, err)
		}
		result.Schema = schema
	}

	if errs := CheckSchema(result.Schema); len(errs) > 0 {
		return nil, ErrorList(errs)
	}
	return result, nil
}
