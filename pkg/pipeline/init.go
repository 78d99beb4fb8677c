package pipeline

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/opactx/opactx/pkg/config"
)

const scaffoldConfig = `version: v1
schema: schema/context.yaml
context_dir: context
sources:
  - name: example
    type: file
    with:
      path: data/example.json
transforms: []
output:
  dir: dist/bundle
`

const scaffoldSchema = `dsl: opactx.schema/v1
id: example.context
title: Example context
description: Context assembled for the example project.
root: context
schema:
  type: object
  fields:
    standards:
      type: object
      required: true
      strict: false
      allow_empty_object: true
    exceptions:
      type: object
      strict: false
      allow_empty_object: true
    sources:
      type: object
      strict: false
      allow_empty_object: true
`

const scaffoldStandards = `# Organization-wide standards consumed by policy.
encryption_required: true
`

const scaffoldExceptions = `# Approved exceptions to the standards. Optional; may be empty.
`

const scaffoldExampleSource = `{"name": "example", "kind": "demo"}
`

// Scaffold writes a minimal working project layout: configuration, a DSL
// schema, the two intent documents, and an example source payload. Existing
// files are never overwritten.
func Scaffold(projectDir string) ([]string, error) {
	files := []struct {
		name     string
		contents string
	}{
		{config.DefaultFileName, scaffoldConfig},
		{filepath.Join("schema", "context.yaml"), scaffoldSchema},
		{filepath.Join("context", StandardsFileName), scaffoldStandards},
		{filepath.Join("context", ExceptionsFileName), scaffoldExceptions},
		{filepath.Join("data", "example.json"), scaffoldExampleSource},
	}

	written := make([]string, 0, len(files))
	for _, file := range files {
		name, contents := file.name, file.contents
		target := filepath.Join(projectDir, name)
		if _, err := os.Stat(target); err == nil {
			return nil, fmt.Errorf("refusing to overwrite existing %s", name)
		}
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return nil, fmt.Errorf("create %s: %w", filepath.Dir(name), err)
		}
		if err := os.WriteFile(target, []byte(contents), 0o644); err != nil {
			return nil, fmt.Errorf("write %s: %w", name, err)
		}
		written = append(written, name)
	}
	return written, nil
}
