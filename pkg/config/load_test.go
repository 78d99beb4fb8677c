package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseAppliesDefaults(t *testing.T) {
	cfg, err := Parse([]byte("version: v1\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.SchemaPath != "schema/context.schema.json" {
		t.Errorf("SchemaPath = %q", cfg.SchemaPath)
	}
	if cfg.ContextDir != "context" {
		t.Errorf("ContextDir = %q", cfg.ContextDir)
	}
	if cfg.Output.Dir != "dist/bundle" {
		t.Errorf("Output.Dir = %q", cfg.Output.Dir)
	}
}

func TestParseFull(t *testing.T) {
	source := `version: v1
schema: schema/context.yaml
context_dir: intent
sources:
  - name: repo
    type: file
    with:
      path: data/repo.json
transforms:
  - name: canonicalize
  - name: enrich
    kind: plugin
    with:
      script: transforms/enrich.star
output:
  dir: out/bundle
  include_policy: true
  tarball: true
`
	cfg, err := Parse([]byte(source))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(cfg.Sources) != 1 || cfg.Sources[0].Name != "repo" || cfg.Sources[0].Type != "file" {
		t.Errorf("Sources = %+v", cfg.Sources)
	}
	if len(cfg.Transforms) != 2 {
		t.Fatalf("Transforms = %+v", cfg.Transforms)
	}
	if cfg.Transforms[0].KindOrDefault() != "builtin" {
		t.Errorf("default kind = %q", cfg.Transforms[0].KindOrDefault())
	}
	if cfg.Transforms[1].Kind != "plugin" {
		t.Errorf("kind = %q", cfg.Transforms[1].Kind)
	}
	if !cfg.Output.IncludePolicy || !cfg.Output.Tarball {
		t.Errorf("Output = %+v", cfg.Output)
	}
}

func TestParseRejections(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   string
	}{
		{name: "unknown key", source: "version: v1\nunexpected: true\n", want: "parse"},
		{name: "unsupported version", source: "version: v2\n", want: "only version v1"},
		{name: "bad transform kind", source: "version: v1\ntransforms:\n  - name: x\n    kind: shell\n", want: "invalid config"},
		{name: "source without type", source: "version: v1\nsources:\n  - name: repo\n", want: "invalid config"},
		{
			name:   "duplicate source names",
			source: "version: v1\nsources:\n  - name: repo\n    type: file\n  - name: repo\n    type: http\n",
			want:   "duplicate source names: repo",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.source))
			if err == nil {
				t.Fatal("invalid config accepted")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %q, want substring %q", err, tt.want)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(t.TempDir(), "")
	if err == nil {
		t.Fatal("missing config accepted")
	}
	if !strings.Contains(err.Error(), "missing config") {
		t.Errorf("error = %q", err)
	}
}

func TestLoadYAMLMapping(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "standards.yaml")
	if err := os.WriteFile(path, []byte("encryption_required: true\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	mapping, err := LoadYAMLMapping(path, true)
	if err != nil {
		t.Fatalf("LoadYAMLMapping: %v", err)
	}
	if mapping["encryption_required"] != true {
		t.Errorf("mapping = %v", mapping)
	}

	empty, err := LoadYAMLMapping(filepath.Join(dir, "absent.yaml"), false)
	if err != nil {
		t.Fatalf("optional missing file: %v", err)
	}
	if len(empty) != 0 {
		t.Errorf("optional missing file yielded %v", empty)
	}

	if _, err := LoadYAMLMapping(filepath.Join(dir, "absent.yaml"), true); err == nil {
		t.Error("required missing file accepted")
	}

	scalar := filepath.Join(dir, "scalar.yaml")
	if err := os.WriteFile(scalar, []byte("just a string\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadYAMLMapping(scalar, true); err == nil {
		t.Error("non-mapping document accepted")
	}
}
