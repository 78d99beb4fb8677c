package schema

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestArtifactPath(t *testing.T) {
	got := ArtifactPath("/proj", "/proj/schema/context.yaml")
	want := filepath.Join("/proj", "build", "schema", "context.json")
	if got != want {
		t.Errorf("ArtifactPath = %q, want %q", got, want)
	}
}

func TestLoadCompiledDSL(t *testing.T) {
	dir := t.TempDir()
	schemaPath := filepath.Join(dir, "schema", "context.yaml")
	if err := os.MkdirAll(filepath.Dir(schemaPath), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(schemaPath, []byte(minimalDSL), 0o644); err != nil {
		t.Fatal(err)
	}

	result, err := LoadCompiled(dir, "schema/context.yaml", true)
	if err != nil {
		t.Fatalf("LoadCompiled: %v", err)
	}
	if !result.CompiledFromDSL {
		t.Error("DSL input not reported as compiled")
	}
	if result.ArtifactPath == "" {
		t.Fatal("no artifact written")
	}
	first, err := os.ReadFile(result.ArtifactPath)
	if err != nil {
		t.Fatalf("read artifact: %v", err)
	}

	// Regenerating from unchanged input reproduces the artifact exactly.
	if _, err := LoadCompiled(dir, "schema/context.yaml", true); err != nil {
		t.Fatalf("second LoadCompiled: %v", err)
	}
	second, err := os.ReadFile(result.ArtifactPath)
	if err != nil {
		t.Fatalf("reread artifact: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Error("regenerated artifact differs from the original")
	}
}

func TestLoadCompiledJSON(t *testing.T) {
	dir := t.TempDir()
	schemaPath := filepath.Join(dir, "context.schema.json")
	if err := os.WriteFile(schemaPath, []byte(`{"type":"object"}`), 0o644); err != nil {
		t.Fatal(err)
	}

	result, err := LoadCompiled(dir, "context.schema.json", true)
	if err != nil {
		t.Fatalf("LoadCompiled: %v", err)
	}
	if result.CompiledFromDSL {
		t.Error("JSON input reported as compiled")
	}
	if result.ArtifactPath != "" {
		t.Error("JSON input produced a compiled artifact")
	}
	if result.Schema["type"] != "object" {
		t.Errorf("schema = %v", result.Schema)
	}
}

func TestLoadCompiledRejectsBadInputs(t *testing.T) {
	dir := t.TempDir()

	if _, err := LoadCompiled(dir, "absent.yaml", false); err == nil {
		t.Error("missing schema file accepted")
	}

	badJSON := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(badJSON, []byte(`{"type": "frobnicate"}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadCompiled(dir, "bad.json", false); err == nil {
		t.Error("schema with an unknown type accepted")
	}

	badDSL := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(badDSL, []byte("dsl: wrong\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadCompiled(dir, "bad.yaml", false); err == nil {
		t.Error("structurally invalid DSL accepted")
	}
}
