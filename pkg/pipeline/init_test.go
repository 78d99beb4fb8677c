package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestScaffoldProducesBuildableProject(t *testing.T) {
	dir := t.TempDir()
	written, err := Scaffold(dir)
	if err != nil {
		t.Fatalf("Scaffold: %v", err)
	}
	if len(written) == 0 {
		t.Fatal("Scaffold reported no files")
	}
	for _, name := range written {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("reported file %s missing: %v", name, err)
		}
	}

	builder, _ := newTestBuilder("build")
	outcome, err := builder.Run(context.Background(), Options{ProjectDir: dir})
	if err != nil {
		t.Fatalf("building a fresh scaffold failed: %v", err)
	}
	inspection, err := Inspect(outcome.OutDir, "sources.example.name")
	if err != nil {
		t.Fatalf("Inspect: %v", err)
	}
	if inspection.Value != "example" {
		t.Errorf("sources.example.name = %v", inspection.Value)
	}
}

func TestScaffoldRefusesToOverwrite(t *testing.T) {
	dir := t.TempDir()
	if _, err := Scaffold(dir); err != nil {
		t.Fatalf("first Scaffold: %v", err)
	}
	if _, err := Scaffold(dir); err == nil {
		t.Error("second Scaffold overwrote an existing project")
	}
}
