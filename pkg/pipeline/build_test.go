package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/opactx/opactx/pkg/events"
	"github.com/opactx/opactx/pkg/sources"
	"github.com/opactx/opactx/pkg/transform"
)

const testSchema = `dsl: opactx.schema/v1
id: test.context
title: Test context
description: Schema used by the pipeline tests.
root: context
schema:
  type: object
  strict: false
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
      required: true
      strict: false
      allow_empty_object: true
`

const testConfig = `version: v1
schema: schema/context.yaml
context_dir: context
sources:
  - name: repo
    type: file
    with:
      path: data/repo.json
output:
  dir: dist/bundle
`

func writeProject(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"opactx.yaml":             testConfig,
		"schema/context.yaml":     testSchema,
		"context/standards.yaml":  "encryption_required: true\n",
		"context/exceptions.yaml": "legacy_service: approved\n",
		"data/repo.json":          `{"name":"api","stars":7}`,
	}
	for name, contents := range files {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

type recorder struct {
	events []events.Event
}

func (r *recorder) Observe(event events.Event) {
	r.events = append(r.events, event)
}

func (r *recorder) stages() []string {
	var out []string
	for _, event := range r.events {
		if started, ok := event.(*events.StageStarted); ok {
			out = append(out, started.Stage)
		}
	}
	return out
}

func (r *recorder) has(stage string) bool {
	for _, event := range r.events {
		if event.Meta().Stage == stage {
			return true
		}
	}
	return false
}

func newTestBuilder(command string) (*Builder, *recorder) {
	rec := &recorder{}
	bus := events.NewBus(NewRunID(), command)
	bus.Subscribe(rec)
	return NewBuilder(bus, nil, sources.NewRegistry(), transform.NewRegistry()), rec
}

func TestBuildProducesBundle(t *testing.T) {
	dir := writeProject(t)
	builder, rec := newTestBuilder("build")

	outcome, err := builder.Run(context.Background(), Options{ProjectDir: dir})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if outcome.Revision == "" {
		t.Error("outcome has no revision")
	}

	data, err := os.ReadFile(filepath.Join(outcome.OutDir, BundleDataFileName))
	if err != nil {
		t.Fatalf("bundle data document missing: %v", err)
	}
	if len(data) == 0 || data[len(data)-1] != '\n' {
		t.Error("data document is not newline-terminated canonical JSON")
	}

	inspection, err := Inspect(outcome.OutDir, "sources.repo.name")
	if err != nil {
		t.Fatalf("Inspect: %v", err)
	}
	if inspection.Value != "api" {
		t.Errorf("sources.repo.name = %v", inspection.Value)
	}
	if inspection.Manifest.Revision != outcome.Revision {
		t.Errorf("manifest revision %q != outcome revision %q", inspection.Manifest.Revision, outcome.Revision)
	}

	wantStages := []string{"load_config", "load_intent", "fetch_sources", "apply_transforms", "validate_context", "emit_bundle"}
	gotStages := rec.stages()
	if len(gotStages) != len(wantStages) {
		t.Fatalf("stages = %v, want %v", gotStages, wantStages)
	}
	for i, want := range wantStages {
		if gotStages[i] != want {
			t.Errorf("stage %d = %q, want %q", i, gotStages[i], want)
		}
	}

	first, last := rec.events[0], rec.events[len(rec.events)-1]
	if first.Type() != "CommandStarted" || last.Type() != "CommandCompleted" {
		t.Errorf("stream bracket = %s .. %s", first.Type(), last.Type())
	}
	for i, event := range rec.events {
		if event.Meta().Seq != uint64(i+1) {
			t.Fatalf("event %d out of sequence", i)
		}
	}
}

func TestBuildStageEventPairing(t *testing.T) {
	dir := writeProject(t)
	builder, rec := newTestBuilder("build")
	if _, err := builder.Run(context.Background(), Options{ProjectDir: dir}); err != nil {
		t.Fatalf("Run: %v", err)
	}

	open := ""
	for _, event := range rec.events {
		switch event.(type) {
		case *events.StageStarted:
			if open != "" {
				t.Fatalf("stage %q started while %q was still open", event.Meta().Stage, open)
			}
			open = event.Meta().Stage
		case *events.StageCompleted, *events.StageFailed:
			if event.Meta().Stage != open {
				t.Fatalf("outcome for %q while %q was open", event.Meta().Stage, open)
			}
			open = ""
		}
	}
	if open != "" {
		t.Fatalf("stage %q never got an outcome", open)
	}
}

func TestBuildDeterministicRevision(t *testing.T) {
	dir := writeProject(t)

	builder, _ := newTestBuilder("build")
	first, err := builder.Run(context.Background(), Options{ProjectDir: dir})
	if err != nil {
		t.Fatalf("first Run: %v", err)
	}
	builder, _ = newTestBuilder("build")
	second, err := builder.Run(context.Background(), Options{ProjectDir: dir})
	if err != nil {
		t.Fatalf("second Run: %v", err)
	}
	if first.Revision != second.Revision {
		t.Errorf("revisions differ across identical builds: %q vs %q", first.Revision, second.Revision)
	}
}

func TestBuildFetchFailureHaltsPipeline(t *testing.T) {
	dir := writeProject(t)
	if err := os.Remove(filepath.Join(dir, "data", "repo.json")); err != nil {
		t.Fatal(err)
	}
	builder, rec := newTestBuilder("build")

	_, err := builder.Run(context.Background(), Options{ProjectDir: dir})
	if err == nil {
		t.Fatal("Run succeeded with a broken source")
	}
	var stageErr *StageError
	if !errors.As(err, &stageErr) || stageErr.Stage != StageFetchSources {
		t.Errorf("error = %v, want fetch_sources stage failure", err)
	}

	for _, stage := range []string{"apply_transforms", "validate_context", "emit_bundle"} {
		if rec.has(stage) {
			t.Errorf("stage %q emitted events after a fetch failure", stage)
		}
	}
	if _, err := os.Stat(filepath.Join(dir, "dist", "bundle")); !os.IsNotExist(err) {
		t.Error("bundle directory exists after a failed build")
	}
}

func TestBuildValidationFailureWritesNoBundle(t *testing.T) {
	dir := writeProject(t)
	if err := os.Remove(filepath.Join(dir, "context", "standards.yaml")); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "context", "standards.yaml"), []byte(""), 0o644); err != nil {
		t.Fatal(err)
	}
	// An empty standards file yields an empty mapping, which still
	// satisfies the schema; force a failure by requiring a field the
	// canonical context never carries.
	schema := testSchema + `    audit_log:
      type: string
      required: true
`
	if err := os.WriteFile(filepath.Join(dir, "schema", "context.yaml"), []byte(schema), 0o644); err != nil {
		t.Fatal(err)
	}
	builder, rec := newTestBuilder("build")

	_, err := builder.Run(context.Background(), Options{ProjectDir: dir})
	if err == nil {
		t.Fatal("Run succeeded with an unsatisfiable schema")
	}
	var stageErr *StageError
	if !errors.As(err, &stageErr) || stageErr.Stage != StageValidateContext {
		t.Errorf("error = %v, want validate_context stage failure", err)
	}
	if rec.has("emit_bundle") {
		t.Error("emit_bundle emitted events after a validation failure")
	}
	if _, err := os.Stat(filepath.Join(dir, "dist", "bundle")); !os.IsNotExist(err) {
		t.Error("bundle directory exists after a failed build")
	}

	found := false
	for _, event := range rec.events {
		if failed, ok := event.(*events.SchemaValidationFailed); ok {
			for _, issue := range failed.Errors {
				if issue.Path == "/audit_log" {
					found = true
				}
			}
		}
	}
	if !found {
		t.Error("validation failure does not name the missing field's path")
	}
}

func TestBuildDryRunWritesNothing(t *testing.T) {
	dir := writeProject(t)
	builder, _ := newTestBuilder("build")

	outcome, err := builder.Run(context.Background(), Options{ProjectDir: dir, DryRun: true})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if outcome.Revision == "" {
		t.Error("dry run computed no revision")
	}
	if outcome.OutDir != "" {
		t.Errorf("dry run reported an output directory: %q", outcome.OutDir)
	}
	if _, err := os.Stat(filepath.Join(dir, "dist")); !os.IsNotExist(err) {
		t.Error("dry run wrote output")
	}
}

func TestValidatePreflight(t *testing.T) {
	dir := writeProject(t)
	builder, rec := newTestBuilder("validate")

	if err := builder.Validate(ValidateOptions{ProjectDir: dir}); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if rec.has("fetch_sources") {
		t.Error("preflight fetched sources")
	}
	if _, err := os.Stat(filepath.Join(dir, "dist")); !os.IsNotExist(err) {
		t.Error("preflight wrote output")
	}
}

func TestValidatePreflightStrictSourceIssues(t *testing.T) {
	dir := writeProject(t)
	schema := testSchema + `      fields:
        repo:
          type: object
          required: true
          strict: false
`
	if err := os.WriteFile(filepath.Join(dir, "schema", "context.yaml"), []byte(schema), 0o644); err != nil {
		t.Fatal(err)
	}

	builder, rec := newTestBuilder("validate")
	if err := builder.Validate(ValidateOptions{ProjectDir: dir}); err != nil {
		t.Fatalf("lenient preflight failed: %v", err)
	}
	warned := false
	for _, event := range rec.events {
		if _, ok := event.(*events.Warning); ok {
			warned = true
		}
	}
	if !warned {
		t.Error("source-subtree issue produced no warning")
	}

	builder, _ = newTestBuilder("validate")
	if err := builder.Validate(ValidateOptions{ProjectDir: dir, Strict: true}); err == nil {
		t.Error("strict preflight ignored a source-subtree issue")
	}
}
