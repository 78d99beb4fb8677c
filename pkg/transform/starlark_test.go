package transform

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/opactx/opactx/pkg/ctxobj"
)

func writeScript(t *testing.T, name, body string) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "transforms"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "transforms", name), []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return dir
}

func TestStarlarkPlugin(t *testing.T) {
	script := `def apply(value, params):
    value["annotated"] = params["note"]
    value["count"] = len(value)
    return value
`
	dir := writeScript(t, "annotate.star", script)
	tr, err := newStarlark("annotate", dir, map[string]any{
		"script": "transforms/annotate.star",
		"note":   "from-plugin",
	})
	if err != nil {
		t.Fatalf("newStarlark: %v", err)
	}
	if Kind(tr) != "plugin" {
		t.Errorf("Kind = %q, want plugin", Kind(tr))
	}

	obj := ctxobj.FromValue(map[string]any{"existing": true})
	if err := tr.Apply(obj, &Env{}); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	want := map[string]any{
		"existing":  true,
		"annotated": "from-plugin",
		"count":     int64(2),
	}
	if !reflect.DeepEqual(obj.Value(), want) {
		t.Errorf("got %v, want %v", obj.Value(), want)
	}
}

func TestStarlarkPluginMustReturnObject(t *testing.T) {
	script := `def apply(value, params):
    return "not an object"
`
	dir := writeScript(t, "bad.star", script)
	tr, err := newStarlark("bad", dir, map[string]any{"script": "transforms/bad.star"})
	if err != nil {
		t.Fatalf("newStarlark: %v", err)
	}
	if err := tr.Apply(ctxobj.New(), &Env{}); err == nil {
		t.Error("non-object return value accepted")
	}
}

func TestStarlarkPluginMustDefineApply(t *testing.T) {
	dir := writeScript(t, "empty.star", "x = 1\n")
	tr, err := newStarlark("empty", dir, map[string]any{"script": "transforms/empty.star"})
	if err != nil {
		t.Fatalf("newStarlark: %v", err)
	}
	if err := tr.Apply(ctxobj.New(), &Env{}); err == nil {
		t.Error("script without apply accepted")
	}
}

func TestStarlarkPluginMissingScript(t *testing.T) {
	if _, err := newStarlark("absent", t.TempDir(), nil); err == nil {
		t.Error("missing script file accepted")
	}
}
