package ctxobj

import (
	"reflect"
	"testing"
)

func TestParsePath(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		segments []string
		wantErr  bool
	}{
		{name: "root only", input: "context", segments: []string{}},
		{name: "nested", input: "context.a.b", segments: []string{"a", "b"}},
		{name: "wrong root", input: "data.a", wantErr: true},
		{name: "empty", input: "", wantErr: true},
		{name: "empty segment", input: "context..a", wantErr: true},
		{name: "trailing dot", input: "context.a.", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path, err := ParsePath(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParsePath(%q) succeeded, want error", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParsePath(%q): %v", tt.input, err)
			}
			if len(path.Segments()) != len(tt.segments) {
				t.Fatalf("segments = %v, want %v", path.Segments(), tt.segments)
			}
			if path.String() != tt.input {
				t.Errorf("String() = %q, want %q", path.String(), tt.input)
			}
		})
	}
}

func TestObjectSetGet(t *testing.T) {
	obj := New()
	if err := obj.Set(MustParsePath("context.a.b"), 1); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, ok := obj.Get(MustParsePath("context.a.b"))
	if !ok || got != 1 {
		t.Fatalf("Get = %v, %v; want 1, true", got, ok)
	}
	want := map[string]any{"a": map[string]any{"b": 1}}
	if !reflect.DeepEqual(obj.Value(), want) {
		t.Errorf("Value() = %v, want %v", obj.Value(), want)
	}
}

func TestObjectSetThroughScalarFails(t *testing.T) {
	obj := New()
	if err := obj.Set(MustParsePath("context.a"), "scalar"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := obj.Set(MustParsePath("context.a.b"), 1); err == nil {
		t.Fatal("setting through a scalar succeeded, want error")
	}
}

func TestObjectSetRoot(t *testing.T) {
	obj := New()
	if err := obj.Set(MustParsePath("context"), "not an object"); err == nil {
		t.Fatal("setting a scalar at the root succeeded, want error")
	}
	if err := obj.Set(MustParsePath("context"), map[string]any{"k": "v"}); err != nil {
		t.Fatalf("Set root: %v", err)
	}
	if got, _ := obj.Get(MustParsePath("context.k")); got != "v" {
		t.Errorf("root replacement not visible, got %v", got)
	}
}

func TestObjectDelete(t *testing.T) {
	obj := FromValue(map[string]any{"a": map[string]any{"b": 1, "c": 2}})
	if !obj.Delete(MustParsePath("context.a.b")) {
		t.Fatal("Delete reported missing for an existing value")
	}
	if obj.Exists(MustParsePath("context.a.b")) {
		t.Error("value still present after delete")
	}
	if !obj.Exists(MustParsePath("context.a.c")) {
		t.Error("sibling removed by delete")
	}
	if obj.Delete(MustParsePath("context.missing")) {
		t.Error("Delete reported success for a missing value")
	}
}
