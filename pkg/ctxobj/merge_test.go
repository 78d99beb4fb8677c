package ctxobj

import (
	"reflect"
	"testing"
)

func TestMerge(t *testing.T) {
	tests := []struct {
		name string
		dst  any
		src  any
		want any
	}{
		{
			name: "objects merge recursively",
			dst:  map[string]any{"a": map[string]any{"x": 1}},
			src:  map[string]any{"a": map[string]any{"y": 2}},
			want: map[string]any{"a": map[string]any{"x": 1, "y": 2}},
		},
		{
			name: "arrays replace",
			dst:  map[string]any{"a": []any{1, 2}},
			src:  map[string]any{"a": []any{3}},
			want: map[string]any{"a": []any{3}},
		},
		{
			name: "scalar replaces object",
			dst:  map[string]any{"a": map[string]any{"x": 1}},
			src:  map[string]any{"a": "flat"},
			want: map[string]any{"a": "flat"},
		},
		{
			name: "later keys win",
			dst:  map[string]any{"a": 1, "b": 2},
			src:  map[string]any{"b": 3},
			want: map[string]any{"a": 1, "b": 3},
		},
		{
			name: "scalar against scalar",
			dst:  1,
			src:  2,
			want: 2,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Merge(tt.dst, tt.src)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Merge() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMergeDoesNotAliasSource(t *testing.T) {
	src := map[string]any{"a": map[string]any{"x": 1}}
	got := Merge(map[string]any{}, src).(map[string]any)
	got["a"].(map[string]any)["x"] = 99
	if src["a"].(map[string]any)["x"] != 1 {
		t.Fatal("merge result aliases the source value")
	}
}

func TestDeepCopyIsolation(t *testing.T) {
	original := map[string]any{
		"list":   []any{1, map[string]any{"k": "v"}},
		"nested": map[string]any{"inner": true},
	}
	copied := DeepCopy(original).(map[string]any)
	copied["nested"].(map[string]any)["inner"] = false
	copied["list"].([]any)[1].(map[string]any)["k"] = "changed"

	if original["nested"].(map[string]any)["inner"] != true {
		t.Error("nested map was not copied")
	}
	if original["list"].([]any)[1].(map[string]any)["k"] != "v" {
		t.Error("list element was not copied")
	}
}
