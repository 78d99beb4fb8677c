package transform

import (
	"fmt"
	"sort"

	"github.com/opactx/opactx/pkg/ctxobj"
)

// defaultEntry is one path/value pair to seed when the path is absent.
type defaultEntry struct {
	path  ctxobj.Path
	value any
}

// defaults writes values only where the target path has no value yet.
// Existing values, including explicit nulls, are left alone.
type defaults struct {
	entries []defaultEntry
}

func newDefaults(_ string, with map[string]any) (Transform, error) {
	raw, ok := with["values"].(map[string]any)
	if !ok || len(raw) == 0 {
		return nil, fmt.Errorf("transform defaults: parameter %q must be a non-empty mapping of paths to values", "values")
	}
	entries := make([]defaultEntry, 0, len(raw))
	for key, value := range raw {
		path, err := ctxobj.ParsePath(key)
		if err != nil {
			return nil, fmt.Errorf("transform defaults: %w", err)
		}
		entries = append(entries, defaultEntry{path: path, value: value})
	}
	// Apply in path order so nested defaults land the same way on every
	// run, whatever order the mapping iterates in.
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].path.String() < entries[j].path.String()
	})
	return &defaults{entries: entries}, nil
}

func (t *defaults) Name() string { return "defaults" }

func (t *defaults) Apply(obj *ctxobj.Object, _ *Env) error {
	for _, entry := range t.entries {
		if obj.Exists(entry.path) {
			continue
		}
		if err := obj.Set(entry.path, ctxobj.DeepCopy(entry.value)); err != nil {
			return failf(t.Name(), entry.path.String(), "%v", err)
		}
	}
	return nil
}
