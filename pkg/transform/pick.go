package transform

import (
	"sort"
	"strings"

	"github.com/opactx/opactx/pkg/ctxobj"
)

// pick projects the object at a path down to an explicit key allowlist.
// With strict on, keys outside the allowlist are a failure instead of
// being dropped silently.
type pick struct {
	path   ctxobj.Path
	keys   map[string]bool
	strict bool
}

func newPick(_ string, with map[string]any) (Transform, error) {
	path, err := requiredPath(with, "path", "pick")
	if err != nil {
		return nil, err
	}
	keys, err := stringList(with, "keys", "pick")
	if err != nil {
		return nil, err
	}
	strict, err := optionalBool(with, "strict", false, "pick")
	if err != nil {
		return nil, err
	}
	allow := make(map[string]bool, len(keys))
	for _, key := range keys {
		allow[key] = true
	}
	return &pick{path: path, keys: allow, strict: strict}, nil
}

func (t *pick) Name() string { return "pick" }

func (t *pick) Apply(obj *ctxobj.Object, _ *Env) error {
	value, ok := obj.Get(t.path)
	if !ok {
		return failf(t.Name(), t.path.String(), "no value at path")
	}
	source, ok := value.(map[string]any)
	if !ok {
		return failf(t.Name(), t.path.String(), "expected an object, got %s", ctxobj.TypeName(value))
	}

	if t.strict {
		var extra []string
		for key := range source {
			if !t.keys[key] {
				extra = append(extra, key)
			}
		}
		if len(extra) > 0 {
			sort.Strings(extra)
			return failf(t.Name(), t.path.String(), "unexpected keys: %s", strings.Join(extra, ", "))
		}
	}

	projected := map[string]any{}
	for key := range t.keys {
		if item, present := source[key]; present {
			projected[key] = item
		}
	}
	if err := obj.Set(t.path, projected); err != nil {
		return failf(t.Name(), t.path.String(), "%v", err)
	}
	return nil
}
