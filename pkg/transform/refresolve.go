package transform

import (
	"github.com/opactx/opactx/pkg/ctxobj"
)

// refResolve performs a local join: for every item in the array at path,
// the value under ref_key is looked up in the mapping at from, and the
// matched entry is written on the item under target_key. By default the
// match is deep-copied so later mutations cannot alias shared state.
type refResolve struct {
	path      ctxobj.Path
	from      ctxobj.Path
	refKey    string
	targetKey string
	required  bool
	copyMatch bool
}

func newRefResolve(_ string, with map[string]any) (Transform, error) {
	path, err := requiredPath(with, "path", "ref_resolve")
	if err != nil {
		return nil, err
	}
	from, err := requiredPath(with, "from", "ref_resolve")
	if err != nil {
		return nil, err
	}
	refKey, err := requiredString(with, "ref_key", "ref_resolve")
	if err != nil {
		return nil, err
	}
	targetKey, err := requiredString(with, "target_key", "ref_resolve")
	if err != nil {
		return nil, err
	}
	required, err := optionalBool(with, "required", false, "ref_resolve")
	if err != nil {
		return nil, err
	}
	copyMatch, err := optionalBool(with, "copy", true, "ref_resolve")
	if err != nil {
		return nil, err
	}
	return &refResolve{
		path:      path,
		from:      from,
		refKey:    refKey,
		targetKey: targetKey,
		required:  required,
		copyMatch: copyMatch,
	}, nil
}

func (t *refResolve) Name() string { return "ref_resolve" }

func (t *refResolve) Apply(obj *ctxobj.Object, _ *Env) error {
	raw, ok := obj.Get(t.path)
	if !ok {
		return failf(t.Name(), t.path.String(), "no value at path")
	}
	items, ok := raw.([]any)
	if !ok {
		return failf(t.Name(), t.path.String(), "expected an array, got %s", ctxobj.TypeName(raw))
	}
	lookupRaw, ok := obj.Get(t.from)
	if !ok {
		return failf(t.Name(), t.from.String(), "no value at path")
	}
	lookup, ok := lookupRaw.(map[string]any)
	if !ok {
		return failf(t.Name(), t.from.String(), "expected an object, got %s", ctxobj.TypeName(lookupRaw))
	}

	for i, raw := range items {
		item, ok := raw.(map[string]any)
		if !ok {
			return failf(t.Name(), t.path.String(), "item %d is %s, not an object", i, ctxobj.TypeName(raw))
		}
		refRaw, present := item[t.refKey]
		if !present {
			if t.required {
				return failf(t.Name(), t.path.String(), "item %d has no %q key", i, t.refKey)
			}
			continue
		}
		ref, ok := refRaw.(string)
		if !ok {
			return failf(t.Name(), t.path.String(), "item %d: %q must be a string, got %s", i, t.refKey, ctxobj.TypeName(refRaw))
		}
		match, found := lookup[ref]
		if !found {
			if t.required {
				return failf(t.Name(), t.from.String(), "no entry for key %q (item %d)", ref, i)
			}
			continue
		}
		if t.copyMatch {
			match = ctxobj.DeepCopy(match)
		}
		item[t.targetKey] = match
	}
	return nil
}
