package transform

import (
	"github.com/opactx/opactx/pkg/ctxobj"
)

// dedupe removes array items that share a key value, or the raw item
// value when no key is given. keep selects whether the first or the last
// occurrence survives; surviving items keep their relative order.
type dedupe struct {
	path     ctxobj.Path
	key      string
	keepLast bool
}

func newDedupe(_ string, with map[string]any) (Transform, error) {
	path, err := requiredPath(with, "path", "dedupe")
	if err != nil {
		return nil, err
	}
	key, err := optionalString(with, "key", "", "dedupe")
	if err != nil {
		return nil, err
	}
	keep, err := optionalString(with, "keep", "first", "dedupe")
	if err != nil {
		return nil, err
	}
	if err := enumChoice(keep, []string{"first", "last"}, "keep", "dedupe"); err != nil {
		return nil, err
	}
	return &dedupe{path: path, key: key, keepLast: keep == "last"}, nil
}

func (t *dedupe) Name() string { return "dedupe" }

func (t *dedupe) Apply(obj *ctxobj.Object, _ *Env) error {
	raw, ok := obj.Get(t.path)
	if !ok {
		return failf(t.Name(), t.path.String(), "no value at path")
	}
	items, ok := raw.([]any)
	if !ok {
		return failf(t.Name(), t.path.String(), "expected an array, got %s", ctxobj.TypeName(raw))
	}

	// Identity is the canonical JSON of the key (or of the whole item),
	// so numerically equal keys collapse regardless of int/float form.
	identities := make([]string, len(items))
	for i, item := range items {
		subject := item
		if t.key != "" {
			mapping, ok := item.(map[string]any)
			if !ok {
				return failf(t.Name(), t.path.String(), "item %d is %s, not an object", i, ctxobj.TypeName(item))
			}
			keyed, present := mapping[t.key]
			if !present {
				return failf(t.Name(), t.path.String(), "item %d has no %q key", i, t.key)
			}
			subject = keyed
		}
		identity, err := ctxobj.CanonicalJSON(subject)
		if err != nil {
			return failf(t.Name(), t.path.String(), "item %d: %v", i, err)
		}
		identities[i] = string(identity)
	}

	chosen := map[string]int{}
	for i, identity := range identities {
		if _, seen := chosen[identity]; seen && !t.keepLast {
			continue
		}
		chosen[identity] = i
	}

	deduped := make([]any, 0, len(chosen))
	for i, item := range items {
		if chosen[identities[i]] == i {
			deduped = append(deduped, item)
		}
	}
	if err := obj.Set(t.path, deduped); err != nil {
		return failf(t.Name(), t.path.String(), "%v", err)
	}
	return nil
}
