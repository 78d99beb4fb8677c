package transform

import (
	"sort"

	"github.com/opactx/opactx/pkg/ctxobj"
)

// sortStable orders an array by an item key, or by the raw item value
// when no key is given. The sort is stable, so items comparing equal keep
// their original relative order.
type sortStable struct {
	path       ctxobj.Path
	key        string
	descending bool
}

func newSortStable(_ string, with map[string]any) (Transform, error) {
	path, err := requiredPath(with, "path", "sort_stable")
	if err != nil {
		return nil, err
	}
	key, err := optionalString(with, "key", "", "sort_stable")
	if err != nil {
		return nil, err
	}
	order, err := optionalString(with, "order", "asc", "sort_stable")
	if err != nil {
		return nil, err
	}
	if err := enumChoice(order, []string{"asc", "desc"}, "order", "sort_stable"); err != nil {
		return nil, err
	}
	return &sortStable{path: path, key: key, descending: order == "desc"}, nil
}

func (t *sortStable) Name() string { return "sort_stable" }

func (t *sortStable) Apply(obj *ctxobj.Object, _ *Env) error {
	raw, ok := obj.Get(t.path)
	if !ok {
		return failf(t.Name(), t.path.String(), "no value at path")
	}
	items, ok := raw.([]any)
	if !ok {
		return failf(t.Name(), t.path.String(), "expected an array, got %s", ctxobj.TypeName(raw))
	}

	keys := make([]any, len(items))
	for i, item := range items {
		key, err := t.sortKey(item, i)
		if err != nil {
			return err
		}
		keys[i] = key
	}

	order := make([]int, len(items))
	for i := range order {
		order[i] = i
	}
	var sortErr error
	sort.SliceStable(order, func(a, b int) bool {
		left, right := keys[order[a]], keys[order[b]]
		if t.descending {
			left, right = right, left
		}
		less, err := lessValue(left, right)
		if err != nil {
			if sortErr == nil {
				sortErr = failf(t.Name(), t.path.String(), "%v", err)
			}
			return false
		}
		return less
	})
	if sortErr != nil {
		return sortErr
	}

	sorted := make([]any, len(items))
	for i, idx := range order {
		sorted[i] = items[idx]
	}
	if err := obj.Set(t.path, sorted); err != nil {
		return failf(t.Name(), t.path.String(), "%v", err)
	}
	return nil
}

func (t *sortStable) sortKey(item any, index int) (any, error) {
	if t.key == "" {
		return item, nil
	}
	mapping, ok := item.(map[string]any)
	if !ok {
		return nil, failf(t.Name(), t.path.String(), "item %d is %s, not an object", index, ctxobj.TypeName(item))
	}
	key, present := mapping[t.key]
	if !present {
		return nil, failf(t.Name(), t.path.String(), "item %d has no %q key", index, t.key)
	}
	return key, nil
}

// lessValue compares two scalar sort keys. Numbers compare numerically,
// strings lexically, booleans false-before-true. Mixed or non-scalar
// keys are a failure.
func lessValue(a, b any) (bool, error) {
	if aNum, ok := ctxobj.AsFloat(a); ok {
		bNum, ok := ctxobj.AsFloat(b)
		if !ok {
			return false, errorf("cannot compare %s with %s", ctxobj.TypeName(a), ctxobj.TypeName(b))
		}
		return aNum < bNum, nil
	}
	switch av := a.(type) {
	case string:
		bv, ok := b.(string)
		if !ok {
			return false, errorf("cannot compare %s with %s", ctxobj.TypeName(a), ctxobj.TypeName(b))
		}
		return av < bv, nil
	case bool:
		bv, ok := b.(bool)
		if !ok {
			return false, errorf("cannot compare %s with %s", ctxobj.TypeName(a), ctxobj.TypeName(b))
		}
		return !av && bv, nil
	}
	return false, errorf("cannot sort by %s key", ctxobj.TypeName(a))
}
