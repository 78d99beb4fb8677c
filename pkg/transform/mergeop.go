package transform

import (
	"fmt"
	"strings"

	"github.com/opactx/opactx/pkg/ctxobj"
)

// mergeEntry is one input to the merge transform: either a path reference
// into the context or a literal value. A string starting with the context
// namespace is a path reference; any other value is a literal.
type mergeEntry struct {
	path    ctxobj.Path
	isPath  bool
	literal any
}

// mergeOp combines an ordered list of entries into a target path with the
// merge law; later entries win. include_existing seeds the merge with the
// current value at the target.
type mergeOp struct {
	target          ctxobj.Path
	entries         []mergeEntry
	includeExisting bool
	ignoreMissing   bool
}

func newMerge(_ string, with map[string]any) (Transform, error) {
	target, err := requiredPath(with, "target", "merge")
	if err != nil {
		return nil, err
	}
	raw, ok := with["sources"].([]any)
	if !ok || len(raw) == 0 {
		return nil, fmt.Errorf("transform merge: parameter %q must be a non-empty list", "sources")
	}
	entries := make([]mergeEntry, 0, len(raw))
	for i, item := range raw {
		if text, isString := item.(string); isString && strings.HasPrefix(text, ctxobj.RootNamespace+".") {
			path, err := ctxobj.ParsePath(text)
			if err != nil {
				return nil, fmt.Errorf("transform merge: sources[%d]: %w", i, err)
			}
			entries = append(entries, mergeEntry{path: path, isPath: true})
			continue
		}
		entries = append(entries, mergeEntry{literal: item})
	}
	includeExisting, err := optionalBool(with, "include_existing", false, "merge")
	if err != nil {
		return nil, err
	}
	ignoreMissing, err := optionalBool(with, "ignore_missing", false, "merge")
	if err != nil {
		return nil, err
	}
	return &mergeOp{
		target:          target,
		entries:         entries,
		includeExisting: includeExisting,
		ignoreMissing:   ignoreMissing,
	}, nil
}

func (t *mergeOp) Name() string { return "merge" }

func (t *mergeOp) Apply(obj *ctxobj.Object, _ *Env) error {
	var acc any
	seeded := false
	if t.includeExisting {
		if existing, ok := obj.Get(t.target); ok {
			acc = existing
			seeded = true
		}
	}
	for _, entry := range t.entries {
		value := entry.literal
		if entry.isPath {
			resolved, ok := obj.Get(entry.path)
			if !ok {
				if t.ignoreMissing {
					continue
				}
				return failf(t.Name(), entry.path.String(), "path reference has no value")
			}
			value = resolved
		}
		if !seeded {
			acc = ctxobj.DeepCopy(value)
			seeded = true
			continue
		}
		acc = ctxobj.Merge(acc, value)
	}
	if !seeded {
		return nil
	}
	if err := obj.Set(t.target, acc); err != nil {
		return failf(t.Name(), t.target.String(), "%v", err)
	}
	return nil
}
