package transform

import (
	"github.com/opactx/opactx/pkg/ctxobj"
)

// mount writes a named source's payload at a target path. Strategy merge
// (the default) and deep both apply the merge law against any existing
// value; replace overwrites it.
type mount struct {
	source   string
	path     ctxobj.Path
	strategy string
	required bool
}

func newMount(_ string, with map[string]any) (Transform, error) {
	source, err := requiredString(with, "source", "mount")
	if err != nil {
		return nil, err
	}
	path, err := requiredPath(with, "path", "mount")
	if err != nil {
		return nil, err
	}
	strategy, err := optionalString(with, "strategy", "merge", "mount")
	if err != nil {
		return nil, err
	}
	if err := enumChoice(strategy, []string{"merge", "deep", "replace"}, "strategy", "mount"); err != nil {
		return nil, err
	}
	required, err := optionalBool(with, "required", true, "mount")
	if err != nil {
		return nil, err
	}
	return &mount{source: source, path: path, strategy: strategy, required: required}, nil
}

func (t *mount) Name() string { return "mount" }

func (t *mount) Apply(obj *ctxobj.Object, env *Env) error {
	payload, ok := env.Sources[t.source]
	if !ok {
		if !t.required {
			return nil
		}
		return failf(t.Name(), t.path.String(), "source %q has no fetched payload", t.source)
	}

	if t.strategy == "replace" {
		if err := obj.Set(t.path, ctxobj.DeepCopy(payload)); err != nil {
			return failf(t.Name(), t.path.String(), "%v", err)
		}
		return nil
	}
	existing, _ := obj.Get(t.path)
	if err := obj.Set(t.path, ctxobj.Merge(existing, payload)); err != nil {
		return failf(t.Name(), t.path.String(), "%v", err)
	}
	return nil
}
