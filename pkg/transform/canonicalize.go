package transform

import (
	"github.com/opactx/opactx/pkg/ctxobj"
)

// canonicalize resets the context to its canonical shape: standards and
// exceptions copied verbatim from the loaded intent, sources copied
// verbatim from the fetched payloads. It is a full overwrite, not a
// merge, so it discards anything earlier transforms left behind.
type canonicalize struct{}

func newCanonicalize(_ string, with map[string]any) (Transform, error) {
	if len(with) != 0 {
		return nil, errorf("transform canonicalize: takes no parameters")
	}
	return &canonicalize{}, nil
}

func (t *canonicalize) Name() string { return "canonicalize" }

func (t *canonicalize) Apply(obj *ctxobj.Object, env *Env) error {
	standards, ok := env.Intent["standards"]
	if !ok {
		return failf(t.Name(), "", "intent has no standards mapping")
	}
	exceptions, ok := env.Intent["exceptions"]
	if !ok {
		exceptions = map[string]any{}
	}
	sources := make(map[string]any, len(env.Sources))
	for name, payload := range env.Sources {
		sources[name] = ctxobj.DeepCopy(payload)
	}
	obj.Replace(map[string]any{
		"standards":  ctxobj.DeepCopy(standards),
		"exceptions": ctxobj.DeepCopy(exceptions),
		"sources":    sources,
	})
	return nil
}
