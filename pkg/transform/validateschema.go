package transform

import (
	"strings"

	"github.com/opactx/opactx/pkg/ctxobj"
	"github.com/opactx/opactx/pkg/schema"
)

// validateSchema is a mid-pipeline checkpoint: it validates the whole
// context object against the compiled schema and mutates nothing.
type validateSchema struct{}

func newValidateSchema(_ string, with map[string]any) (Transform, error) {
	if len(with) != 0 {
		return nil, errorf("transform validate_schema: takes no parameters")
	}
	return &validateSchema{}, nil
}

func (t *validateSchema) Name() string { return "validate_schema" }

func (t *validateSchema) Apply(obj *ctxobj.Object, env *Env) error {
	if env.Schema == nil {
		return failf(t.Name(), "", "no compiled schema available")
	}
	errs := schema.ValidateData(env.Schema, obj.Value())
	if len(errs) == 0 {
		return nil
	}
	lines := make([]string, len(errs))
	for i, err := range errs {
		lines[i] = err.Error()
	}
	return failf(t.Name(), "", "context does not satisfy schema:\n  %s", strings.Join(lines, "\n  "))
}
