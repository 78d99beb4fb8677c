package transform

import (
	"github.com/opactx/opactx/pkg/ctxobj"
)

// rename moves the value at one path to another, deleting the old
// location. A missing source is skipped by default; ignore_missing:false
// turns it into a failure.
type rename struct {
	from          ctxobj.Path
	to            ctxobj.Path
	ignoreMissing bool
}

func newRename(_ string, with map[string]any) (Transform, error) {
	from, err := requiredPath(with, "from", "rename")
	if err != nil {
		return nil, err
	}
	to, err := requiredPath(with, "to", "rename")
	if err != nil {
		return nil, err
	}
	ignoreMissing, err := optionalBool(with, "ignore_missing", true, "rename")
	if err != nil {
		return nil, err
	}
	if pathContains(from, to) || pathContains(to, from) {
		return nil, errorf("transform rename: %s and %s overlap; moving into or out of the renamed subtree would destroy the value", from, to)
	}
	return &rename{from: from, to: to, ignoreMissing: ignoreMissing}, nil
}

// pathContains reports whether inner is outer itself or lies inside the
// subtree outer addresses.
func pathContains(outer, inner ctxobj.Path) bool {
	outerSegs, innerSegs := outer.Segments(), inner.Segments()
	if len(outerSegs) > len(innerSegs) {
		return false
	}
	for i, seg := range outerSegs {
		if innerSegs[i] != seg {
			return false
		}
	}
	return true
}

func (t *rename) Name() string { return "rename" }

func (t *rename) Apply(obj *ctxobj.Object, _ *Env) error {
	value, ok := obj.Get(t.from)
	if !ok {
		if t.ignoreMissing {
			return nil
		}
		return failf(t.Name(), t.from.String(), "no value at path")
	}
	if err := obj.Set(t.to, value); err != nil {
		return failf(t.Name(), t.to.String(), "%v", err)
	}
	obj.Delete(t.from)
	return nil
}
