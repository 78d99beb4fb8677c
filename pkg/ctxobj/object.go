package ctxobj

import (
	"fmt"
)

// Object is the mutable context tree. The payload is everything below the
// "context" root; Value returns it as a plain map for serialization.
type Object struct {
	root map[string]any
}

// New returns an empty context object.
func New() *Object {
	return &Object{root: map[string]any{}}
}

// FromValue wraps an existing payload map. The map is used as-is, not
// copied; callers that need isolation should pass DeepCopy output.
func FromValue(value map[string]any) *Object {
	if value == nil {
		value = map[string]any{}
	}
	return &Object{root: value}
}

// Value returns the payload map.
func (o *Object) Value() map[string]any {
	return o.root
}

// Replace swaps the whole payload for a new one.
func (o *Object) Replace(value map[string]any) {
	if value == nil {
		value = map[string]any{}
	}
	o.root = value
}

// Get returns the value at path and whether it exists.
func (o *Object) Get(path Path) (any, bool) {
	var current any = o.root
	for _, segment := range path.Segments() {
		m, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = m[segment]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

// Exists reports whether a value is present at path.
func (o *Object) Exists(path Path) bool {
	_, ok := o.Get(path)
	return ok
}

// Set writes value at path, creating intermediate objects as needed.
// Setting the root path requires an object value. Traversing through a
// non-object value is an error.
func (o *Object) Set(path Path, value any) error {
	if path.IsRoot() {
		m, ok := value.(map[string]any)
		if !ok {
			return fmt.Errorf("%s: root value must be an object", path)
		}
		o.root = m
		return nil
	}
	segments := path.Segments()
	current := o.root
	for i, segment := range segments[:len(segments)-1] {
		next, ok := current[segment]
		if !ok {
			child := map[string]any{}
			current[segment] = child
			current = child
			continue
		}
		m, ok := next.(map[string]any)
		if !ok {
			return fmt.Errorf("%s: segment %q is not an object", path, segments[i])
		}
		current = m
	}
	current[segments[len(segments)-1]] = value
	return nil
}

// Delete removes the value at path and reports whether it was present.
func (o *Object) Delete(path Path) bool {
	if path.IsRoot() {
		o.root = map[string]any{}
		return true
	}
	segments := path.Segments()
	current := o.root
	for _, segment := range segments[:len(segments)-1] {
		next, ok := current[segment].(map[string]any)
		if !ok {
			return false
		}
		current = next
	}
	last := segments[len(segments)-1]
	if _, ok := current[last]; !ok {
		return false
	}
	delete(current, last)
	return true
}
