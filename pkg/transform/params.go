package transform

import (
	"fmt"

	"github.com/opactx/opactx/pkg/ctxobj"
)

// Parameter decoding helpers. Factories use these to validate `with`
// blocks eagerly; a bad parameter is a configuration error.

func requiredPath(with map[string]any, key, transform string) (ctxobj.Path, error) {
	raw, ok := with[key]
	if !ok {
		return ctxobj.Path{}, fmt.Errorf("transform %s: missing required parameter %q", transform, key)
	}
	text, ok := raw.(string)
	if !ok {
		return ctxobj.Path{}, fmt.Errorf("transform %s: parameter %q must be a string path", transform, key)
	}
	path, err := ctxobj.ParsePath(text)
	if err != nil {
		return ctxobj.Path{}, fmt.Errorf("transform %s: parameter %q: %w", transform, key, err)
	}
	return path, nil
}

func requiredString(with map[string]any, key, transform string) (string, error) {
	raw, ok := with[key]
	if !ok {
		return "", fmt.Errorf("transform %s: missing required parameter %q", transform, key)
	}
	text, ok := raw.(string)
	if !ok || text == "" {
		return "", fmt.Errorf("transform %s: parameter %q must be a non-empty string", transform, key)
	}
	return text, nil
}

func optionalString(with map[string]any, key, fallback, transform string) (string, error) {
	raw, ok := with[key]
	if !ok {
		return fallback, nil
	}
	text, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("transform %s: parameter %q must be a string", transform, key)
	}
	return text, nil
}

func optionalBool(with map[string]any, key string, fallback bool, transform string) (bool, error) {
	raw, ok := with[key]
	if !ok {
		return fallback, nil
	}
	value, ok := raw.(bool)
	if !ok {
		return false, fmt.Errorf("transform %s: parameter %q must be a boolean", transform, key)
	}
	return value, nil
}

func stringList(with map[string]any, key, transform string) ([]string, error) {
	raw, ok := with[key]
	if !ok {
		return nil, fmt.Errorf("transform %s: missing required parameter %q", transform, key)
	}
	items, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("transform %s: parameter %q must be a list of strings", transform, key)
	}
	out := make([]string, len(items))
	for i, item := range items {
		text, isString := item.(string)
		if !isString {
			return nil, fmt.Errorf("transform %s: parameter %q must be a list of strings", transform, key)
		}
		out[i] = text
	}
	return out, nil
}

func errorf(format string, args ...any) error {
	return fmt.Errorf(format, args...)
}

func enumChoice(value string, allowed []string, key, transform string) error {
	for _, candidate := range allowed {
		if value == candidate {
			return nil
		}
	}
	return fmt.Errorf("transform %s: parameter %q must be one of %v, got %q", transform, key, allowed, value)
}
