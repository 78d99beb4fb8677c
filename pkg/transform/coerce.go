package transform

import (
	"strconv"
	"strings"
	"time"

	"github.com/opactx/opactx/pkg/ctxobj"
)

// coerce converts the scalar at a path into a declared type. Timestamps
// normalize to RFC 3339 in UTC with a trailing Z; date-only inputs become
// midnight UTC and numeric inputs are read as epoch seconds.
type coerce struct {
	path   ctxobj.Path
	target string
}

func newCoerce(_ string, with map[string]any) (Transform, error) {
	path, err := requiredPath(with, "path", "coerce")
	if err != nil {
		return nil, err
	}
	target, err := requiredString(with, "type", "coerce")
	if err != nil {
		return nil, err
	}
	if err := enumChoice(target, []string{"bool", "int", "float", "string", "timestamp"}, "type", "coerce"); err != nil {
		return nil, err
	}
	return &coerce{path: path, target: target}, nil
}

func (t *coerce) Name() string { return "coerce" }

func (t *coerce) Apply(obj *ctxobj.Object, _ *Env) error {
	value, ok := obj.Get(t.path)
	if !ok {
		return failf(t.Name(), t.path.String(), "no value at path")
	}
	converted, err := coerceValue(value, t.target)
	if err != nil {
		return failf(t.Name(), t.path.String(), "%v", err)
	}
	if err := obj.Set(t.path, converted); err != nil {
		return failf(t.Name(), t.path.String(), "%v", err)
	}
	return nil
}

func coerceValue(value any, target string) (any, error) {
	switch target {
	case "bool":
		return coerceBool(value)
	case "int":
		return coerceInt(value)
	case "float":
		return coerceFloat(value)
	case "string":
		return coerceString(value)
	case "timestamp":
		return coerceTimestamp(value)
	}
	return nil, errorf("unsupported type %q", target)
}

func coerceBool(value any) (any, error) {
	switch v := value.(type) {
	case bool:
		return v, nil
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "true", "1":
			return true, nil
		case "false", "0":
			return false, nil
		}
		return nil, errorf("cannot coerce %q to bool", v)
	}
	return nil, errorf("cannot coerce %s to bool", ctxobj.TypeName(value))
}

func coerceInt(value any) (any, error) {
	if n, ok := ctxobj.AsInt(value); ok {
		return n, nil
	}
	if text, ok := value.(string); ok {
		n, err := strconv.ParseInt(strings.TrimSpace(text), 10, 64)
		if err != nil {
			return nil, errorf("cannot coerce %q to int", text)
		}
		return n, nil
	}
	return nil, errorf("cannot coerce %s to int", ctxobj.TypeName(value))
}

func coerceFloat(value any) (any, error) {
	if n, ok := ctxobj.AsFloat(value); ok {
		return n, nil
	}
	if text, ok := value.(string); ok {
		n, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
		if err != nil {
			return nil, errorf("cannot coerce %q to float", text)
		}
		return n, nil
	}
	return nil, errorf("cannot coerce %s to float", ctxobj.TypeName(value))
}

func coerceString(value any) (any, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case bool:
		return strconv.FormatBool(v), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case int:
		return strconv.Itoa(v), nil
	case float64:
		if n, ok := ctxobj.AsInt(v); ok {
			return strconv.FormatInt(n, 10), nil
		}
		return strconv.FormatFloat(v, 'g', -1, 64), nil
	}
	return nil, errorf("cannot coerce %s to string", ctxobj.TypeName(value))
}

// timestampLayouts are the accepted textual forms, tried in order.
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func coerceTimestamp(value any) (any, error) {
	if n, ok := ctxobj.AsInt(value); ok {
		return time.Unix(n, 0).UTC().Format(time.RFC3339), nil
	}
	text, ok := value.(string)
	if !ok {
		return nil, errorf("cannot coerce %s to timestamp", ctxobj.TypeName(value))
	}
	trimmed := strings.TrimSpace(text)
	for _, layout := range timestampLayouts {
		parsed, err := time.Parse(layout, trimmed)
		if err == nil {
			return parsed.UTC().Format(time.RFC3339), nil
		}
	}
	return nil, errorf("cannot coerce %q to timestamp", text)
}
