package transform

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.starlark.net/starlark"

	"github.com/opactx/opactx/pkg/ctxobj"
)

// starlarkPlugin runs a project-local Starlark script as a transform.
// The script must define apply(value, params) and return the new context
// payload as a dict. Scripts run sandboxed: no filesystem, no network,
// no print output.
type starlarkPlugin struct {
	name   string
	script string
	params map[string]any
}

func newStarlark(name, projectDir string, with map[string]any) (Transform, error) {
	scriptPath := name
	if raw, ok := with["script"]; ok {
		text, isString := raw.(string)
		if !isString || text == "" {
			return nil, fmt.Errorf("transform %s: parameter %q must be a non-empty string", name, "script")
		}
		scriptPath = text
	}
	if !strings.HasSuffix(scriptPath, ".star") {
		scriptPath += ".star"
	}
	if !filepath.IsAbs(scriptPath) {
		scriptPath = filepath.Join(projectDir, scriptPath)
	}
	script, err := os.ReadFile(scriptPath)
	if err != nil {
		return nil, fmt.Errorf("transform %s: reading script: %w", name, err)
	}
	params := map[string]any{}
	for key, value := range with {
		if key == "script" {
			continue
		}
		params[key] = value
	}
	return &starlarkPlugin{name: name, script: string(script), params: params}, nil
}

func (t *starlarkPlugin) Name() string { return t.name }

func (t *starlarkPlugin) Apply(obj *ctxobj.Object, _ *Env) error {
	thread := &starlark.Thread{
		Name:  t.name,
		Print: func(*starlark.Thread, string) {},
	}

	globals, err := starlark.ExecFile(thread, t.name+".star", t.script, starlark.StringDict{})
	if err != nil {
		return failf(t.name, "", "script failed: %v", err)
	}
	applyFn, ok := globals["apply"]
	if !ok {
		return failf(t.name, "", "script does not define apply(value, params)")
	}

	value, err := toStarlarkValue(obj.Value())
	if err != nil {
		return failf(t.name, "", "converting context: %v", err)
	}
	params, err := toStarlarkValue(t.params)
	if err != nil {
		return failf(t.name, "", "converting params: %v", err)
	}

	result, err := starlark.Call(thread, applyFn, starlark.Tuple{value, params}, nil)
	if err != nil {
		return failf(t.name, "", "apply failed: %v", err)
	}
	returned, err := fromStarlarkValue(result)
	if err != nil {
		return failf(t.name, "", "converting result: %v", err)
	}
	payload, ok := returned.(map[string]any)
	if !ok {
		return failf(t.name, "", "apply must return an object, got %s", ctxobj.TypeName(returned))
	}
	obj.Replace(payload)
	return nil
}

// toStarlarkValue converts a JSON-shaped Go value into a Starlark value.
func toStarlarkValue(v any) (starlark.Value, error) {
	if v == nil {
		return starlark.None, nil
	}
	switch val := v.(type) {
	case bool:
		return starlark.Bool(val), nil
	case int:
		return starlark.MakeInt(val), nil
	case int64:
		return starlark.MakeInt64(val), nil
	case float64:
		return starlark.Float(val), nil
	case string:
		return starlark.String(val), nil
	case []any:
		list := make([]starlark.Value, len(val))
		for i, item := range val {
			converted, err := toStarlarkValue(item)
			if err != nil {
				return nil, err
			}
			list[i] = converted
		}
		return starlark.NewList(list), nil
	case map[string]any:
		dict := starlark.NewDict(len(val))
		for key, item := range val {
			converted, err := toStarlarkValue(item)
			if err != nil {
				return nil, err
			}
			if err := dict.SetKey(starlark.String(key), converted); err != nil {
				return nil, err
			}
		}
		return dict, nil
	default:
		return nil, fmt.Errorf("unsupported type: %T", v)
	}
}

// fromStarlarkValue converts a Starlark value back into a JSON-shaped Go
// value.
func fromStarlarkValue(v starlark.Value) (any, error) {
	switch val := v.(type) {
	case starlark.NoneType:
		return nil, nil
	case starlark.Bool:
		return bool(val), nil
	case starlark.Int:
		i, ok := val.Int64()
		if !ok {
			return nil, fmt.Errorf("integer too large")
		}
		return i, nil
	case starlark.Float:
		return float64(val), nil
	case starlark.String:
		return string(val), nil
	case *starlark.List:
		list := make([]any, val.Len())
		for i := 0; i < val.Len(); i++ {
			item, err := fromStarlarkValue(val.Index(i))
			if err != nil {
				return nil, err
			}
			list[i] = item
		}
		return list, nil
	case starlark.Tuple:
		list := make([]any, len(val))
		for i, item := range val {
			converted, err := fromStarlarkValue(item)
			if err != nil {
				return nil, err
			}
			list[i] = converted
		}
		return list, nil
	case *starlark.Dict:
		dict := make(map[string]any, val.Len())
		for _, item := range val.Items() {
			key, ok := item[0].(starlark.String)
			if !ok {
				return nil, fmt.Errorf("dict key must be a string")
			}
			value, err := fromStarlarkValue(item[1])
			if err != nil {
				return nil, err
			}
			dict[string(key)] = value
		}
		return dict, nil
	default:
		return nil, fmt.Errorf("unsupported starlark type: %s", v.Type())
	}
}
