package schema

import (
	"regexp"
	"sort"
	"strconv"
	"unicode/utf8"

	"github.com/opactx/opactx/pkg/ctxobj"
)

// maxRefDepth bounds $ref chains during data validation. Compiled schemas
// are acyclic by construction, but directly supplied schemas are not.
const maxRefDepth = 256

// ValidateData checks a JSON-compatible value against a compiled or
// directly supplied schema with draft 2020-12 semantics for the supported
// keyword subset. Extension keys (x-*) and annotations are ignored.
// Errors carry JSON pointer paths into the value and are returned sorted
// by path for deterministic reporting.
func ValidateData(schema map[string]any, value any) []error {
	v := &dataValidator{root: schema}
	v.validate(schema, value, "", 0)
	sort.SliceStable(v.errs, func(i, j int) bool {
		a := v.errs[i].(*ValidationError)
		b := v.errs[j].(*ValidationError)
		if a.Path != b.Path {
			return a.Path < b.Path
		}
		return a.Message < b.Message
	})
	return v.errs
}

type dataValidator struct {
	root map[string]any
	errs []error
}

func (v *dataValidator) addf(path, format string, args ...any) {
	if path == "" {
		path = "/"
	}
	v.errs = append(v.errs, validationf(path, format, args...))
}

func (v *dataValidator) validate(schema any, value any, path string, depth int) {
	switch s := schema.(type) {
	case bool:
		if !s {
			v.addf(path, "schema disallows any value")
		}
		return
	case map[string]any:
		v.validateObjectSchema(s, value, path, depth)
	default:
		v.addf(path, "invalid schema node")
	}
}

func (v *dataValidator) validateObjectSchema(schema map[string]any, value any, path string, depth int) {
	if ref, ok := schema["$ref"].(string); ok {
		if depth >= maxRefDepth {
			v.addf(path, "reference chain too deep")
			return
		}
		name, err := refTargetName(ref)
		if err != nil {
			v.addf(path, "unresolvable reference %q", ref)
			return
		}
		target := resolveDefinition(v.root, name)
		if target == nil {
			v.addf(path, "unresolved reference %q", ref)
			return
		}
		v.validate(target, value, path, depth+1)
		return
	}

	if allOf, ok := schema["allOf"].([]any); ok {
		for _, sub := range allOf {
			v.validate(sub, value, path, depth+1)
		}
	}
	if anyOf, ok := schema["anyOf"].([]any); ok {
		v.validateAnyOf(anyOf, value, path, depth)
	}

	if typeValue, ok := schema["type"]; ok {
		if !typeMatches(typeValue, value) {
			v.addf(path, "expected type %s, got %s", typeLabel(typeValue), ctxobj.TypeName(value))
			return
		}
	}
	if enum, ok := schema["enum"].([]any); ok {
		if !containsValue(enum, value) {
			v.addf(path, "value is not one of the allowed enum values")
		}
	}
	if constValue, ok := schema["const"]; ok {
		if !jsonEqual(constValue, value) {
			v.addf(path, "value does not equal the required constant")
		}
	}

	switch typed := value.(type) {
	case map[string]any:
		v.validateMap(schema, typed, path, depth)
	case []any:
		v.validateArray(schema, typed, path, depth)
	case string:
		v.validateString(schema, typed, path)
	default:
		if ctxobj.IsNumber(value) {
			v.validateNumber(schema, value, path)
		}
	}
}

func (v *dataValidator) validateAnyOf(anyOf []any, value any, path string, depth int) {
	for _, sub := range anyOf {
		probe := &dataValidator{root: v.root}
		probe.validate(sub, value, path, depth+1)
		if len(probe.errs) == 0 {
			return
		}
	}
	v.addf(path, "value matches none of the allowed schemas")
}

func (v *dataValidator) validateMap(schema map[string]any, value map[string]any, path string, depth int) {
	properties, _ := schema["properties"].(map[string]any)

	if required, ok := schema["required"].([]any); ok {
		for _, item := range required {
			name, isString := item.(string)
			if !isString {
				continue
			}
			if _, present := value[name]; !present {
				v.addf(path+"/"+name, "required property is missing")
			}
		}
	}

	keys := make([]string, 0, len(value))
	for key := range value {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	additional, hasAdditional := schema["additionalProperties"]
	for _, key := range keys {
		childPath := path + "/" + key
		if properties != nil {
			if propSchema, declared := properties[key]; declared {
				v.validate(propSchema, value[key], childPath, depth)
				continue
			}
		}
		if !hasAdditional {
			continue
		}
		switch a := additional.(type) {
		case bool:
			if !a {
				v.addf(childPath, "additional property is not allowed")
			}
		default:
			v.validate(additional, value[key], childPath, depth)
		}
	}
}

func (v *dataValidator) validateArray(schema map[string]any, value []any, path string, depth int) {
	if items, ok := schema["items"]; ok {
		for i, item := range value {
			v.validate(items, item, path+"/"+strconv.Itoa(i), depth)
		}
	}
	if minItems, ok := asCheckedInt(schema["minItems"]); ok && int64(len(value)) < minItems {
		v.addf(path, "array has %d items, fewer than the minimum %d", len(value), minItems)
	}
	if maxItems, ok := asCheckedInt(schema["maxItems"]); ok && int64(len(value)) > maxItems {
		v.addf(path, "array has %d items, more than the maximum %d", len(value), maxItems)
	}
}

func (v *dataValidator) validateString(schema map[string]any, value string, path string) {
	length := int64(utf8.RuneCountInString(value))
	if minLength, ok := asCheckedInt(schema["minLength"]); ok && length < minLength {
		v.addf(path, "string is shorter than the minimum length %d", minLength)
	}
	if maxLength, ok := asCheckedInt(schema["maxLength"]); ok && length > maxLength {
		v.addf(path, "string is longer than the maximum length %d", maxLength)
	}
	if pattern, ok := schema["pattern"].(string); ok {
		re, err := regexp.Compile(pattern)
		if err != nil {
			v.addf(path, "schema pattern does not compile: %v", err)
			return
		}
		if !re.MatchString(value) {
			v.addf(path, "string does not match pattern %q", pattern)
		}
	}
}

func (v *dataValidator) validateNumber(schema map[string]any, value any, path string) {
	number, _ := ctxobj.AsFloat(value)
	if minimum, ok := schema["minimum"]; ok {
		if bound, isNumber := ctxobj.AsFloat(minimum); isNumber && number < bound {
			v.addf(path, "value %v is less than the minimum %v", value, minimum)
		}
	}
	if maximum, ok := schema["maximum"]; ok {
		if bound, isNumber := ctxobj.AsFloat(maximum); isNumber && number > bound {
			v.addf(path, "value %v is greater than the maximum %v", value, maximum)
		}
	}
}

// typeMatches applies JSON Schema type semantics: "integer" accepts whole
// floats, "number" accepts any numeric value.
func typeMatches(typeValue any, value any) bool {
	switch t := typeValue.(type) {
	case string:
		return singleTypeMatches(t, value)
	case []any:
		for _, item := range t {
			if name, ok := item.(string); ok && singleTypeMatches(name, value) {
				return true
			}
		}
		return false
	default:
		return true
	}
}

func singleTypeMatches(typeName string, value any) bool {
	switch typeName {
	case "null":
		return value == nil
	case "object":
		_, ok := value.(map[string]any)
		return ok
	case "array":
		_, ok := value.([]any)
		return ok
	case "string":
		_, ok := value.(string)
		return ok
	case "boolean":
		_, ok := value.(bool)
		return ok
	case "number":
		_, isBool := value.(bool)
		return !isBool && ctxobj.IsNumber(value)
	case "integer":
		_, isBool := value.(bool)
		return !isBool && ctxobj.IsInteger(value)
	default:
		return false
	}
}

func typeLabel(typeValue any) string {
	switch t := typeValue.(type) {
	case string:
		return t
	case []any:
		label := ""
		for i, item := range t {
			if i > 0 {
				label += " or "
			}
			if name, ok := item.(string); ok {
				label += name
			}
		}
		return label
	default:
		return "unknown"
	}
}

func containsValue(values []any, value any) bool {
	for _, candidate := range values {
		if jsonEqual(candidate, value) {
			return true
		}
	}
	return false
}

// jsonEqual compares two JSON-compatible values, treating all numeric Go
// representations of the same number as equal.
func jsonEqual(a, b any) bool {
	if aNum, ok := ctxobj.AsFloat(a); ok {
		bNum, bOK := ctxobj.AsFloat(b)
		return bOK && aNum == bNum
	}
	switch av := a.(type) {
	case map[string]any:
		bv, ok := b.(map[string]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		for key, item := range av {
			other, present := bv[key]
			if !present || !jsonEqual(item, other) {
				return false
			}
		}
		return true
	case []any:
		bv, ok := b.([]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i, item := range av {
			if !jsonEqual(item, bv[i]) {
				return false
			}
		}
		return true
	default:
		return a == b
	}
}
