package schema

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Keywords the checker understands. Anything else outside the x- extension
// namespace is rejected so a malformed compiler change cannot slip an
// unknown keyword into the artifact unnoticed.
var knownSchemaKeys = map[string]bool{
	"$schema": true, "$id": true, "$ref": true, "$defs": true, "definitions": true,
	"type": true, "enum": true, "const": true,
	"title": true, "description": true, "default": true, "examples": true,
	"deprecated": true, "format": true,
	"properties": true, "required": true, "additionalProperties": true,
	"items": true, "minItems": true, "maxItems": true, "uniqueItems": true,
	"minLength": true, "maxLength": true, "pattern": true,
	"minimum": true, "maximum": true,
	"allOf": true, "anyOf": true, "oneOf": true, "not": true,
	"propertyNames": true,
}

// CheckSchema verifies that a compiled (or directly supplied) schema is a
// well-formed draft 2020-12 document for the keyword subset this system
// emits and validates with. All shape violations found are returned.
func CheckSchema(schema map[string]any) []error {
	c := &schemaChecker{root: schema}
	c.check(schema, "#")
	return c.errs
}

type schemaChecker struct {
	root map[string]any
	errs []error
}

func (c *schemaChecker) addf(path, format string, args ...any) {
	c.errs = append(c.errs, structuralf(path, format, args...))
}

func (c *schemaChecker) check(schema any, path string) {
	switch s := schema.(type) {
	case bool:
		return
	case map[string]any:
		c.checkObject(s, path)
	default:
		c.addf(path, "schema must be an object or boolean")
	}
}

func (c *schemaChecker) checkObject(schema map[string]any, path string) {
	keys := make([]string, 0, len(schema))
	for key := range schema {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		if !knownSchemaKeys[key] && !strings.HasPrefix(key, "x-") {
			c.addf(path, "unknown schema keyword %q", key)
		}
	}

	if ref, ok := schema["$ref"]; ok {
		c.checkRef(ref, path)
	}
	if typeValue, ok := schema["type"]; ok {
		c.checkType(typeValue, path)
	}
	if enum, ok := schema["enum"]; ok {
		if values, isList := enum.([]any); !isList || len(values) == 0 {
			c.addf(path+"/enum", "must be a non-empty array")
		}
	}
	if properties, ok := schema["properties"]; ok {
		props, isMap := properties.(map[string]any)
		if !isMap {
			c.addf(path+"/properties", "must be an object")
		} else {
			names := make([]string, 0, len(props))
			for name := range props {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				c.check(props[name], path+"/properties/"+name)
			}
		}
	}
	if required, ok := schema["required"]; ok {
		c.checkRequired(required, path)
	}
	if additional, ok := schema["additionalProperties"]; ok {
		switch additional.(type) {
		case bool:
		case map[string]any:
			c.check(additional, path+"/additionalProperties")
		default:
			c.addf(path+"/additionalProperties", "must be a boolean or a schema")
		}
	}
	if items, ok := schema["items"]; ok {
		c.check(items, path+"/items")
	}
	for _, key := range []string{"minItems", "maxItems", "minLength", "maxLength"} {
		if bound, ok := schema[key]; ok {
			if value, isInt := asCheckedInt(bound); !isInt || value < 0 {
				c.addf(path+"/"+key, "must be a non-negative integer")
			}
		}
	}
	for _, key := range []string{"minimum", "maximum"} {
		if bound, ok := schema[key]; ok {
			if !isNumericLiteral(bound) {
				c.addf(path+"/"+key, "must be a number")
			}
		}
	}
	if pattern, ok := schema["pattern"]; ok {
		text, isString := pattern.(string)
		if !isString {
			c.addf(path+"/pattern", "must be a string")
		} else if _, err := regexp.Compile(text); err != nil {
			c.addf(path+"/pattern", "invalid regular expression: %v", err)
		}
	}
	for _, key := range []string{"allOf", "anyOf", "oneOf"} {
		if combinator, ok := schema[key]; ok {
			items, isList := combinator.([]any)
			if !isList || len(items) == 0 {
				c.addf(path+"/"+key, "must be a non-empty array of schemas")
				continue
			}
			for i, item := range items {
				c.check(item, path+"/"+key+"/"+strconv.Itoa(i))
			}
		}
	}
	if not, ok := schema["not"]; ok {
		c.check(not, path+"/not")
	}
	for _, key := range []string{"$defs", "definitions"} {
		if defs, ok := schema[key]; ok {
			defsMap, isMap := defs.(map[string]any)
			if !isMap {
				c.addf(path+"/"+key, "must be an object")
				continue
			}
			names := make([]string, 0, len(defsMap))
			for name := range defsMap {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				c.check(defsMap[name], path+"/"+key+"/"+name)
			}
		}
	}
}

func (c *schemaChecker) checkRef(ref any, path string) {
	text, isString := ref.(string)
	if !isString {
		c.addf(path+"/$ref", "must be a string")
		return
	}
	name, err := refTargetName(text)
	if err != nil {
		c.addf(path+"/$ref", "%s", err.Error())
		return
	}
	if resolveDefinition(c.root, name) == nil {
		c.addf(path+"/$ref", "unresolved reference: %s", text)
	}
}

func (c *schemaChecker) checkType(typeValue any, path string) {
	switch t := typeValue.(type) {
	case string:
		if !baseTypes[t] {
			c.addf(path+"/type", "unknown type %q", t)
		}
	case []any:
		for _, item := range t {
			name, isString := item.(string)
			if !isString || !baseTypes[name] {
				c.addf(path+"/type", "unknown type %v", item)
			}
		}
	default:
		c.addf(path+"/type", "must be a string or array of strings")
	}
}

func (c *schemaChecker) checkRequired(required any, path string) {
	items, isList := required.([]any)
	if !isList {
		c.addf(path+"/required", "must be an array of strings")
		return
	}
	seen := map[string]bool{}
	for _, item := range items {
		name, isString := item.(string)
		if !isString {
			c.addf(path+"/required", "must be an array of strings")
			return
		}
		if seen[name] {
			c.addf(path+"/required", "duplicate entry %q", name)
		}
		seen[name] = true
	}
}

// resolveDefinition looks a definition name up under $defs then
// definitions at the document root.
func resolveDefinition(root map[string]any, name string) any {
	for _, key := range []string{"$defs", "definitions"} {
		if defs, ok := root[key].(map[string]any); ok {
			if def, ok := defs[name]; ok {
				return def
			}
		}
	}
	return nil
}

func asCheckedInt(value any) (int64, bool) {
	switch v := value.(type) {
	case int:
		return int64(v), true
	case int64:
		return v, true
	case uint64:
		return int64(v), true
	case float64:
		if v == float64(int64(v)) {
			return int64(v), true
		}
	}
	return 0, false
}
