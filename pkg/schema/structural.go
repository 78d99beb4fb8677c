package schema

import (
	"sort"
	"strings"
)

var topLevelKeys = map[string]bool{
	"dsl":         true,
	"id":          true,
	"title":       true,
	"description": true,
	"root":        true,
	"strict":      true,
	"schema":      true,
	"definitions": true,
}

var topLevelRequired = []string{"dsl", "id", "title", "description", "root", "schema"}

var commonNodeKeys = map[string]bool{
	"type":        true,
	"description": true,
	"nullable":    true,
	"default":     true,
	"examples":    true,
	"deprecated":  true,
	"tags":        true,
}

// ValidateDocument checks a parsed document against the fixed meta-shape:
// required and allowed top-level keys, node families and their keyword
// sets, keyword types. It resolves no references and checks no value
// typing; that is Compile's job. All shape violations found are returned.
func ValidateDocument(doc *Document) []error {
	v := &structuralPass{}
	v.checkTopLevel(doc.root)
	return v.errs
}

type structuralPass struct {
	errs []error
}

func (v *structuralPass) addf(path, format string, args ...any) {
	v.errs = append(v.errs, structuralf(path, format, args...))
}

func (v *structuralPass) checkTopLevel(root *node) {
	v.rejectUnknownKeys(root, topLevelKeys, "root")
	for _, key := range topLevelRequired {
		if !root.has(key) {
			v.addf("root", "missing required key %q", key)
		}
	}

	if dsl, ok := root.get("dsl"); ok {
		if s, isString := dsl.stringValue(); !isString || s != DSLVersion {
			v.addf("root.dsl", "unsupported schema DSL version; expected %q", DSLVersion)
		}
	}
	for _, key := range []string{"id", "title", "description", "root"} {
		if child, ok := root.get(key); ok {
			if s, isString := child.stringValue(); !isString || strings.TrimSpace(s) == "" {
				v.addf("root."+key, "must be a non-empty string")
			}
		}
	}
	if strict, ok := root.get("strict"); ok {
		if _, isBool := strict.boolValue(); !isBool {
			v.addf("root.strict", "must be a boolean")
		}
	}

	if schemaNode, ok := root.get("schema"); ok {
		if schemaNode.kind != kindMapping {
			v.addf("root.schema", "must be a mapping")
		} else {
			typeNode, hasType := schemaNode.get("type")
			typeName, isString := "", false
			if hasType {
				typeName, isString = typeNode.stringValue()
			}
			if !hasType || !isString || typeName != "object" {
				v.addf("root.schema.type", "must be %q", "object")
			}
			v.checkNode(schemaNode, "schema", false)
		}
	}

	definitions, ok := root.get("definitions")
	if !ok {
		return
	}
	if definitions.kind != kindMapping {
		v.addf("root.definitions", "must be a mapping")
		return
	}
	for _, name := range definitions.keys {
		if strings.TrimSpace(name) == "" {
			v.addf("root.definitions", "definition names must be non-empty strings")
			continue
		}
		body := definitions.fields[name]
		if body.kind != kindMapping {
			v.addf("definitions."+name, "must be a mapping")
			continue
		}
		v.checkNode(body, "definitions."+name, false)
	}
}

// checkNode validates one schema node's shape. fieldContext is true for
// nodes appearing as object fields, where "required" is additionally
// allowed.
func (v *structuralPass) checkNode(n *node, path string, fieldContext bool) {
	if n.kind != kindMapping {
		v.addf(path, "must be a mapping")
		return
	}

	if n.has("$ref") {
		v.checkRefNode(n, path, fieldContext)
		return
	}

	typeNode, ok := n.get("type")
	if !ok {
		v.addf(path, "must define either %q or %q", "type", "$ref")
		return
	}
	typeName, isString := typeNode.stringValue()
	if !isString || !baseTypes[typeName] {
		v.addf(path+".type", "unsupported type")
		return
	}

	allowed := make(map[string]bool, len(commonNodeKeys)+4)
	for key := range commonNodeKeys {
		allowed[key] = true
	}
	if fieldContext {
		allowed["required"] = true
	}
	switch typeName {
	case "object":
		allowed["fields"] = true
		allowed["strict"] = true
		allowed["allow_empty_object"] = true
	case "array":
		allowed["items"] = true
		allowed["min_items"] = true
		allowed["max_items"] = true
		allowed["unique_by"] = true
	case "string":
		allowed["min_len"] = true
		allowed["max_len"] = true
		allowed["pattern"] = true
		allowed["enum"] = true
		allowed["format"] = true
	case "number", "integer":
		allowed["min"] = true
		allowed["max"] = true
		allowed["enum"] = true
	case "boolean", "null":
		allowed["enum"] = true
	}
	v.rejectUnknownKeys(n, allowed, path)
	v.checkCommonKeywords(n, path)

	switch typeName {
	case "object":
		v.checkObjectShape(n, path)
	case "array":
		v.checkArrayShape(n, path)
	case "string":
		v.checkStringShape(n, path)
	case "number", "integer":
		v.checkNumericShape(n, path)
	case "boolean", "null":
		v.requireList(n, "enum", path)
	}
}

func (v *structuralPass) checkRefNode(n *node, path string, fieldContext bool) {
	allowed := map[string]bool{"$ref": true, "description": true, "deprecated": true}
	if fieldContext {
		allowed["required"] = true
	}
	v.rejectUnknownKeys(n, allowed, path)

	ref, _ := n.get("$ref")
	refText, isString := ref.stringValue()
	if !isString {
		v.addf(path+".$ref", "must be a string")
		return
	}
	if _, err := refTargetName(refText); err != nil {
		v.addf(path+".$ref", "%s", err.Error())
	}
	v.requireString(n, "description", path)
	v.requireBool(n, "deprecated", path)
	v.requireBool(n, "required", path)
}

func (v *structuralPass) checkCommonKeywords(n *node, path string) {
	v.requireString(n, "description", path)
	v.requireBool(n, "nullable", path)
	v.requireBool(n, "deprecated", path)
	v.requireBool(n, "required", path)
	v.requireList(n, "examples", path)
	if tags, ok := n.get("tags"); ok {
		if tags.kind != kindSequence {
			v.addf(path+".tags", "must be a list of strings")
		} else {
			for _, item := range tags.items {
				if _, isString := item.stringValue(); !isString {
					v.addf(path+".tags", "must be a list of strings")
					break
				}
			}
		}
	}
}

func (v *structuralPass) checkObjectShape(n *node, path string) {
	v.requireBool(n, "strict", path)
	v.requireBool(n, "allow_empty_object", path)
	fields, ok := n.get("fields")
	if !ok {
		return
	}
	if fields.kind != kindMapping {
		v.addf(path+".fields", "must be a mapping")
		return
	}
	for _, name := range fields.keys {
		if strings.TrimSpace(name) == "" {
			v.addf(path+".fields", "contains an invalid field name")
			continue
		}
		v.checkNode(fields.fields[name], path+".fields."+name, true)
	}
}

func (v *structuralPass) checkArrayShape(n *node, path string) {
	items, ok := n.get("items")
	if !ok {
		v.addf(path+".items", "required for arrays")
	} else {
		v.checkNode(items, path+".items", false)
	}
	v.requireNonNegativeInt(n, "min_items", path)
	v.requireNonNegativeInt(n, "max_items", path)
	if uniqueBy, ok := n.get("unique_by"); ok {
		if s, isString := uniqueBy.stringValue(); !isString || strings.TrimSpace(s) == "" {
			v.addf(path+".unique_by", "must be a non-empty string")
		}
	}
}

func (v *structuralPass) checkStringShape(n *node, path string) {
	v.requireNonNegativeInt(n, "min_len", path)
	v.requireNonNegativeInt(n, "max_len", path)
	v.requireString(n, "pattern", path)
	v.requireList(n, "enum", path)
	if format, ok := n.get("format"); ok {
		if s, isString := format.stringValue(); !isString || !stringFormats[s] {
			v.addf(path+".format", "must be one of: %s", strings.Join(sortedKeys(stringFormats), ", "))
		}
	}
}

func (v *structuralPass) checkNumericShape(n *node, path string) {
	for _, key := range []string{"min", "max"} {
		if bound, ok := n.get(key); ok {
			if _, isNumber := bound.floatValue(); !isNumber {
				v.addf(path+"."+key, "must be numeric")
			}
		}
	}
	v.requireList(n, "enum", path)
}

func (v *structuralPass) rejectUnknownKeys(n *node, allowed map[string]bool, path string) {
	var unknown []string
	for _, key := range n.keys {
		if !allowed[key] {
			unknown = append(unknown, key)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		v.addf(path, "unknown keys: %s", strings.Join(unknown, ", "))
	}
}

func (v *structuralPass) requireString(n *node, key, path string) {
	if child, ok := n.get(key); ok {
		if _, isString := child.stringValue(); !isString {
			v.addf(path+"."+key, "must be a string")
		}
	}
}

func (v *structuralPass) requireBool(n *node, key, path string) {
	if child, ok := n.get(key); ok {
		if _, isBool := child.boolValue(); !isBool {
			v.addf(path+"."+key, "must be a boolean")
		}
	}
}

func (v *structuralPass) requireList(n *node, key, path string) {
	if child, ok := n.get(key); ok && child.kind != kindSequence {
		v.addf(path+"."+key, "must be a list")
	}
}

func (v *structuralPass) requireNonNegativeInt(n *node, key, path string) {
	if child, ok := n.get(key); ok {
		if value, isInt := child.intValue(); !isInt || value < 0 {
			v.addf(path+"."+key, "must be a non-negative integer")
		}
	}
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for key := range set {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
