package schema

import (
	"strconv"

	"github.com/goccy/go-json"
)

const draft202012 = "https://json-schema.org/draft/2020-12/schema"

// Compiled is a compiled context schema: a draft 2020-12 document with
// insertion-ordered keys. It is immutable once produced.
type Compiled struct {
	root *omap
}

// Bytes renders the compiled schema as indented JSON with a trailing
// newline. Recompiling unchanged input reproduces these bytes exactly.
func (c *Compiled) Bytes() ([]byte, error) {
	payload, err := json.MarshalIndent(c.root, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(payload, '\n'), nil
}

// Map decodes the compiled schema into plain maps for validation.
func (c *Compiled) Map() (map[string]any, error) {
	payload, err := json.Marshal(c.root)
	if err != nil {
		return nil, err
	}
	var out map[string]any
	if err := json.Unmarshal(payload, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Compile turns a structurally valid document into a compiled schema. It
// resolves references, rejects definition cycles, checks bound ordering
// and the typing of defaults, examples and enums, and applies strictness
// inheritance (default true at the root). Every semantic violation found
// is reported; a non-empty error list means no schema is produced.
func Compile(doc *Document) (*Compiled, []error) {
	root := doc.root
	p := &compilePass{}

	strictDefault := true
	if strict, ok := root.get("strict"); ok {
		if b, isBool := strict.boolValue(); isBool {
			strictDefault = b
		}
	}

	schemaNode, _ := root.get("schema")
	definitions, _ := root.get("definitions")
	if schemaNode == nil {
		return nil, []error{semanticf("root", "missing schema node")}
	}
	p.errs = append(p.errs, validateReferences(schemaNode, definitions)...)

	compiled := newOmap()
	compiled.set("$schema", draft202012)
	compiled.set("title", trimmedString(root, "title"))
	compiled.set("description", trimmedString(root, "description"))
	compiled.set("x-opactx-id", trimmedString(root, "id"))
	compiled.set("x-opactx-root", trimmedString(root, "root"))

	compiledRoot := p.compileNode(schemaNode, "schema", strictDefault, false)
	for _, key := range compiledRoot.keys {
		compiled.set(key, compiledRoot.values[key])
	}

	if definitions != nil && len(definitions.keys) > 0 {
		defs := newOmap()
		for _, name := range definitions.keys {
			defs.set(name, p.compileNode(definitions.fields[name], "definitions."+name, strictDefault, false))
		}
		compiled.set("$defs", defs)
	}

	if len(p.errs) > 0 {
		return nil, p.errs
	}
	return &Compiled{root: compiled}, nil
}

type compilePass struct {
	errs []error
}

func (p *compilePass) addf(path, format string, args ...any) {
	p.errs = append(p.errs, semanticf(path, format, args...))
}

// compileNode compiles one DSL node. inheritedStrict is the effective
// strictness flowing down from the nearest ancestor that set one.
func (p *compilePass) compileNode(n *node, path string, inheritedStrict, fieldContext bool) *omap {
	out := newOmap()
	if n.kind != kindMapping {
		p.addf(path, "must be a mapping")
		return out
	}
	if n.has("$ref") {
		return p.compileRefNode(n, path)
	}

	typeNode, ok := n.get("type")
	if !ok {
		p.addf(path, "must define either 'type' or '$ref'")
		return out
	}
	typeName, _ := typeNode.stringValue()
	out.set("type", typeName)

	nullable := false
	if nullableNode, ok := n.get("nullable"); ok {
		nullable, _ = nullableNode.boolValue()
	}

	p.applyCommonKeywords(out, n, typeName, nullable, path)

	switch typeName {
	case "object":
		p.compileObjectNode(out, n, path, inheritedStrict)
	case "array":
		p.compileArrayNode(out, n, path, inheritedStrict)
	case "string":
		p.compileStringNode(out, n, nullable, path)
	case "number", "integer":
		p.compileNumericNode(out, n, typeName, nullable, path)
	case "boolean", "null":
		p.compileEnum(out, n, typeName, nullable, path)
	}

	if nullable && typeName != "null" {
		out.set("type", []any{typeName, "null"})
	}
	return out
}

func (p *compilePass) compileRefNode(n *node, path string) *omap {
	out := newOmap()
	ref, _ := n.get("$ref")
	refText, _ := ref.stringValue()
	name, err := refTargetName(refText)
	if err != nil {
		p.addf(path+".$ref", "%s", err.Error())
		return out
	}
	out.set("$ref", "#/$defs/"+name)
	if description, ok := n.get("description"); ok {
		if s, isString := description.stringValue(); isString {
			out.set("description", s)
		}
	}
	if deprecated, ok := n.get("deprecated"); ok {
		if b, isBool := deprecated.boolValue(); isBool && b {
			out.set("deprecated", true)
		}
	}
	return out
}

func (p *compilePass) applyCommonKeywords(out *omap, n *node, typeName string, nullable bool, path string) {
	if description, ok := n.get("description"); ok {
		if s, isString := description.stringValue(); isString {
			out.set("description", s)
		}
	}
	if deprecated, ok := n.get("deprecated"); ok {
		if b, isBool := deprecated.boolValue(); isBool && b {
			out.set("deprecated", true)
		}
	}
	if tags, ok := n.get("tags"); ok && tags.kind == kindSequence {
		out.set("x-opactx-tags", tags.plain())
	}
	if def, ok := n.get("default"); ok {
		value := def.plain()
		p.assertType(value, typeName, nullable, path+".default")
		out.set("default", value)
	}
	if examples, ok := n.get("examples"); ok && examples.kind == kindSequence {
		values := examples.plain().([]any)
		for i, value := range values {
			p.assertType(value, typeName, nullable, indexPath(path+".examples", i))
		}
		out.set("examples", values)
	}
}

func (p *compilePass) compileObjectNode(out *omap, n *node, path string, inheritedStrict bool) {
	allowEmpty := false
	if allowEmptyNode, ok := n.get("allow_empty_object"); ok {
		allowEmpty, _ = allowEmptyNode.boolValue()
	}
	strict := inheritedStrict
	if strictNode, ok := n.get("strict"); ok {
		if b, isBool := strictNode.boolValue(); isBool {
			strict = b
		}
	}

	fields, hasFields := n.get("fields")
	if !hasFields || fields.kind != kindMapping || len(fields.keys) == 0 {
		if !allowEmpty {
			p.addf(path+".fields", "required and non-empty unless allow_empty_object is true")
		}
		out.set("properties", newOmap())
		out.set("additionalProperties", !strict)
		return
	}

	properties := newOmap()
	var required []any
	for _, name := range fields.keys {
		fieldNode := fields.fields[name]
		properties.set(name, p.compileNode(fieldNode, path+".fields."+name, strict, true))
		if requiredNode, ok := fieldNode.get("required"); ok {
			if b, isBool := requiredNode.boolValue(); isBool && b {
				required = append(required, name)
			}
		}
	}
	out.set("properties", properties)
	if len(required) > 0 {
		out.set("required", required)
	}
	out.set("additionalProperties", !strict)
}

func (p *compilePass) compileArrayNode(out *omap, n *node, path string, inheritedStrict bool) {
	items, ok := n.get("items")
	if !ok {
		p.addf(path+".items", "required for arrays")
	} else {
		out.set("items", p.compileNode(items, path+".items", inheritedStrict, false))
	}

	minItems, hasMin := n.get("min_items")
	maxItems, hasMax := n.get("max_items")
	var minValue, maxValue int64
	if hasMin {
		minValue, _ = minItems.intValue()
		out.set("minItems", minValue)
	}
	if hasMax {
		maxValue, _ = maxItems.intValue()
		out.set("maxItems", maxValue)
	}
	if hasMin && hasMax && minValue > maxValue {
		p.addf(path, "min_items must be less than or equal to max_items")
	}

	if uniqueBy, ok := n.get("unique_by"); ok {
		if s, isString := uniqueBy.stringValue(); isString {
			out.set("x-opactx-uniqueBy", s)
		}
	}
}

func (p *compilePass) compileStringNode(out *omap, n *node, nullable bool, path string) {
	minLen, hasMin := n.get("min_len")
	maxLen, hasMax := n.get("max_len")
	var minValue, maxValue int64
	if hasMin {
		minValue, _ = minLen.intValue()
		out.set("minLength", minValue)
	}
	if hasMax {
		maxValue, _ = maxLen.intValue()
		out.set("maxLength", maxValue)
	}
	if hasMin && hasMax && minValue > maxValue {
		p.addf(path, "min_len must be less than or equal to max_len")
	}
	if pattern, ok := n.get("pattern"); ok {
		if s, isString := pattern.stringValue(); isString {
			out.set("pattern", s)
		}
	}
	if format, ok := n.get("format"); ok {
		if s, isString := format.stringValue(); isString {
			out.set("format", s)
		}
	}
	p.compileEnum(out, n, "string", nullable, path)
}

func (p *compilePass) compileNumericNode(out *omap, n *node, typeName string, nullable bool, path string) {
	minNode, hasMin := n.get("min")
	maxNode, hasMax := n.get("max")
	var minValue, maxValue float64
	if hasMin {
		minValue, _ = minNode.floatValue()
		out.set("minimum", minNode.plain())
	}
	if hasMax {
		maxValue, _ = maxNode.floatValue()
		out.set("maximum", maxNode.plain())
	}
	if hasMin && hasMax && minValue > maxValue {
		p.addf(path, "min must be less than or equal to max")
	}
	p.compileEnum(out, n, typeName, nullable, path)
}

func (p *compilePass) compileEnum(out *omap, n *node, typeName string, nullable bool, path string) {
	enum, ok := n.get("enum")
	if !ok || enum.kind != kindSequence {
		return
	}
	values := enum.plain().([]any)
	for i, value := range values {
		p.assertType(value, typeName, nullable, indexPath(path+".enum", i))
	}
	out.set("enum", values)
}

// assertType checks a literal (default, example, enum member) against the
// node's declared base type, with null admitted when the node is nullable.
func (p *compilePass) assertType(value any, typeName string, nullable bool, path string) {
	if value == nil {
		if nullable || typeName == "null" {
			return
		}
		p.addf(path, "must not be null")
		return
	}
	switch typeName {
	case "object":
		if _, ok := value.(map[string]any); !ok {
			p.addf(path, "must be an object")
		}
	case "array":
		if _, ok := value.([]any); !ok {
			p.addf(path, "must be an array")
		}
	case "string":
		if _, ok := value.(string); !ok {
			p.addf(path, "must be a string")
		}
	case "number":
		if !isNumericLiteral(value) {
			p.addf(path, "must be a number")
		}
	case "integer":
		if !isIntegerLiteral(value) {
			p.addf(path, "must be an integer")
		}
	case "boolean":
		if _, ok := value.(bool); !ok {
			p.addf(path, "must be a boolean")
		}
	case "null":
		p.addf(path, "must be null")
	}
}

func isNumericLiteral(value any) bool {
	switch value.(type) {
	case int, int64, uint64, float64:
		return true
	default:
		return false
	}
}

func isIntegerLiteral(value any) bool {
	switch value.(type) {
	case int, int64, uint64:
		return true
	default:
		return false
	}
}

func trimmedString(n *node, key string) string {
	if child, ok := n.get(key); ok {
		if s, isString := child.stringValue(); isString {
			return s
		}
	}
	return ""
}

func indexPath(prefix string, index int) string {
	return prefix + "[" + strconv.Itoa(index) + "]"
}
