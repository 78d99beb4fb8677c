package schema

import (
	"bytes"
	"strings"
	"testing"
)

const minimalDSL = `dsl: opactx.schema/v1
id: test.context
title: Test context
description: Schema used by the compiler tests.
root: context
schema:
  type: object
  fields:
    standards:
      type: object
      required: true
      strict: false
      allow_empty_object: true
    name:
      type: string
      min_len: 1
`

func compileSource(t *testing.T, source string) *Compiled {
	t.Helper()
	doc, err := ParseDocument([]byte(source))
	if err != nil {
		t.Fatalf("ParseDocument: %v", err)
	}
	if errs := ValidateDocument(doc); len(errs) > 0 {
		t.Fatalf("ValidateDocument: %v", ErrorList(errs))
	}
	compiled, errs := Compile(doc)
	if len(errs) > 0 {
		t.Fatalf("Compile: %v", ErrorList(errs))
	}
	return compiled
}

func compileErrors(t *testing.T, source string) []error {
	t.Helper()
	doc, err := ParseDocument([]byte(source))
	if err != nil {
		t.Fatalf("ParseDocument: %v", err)
	}
	if errs := ValidateDocument(doc); len(errs) > 0 {
		t.Fatalf("ValidateDocument: %v", ErrorList(errs))
	}
	_, errs := Compile(doc)
	if len(errs) == 0 {
		t.Fatal("Compile succeeded, want semantic errors")
	}
	return errs
}

func TestCompileDeterministic(t *testing.T) {
	first, err := compileSource(t, minimalDSL).Bytes()
	if err != nil {
		t.Fatalf("Bytes: %v", err)
	}
	second, err := compileSource(t, minimalDSL).Bytes()
	if err != nil {
		t.Fatalf("Bytes: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Error("recompiling identical input produced different bytes")
	}
}

func TestCompileOutputSelfChecks(t *testing.T) {
	compiled := compileSource(t, minimalDSL)
	schema, err := compiled.Map()
	if err != nil {
		t.Fatalf("Map: %v", err)
	}
	if errs := CheckSchema(schema); len(errs) > 0 {
		t.Errorf("compiled schema fails its own self-check: %v", ErrorList(errs))
	}
}

func TestCompilePreservesFieldOrder(t *testing.T) {
	source := `dsl: opactx.schema/v1
id: test.order
title: Order
description: Field order check.
root: context
schema:
  type: object
  fields:
    zebra:
      type: string
    alpha:
      type: string
    middle:
      type: string
`
	payload, err := compileSource(t, source).Bytes()
	if err != nil {
		t.Fatalf("Bytes: %v", err)
	}
	text := string(payload)
	zebra := strings.Index(text, `"zebra"`)
	alpha := strings.Index(text, `"alpha"`)
	middle := strings.Index(text, `"middle"`)
	if zebra < 0 || alpha < 0 || middle < 0 {
		t.Fatalf("missing property names in output:\n%s", text)
	}
	if !(zebra < alpha && alpha < middle) {
		t.Errorf("properties not in source order: zebra=%d alpha=%d middle=%d", zebra, alpha, middle)
	}
}

func TestCompileStrictnessInheritance(t *testing.T) {
	source := `dsl: opactx.schema/v1
id: test.strict
title: Strict
description: Strictness inheritance check.
root: context
schema:
  type: object
  fields:
    closed:
      type: object
      allow_empty_object: true
    open:
      type: object
      strict: false
      allow_empty_object: true
`
	schema, err := compileSource(t, source).Map()
	if err != nil {
		t.Fatalf("Map: %v", err)
	}
	if schema["additionalProperties"] != false {
		t.Error("root should inherit strict=true and be closed")
	}
	properties := schema["properties"].(map[string]any)
	if properties["closed"].(map[string]any)["additionalProperties"] != false {
		t.Error("child without strict should inherit the closed default")
	}
	if properties["open"].(map[string]any)["additionalProperties"] != true {
		t.Error("strict: false should compile to an open object")
	}
}

func TestCompileNullableUnionsNull(t *testing.T) {
	source := `dsl: opactx.schema/v1
id: test.nullable
title: Nullable
description: Nullable type union check.
root: context
schema:
  type: object
  fields:
    label:
      type: string
      nullable: true
      default: null
`
	schema, err := compileSource(t, source).Map()
	if err != nil {
		t.Fatalf("Map: %v", err)
	}
	label := schema["properties"].(map[string]any)["label"].(map[string]any)
	types, ok := label["type"].([]any)
	if !ok || len(types) != 2 || types[0] != "string" || types[1] != "null" {
		t.Errorf("nullable string compiled to type %v, want [string null]", label["type"])
	}
}

func TestCompileCollectsRequiredFromFields(t *testing.T) {
	schema, err := compileSource(t, minimalDSL).Map()
	if err != nil {
		t.Fatalf("Map: %v", err)
	}
	required, ok := schema["required"].([]any)
	if !ok || len(required) != 1 || required[0] != "standards" {
		t.Errorf("required = %v, want [standards]", schema["required"])
	}
}

func TestCompileRewritesRefs(t *testing.T) {
	source := `dsl: opactx.schema/v1
id: test.refs
title: Refs
description: Reference rewrite check.
root: context
schema:
  type: object
  fields:
    item:
      $ref: "#/definitions/Item"
      required: true
definitions:
  Item:
    type: string
`
	schema, err := compileSource(t, source).Map()
	if err != nil {
		t.Fatalf("Map: %v", err)
	}
	item := schema["properties"].(map[string]any)["item"].(map[string]any)
	if item["$ref"] != "#/$defs/Item" {
		t.Errorf("$ref = %v, want #/$defs/Item", item["$ref"])
	}
	if _, ok := schema["$defs"].(map[string]any)["Item"]; !ok {
		t.Error("$defs is missing the referenced definition")
	}
}

func TestCompileDetectsCycles(t *testing.T) {
	source := `dsl: opactx.schema/v1
id: test.cycle
title: Cycle
description: Definition cycle check.
root: context
schema:
  type: object
  fields:
    a:
      $ref: "#/definitions/A"
definitions:
  A:
    type: object
    allow_empty_object: false
    fields:
      b:
        $ref: "#/definitions/B"
  B:
    type: object
    fields:
      a:
        $ref: "#/definitions/A"
`
	errs := compileErrors(t, source)
	var cycle string
	for _, err := range errs {
		if strings.Contains(err.Error(), "cycle") {
			cycle = err.Error()
		}
	}
	if cycle == "" {
		t.Fatalf("no cycle error in %v", ErrorList(errs))
	}
	if !strings.Contains(cycle, "A") || !strings.Contains(cycle, "B") {
		t.Errorf("cycle error does not name both definitions: %s", cycle)
	}
}

func TestCompileSemanticErrors(t *testing.T) {
	tests := []struct {
		name string
		node string
		want string
	}{
		{
			name: "inverted string bounds",
			node: "type: string\n      min_len: 5\n      max_len: 2",
			want: "min_len",
		},
		{
			name: "inverted numeric bounds",
			node: "type: integer\n      min: 10\n      max: 1",
			want: "min must be less than or equal to max",
		},
		{
			name: "inverted array bounds",
			node: "type: array\n      items:\n        type: string\n      min_items: 3\n      max_items: 1",
			want: "min_items",
		},
		{
			name: "mistyped default",
			node: "type: integer\n      default: not-a-number",
			want: "must be an integer",
		},
		{
			name: "mistyped enum member",
			node: "type: string\n      enum: [ok, 7]",
			want: "must be a string",
		},
		{
			name: "dangling reference",
			node: `$ref: "#/definitions/Nope"`,
			want: "reference not found",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			source := `dsl: opactx.schema/v1
id: test.semantic
title: Semantic
description: Semantic error checks.
root: context
schema:
  type: object
  fields:
    field:
      ` + tt.node + "\n"
			errs := compileErrors(t, source)
			found := false
			for _, err := range errs {
				if strings.Contains(err.Error(), tt.want) {
					found = true
				}
			}
			if !found {
				t.Errorf("no error containing %q in %v", tt.want, ErrorList(errs))
			}
		})
	}
}
