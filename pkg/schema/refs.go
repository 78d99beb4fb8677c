package schema

import (
	"fmt"
	"sort"
	"strings"
)

// refTargetName extracts the definition name from a $ref. Both the DSL
// form #/definitions/<Name> and the compiled form #/$defs/<Name> are
// accepted as sources; compilation always emits #/$defs/<Name>.
func refTargetName(ref string) (string, error) {
	var name string
	switch {
	case strings.HasPrefix(ref, "#/definitions/"):
		name = strings.TrimPrefix(ref, "#/definitions/")
	case strings.HasPrefix(ref, "#/$defs/"):
		name = strings.TrimPrefix(ref, "#/$defs/")
	default:
		return "", fmt.Errorf("must use #/definitions/<Name> or #/$defs/<Name>: %q", ref)
	}
	if name == "" || strings.Contains(name, "/") {
		return "", fmt.Errorf("invalid reference target: %q", ref)
	}
	return name, nil
}

// collectRefs gathers every definition name referenced while expanding a
// node's body, descending through object fields and array items.
func collectRefs(n *node, into map[string]bool) {
	if n.kind != kindMapping {
		return
	}
	if ref, ok := n.get("$ref"); ok {
		if text, isString := ref.stringValue(); isString {
			if name, err := refTargetName(text); err == nil {
				into[name] = true
			}
		}
		return
	}
	typeNode, ok := n.get("type")
	if !ok {
		return
	}
	typeName, _ := typeNode.stringValue()
	switch typeName {
	case "object":
		if fields, ok := n.get("fields"); ok && fields.kind == kindMapping {
			for _, name := range fields.keys {
				collectRefs(fields.fields[name], into)
			}
		}
	case "array":
		if items, ok := n.get("items"); ok {
			collectRefs(items, into)
		}
	}
}

// Visit states for cycle detection.
const (
	refUnvisited = iota
	refInProgress
	refDone
)

// detectCycles walks the definition reference graph with an iterative
// depth-first traversal using index-based marks, so deep definition
// chains cannot exhaust the call stack. On a cycle it returns the
// participating definition names in traversal order.
func detectCycles(names []string, edges map[string][]string) []string {
	index := make(map[string]int, len(names))
	for i, name := range names {
		index[name] = i
	}
	state := make([]int, len(names))

	type frame struct {
		name string
		next int
	}

	for _, start := range names {
		if state[index[start]] != refUnvisited {
			continue
		}
		stack := []frame{{name: start}}
		state[index[start]] = refInProgress
		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			targets := edges[top.name]
			if top.next >= len(targets) {
				state[index[top.name]] = refDone
				stack = stack[:len(stack)-1]
				continue
			}
			target := targets[top.next]
			top.next++
			switch state[index[target]] {
			case refUnvisited:
				state[index[target]] = refInProgress
				stack = append(stack, frame{name: target})
			case refInProgress:
				cycle := []string{}
				for i := range stack {
					if stack[i].name == target {
						for _, f := range stack[i:] {
							cycle = append(cycle, f.name)
						}
						break
					}
				}
				return append(cycle, target)
			}
		}
	}
	return nil
}

// validateReferences checks that every $ref in the root schema and the
// definitions resolves, and that the definition graph is acyclic. Errors
// are reported as semantic errors; the cycle error names every
// participating definition.
func validateReferences(rootSchema *node, definitions *node) []error {
	var errs []error
	defined := map[string]bool{}
	var names []string
	if definitions != nil {
		for _, name := range definitions.keys {
			defined[name] = true
			names = append(names, name)
		}
	}

	rootRefs := map[string]bool{}
	collectRefs(rootSchema, rootRefs)
	for _, name := range sortedKeys(rootRefs) {
		if !defined[name] {
			errs = append(errs, semanticf("schema", "reference not found: %s", name))
		}
	}

	edges := map[string][]string{}
	for _, name := range names {
		refs := map[string]bool{}
		collectRefs(definitions.fields[name], refs)
		targets := sortedKeys(refs)
		edges[name] = targets
		for _, target := range targets {
			if !defined[target] {
				errs = append(errs, semanticf("definitions."+name, "reference not found: %s", target))
			}
		}
	}
	if len(errs) > 0 {
		return errs
	}

	sorted := append([]string(nil), names...)
	sort.Strings(sorted)
	if cycle := detectCycles(sorted, edges); cycle != nil {
		errs = append(errs, semanticf("definitions",
			"reference cycle detected: %s", strings.Join(cycle, " -> ")))
	}
	return errs
}
