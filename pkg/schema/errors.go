package schema

import (
	"fmt"
	"strings"
)

// StructuralError reports a document that does not match the required
// shape: unknown keys, a missing family keyword, a mistyped keyword. Path
// is a dot-path into the offending document node.
type StructuralError struct {
	Path    string
	Message string
}

func (e *StructuralError) Error() string {
	return fmt.Sprintf("schema structure: %s: %s", e.Path, e.Message)
}

// SemanticError reports a structurally valid document that violates a
// semantic constraint: a dangling or cyclic reference, inverted bounds, a
// default or enum value that does not match the declared type.
type SemanticError struct {
	Path    string
	Message string
}

func (e *SemanticError) Error() string {
	return fmt.Sprintf("schema semantics: %s: %s", e.Path, e.Message)
}

// ValidationError reports data that fails a compiled schema. Path is a
// JSON pointer into the validated value.
type ValidationError struct {
	Path    string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// ErrorList aggregates several errors from one pass into a single error
// value for callers that want only pass/fail plus a report.
type ErrorList []error

func (l ErrorList) Error() string {
	if len(l) == 0 {
		return "no errors"
	}
	lines := make([]string, 0, len(l))
	for _, err := range l {
		lines = append(lines, "- "+err.Error())
	}
	return fmt.Sprintf("%d error(s):\n%s", len(l), strings.Join(lines, "\n"))
}

func structuralf(path, format string, args ...any) *StructuralError {
	return &StructuralError{Path: path, Message: fmt.Sprintf(format, args...)}
}

func semanticf(path, format string, args ...any) *SemanticError {
	return &SemanticError{Path: path, Message: fmt.Sprintf(format, args...)}
}

func validationf(path, format string, args ...any) *ValidationError {
	return &ValidationError{Path: path, Message: fmt.Sprintf(format, args...)}
}
