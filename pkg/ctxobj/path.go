package ctxobj

import (
	"fmt"
	"strings"
)

// RootNamespace is the fixed root segment every context path starts with.
const RootNamespace = "context"

// Path is a parsed dot-path rooted at the context namespace. The zero
// value is not valid; use ParsePath.
type Path struct {
	segments []string
}

// ParsePath parses a dot-path of the form "context.a.b". The root segment
// must be the context namespace and no segment may be empty. A path of
// just "context" addresses the whole payload.
func ParsePath(s string) (Path, error) {
	if s == "" {
		return Path{}, fmt.Errorf("path is empty")
	}
	parts := strings.Split(s, ".")
	if parts[0] != RootNamespace {
		return Path{}, fmt.Errorf("path %q is not rooted at %q", s, RootNamespace)
	}
	for _, part := range parts[1:] {
		if part == "" {
			return Path{}, fmt.Errorf("path %q contains an empty segment", s)
		}
	}
	return Path{segments: parts[1:]}, nil
}

// MustParsePath is ParsePath for paths known to be valid at compile time.
// It panics on a malformed path.
func MustParsePath(s string) Path {
	p, err := ParsePath(s)
	if err != nil {
		panic(err)
	}
	return p
}

// String returns the dot-path form including the root namespace.
func (p Path) String() string {
	if len(p.segments) == 0 {
		return RootNamespace
	}
	return RootNamespace + "." + strings.Join(p.segments, ".")
}

// Segments returns the path segments below the root namespace.
func (p Path) Segments() []string {
	return p.segments
}

// IsRoot reports whether the path addresses the whole context payload.
func (p Path) IsRoot() bool {
	return len(p.segments) == 0
}

// Child returns the path extended with one more segment.
func (p Path) Child(segment string) Path {
	segments := make([]string, 0, len(p.segments)+1)
	segments = append(segments, p.segments...)
	segments = append(segments, segment)
	return Path{segments: segments}
}
