package commands

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func TestListPlugins(t *testing.T) {
	root := newRootCommand("test", "none", "now")
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs([]string{"list-plugins"})

	if err := root.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("list-plugins: %v", err)
	}
	text := out.String()
	for _, want := range []string{"file", "http", "exec", "canonicalize", "mount", "validate_schema"} {
		if !strings.Contains(text, want) {
			t.Errorf("output does not mention %q:\n%s", want, text)
		}
	}
}
