package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/open-policy-agent/opa/v1/ast"
)

// PolicyDirName is the project directory scanned for .rego files when
// output.include_policy is set.
const PolicyDirName = "policy"

// collectPolicies reads every .rego file under the project's policy
// directory. Each file is parse-checked before inclusion so a broken
// policy fails the build instead of landing in the bundle; the policy is
// never evaluated.
func collectPolicies(projectDir string) (map[string][]byte, error) {
	dir := filepath.Join(projectDir, PolicyDirName)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("include_policy is set but %s does not exist", dir)
		}
		return nil, fmt.Errorf("read policy directory: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".rego") {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)
	if len(names) == 0 {
		return nil, fmt.Errorf("include_policy is set but %s contains no .rego files", dir)
	}

	policies := make(map[string][]byte, len(names))
	for _, name := range names {
		contents, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("read policy %s: %w", name, err)
		}
		if _, err := ast.ParseModule(name, string(contents)); err != nil {
			return nil, fmt.Errorf("policy %s does not parse: %w", name, err)
		}
		policies[name] = contents
	}
	return policies, nil
}
