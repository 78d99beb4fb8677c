package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"

	"github.com/opactx/opactx/pkg/ctxobj"
)

// Manifest is the bundle manifest document.
type Manifest struct {
	Revision string   `json:"revision"`
	Roots    []string `json:"roots"`
}

// Inspection is what Inspect returns: the manifest plus, when a path was
// requested, the extracted value.
type Inspection struct {
	Manifest Manifest
	Value    any
	HasValue bool
}

// Inspect reads an emitted bundle and optionally extracts the value at a
// dot-path rooted at the context namespace.
func Inspect(bundleDir, path string) (*Inspection, error) {
	manifestData, err := os.ReadFile(filepath.Join(bundleDir, BundleManifestFileName))
	if err != nil {
		return nil, fmt.Errorf("not a bundle directory: %s: %w", bundleDir, err)
	}
	var manifest Manifest
	if err := json.Unmarshal(manifestData, &manifest); err != nil {
		return nil, fmt.Errorf("corrupt manifest: %w", err)
	}
	result := &Inspection{Manifest: manifest}
	if path == "" {
		return result, nil
	}

	data, err := os.ReadFile(filepath.Join(bundleDir, BundleDataFileName))
	if err != nil {
		return nil, fmt.Errorf("read data document: %w", err)
	}
	var document map[string]any
	if err := json.Unmarshal(data, &document); err != nil {
		return nil, fmt.Errorf("corrupt data document: %w", err)
	}
	payload, ok := document[ctxobj.RootNamespace].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("data document has no %s root", ctxobj.RootNamespace)
	}

	if !strings.HasPrefix(path, ctxobj.RootNamespace+".") && path != ctxobj.RootNamespace {
		path = ctxobj.RootNamespace + "." + path
	}
	parsed, err := ctxobj.ParsePath(path)
	if err != nil {
		return nil, err
	}
	value, ok := ctxobj.FromValue(payload).Get(parsed)
	if !ok {
		return nil, fmt.Errorf("no value at %s", parsed)
	}
	result.Value = value
	result.HasValue = true
	return result, nil
}
