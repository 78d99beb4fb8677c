package sources

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"
)

// FileSource reads a JSON document from a file under the project
// directory.
type FileSource struct {
	path string
}

// NewFileSource builds a file connector. Required parameter: path.
func NewFileSource(projectDir string, with map[string]any) (Connector, error) {
	path, ok := stringParam(with, "path")
	if !ok || path == "" {
		return nil, fmt.Errorf("file source requires a path parameter")
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(projectDir, path)
	}
	return &FileSource{path: path}, nil
}

// Fetch implements Connector.
func (s *FileSource) Fetch(_ context.Context) (any, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.path, err)
	}
	var value any
	if err := json.Unmarshal(data, &value); err != nil {
		return nil, fmt.Errorf("%s is not valid JSON: %w", s.path, err)
	}
	return value, nil
}

// Describe implements Describer.
func (s *FileSource) Describe() string {
	return s.path
}
