package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// DefaultFileName is the configuration file looked up in the project
// directory when no explicit path is given.
const DefaultFileName = "opactx.yaml"

// Error reports a configuration problem. Configuration errors are always
// fatal before any stage beyond LoadConfig runs.
type Error struct {
	Message string
}

func (e *Error) Error() string {
	return "config: " + e.Message
}

func errorf(format string, args ...any) *Error {
	return &Error{Message: fmt.Sprintf(format, args...)}
}

// Load reads and validates the pipeline configuration. Unknown keys are
// rejected, defaults are applied, struct tags are enforced, and semantic
// checks (version literal, duplicate source names) run before the config
// is handed to the pipeline.
func Load(projectDir, configPath string) (*Config, error) {
	if configPath == "" {
		configPath = DefaultFileName
	}
	if !filepath.IsAbs(configPath) {
		configPath = filepath.Join(projectDir, configPath)
	}
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, errorf("missing config: %s", configPath)
	}
	return Parse(data)
}

// Parse decodes and validates configuration bytes.
func Parse(data []byte) (*Config, error) {
	cfg := &Config{
		Version:    SupportedVersion,
		SchemaPath: "schema/context.schema.json",
		ContextDir: "context",
		Output:     Output{Dir: "dist/bundle"},
	}
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil {
		return nil, errorf("parse: %v", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, errorf("invalid config: %v", err)
	}
	if cfg.Version != SupportedVersion {
		return nil, errorf("only version %s is supported, got %q", SupportedVersion, cfg.Version)
	}

	seen := map[string]bool{}
	duplicates := map[string]bool{}
	for _, source := range cfg.Sources {
		if seen[source.Name] {
			duplicates[source.Name] = true
		}
		seen[source.Name] = true
	}
	if len(duplicates) > 0 {
		names := make([]string, 0, len(duplicates))
		for name := range duplicates {
			names = append(names, name)
		}
		sort.Strings(names)
		return nil, errorf("duplicate source names: %s", strings.Join(names, ", "))
	}

	return cfg, nil
}

// LoadYAMLMapping reads a YAML mapping document, used for the intent
// inputs. A missing optional file yields an empty mapping.
func LoadYAMLMapping(path string, required bool) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !required {
			return map[string]any{}, nil
		}
		return nil, errorf("missing required file: %s", path)
	}
	var value any
	if err := yaml.Unmarshal(data, &value); err != nil {
		return nil, errorf("failed to parse YAML: %s: %v", path, err)
	}
	if value == nil {
		return map[string]any{}, nil
	}
	mapping, ok := value.(map[string]any)
	if !ok {
		return nil, errorf("%s must be a YAML mapping at the top level", path)
	}
	return mapping, nil
}
