package sources

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

// ExecSource runs a command in the project directory and parses its
// stdout as JSON.
type ExecSource struct {
	projectDir string
	argv       []string
	timeout    time.Duration
}

// NewExecSource builds an exec connector. Required parameter: cmd (list
// of strings). Optional: timeout_s (number).
func NewExecSource(projectDir string, with map[string]any) (Connector, error) {
	raw, ok := with["cmd"].([]any)
	if !ok || len(raw) == 0 {
		return nil, fmt.Errorf("exec source requires cmd as a non-empty list of strings")
	}
	argv := make([]string, len(raw))
	for i, item := range raw {
		text, isString := item.(string)
		if !isString {
			return nil, fmt.Errorf("exec source requires cmd as a list of strings")
		}
		argv[i] = text
	}

	source := &ExecSource{projectDir: projectDir, argv: argv}
	if timeout, ok := floatParam(with, "timeout_s"); ok {
		source.timeout = time.Duration(timeout * float64(time.Second))
	}
	return source, nil
}

// Fetch implements Connector.
func (s *ExecSource) Fetch(ctx context.Context) (any, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, s.argv[0], s.argv[1:]...)
	cmd.Dir = s.projectDir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		message := strings.TrimSpace(stderr.String())
		if message == "" {
			message = err.Error()
		}
		return nil, fmt.Errorf("command failed: %s", message)
	}
	var value any
	if err := json.Unmarshal(stdout.Bytes(), &value); err != nil {
		return nil, fmt.Errorf("command output is not valid JSON: %w", err)
	}
	return value, nil
}

// Describe implements Describer.
func (s *ExecSource) Describe() string {
	if len(s.argv) > 1 {
		return s.argv[0] + " " + filepath.Base(s.argv[1])
	}
	return s.argv[0]
}
