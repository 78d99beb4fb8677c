// Package commands wires the CLI: flag parsing, renderer selection and
// pipeline invocation. All build semantics live in pkg/pipeline; this
// layer only observes the event stream and shapes output.
package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/opactx/opactx/pkg/events"
	"github.com/opactx/opactx/pkg/pipeline"
	"github.com/opactx/opactx/pkg/sources"
	"github.com/opactx/opactx/pkg/telemetry"
	"github.com/opactx/opactx/pkg/transform"
)

var (
	// Global flags
	projectDir string
	configPath string
	jsonOutput bool
	logLevel   string
)

// Execute runs the root command.
func Execute(ctx context.Context, version, commit, buildDate string) error {
	rootCmd := newRootCommand(version, commit, buildDate)
	return rootCmd.ExecuteContext(ctx)
}

func newRootCommand(version, commit, buildDate string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "opactx",
		Short: "opactx - deterministic context bundles for policy engines",
		Long: `opactx compiles a schema DSL into a standard JSON Schema and assembles
external data plus human-authored intent into a single canonical,
schema-validated context bundle through a deterministic pipeline.

The same inputs always produce byte-identical bundles, so a bundle
revision is a trustworthy fingerprint of what policy will see.`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildDate),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&projectDir, "project", "C", ".", "project directory")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file path (default opactx.yaml)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "emit events as JSON lines instead of text")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level (trace, debug, info, warn, error)")

	rootCmd.AddCommand(newBuildCommand())
	rootCmd.AddCommand(newValidateCommand())
	rootCmd.AddCommand(newInitCommand())
	rootCmd.AddCommand(newInspectCommand())
	rootCmd.AddCommand(newListPluginsCommand())

	return rootCmd
}

// newBuilder assembles a builder with a fresh bus and the selected
// renderer subscribed.
func newBuilder(command string) (*pipeline.Builder, *events.Bus, error) {
	log, err := telemetry.New(telemetry.Config{Level: logLevel})
	if err != nil {
		return nil, nil, err
	}
	runID := pipeline.NewRunID()
	bus := events.NewBus(runID, command)
	if jsonOutput {
		bus.Subscribe(newJSONRenderer())
	} else {
		bus.Subscribe(newTextRenderer())
	}
	builder := pipeline.NewBuilder(bus, log.WithRunID(runID), sources.NewRegistry(), transform.NewRegistry())
	return builder, bus, nil
}
