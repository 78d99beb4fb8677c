package commands

import (
	"github.com/spf13/cobra"

	"github.com/opactx/opactx/pkg/pipeline"
	"github.com/opactx/opactx/pkg/telemetry"
)

func newBuildCommand() *cobra.Command {
	var (
		dryRun bool
		watch  bool
	)

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Assemble, validate and emit the context bundle",
		Long: `Build runs the full pipeline: load configuration, load intent, fetch
sources, apply transforms, validate the context against the schema, and
emit the bundle. The pipeline halts at the first failing stage and no
partial bundle is ever written.`,
		Example: `  # Build the bundle in the current project
  opactx build

  # Run everything except bundle emission
  opactx build --dry-run

  # Rebuild whenever an input file changes
  opactx build --watch`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := pipeline.Options{
				ProjectDir: projectDir,
				ConfigPath: configPath,
				DryRun:     dryRun,
			}
			runOnce := func() error {
				builder, _, err := newBuilder("build")
				if err != nil {
					return err
				}
				_, err = builder.Run(cmd.Context(), opts)
				return err
			}
			if watch {
				log, err := telemetry.New(telemetry.Config{Level: logLevel})
				if err != nil {
					return err
				}
				return pipeline.Watch(cmd.Context(), log, opts, runOnce)
			}
			return runOnce()
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "run the pipeline without writing the bundle")
	cmd.Flags().BoolVar(&watch, "watch", false, "rebuild whenever project inputs change")

	return cmd
}
