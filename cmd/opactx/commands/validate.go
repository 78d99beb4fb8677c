package commands

import (
	"github.com/spf13/cobra"

	"github.com/opactx/opactx/pkg/pipeline"
)

func newValidateCommand() *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Preflight the project without fetching sources",
		Long: `Validate compiles the schema, self-checks the compiled output and
validates an intent-only candidate context. No source is fetched and no
bundle is written, so it is fast enough for editor hooks and CI gates.

Validation issues under the sources subtree are warnings by default,
because a preflight never populates it; --strict turns them into
failures.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			builder, _, err := newBuilder("validate")
			if err != nil {
				return err
			}
			return builder.Validate(pipeline.ValidateOptions{
				ProjectDir: projectDir,
				ConfigPath: configPath,
				Strict:     strict,
			})
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "fail on issues under the sources subtree too")

	return cmd
}
