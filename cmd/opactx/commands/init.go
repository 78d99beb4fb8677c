package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/opactx/opactx/pkg/pipeline"
)

func newInitCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Scaffold a minimal opactx project",
		Long: `Init writes a working starting point into the project directory: the
configuration file, a DSL schema, the standards and exceptions intent
documents, and an example source payload. Existing files are never
overwritten.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			written, err := pipeline.Scaffold(projectDir)
			if err != nil {
				return err
			}
			for _, name := range written {
				fmt.Fprintf(cmd.OutOrStdout(), "created %s\n", name)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "run `opactx build` to produce your first bundle")
			return nil
		},
	}
	return cmd
}
