package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/opactx/opactx/pkg/ctxobj"
	"github.com/opactx/opactx/pkg/pipeline"
)

func newInspectCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect <bundle-dir> [dot-path]",
		Short: "Inspect an emitted bundle",
		Long: `Inspect prints a bundle's revision and roots, or extracts the value at
a dot-path from its data document.`,
		Example: `  # Show revision and roots
  opactx inspect dist/bundle

  # Extract a value
  opactx inspect dist/bundle standards.encryption_required`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) > 1 {
				path = args[1]
			}
			inspection, err := pipeline.Inspect(args[0], path)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if inspection.HasValue {
				rendered, err := ctxobj.IndentedJSON(inspection.Value)
				if err != nil {
					return err
				}
				fmt.Fprint(out, string(rendered))
				return nil
			}
			fmt.Fprintf(out, "revision: %s\n", inspection.Manifest.Revision)
			fmt.Fprintf(out, "roots:    %s\n", strings.Join(inspection.Manifest.Roots, ", "))
			return nil
		},
	}
	return cmd
}
