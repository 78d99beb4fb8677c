package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/opactx/opactx/pkg/sources"
	"github.com/opactx/opactx/pkg/transform"
)

func newListPluginsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list-plugins",
		Short: "List the installed source types and transform operations",
		Long: `List-plugins prints the source connector types and transform operations
this binary ships with. Plugin transform names not listed here resolve
to a project-local Starlark script of the same name.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "source types:       %s\n", strings.Join(sources.NewRegistry().Types(), ", "))
			fmt.Fprintf(out, "builtin transforms: %s\n", strings.Join(transform.NewRegistry().Builtins(), ", "))
			fmt.Fprintln(out, "plugin transforms:  any <name>.star script in the project (kind: plugin)")
			return nil
		},
	}
	return cmd
}
