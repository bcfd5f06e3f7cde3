package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abdul-hamid-achik/nexo-routes/internal/version"
)

func newVersionCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			if opts.jsonOutput {
				printSuccess(out, VersionOutput{
					Version:       version.GetVersion(),
					SchemaVersion: version.GetDefinitionSchemaVersion(),
				})
				return
			}
			fmt.Fprintf(out, "nexo-routes %s (definition schema v%d)\n", version.GetVersion(), version.GetDefinitionSchemaVersion())
		},
	}
}
