package commands

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/abdul-hamid-achik/nexo-routes/pkg/mcp"
)

func newMCPCmd(opts *globalOptions) *cobra.Command {
	var workdir string

	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Serve the route table to MCP clients over stdio",
		Long: `Start a Model Context Protocol server on stdin/stdout exposing the
list_routes, check_routes, url_for and openapi tools for the project in the
working directory.

Example client configuration:
  {"command": "nexo-routes", "args": ["mcp", "--workdir", "/path/to/project"]}`,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, log, err := opts.setup()
			if err != nil {
				return err
			}
			// stdout carries the protocol
			log.SetOutput(os.Stderr)

			if workdir == "" {
				if workdir, err = os.Getwd(); err != nil {
					return err
				}
			}

			return mcp.NewServer(workdir, log).ServeStdio()
		},
	}

	cmd.Flags().StringVarP(&workdir, "workdir", "w", "", "Project directory (default: current directory)")

	return cmd
}
