// Package commands provides the CLI commands for nexo-routes.
package commands

import (
	"errors"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/abdul-hamid-achik/nexo-routes/internal/config"
	"github.com/abdul-hamid-achik/nexo-routes/internal/logger"
	"github.com/abdul-hamid-achik/nexo-routes/internal/version"
)

// errReported is returned by commands that already reported their failure.
var errReported = errors.New("reported")

// globalOptions are the persistent flags shared by every command.
type globalOptions struct {
	jsonOutput bool
	noColor    bool
	configPath string
	logLevel   string
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	opts := &globalOptions{}

	cmd := &cobra.Command{
		Use:   "nexo-routes",
		Short: "nexo-routes - declarative route tables for chi",
		Long: `nexo-routes resolves declarative route definitions (routes.yaml,
*.routes.yaml) into a flat, sorted route table: group patterns and
placeholders are composed, middleware, arguments and parameters are merged
along the group chain, names are built from group prefixes, and duplicate
names or paths are rejected.

Quick Start:
  nexo-routes init            Create a config file and sample definitions
  nexo-routes routes          List the resolved route table
  nexo-routes check           Validate definitions (exit 1 on error)
  nexo-routes openapi         Generate an OpenAPI document
  nexo-routes watch           Re-resolve on every definition change
  nexo-routes serve           Serve the table with stub handlers
  nexo-routes mcp             Expose the table to MCP clients`,
		Version:       version.GetVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if opts.noColor || !isTerminal(os.Stdout) {
				color.NoColor = true
			}
		},
	}

	cmd.PersistentFlags().BoolVar(&opts.jsonOutput, "json", false, "Output in JSON format (for automation)")
	cmd.PersistentFlags().BoolVar(&opts.noColor, "no-color", false, "Disable colored output")
	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "Config file (default ./nexo-routes.yaml)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Log level, overrides the config file")

	cmd.AddCommand(newInitCmd(opts))
	cmd.AddCommand(newRoutesCmd(opts))
	cmd.AddCommand(newCheckCmd(opts))
	cmd.AddCommand(newOpenAPICmd(opts))
	cmd.AddCommand(newWatchCmd(opts))
	cmd.AddCommand(newServeCmd(opts))
	cmd.AddCommand(newMCPCmd(opts))
	cmd.AddCommand(newVersionCmd(opts))

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

// setup loads the config and builds the logger for a command run.
func (o *globalOptions) setup() (*config.Config, *logrus.Logger, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, nil, err
	}

	if o.logLevel != "" {
		cfg.Log.Level = o.logLevel
	}

	log, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return nil, nil, err
	}

	return cfg, log, nil
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
