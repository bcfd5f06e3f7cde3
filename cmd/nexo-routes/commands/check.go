package commands

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/abdul-hamid-achik/nexo-routes/internal/project"
)

func newCheckCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "check [paths...]",
		Short: "Validate route definitions",
		Long: `Load and resolve route definitions without printing the table.

Exits with status 1 when a definition cannot be parsed or the table cannot
be resolved (circular groups, undeclared placeholders, unknown aliases,
duplicated names or paths, ...).

Examples:
  nexo-routes check
  nexo-routes check --json routes/`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, opts, args)
		},
	}
}

func runCheck(cmd *cobra.Command, opts *globalOptions, args []string) error {
	out := cmd.OutOrStdout()
	green := color.New(color.FgGreen).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()

	cfg, log, err := opts.setup()
	if err != nil {
		return reportError(out, opts, err)
	}

	table, err := project.Resolve(cfg, log, project.Paths(cfg, args))
	warnings := warningStrings(table.Warnings)

	if opts.jsonOutput {
		result := CheckOutput{
			Valid:      err == nil,
			RouteCount: len(table.Routes),
			Warnings:   warnings,
		}
		if err != nil {
			result.Issues = []string{err.Error()}
		}
		printJSON(out, JSONResponse{Success: err == nil, Data: result})
		if err != nil {
			return errReported
		}
		return nil
	}

	for _, w := range warnings {
		fmt.Fprintf(out, "  %s %s\n", yellow("!"), w)
	}

	if err != nil {
		fmt.Fprintf(out, "  %s %v\n", red("✗"), err)
		return errReported
	}

	fmt.Fprintf(out, "  %s %d routes resolved\n", green("✓"), len(table.Routes))
	return nil
}
