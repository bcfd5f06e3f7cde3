package commands

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/abdul-hamid-achik/nexo-routes/internal/project"
	"github.com/abdul-hamid-achik/nexo-routes/pkg/resolver"
)

func newRoutesCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "routes [paths...]",
		Short: "List the resolved route table",
		Long: `Load route definitions, resolve them and print the table in the order
routes are registered (ascending priority, then declaration order).

Paths may be definition files or directories; directories are searched for
routes.yaml and *.routes.yaml files. Without arguments the paths from the
config file are used.

Examples:
  nexo-routes routes
  nexo-routes routes api/ admin.routes.yaml
  nexo-routes routes --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRoutes(cmd, opts, args)
		},
	}
}

func runRoutes(cmd *cobra.Command, opts *globalOptions, args []string) error {
	out := cmd.OutOrStdout()

	cfg, log, err := opts.setup()
	if err != nil {
		return reportError(out, opts, err)
	}

	table, err := project.Resolve(cfg, log, project.Paths(cfg, args))
	if err != nil {
		return reportError(out, opts, err)
	}

	if opts.jsonOutput {
		routes := make([]RouteOutput, 0, len(table.Routes))
		for _, r := range table.Routes {
			routes = append(routes, toRouteOutput(r))
		}
		printSuccess(out, RoutesOutput{
			Routes:      routes,
			TotalRoutes: len(routes),
			Warnings:    warningStrings(table.Warnings),
		})
		return nil
	}

	printRouteTable(out, table.Routes)
	return nil
}

// printRouteTable writes the human-readable table.
func printRouteTable(w io.Writer, routes []*resolver.Route) {
	cyan := color.New(color.FgCyan).SprintFunc()
	dim := color.New(color.Faint).SprintFunc()

	fmt.Fprintf(w, "\n  %s Routes\n\n", cyan("nexo"))

	if len(routes) == 0 {
		fmt.Fprintf(w, "  %s\n\n", dim("No routes defined"))
		return
	}

	patternWidth := len("PATTERN")
	for _, r := range routes {
		patternWidth = max(patternWidth, len(r.Pattern))
	}

	fmt.Fprintf(w, "  %-16s %-*s %-24s %s\n", "METHODS", patternWidth, "PATTERN", "NAME", "PRIORITY")
	for _, r := range routes {
		methods := make([]string, 0, len(r.Methods))
		for _, m := range r.Methods {
			methods = append(methods, methodColor(m)(m))
		}
		// pad on the uncolored width
		pad := 16 - len(strings.Join(r.Methods, ","))

		name := r.Name
		if name == "" {
			name = dim("-")
		}

		fmt.Fprintf(w, "  %s%s %-*s %-24s %d\n",
			strings.Join(methods, ","), strings.Repeat(" ", max(pad, 0)),
			patternWidth, r.Pattern, name, r.Priority)

		if len(r.Middleware) > 0 {
			refs := make([]string, 0, len(r.Middleware))
			for _, mw := range r.Middleware {
				refs = append(refs, describeRef(mw))
			}
			fmt.Fprintf(w, "  %s\n", dim("  └ middleware: "+strings.Join(refs, " → ")))
		}
	}

	fmt.Fprintf(w, "\n  %d routes\n\n", len(routes))
}

// methodColor returns the color function used for an HTTP method.
func methodColor(method string) func(a ...any) string {
	switch method {
	case http.MethodGet:
		return color.New(color.FgBlue).SprintFunc()
	case http.MethodPost:
		return color.New(color.FgGreen).SprintFunc()
	case http.MethodPut:
		return color.New(color.FgYellow).SprintFunc()
	case http.MethodDelete:
		return color.New(color.FgRed).SprintFunc()
	case http.MethodPatch:
		return color.New(color.FgMagenta).SprintFunc()
	default:
		return color.New(color.FgWhite).SprintFunc()
	}
}

// reportError prints err in the selected output mode and returns errReported.
func reportError(w io.Writer, opts *globalOptions, err error) error {
	if opts.jsonOutput {
		printJSONError(w, err)
	} else {
		red := color.New(color.FgRed).SprintFunc()
		fmt.Fprintf(w, "  %s %v\n", red("Error:"), err)
	}
	return errReported
}
