package commands

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/abdul-hamid-achik/nexo-routes/internal/project"
	"github.com/abdul-hamid-achik/nexo-routes/pkg/openapi"
)

type openapiOptions struct {
	output      string
	format      string
	title       string
	version     string
	description string
	servers     []string
	openapi30   bool
}

func newOpenAPICmd(opts *globalOptions) *cobra.Command {
	o := &openapiOptions{}

	cmd := &cobra.Command{
		Use:   "openapi [paths...]",
		Short: "Generate an OpenAPI document from the route table",
		Long: `Generate an OpenAPI 3.1 document describing the resolved route table.

Placeholder expressions become path parameter patterns and parameter type
tags (int, float, bool) become schema types. Document metadata defaults to
the openapi section of the config file.

Examples:
  nexo-routes openapi
  nexo-routes openapi --format yaml --output api.yaml
  nexo-routes openapi --output - --title "Users API"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOpenAPI(cmd, opts, o, args)
		},
	}

	cmd.Flags().StringVarP(&o.output, "output", "o", "openapi.json", "Output file path (- for stdout)")
	cmd.Flags().StringVarP(&o.format, "format", "f", "json", "Output format (json|yaml)")
	cmd.Flags().StringVar(&o.title, "title", "", "API title (overrides config)")
	cmd.Flags().StringVar(&o.version, "api-version", "", "API version (overrides config)")
	cmd.Flags().StringVar(&o.description, "description", "", "API description (overrides config)")
	cmd.Flags().StringSliceVar(&o.servers, "server", nil, "Server URL, repeatable (overrides config)")
	cmd.Flags().BoolVar(&o.openapi30, "openapi30", false, "Use OpenAPI 3.0.3 instead of 3.1.0")

	return cmd
}

func runOpenAPI(cmd *cobra.Command, opts *globalOptions, o *openapiOptions, args []string) error {
	out := cmd.OutOrStdout()
	green := color.New(color.FgGreen).SprintFunc()

	cfg, log, err := opts.setup()
	if err != nil {
		return reportError(out, opts, err)
	}

	table, err := project.Resolve(cfg, log, project.Paths(cfg, args))
	if err != nil {
		return reportError(out, opts, err)
	}

	config := openapi.Config{
		Title:       firstNonEmpty(o.title, cfg.OpenAPI.Title),
		Version:     firstNonEmpty(o.version, cfg.OpenAPI.Version),
		Description: firstNonEmpty(o.description, cfg.OpenAPI.Description),
		Servers:     cfg.OpenAPI.Servers,
	}
	if len(o.servers) > 0 {
		config.Servers = o.servers
	}
	if o.openapi30 {
		config.OpenAPIVersion = "3.0.3"
	}

	gen := openapi.NewGenerator(config)

	if o.output == "-" {
		data, err := gen.Render(table.Routes, o.format)
		if err != nil {
			return reportError(out, opts, err)
		}
		_, err = out.Write(data)
		return err
	}

	if err := gen.WriteToFile(table.Routes, o.output, o.format); err != nil {
		return reportError(out, opts, fmt.Errorf("failed to write %s: %w", o.output, err))
	}

	paths := gen.Generate(table.Routes).Paths.Len()

	if opts.jsonOutput {
		printSuccess(out, OpenAPIOutput{Output: o.output, Format: o.format, Paths: paths})
		return nil
	}

	fmt.Fprintf(out, "  %s Wrote %s (%d paths)\n", green("✓"), o.output, paths)
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
