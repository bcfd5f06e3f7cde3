package commands

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/huh"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/abdul-hamid-achik/nexo-routes/internal/config"
	"github.com/abdul-hamid-achik/nexo-routes/pkg/naming"
)

// errFileExists is returned when init would overwrite a file without --force.
var errFileExists = errors.New("file already exists")

const sampleDefinitions = `# Route definitions. Groups nest through "parent"; routes join a group
# through "group". Placeholders take an alias (numeric, alpha, alnum, any)
# or a regular expression.
groups:
  - id: api
    pattern: /api
    prefix: api
  - id: users
    parent: api
    pattern: /users
    prefix: users
    placeholders:
      id: numeric

routes:
  - name: health
    methods: [GET, HEAD]
    pattern: /health
    invokable: health
    group: api

  - name: show
    methods: GET
    pattern: /{id}
    parameters:
      id: int
    transformer: typed
    invokable: [UserController, show]
    group: users
`

type initOptions struct {
	naming      string
	definitions string
	title       string
	force       bool
	yes         bool
}

// scaffoldConfig is the layout of the generated config file.
type scaffoldConfig struct {
	Naming      string   `yaml:"naming"`
	Definitions []string `yaml:"definitions"`
	Log         struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
	OpenAPI struct {
		Title   string `yaml:"title"`
		Version string `yaml:"version"`
	} `yaml:"openapi"`
}

func newInitCmd(opts *globalOptions) *cobra.Command {
	o := &initOptions{}

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Create a config file and sample route definitions",
		Long: `Create nexo-routes.yaml and a sample routes.yaml in the target directory
(default: the current directory). In a terminal the naming strategy and the
definitions directory are asked for interactively unless --yes is given.

Examples:
  nexo-routes init
  nexo-routes init --yes --naming dot
  nexo-routes init ./service --definitions defs`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			return runInit(cmd, opts, o, dir)
		},
	}

	cmd.Flags().StringVar(&o.naming, "naming", "snake", "Route name strategy (snake|dot|camel)")
	cmd.Flags().StringVar(&o.definitions, "definitions", "routes", "Directory for route definitions")
	cmd.Flags().StringVar(&o.title, "title", "API", "OpenAPI document title")
	cmd.Flags().BoolVarP(&o.force, "force", "f", false, "Overwrite existing files")
	cmd.Flags().BoolVarP(&o.yes, "yes", "y", false, "Skip the interactive prompts")

	return cmd
}

func runInit(cmd *cobra.Command, opts *globalOptions, o *initOptions, dir string) error {
	out := cmd.OutOrStdout()
	green := color.New(color.FgGreen).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()

	if !o.yes && !opts.jsonOutput && isTerminal(os.Stdin) && isTerminal(os.Stdout) {
		form := huh.NewForm(
			huh.NewGroup(
				huh.NewSelect[string]().
					Title("Route name strategy").
					Description("How group prefixes and route names are joined").
					Options(
						huh.NewOption("snake  (api_users_show)", "snake"),
						huh.NewOption("dot    (api.users.show)", "dot"),
						huh.NewOption("camel  (apiUsersShow)", "camel"),
					).
					Value(&o.naming),
				huh.NewInput().
					Title("Definitions directory").
					Value(&o.definitions),
			),
		)
		if err := form.Run(); err != nil {
			fmt.Fprintf(out, "  %s Cancelled\n", yellow("!"))
			return errReported
		}
	}

	created, err := scaffold(dir, o)
	if err != nil {
		return reportError(out, opts, err)
	}

	if opts.jsonOutput {
		printSuccess(out, map[string]any{"created": created})
		return nil
	}

	for _, f := range created {
		fmt.Fprintf(out, "  %s Created %s\n", green("✓"), f)
	}
	fmt.Fprintf(out, "\n  Next: nexo-routes routes\n\n")
	return nil
}

// scaffold writes the config file and the sample definitions into dir.
func scaffold(dir string, o *initOptions) ([]string, error) {
	if _, err := naming.Lookup(o.naming); err != nil {
		return nil, err
	}

	cfg := scaffoldConfig{
		Naming:      o.naming,
		Definitions: []string{o.definitions},
	}
	cfg.Log.Level = "info"
	cfg.Log.Format = "text"
	cfg.OpenAPI.Title = o.title
	cfg.OpenAPI.Version = "1.0.0"

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, err
	}

	files := []struct {
		path    string
		content []byte
	}{
		{filepath.Join(dir, config.FileName+".yaml"), data},
		{filepath.Join(dir, o.definitions, "routes.yaml"), []byte(sampleDefinitions)},
	}

	if !o.force {
		for _, f := range files {
			if _, err := os.Stat(f.path); err == nil {
				return nil, fmt.Errorf("%w: %s (use --force to overwrite)", errFileExists, f.path)
			}
		}
	}

	created := make([]string, 0, len(files))
	for _, f := range files {
		if err := os.MkdirAll(filepath.Dir(f.path), 0755); err != nil {
			return created, err
		}
		if err := os.WriteFile(f.path, f.content, 0644); err != nil {
			return created, err
		}
		created = append(created, f.path)
	}

	return created, nil
}
