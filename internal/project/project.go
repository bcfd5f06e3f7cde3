// Package project loads and resolves the route table of a working directory.
package project

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/abdul-hamid-achik/nexo-routes/internal/config"
	"github.com/abdul-hamid-achik/nexo-routes/pkg/definition"
	"github.com/abdul-hamid-achik/nexo-routes/pkg/resolver"
)

// Table is the outcome of loading and resolving definitions.
type Table struct {
	Routes   []*resolver.Route
	Warnings []definition.Warning
}

// Paths returns args, or the configured definition paths when args is empty.
func Paths(cfg *config.Config, args []string) []string {
	if len(args) > 0 {
		return args
	}
	return cfg.Definitions
}

// Resolve loads definitions from paths and resolves them with the resolver
// settings of cfg. The returned Table is never nil; on error it carries the
// warnings collected so far.
func Resolve(cfg *config.Config, log logrus.FieldLogger, paths []string) (*Table, error) {
	routes, warnings, err := definition.Load(paths...)
	if err != nil {
		return &Table{Warnings: warnings}, err
	}

	for _, w := range warnings {
		log.WithField("file", w.FilePath).Warn(w.Message)
	}

	r := resolver.New(
		resolver.WithNamingStrategy(cfg.Strategy()),
		resolver.WithAliases(cfg.Aliases),
		resolver.WithLogger(log),
	)

	resolved, err := r.Resolve(routes)
	if err != nil {
		return &Table{Warnings: warnings}, err
	}

	return &Table{Routes: resolved, Warnings: warnings}, nil
}

// LoadConfig reads dir/nexo-routes.yaml, falling back to the defaults when
// the file does not exist. Relative definition paths are made relative to dir.
func LoadConfig(dir string) (*config.Config, error) {
	path := filepath.Join(dir, config.FileName+".yaml")

	cfg := config.Default()
	if _, err := os.Stat(path); err == nil {
		if cfg, err = config.Load(path); err != nil {
			return nil, err
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	for i, p := range cfg.Definitions {
		if !filepath.IsAbs(p) {
			cfg.Definitions[i] = filepath.Join(dir, p)
		}
	}

	return cfg, nil
}
