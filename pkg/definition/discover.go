package definition

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/abdul-hamid-achik/nexo-routes/pkg/metadata"
)

// knownPrivateFolders contains folder names that are never scanned
var knownPrivateFolders = map[string]bool{
	"node_modules": true,
	"vendor":       true,
	"testdata":     true,
}

// definitionExtensions are the accepted file extensions
var definitionExtensions = map[string]bool{
	".yaml": true,
	".yml":  true,
	".json": true,
}

// Warning is a non-fatal issue encountered while loading definitions.
type Warning struct {
	FilePath string
	Message  string
}

// DiscoverResult holds the definition files found under a directory.
type DiscoverResult struct {
	// Files are the discovered definition files, in lexical order
	Files []string
	// Warnings are non-fatal issues encountered during the walk
	Warnings []Warning
}

// IsPrivateFolder checks if a directory should be skipped during discovery.
func IsPrivateFolder(name string) bool {
	// Hidden and underscore-prefixed directories
	if strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") {
		return true
	}
	return knownPrivateFolders[name]
}

// IsDefinitionFile reports whether a file name looks like a route definition:
// routes.yaml, routes.yml, routes.json or *.routes.{yaml,yml,json}.
func IsDefinitionFile(name string) bool {
	ext := filepath.Ext(name)
	if !definitionExtensions[ext] {
		return false
	}
	base := strings.TrimSuffix(name, ext)
	return base == "routes" || strings.HasSuffix(base, ".routes")
}

// Discover walks root and collects definition files.
func Discover(root string) (*DiscoverResult, error) {
	result := &DiscoverResult{}

	// Not an error if the directory doesn't exist - just no definitions
	if _, err := os.Stat(root); os.IsNotExist(err) {
		return result, nil
	}

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			result.Warnings = append(result.Warnings, Warning{
				FilePath: path,
				Message:  err.Error(),
			})
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			if path != root && IsPrivateFolder(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}

		if IsDefinitionFile(d.Name()) {
			result.Files = append(result.Files, path)
		}

		return nil
	})

	return result, err
}

// Load builds route metadata from a mix of files and directories.
//
// Explicitly listed files must parse. Files discovered inside a directory
// that fail to parse are skipped and reported as warnings.
func Load(paths ...string) ([]*metadata.Route, []Warning, error) {
	set := NewSet()
	var warnings []Warning

	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, warnings, err
		}

		if !info.IsDir() {
			doc, err := LoadFile(p)
			if err != nil {
				return nil, warnings, err
			}
			set.Add(p, doc)
			continue
		}

		discovered, err := Discover(p)
		if err != nil {
			return nil, warnings, fmt.Errorf("failed to scan %s: %w", p, err)
		}
		warnings = append(warnings, discovered.Warnings...)

		for _, file := range discovered.Files {
			doc, err := LoadFile(file)
			if err != nil {
				warnings = append(warnings, Warning{
					FilePath: file,
					Message:  err.Error(),
				})
				continue
			}
			set.Add(file, doc)
		}
	}

	routes, err := set.Build()
	if err != nil {
		return nil, warnings, err
	}

	return routes, warnings, nil
}
