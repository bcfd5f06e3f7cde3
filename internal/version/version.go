// Package version provides version information for the nexo-routes CLI.
package version

// Version is set via ldflags during build.
var Version = "dev"

// DefinitionSchemaVersion is bumped when the route definition file format
// changes incompatibly.
const DefinitionSchemaVersion = 1

// GetVersion returns the current version string.
func GetVersion() string {
	return Version
}

// GetDefinitionSchemaVersion returns the definition file schema version.
func GetDefinitionSchemaVersion() int {
	return DefinitionSchemaVersion
}
