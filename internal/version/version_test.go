package version

import "testing"

func TestGetVersion(t *testing.T) {
	v := GetVersion()
	if v == "" {
		t.Error("GetVersion() should not return empty string")
	}
	if v != Version {
		t.Errorf("GetVersion() = %q, want %q", v, Version)
	}
}

func TestGetVersion_Modified(t *testing.T) {
	original := Version
	defer func() { Version = original }()

	Version = "v0.4.0"
	if v := GetVersion(); v != "v0.4.0" {
		t.Errorf("GetVersion() = %q, want v0.4.0", v)
	}
}

func TestGetDefinitionSchemaVersion(t *testing.T) {
	if v := GetDefinitionSchemaVersion(); v != DefinitionSchemaVersion || v < 1 {
		t.Errorf("GetDefinitionSchemaVersion() = %d, want %d (>= 1)", v, DefinitionSchemaVersion)
	}
}
