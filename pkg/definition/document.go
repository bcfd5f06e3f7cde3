// Package definition loads route and group declarations from structured
// files (YAML, or JSON which the YAML decoder also accepts) and builds the
// metadata records the resolver works on.
package definition

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Document is the content of a single definition file.
type Document struct {
	Groups []GroupSpec `yaml:"groups"`
	Routes []RouteSpec `yaml:"routes"`
}

// Fragment holds the fields shared by groups and routes.
type Fragment struct {
	Pattern      string            `yaml:"pattern"`
	Placeholders map[string]string `yaml:"placeholders"`
	Parameters   map[string]string `yaml:"parameters"`
	Arguments    map[string]any    `yaml:"arguments"`
	Middleware   []any             `yaml:"middleware"`
}

// GroupSpec declares a group. Parent refers to another group's ID, possibly
// declared in a different file.
type GroupSpec struct {
	Fragment `yaml:",inline"`

	ID     string `yaml:"id"`
	Parent string `yaml:"parent"`
	Prefix string `yaml:"prefix"`
}

// RouteSpec declares a route.
type RouteSpec struct {
	Fragment `yaml:",inline"`

	Name           string     `yaml:"name"`
	Methods        StringList `yaml:"methods"`
	Invokable      any        `yaml:"invokable"`
	Group          string     `yaml:"group"`
	Priority       int        `yaml:"priority"`
	XMLHttpRequest bool       `yaml:"xmlHttpRequest"`
	Transformer    string     `yaml:"transformer"`
}

// StringList accepts either a sequence of strings or a single scalar.
// A scalar may hold several comma-separated values ("GET, POST").
type StringList []string

// UnmarshalYAML implements yaml.Unmarshaler.
func (l *StringList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		var out []string
		for _, part := range strings.Split(value.Value, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
		*l = out
		return nil
	case yaml.SequenceNode:
		var out []string
		if err := value.Decode(&out); err != nil {
			return err
		}
		*l = out
		return nil
	default:
		return fmt.Errorf("line %d: expected a string or a list of strings", value.Line)
	}
}

// Parse decodes a definition document. Unknown keys are rejected.
func Parse(data []byte) (*Document, error) {
	doc := &Document{}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}

	return doc, nil
}

// LoadFile reads and parses a definition file.
func LoadFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	doc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	return doc, nil
}

// normalizeInvokable converts decoded YAML values to the shapes accepted by
// metadata.ValidateInvokable. A two-element list of strings becomes a [2]string.
func normalizeInvokable(v any) any {
	list, ok := v.([]any)
	if !ok || len(list) != 2 {
		return v
	}

	first, ok1 := list[0].(string)
	second, ok2 := list[1].(string)
	if !ok1 || !ok2 {
		return v
	}

	return [2]string{first, second}
}
