package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/abdul-hamid-achik/nexo-routes/pkg/definition"
	"github.com/abdul-hamid-achik/nexo-routes/pkg/resolver"
)

// JSONResponse is the standard response wrapper for JSON output
type JSONResponse struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// RoutesOutput represents the JSON output for the routes command
type RoutesOutput struct {
	Routes      []RouteOutput `json:"routes"`
	TotalRoutes int           `json:"total_routes"`
	Warnings    []string      `json:"warnings,omitempty"`
}

// RouteOutput represents a single resolved route in JSON output
type RouteOutput struct {
	Methods        []string          `json:"methods"`
	Pattern        string            `json:"pattern"`
	Name           string            `json:"name,omitempty"`
	Priority       int               `json:"priority"`
	Invokable      string            `json:"invokable"`
	Middleware     []string          `json:"middleware,omitempty"`
	Arguments      map[string]any    `json:"arguments,omitempty"`
	Parameters     map[string]string `json:"parameters,omitempty"`
	XMLHttpRequest bool              `json:"xml_http_request,omitempty"`
	Transformer    string            `json:"transformer,omitempty"`
}

// CheckOutput represents the JSON output for the check command
type CheckOutput struct {
	Valid      bool     `json:"valid"`
	Issues     []string `json:"issues,omitempty"`
	RouteCount int      `json:"route_count"`
	Warnings   []string `json:"warnings,omitempty"`
}

// OpenAPIOutput represents the JSON output for the openapi command
type OpenAPIOutput struct {
	Output string `json:"output"`
	Format string `json:"format"`
	Paths  int    `json:"paths"`
}

// VersionOutput represents the JSON output for the version command
type VersionOutput struct {
	Version       string `json:"version"`
	SchemaVersion int    `json:"schema_version"`
}

// printJSON outputs v as indented JSON
func printJSON(w io.Writer, v any) {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintf(os.Stderr, "Error encoding JSON: %v\n", err)
	}
}

// printSuccess outputs a successful JSON response
func printSuccess(w io.Writer, data any) {
	printJSON(w, JSONResponse{Success: true, Data: data})
}

// printJSONError outputs an error as JSON
func printJSONError(w io.Writer, err error) {
	printJSON(w, JSONResponse{Success: false, Error: err.Error()})
}

func toRouteOutput(r *resolver.Route) RouteOutput {
	out := RouteOutput{
		Methods:        r.Methods,
		Pattern:        r.Pattern,
		Name:           r.Name,
		Priority:       r.Priority,
		Invokable:      describeRef(r.Invokable),
		Arguments:      r.Arguments,
		Parameters:     r.Parameters,
		XMLHttpRequest: r.XMLHttpRequest,
	}

	for _, mw := range r.Middleware {
		out.Middleware = append(out.Middleware, describeRef(mw))
	}
	if r.Transformer != nil {
		out.Transformer = describeRef(r.Transformer)
	}

	return out
}

// describeRef renders a handler, middleware or transformer reference.
func describeRef(v any) string {
	switch ref := v.(type) {
	case string:
		return ref
	case [2]string:
		return ref[0] + "::" + ref[1]
	case []string:
		return strings.Join(ref, "::")
	default:
		return fmt.Sprintf("<%T>", v)
	}
}

func warningStrings(warnings []definition.Warning) []string {
	out := make([]string, 0, len(warnings))
	for _, w := range warnings {
		out = append(out, fmt.Sprintf("%s: %s", w.FilePath, w.Message))
	}
	return out
}
