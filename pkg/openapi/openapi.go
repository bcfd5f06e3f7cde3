// Package openapi describes a resolved route table as an OpenAPI document.
package openapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"gopkg.in/yaml.v3"

	"github.com/abdul-hamid-achik/nexo-routes/pkg/resolver"
)

// Config configures document generation.
type Config struct {
	// Title is the API title (default: "API").
	Title string

	// Version is the API version (default: "1.0.0").
	Version string

	// Description is the API description.
	Description string

	// Servers are the server URLs.
	Servers []string

	// OpenAPIVersion is the OpenAPI version (default: "3.1.0").
	OpenAPIVersion string
}

// Generator builds OpenAPI documents.
type Generator struct {
	config Config
}

// NewGenerator creates a Generator, filling in defaults.
func NewGenerator(config Config) *Generator {
	if config.Title == "" {
		config.Title = "API"
	}
	if config.Version == "" {
		config.Version = "1.0.0"
	}
	if config.OpenAPIVersion == "" {
		config.OpenAPIVersion = "3.1.0"
	}

	return &Generator{config: config}
}

// Generate builds the document. When two routes map to the same OpenAPI path
// and method, the first one in the table wins.
func (g *Generator) Generate(routes []*resolver.Route) *openapi3.T {
	doc := &openapi3.T{
		OpenAPI: g.config.OpenAPIVersion,
		Info: &openapi3.Info{
			Title:       g.config.Title,
			Version:     g.config.Version,
			Description: g.config.Description,
		},
		Paths: openapi3.NewPaths(),
	}

	for _, url := range g.config.Servers {
		doc.Servers = append(doc.Servers, &openapi3.Server{URL: url})
	}

	for _, route := range routes {
		path := Path(route.Pattern)

		item := doc.Paths.Value(path)
		existing := item != nil
		if !existing {
			item = &openapi3.PathItem{}
		}

		added := false
		for _, method := range route.Methods {
			if item.GetOperation(method) != nil {
				continue
			}
			if setOperation(item, method, buildOperation(route, method)) {
				added = true
			}
		}

		// routes with only non-standard methods leave no path behind
		if !existing && added {
			doc.Paths.Set(path, item)
		}
	}

	return doc
}

// GenerateJSON returns the document as indented JSON.
func (g *Generator) GenerateJSON(routes []*resolver.Route) ([]byte, error) {
	return json.MarshalIndent(g.Generate(routes), "", "  ")
}

// GenerateYAML returns the document as YAML.
func (g *Generator) GenerateYAML(routes []*resolver.Route) ([]byte, error) {
	return yaml.Marshal(g.Generate(routes))
}

// Render returns the document in the given format ("json", "yaml" or "yml").
func (g *Generator) Render(routes []*resolver.Route, format string) ([]byte, error) {
	switch strings.ToLower(format) {
	case "yaml", "yml":
		return g.GenerateYAML(routes)
	case "json":
		return g.GenerateJSON(routes)
	default:
		return nil, fmt.Errorf("unsupported format: %s (use json or yaml)", format)
	}
}

// WriteToFile writes the document to path.
func (g *Generator) WriteToFile(routes []*resolver.Route, path, format string) error {
	data, err := g.Render(routes, format)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Path converts a route pattern to an OpenAPI path template by dropping
// placeholder expressions: "/users/{id:\d+}" becomes "/users/{id}".
func Path(pattern string) string {
	path, err := resolver.ReplacePlaceholders(pattern, func(p resolver.Placeholder) (string, error) {
		return "{" + p.Name + "}", nil
	})
	if err != nil {
		return pattern
	}
	return path
}

// setOperation is PathItem.SetOperation without the panic on methods the
// document model has no slot for. It reports whether op was set.
func setOperation(item *openapi3.PathItem, method string, op *openapi3.Operation) bool {
	switch method {
	case http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete,
		http.MethodHead, http.MethodOptions, http.MethodConnect, http.MethodTrace:
		item.SetOperation(method, op)
		return true
	}
	return false
}

func buildOperation(route *resolver.Route, method string) *openapi3.Operation {
	op := &openapi3.Operation{
		Summary:   route.Name,
		Responses: openapi3.NewResponses(),
	}

	if route.Name != "" {
		op.OperationID = route.Name
		if len(route.Methods) > 1 {
			op.OperationID += "_" + strings.ToLower(method)
		}
	}

	if tag := rootGroup(route); tag != "" {
		op.Tags = []string{tag}
	}

	params := buildParameters(route)
	if len(params) > 0 {
		op.Parameters = params
	}

	op.Responses.Set("200", &openapi3.ResponseRef{
		Value: &openapi3.Response{
			Description: openapi3.Ptr("Success"),
		},
	})

	if len(params) > 0 {
		op.Responses.Set("404", &openapi3.ResponseRef{
			Value: &openapi3.Response{
				Description: openapi3.Ptr("Not Found"),
			},
		})
	}

	if route.Transformer != nil && len(route.Parameters) > 0 {
		op.Responses.Set("400", &openapi3.ResponseRef{
			Value: &openapi3.Response{
				Description: openapi3.Ptr("Bad Request"),
			},
		})
	}

	return op
}

// buildParameters describes the route's path placeholders. Expressions
// become schema patterns and type tags pick the schema type.
func buildParameters(route *resolver.Route) openapi3.Parameters {
	var params openapi3.Parameters

	for _, p := range route.Placeholders() {
		schema := &openapi3.Schema{
			Type: &openapi3.Types{schemaType(route.Parameters[p.Name])},
		}
		if p.Expr != "" {
			schema.Pattern = "^" + p.Expr + "$"
		}

		params = append(params, &openapi3.ParameterRef{
			Value: &openapi3.Parameter{
				Name:        p.Name,
				In:          openapi3.ParameterInPath,
				Required:    true,
				Description: fmt.Sprintf("%s parameter", p.Name),
				Schema:      &openapi3.SchemaRef{Value: schema},
			},
		})
	}

	return params
}

func schemaType(tag string) string {
	switch tag {
	case "int", "integer":
		return openapi3.TypeInteger
	case "float", "number":
		return openapi3.TypeNumber
	case "bool", "boolean":
		return openapi3.TypeBoolean
	default:
		return openapi3.TypeString
	}
}

// rootGroup returns the ID of the outermost group of the route, if any.
func rootGroup(route *resolver.Route) string {
	if route.Source == nil || route.Source.Group == nil {
		return ""
	}

	g := route.Source.Group
	for g.Parent != nil {
		g = g.Parent
	}
	return g.ID
}
