package resolver

import "github.com/abdul-hamid-achik/nexo-routes/pkg/metadata"

// Route is a fully resolved route, ready for registration.
type Route struct {
	// Methods are the expanded HTTP methods (never "ANY")
	Methods []string

	// Pattern is the full pattern in chi format (e.g. "/users/{id:\d+}")
	Pattern string

	// Name is the composed route name, empty for unnamed routes
	Name string

	// Middleware is ordered route first, root group last
	Middleware []any

	// Arguments and Parameters are merged across the group chain
	Arguments  map[string]any
	Parameters map[string]string

	Priority       int
	XMLHttpRequest bool
	Transformer    any
	Invokable      any

	// Source is the metadata the route was resolved from
	Source *metadata.Route
}

// Placeholders returns the route's path placeholders in order.
func (r *Route) Placeholders() []Placeholder {
	return Placeholders(r.Pattern)
}
