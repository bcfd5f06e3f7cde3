// Package metadata holds the declarative route and group records that the
// resolver turns into a route table.
//
// Records are built once by a loader (see package definition) and are treated
// as read-only afterwards. Groups are shared, not owned: any number of routes
// and child groups may point at the same Group.
package metadata

import (
	"errors"
	"fmt"
	"net/http"
)

// MethodAny is shorthand for every method in AnyMethods.
const MethodAny = "ANY"

// AnyMethods are the methods a sole MethodAny expands to.
var AnyMethods = []string{
	http.MethodGet,
	http.MethodPost,
	http.MethodPut,
	http.MethodPatch,
	http.MethodDelete,
}

var (
	// ErrInvalidInvokable is returned when a route handler reference has an unsupported shape.
	ErrInvalidInvokable = errors.New("invalid invokable")

	// ErrNoMethods is returned when a route declares no HTTP methods.
	ErrNoMethods = errors.New("route has no HTTP methods")
)

// PathFragment is the set of composable fields shared by routes and groups.
// Every field describes the record's own level only; merging across the group
// chain is the resolver's job.
type PathFragment struct {
	// Pattern is the URI fragment (e.g. "/users/{id}"), may be empty
	Pattern string

	// Placeholders maps placeholder names to a regex or an alias (e.g. "numeric")
	Placeholders map[string]string

	// Parameters maps parameter names to type tags for the transformer
	Parameters map[string]string

	// Arguments is an opaque payload injected into the handler
	Arguments map[string]any

	// Middleware is an ordered list of opaque middleware references
	Middleware []any
}

// Group is a reusable bundle of pattern prefix, placeholders, middleware,
// arguments, parameters and naming prefix.
type Group struct {
	PathFragment

	// ID identifies the group in definition files and error messages
	ID string

	// Prefix is used only when composing route names
	Prefix string

	// Parent is the enclosing group, if any
	Parent *Group
}

// String returns the group ID for diagnostics.
func (g *Group) String() string {
	if g == nil {
		return "<nil>"
	}
	if g.ID == "" {
		return "<anonymous>"
	}
	return g.ID
}

// Route is a single endpoint definition.
type Route struct {
	PathFragment

	// Invokable references the request handler. It is validated for shape
	// only: a string, a pair of strings or an http handler function.
	Invokable any

	// Name is the route's own name segment (optional)
	Name string

	// Methods are the HTTP methods; "ANY" alone means every method in AnyMethods
	Methods []string

	// Priority orders registration, lower first
	Priority int

	// XMLHttpRequest restricts the route to XMLHttpRequest calls
	XMLHttpRequest bool

	// Transformer references the parameter transformer (optional)
	Transformer any

	// Group is the route's direct group, if any
	Group *Group
}

// Validate checks the route's own shape. It does not look at the group chain.
func (r *Route) Validate() error {
	if len(r.Methods) == 0 {
		return ErrNoMethods
	}
	return ValidateInvokable(r.Invokable)
}

// ValidateInvokable checks that v is a supported handler reference.
//
// Supported shapes:
//   - a non-empty string ("users.show")
//   - a pair of non-empty strings ([2]string or a two-element []string)
//   - http.Handler, http.HandlerFunc or func(http.ResponseWriter, *http.Request)
func ValidateInvokable(v any) error {
	switch inv := v.(type) {
	case string:
		if inv == "" {
			return fmt.Errorf("%w: empty string", ErrInvalidInvokable)
		}
		return nil
	case [2]string:
		return validatePair(inv[0], inv[1])
	case []string:
		if len(inv) != 2 {
			return fmt.Errorf("%w: expected 2 elements, got %d", ErrInvalidInvokable, len(inv))
		}
		return validatePair(inv[0], inv[1])
	case http.HandlerFunc:
		if inv == nil {
			return fmt.Errorf("%w: nil handler", ErrInvalidInvokable)
		}
		return nil
	case func(http.ResponseWriter, *http.Request):
		if inv == nil {
			return fmt.Errorf("%w: nil handler", ErrInvalidInvokable)
		}
		return nil
	case http.Handler:
		return nil
	case nil:
		return fmt.Errorf("%w: missing", ErrInvalidInvokable)
	default:
		return fmt.Errorf("%w: unsupported type %T", ErrInvalidInvokable, v)
	}
}

func validatePair(first, second string) error {
	if first == "" || second == "" {
		return fmt.Errorf("%w: pair elements must not be empty", ErrInvalidInvokable)
	}
	return nil
}
