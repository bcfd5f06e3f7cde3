// Package nexo mounts a resolved route table on a chi router.
package nexo

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/abdul-hamid-achik/nexo-routes/pkg/resolver"
)

var (
	// ErrUnknownRoute is returned by URLFor for a name no mounted route carries.
	ErrUnknownRoute = errors.New("unknown route")

	// ErrMissingParameter is returned by URLFor when a placeholder has no value.
	ErrMissingParameter = errors.New("missing parameter")

	// ErrInvalidParameter is returned by URLFor when a value does not match
	// its placeholder expression.
	ErrInvalidParameter = errors.New("invalid parameter")
)

// standardMethods are the methods chi knows without registration.
var standardMethods = map[string]bool{
	http.MethodGet:     true,
	http.MethodHead:    true,
	http.MethodPost:    true,
	http.MethodPut:     true,
	http.MethodPatch:   true,
	http.MethodDelete:  true,
	http.MethodConnect: true,
	http.MethodOptions: true,
	http.MethodTrace:   true,
}

// Router serves a resolved route table.
type Router struct {
	mux      chi.Router
	registry *Registry
	logger   logrus.FieldLogger

	routes []*resolver.Route
	named  map[string]*resolver.Route
}

// Option configures a Router.
type Option func(*Router)

// WithLogger sets the logger used while mounting.
func WithLogger(l logrus.FieldLogger) Option {
	return func(rt *Router) {
		rt.logger = l
	}
}

// WithMux mounts routes on an existing chi router.
func WithMux(mux chi.Router) Option {
	return func(rt *Router) {
		rt.mux = mux
	}
}

// NewRouter creates a Router resolving references through registry.
func NewRouter(registry *Registry, opts ...Option) *Router {
	if registry == nil {
		registry = NewRegistry()
	}

	rt := &Router{
		registry: registry,
		named:    make(map[string]*resolver.Route),
	}
	for _, opt := range opts {
		opt(rt)
	}

	if rt.mux == nil {
		rt.mux = chi.NewRouter()
	}
	if rt.logger == nil {
		l := logrus.New()
		l.SetLevel(logrus.WarnLevel)
		rt.logger = l
	}

	return rt
}

// Use appends global middleware. Like chi, it must be called before Mount.
func (rt *Router) Use(middlewares ...func(http.Handler) http.Handler) {
	rt.mux.Use(middlewares...)
}

// Mux returns the underlying chi router.
func (rt *Router) Mux() chi.Router {
	return rt.mux
}

// ServeHTTP implements http.Handler.
func (rt *Router) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rt.mux.ServeHTTP(w, r)
}

// Routes returns the mounted routes in registration order.
func (rt *Router) Routes() []*resolver.Route {
	out := make([]*resolver.Route, len(rt.routes))
	copy(out, rt.routes)
	return out
}

// mountable is a route with all of its references resolved.
type mountable struct {
	route   *resolver.Route
	handler http.Handler
}

// Mount registers routes in the order given, which should be the resolver's
// sorted order. Every reference is resolved and every pattern is checked
// before anything is registered, so a failed Mount leaves the router as it was.
func (rt *Router) Mount(routes []*resolver.Route) error {
	prepared := make([]mountable, 0, len(routes))
	for _, route := range routes {
		h, err := rt.build(route)
		if err != nil {
			return fmt.Errorf("route %s: %w", label(route), err)
		}
		prepared = append(prepared, mountable{route: route, handler: h})
	}

	if err := rt.check(prepared); err != nil {
		return err
	}

	if err := register(func() {
		for _, m := range prepared {
			for _, method := range m.route.Methods {
				rt.mux.Method(method, m.route.Pattern, m.handler)
			}
		}
	}); err != nil {
		return err
	}

	for _, m := range prepared {
		rt.routes = append(rt.routes, m.route)
		if m.route.Name != "" {
			rt.named[m.route.Name] = m.route
		}

		rt.logger.WithFields(logrus.Fields{
			"name":    m.route.Name,
			"methods": strings.Join(m.route.Methods, ","),
			"pattern": m.route.Pattern,
		}).Debug("mounted route")
	}

	rt.logger.WithField("routes", len(prepared)).Info("routes mounted")
	return nil
}

// check registers the already mounted routes and the prepared ones on a
// scratch router, where chi reports malformed or conflicting patterns.
func (rt *Router) check(prepared []mountable) error {
	scratch := chi.NewRouter()
	stub := http.NotFoundHandler()

	return register(func() {
		for _, route := range rt.routes {
			for _, method := range route.Methods {
				scratch.Method(method, route.Pattern, stub)
			}
		}
		for _, m := range prepared {
			for _, method := range m.route.Methods {
				if !standardMethods[method] {
					chi.RegisterMethod(method)
				}
				scratch.Method(method, m.route.Pattern, stub)
			}
		}
	})
}

// register runs fn, turning a chi panic into an error.
func register(fn func()) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("failed to mount routes: %v", p)
		}
	}()

	fn()
	return nil
}

// build creates the handler chain of a route. From the outside in: the
// XMLHttpRequest guard, request context setup, root group middleware down to
// the route's own middleware, then the handler.
func (rt *Router) build(route *resolver.Route) (http.Handler, error) {
	h, err := rt.registry.handler(route.Invokable)
	if err != nil {
		return nil, err
	}

	for _, ref := range route.Middleware {
		mw, err := rt.registry.middlewareFor(ref)
		if err != nil {
			return nil, err
		}
		h = mw(h)
	}

	transformer, err := rt.registry.transformerFor(route.Transformer)
	if err != nil {
		return nil, err
	}

	h = withRequestContext(route, transformer, h)
	if route.XMLHttpRequest {
		h = requireXMLHttpRequest(h)
	}

	return h, nil
}

func withRequestContext(route *resolver.Route, transformer Transformer, next http.Handler) http.Handler {
	placeholders := route.Placeholders()

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := make(map[string]string, len(placeholders))
		for _, p := range placeholders {
			raw[p.Name] = chi.URLParam(r, p.Name)
		}

		var params map[string]any
		if transformer != nil {
			var err error
			params, err = transformer.Transform(raw, route.Parameters)
			if err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
		} else {
			params = make(map[string]any, len(raw))
			for k, v := range raw {
				params[k] = v
			}
		}

		ctx := withRoute(r.Context(), route.Name, route.Arguments, params)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func requireXMLHttpRequest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.EqualFold(r.Header.Get("X-Requested-With"), "XMLHttpRequest") {
			http.NotFound(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// URLFor builds the path of a named route.
func (rt *Router) URLFor(name string, params map[string]string) (string, error) {
	route, ok := rt.named[name]
	if !ok {
		return "", fmt.Errorf("%w %q", ErrUnknownRoute, name)
	}
	return BuildURL(route, params)
}

// BuildURL fills the placeholders of a route's pattern with params. Every
// value must match its placeholder expression and is path-escaped.
func BuildURL(route *resolver.Route, params map[string]string) (string, error) {
	return resolver.ReplacePlaceholders(route.Pattern, func(p resolver.Placeholder) (string, error) {
		value, ok := params[p.Name]
		if !ok || value == "" {
			return "", fmt.Errorf("%w %q for route %s", ErrMissingParameter, p.Name, label(route))
		}

		if p.Expr != "" {
			re, err := regexp.Compile("^(?:" + p.Expr + ")$")
			if err != nil {
				return "", err
			}
			if !re.MatchString(value) {
				return "", fmt.Errorf("%w: %q does not match %s", ErrInvalidParameter, value, p.Expr)
			}
		}

		return url.PathEscape(value), nil
	})
}

func label(route *resolver.Route) string {
	if route.Name != "" {
		return route.Name
	}
	return strings.Join(route.Methods, ",") + " " + route.Pattern
}
