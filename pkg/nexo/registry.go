package nexo

import (
	"errors"
	"fmt"
	"net/http"
	"sync"
)

var (
	// ErrUnknownHandler is returned when a route's invokable names an unregistered handler.
	ErrUnknownHandler = errors.New("unknown handler")

	// ErrUnknownMiddleware is returned for an unregistered middleware name.
	ErrUnknownMiddleware = errors.New("unknown middleware")

	// ErrUnknownTransformer is returned for an unregistered transformer name.
	ErrUnknownTransformer = errors.New("unknown transformer")

	// ErrUnsupportedReference is returned for values that cannot be turned into
	// a handler, middleware or transformer.
	ErrUnsupportedReference = errors.New("unsupported reference")
)

// MiddlewareFunc wraps an http.Handler.
type MiddlewareFunc func(next http.Handler) http.Handler

// Registry maps the names used in route metadata to Go values.
// It is safe for concurrent use.
type Registry struct {
	mu           sync.RWMutex
	handlers     map[string]http.Handler
	middleware   map[string]MiddlewareFunc
	transformers map[string]Transformer
}

// NewRegistry creates a Registry with the "typed" transformer pre-registered.
func NewRegistry() *Registry {
	return &Registry{
		handlers:     make(map[string]http.Handler),
		middleware:   make(map[string]MiddlewareFunc),
		transformers: map[string]Transformer{"typed": DefaultTransformer},
	}
}

// Handle registers a handler under name.
func (r *Registry) Handle(name string, h http.Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[name] = h
}

// HandleFunc registers a handler function under name.
func (r *Registry) HandleFunc(name string, fn http.HandlerFunc) {
	r.Handle(name, fn)
}

// HandleAction registers a handler for the invokable pair [controller, action].
func (r *Registry) HandleAction(controller, action string, h http.Handler) {
	r.Handle(actionKey(controller, action), h)
}

// Middleware registers a middleware under name.
func (r *Registry) Middleware(name string, mw MiddlewareFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.middleware[name] = mw
}

// Transformer registers a parameter transformer under name.
func (r *Registry) Transformer(name string, t Transformer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.transformers[name] = t
}

func actionKey(controller, action string) string {
	return controller + "::" + action
}

// handler turns a route invokable into an http.Handler.
func (r *Registry) handler(invokable any) (http.Handler, error) {
	switch v := invokable.(type) {
	case http.Handler:
		return v, nil
	case func(http.ResponseWriter, *http.Request):
		return http.HandlerFunc(v), nil
	case string:
		return r.lookupHandler(v)
	case [2]string:
		return r.lookupHandler(actionKey(v[0], v[1]))
	case []string:
		if len(v) != 2 {
			return nil, fmt.Errorf("%w: invokable pair of %d elements", ErrUnsupportedReference, len(v))
		}
		return r.lookupHandler(actionKey(v[0], v[1]))
	default:
		return nil, fmt.Errorf("%w: invokable of type %T", ErrUnsupportedReference, invokable)
	}
}

func (r *Registry) lookupHandler(key string) (http.Handler, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	h, ok := r.handlers[key]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownHandler, key)
	}
	return h, nil
}

// middlewareFor resolves a middleware reference.
func (r *Registry) middlewareFor(ref any) (MiddlewareFunc, error) {
	switch v := ref.(type) {
	case MiddlewareFunc:
		return v, nil
	case func(http.Handler) http.Handler:
		return v, nil
	case string:
		r.mu.RLock()
		defer r.mu.RUnlock()
		mw, ok := r.middleware[v]
		if !ok {
			return nil, fmt.Errorf("%w %q", ErrUnknownMiddleware, v)
		}
		return mw, nil
	default:
		return nil, fmt.Errorf("%w: middleware of type %T", ErrUnsupportedReference, ref)
	}
}

// transformerFor resolves a transformer reference. A nil reference means no
// transformation.
func (r *Registry) transformerFor(ref any) (Transformer, error) {
	switch v := ref.(type) {
	case nil:
		return nil, nil
	case Transformer:
		return v, nil
	case string:
		r.mu.RLock()
		defer r.mu.RUnlock()
		t, ok := r.transformers[v]
		if !ok {
			return nil, fmt.Errorf("%w %q", ErrUnknownTransformer, v)
		}
		return t, nil
	default:
		return nil, fmt.Errorf("%w: transformer of type %T", ErrUnsupportedReference, ref)
	}
}
