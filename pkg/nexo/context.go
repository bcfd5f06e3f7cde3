package nexo

import (
	"context"
	"net/http"
)

type contextKey int

const (
	routeNameKey contextKey = iota
	argumentsKey
	paramsKey
)

func withRoute(ctx context.Context, name string, args map[string]any, params map[string]any) context.Context {
	ctx = context.WithValue(ctx, routeNameKey, name)
	ctx = context.WithValue(ctx, argumentsKey, args)
	return context.WithValue(ctx, paramsKey, params)
}

// RouteName returns the name of the matched route, or "" for unnamed routes.
func RouteName(r *http.Request) string {
	name, _ := r.Context().Value(routeNameKey).(string)
	return name
}

// Arguments returns the matched route's merged arguments.
func Arguments(r *http.Request) map[string]any {
	args, _ := r.Context().Value(argumentsKey).(map[string]any)
	return args
}

// Params returns the matched route's path parameters, after transformation
// when the route has a transformer.
func Params(r *http.Request) map[string]any {
	params, _ := r.Context().Value(paramsKey).(map[string]any)
	return params
}

// Param returns a single path parameter.
func Param(r *http.Request, name string) any {
	return Params(r)[name]
}
