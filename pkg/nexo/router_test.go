package nexo

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abdul-hamid-achik/nexo-routes/pkg/metadata"
	"github.com/abdul-hamid-achik/nexo-routes/pkg/resolver"
)

func resolveTable(t *testing.T, routes ...*metadata.Route) []*resolver.Route {
	t.Helper()
	table, err := resolver.New().Resolve(routes)
	require.NoError(t, err)
	return table
}

func do(t *testing.T, h http.Handler, method, target string, header http.Header) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	for k, v := range header {
		req.Header[k] = v
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

// tag returns a middleware that appends name to the X-Trace response header.
func tag(name string) MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Add("X-Trace", name)
			next.ServeHTTP(w, r)
		})
	}
}

func TestRouter_Mount(t *testing.T) {
	registry := NewRegistry()
	registry.HandleFunc("users.show", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "user "+Param(r, "id").(string))
	})

	router := NewRouter(registry)
	err := router.Mount(resolveTable(t, &metadata.Route{
		PathFragment: metadata.PathFragment{
			Pattern:      "/users/{id}",
			Placeholders: map[string]string{"id": "numeric"},
		},
		Name:      "users.show",
		Methods:   []string{"get", "head"},
		Invokable: "users.show",
	}))
	require.NoError(t, err)

	rec := do(t, router, http.MethodGet, "/users/42", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user 42", rec.Body.String())

	rec = do(t, router, http.MethodGet, "/users/abc", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, router, http.MethodPost, "/users/42", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	require.Len(t, router.Routes(), 1)
}

func TestRouter_MiddlewareOrder(t *testing.T) {
	root := &metadata.Group{
		ID:           "root",
		PathFragment: metadata.PathFragment{Pattern: "/api", Middleware: []any{"root"}},
	}
	child := &metadata.Group{
		ID:           "child",
		Parent:       root,
		PathFragment: metadata.PathFragment{Pattern: "/v1", Middleware: []any{"child"}},
	}

	registry := NewRegistry()
	registry.Middleware("root", tag("root"))
	registry.Middleware("child", tag("child"))
	registry.HandleFunc("ping", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Add("X-Trace", "handler")
	})

	router := NewRouter(registry)
	require.NoError(t, router.Mount(resolveTable(t, &metadata.Route{
		PathFragment: metadata.PathFragment{
			Pattern:    "/ping",
			Middleware: []any{func(next http.Handler) http.Handler { return tag("route")(next) }},
		},
		Methods:   []string{"GET"},
		Invokable: "ping",
		Group:     child,
	})))

	rec := do(t, router, http.MethodGet, "/api/v1/ping", nil)
	assert.Equal(t, []string{"root", "child", "route", "handler"}, rec.Header().Values("X-Trace"))
}

func TestRouter_Context(t *testing.T) {
	var (
		gotName   string
		gotArgs   map[string]any
		gotParams map[string]any
	)

	registry := NewRegistry()
	registry.HandleAction("PostController", "show", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotName = RouteName(r)
		gotArgs = Arguments(r)
		gotParams = Params(r)
	}))

	group := &metadata.Group{
		ID:           "blog",
		Prefix:       "blog",
		PathFragment: metadata.PathFragment{Pattern: "/blog", Arguments: map[string]any{"section": "blog"}},
	}

	router := NewRouter(registry)
	require.NoError(t, router.Mount(resolveTable(t, &metadata.Route{
		PathFragment: metadata.PathFragment{
			Pattern:      "/{year}/{id}",
			Placeholders: map[string]string{"year": `\d{4}`, "id": "numeric"},
			Parameters:   map[string]string{"year": "int", "id": "int"},
		},
		Name:        "show",
		Methods:     []string{"GET"},
		Invokable:   [2]string{"PostController", "show"},
		Transformer: "typed",
		Group:       group,
	})))

	rec := do(t, router, http.MethodGet, "/blog/2024/7", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "blog_show", gotName)
	assert.Equal(t, map[string]any{"section": "blog"}, gotArgs)
	assert.Equal(t, map[string]any{"year": 2024, "id": 7}, gotParams)
}

func TestRouter_TransformError(t *testing.T) {
	registry := NewRegistry()
	registry.HandleFunc("flag", func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not run")
	})

	router := NewRouter(registry)
	require.NoError(t, router.Mount(resolveTable(t, &metadata.Route{
		PathFragment: metadata.PathFragment{
			Pattern:    "/flags/{on}",
			Parameters: map[string]string{"on": "bool"},
		},
		Methods:     []string{"GET"},
		Invokable:   "flag",
		Transformer: DefaultTransformer,
	})))

	rec := do(t, router, http.MethodGet, "/flags/maybe", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouter_XMLHttpRequest(t *testing.T) {
	registry := NewRegistry()
	registry.HandleFunc("poll", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "ok")
	})

	router := NewRouter(registry)
	require.NoError(t, router.Mount(resolveTable(t, &metadata.Route{
		PathFragment:   metadata.PathFragment{Pattern: "/poll"},
		Methods:        []string{"GET"},
		Invokable:      "poll",
		XMLHttpRequest: true,
	})))

	tests := []struct {
		name   string
		header http.Header
		want   int
	}{
		{"no header", nil, http.StatusNotFound},
		{"other value", http.Header{"X-Requested-With": {"fetch"}}, http.StatusNotFound},
		{"xhr", http.Header{"X-Requested-With": {"XMLHttpRequest"}}, http.StatusOK},
		{"xhr lowercase", http.Header{"X-Requested-With": {"xmlhttprequest"}}, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, router, http.MethodGet, "/poll", tt.header)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestRouter_MountErrors(t *testing.T) {
	tests := []struct {
		name    string
		route   *metadata.Route
		wantErr error
	}{
		{
			name:    "unknown handler",
			route:   &metadata.Route{Methods: []string{"GET"}, Invokable: "missing"},
			wantErr: ErrUnknownHandler,
		},
		{
			name: "unknown middleware",
			route: &metadata.Route{
				PathFragment: metadata.PathFragment{Middleware: []any{"missing"}},
				Methods:      []string{"GET"},
				Invokable:    "known",
			},
			wantErr: ErrUnknownMiddleware,
		},
		{
			name:    "unknown transformer",
			route:   &metadata.Route{Methods: []string{"GET"}, Invokable: "known", Transformer: "missing"},
			wantErr: ErrUnknownTransformer,
		},
		{
			name: "unsupported middleware",
			route: &metadata.Route{
				PathFragment: metadata.PathFragment{Middleware: []any{42}},
				Methods:      []string{"GET"},
				Invokable:    "known",
			},
			wantErr: ErrUnsupportedReference,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			registry := NewRegistry()
			registry.HandleFunc("known", func(http.ResponseWriter, *http.Request) {})

			router := NewRouter(registry)
			err := router.Mount(resolveTable(t, tt.route))
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Empty(t, router.Routes(), "nothing is registered on error")
		})
	}
}

func TestRouter_MountErrors_RejectedPattern(t *testing.T) {
	newRegistry := func() *Registry {
		registry := NewRegistry()
		registry.HandleFunc("known", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		})
		return registry
	}
	ok := &metadata.Route{PathFragment: metadata.PathFragment{Pattern: "/ok"}, Methods: []string{"GET"}, Invokable: "known"}
	bad := &metadata.Route{PathFragment: metadata.PathFragment{Pattern: "/files/*/meta"}, Methods: []string{"GET"}, Invokable: "known"}

	t.Run("nothing registered", func(t *testing.T) {
		router := NewRouter(newRegistry())

		err := router.Mount(resolveTable(t, ok, bad))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to mount routes")

		assert.Empty(t, router.Routes())
		assert.Equal(t, http.StatusNotFound, do(t, router, http.MethodGet, "/ok", nil).Code)
	})

	t.Run("earlier mount kept", func(t *testing.T) {
		router := NewRouter(newRegistry())
		require.NoError(t, router.Mount(resolveTable(t, ok)))

		health := &metadata.Route{PathFragment: metadata.PathFragment{Pattern: "/health"}, Methods: []string{"GET"}, Invokable: "known"}
		err := router.Mount(resolveTable(t, health, bad))
		require.Error(t, err)

		assert.Len(t, router.Routes(), 1)
		assert.Equal(t, http.StatusNoContent, do(t, router, http.MethodGet, "/ok", nil).Code)
		assert.Equal(t, http.StatusNotFound, do(t, router, http.MethodGet, "/health", nil).Code)
	})
}

func TestRouter_CustomMethod(t *testing.T) {
	registry := NewRegistry()
	registry.HandleFunc("purge", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	})

	router := NewRouter(registry)
	require.NoError(t, router.Mount(resolveTable(t, &metadata.Route{
		PathFragment: metadata.PathFragment{Pattern: "/cache"},
		Methods:      []string{"PURGE"},
		Invokable:    "purge",
	})))

	rec := do(t, router, "PURGE", "/cache", nil)
	assert.Equal(t, http.StatusAccepted, rec.Code)
}

func TestRouter_Logging(t *testing.T) {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	registry := NewRegistry()
	registry.HandleFunc("home", func(http.ResponseWriter, *http.Request) {})

	router := NewRouter(registry, WithLogger(logger))
	require.NoError(t, router.Mount(resolveTable(t, &metadata.Route{
		PathFragment: metadata.PathFragment{Pattern: "/"},
		Name:         "home",
		Methods:      []string{"GET"},
		Invokable:    "home",
	})))

	entries := hook.AllEntries()
	require.Len(t, entries, 2)
	assert.Equal(t, "mounted route", entries[0].Message)
	assert.Equal(t, "home", entries[0].Data["name"])
	assert.Equal(t, "routes mounted", entries[1].Message)
	assert.Equal(t, 1, entries[1].Data["routes"])
}

func TestRouter_URLFor(t *testing.T) {
	registry := NewRegistry()
	registry.HandleFunc("h", func(http.ResponseWriter, *http.Request) {})

	router := NewRouter(registry)
	require.NoError(t, router.Mount(resolveTable(t,
		&metadata.Route{
			PathFragment: metadata.PathFragment{
				Pattern:      "/users/{id}/files/{file}",
				Placeholders: map[string]string{"id": "numeric"},
			},
			Name:      "files",
			Methods:   []string{"GET"},
			Invokable: "h",
		},
		&metadata.Route{
			PathFragment: metadata.PathFragment{Pattern: "/about"},
			Name:         "about",
			Methods:      []string{"GET"},
			Invokable:    "h",
		},
	)))

	tests := []struct {
		name    string
		route   string
		params  map[string]string
		want    string
		wantErr error
	}{
		{"static", "about", nil, "/about", nil},
		{"params", "files", map[string]string{"id": "7", "file": "a b.txt"}, "/users/7/files/a%20b.txt", nil},
		{"unknown route", "nope", nil, "", ErrUnknownRoute},
		{"missing parameter", "files", map[string]string{"id": "7"}, "", ErrMissingParameter},
		{"invalid parameter", "files", map[string]string{"id": "x", "file": "f"}, "", ErrInvalidParameter},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := router.URLFor(tt.route, tt.params)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRouter_Use(t *testing.T) {
	registry := NewRegistry()
	registry.HandleFunc("h", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Add("X-Trace", "handler")
	})

	router := NewRouter(registry)
	router.Use(tag("global"))
	require.NoError(t, router.Mount(resolveTable(t, &metadata.Route{
		PathFragment: metadata.PathFragment{Pattern: "/h"},
		Methods:      []string{"GET"},
		Invokable:    "h",
	})))

	rec := do(t, router, http.MethodGet, "/h", nil)
	assert.Equal(t, "global,handler", strings.Join(rec.Header().Values("X-Trace"), ","))
}
