package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/pkg/browser"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/abdul-hamid-achik/nexo-routes/internal/project"
	"github.com/abdul-hamid-achik/nexo-routes/pkg/nexo"
	"github.com/abdul-hamid-achik/nexo-routes/pkg/resolver"
)

// stubMiddlewareHeader lists the middleware a stub request passed through.
const stubMiddlewareHeader = "X-Nexo-Middleware"

func newServeCmd(opts *globalOptions) *cobra.Command {
	var (
		addr string
		open bool
	)

	cmd := &cobra.Command{
		Use:   "serve [paths...]",
		Short: "Serve the route table with stub handlers",
		Long: `Mount the resolved route table on a chi router and answer every route with
a JSON description of the match: route name, path parameters (transformed
when the route has a transformer) and arguments. Named middleware are
replaced by pass-through stubs that record themselves in the
X-Nexo-Middleware response header.

Useful for checking which route a URL hits before the real handlers exist.

Examples:
  nexo-routes serve
  nexo-routes serve --addr :9000 routes/
  nexo-routes serve --open`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, opts, args, addr, open)
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", ":8080", "Address to listen on")
	cmd.Flags().BoolVar(&open, "open", false, "Open the server root in a browser")

	return cmd
}

func runServe(cmd *cobra.Command, opts *globalOptions, args []string, addr string, open bool) error {
	out := cmd.OutOrStdout()
	cyan := color.New(color.FgCyan).SprintFunc()
	green := color.New(color.FgGreen).SprintFunc()

	cfg, log, err := opts.setup()
	if err != nil {
		return reportError(out, opts, err)
	}

	table, err := project.Resolve(cfg, log, project.Paths(cfg, args))
	if err != nil {
		return reportError(out, opts, err)
	}

	handler, err := newStubServer(table.Routes, log)
	if err != nil {
		return reportError(out, opts, err)
	}

	server := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	fmt.Fprintf(out, "  %s Serving %d routes\n", green("✓"), len(table.Routes))
	url := localURL(addr)
	fmt.Fprintf(out, "\n  ➜ Local:   %s\n\n", cyan(url))

	if open {
		if err := browser.OpenURL(url); err != nil {
			log.WithError(err).Warn("could not open browser")
		}
	}

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return server.Shutdown(shutdownCtx)
}

// localURL turns a listen address into a URL a browser can open.
func localURL(addr string) string {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return "http://" + addr
	}
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "localhost"
	}
	return "http://" + net.JoinHostPort(host, port)
}

// newStubServer mounts routes with a stub for every handler, middleware and
// transformer name they reference.
func newStubServer(routes []*resolver.Route, log logrus.FieldLogger) (http.Handler, error) {
	registry := nexo.NewRegistry()

	for _, r := range routes {
		switch inv := r.Invokable.(type) {
		case string:
			registry.Handle(inv, http.HandlerFunc(stubHandler))
		case [2]string:
			registry.HandleAction(inv[0], inv[1], http.HandlerFunc(stubHandler))
		case []string:
			if len(inv) == 2 {
				registry.HandleAction(inv[0], inv[1], http.HandlerFunc(stubHandler))
			}
		}

		for _, ref := range r.Middleware {
			if name, ok := ref.(string); ok {
				registry.Middleware(name, stubMiddleware(name))
			}
		}

		if name, ok := r.Transformer.(string); ok && name != "typed" {
			registry.Transformer(name, nexo.DefaultTransformer)
		}
	}

	router := nexo.NewRouter(registry, nexo.WithLogger(log))
	router.Use(middleware.Recoverer, requestLogger(log))

	if err := router.Mount(routes); err != nil {
		return nil, err
	}

	return router, nil
}

// stubMatch is the body written by stub handlers.
type stubMatch struct {
	Route      string         `json:"route,omitempty"`
	Params     map[string]any `json:"params"`
	Arguments  map[string]any `json:"arguments,omitempty"`
	Middleware []string       `json:"middleware,omitempty"`
}

func stubHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(stubMatch{
		Route:      nexo.RouteName(r),
		Params:     nexo.Params(r),
		Arguments:  nexo.Arguments(r),
		Middleware: w.Header().Values(stubMiddlewareHeader),
	})
}

func stubMiddleware(name string) nexo.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Add(stubMiddlewareHeader, name)
			next.ServeHTTP(w, r)
		})
	}
}

// requestLogger logs one entry per request.
func requestLogger(log logrus.FieldLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			entry := log.WithFields(logrus.Fields{
				"method":  r.Method,
				"path":    r.URL.Path,
				"status":  ww.Status(),
				"latency": time.Since(start).Round(time.Microsecond).String(),
			})

			switch status := ww.Status(); {
			case status >= 500:
				entry.Error("request")
			case status >= 400:
				entry.Warn("request")
			default:
				entry.Info("request")
			}
		})
	}
}
