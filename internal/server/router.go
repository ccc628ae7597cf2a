package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// BasicRouter is a simple HTTP router implementing the [Router] interface.
//
// Uses a [chi.Mux] internally for routing and path parameters.
type BasicRouter struct {
	mux *chi.Mux
}

// NewBasicRouter creates a new [BasicRouter] instance with JSON 404 and 405 responses.
func NewBasicRouter() *BasicRouter {
	mux := chi.NewRouter()
	mux.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeStatus(w, http.StatusNotFound, "no route for "+r.URL.Path)
	})
	mux.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeStatus(w, http.StatusMethodNotAllowed, r.Method+" is not allowed on "+r.URL.Path)
	})
	return &BasicRouter{mux: mux}
}

// Use adds [Middleware] to every route, applied in the order it's added.
//
// It must be called before any route is registered.
func (r *BasicRouter) Use(middleware ...Middleware) {
	for _, m := range middleware {
		r.mux.Use(m)
	}
}

// Handle registers a handler for the specified HTTP method and path.
func (r *BasicRouter) Handle(method, path string, handler http.Handler) {
	r.mux.Method(method, path, handler)
}

// Handler registers a custom Handler implementation.
//
// Each [Route] is wrapped with its own middleware before registration.
func (r *BasicRouter) Handler(handler Handler) {
	for _, route := range handler.Routes() {
		r.Handle(route.Method, route.Path, Chain(route.Handler, route.Middleware...))
	}
}

// Static serves files from dir under the URL prefix.
func (r *BasicRouter) Static(prefix, dir string) {
	prefix = trimPrefix(prefix)
	files := http.StripPrefix(prefix+"/", http.FileServer(http.Dir(dir)))
	r.mux.Method(http.MethodGet, prefix+"/*", files)
}

// ServeHTTP implements [http.Handler] for the entire router.
func (r *BasicRouter) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// Chain wraps a handler with middleware.
//
// Middleware is applied in reverse order (last added wraps first), so the first
// middleware listed runs first.
func Chain(handler http.Handler, middleware ...Middleware) http.Handler {
	wrapped := handler

	for i := len(middleware) - 1; i >= 0; i-- {
		wrapped = middleware[i](wrapped)
	}

	return wrapped
}
