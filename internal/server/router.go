package server

import (
	"fmt"
	"net/http"
)

// Middleware wraps an http.Handler and returns a new http.Handler with
// additional behavior, such as logging or access control.
type Middleware func(http.Handler) http.Handler

// BasicRouter is a small router over [http.ServeMux] method patterns.
// Middleware added with [BasicRouter.Use] applies to every route;
// per-route middleware passed to [BasicRouter.Handle] wraps only that
// route, inside the global stack.
type BasicRouter struct {
	mux         *http.ServeMux
	middlewares []Middleware
}

// NewBasicRouter creates an empty [BasicRouter].
func NewBasicRouter() *BasicRouter {
	return &BasicRouter{mux: http.NewServeMux()}
}

// Use appends [Middleware] to the global stack, applied in the order added.
func (r *BasicRouter) Use(middleware ...Middleware) {
	r.middlewares = append(r.middlewares, middleware...)
}

// Handle registers a handler for the given HTTP method and path pattern.
// Patterns may carry wildcards resolved with [http.Request.PathValue].
func (r *BasicRouter) Handle(method, pattern string, handler http.Handler, mw ...Middleware) {
	wrapped := apply(handler, mw)
	wrapped = apply(wrapped, r.middlewares)
	r.mux.Handle(fmt.Sprintf("%s %s", method, pattern), wrapped)
}

// HandleFunc registers a handler function, see [BasicRouter.Handle].
func (r *BasicRouter) HandleFunc(method, pattern string, fn http.HandlerFunc, mw ...Middleware) {
	r.Handle(method, pattern, fn, mw...)
}

// ServeHTTP implements [http.Handler] for the entire router.
func (r *BasicRouter) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// apply wraps a handler with middleware in reverse order, so the first
// middleware in the slice is the outermost.
func apply(handler http.Handler, middlewares []Middleware) http.Handler {
	wrapped := handler
	for i := len(middlewares) - 1; i >= 0; i-- {
		wrapped = middlewares[i](wrapped)
	}
	return wrapped
}
