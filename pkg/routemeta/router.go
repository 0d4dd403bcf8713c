package routemeta

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/kisiwu/routeval/pkg/logging"
)

// Route is one registered pattern with its handler and configuration.
type Route struct {
	// ID uniquely identifies the route, assigned at registration.
	ID string

	// Method is the HTTP method this route answers, uppercased.
	Method string

	// Pattern is the path pattern, e.g. "/users/{id}". Segments wrapped
	// in braces match any single path segment and are captured as
	// parameters under their name.
	Pattern string

	// Meta is the route configuration read by validation middleware.
	Meta Config

	// Handler serves matched requests after the middleware chain.
	Handler http.Handler
}

// Router matches requests against registered patterns, attaches the
// route's Config and path parameters to the request context, and runs
// the configured middleware chain around the route handler.
//
// Matching is first-registered-wins among equally specific patterns,
// with exact (parameter-free) matches taking precedence over
// parameterized ones.
type Router struct {
	routes     []*Route
	middleware []func(http.Handler) http.Handler
	notFound   http.Handler
	log        *slog.Logger
}

// RouterOption configures a Router.
type RouterOption func(*Router)

// WithMiddleware appends middleware applied to every matched route, in
// registration order (first registered runs outermost).
func WithMiddleware(mw ...func(http.Handler) http.Handler) RouterOption {
	return func(r *Router) {
		r.middleware = append(r.middleware, mw...)
	}
}

// WithNotFound overrides the handler used when no route matches.
func WithNotFound(h http.Handler) RouterOption {
	return func(r *Router) {
		r.notFound = h
	}
}

// WithRouterLogger sets the logger used for match debugging.
func WithRouterLogger(log *slog.Logger) RouterOption {
	return func(r *Router) {
		if log != nil {
			r.log = log
		}
	}
}

// NewRouter creates an empty Router.
func NewRouter(opts ...RouterOption) *Router {
	r := &Router{
		notFound: http.NotFoundHandler(),
		log:      logging.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Handle registers a handler for the given method and pattern. The meta
// config may be nil for routes without validation.
func (r *Router) Handle(method, pattern string, meta Config, h http.Handler) *Route {
	route := &Route{
		ID:      uuid.NewString(),
		Method:  strings.ToUpper(method),
		Pattern: pattern,
		Meta:    meta,
		Handler: h,
	}
	r.routes = append(r.routes, route)
	return route
}

// HandleFunc registers a handler function, see Handle.
func (r *Router) HandleFunc(method, pattern string, meta Config, h http.HandlerFunc) *Route {
	return r.Handle(method, pattern, meta, h)
}

// ServeHTTP implements http.Handler.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	route, params := r.match(req.Method, req.URL.Path)
	if route == nil {
		r.notFound.ServeHTTP(w, req)
		return
	}

	r.log.Debug("route matched",
		"route", route.ID, "method", route.Method, "pattern", route.Pattern)

	ctx := WithConfig(req.Context(), route.Meta)
	ctx = WithParams(ctx, params)
	req = req.WithContext(ctx)

	handler := route.Handler
	for i := len(r.middleware) - 1; i >= 0; i-- {
		handler = r.middleware[i](handler)
	}
	handler.ServeHTTP(w, req)
}

// match finds the route for a method and path. Exact pattern matches
// win over parameterized ones regardless of registration order.
func (r *Router) match(method, path string) (*Route, map[string]string) {
	var paramRoute *Route
	var paramValues map[string]string

	for _, route := range r.routes {
		if route.Method != strings.ToUpper(method) {
			continue
		}
		if route.Pattern == path {
			return route, map[string]string{}
		}
		if paramRoute != nil {
			continue
		}
		if params, ok := matchPattern(route.Pattern, path); ok {
			paramRoute = route
			paramValues = params
		}
	}
	return paramRoute, paramValues
}

// matchPattern checks a path against a pattern with {name} segments and
// returns the captured parameters. Both sides are compared segment by
// segment, so a pattern never matches a path of different depth.
func matchPattern(pattern, path string) (map[string]string, bool) {
	patternParts := strings.Split(strings.Trim(pattern, "/"), "/")
	pathParts := strings.Split(strings.Trim(path, "/"), "/")

	if len(patternParts) != len(pathParts) {
		return nil, false
	}

	params := map[string]string{}
	for i, part := range patternParts {
		if strings.HasPrefix(part, "{") && strings.HasSuffix(part, "}") {
			params[part[1:len(part)-1]] = pathParts[i]
			continue
		}
		if part != pathParts[i] {
			return nil, false
		}
	}
	return params, true
}
