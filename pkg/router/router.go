package router

import (
	"fmt"
	"net/http"
	"path"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/pkg/errors"

	"github.com/rebuy-de/adrkit/pkg/typeutil"
)

var noop = http.HandlerFunc(func(http.ResponseWriter, *http.Request) {})

type state struct {
	mu      sync.RWMutex
	mux     *chi.Mux
	routes  map[string]*Route
	order   []string
	methods typeutil.Set[string]
}

// Router registers routes and dispatches method and path to them. A Router
// returned by Group shares all routes with its parent.
type Router struct {
	state  *state
	prefix string
}

func New() *Router {
	return &Router{
		state: &state{
			mux:    chi.NewRouter(),
			routes: map[string]*Route{},
		},
	}
}

func routeKey(method, pattern string) string {
	return method + " " + pattern
}

func (r *Router) join(pattern string) string {
	if r.prefix == "" {
		return pattern
	}
	joined := path.Join(r.prefix, pattern)
	if strings.HasSuffix(pattern, "/") && !strings.HasSuffix(joined, "/") {
		joined += "/"
	}
	return joined
}

// Add registers a target for the method and pattern. The pattern uses the chi
// syntax, like "/items/{id}" or "/files/*". Registering the same method and
// pattern again replaces the target.
func (r *Router) Add(method, pattern string, target any) *Route {
	if !strings.HasPrefix(pattern, "/") {
		panic(fmt.Sprintf("router: pattern %q must begin with '/'", pattern))
	}

	method = strings.ToUpper(method)
	route := &Route{
		Method:  method,
		Pattern: r.join(pattern),
		Target:  target,
	}

	s := r.state
	s.mu.Lock()
	defer s.mu.Unlock()

	chi.RegisterMethod(method)
	s.mux.MethodFunc(method, route.Pattern, noop)
	s.methods.Add(method)

	key := routeKey(method, route.Pattern)
	if _, exists := s.routes[key]; !exists {
		s.order = append(s.order, key)
	}
	s.routes[key] = route

	return route
}

func (r *Router) Get(pattern string, target any) *Route {
	return r.Add(http.MethodGet, pattern, target)
}

func (r *Router) Post(pattern string, target any) *Route {
	return r.Add(http.MethodPost, pattern, target)
}

func (r *Router) Put(pattern string, target any) *Route {
	return r.Add(http.MethodPut, pattern, target)
}

func (r *Router) Patch(pattern string, target any) *Route {
	return r.Add(http.MethodPatch, pattern, target)
}

func (r *Router) Delete(pattern string, target any) *Route {
	return r.Add(http.MethodDelete, pattern, target)
}

func (r *Router) Head(pattern string, target any) *Route {
	return r.Add(http.MethodHead, pattern, target)
}

func (r *Router) Options(pattern string, target any) *Route {
	return r.Add(http.MethodOptions, pattern, target)
}

// Group calls fn with a Router that prefixes every pattern with prefix.
// Prefixes of nested groups are joined.
func (r *Router) Group(prefix string, fn func(r *Router)) *Router {
	sub := &Router{
		state:  r.state,
		prefix: r.join(prefix),
	}
	if fn != nil {
		fn(sub)
	}
	return sub
}

// Routes returns all routes in registration order.
func (r *Router) Routes() []*Route {
	s := r.state
	s.mu.RLock()
	defer s.mu.RUnlock()

	routes := make([]*Route, 0, len(s.order))
	for _, key := range s.order {
		routes = append(routes, s.routes[key])
	}
	return routes
}

func (s *state) find(method, path string) (*Route, Params) {
	rctx := chi.NewRouteContext()
	pattern := s.mux.Find(rctx, method, path)
	if pattern == "" {
		return nil, nil
	}

	route, ok := s.routes[routeKey(method, pattern)]
	if !ok {
		return nil, nil
	}

	params := make(Params, 0, len(rctx.URLParams.Keys))
	for i, key := range rctx.URLParams.Keys {
		params = append(params, Param{Key: key, Value: rctx.URLParams.Values[i]})
	}

	return route, params
}

// Dispatch finds the route for the method and path. It returns a
// *NotFoundError if no pattern matches and a *MethodNotAllowedError if only
// other methods match.
func (r *Router) Dispatch(method, path string) (*Route, Params, error) {
	if path == "" {
		path = "/"
	}
	method = strings.ToUpper(method)

	s := r.state
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.methods.Contains(method) {
		route, params := s.find(method, path)
		if route != nil {
			return route, params, nil
		}
	}

	var allowed []string
	for _, other := range s.methods.ToList() {
		if other == method {
			continue
		}
		if route, _ := s.find(other, path); route != nil {
			allowed = append(allowed, other)
		}
	}

	if len(allowed) > 0 {
		return nil, nil, errors.WithStack(&MethodNotAllowedError{
			Method:  method,
			Path:    path,
			Allowed: allowed,
		})
	}

	return nil, nil, errors.WithStack(&NotFoundError{
		Method: method,
		Path:   path,
	})
}
