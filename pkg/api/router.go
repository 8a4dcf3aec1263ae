// Package api exposes chart generation over HTTP and streams run events
// to websocket clients.
package api

import (
	"context"
	"net/http"
	"sort"
	"strings"
	"sync"
)

// HandlerFunc is the function signature for API handlers.
type HandlerFunc func(w http.ResponseWriter, r *http.Request)

// pattern is a route path split into segments. A segment starting with ':'
// captures the matching path segment under that name.
type pattern []string

func compilePattern(p string) pattern {
	return strings.Split(strings.Trim(p, "/"), "/")
}

// match reports whether the path segments fit the pattern and returns the
// captured parameters.
func (p pattern) match(parts []string) (map[string]string, bool) {
	if len(p) != len(parts) {
		return nil, false
	}
	var params map[string]string
	for i, seg := range p {
		if strings.HasPrefix(seg, ":") {
			if params == nil {
				params = make(map[string]string)
			}
			params[seg[1:]] = parts[i]
			continue
		}
		if seg != parts[i] {
			return nil, false
		}
	}
	return params, true
}

type route struct {
	method  string
	pattern pattern
	handler HandlerFunc
}

// Router dispatches on method and path with :param segments. Routes match
// in registration order, so literal paths must be added before parameter
// paths that would shadow them.
type Router struct {
	mu     sync.RWMutex
	routes []route
}

// NewRouter creates an empty Router.
func NewRouter() *Router {
	return &Router{}
}

// Handle registers a handler for the given method and pattern.
func (rt *Router) Handle(method, path string, handler HandlerFunc) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	rt.routes = append(rt.routes, route{method: method, pattern: compilePattern(path), handler: handler})
}

// GET registers a handler for GET (and HEAD) requests.
func (rt *Router) GET(path string, handler HandlerFunc) {
	rt.Handle(http.MethodGet, path, handler)
}

// POST registers a handler for POST requests.
func (rt *Router) POST(path string, handler HandlerFunc) {
	rt.Handle(http.MethodPost, path, handler)
}

// ServeHTTP implements http.Handler. A path that matches under another
// method answers 405 with an Allow header; an unknown path answers 404.
func (rt *Router) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rt.mu.RLock()
	defer rt.mu.RUnlock()

	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	allowed := make(map[string]bool)

	for _, rte := range rt.routes {
		params, ok := rte.pattern.match(parts)
		if !ok {
			continue
		}
		if rte.method != r.Method && !(rte.method == http.MethodGet && r.Method == http.MethodHead) {
			allowed[rte.method] = true
			continue
		}
		if params != nil {
			r = r.WithContext(context.WithValue(r.Context(), pathParamsKey, params))
		}
		rte.handler(w, r)
		return
	}

	if len(allowed) > 0 {
		w.Header().Set("Allow", allowHeader(allowed))
		WriteError(w, http.StatusMethodNotAllowed, "method_not_allowed", r.Method+" is not supported on "+r.URL.Path)
		return
	}
	WriteError(w, http.StatusNotFound, "not_found", "The requested resource was not found")
}

func allowHeader(methods map[string]bool) string {
	if methods[http.MethodGet] {
		methods[http.MethodHead] = true
	}
	list := make([]string, 0, len(methods))
	for m := range methods {
		list = append(list, m)
	}
	sort.Strings(list)
	return strings.Join(list, ", ")
}

type contextKey string

const pathParamsKey contextKey = "pathParams"

// PathParam returns the named path parameter, or "" when absent.
func PathParam(r *http.Request, name string) string {
	params, _ := r.Context().Value(pathParamsKey).(map[string]string)
	return params[name]
}
