package router

import (
	"net/http"
	"strings"
)

// HandlerFunc handles a request. A returned error that reaches the router
// produces a 500 JSON response unless the handler already wrote one.
type HandlerFunc func(*Context) error

// Middleware wraps a handler.
type Middleware func(HandlerFunc) HandlerFunc

type route struct {
	method   string
	segments []string
	handler  HandlerFunc
}

// Router is the framework's lightweight HTTP router: exact and parameter
// (":name") segments plus trailing wildcards ("*name"), a global middleware
// chain and prefix groups. Routes are registered at boot and read-only
// afterwards.
type Router struct {
	routes      []route
	middlewares []Middleware
	notFound    HandlerFunc
}

// New creates an empty router.
func New() *Router {
	return &Router{
		notFound: func(c *Context) error {
			return c.JSON(http.StatusNotFound, map[string]any{"error": "Not found"})
		},
	}
}

// Use appends a global middleware. Must be called before Run.
func (r *Router) Use(mw Middleware) {
	r.middlewares = append(r.middlewares, mw)
}

// NotFound overrides the fallback handler.
func (r *Router) NotFound(h HandlerFunc) {
	r.notFound = h
}

// Handle registers a route.
func (r *Router) Handle(method, path string, h HandlerFunc) {
	r.routes = append(r.routes, route{
		method:   method,
		segments: splitPath(path),
		handler:  h,
	})
}

func (r *Router) GET(path string, h HandlerFunc)    { r.Handle(http.MethodGet, path, h) }
func (r *Router) POST(path string, h HandlerFunc)   { r.Handle(http.MethodPost, path, h) }
func (r *Router) PUT(path string, h HandlerFunc)    { r.Handle(http.MethodPut, path, h) }
func (r *Router) PATCH(path string, h HandlerFunc)  { r.Handle(http.MethodPatch, path, h) }
func (r *Router) DELETE(path string, h HandlerFunc) { r.Handle(http.MethodDelete, path, h) }

// Static serves files from dir under the given URL prefix.
func (r *Router) Static(prefix, dir string) {
	fileServer := http.StripPrefix(prefix, http.FileServer(http.Dir(dir)))
	r.Handle(http.MethodGet, prefix+"/*filepath", func(c *Context) error {
		fileServer.ServeHTTP(c.Writer, c.Request)
		return nil
	})
}

// Group returns a RouterGroup rooted at prefix.
func (r *Router) Group(prefix string) *RouterGroup {
	return &RouterGroup{router: r, prefix: strings.TrimSuffix(prefix, "/")}
}

// Run starts the HTTP server on addr.
func (r *Router) Run(addr string) error {
	return http.ListenAndServe(addr, r)
}

// ServeHTTP implements http.Handler.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	ctx := &Context{
		Request: req,
		Writer:  &ResponseWriter{ResponseWriter: w},
	}

	handler, params := r.match(req.Method, req.URL.Path)
	if handler == nil {
		handler = r.notFound
	}
	ctx.params = params

	for i := len(r.middlewares) - 1; i >= 0; i-- {
		handler = r.middlewares[i](handler)
	}

	if err := handler(ctx); err != nil && !ctx.Writer.written {
		_ = ctx.JSON(http.StatusInternalServerError, map[string]any{"error": err.Error()})
	}
}

func (r *Router) match(method, path string) (HandlerFunc, map[string]string) {
	segments := splitPath(path)
	for _, rt := range r.routes {
		if rt.method != method {
			continue
		}
		if params, ok := matchSegments(rt.segments, segments); ok {
			return rt.handler, params
		}
	}
	return nil, nil
}

func matchSegments(pattern, segments []string) (map[string]string, bool) {
	var params map[string]string
	for i, p := range pattern {
		if strings.HasPrefix(p, "*") {
			if params == nil {
				params = make(map[string]string)
			}
			params[p[1:]] = strings.Join(segments[i:], "/")
			return params, true
		}
		if i >= len(segments) {
			return nil, false
		}
		if strings.HasPrefix(p, ":") {
			if params == nil {
				params = make(map[string]string)
			}
			params[p[1:]] = segments[i]
			continue
		}
		if p != segments[i] {
			return nil, false
		}
	}
	if len(segments) != len(pattern) {
		return nil, false
	}
	return params, true
}

func splitPath(path string) []string {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "/")
}
