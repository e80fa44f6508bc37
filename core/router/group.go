package router

import "net/http"

// RouterGroup registers routes under a shared path prefix with its own
// middleware chain, applied on top of the router's global chain.
type RouterGroup struct {
	router      *Router
	prefix      string
	middlewares []Middleware
}

// Group nests another group under this one's prefix.
func (g *RouterGroup) Group(prefix string) *RouterGroup {
	return &RouterGroup{
		router:      g.router,
		prefix:      g.prefix + prefix,
		middlewares: append([]Middleware(nil), g.middlewares...),
	}
}

// Use appends a middleware applied to every route registered through this
// group after the call.
func (g *RouterGroup) Use(mw Middleware) {
	g.middlewares = append(g.middlewares, mw)
}

// Handle registers a route under the group prefix.
func (g *RouterGroup) Handle(method, path string, h HandlerFunc) {
	wrapped := h
	for i := len(g.middlewares) - 1; i >= 0; i-- {
		wrapped = g.middlewares[i](wrapped)
	}
	g.router.Handle(method, g.prefix+path, wrapped)
}

func (g *RouterGroup) GET(path string, h HandlerFunc)    { g.Handle(http.MethodGet, path, h) }
func (g *RouterGroup) POST(path string, h HandlerFunc)   { g.Handle(http.MethodPost, path, h) }
func (g *RouterGroup) PUT(path string, h HandlerFunc)    { g.Handle(http.MethodPut, path, h) }
func (g *RouterGroup) PATCH(path string, h HandlerFunc)  { g.Handle(http.MethodPatch, path, h) }
func (g *RouterGroup) DELETE(path string, h HandlerFunc) { g.Handle(http.MethodDelete, path, h) }
