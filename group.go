package amarodoc

import (
	"net/http"
)

// Group registers routes under a shared prefix with shared middlewares.
type Group struct {
	prefix      string
	router      Router
	middlewares []Middleware
}

func NewGroup(prefix string, router Router) *Group {
	return &Group{
		prefix:      prefix,
		router:      router,
		middlewares: make([]Middleware, 0),
	}
}

// Prefix returns the path prefix of the group.
func (g *Group) Prefix() string {
	return g.prefix
}

// Use adds a middleware applied to routes registered on the group afterwards.
func (g *Group) Use(middleware Middleware) {
	g.middlewares = append(g.middlewares, middleware)
}

func (g *Group) Add(method, path string, handler Handler, middlewares ...Middleware) error {
	if len(g.middlewares) > 0 {
		combined := make([]Middleware, 0, len(g.middlewares)+len(middlewares))
		combined = append(combined, g.middlewares...)
		middlewares = append(combined, middlewares...)
	}
	return g.router.Add(method, g.prefix+path, handler, middlewares...)
}

func (g *Group) GET(path string, handler Handler, middlewares ...Middleware) error {
	return g.Add(http.MethodGet, path, handler, middlewares...)
}

func (g *Group) POST(path string, handler Handler, middlewares ...Middleware) error {
	return g.Add(http.MethodPost, path, handler, middlewares...)
}

func (g *Group) PUT(path string, handler Handler, middlewares ...Middleware) error {
	return g.Add(http.MethodPut, path, handler, middlewares...)
}

func (g *Group) DELETE(path string, handler Handler, middlewares ...Middleware) error {
	return g.Add(http.MethodDelete, path, handler, middlewares...)
}

func (g *Group) PATCH(path string, handler Handler, middlewares ...Middleware) error {
	return g.Add(http.MethodPatch, path, handler, middlewares...)
}

// Group creates a nested group. The nested group inherits the middlewares
// registered on g so far.
func (g *Group) Group(prefix string) *Group {
	child := NewGroup(g.prefix+prefix, g.router)
	child.middlewares = append(child.middlewares, g.middlewares...)
	return child
}

func (g *Group) Find(method, path string) (*Route, error) {
	return g.router.Find(method, g.prefix+path, nil)
}
