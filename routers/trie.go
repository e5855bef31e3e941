package routers

import (
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/buildwithgo/amarodoc"
)

type node struct {
	// Static children
	children map[string]*node

	// Dynamic children
	paramNode *node
	paramName string

	catchAllNode *node
	catchAllName string

	amarodoc.Route
}

// TrieRouter is a trie-based router using a map for children.
// It supports :param, {param} and *wildcard segments.
type TrieRouter struct {
	root              map[string]*node // method -> root node
	globalMiddlewares []amarodoc.Middleware
}

// NewTrieRouter creates a new instance of TrieRouter.
func NewTrieRouter() *TrieRouter {
	return &TrieRouter{
		root: make(map[string]*node),
	}
}

// Use adds a global middleware to the router.
// Note: These middlewares are applied to all routes registered AFTER calling Use.
func (r *TrieRouter) Use(middleware amarodoc.Middleware) {
	r.globalMiddlewares = append(r.globalMiddlewares, middleware)
}

func (r *TrieRouter) Add(method, path string, handler amarodoc.Handler, middlewares ...amarodoc.Middleware) error {
	if len(r.globalMiddlewares) > 0 {
		combined := make([]amarodoc.Middleware, 0, len(r.globalMiddlewares)+len(middlewares))
		combined = append(combined, r.globalMiddlewares...)
		middlewares = append(combined, middlewares...)
	}
	if _, ok := r.root[method]; !ok {
		r.root[method] = &node{children: make(map[string]*node)}
	}
	n := r.root[method]

	if path == "" {
		path = "/"
	}
	if path[0] != '/' {
		path = "/" + path
	}

	for _, part := range strings.Split(strings.Trim(path, "/"), "/") {
		if part == "" {
			continue
		}

		if name, ok := paramSegment(part); ok {
			if n.paramNode == nil {
				n.paramNode = &node{children: make(map[string]*node)}
				n.paramName = name
			}
			if n.paramName != name {
				return fmt.Errorf("param name conflict: %s vs %s", n.paramName, name)
			}
			n = n.paramNode
		} else if part[0] == '*' {
			name := part[1:]
			if n.catchAllNode == nil {
				n.catchAllNode = &node{children: make(map[string]*node)}
				n.catchAllName = name
			}
			if n.catchAllName != name {
				return fmt.Errorf("wildcard name conflict: %s vs %s", n.catchAllName, name)
			}
			// *name captures the rest of the path in Find
			n = n.catchAllNode
		} else {
			if _, ok := n.children[part]; !ok {
				n.children[part] = &node{children: make(map[string]*node)}
			}
			n = n.children[part]
		}
	}

	finalHandler := handler
	if len(middlewares) > 0 {
		finalHandler = amarodoc.Compile(handler, middlewares...)
	}

	n.Handler = finalHandler
	n.Middlewares = middlewares
	n.Path = path
	n.Method = method

	return nil
}

func paramSegment(part string) (string, bool) {
	if part[0] == ':' {
		return part[1:], true
	}
	if len(part) > 1 && part[0] == '{' && part[len(part)-1] == '}' {
		return part[1 : len(part)-1], true
	}
	return "", false
}

func (r *TrieRouter) Find(method, path string, ctx *amarodoc.Context) (*amarodoc.Route, error) {
	n, ok := r.root[method]
	if !ok {
		return nil, fmt.Errorf("method not found")
	}

	searchPath := strings.TrimSuffix(strings.TrimPrefix(path, "/"), "/")

	for n != nil {
		if len(searchPath) == 0 {
			if n.Handler != nil {
				return &n.Route, nil
			}
			// /a/*rest matches /a/ with an empty rest
			if n.catchAllNode != nil && n.catchAllNode.Handler != nil {
				if ctx != nil {
					ctx.AddParam(n.catchAllName, "")
				}
				return &n.catchAllNode.Route, nil
			}
			return nil, fmt.Errorf("route not found")
		}

		var part string
		if i := strings.IndexByte(searchPath, '/'); i < 0 {
			part, searchPath = searchPath, ""
		} else {
			part, searchPath = searchPath[:i], searchPath[i+1:]
		}
		if part == "" {
			continue
		}

		// Priority: Static > Param > Wildcard
		if child, found := n.children[part]; found {
			n = child
			continue
		}

		if n.paramNode != nil {
			if ctx != nil {
				ctx.AddParam(n.paramName, part)
			}
			n = n.paramNode
			continue
		}

		if n.catchAllNode != nil && n.catchAllNode.Handler != nil {
			if ctx != nil {
				value := part
				if len(searchPath) > 0 {
					value += "/" + searchPath
				}
				ctx.AddParam(n.catchAllName, value)
			}
			return &n.catchAllNode.Route, nil
		}

		return nil, fmt.Errorf("route not found")
	}

	return nil, fmt.Errorf("route not found")
}

// Routes returns every registered route sorted by method, then path.
func (r *TrieRouter) Routes() []amarodoc.Route {
	var routes []amarodoc.Route
	var walk func(n *node)
	walk = func(n *node) {
		if n == nil {
			return
		}
		if n.Handler != nil {
			routes = append(routes, n.Route)
		}
		for _, child := range n.children {
			walk(child)
		}
		walk(n.paramNode)
		walk(n.catchAllNode)
	}
	for _, root := range r.root {
		walk(root)
	}
	sort.Slice(routes, func(i, j int) bool {
		if routes[i].Method != routes[j].Method {
			return routes[i].Method < routes[j].Method
		}
		return routes[i].Path < routes[j].Path
	})
	return routes
}

func (r *TrieRouter) GET(path string, handler amarodoc.Handler, middlewares ...amarodoc.Middleware) error {
	return r.Add(http.MethodGet, path, handler, middlewares...)
}
func (r *TrieRouter) POST(path string, handler amarodoc.Handler, middlewares ...amarodoc.Middleware) error {
	return r.Add(http.MethodPost, path, handler, middlewares...)
}
func (r *TrieRouter) PUT(path string, handler amarodoc.Handler, middlewares ...amarodoc.Middleware) error {
	return r.Add(http.MethodPut, path, handler, middlewares...)
}
func (r *TrieRouter) DELETE(path string, handler amarodoc.Handler, middlewares ...amarodoc.Middleware) error {
	return r.Add(http.MethodDelete, path, handler, middlewares...)
}
func (r *TrieRouter) PATCH(path string, handler amarodoc.Handler, middlewares ...amarodoc.Middleware) error {
	return r.Add(http.MethodPatch, path, handler, middlewares...)
}
func (r *TrieRouter) Group(prefix string) *amarodoc.Group {
	return amarodoc.NewGroup(prefix, r)
}
