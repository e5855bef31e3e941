package openapi

import "github.com/buildwithgo/amarodoc"

// Undocumented returns the routes that have no operation in the document of g.
func Undocumented(g *Generator, routes []amarodoc.Route) []amarodoc.Route {
	g.mu.Lock()
	defer g.mu.Unlock()
	var missing []amarodoc.Route
	for _, r := range routes {
		item := g.spec.Paths[DocPath(r.Path)]
		if item == nil || item.Operation(r.Method) == nil {
			missing = append(missing, r)
		}
	}
	return missing
}
