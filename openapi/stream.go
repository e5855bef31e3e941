package openapi

import (
	"net/http"

	"github.com/buildwithgo/amarodoc"
)

// WrapStream documents handler as a text/event-stream endpoint.
// It returns handler unchanged.
func WrapStream(g *Generator, method, path string, handler amarodoc.Handler, opts ...OperationOption) amarodoc.Handler {
	cfg := operationConfig{status: http.StatusOK}
	for _, opt := range opts {
		opt(&cfg)
	}
	op := cfg.op
	op.Responses = map[string]*Response{
		"200": {
			Description: "Stream Response",
			Content: map[string]*MediaType{
				"text/event-stream": {
					Schema: &Schema{Type: "string"},
				},
			},
		},
	}
	return Document(g, method, path, handler, op)
}

// Document documents a plain handler with a hand written operation and returns
// handler unchanged. Its parameters have no Go declaration; they still pass
// through the parameter customizers, which see a declaration without Owner.
func Document(g *Generator, method, path string, handler amarodoc.Handler, op Operation) amarodoc.Handler {
	if !g.Enabled() {
		return handler
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	if op.OperationID == "" {
		op.OperationID = g.uniqueOperationID(OperationID(method, DocPath(path)))
	} else {
		g.operationIDs[op.OperationID]++
	}
	if op.Tags == nil {
		if tag := DefaultTag(path); tag != "" {
			op.Tags = []string{tag}
		}
	}
	if op.Responses == nil {
		op.Responses = map[string]*Response{"200": {Description: http.StatusText(http.StatusOK)}}
	}

	params := make([]*Parameter, 0, len(op.Parameters))
	for i, p := range op.Parameters {
		decl := ParameterDeclaration{Index: i, Name: p.Name, OperationID: op.OperationID}
		if p = g.customizeParameter(p, decl); p == nil {
			continue
		}
		if p.In == amarodoc.SourcePath {
			p.Required = true
		}
		params = append(params, p)
	}
	op.Parameters = params
	g.addRoute(method, path, &op)
	return handler
}
