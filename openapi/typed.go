package openapi

import (
	"context"
	"net/http"
	"reflect"
	"strconv"

	"github.com/buildwithgo/amarodoc"
	"go.uber.org/zap"
)

// TypedHandler handles a request bound into Req and returns the response body.
// A nil result with a nil error is answered with 204 No Content.
type TypedHandler[Req any, Res any] func(*amarodoc.Context, *Req) (*Res, error)

// OperationOption adjusts the documentation of one operation.
type OperationOption func(*operationConfig)

type operationConfig struct {
	op     Operation
	status int
}

func WithSummary(summary string) OperationOption {
	return func(c *operationConfig) { c.op.Summary = summary }
}

func WithDescription(description string) OperationOption {
	return func(c *operationConfig) { c.op.Description = description }
}

func WithOperationID(id string) OperationOption {
	return func(c *operationConfig) { c.op.OperationID = id }
}

// WithTags replaces the default tag of the operation.
func WithTags(tags ...string) OperationOption {
	return func(c *operationConfig) { c.op.Tags = tags }
}

// WithSecurity requires one of the named security schemes.
func WithSecurity(schemes ...string) OperationOption {
	return func(c *operationConfig) {
		for _, name := range schemes {
			c.op.Security = append(c.op.Security, map[string][]string{name: {}})
		}
	}
}

// WithStatus sets the status of a successful response. It defaults to 200.
func WithStatus(code int) OperationOption {
	return func(c *operationConfig) { c.status = code }
}

// Deprecated marks the operation deprecated.
func Deprecated() OperationOption {
	return func(c *operationConfig) { c.op.Deprecated = true }
}

// WithParameters declares parameters by hand. It is meant for raw handlers
// documented with Document or WrapStream; typed handlers derive theirs from
// the request struct.
func WithParameters(params ...*Parameter) OperationOption {
	return func(c *operationConfig) { c.op.Parameters = append(c.op.Parameters, params...) }
}

var contextType = reflect.TypeOf((*context.Context)(nil)).Elem()

// WrapHandler documents handler as method path and returns the handler to
// register with the router. The request struct is bound from the JSON body and
// from its path, query, header and cookie tagged fields. Fields of type
// context.Context receive the request context.
func WrapHandler[Req any, Res any](g *Generator, method, path string, handler TypedHandler[Req, Res], opts ...OperationOption) amarodoc.Handler {
	reqType := reflect.TypeOf((*Req)(nil)).Elem()
	resType := reflect.TypeOf((*Res)(nil)).Elem()

	cfg := operationConfig{status: http.StatusOK}
	for _, opt := range opts {
		opt(&cfg)
	}
	withBody := g.readsBody(method, reqType)
	if g.Enabled() {
		g.describe(method, path, reqType, resType, &cfg)
	}

	isStruct := reqType.Kind() == reflect.Struct
	ctxFields := contextFields(reqType)
	return func(c *amarodoc.Context) error {
		req := new(Req)
		if withBody {
			if err := c.BindJSON(req); err != nil {
				return err
			}
		}
		if isStruct {
			if err := c.BindParams(req); err != nil {
				return err
			}
			rv := reflect.ValueOf(req).Elem()
			for _, idx := range ctxFields {
				if fv, err := rv.FieldByIndexErr(idx); err == nil {
					fv.Set(reflect.ValueOf(c.Request.Context()))
				}
			}
		}
		res, err := handler(c, req)
		if err != nil {
			return err
		}
		if res == nil {
			return c.NoContent(http.StatusNoContent)
		}
		return c.JSON(cfg.status, res)
	}
}

func hasBody(method string) bool {
	return method != http.MethodGet && method != http.MethodHead
}

func contextFields(t reflect.Type) [][]int {
	var idx [][]int
	for _, f := range RequestFields(t) {
		if f.Type == contextType {
			idx = append(idx, f.Index)
		}
	}
	return idx
}

// readsBody reports whether a handler for method decodes a JSON body into reqType.
// It holds whether or not documentation is enabled.
func (g *Generator) readsBody(method string, reqType reflect.Type) bool {
	if !hasBody(method) {
		return false
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.hasBodyFields(reqType)
}

// describe documents a typed operation.
func (g *Generator) describe(method, path string, reqType, resType reflect.Type, cfg *operationConfig) {
	g.mu.Lock()
	defer g.mu.Unlock()

	op := cfg.op
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

	if reqType.Kind() == reflect.Struct {
		for _, observe := range g.observers {
			observe(reqType)
		}
		op.Parameters = g.parameters(reqType, op.OperationID)
	}

	if hasBody(method) {
		op.RequestBody = g.requestBody(reqType)
	}

	op.Responses = g.responses(resType, cfg.status, len(op.Parameters) > 0 || op.RequestBody != nil)
	g.addRoute(method, path, &op)
	g.logger.Debug("operation documented",
		zap.String("method", method),
		zap.String("path", DocPath(path)),
		zap.String("operationId", op.OperationID),
		zap.Int("parameters", len(op.Parameters)))
}

func (g *Generator) parameters(reqType reflect.Type, operationID string) []*Parameter {
	var params []*Parameter
	for i, f := range RequestFields(reqType) {
		if g.isIgnored(f.Type) {
			continue
		}
		binding, ok := BindingOf(f.Tag)
		if !ok {
			continue
		}
		p := g.parameter(f, binding)
		decl := ParameterDeclaration{
			Index:       i,
			Name:        f.Name,
			Type:        f.Type,
			Tag:         f.Tag,
			Owner:       reqType,
			OperationID: operationID,
		}
		if p = g.customizeParameter(p, decl); p == nil {
			continue
		}
		if p.In == amarodoc.SourcePath {
			p.Required = true
		}
		params = append(params, p)
	}
	return params
}

// parameter builds the preliminary parameter of f. Required reflects only the
// field's own hint; customizers settle it.
func (g *Generator) parameter(f reflect.StructField, b Binding) *Parameter {
	schema := g.schemaOf(f.Type)
	constrain(schema, f)
	p := &Parameter{
		Name:       b.Name,
		In:         b.Source,
		Schema:     schema,
		Deprecated: DeprecatedTag(f.Tag),
	}
	if hint, ok := ParameterDoc(f.Tag); ok {
		p.Description = hint.Description
		p.Required = hint.Required
		if hint.Example != "" {
			p.Example = parseLiteral(f.Type, hint.Example)
		}
	}
	if b.Source == amarodoc.SourcePath {
		p.Required = true
	}
	return p
}

// hasBodyFields reports whether reqType has anything to decode from a body.
// Structs whose fields are all parameters or ignored do not.
func (g *Generator) hasBodyFields(reqType reflect.Type) bool {
	t := reqType
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Kind() != reflect.Struct || g.hasBodyProperties(t)
}

func (g *Generator) requestBody(reqType reflect.Type) *RequestBody {
	if !g.hasBodyFields(reqType) {
		return nil
	}
	return &RequestBody{
		Required: true,
		Content: map[string]*MediaType{
			"application/json": {Schema: g.schemaOf(reqType)},
		},
	}
}

func (g *Generator) hasBodyProperties(t reflect.Type) bool {
	if _, ok := g.overrides[t]; ok {
		return true
	}
	for _, p := range g.properties.Properties(t) {
		if g.isIgnored(p.Field.Type) {
			continue
		}
		if _, _, bound := amarodoc.ParamSource(p.Field); !bound {
			return true
		}
	}
	return false
}

func (g *Generator) responses(resType reflect.Type, status int, badRequest bool) map[string]*Response {
	responses := make(map[string]*Response)
	if resType.Kind() == reflect.Struct && resType.NumField() == 0 {
		responses["204"] = &Response{Description: http.StatusText(http.StatusNoContent)}
	} else {
		responses[strconv.Itoa(status)] = &Response{
			Description: http.StatusText(status),
			Content: map[string]*MediaType{
				"application/json": {Schema: g.schemaOf(resType)},
			},
		}
	}
	if badRequest {
		responses["400"] = &Response{Description: http.StatusText(http.StatusBadRequest)}
	}
	return responses
}
