package openapi

import (
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/buildwithgo/amarodoc"
	"go.uber.org/zap"
)

// Generator builds an OpenAPI document from the handlers registered with it.
// It is safe for concurrent use.
type Generator struct {
	mu     sync.Mutex
	spec   *OpenAPI
	logger *zap.Logger
	cfg    Config
	dirty  bool

	parameterCustomizers []namedCustomizer
	specCustomizers      []SpecCustomizer
	modules              []Module

	overrides         map[reflect.Type]*Schema
	ignored           map[reflect.Type]bool
	deprecatedMarkers []func(doc string) bool
	properties        PropertyResolver
	observers         []RequestTypeObserver
	operationIDs      map[string]int
}

// Option configures a Generator.
type Option func(*Generator)

func WithLogger(logger *zap.Logger) Option {
	return func(g *Generator) {
		if logger != nil {
			g.logger = logger
		}
	}
}

func WithConfig(cfg Config) Option {
	return func(g *Generator) {
		g.cfg = cfg.WithDefaults()
	}
}

func WithServers(servers ...Server) Option {
	return func(g *Generator) {
		g.spec.Servers = append(g.spec.Servers, servers...)
	}
}

// WithParameterCustomizer registers c ahead of any module supplied customizer.
func WithParameterCustomizer(name string, c ParameterCustomizer) Option {
	return func(g *Generator) {
		g.parameterCustomizers = append(g.parameterCustomizers, namedCustomizer{name: name, customizer: c})
	}
}

func WithSpecCustomizer(c SpecCustomizer) Option {
	return func(g *Generator) {
		g.specCustomizers = append(g.specCustomizers, c)
	}
}

// WithSecurityScheme declares a security scheme in the document components.
func WithSecurityScheme(name string, scheme *SecurityScheme) Option {
	return func(g *Generator) {
		if g.spec.Components.SecuritySchemes == nil {
			g.spec.Components.SecuritySchemes = make(map[string]*SecurityScheme)
		}
		g.spec.Components.SecuritySchemes[name] = scheme
	}
}

// WithModule installs m once every other option has been applied.
func WithModule(m Module) Option {
	return func(g *Generator) {
		g.modules = append(g.modules, m)
	}
}

// NewGenerator creates a generator for a document described by info.
func NewGenerator(info Info, opts ...Option) *Generator {
	g := &Generator{
		spec: &OpenAPI{
			OpenAPI: Version,
			Info:    info,
			Paths:   make(Paths),
			Components: &Components{
				Schemas: make(map[string]*Schema),
			},
		},
		logger:       zap.NewNop(),
		cfg:          Config{}.WithDefaults(),
		overrides:    make(map[reflect.Type]*Schema),
		ignored:      make(map[reflect.Type]bool),
		properties:   DirectProperties{},
		operationIDs: make(map[string]int),
		dirty:        true,
	}
	for _, opt := range opts {
		opt(g)
	}
	if !g.cfg.IsEnabled() {
		g.logger.Info("openapi documentation disabled")
		return g
	}
	if len(g.cfg.SpecificationStrings) > 0 {
		g.specCustomizers = append(g.specCustomizers, SpecificationStrings(g.cfg.SpecificationStrings))
	}
	for _, m := range g.modules {
		m.Install(g)
		g.logger.Debug("openapi module installed", zap.String("module", m.Name()))
	}
	return g
}

// Config returns the configuration the generator was created with.
func (g *Generator) Config() Config {
	return g.cfg
}

// Logger returns the generator logger. It is never nil.
func (g *Generator) Logger() *zap.Logger {
	return g.logger
}

// Enabled reports whether the generator documents anything.
func (g *Generator) Enabled() bool {
	return g.cfg.IsEnabled()
}

// ReplaceWithSchema documents every occurrence of t with a copy of schema.
func (g *Generator) ReplaceWithSchema(t reflect.Type, schema *Schema) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.overrides[t] = schema
}

// IgnoreRequestType excludes request fields of the given types from parameters and bodies.
func (g *Generator) IgnoreRequestType(types ...reflect.Type) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, t := range types {
		g.ignored[t] = true
	}
}

// AddDeprecatedMarker registers a predicate over doc comments that marks the
// documented type or field deprecated. The `deprecated:"true"` tag is always honoured.
func (g *Generator) AddDeprecatedMarker(marker func(doc string) bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.deprecatedMarkers = append(g.deprecatedMarkers, marker)
}

// SetPropertyResolver replaces the strategy listing the body properties of a struct.
func (g *Generator) SetPropertyResolver(r PropertyResolver) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.properties = r
}

// RequestTypeObserver is notified with the request type of every typed handler
// before its parameters are documented.
type RequestTypeObserver func(t reflect.Type)

func (g *Generator) OnRequestType(observer RequestTypeObserver) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.observers = append(g.observers, observer)
}

func (g *Generator) isIgnored(t reflect.Type) bool {
	return g.ignored[t]
}

func (g *Generator) isDeprecatedDoc(doc string) bool {
	for _, m := range g.deprecatedMarkers {
		if m(doc) {
			return true
		}
	}
	return false
}

// addRoute documents op under method and path. Path parameters written as
// :name or *name are converted to {name}.
func (g *Generator) addRoute(method, path string, op *Operation) {
	path = DocPath(path)
	if g.spec.Paths[path] == nil {
		g.spec.Paths[path] = &PathItem{}
	}
	item := g.spec.Paths[path]
	switch strings.ToUpper(method) {
	case "GET":
		item.Get = op
	case "POST":
		item.Post = op
	case "PUT":
		item.Put = op
	case "DELETE":
		item.Delete = op
	case "PATCH":
		item.Patch = op
	case "OPTIONS":
		item.Options = op
	case "HEAD":
		item.Head = op
	case "TRACE":
		item.Trace = op
	}
	g.addTags(op.Tags)
	g.dirty = true
}

func (g *Generator) addTags(tags []string) {
	for _, name := range tags {
		found := false
		for _, t := range g.spec.Tags {
			if t.Name == name {
				found = true
				break
			}
		}
		if !found {
			g.spec.Tags = append(g.spec.Tags, Tag{Name: name})
		}
	}
}

// GenerateSchema creates a schema for v and registers named structs in the components.
func (g *Generator) GenerateSchema(v interface{}) *Schema {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.schemaOf(reflect.TypeOf(v))
}

var (
	timeType     = reflect.TypeOf(time.Time{})
	durationType = reflect.TypeOf(time.Duration(0))
)

func (g *Generator) schemaOf(t reflect.Type) *Schema {
	if t == nil {
		return &Schema{}
	}
	if s, ok := g.overrides[t]; ok {
		return s.Clone()
	}
	if t.Kind() == reflect.Ptr {
		return g.schemaOf(t.Elem())
	}

	switch t {
	case timeType:
		return &Schema{Type: "string", Format: "date-time"}
	case durationType:
		return &Schema{Type: "integer", Format: "int64"}
	}

	switch t.Kind() {
	case reflect.String:
		return &Schema{Type: "string"}
	case reflect.Int32, reflect.Uint32, reflect.Int16, reflect.Uint16, reflect.Int8, reflect.Uint8:
		return &Schema{Type: "integer", Format: "int32"}
	case reflect.Int, reflect.Int64, reflect.Uint, reflect.Uint64:
		return &Schema{Type: "integer", Format: "int64"}
	case reflect.Float32:
		return &Schema{Type: "number", Format: "float"}
	case reflect.Float64:
		return &Schema{Type: "number", Format: "double"}
	case reflect.Bool:
		return &Schema{Type: "boolean"}
	case reflect.Slice, reflect.Array:
		return &Schema{Type: "array", Items: g.schemaOf(t.Elem())}
	case reflect.Map:
		return &Schema{Type: "object", AdditionalProperties: g.schemaOf(t.Elem())}
	case reflect.Interface:
		return &Schema{}
	case reflect.Struct:
		name := componentName(t)
		if name == "" {
			return g.structSchema(t)
		}
		if _, ok := g.spec.Components.Schemas[name]; !ok {
			// placeholder against recursive types
			g.spec.Components.Schemas[name] = &Schema{}
			g.spec.Components.Schemas[name] = g.structSchema(t)
			g.dirty = true
		}
		return &Schema{Ref: "#/components/schemas/" + name}
	}
	return &Schema{Type: "string"}
}

func (g *Generator) structSchema(t reflect.Type) *Schema {
	schema := &Schema{
		Type:       "object",
		Properties: make(map[string]*Schema),
	}
	for _, p := range g.properties.Properties(t) {
		if g.isIgnored(p.Field.Type) {
			continue
		}
		if _, _, bound := amarodoc.ParamSource(p.Field); bound {
			continue
		}
		ps := g.schemaOf(p.Field.Type)
		if p.AsString {
			ps = &Schema{Type: "string"}
		}
		decorate(ps, p.Field, p.Nullable)
		schema.Properties[p.Name] = ps
		if p.Required {
			schema.Required = append(schema.Required, p.Name)
		}
	}
	return schema
}

// decorate copies field level documentation onto s. References stay bare,
// siblings of $ref are ignored by OpenAPI 3.0 readers.
func decorate(s *Schema, f reflect.StructField, nullable bool) {
	if s.Ref != "" {
		return
	}
	s.Nullable = nullable
	if hint, ok := ParameterDoc(f.Tag); ok {
		s.Description = hint.Description
		if hint.Example != "" {
			s.Example = parseLiteral(f.Type, hint.Example)
		}
	}
	if DeprecatedTag(f.Tag) {
		s.Deprecated = true
	}
	constrain(s, f)
}

// constrain copies the default and enum tags of f onto s.
func constrain(s *Schema, f reflect.StructField) {
	if s.Ref != "" {
		return
	}
	if def := amarodoc.DefaultValue(f.Tag); def != amarodoc.NoDefault {
		s.Default = parseLiteral(f.Type, def)
	}
	if enum, ok := f.Tag.Lookup("enum"); ok && enum != "" {
		s.Enum = nil
		for _, v := range strings.Split(enum, ",") {
			s.Enum = append(s.Enum, parseLiteral(f.Type, v))
		}
	}
}

func componentName(t reflect.Type) string {
	name := t.Name()
	i := strings.IndexByte(name, '[')
	if i < 0 {
		return name
	}
	// instantiated generics carry qualified type arguments in their name
	base := name[:i]
	for _, arg := range strings.Split(strings.TrimSuffix(name[i+1:], "]"), ",") {
		arg = strings.TrimLeft(strings.TrimSpace(arg), "*[]")
		if j := strings.LastIndexAny(arg, "/."); j >= 0 {
			arg = arg[j+1:]
		}
		base += "_" + arg
	}
	return base
}
