package openapi

import "go.uber.org/zap"

// ParameterCustomizer adjusts a documented parameter. It receives the output of
// the previous customizer, which may be nil, and returns the parameter to keep;
// returning nil drops the parameter from the operation.
type ParameterCustomizer interface {
	CustomizeParameter(p *Parameter, decl ParameterDeclaration) *Parameter
}

// ParameterCustomizerFunc adapts a function to ParameterCustomizer.
type ParameterCustomizerFunc func(p *Parameter, decl ParameterDeclaration) *Parameter

func (f ParameterCustomizerFunc) CustomizeParameter(p *Parameter, decl ParameterDeclaration) *Parameter {
	return f(p, decl)
}

// SpecCustomizer adjusts the whole document before it is served. Customizers
// run every time the document changed since the last run, so they must be idempotent.
type SpecCustomizer interface {
	CustomizeSpec(spec *OpenAPI)
}

// SpecCustomizerFunc adapts a function to SpecCustomizer.
type SpecCustomizerFunc func(spec *OpenAPI)

func (f SpecCustomizerFunc) CustomizeSpec(spec *OpenAPI) {
	f(spec)
}

// Module bundles registrations against a Generator. Modules are installed by
// NewGenerator after every explicit option has been applied.
type Module interface {
	Name() string
	Install(g *Generator)
}

type namedCustomizer struct {
	name       string
	customizer ParameterCustomizer
}

// AddParameterCustomizer appends c to the customizer chain.
func (g *Generator) AddParameterCustomizer(name string, c ParameterCustomizer) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.parameterCustomizers = append(g.parameterCustomizers, namedCustomizer{name: name, customizer: c})
	g.logger.Debug("parameter customizer registered", zap.String("customizer", name))
}

// AddParameterCustomizerIfMissing registers c only when no parameter customizer
// is registered yet. It reports whether c was added.
func (g *Generator) AddParameterCustomizerIfMissing(name string, c ParameterCustomizer) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(g.parameterCustomizers) > 0 {
		g.logger.Debug("parameter customizer skipped",
			zap.String("customizer", name),
			zap.String("registered", g.parameterCustomizers[0].name))
		return false
	}
	g.parameterCustomizers = append(g.parameterCustomizers, namedCustomizer{name: name, customizer: c})
	g.logger.Debug("parameter customizer registered", zap.String("customizer", name))
	return true
}

// ParameterCustomizers returns the names of the registered parameter customizers in order.
func (g *Generator) ParameterCustomizers() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	names := make([]string, 0, len(g.parameterCustomizers))
	for _, nc := range g.parameterCustomizers {
		names = append(names, nc.name)
	}
	return names
}

// AddSpecCustomizer appends c to the document customizers.
func (g *Generator) AddSpecCustomizer(c SpecCustomizer) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.specCustomizers = append(g.specCustomizers, c)
	g.dirty = true
}

func (g *Generator) customizeParameter(p *Parameter, decl ParameterDeclaration) *Parameter {
	for _, nc := range g.parameterCustomizers {
		p = nc.customizer.CustomizeParameter(p, decl)
	}
	return p
}
