package nullable

import (
	"github.com/buildwithgo/amarodoc"
	"github.com/buildwithgo/amarodoc/openapi"
)

// Resolver decides whether documented request parameters are required.
// It holds no state besides its Lookup and is safe for concurrent use.
type Resolver struct {
	lookup Lookup
}

func NewResolver(lookup Lookup) *Resolver {
	return &Resolver{lookup: lookup}
}

// Resolve sets p.Required from the declaration of the parameter. The first
// matching rule wins:
//
//  1. a `required:"true"` tag makes it required;
//  2. a query, header or cookie binding with a default makes it optional;
//  3. otherwise it is required unless its type can be nil.
//
// A nil p is returned as is. Parameters without a Go declaration, the result
// slot and declarations the Lookup does not know are returned unchanged.
func (r *Resolver) Resolve(p *openapi.Parameter, decl openapi.ParameterDeclaration) *openapi.Parameter {
	if p == nil {
		return nil
	}
	if decl.Owner == nil || decl.Index == openapi.ReturnIndex {
		return p
	}
	field, ok := r.lookup.Lookup(decl)
	if !ok {
		return p
	}

	if hint, ok := openapi.ParameterDoc(field.Tag); ok && hint.Required {
		p.Required = true
		return p
	}
	if b, ok := openapi.BindingOf(field.Tag); ok && b.Source != amarodoc.SourcePath && b.HasDefault() {
		p.Required = false
		return p
	}
	p.Required = !amarodoc.Nullable(field.Type)
	return p
}

// CustomizeParameter implements openapi.ParameterCustomizer.
func (r *Resolver) CustomizeParameter(p *openapi.Parameter, decl openapi.ParameterDeclaration) *openapi.Parameter {
	return r.Resolve(p, decl)
}
