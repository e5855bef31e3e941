package nullable

import (
	"reflect"

	"github.com/buildwithgo/amarodoc/openapi"
)

// Field is the recorded metadata of one request struct field.
type Field struct {
	Name string
	Type reflect.Type
	Tag  reflect.StructTag
}

// Lookup finds the field record of a parameter declaration. ok is false when
// no record applies.
type Lookup interface {
	Lookup(decl openapi.ParameterDeclaration) (Field, bool)
}

// LookupFunc adapts a function to Lookup.
type LookupFunc func(decl openapi.ParameterDeclaration) (Field, bool)

func (f LookupFunc) Lookup(decl openapi.ParameterDeclaration) (Field, bool) {
	return f(decl)
}
