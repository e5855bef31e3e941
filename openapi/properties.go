package openapi

import (
	"reflect"
	"strings"
)

// Property is one documented property of a struct schema.
type Property struct {
	Name     string
	Field    reflect.StructField
	Required bool
	// Nullable marks the property schema nullable.
	Nullable bool
	// AsString documents the value as a JSON string.
	AsString bool
}

// PropertyResolver lists the properties of a struct schema.
type PropertyResolver interface {
	Properties(t reflect.Type) []Property
}

// DirectProperties documents the exported fields declared directly on a struct
// under their json name. No property is required.
type DirectProperties struct{}

func (DirectProperties) Properties(t reflect.Type) []Property {
	var props []Property
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		name, _, skip := JSONName(f)
		if skip {
			continue
		}
		props = append(props, Property{Name: name, Field: f})
	}
	return props
}

// JSONName returns the name encoding/json marshals f under, the remaining tag
// options, and whether the field is skipped entirely.
func JSONName(f reflect.StructField) (name string, opts []string, skip bool) {
	tag := f.Tag.Get("json")
	if tag == "-" {
		return "", nil, true
	}
	parts := strings.Split(tag, ",")
	name = parts[0]
	if name == "" {
		name = f.Name
	}
	return name, parts[1:], false
}
