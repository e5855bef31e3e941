package openapi

import (
	"encoding/json"
	"reflect"
	"strconv"

	"github.com/buildwithgo/amarodoc"
)

// ReturnIndex is the Index of the synthetic declaration describing a handler's result.
const ReturnIndex = -1

// ParameterDeclaration describes the Go declaration a documented parameter came from.
type ParameterDeclaration struct {
	// Index is the position of the field in RequestFields(Owner), or ReturnIndex.
	Index int
	// Name is the Go field name.
	Name string
	// Type is the declared field type.
	Type reflect.Type
	// Tag holds the struct tags of the field.
	Tag reflect.StructTag
	// Owner is the request struct declaring the field. It is nil for parameters
	// declared by hand with Generator.Document.
	Owner reflect.Type
	// OperationID of the operation being documented.
	OperationID string
}

// DocHint is the explicit documentation attached to a field with the
// doc, example and required tags.
type DocHint struct {
	Description string
	Example     string
	Required    bool
}

// ParameterDoc returns the documentation hint of tag. ok is false when none of
// the doc, example or required tags is present.
func ParameterDoc(tag reflect.StructTag) (hint DocHint, ok bool) {
	if v, found := tag.Lookup("doc"); found {
		hint.Description = v
		ok = true
	}
	if v, found := tag.Lookup("example"); found {
		hint.Example = v
		ok = true
	}
	if v, found := tag.Lookup("required"); found {
		hint.Required, _ = strconv.ParseBool(v)
		ok = true
	}
	return hint, ok
}

// Binding describes where a parameter is bound from and its literal default.
type Binding struct {
	Source  string
	Name    string
	Default string
}

// HasDefault reports whether the binding carries a usable default.
func (b Binding) HasDefault() bool {
	return b.Default != amarodoc.NoDefault
}

// BindingOf returns the binding declared by tag.
func BindingOf(tag reflect.StructTag) (Binding, bool) {
	source, name, ok := amarodoc.ParamSource(reflect.StructField{Tag: tag})
	if !ok {
		return Binding{}, false
	}
	return Binding{Source: source, Name: name, Default: amarodoc.DefaultValue(tag)}, true
}

// DeprecatedTag reports whether tag marks a field deprecated.
func DeprecatedTag(tag reflect.StructTag) bool {
	v, _ := strconv.ParseBool(tag.Get("deprecated"))
	return v
}

// RequestFields lists the fields of a request struct that can be documented:
// exported, visible (promoted through embedding included) and not themselves
// embedded structs. Declaration indexes refer to positions in this list.
func RequestFields(t reflect.Type) []reflect.StructField {
	for t != nil && t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return nil
	}
	var fields []reflect.StructField
	for _, f := range reflect.VisibleFields(t) {
		if !f.IsExported() || f.Anonymous {
			continue
		}
		fields = append(fields, f)
	}
	return fields
}

// parseLiteral converts a tag literal to a value of type t for the document.
// Literals that do not decode as JSON into t are kept as strings.
func parseLiteral(t reflect.Type, s string) interface{} {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() == reflect.String {
		return s
	}
	v := reflect.New(t)
	if err := json.Unmarshal([]byte(s), v.Interface()); err != nil {
		return s
	}
	return v.Elem().Interface()
}
