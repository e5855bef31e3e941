package amarodoc

import (
	"database/sql"
	"database/sql/driver"
	"encoding"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strconv"
	"strings"
)

// Parameter sources. A struct field is bound from a source when it carries
// the source's tag, e.g. `query:"limit"`.
const (
	SourcePath   = "path"
	SourceQuery  = "query"
	SourceHeader = "header"
	SourceCookie = "cookie"
)

// Sources lists the parameter sources in lookup order.
var Sources = []string{SourcePath, SourceQuery, SourceHeader, SourceCookie}

// NoDefault is the `default` tag value meaning "no default provided".
// A missing `default` tag is equivalent.
const NoDefault = "\n\t\t\n\t\t\n\ue000\ue001\ue002\n\t\t\t\t\n"

// ParamSource returns the source and external name a field is bound from.
func ParamSource(f reflect.StructField) (source, name string, ok bool) {
	return fieldSource(f, Sources)
}

// DefaultValue returns the literal `default` tag value, or NoDefault.
func DefaultValue(tag reflect.StructTag) string {
	v, ok := tag.Lookup("default")
	if !ok {
		return NoDefault
	}
	return v
}

var (
	valuerType = reflect.TypeOf((*driver.Valuer)(nil)).Elem()
)

// Nullable reports whether a value of type t may be absent: pointers, interfaces,
// maps, slices, funcs and chans, and database/sql style wrappers that implement
// driver.Valuer and carry a Valid flag.
func Nullable(t reflect.Type) bool {
	if t == nil {
		return true
	}
	switch t.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return true
	case reflect.Struct:
		if !t.Implements(valuerType) && !reflect.PointerTo(t).Implements(valuerType) {
			return false
		}
		f, ok := t.FieldByName("Valid")
		return ok && f.Type.Kind() == reflect.Bool
	}
	return false
}

// BindJSON decodes the request body into v. An empty body leaves v untouched.
func (c *Context) BindJSON(v interface{}) error {
	if err := checkTarget(v); err != nil {
		return err
	}
	if c.Request.Body == nil || c.Request.Body == http.NoBody {
		return nil
	}
	if err := json.NewDecoder(c.Request.Body).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return NewHTTPError(http.StatusBadRequest, "invalid JSON body").SetInternal(err)
	}
	return nil
}

// BindQuery binds `query` tagged fields of v.
func (c *Context) BindQuery(v interface{}) error {
	return c.bind(v, SourceQuery)
}

// BindParams binds every parameter source of v: path, query, header and cookie.
// Bound fields are reset first, so a value decoded from the body never stands
// in for a parameter. A parameter tagged `required:"true"` must be sent. Any
// other parameter without a value takes its `default`; a parameter with
// neither fails with *MissingParameterError unless its type is Nullable.
func (c *Context) BindParams(v interface{}) error {
	return c.bind(v, Sources...)
}

func (c *Context) values(source, name string) []string {
	switch source {
	case SourcePath:
		if v, ok := c.lookupPathParam(name); ok {
			return []string{v}
		}
	case SourceQuery:
		return c.Request.URL.Query()[name]
	case SourceHeader:
		return c.Request.Header.Values(name)
	case SourceCookie:
		if ck, err := c.Request.Cookie(name); err == nil {
			return []string{ck.Value}
		}
	}
	return nil
}

func checkTarget(v interface{}) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return ErrBindTarget
	}
	return nil
}

func (c *Context) bind(v interface{}, sources ...string) error {
	if err := checkTarget(v); err != nil {
		return err
	}
	rv := reflect.ValueOf(v).Elem()
	if rv.Kind() != reflect.Struct {
		return ErrBindTarget
	}

	for _, f := range reflect.VisibleFields(rv.Type()) {
		if !f.IsExported() || f.Anonymous {
			continue
		}
		source, name, ok := fieldSource(f, sources)
		if !ok {
			continue
		}
		fv, err := rv.FieldByIndexErr(f.Index)
		if err != nil {
			// promoted through a nil embedded pointer
			continue
		}

		fv.Set(reflect.Zero(fv.Type()))
		values := c.values(source, name)
		if len(values) == 0 {
			def := DefaultValue(f.Tag)
			switch {
			case isRequired(f.Tag):
				return &MissingParameterError{Source: source, Name: name}
			case def != NoDefault:
				values = splitDefault(f.Type, def)
			case Nullable(f.Type):
				continue
			default:
				return &MissingParameterError{Source: source, Name: name}
			}
		}
		if err := setField(fv, values); err != nil {
			return &BindError{Source: source, Name: name, Err: err}
		}
	}
	return nil
}

func isRequired(tag reflect.StructTag) bool {
	v, _ := strconv.ParseBool(tag.Get("required"))
	return v
}

func fieldSource(f reflect.StructField, sources []string) (string, string, bool) {
	for _, src := range sources {
		v, found := f.Tag.Lookup(src)
		if found && v != "" && v != "-" {
			return src, v, true
		}
	}
	return "", "", false
}

func splitDefault(t reflect.Type, def string) []string {
	if t.Kind() == reflect.Slice && t.Elem().Kind() != reflect.Uint8 {
		return strings.Split(def, ",")
	}
	return []string{def}
}

var (
	textUnmarshalerType = reflect.TypeOf((*encoding.TextUnmarshaler)(nil)).Elem()
	scannerType         = reflect.TypeOf((*sql.Scanner)(nil)).Elem()
)

func setField(fv reflect.Value, values []string) error {
	ptr := reflect.PointerTo(fv.Type())
	if ptr.Implements(textUnmarshalerType) {
		return fv.Addr().Interface().(encoding.TextUnmarshaler).UnmarshalText([]byte(values[0]))
	}
	if ptr.Implements(scannerType) {
		return fv.Addr().Interface().(sql.Scanner).Scan(values[0])
	}

	switch fv.Kind() {
	case reflect.Ptr:
		elem := reflect.New(fv.Type().Elem())
		if err := setField(elem.Elem(), values); err != nil {
			return err
		}
		fv.Set(elem)
		return nil
	case reflect.Slice:
		if fv.Type().Elem().Kind() == reflect.Uint8 {
			fv.SetBytes([]byte(values[0]))
			return nil
		}
		slice := reflect.MakeSlice(fv.Type(), len(values), len(values))
		for i, s := range values {
			if err := setField(slice.Index(i), []string{s}); err != nil {
				return err
			}
		}
		fv.Set(slice)
		return nil
	}
	return setScalar(fv, values[0])
}

func setScalar(fv reflect.Value, s string) error {
	switch fv.Kind() {
	case reflect.String:
		fv.SetString(s)
	case reflect.Bool:
		b, err := strconv.ParseBool(s)
		if err != nil {
			return err
		}
		fv.SetBool(b)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(s, 10, fv.Type().Bits())
		if err != nil {
			return err
		}
		fv.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(s, 10, fv.Type().Bits())
		if err != nil {
			return err
		}
		fv.SetUint(n)
	case reflect.Float32, reflect.Float64:
		n, err := strconv.ParseFloat(s, fv.Type().Bits())
		if err != nil {
			return err
		}
		fv.SetFloat(n)
	case reflect.Complex64, reflect.Complex128:
		n, err := strconv.ParseComplex(s, fv.Type().Bits())
		if err != nil {
			return err
		}
		fv.SetComplex(n)
	default:
		return fmt.Errorf("unsupported kind %s", fv.Kind())
	}
	return nil
}
