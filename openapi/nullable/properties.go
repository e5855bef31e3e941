package nullable

import (
	"reflect"
	"slices"
	"strings"

	"github.com/buildwithgo/amarodoc"
	"github.com/buildwithgo/amarodoc/openapi"
)

// JSONProperties lists struct properties the way encoding/json marshals them:
// embedded structs without a JSON name are flattened, a shallower field hides
// deeper ones, and same-depth conflicts without a single tagged field drop the
// name. Properties are required unless they are omitempty, omitzero or nil-able.
type JSONProperties struct{}

type candidate struct {
	prop   openapi.Property
	depth  int
	tagged bool
}

func (JSONProperties) Properties(t reflect.Type) []openapi.Property {
	var all []candidate
	collect(t, 0, nil, map[reflect.Type]bool{}, &all)

	byName := make(map[string][]candidate)
	var order []string
	for _, c := range all {
		if _, seen := byName[c.prop.Name]; !seen {
			order = append(order, c.prop.Name)
		}
		byName[c.prop.Name] = append(byName[c.prop.Name], c)
	}

	props := make([]openapi.Property, 0, len(order))
	for _, name := range order {
		if c, ok := dominant(byName[name]); ok {
			props = append(props, c.prop)
		}
	}
	return props
}

func dominant(cs []candidate) (candidate, bool) {
	depth := cs[0].depth
	for _, c := range cs {
		depth = min(depth, c.depth)
	}
	var shallow []candidate
	for _, c := range cs {
		if c.depth == depth {
			shallow = append(shallow, c)
		}
	}
	if len(shallow) == 1 {
		return shallow[0], true
	}
	var tagged []candidate
	for _, c := range shallow {
		if c.tagged {
			tagged = append(tagged, c)
		}
	}
	if len(tagged) == 1 {
		return tagged[0], true
	}
	return candidate{}, false
}

func collect(t reflect.Type, depth int, index []int, visiting map[reflect.Type]bool, out *[]candidate) {
	if visiting[t] {
		return
	}
	visiting[t] = true
	defer delete(visiting, t)

	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		f.Index = append(slices.Clone(index), i)
		name, opts, skip := openapi.JSONName(f)
		if skip {
			continue
		}
		tagName, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		named := tagName != ""

		if f.Anonymous {
			ft := f.Type
			if ft.Kind() == reflect.Ptr {
				ft = ft.Elem()
			}
			if !f.IsExported() && ft.Kind() != reflect.Struct {
				continue
			}
			if !named && ft.Kind() == reflect.Struct {
				collect(ft, depth+1, f.Index, visiting, out)
				continue
			}
		} else if !f.IsExported() {
			continue
		}

		nilable := amarodoc.Nullable(f.Type)
		optional := slices.Contains(opts, "omitempty") || slices.Contains(opts, "omitzero")
		*out = append(*out, candidate{
			prop: openapi.Property{
				Name:     name,
				Field:    f,
				Required: !optional && !nilable,
				Nullable: nilable,
				AsString: slices.Contains(opts, "string") && quotable(f.Type),
			},
			depth:  depth,
			tagged: named,
		})
	}
}

// quotable reports whether the ,string option applies to t.
func quotable(t reflect.Type) bool {
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.Bool, reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}
