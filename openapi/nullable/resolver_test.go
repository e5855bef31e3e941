package nullable

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/buildwithgo/amarodoc/openapi"
)

type scenarios struct {
	Plain        int    `query:"plain"`
	Pointer      *int   `query:"pointer"`
	Defaulted    int    `query:"defaulted" default:"5"`
	Hinted       *int   `query:"hinted" required:"true"`
	HintedFalse  int    `query:"hinted_false" required:"false"`
	DocOnly      *int   `query:"doc_only" doc:"described"`
	Both         *int   `query:"both" default:"1" required:"true"`
	Sentinel     int    `query:"sentinel" default:"\n\t\t\n\t\t\n\ue000\ue001\ue002\n\t\t\t\t\n"`
	EmptyDefault int    `header:"X-Empty" default:""`
	PathDefault  int    `path:"id" default:"3"`
	Slice        []int  `query:"slice"`
	Cookie       string `cookie:"session" default:"anon"`
}

func declOf(t *testing.T, owner reflect.Type, name string) openapi.ParameterDeclaration {
	t.Helper()
	for i, f := range openapi.RequestFields(owner) {
		if f.Name == name {
			return openapi.ParameterDeclaration{Index: i, Name: f.Name, Type: f.Type, Tag: f.Tag, Owner: owner}
		}
	}
	t.Fatalf("no field %s", name)
	return openapi.ParameterDeclaration{}
}

func newScenarioResolver() *Resolver {
	table := NewTable()
	table.Record(reflect.TypeOf(scenarios{}))
	return NewResolver(table)
}

func TestResolveScenarios(t *testing.T) {
	r := newScenarioResolver()
	owner := reflect.TypeOf(scenarios{})

	cases := []struct {
		field    string
		initial  bool
		required bool
	}{
		{"Plain", false, true},
		{"Pointer", true, false},
		{"Defaulted", true, false},
		{"Hinted", false, true},
		{"HintedFalse", false, true},
		{"DocOnly", true, false},
		{"Both", false, true},
		{"Sentinel", false, true},
		{"EmptyDefault", true, false},
		{"PathDefault", false, true},
		{"Slice", true, false},
		{"Cookie", true, false},
	}
	for _, tc := range cases {
		t.Run(tc.field, func(t *testing.T) {
			p := &openapi.Parameter{Name: tc.field, Required: tc.initial}
			got := r.Resolve(p, declOf(t, owner, tc.field))
			require.Same(t, p, got)
			assert.Equal(t, tc.required, got.Required)
		})
	}
}

func TestResolveNilParameter(t *testing.T) {
	r := NewResolver(LookupFunc(func(openapi.ParameterDeclaration) (Field, bool) {
		t.Fatal("declaration inspected for a nil parameter")
		return Field{}, false
	}))
	assert.Nil(t, r.Resolve(nil, openapi.ParameterDeclaration{Owner: reflect.TypeOf(scenarios{})}))
}

func TestResolveLeavesUnknownDeclarationsUntouched(t *testing.T) {
	r := newScenarioResolver()
	owner := reflect.TypeOf(scenarios{})

	decls := map[string]openapi.ParameterDeclaration{
		"no owner":      {Index: 0, Name: "Plain"},
		"return slot":   {Index: openapi.ReturnIndex, Name: "Plain", Owner: owner},
		"unknown owner": {Index: 0, Name: "Plain", Owner: reflect.TypeOf(struct{ Plain int }{})},
		"name mismatch": {Index: 0, Name: "Pointer", Owner: owner},
		"out of range":  {Index: 99, Name: "Plain", Owner: owner},
	}
	for name, decl := range decls {
		t.Run(name, func(t *testing.T) {
			for _, initial := range []bool{true, false} {
				p := &openapi.Parameter{Name: "x", Required: initial}
				got := r.Resolve(p, decl)
				require.Same(t, p, got)
				assert.Equal(t, initial, got.Required)
			}
		})
	}
}

func TestResolverIsACustomizer(t *testing.T) {
	var c openapi.ParameterCustomizer = newScenarioResolver()
	p := c.CustomizeParameter(&openapi.Parameter{}, declOf(t, reflect.TypeOf(scenarios{}), "Plain"))
	assert.True(t, p.Required)
}

func TestTable(t *testing.T) {
	type embedded struct {
		Trace string `header:"X-Trace"`
	}
	type request struct {
		embedded
		ID   int `path:"id"`
		skip int
	}
	table := NewTable()
	rt := reflect.TypeOf(request{})
	table.Record(rt)
	table.Record(rt)
	table.Record(nil)
	assert.Equal(t, 1, table.Len())

	f, ok := table.Lookup(openapi.ParameterDeclaration{Index: 0, Name: "Trace", Owner: rt})
	require.True(t, ok)
	assert.Equal(t, reflect.TypeOf(""), f.Type)
	assert.Equal(t, "X-Trace", f.Tag.Get("header"))

	f, ok = table.Lookup(openapi.ParameterDeclaration{Index: 1, Name: "ID", Owner: rt})
	require.True(t, ok)
	assert.Equal(t, "id", f.Tag.Get("path"))

	_, ok = table.Lookup(openapi.ParameterDeclaration{Index: 2, Name: "skip", Owner: rt})
	assert.False(t, ok)
	_, ok = table.Lookup(openapi.ParameterDeclaration{Index: -1, Name: "request", Owner: rt})
	assert.False(t, ok, "the receiver slot is never a parameter")
}
