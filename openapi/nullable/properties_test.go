package nullable

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/buildwithgo/amarodoc/openapi"
)

type Audit struct {
	CreatedBy string `json:"created_by"`
	Note      string
}

type Meta struct {
	Note string `json:"Note"`
}

type pet struct {
	Audit
	*Meta
	Labels  Meta              `json:"labels"`
	ID      int64             `json:"id,string"`
	Name    string            `json:"name"`
	Nick    string            `json:"nick,omitempty"`
	Born    *int              `json:"born"`
	Extra   map[string]string `json:"extra,omitzero"`
	Skipped string            `json:"-"`
	Tags    []string          `json:",omitempty"`
	secret  string
}

func TestJSONProperties(t *testing.T) {
	props := JSONProperties{}.Properties(reflect.TypeOf(pet{}))

	byName := make(map[string]openapi.Property)
	var names []string
	for _, p := range props {
		byName[p.Name] = p
		names = append(names, p.Name)
	}
	assert.Equal(t, []string{"created_by", "Note", "labels", "id", "name", "nick", "born", "extra", "Tags"}, names)

	assert.True(t, byName["name"].Required)
	assert.False(t, byName["nick"].Required)
	assert.False(t, byName["extra"].Required)
	assert.True(t, byName["extra"].Nullable)
	assert.False(t, byName["born"].Required)
	assert.True(t, byName["born"].Nullable)
	assert.True(t, byName["id"].AsString)
	assert.False(t, byName["name"].AsString)
	assert.Equal(t, reflect.TypeOf(Meta{}), byName["labels"].Field.Type)
	assert.Equal(t, []int{1, 0}, byName["Note"].Field.Index, "the tagged field wins the same depth conflict")
}

func TestJSONPropertiesConflicts(t *testing.T) {
	type A struct{ X, Y string }
	type B struct{ X string }
	type outer struct {
		A
		B
		Y int
	}
	props := JSONProperties{}.Properties(reflect.TypeOf(outer{}))
	require.Len(t, props, 1, "X is ambiguous and dropped, Y is shadowed")
	assert.Equal(t, "Y", props[0].Name)
	assert.Equal(t, reflect.TypeOf(0), props[0].Field.Type)
}

type recursive struct {
	*recursive
	Value string `json:"value"`
}

func TestJSONPropertiesRecursiveEmbedding(t *testing.T) {
	props := JSONProperties{}.Properties(reflect.TypeOf(recursive{}))
	require.Len(t, props, 1)
	assert.Equal(t, "value", props[0].Name)
}
