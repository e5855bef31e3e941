package nullable_test

import (
	"context"
	"database/sql"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/buildwithgo/amarodoc"
	"github.com/buildwithgo/amarodoc/openapi"
	"github.com/buildwithgo/amarodoc/openapi/nullable"
)

type uploadRequest struct {
	Ctx    context.Context
	Cancel context.CancelFunc
	Limit  int          `query:"limit" default:"20"`
	Tag    *string      `query:"tag"`
	Name   string       `query:"name"`
	Since  sql.NullTime `query:"since"`
	Token  *string      `header:"X-Token" required:"true"`
	Photo  []byte       `json:"photo,omitempty"`
	Title  string       `json:"title"`
}

type uploadResponse struct {
	ID string `json:"id"`
}

func upload(c *amarodoc.Context, req *uploadRequest) (*uploadResponse, error) {
	return &uploadResponse{ID: "1"}, nil
}

func required(op *openapi.Operation) map[string]bool {
	m := make(map[string]bool)
	for _, p := range op.Parameters {
		m[p.Name] = p.Required
	}
	return m
}

func TestModule(t *testing.T) {
	gen := openapi.NewGenerator(openapi.Info{Title: "Uploads", Version: "1.0.0"},
		openapi.WithModule(nullable.Module()),
	)
	assert.Equal(t, []string{nullable.CustomizerName}, gen.ParameterCustomizers())
	openapi.WrapHandler(gen, http.MethodPost, "/uploads", upload)

	spec := gen.Spec()
	op := spec.Paths["/uploads"].Post
	require.NotNil(t, op)
	assert.Equal(t, map[string]bool{
		"limit":   false,
		"tag":     false,
		"name":    true,
		"since":   false,
		"X-Token": true,
	}, required(op))

	body := spec.Components.Schemas["uploadRequest"]
	require.NotNil(t, body)
	assert.Equal(t, []string{"photo", "title"}, keys(body.Properties))
	assert.Equal(t, &openapi.Schema{Type: "string", Format: "byte", Nullable: true}, body.Properties["photo"])
	assert.Equal(t, []string{"title"}, body.Required)

	findings, err := gen.Validate(context.Background())
	require.NoError(t, err)
	assert.Empty(t, findings)
}

func keys(m map[string]*openapi.Schema) []string {
	var out []string
	for _, k := range []string{"Ctx", "Cancel", "limit", "photo", "title"} {
		if _, ok := m[k]; ok {
			out = append(out, k)
		}
	}
	return out
}

func TestModuleExplicitCustomizerWins(t *testing.T) {
	everythingOptional := openapi.ParameterCustomizerFunc(func(p *openapi.Parameter, _ openapi.ParameterDeclaration) *openapi.Parameter {
		p.Required = false
		return p
	})
	gen := openapi.NewGenerator(openapi.Info{Title: "Uploads", Version: "1.0.0"},
		openapi.WithModule(nullable.Module()),
		openapi.WithParameterCustomizer("custom", everythingOptional),
	)
	assert.Equal(t, []string{"custom"}, gen.ParameterCustomizers())

	openapi.WrapHandler(gen, http.MethodPost, "/uploads", upload)
	for name, req := range required(gen.Spec().Paths["/uploads"].Post) {
		assert.False(t, req, name)
	}
}

func TestModuleFlags(t *testing.T) {
	off := false

	t.Run("ResolverDisabled", func(t *testing.T) {
		gen := openapi.NewGenerator(openapi.Info{Title: "Uploads", Version: "1.0.0"},
			openapi.WithModule(nullable.Module()),
			openapi.WithConfig(openapi.Config{NullableRequestParameterEnabled: &off}),
		)
		assert.Empty(t, gen.ParameterCustomizers())
		openapi.WrapHandler(gen, http.MethodPost, "/uploads", upload)

		spec := gen.Spec()
		assert.Equal(t, map[string]bool{
			"limit":   false,
			"tag":     false,
			"name":    false,
			"since":   false,
			"X-Token": true,
		}, required(spec.Paths["/uploads"].Post), "only hints decide")
		assert.Equal(t, "byte", spec.Components.Schemas["uploadRequest"].Properties["photo"].Format,
			"the other conventions stay installed")
	})

	t.Run("DocumentationDisabled", func(t *testing.T) {
		cfg := openapi.Config{Enabled: &off}
		gen := openapi.NewGenerator(openapi.Info{Title: "Uploads", Version: "1.0.0"},
			openapi.WithConfig(cfg),
			openapi.WithModule(nullable.Module()),
		)
		assert.Empty(t, gen.ParameterCustomizers())
	})
}

func TestGoDeprecated(t *testing.T) {
	assert.True(t, nullable.GoDeprecated("Pet is an animal.\n\nDeprecated: use Animal."))
	assert.True(t, nullable.GoDeprecated("Deprecated: gone."))
	assert.False(t, nullable.GoDeprecated("Pet is an animal. Deprecated: not a paragraph."))
	assert.False(t, nullable.GoDeprecated(""))
}
