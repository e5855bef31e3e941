package nullable

import (
	"context"
	"reflect"
	"strings"

	"github.com/buildwithgo/amarodoc/openapi"
	"go.uber.org/zap"
)

// CustomizerName is the name the resolver is registered under.
const CustomizerName = "nullableRequestParameterCustomizer"

var (
	bytesType      = reflect.TypeOf([]byte(nil))
	contextType    = reflect.TypeOf((*context.Context)(nil)).Elem()
	cancelFuncType = reflect.TypeOf(context.CancelFunc(nil))
)

type module struct{}

// Module returns the conventions module. It follows the configuration of the
// generator it is installed into: the parameter resolver is registered only
// when NullableRequestParameterEnabled holds and no parameter customizer is
// registered yet. Generators with documentation disabled install no modules.
func Module() openapi.Module {
	return module{}
}

func (module) Name() string {
	return "nullable"
}

func (module) Install(g *openapi.Generator) {
	cfg := g.Config()
	if !cfg.IsEnabled() {
		return
	}
	table := NewTable()
	g.OnRequestType(table.Record)
	if cfg.IsNullableRequestParameterEnabled() {
		if !g.AddParameterCustomizerIfMissing(CustomizerName, NewResolver(table)) {
			g.Logger().Info("nullable parameter resolver not installed, a parameter customizer is already registered",
				zap.Strings("customizers", g.ParameterCustomizers()))
		}
	}
	g.ReplaceWithSchema(bytesType, &openapi.Schema{Type: "string", Format: "byte"})
	g.IgnoreRequestType(contextType, cancelFuncType)
	g.AddDeprecatedMarker(GoDeprecated)
	g.SetPropertyResolver(JSONProperties{})
}

// GoDeprecated reports whether doc has a paragraph starting with "Deprecated: ".
func GoDeprecated(doc string) bool {
	for _, para := range strings.Split(doc, "\n\n") {
		if strings.HasPrefix(strings.TrimSpace(para), "Deprecated: ") {
			return true
		}
	}
	return false
}
