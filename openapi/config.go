package openapi

// Config controls document generation. The zero value is usable: nil flags
// default to enabled.
type Config struct {
	// Enabled turns documentation on. When false typed handlers are only wrapped.
	Enabled *bool `yaml:"enabled"`
	// NullableRequestParameterEnabled installs the nil-able parameter customizer
	// of the openapi/nullable module.
	NullableRequestParameterEnabled *bool `yaml:"nullable-request-parameter-enabled"`
	// Path the JSON document is served on.
	Path string `yaml:"path"`
	// DocsPath the API reference page is served on.
	DocsPath string `yaml:"docs-path"`
	// SpecificationStrings overrides document strings, see SpecificationStrings.
	SpecificationStrings map[string]string `yaml:"specification-strings"`
}

const (
	DefaultPath     = "/openapi.json"
	DefaultDocsPath = "/docs"
)

// IsEnabled reports whether documentation is generated.
func (c Config) IsEnabled() bool {
	return c.Enabled == nil || *c.Enabled
}

// IsNullableRequestParameterEnabled reports whether the nil-able parameter customizer is wanted.
func (c Config) IsNullableRequestParameterEnabled() bool {
	return c.NullableRequestParameterEnabled == nil || *c.NullableRequestParameterEnabled
}

// WithDefaults returns c with empty paths replaced by their defaults.
func (c Config) WithDefaults() Config {
	if c.Path == "" {
		c.Path = DefaultPath
	}
	if c.DocsPath == "" {
		c.DocsPath = DefaultDocsPath
	}
	return c
}
