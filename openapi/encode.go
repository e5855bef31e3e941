package openapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/buildwithgo/amarodoc"
	oas "github.com/speakeasy-api/openapi/openapi"
	"gopkg.in/yaml.v3"
)

// Spec returns the document after running the spec customizers.
// The result is shared with the generator and must not be modified.
func (g *Generator) Spec() *OpenAPI {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.prepare()
	return g.spec
}

func (g *Generator) prepare() {
	if !g.dirty {
		return
	}
	for _, c := range g.specCustomizers {
		c.CustomizeSpec(g.spec)
	}
	g.dirty = false
}

// JSON encodes the document.
func (g *Generator) JSON() ([]byte, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.prepare()
	b, err := json.MarshalIndent(g.spec, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("openapi: encode document: %w", err)
	}
	return b, nil
}

// YAML encodes the document as block style YAML with the JSON key order.
func (g *Generator) YAML() ([]byte, error) {
	b, err := g.JSON()
	if err != nil {
		return nil, err
	}
	var node yaml.Node
	if err := yaml.Unmarshal(b, &node); err != nil {
		return nil, fmt.Errorf("openapi: convert document: %w", err)
	}
	plain(&node)
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&node); err != nil {
		return nil, fmt.Errorf("openapi: encode yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("openapi: encode yaml: %w", err)
	}
	return buf.Bytes(), nil
}

// plain drops the flow and quoting styles the JSON input carried.
func plain(n *yaml.Node) {
	n.Style = 0
	for _, c := range n.Content {
		plain(c)
	}
}

// Validate checks the generated document against the OpenAPI specification.
// The returned slice holds the validation findings; err reports a document
// that could not be read at all.
func (g *Generator) Validate(ctx context.Context) ([]error, error) {
	b, err := g.JSON()
	if err != nil {
		return nil, err
	}
	return ValidateDocument(ctx, bytes.NewReader(b))
}

// ValidateDocument checks a JSON or YAML OpenAPI document read from r.
func ValidateDocument(ctx context.Context, r io.Reader) ([]error, error) {
	_, findings, err := oas.Unmarshal(ctx, r)
	if err != nil {
		return nil, fmt.Errorf("openapi: read document: %w", err)
	}
	return findings, nil
}

// Handler serves the document as JSON, or as YAML when the request path ends in .yaml.
func Handler(g *Generator) amarodoc.Handler {
	return func(c *amarodoc.Context) error {
		if strings.HasSuffix(c.Request.URL.Path, ".yaml") {
			b, err := g.YAML()
			if err != nil {
				return err
			}
			return c.Blob(http.StatusOK, "application/yaml", b)
		}
		b, err := g.JSON()
		if err != nil {
			return err
		}
		return c.Blob(http.StatusOK, "application/json", b)
	}
}

// DocsHandler serves the API reference page for the document at g's configured path.
func DocsHandler(g *Generator) amarodoc.Handler {
	page := ScalarHTML(g.Config().Path)
	return func(c *amarodoc.Context) error {
		return c.HTML(http.StatusOK, page)
	}
}

// Getter registers GET routes; *amarodoc.App and *amarodoc.Group satisfy it.
type Getter interface {
	GET(path string, handler amarodoc.Handler, middlewares ...amarodoc.Middleware) error
}

// Mount serves the document on the configured path, its YAML form next to it
// and the reference page on the docs path. Nothing is mounted when documentation is disabled.
func Mount(r Getter, g *Generator) error {
	if !g.Enabled() {
		return nil
	}
	cfg := g.Config()
	yamlPath := strings.TrimSuffix(cfg.Path, ".json") + ".yaml"
	for path, h := range map[string]amarodoc.Handler{
		cfg.Path:     Handler(g),
		yamlPath:     Handler(g),
		cfg.DocsPath: DocsHandler(g),
	} {
		if err := r.GET(path, h); err != nil {
			return fmt.Errorf("openapi: mount %s: %w", path, err)
		}
	}
	return nil
}
