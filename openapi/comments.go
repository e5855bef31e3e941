package openapi

import (
	"fmt"
	"go/ast"
	"go/doc"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
)

// TypeDoc is the documentation of a struct type and of its fields.
type TypeDoc struct {
	Doc string
	// Fields maps JSON property names to field comments.
	Fields map[string]string
}

// CommentParser extracts struct documentation from Go source.
type CommentParser struct {
	Types map[string]TypeDoc
}

func NewCommentParser() *CommentParser {
	return &CommentParser{
		Types: make(map[string]TypeDoc),
	}
}

// ParseDocs parses the non-test Go files of dir.
func (cp *CommentParser) ParseDocs(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("openapi: read %s: %w", dir, err)
	}
	fset := token.NewFileSet()
	var files []*ast.File
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".go") || strings.HasSuffix(name, "_test.go") {
			continue
		}
		f, err := parser.ParseFile(fset, filepath.Join(dir, name), nil, parser.ParseComments)
		if err != nil {
			return fmt.Errorf("openapi: parse %s: %w", name, err)
		}
		files = append(files, f)
	}
	if len(files) == 0 {
		return nil
	}

	pkg, err := doc.NewFromFiles(fset, files, "", doc.AllDecls|doc.PreserveAST)
	if err != nil {
		return fmt.Errorf("openapi: read docs of %s: %w", dir, err)
	}
	for _, t := range pkg.Types {
		td := TypeDoc{Doc: strings.TrimSpace(t.Doc), Fields: make(map[string]string)}
		for _, spec := range t.Decl.Specs {
			ts, ok := spec.(*ast.TypeSpec)
			if !ok {
				continue
			}
			st, ok := ts.Type.(*ast.StructType)
			if !ok {
				continue
			}
			for _, field := range st.Fields.List {
				text := strings.TrimSpace(field.Doc.Text())
				if text == "" {
					text = strings.TrimSpace(field.Comment.Text())
				}
				if text == "" {
					continue
				}
				for _, name := range propertyNames(field) {
					td.Fields[name] = text
				}
			}
		}
		cp.Types[t.Name] = td
	}
	return nil
}

func propertyNames(field *ast.Field) []string {
	var tag reflect.StructTag
	if field.Tag != nil {
		if s, err := strconv.Unquote(field.Tag.Value); err == nil {
			tag = reflect.StructTag(s)
		}
	}
	var names []string
	for _, ident := range field.Names {
		if !ident.IsExported() {
			continue
		}
		name, _, skip := JSONName(reflect.StructField{Name: ident.Name, Tag: tag})
		if !skip {
			names = append(names, name)
		}
	}
	return names
}

// ApplyComments copies the doc comments of the structs declared in dir onto
// the matching component schemas and their properties. Comments matched by a
// deprecation marker mark the schema or property deprecated.
func ApplyComments(gen *Generator, dir string) error {
	cp := NewCommentParser()
	if err := cp.ParseDocs(dir); err != nil {
		return err
	}

	gen.mu.Lock()
	defer gen.mu.Unlock()
	for name, schema := range gen.spec.Components.Schemas {
		td, ok := cp.Types[name]
		if !ok {
			continue
		}
		if td.Doc != "" {
			schema.Description = td.Doc
			schema.Deprecated = schema.Deprecated || gen.isDeprecatedDoc(td.Doc)
		}
		for prop, text := range td.Fields {
			ps := schema.Properties[prop]
			if ps == nil || ps.Ref != "" {
				continue
			}
			if ps.Description == "" {
				ps.Description = text
			}
			ps.Deprecated = ps.Deprecated || gen.isDeprecatedDoc(text)
		}
	}
	gen.dirty = true
	return nil
}
