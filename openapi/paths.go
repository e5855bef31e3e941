package openapi

import (
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// DocPath converts router path syntax to OpenAPI templates: /pets/:id and
// /files/*path become /pets/{id} and /files/{path}.
func DocPath(path string) string {
	if path == "" {
		return "/"
	}
	segments := strings.Split(path, "/")
	for i, seg := range segments {
		if name, ok := paramName(seg); ok {
			segments[i] = "{" + name + "}"
		}
	}
	return strings.Join(segments, "/")
}

func paramName(seg string) (string, bool) {
	switch {
	case len(seg) > 1 && (seg[0] == ':' || seg[0] == '*'):
		return seg[1:], true
	case len(seg) > 2 && seg[0] == '{' && seg[len(seg)-1] == '}':
		return seg[1 : len(seg)-1], true
	}
	return "", false
}

// OperationID derives the default operation id of method and path in lower
// camel case: GET /pets/{id} becomes getPetsById.
func OperationID(method, path string) string {
	var b strings.Builder
	b.WriteString(strings.ToLower(method))
	for _, seg := range strings.Split(path, "/") {
		if seg == "" {
			continue
		}
		if name, ok := paramName(seg); ok {
			b.WriteString("By")
			seg = name
		}
		for _, word := range strings.FieldsFunc(seg, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		}) {
			b.WriteString(upperFirst(word))
		}
	}
	return b.String()
}

func upperFirst(s string) string {
	for i, r := range s {
		return string(unicode.ToUpper(r)) + s[i+len(string(r)):]
	}
	return s
}

// DefaultTag returns the tag of an operation on path: its first static
// segment, title cased. Paths without one have no default tag.
func DefaultTag(path string) string {
	for _, seg := range strings.Split(path, "/") {
		if seg == "" {
			continue
		}
		if _, ok := paramName(seg); ok {
			return ""
		}
		return cases.Title(language.English).String(strings.NewReplacer("-", " ", "_", " ").Replace(seg))
	}
	return ""
}

// uniqueOperationID returns id, suffixed with a counter when it was handed out before.
func (g *Generator) uniqueOperationID(id string) string {
	n := g.operationIDs[id]
	g.operationIDs[id] = n + 1
	if n == 0 {
		return id
	}
	return id + strconv.Itoa(n+1)
}
