package amarodoc

import (
	"encoding/json"
	"net/http"
)

// Param is a single path parameter captured by the router.
type Param struct {
	Key   string
	Value string
}

// Context carries the request, the response writer and per-request state.
// Contexts are pooled by the App and must not be retained after the handler returns.
type Context struct {
	Request *http.Request
	Writer  http.ResponseWriter

	params    []Param
	store     map[string]interface{}
	routePath string
}

type ContextOption func(*Context)

// NewContext creates a new context for the request
func NewContext(w http.ResponseWriter, r *http.Request, options ...ContextOption) *Context {
	ctx := &Context{
		params: make([]Param, 0, 4),
	}
	ctx.Reset(w, r)
	for _, option := range options {
		option(ctx)
	}
	return ctx
}

// Reset prepares the context for a new request.
func (c *Context) Reset(w http.ResponseWriter, r *http.Request) {
	c.Request = r
	c.Writer = nil
	if w != nil {
		c.Writer = &responseWriter{ResponseWriter: w}
	}
	c.params = c.params[:0]
	c.store = nil
	c.routePath = ""
}

// RoutePath returns the registered pattern of the matched route, e.g. /pets/:id.
func (c *Context) RoutePath() string {
	return c.routePath
}

// AddParam records a path parameter. Routers call it while matching.
func (c *Context) AddParam(key, value string) {
	c.params = append(c.params, Param{Key: key, Value: value})
}

// PathParam returns the path parameter named key, or "".
func (c *Context) PathParam(key string) string {
	v, _ := c.lookupPathParam(key)
	return v
}

func (c *Context) lookupPathParam(key string) (string, bool) {
	for _, p := range c.params {
		if p.Key == key {
			return p.Value, true
		}
	}
	return "", false
}

// Params returns all captured path parameters in match order.
func (c *Context) Params() []Param {
	return c.params
}

// QueryParam returns the first query value for key.
func (c *Context) QueryParam(key string) string {
	return c.Request.URL.Query().Get(key)
}

func (c *Context) GetHeader(key string) string {
	return c.Request.Header.Get(key)
}

func (c *Context) SetHeader(key, value string) {
	c.Writer.Header().Set(key, value)
}

func (c *Context) GetCookie(name string) (*http.Cookie, error) {
	return c.Request.Cookie(name)
}

// Set stores a request-scoped value.
func (c *Context) Set(key string, value interface{}) {
	if c.store == nil {
		c.store = make(map[string]interface{})
	}
	c.store[key] = value
}

// Get returns a request-scoped value stored with Set.
func (c *Context) Get(key string) (interface{}, bool) {
	v, ok := c.store[key]
	return v, ok
}

// Status returns the status code written so far, or 200 if nothing was written.
func (c *Context) Status() int {
	if rw, ok := c.Writer.(*responseWriter); ok && rw.status != 0 {
		return rw.status
	}
	return http.StatusOK
}

// Written reports whether a status line has been sent.
func (c *Context) Written() bool {
	rw, ok := c.Writer.(*responseWriter)
	return ok && rw.status != 0
}

func (c *Context) String(code int, s string) error {
	c.Writer.Header().Set("Content-Type", "text/plain; charset=utf-8")
	c.Writer.WriteHeader(code)
	_, err := c.Writer.Write([]byte(s))
	return err
}

func (c *Context) HTML(code int, html string) error {
	c.Writer.Header().Set("Content-Type", "text/html; charset=utf-8")
	c.Writer.WriteHeader(code)
	_, err := c.Writer.Write([]byte(html))
	return err
}

func (c *Context) JSON(code int, v interface{}) error {
	c.Writer.Header().Set("Content-Type", "application/json")
	c.Writer.WriteHeader(code)
	return json.NewEncoder(c.Writer).Encode(v)
}

// Blob writes raw bytes with the given content type.
func (c *Context) Blob(code int, contentType string, b []byte) error {
	c.Writer.Header().Set("Content-Type", contentType)
	c.Writer.WriteHeader(code)
	_, err := c.Writer.Write(b)
	return err
}

func (c *Context) NoContent(code int) error {
	c.Writer.WriteHeader(code)
	return nil
}

type responseWriter struct {
	http.ResponseWriter
	status int
}

func (w *responseWriter) WriteHeader(code int) {
	if w.status == 0 {
		w.status = code
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *responseWriter) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	return w.ResponseWriter.Write(b)
}

func (w *responseWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (w *responseWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
