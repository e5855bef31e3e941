// Package amarodoc implements a small HTTP router and framework whose typed handlers
// describe themselves as an OpenAPI v3 document (see the openapi subpackage).
package amarodoc

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// Handler is a function that handles an HTTP request.
// It returns an error which can be handled by middlewares or the framework.
type Handler func(*Context) error

// Middleware is a function that wraps a Handler to provide additional functionality.
type Middleware func(next Handler) Handler

// ErrorHandler writes the response for an error returned by a handler.
// code is the status the framework derived from err.
type ErrorHandler func(c *Context, err error, code int)

// ErrNotFound is reported to the ErrorHandler when no route matches.
var ErrNotFound = errors.New("404 page not found")

// App is the main entry point for the framework.
// It holds the router, global middlewares, and a context pool.
type App struct {
	router       Router
	middlewares  []Middleware
	pool         *sync.Pool
	logger       *zap.Logger
	errorHandler ErrorHandler
}

// Use adds a global middleware to the application.
// Global middlewares are applied to all routes in the order they are added.
func (a *App) Use(middleware Middleware) {
	a.middlewares = append(a.middlewares, middleware)
}

// GET registers a new GET route with a handler and optional route-specific middlewares.
func (a *App) GET(path string, handler Handler, middlewares ...Middleware) error {
	return a.router.Add(http.MethodGet, path, handler, middlewares...)
}

func (a *App) POST(path string, handler Handler, middlewares ...Middleware) error {
	return a.router.Add(http.MethodPost, path, handler, middlewares...)
}

func (a *App) PUT(path string, handler Handler, middlewares ...Middleware) error {
	return a.router.Add(http.MethodPut, path, handler, middlewares...)
}

func (a *App) DELETE(path string, handler Handler, middlewares ...Middleware) error {
	return a.router.Add(http.MethodDelete, path, handler, middlewares...)
}

func (a *App) PATCH(path string, handler Handler, middlewares ...Middleware) error {
	return a.router.Add(http.MethodPatch, path, handler, middlewares...)
}

// Add registers a new route with the specified method, path, handler, and middlewares.
func (a *App) Add(method, path string, handler Handler, middlewares ...Middleware) error {
	return a.router.Add(method, path, handler, middlewares...)
}

func (a *App) Group(prefix string) *Group {
	return a.router.Group(prefix)
}

func (a *App) Find(method, path string) (*Route, error) {
	return a.router.Find(method, path, nil)
}

// Routes lists the registered routes.
func (a *App) Routes() []Route {
	return a.router.Routes()
}

// Logger returns the application logger. It is never nil.
func (a *App) Logger() *zap.Logger {
	return a.logger
}

// AppOption defines a function to configure the App during initialization.
type AppOption func(*App)

// WithLogger sets the logger used for unexpected handler errors and recovered panics.
func WithLogger(logger *zap.Logger) AppOption {
	return func(app *App) {
		if logger != nil {
			app.logger = logger
		}
	}
}

// WithErrorHandler replaces the default plain-text error handler.
func WithErrorHandler(h ErrorHandler) AppOption {
	return func(app *App) {
		app.errorHandler = h
	}
}

// New creates a new instance of the App with optional configuration.
func New(options ...AppOption) *App {
	app := &App{
		middlewares: make([]Middleware, 0),
		logger:      zap.NewNop(),
		pool: &sync.Pool{
			New: func() interface{} {
				return NewContext(nil, nil)
			},
		},
	}
	app.errorHandler = app.defaultErrorHandler

	for _, option := range options {
		option(app)
	}

	return app
}

// Server returns an http.Server serving the app on addr. Global middlewares
// registered after this call are ignored.
func (a *App) Server(addr string) *http.Server {
	a.middlewares = []Middleware{Chain(a.middlewares...)}
	if !strings.Contains(addr, ":") {
		addr = ":" + addr
	}
	return &http.Server{Addr: addr, Handler: a}
}

func (a *App) Run(port string) error {
	return a.Server(port).ListenAndServe()
}

func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := a.pool.Get().(*Context)
	ctx.Reset(w, r)
	defer a.pool.Put(ctx)

	// Pass ctx to Find so it can populate params without allocation
	route, err := a.router.Find(r.Method, r.URL.Path, ctx)
	if err != nil {
		a.errorHandler(ctx, ErrNotFound, http.StatusNotFound)
		return
	}
	ctx.routePath = route.Path
	// route.Middlewares are already compiled into route.Handler
	// We only need to apply global middlewares
	if err := Compile(route.Handler, a.middlewares...)(ctx); err != nil {
		code := StatusCode(err)
		if code >= http.StatusInternalServerError {
			a.logger.Error("handler failed",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Error(err))
		}
		a.errorHandler(ctx, err, code)
	}
}

// Test serves req and returns the recorded response.
func (a *App) Test(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	a.ServeHTTP(w, req)
	return w
}

func (a *App) defaultErrorHandler(c *Context, err error, code int) {
	if c.Written() {
		return
	}
	msg := err.Error()
	var he *HTTPError
	if errors.As(err, &he) {
		if s, ok := he.Message.(string); ok {
			msg = s
		}
	} else if code == http.StatusInternalServerError {
		msg = http.StatusText(code)
	}
	http.Error(c.Writer, msg, code)
}

func Chain(middlewares ...Middleware) Middleware {
	return func(next Handler) Handler {
		for i := len(middlewares) - 1; i >= 0; i-- {
			next = middlewares[i](next)
		}
		return next
	}
}

func Compile(handler Handler, middlewares ...Middleware) Handler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		handler = middlewares[i](handler)
	}
	return handler
}
