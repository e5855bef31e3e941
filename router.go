package amarodoc

// Route is a registered handler. Handler has the route middlewares compiled in.
type Route struct {
	Method      string
	Path        string
	Handler     Handler
	Middlewares []Middleware
}

// Router stores routes and matches requests against them. Find records the
// path parameters of the match on ctx when ctx is not nil.
type Router interface {
	GET(path string, handler Handler, middlewares ...Middleware) error
	POST(path string, handler Handler, middlewares ...Middleware) error
	PUT(path string, handler Handler, middlewares ...Middleware) error
	DELETE(path string, handler Handler, middlewares ...Middleware) error
	PATCH(path string, handler Handler, middlewares ...Middleware) error
	Add(method, path string, handler Handler, middlewares ...Middleware) error
	Use(middleware Middleware)
	Group(prefix string) *Group
	Find(method, path string, ctx *Context) (*Route, error)
	// Routes lists the registered routes ordered by method, then path.
	Routes() []Route
}

// WithRouter sets the router of the App. An App needs one before routes are added.
func WithRouter(router Router) AppOption {
	return func(app *App) {
		app.router = router
	}
}
