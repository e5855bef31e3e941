package amarodoc

import (
	"bytes"
	"html/template"
	"net/http"
	"runtime"

	"go.uber.org/zap"
)

// RecoveryOption configures the Recovery middleware.
type RecoveryOption func(*recoveryConfig)

type recoveryConfig struct {
	htmlDebug bool
	logger    *zap.Logger
}

// WithHTMLDebug enables rendering a debug page with the stack trace for panics.
// WARNING: Do not use this in production as it exposes stack traces.
func WithHTMLDebug(enabled bool) RecoveryOption {
	return func(c *recoveryConfig) {
		c.htmlDebug = enabled
	}
}

// WithRecoveryLogger sets the logger recovered panics are reported to.
func WithRecoveryLogger(logger *zap.Logger) RecoveryOption {
	return func(c *recoveryConfig) {
		c.logger = logger
	}
}

// Recovery recovers from panics, logs the stack trace, and returns an Internal Server Error.
func Recovery(opts ...RecoveryOption) Middleware {
	cfg := &recoveryConfig{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(cfg)
	}

	return func(next Handler) Handler {
		return func(c *Context) (err error) {
			defer func() {
				if rec := recover(); rec != nil {
					stack := make([]byte, 4096)
					n := runtime.Stack(stack, false)
					stackTrace := string(stack[:n])

					cfg.logger.Error("panic recovered",
						zap.Any("panic", rec),
						zap.String("method", c.Request.Method),
						zap.String("path", c.Request.URL.Path),
						zap.String("stack", stackTrace))

					if cfg.htmlDebug {
						err = c.HTML(http.StatusInternalServerError, renderDebugPage(rec, stackTrace))
					} else {
						err = c.String(http.StatusInternalServerError, "Internal Server Error")
					}
				}
			}()
			return next(c)
		}
	}
}

var debugPage = template.Must(template.New("debug").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <title>Internal Server Error</title>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif; margin: 0; padding: 2rem; }
        pre { background: #212529; color: #f8f9fa; padding: 1rem; overflow-x: auto; }
    </style>
</head>
<body>
    <h1>Internal Server Error</h1>
    <p>Panic: {{.Error}}</p>
    <pre>{{.Stack}}</pre>
</body>
</html>
`))

func renderDebugPage(err interface{}, stack string) string {
	data := struct {
		Error interface{}
		Stack string
	}{
		Error: err,
		Stack: stack,
	}

	var buf bytes.Buffer
	if execErr := debugPage.Execute(&buf, data); execErr != nil {
		return "Internal Server Error (Failed to render debug page)"
	}
	return buf.String()
}
