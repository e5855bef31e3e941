package middlewares

import (
	"time"

	"github.com/buildwithgo/amarodoc"
	"go.uber.org/zap"
)

// Logger logs one line per request with its status and duration. Requests
// answered with a server error are logged at error level.
func Logger(logger *zap.Logger) amarodoc.Middleware {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(next amarodoc.Handler) amarodoc.Handler {
		return func(c *amarodoc.Context) error {
			start := time.Now()
			err := next(c)

			status := c.Status()
			if err != nil {
				status = amarodoc.StatusCode(err)
			}
			fields := []zap.Field{
				zap.String("method", c.Request.Method),
				zap.String("path", c.Request.URL.Path),
				zap.Int("status", status),
				zap.Duration("duration", time.Since(start)),
			}
			if rid, ok := c.Get(RequestIDKey); ok {
				fields = append(fields, zap.Any("request_id", rid))
			}
			if err != nil {
				fields = append(fields, zap.Error(err))
			}

			if status >= 500 {
				logger.Error("request", fields...)
			} else {
				logger.Info("request", fields...)
			}
			return err
		}
	}
}
