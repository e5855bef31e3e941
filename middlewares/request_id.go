package middlewares

import (
	"github.com/buildwithgo/amarodoc"
	"github.com/google/uuid"
)

const (
	RequestIDKey    = "request_id"
	RequestIDHeader = "X-Request-ID"
)

// RequestID propagates the X-Request-ID header, generating a random UUID when
// the request has none, and stores the id in the context under RequestIDKey.
func RequestID() amarodoc.Middleware {
	return func(next amarodoc.Handler) amarodoc.Handler {
		return func(c *amarodoc.Context) error {
			rid := c.GetHeader(RequestIDHeader)
			if rid == "" {
				rid = uuid.NewString()
			}
			c.SetHeader(RequestIDHeader, rid)
			c.Set(RequestIDKey, rid)
			return next(c)
		}
	}
}
