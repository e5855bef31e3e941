package cache

import (
	"bytes"
	"net/http"
	"time"

	"github.com/buildwithgo/amarodoc"
)

// IdempotencyHeader carries the client chosen key of a retried request.
const IdempotencyHeader = "Idempotency-Key"

// ReplayHeader is set on responses served from the cache.
const ReplayHeader = "Idempotent-Replayed"

type recorded struct {
	status      int
	contentType string
	body        []byte
}

// responseRecorder captures the response status and body for caching.
type responseRecorder struct {
	http.ResponseWriter
	statusCode int
	body       *bytes.Buffer
}

func (r *responseRecorder) WriteHeader(statusCode int) {
	r.statusCode = statusCode
	r.ResponseWriter.WriteHeader(statusCode)
}

func (r *responseRecorder) Write(b []byte) (int, error) {
	r.body.Write(b)
	return r.ResponseWriter.Write(b)
}

// Idempotent replays the stored response of a request whose Idempotency-Key
// was seen within ttl. Only successful responses are stored. Requests
// without the header pass through.
func Idempotent(store Cache, ttl time.Duration) amarodoc.Middleware {
	return func(next amarodoc.Handler) amarodoc.Handler {
		return func(c *amarodoc.Context) error {
			key := c.GetHeader(IdempotencyHeader)
			if key == "" {
				return next(c)
			}
			key = c.Request.Method + " " + c.Request.URL.Path + " " + key

			if val, ok := store.Get(key); ok {
				if rec, ok := val.(recorded); ok {
					c.SetHeader(ReplayHeader, "true")
					return c.Blob(rec.status, rec.contentType, rec.body)
				}
			}

			original := c.Writer
			recorder := &responseRecorder{
				ResponseWriter: original,
				statusCode:     http.StatusOK,
				body:           &bytes.Buffer{},
			}
			c.Writer = recorder
			err := next(c)
			c.Writer = original

			if err == nil && recorder.statusCode < http.StatusMultipleChoices {
				store.Set(key, recorded{
					status:      recorder.statusCode,
					contentType: recorder.Header().Get("Content-Type"),
					body:        bytes.Clone(recorder.body.Bytes()),
				}, ttl)
			}
			return err
		}
	}
}
