package middlewares

import (
	"compress/gzip"
	"net/http"
	"strings"

	"github.com/buildwithgo/amarodoc"
)

type gzipResponseWriter struct {
	gz *gzip.Writer
	http.ResponseWriter
}

func (w *gzipResponseWriter) Write(b []byte) (int, error) {
	return w.gz.Write(b)
}

func (w *gzipResponseWriter) WriteHeader(code int) {
	// the length of the compressed body is unknown
	w.ResponseWriter.Header().Del("Content-Length")
	w.ResponseWriter.WriteHeader(code)
}

func (w *gzipResponseWriter) Flush() {
	w.gz.Flush()
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Compress gzips responses for clients that accept it. The writer of the
// context is swapped for the duration of the handler.
func Compress() amarodoc.Middleware {
	return func(next amarodoc.Handler) amarodoc.Handler {
		return func(c *amarodoc.Context) error {
			if !strings.Contains(c.GetHeader("Accept-Encoding"), "gzip") {
				return next(c)
			}

			c.SetHeader("Content-Encoding", "gzip")
			c.Writer.Header().Add("Vary", "Accept-Encoding")

			original := c.Writer
			gz := gzip.NewWriter(original)
			c.Writer = &gzipResponseWriter{gz: gz, ResponseWriter: original}
			defer func() {
				c.Writer = original
				if c.Written() {
					gz.Close()
				} else {
					// the error handler writes an uncompressed body
					original.Header().Del("Content-Encoding")
				}
			}()
			return next(c)
		}
	}
}
