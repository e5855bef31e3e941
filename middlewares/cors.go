package middlewares

import (
	"net/http"
	"slices"
	"strconv"
	"strings"

	"github.com/buildwithgo/amarodoc"
)

// CORSConfig defines the configuration for the CORS middleware.
type CORSConfig struct {
	// AllowOrigins lists the origins a cross-domain request can be executed from. "*" allows any.
	AllowOrigins []string `yaml:"allow-origins"`
	// AllowMethods lists the methods the client may use with cross-domain requests.
	AllowMethods []string `yaml:"allow-methods"`
	// AllowHeaders lists the non-simple headers the client may send.
	AllowHeaders []string `yaml:"allow-headers"`
	// MaxAge is how long in seconds a preflight result may be cached. Zero omits the header.
	MaxAge int `yaml:"max-age"`
}

func DefaultCORSConfig() CORSConfig {
	return CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "PATCH", "HEAD", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Length", "Content-Type", "Authorization", RequestIDHeader},
	}
}

// CORS returns a Cross-Origin Resource Sharing middleware. Preflight requests
// reach it only on routes that register OPTIONS.
func CORS(config ...CORSConfig) amarodoc.Middleware {
	cfg := DefaultCORSConfig()
	if len(config) > 0 {
		cfg = config[0]
	}
	methods := strings.Join(cfg.AllowMethods, ",")
	headers := strings.Join(cfg.AllowHeaders, ",")

	return func(next amarodoc.Handler) amarodoc.Handler {
		return func(c *amarodoc.Context) error {
			origin := c.GetHeader("Origin")
			h := c.Writer.Header()
			h.Add("Vary", "Origin")

			switch {
			case slices.Contains(cfg.AllowOrigins, "*"):
				h.Set("Access-Control-Allow-Origin", "*")
			case origin != "" && slices.Contains(cfg.AllowOrigins, origin):
				h.Set("Access-Control-Allow-Origin", origin)
			default:
				return next(c)
			}
			h.Set("Access-Control-Allow-Methods", methods)
			h.Set("Access-Control-Allow-Headers", headers)

			if c.Request.Method == http.MethodOptions {
				if cfg.MaxAge > 0 {
					h.Set("Access-Control-Max-Age", strconv.Itoa(cfg.MaxAge))
				}
				return c.NoContent(http.StatusNoContent)
			}
			return next(c)
		}
	}
}
