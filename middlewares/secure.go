package middlewares

import (
	"strconv"

	"github.com/buildwithgo/amarodoc"
)

type SecureConfig struct {
	ContentTypeOptions    string
	FrameOptions          string
	ReferrerPolicy        string
	HSTSMaxAge            int
	HSTSIncludeSubdomains bool
}

func DefaultSecureConfig() SecureConfig {
	return SecureConfig{
		ContentTypeOptions: "nosniff",
		FrameOptions:       "SAMEORIGIN",
		ReferrerPolicy:     "strict-origin-when-cross-origin",
		HSTSMaxAge:         31536000,
	}
}

// Secure adds security headers to the response. HSTS is only sent on TLS
// requests, including those terminated by a proxy setting X-Forwarded-Proto.
func Secure(config ...SecureConfig) amarodoc.Middleware {
	cfg := DefaultSecureConfig()
	if len(config) > 0 {
		cfg = config[0]
	}
	hsts := "max-age=" + strconv.Itoa(cfg.HSTSMaxAge)
	if cfg.HSTSIncludeSubdomains {
		hsts += "; includeSubDomains"
	}

	return func(next amarodoc.Handler) amarodoc.Handler {
		return func(c *amarodoc.Context) error {
			h := c.Writer.Header()
			if cfg.ContentTypeOptions != "" {
				h.Set("X-Content-Type-Options", cfg.ContentTypeOptions)
			}
			if cfg.FrameOptions != "" {
				h.Set("X-Frame-Options", cfg.FrameOptions)
			}
			if cfg.ReferrerPolicy != "" {
				h.Set("Referrer-Policy", cfg.ReferrerPolicy)
			}
			if cfg.HSTSMaxAge > 0 && (c.Request.TLS != nil || c.GetHeader("X-Forwarded-Proto") == "https") {
				h.Set("Strict-Transport-Security", hsts)
			}
			return next(c)
		}
	}
}
