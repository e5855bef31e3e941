package middlewares

import (
	"crypto/rsa"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/buildwithgo/amarodoc"
	"github.com/golang-jwt/jwt/v5"
)

// DefaultContextKey is the context key the claims of a valid token are stored under.
const DefaultContextKey = "user"

// claimsKeyKey records the ContextKey the claims of the request were stored under.
const claimsKeyKey = "middlewares.jwt.claims-key"

// JWTConfig configures the bearer token check of the protected operations.
type JWTConfig struct {
	// Secret verifies and signs HMAC tokens.
	Secret []byte
	// PublicKey verifies RSA tokens.
	PublicKey *rsa.PublicKey

	// TokenLookup is "<source>:<name>" with source header, query or cookie.
	TokenLookup string
	// AuthScheme prefixes header tokens, e.g. Bearer.
	AuthScheme string
	// ContextKey the validated claims are stored under.
	ContextKey string

	// Issuer and Audience, when set, must match the iss and aud claims.
	// CreateToken fills them in.
	Issuer   string
	Audience string

	// ErrorHandler turns an authentication failure into the handler result.
	ErrorHandler func(*amarodoc.Context, error) error
	// Skipper lets requests through unchecked.
	Skipper func(*amarodoc.Context) bool

	SigningMethod jwt.SigningMethod
}

// JWTOption is a function type for configuring JWT middleware
type JWTOption func(*JWTConfig)

// DefaultJWTConfig returns a default JWT configuration
func DefaultJWTConfig() *JWTConfig {
	return &JWTConfig{
		TokenLookup:   "header:Authorization",
		AuthScheme:    "Bearer",
		ContextKey:    DefaultContextKey,
		SigningMethod: jwt.SigningMethodHS256,
		ErrorHandler: func(c *amarodoc.Context, err error) error {
			return amarodoc.NewHTTPError(http.StatusUnauthorized, "unauthorized").SetInternal(err)
		},
		Skipper: func(c *amarodoc.Context) bool {
			return false
		},
	}
}

// NewJWTConfig applies opts to the default configuration.
func NewJWTConfig(opts ...JWTOption) *JWTConfig {
	config := DefaultJWTConfig()
	for _, opt := range opts {
		opt(config)
	}
	return config
}

// WithIssuer requires tokens issued by iss.
func WithIssuer(iss string) JWTOption {
	return func(c *JWTConfig) { c.Issuer = iss }
}

// WithAudience requires tokens meant for aud.
func WithAudience(aud string) JWTOption {
	return func(c *JWTConfig) { c.Audience = aud }
}

// WithSecret sets the HMAC secret
func WithSecret(secret string) JWTOption {
	return WithSecretBytes([]byte(secret))
}

// WithSecretBytes sets the HMAC secret from bytes
func WithSecretBytes(secret []byte) JWTOption {
	return func(config *JWTConfig) {
		config.Secret = secret
		config.SigningMethod = jwt.SigningMethodHS256
	}
}

// WithRSAPublicKey sets the RSA public key for verification
func WithRSAPublicKey(publicKey *rsa.PublicKey) JWTOption {
	return func(config *JWTConfig) {
		config.PublicKey = publicKey
		config.SigningMethod = jwt.SigningMethodRS256
	}
}

// WithTokenLookup sets where to look for the token
func WithTokenLookup(lookup string) JWTOption {
	return func(config *JWTConfig) {
		config.TokenLookup = lookup
	}
}

// WithAuthScheme sets the authorization scheme
func WithAuthScheme(scheme string) JWTOption {
	return func(config *JWTConfig) {
		config.AuthScheme = scheme
	}
}

// WithContextKey sets the context key for storing claims
func WithContextKey(key string) JWTOption {
	return func(config *JWTConfig) {
		config.ContextKey = key
	}
}

// WithErrorHandler sets custom error handler
func WithErrorHandler(handler func(*amarodoc.Context, error) error) JWTOption {
	return func(config *JWTConfig) {
		config.ErrorHandler = handler
	}
}

// WithSkipper sets the skipper function
func WithSkipper(skipper func(*amarodoc.Context) bool) JWTOption {
	return func(config *JWTConfig) {
		config.Skipper = skipper
	}
}

// WithSigningMethod sets the signing method
func WithSigningMethod(method jwt.SigningMethod) JWTOption {
	return func(config *JWTConfig) {
		config.SigningMethod = method
	}
}

// JWT creates a new JWT middleware with the given options. The claims of a
// valid token are stored in the context under ContextKey as jwt.MapClaims.
func JWT(opts ...JWTOption) amarodoc.Middleware {
	config := NewJWTConfig(opts...)

	return func(next amarodoc.Handler) amarodoc.Handler {
		return func(c *amarodoc.Context) error {
			if config.Skipper(c) {
				return next(c)
			}

			token, err := extractToken(c, config)
			if err != nil {
				return config.ErrorHandler(c, err)
			}

			parsedToken, err := parseToken(token, config)
			if err != nil {
				return config.ErrorHandler(c, err)
			}

			if claims, ok := parsedToken.Claims.(jwt.MapClaims); ok {
				c.Set(config.ContextKey, claims)
				c.Set(claimsKeyKey, config.ContextKey)
			}
			return next(c)
		}
	}
}

// Claims returns the claims stored by JWT under key.
func Claims(c *amarodoc.Context, key string) (jwt.MapClaims, bool) {
	v, ok := c.Get(key)
	if !ok {
		return nil, false
	}
	claims, ok := v.(jwt.MapClaims)
	return claims, ok
}

// Subject returns the sub claim of the token validated for c, or "".
// It finds the claims under whichever ContextKey the JWT middleware used.
func Subject(c *amarodoc.Context) string {
	key := DefaultContextKey
	if v, ok := c.Get(claimsKeyKey); ok {
		if k, ok := v.(string); ok {
			key = k
		}
	}
	claims, ok := Claims(c, key)
	if !ok {
		return ""
	}
	sub, _ := claims.GetSubject()
	return sub
}

// extractToken extracts the JWT token from the request
func extractToken(c *amarodoc.Context, config *JWTConfig) (string, error) {
	method, key, ok := strings.Cut(config.TokenLookup, ":")
	if !ok {
		return "", errors.New("invalid token lookup format")
	}

	switch method {
	case "header":
		auth := c.GetHeader(key)
		if auth == "" {
			return "", errors.New("missing authorization header")
		}

		if config.AuthScheme != "" {
			prefix := config.AuthScheme + " "
			if !strings.HasPrefix(auth, prefix) {
				return "", fmt.Errorf("invalid authorization scheme, expected %s", config.AuthScheme)
			}
			return strings.TrimPrefix(auth, prefix), nil
		}
		return auth, nil

	case "query":
		token := c.QueryParam(key)
		if token == "" {
			return "", errors.New("missing token in query parameters")
		}
		return token, nil

	case "cookie":
		cookie, err := c.GetCookie(key)
		if err != nil {
			return "", errors.New("missing token in cookie")
		}
		return cookie.Value, nil

	default:
		return "", errors.New("unsupported token lookup method")
	}
}

// parseToken parses and validates the token, including its exp, nbf and iat claims.
func parseToken(tokenString string, config *JWTConfig) (*jwt.Token, error) {
	keyFunc := func(token *jwt.Token) (interface{}, error) {
		switch config.SigningMethod {
		case jwt.SigningMethodHS256, jwt.SigningMethodHS384, jwt.SigningMethodHS512:
			if config.Secret == nil {
				return nil, errors.New("HMAC secret not configured")
			}
			return config.Secret, nil

		case jwt.SigningMethodRS256, jwt.SigningMethodRS384, jwt.SigningMethodRS512:
			if config.PublicKey == nil {
				return nil, errors.New("RSA public key not configured")
			}
			return config.PublicKey, nil

		default:
			return nil, fmt.Errorf("unsupported signing method: %v", config.SigningMethod.Alg())
		}
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{config.SigningMethod.Alg()}),
		jwt.WithIssuedAt(),
	}
	if config.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(config.Issuer))
	}
	if config.Audience != "" {
		opts = append(opts, jwt.WithAudience(config.Audience))
	}
	token, err := jwt.Parse(tokenString, keyFunc, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	return token, nil
}

// CreateToken signs claims with the HMAC secret of config. The configured
// issuer and audience are added unless claims carries its own.
func CreateToken(claims jwt.MapClaims, config *JWTConfig) (string, error) {
	if _, ok := claims["iss"]; !ok && config.Issuer != "" {
		claims["iss"] = config.Issuer
	}
	if _, ok := claims["aud"]; !ok && config.Audience != "" {
		claims["aud"] = config.Audience
	}
	switch config.SigningMethod {
	case jwt.SigningMethodHS256, jwt.SigningMethodHS384, jwt.SigningMethodHS512:
		if config.Secret == nil {
			return "", errors.New("HMAC secret not configured")
		}
		return jwt.NewWithClaims(config.SigningMethod, claims).SignedString(config.Secret)
	default:
		return "", fmt.Errorf("token creation needs a private key for %s", config.SigningMethod.Alg())
	}
}
