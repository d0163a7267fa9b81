package middleware

import (
	"net/http"
	"slices"
	"strconv"
	"strings"
)

// CORSConfig lists what browsers may do cross-origin. "*" in
// AllowedOrigins admits any origin; the request's origin is echoed back
// so credentials keep working.
type CORSConfig struct {
	AllowedOrigins   []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
	AllowedMethods   []string `yaml:"allowed_methods" mapstructure:"allowed_methods"`
	AllowedHeaders   []string `yaml:"allowed_headers" mapstructure:"allowed_headers"`
	AllowCredentials bool     `yaml:"allow_credentials" mapstructure:"allow_credentials"`
	MaxAge           int      `yaml:"max_age" mapstructure:"max_age"` // seconds
}

// ApplyDefaults admits every origin for the read endpoints and the
// engine free call.
func (c *CORSConfig) ApplyDefaults() {
	if len(c.AllowedOrigins) == 0 {
		c.AllowedOrigins = []string{"*"}
	}
	if len(c.AllowedMethods) == 0 {
		c.AllowedMethods = []string{http.MethodGet, http.MethodPost, http.MethodOptions}
	}
	if len(c.AllowedHeaders) == 0 {
		c.AllowedHeaders = []string{"Origin", "Content-Type", "Accept", RequestIDHeader}
	}
	if c.MaxAge == 0 {
		c.MaxAge = 600
	}
}

type corsPolicy struct {
	anyOrigin   bool
	origins     []string
	methods     string
	headers     string
	credentials bool
	maxAge      string
}

func newCORSPolicy(cfg *CORSConfig) corsPolicy {
	p := corsPolicy{
		anyOrigin:   slices.Contains(cfg.AllowedOrigins, "*"),
		origins:     cfg.AllowedOrigins,
		methods:     strings.Join(cfg.AllowedMethods, ", "),
		headers:     strings.Join(cfg.AllowedHeaders, ", "),
		credentials: cfg.AllowCredentials,
	}
	if cfg.MaxAge > 0 {
		p.maxAge = strconv.Itoa(cfg.MaxAge)
	}
	return p
}

func (p corsPolicy) allows(origin string) bool {
	return origin != "" && (p.anyOrigin || slices.Contains(p.origins, origin))
}

// apply writes the response headers for an admitted origin.
func (p corsPolicy) apply(h http.Header, origin string, preflight bool) {
	h.Set("Access-Control-Allow-Origin", origin)
	h.Add("Vary", "Origin")
	h.Set("Access-Control-Expose-Headers", RequestIDHeader)
	if p.methods != "" {
		h.Set("Access-Control-Allow-Methods", p.methods)
	}
	if p.headers != "" {
		h.Set("Access-Control-Allow-Headers", p.headers)
	}
	if p.credentials {
		h.Set("Access-Control-Allow-Credentials", "true")
	}
	if preflight && p.maxAge != "" {
		h.Set("Access-Control-Max-Age", p.maxAge)
	}
}

// CORS answers preflight requests itself with 204 and decorates every other
// response from an admitted origin. The policy is fixed when CORS is called.
func CORS(cfg *CORSConfig) Middleware {
	policy := newCORSPolicy(cfg)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			preflight := r.Method == http.MethodOptions
			if origin := r.Header.Get("Origin"); policy.allows(origin) {
				policy.apply(w.Header(), origin, preflight)
			}
			if preflight {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
