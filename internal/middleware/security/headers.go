// Package security sets response hardening headers and screens requests for
// scanner traffic.
package security

import (
	"fmt"
	"net/http"
	"strings"
)

// HeadersConfig holds security headers configuration. Empty values are not
// sent.
type HeadersConfig struct {
	// Content Security Policy
	CSP string

	// HSTS settings
	HSTSMaxAge            int
	HSTSIncludeSubdomains bool

	XFrameOptions       string
	XContentTypeOptions string
	ReferrerPolicy      string
	PermissionsPolicy   string
	CrossOriginOpener   string
	CrossOriginResource string
}

// DefaultHeadersConfig returns the dashboard policy. Scripts may come from
// unpkg, which serves htmx.
func DefaultHeadersConfig() HeadersConfig {
	return HeadersConfig{
		CSP: strings.Join([]string{
			"default-src 'self'",
			"script-src 'self' https://unpkg.com",
			"style-src 'self'",
			"img-src 'self' data:",
			"connect-src 'self'",
			"object-src 'none'",
			"frame-ancestors 'none'",
			"base-uri 'self'",
			"form-action 'self'",
		}, "; "),

		HSTSMaxAge:            31536000,
		HSTSIncludeSubdomains: true,

		XFrameOptions:       "DENY",
		XContentTypeOptions: "nosniff",
		ReferrerPolicy:      "strict-origin-when-cross-origin",
		PermissionsPolicy:   "geolocation=(), microphone=(), camera=(), payment=()",
		CrossOriginOpener:   "same-origin",
		CrossOriginResource: "same-origin",
	}
}

// HeadersMiddleware applies security headers to responses
type HeadersMiddleware struct {
	static map[string]string
	hsts   string
}

// NewHeadersMiddleware creates a new security headers middleware
func NewHeadersMiddleware(config HeadersConfig) *HeadersMiddleware {
	h := &HeadersMiddleware{static: make(map[string]string)}
	set := func(name, value string) {
		if value != "" {
			h.static[name] = value
		}
	}
	set("Content-Security-Policy", config.CSP)
	set("X-Frame-Options", config.XFrameOptions)
	set("X-Content-Type-Options", config.XContentTypeOptions)
	set("Referrer-Policy", config.ReferrerPolicy)
	set("Permissions-Policy", config.PermissionsPolicy)
	set("Cross-Origin-Opener-Policy", config.CrossOriginOpener)
	set("Cross-Origin-Resource-Policy", config.CrossOriginResource)

	if config.HSTSMaxAge > 0 {
		h.hsts = fmt.Sprintf("max-age=%d", config.HSTSMaxAge)
		if config.HSTSIncludeSubdomains {
			h.hsts += "; includeSubDomains"
		}
	}
	return h
}

// Middleware returns the HTTP middleware function
func (h *HeadersMiddleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		headers := w.Header()
		for name, value := range h.static {
			headers.Set(name, value)
		}
		// HSTS only means something over TLS
		if r.TLS != nil && h.hsts != "" {
			headers.Set("Strict-Transport-Security", h.hsts)
		}
		next.ServeHTTP(w, r)
	})
}

// StaticAssetMiddleware adds caching headers for static assets
func StaticAssetMiddleware(maxAge int) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if maxAge > 0 {
				w.Header().Set("Cache-Control", fmt.Sprintf("public, max-age=%d", maxAge))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// NoStore marks responses as uncacheable. Used for exports, which depend on
// the live snapshot.
func NoStore(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-store")
		next.ServeHTTP(w, r)
	})
}
