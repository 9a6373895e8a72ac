// Package http provides HTTP server and handler implementations.
//
// This file implements utilities for parsing dashboard request parameters.

package http

import (
	"net/http"
	"net/url"
	"strings"

	"ventas/internal/core"
)

// Query parameter names of the dashboard filter.
const (
	ParamSalesperson = "vendedor"
	ParamSearch      = "q"
)

// ParseFilter reads the dashboard filter from query parameters. Values are
// kept untrimmed: surrounding whitespace only decides whether a filter is
// active, never what it matches.
func ParseFilter(query url.Values) core.Filter {
	return core.Filter{
		Salesperson: sanitizeInput(query.Get(ParamSalesperson)),
		Search:      sanitizeInput(query.Get(ParamSearch)),
	}
}

// FilterQuery encodes the active parts of f as a query string with a
// leading "?", or "" when f selects everything.
func FilterQuery(f core.Filter) string {
	v := url.Values{}
	if f.BySalesperson() {
		v.Set(ParamSalesperson, f.Salesperson)
	}
	if f.BySearch() {
		v.Set(ParamSearch, f.Search)
	}
	if len(v) == 0 {
		return ""
	}
	return "?" + v.Encode()
}

// sanitizeInput removes control characters other than tab, newline and
// carriage return. Whitespace is preserved.
func sanitizeInput(s string) string {
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		if r == 127 {
			return -1
		}
		return r
	}, s)
}

// RequireMethod checks if the request method matches the expected method(s).
// Returns an error response builder if the method doesn't match.
func RequireMethod(r *http.Request, methods ...string) *HTMXResponseBuilder {
	for _, m := range methods {
		if r.Method == m {
			return nil
		}
	}
	return MethodNotAllowedError(strings.Join(methods, ", "))
}

// RequireGET is a convenience function for read-only handlers.
func RequireGET(r *http.Request) *HTMXResponseBuilder {
	return RequireMethod(r, http.MethodGet, http.MethodHead)
}

// isHTMX reports whether r was issued by htmx.
func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}
