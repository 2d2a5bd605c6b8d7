// Package middleware provides the HTTP middleware wrapped around the ELD
// Logbook API router by cmd/api.
package middleware

import (
	"net/http"

	"github.com/rs/cors"
)

// NewCORSHandler returns a middleware that applies CORS headers for the
// given origins. Each origin is scheme + host with no trailing slash.
// Content-Disposition is exposed so a browser can name a CSV export.
func NewCORSHandler(allowedOrigins []string) func(http.Handler) http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
		ExposedHeaders: []string{"Content-Disposition", "Location", "Retry-After"},
	})
	return c.Handler
}
