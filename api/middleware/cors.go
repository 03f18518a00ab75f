package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
)

var defaultAdminOrigins = []string{
	"http://localhost:3000", // local dev
	"https://admin.craftlane.app",
}

// AdminCORS returns middleware that applies the admin allowed origin policy.
func AdminCORS(extraOrigins []string) func(http.Handler) http.Handler {
	origins := append(append([]string{}, defaultAdminOrigins...), extraOrigins...)
	return cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Shop-Domain", "Idempotency-Key", "X-Requested-With"},
		AllowCredentials: true,
		MaxAge:           300,
	}).Handler
}

// StorefrontCORS allows any origin. The storefront widget is embedded on
// arbitrary merchant domains, so the template and preview endpoints must be
// reachable from all of them.
func StorefrontCORS() func(http.Handler) http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}).Handler
}
