package middlewares

import (
	"github.com/rs/cors"
)

// CorsSettings lets the web admin console call the API from the given origins.
// ETag is exposed so browsers can revalidate devotional content.
func CorsSettings(origins []string) *cors.Cors {
	return cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE"},
		AllowedHeaders: []string{"Authorization", "Content-Type", "If-None-Match"},
		ExposedHeaders: []string{"ETag", "Retry-After"},
	})
}
