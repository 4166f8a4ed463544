package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
)

const (
	idempotencyKeyHeader      = "Idempotency-Key"
	idempotentReplayedHeader  = "Idempotent-Replayed"
	localDevOriginPattern     = "http://localhost:*"
	corsPreflightMaxAgeSecond = 300
)

// CORS applies the storefront origin policy. In dev, any localhost port is
// accepted in addition to the configured origins.
func CORS(origins []string, dev bool) func(http.Handler) http.Handler {
	allowed := append([]string(nil), origins...)
	if dev {
		allowed = append(allowed, localDevOriginPattern)
	}
	return cors.New(cors.Options{
		AllowedOrigins: allowed,
		AllowedMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut,
			http.MethodPatch, http.MethodDelete, http.MethodOptions,
		},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", idempotencyKeyHeader, requestIDHeader},
		ExposedHeaders:   []string{requestIDHeader, idempotentReplayedHeader},
		AllowCredentials: true,
		MaxAge:           corsPreflightMaxAgeSecond,
	}).Handler
}
