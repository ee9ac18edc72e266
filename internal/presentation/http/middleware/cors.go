package middleware

import (
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sangkips/lexdesk-api/internal/config"
)

var (
	defaultCORSOrigins = []string{"http://localhost:3000", "http://127.0.0.1:3000"}
	defaultCORSMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	defaultCORSHeaders = []string{"Accept", "Authorization", "Content-Type", "Origin", "X-Request-ID"}

	// the frontend cannot work without these, whatever the config says
	requiredCORSHeaders = []string{TenantHeader, IdempotencyKeyHeader}

	// downloads need Content-Disposition for the file name
	exposedCORSHeaders = []string{
		"Content-Disposition", "Content-Length", "Content-Type",
		"X-Request-ID", "X-Idempotency-Replayed",
		"X-RateLimit-Limit", "X-RateLimit-Remaining", "Retry-After",
	}
)

func corsConfig(cfg *config.CORSConfig) cors.Config {
	origins := orDefault(cfg.AllowedOrigins, defaultCORSOrigins)
	headers := slices.Clone(orDefault(cfg.AllowedHeaders, defaultCORSHeaders))
	for _, h := range requiredCORSHeaders {
		if !slices.Contains(headers, h) {
			headers = append(headers, h)
		}
	}

	return cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     orDefault(cfg.AllowedMethods, defaultCORSMethods),
		AllowHeaders:     headers,
		ExposeHeaders:    exposedCORSHeaders,
		AllowCredentials: !slices.Contains(origins, "*"),
		MaxAge:           12 * time.Hour,
	}
}

// CORSMiddleware lets the firm's web client call the API across origins
func CORSMiddleware(cfg *config.CORSConfig) gin.HandlerFunc {
	return cors.New(corsConfig(cfg))
}

func orDefault(v, def []string) []string {
	if len(v) == 0 {
		return def
	}
	return v
}
