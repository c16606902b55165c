package http

import (
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	cctHTTP "github.com/allisson/cct/internal/cct/http"
)

// createCORSMiddleware returns the CORS middleware for browser callers of the verify
// and capability check routes, or nil when CORS is disabled or has no origins.
//
// Tokens travel in the X-CCT or Authorization header, never in cookies, so credentials
// stay disabled and "*" may be used to allow every origin. The issuer key header is not
// allowed: issuance and admin routes are for servers only.
func createCORSMiddleware(enabled bool, allowOriginsStr string, logger *slog.Logger) gin.HandlerFunc {
	if !enabled {
		return nil
	}

	origins := parseOrigins(allowOriginsStr)
	if len(origins) == 0 {
		logger.Warn("CORS enabled but no origins configured - CORS will not be applied")
		return nil
	}

	config := cors.Config{
		AllowMethods: []string{
			http.MethodGet,
			http.MethodPost,
		},
		AllowHeaders: []string{
			"Authorization",
			"Content-Type",
			cctHTTP.TokenHeader,
		},
		ExposeHeaders: []string{
			"X-Request-Id",
			"Retry-After",
		},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}

	if slices.Contains(origins, "*") {
		config.AllowAllOrigins = true
		logger.Warn("CORS allows every origin")
	} else {
		config.AllowOrigins = origins
		logger.Info("CORS enabled",
			slog.Int("origin_count", len(origins)),
			slog.Any("origins", origins))
	}

	return cors.New(config)
}

// parseOrigins parses comma-separated origin list and trims whitespace.
// Returns empty slice if input is empty.
func parseOrigins(originsStr string) []string {
	if originsStr == "" {
		return nil
	}

	parts := strings.Split(originsStr, ",")
	origins := make([]string, 0, len(parts))

	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			origins = append(origins, trimmed)
		}
	}

	return origins
}
