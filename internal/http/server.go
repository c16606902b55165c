// Package http provides HTTP server implementation and request handlers.
package http

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	cctHTTP "github.com/allisson/cct/internal/cct/http"
	cctService "github.com/allisson/cct/internal/cct/service"
	cctUseCase "github.com/allisson/cct/internal/cct/usecase"
	"github.com/allisson/cct/internal/config"
	"github.com/allisson/cct/internal/metrics"
)

// ReadinessCheck reports whether a dependency the API needs is reachable.
type ReadinessCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// Server represents the HTTP server
type Server struct {
	server *http.Server
	router *gin.Engine
	logger *slog.Logger
	checks []ReadinessCheck

	// ctx scopes background work started by middleware; it ends on Shutdown.
	ctx    context.Context
	cancel context.CancelFunc
}

// Handlers groups the CCT dependencies the router wires into routes.
type Handlers struct {
	TokenHandler      *cctHTTP.TokenHandler
	TenantHandler     *cctHTTP.TenantHandler
	GuardUseCase      cctUseCase.GuardUseCase
	IssuerKeyVerifier cctService.IssuerKeyVerifier
}

// NewServer creates a new HTTP server. checks gate the readiness endpoint.
func NewServer(
	host string,
	port int,
	logger *slog.Logger,
	checks ...ReadinessCheck,
) *Server {
	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		logger: logger,
		checks: checks,
		ctx:    ctx,
		cancel: cancel,
		server: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", host, port),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
	}
}

// SetupRouter configures the Gin router with all routes and middleware.
//
// Routes under /v1/cct:
//   - POST /token: issue a token (issuer key, per-IP rate limit)
//   - POST /verify: verify a token
//   - GET /tenants/:tenant_id/capabilities/:capability: capability check through the guard
//   - GET /tenants/:tenant_id/state: tenant snapshot (issuer key)
//   - POST /tenants/:tenant_id/invalidate: drop a tenant from the cache (issuer key)
//   - POST /cache/invalidate: empty the cache (issuer key)
func (s *Server) SetupRouter(
	cfg *config.Config,
	handlers Handlers,
	metricsProvider *metrics.Provider,
) {
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(requestid.New(requestid.WithGenerator(func() string {
		return uuid.Must(uuid.NewV7()).String()
	})))
	router.Use(CustomLoggerMiddleware(s.logger, "/health", "/ready"))

	if corsMiddleware := createCORSMiddleware(cfg.CORSEnabled, cfg.CORSAllowOrigins, s.logger); corsMiddleware != nil {
		router.Use(corsMiddleware)
	}

	if metricsProvider != nil {
		router.Use(metrics.HTTPMetricsMiddleware(
			metricsProvider.MeterProvider(),
			cfg.MetricsNamespace,
			"/health",
			"/ready",
		))
	}

	router.GET("/health", s.healthHandler)
	router.GET("/ready", s.readinessHandler)

	env := cfg.Environment()
	issuerKey := cctHTTP.IssuerKeyMiddleware(handlers.IssuerKeyVerifier, env, s.logger)

	v1 := router.Group("/v1/cct")
	{
		tokenChain := []gin.HandlerFunc{}
		if cfg.RateLimitTokenEnabled {
			tokenChain = append(tokenChain, cctHTTP.IssueRateLimitMiddleware(
				s.ctx,
				cfg.RateLimitTokenRequestsPerSec,
				cfg.RateLimitTokenBurst,
				s.logger,
			))
		}
		tokenChain = append(tokenChain, issuerKey, handlers.TokenHandler.IssueTokenHandler)
		v1.POST("/token", tokenChain...)

		v1.POST("/verify", handlers.TokenHandler.VerifyTokenHandler)

		v1.GET("/tenants/:tenant_id/capabilities/:capability",
			cctHTTP.RequireCapabilityMiddleware(handlers.GuardUseCase, cctHTTP.Requirement{
				CapabilityParam:   "capability",
				TenantParam:       "tenant_id",
				AllowMissingInDev: true,
			}, s.logger),
			handlers.TenantHandler.CheckCapabilityHandler,
		)

		admin := v1.Group("", issuerKey)
		admin.GET("/tenants/:tenant_id/state", handlers.TenantHandler.GetStateHandler)
		admin.POST("/tenants/:tenant_id/invalidate", handlers.TenantHandler.InvalidateHandler)
		admin.POST("/cache/invalidate", handlers.TenantHandler.InvalidateAllHandler)
	}

	s.router = router
}

// Start starts the HTTP server
func (s *Server) Start(ctx context.Context) error {
	if s.router == nil {
		return errors.New("router not configured, call SetupRouter first")
	}
	s.server.Handler = s.router

	s.logger.Info("starting http server", slog.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	s.cancel()
	return s.server.Shutdown(ctx)
}

// GetHandler returns the http.Handler for testing purposes.
func (s *Server) GetHandler() http.Handler {
	return s.router
}

// healthHandler reports that the process is alive.
func (s *Server) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// readinessHandler runs every readiness check with a short timeout and answers 503
// if any fails or the server is shutting down.
func (s *Server) readinessHandler(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	ready := s.ctx.Err() == nil
	components := make(map[string]string, len(s.checks))
	for _, check := range s.checks {
		if err := check.Check(ctx); err != nil {
			s.logger.Warn("readiness check failed",
				slog.String("component", check.Name),
				slog.Any("error", err))
			components[check.Name] = "error"
			ready = false
			continue
		}
		components[check.Name] = "ok"
	}

	if !ready {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "components": components})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready", "components": components})
}
