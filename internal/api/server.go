// Package api provides the HTTP API server and handlers for Folio.
package api

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/foliohq/folio-server/internal/config"
	"github.com/foliohq/folio-server/internal/http/response"
	"github.com/foliohq/folio-server/internal/ratelimit"
	"github.com/foliohq/folio-server/internal/search"
	"github.com/foliohq/folio-server/internal/store"
)

const authRoutePrefix = "/api/v1/auth/"

// Server holds dependencies for HTTP handlers.
type Server struct {
	store       store.Store
	index       *search.Index
	services    *Services
	authLimiter *ratelimit.KeyedRateLimiter
	router      *chi.Mux
	api         huma.API
	logger      *slog.Logger
}

// NewServer creates a new HTTP server with all routes configured.
// index may be nil; the health check then reports search as degraded.
func NewServer(st store.Store, index *search.Index, services *Services, cfg *config.Config, logger *slog.Logger) *Server {
	s := &Server{
		store:    st,
		index:    index,
		services: services,
		router:   chi.NewRouter(),
		logger:   logger,
	}

	if cfg.RateLimit.Enabled {
		s.authLimiter = ratelimit.New(float64(cfg.RateLimit.RequestsPerMinute), cfg.RateLimit.Burst, 10*time.Minute)
	}

	s.setupMiddleware(cfg.Server.CORSOrigins)

	humaConfig := huma.DefaultConfig("Folio API", "1.0.0")
	humaConfig.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"bearer": {
			Type:         "http",
			Scheme:       "bearer",
			BearerFormat: "PASETO",
		},
	}
	// No $schema links: bodies are wrapped in the envelope.
	humaConfig.CreateHooks = nil
	humaConfig.Transformers = append(humaConfig.Transformers, EnvelopeTransformer)

	s.api = humachi.New(s.router, humaConfig)
	RegisterErrorHandler()

	s.registerRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// API exposes the huma API, mainly for OpenAPI generation.
func (s *Server) API() huma.API {
	return s.api
}

// Close stops background work owned by the server.
func (s *Server) Close() {
	if s.authLimiter != nil {
		s.authLimiter.Stop()
	}
}

func (s *Server) setupMiddleware(origins []string) {
	s.router.Use(requestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(requestLogger(s.logger))
	s.router.Use(recoverer(s.logger))

	if len(origins) > 0 {
		s.router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   origins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"X-Request-ID", "Retry-After"},
			AllowCredentials: false,
			MaxAge:           300,
		}))
	}

	if s.authLimiter != nil {
		s.router.Use(s.limitAuthRoutes)
	}

	s.router.Use(authMiddleware(s.services.Auth, s.logger))

	s.router.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		response.NotFound(w, "route not found", s.logger)
	})
	s.router.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		response.MethodNotAllowed(w, s.logger)
	})
}

// limitAuthRoutes applies the per-IP limiter to login and registration only.
func (s *Server) limitAuthRoutes(next http.Handler) http.Handler {
	limited := ratelimit.Middleware(s.authLimiter, s.logger)(next)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, authRoutePrefix) {
			limited.ServeHTTP(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerRoutes() {
	s.registerHealthRoutes()
	s.registerAuthRoutes()
	s.registerUserRoutes()
	s.registerBookRoutes()
	s.registerReviewRoutes()
}
