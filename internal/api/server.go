// Package api provides the HTTP API server and handlers for the Cadence server.
package api

import (
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/cadenceapp/cadence-server/internal/auth"
	"github.com/cadenceapp/cadence-server/internal/metrics"
	"github.com/cadenceapp/cadence-server/internal/ratelimit"
	"github.com/cadenceapp/cadence-server/internal/store"
)

// apiVersion is reported in the OpenAPI document.
const apiVersion = "1.0.0"

// Options configures a Server.
type Options struct {
	Name           string
	AllowedOrigins []string
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	store           store.Store
	index           IndexStatus
	services        *Services
	binder          *auth.SessionBinder
	metrics         *metrics.Metrics
	authRateLimiter *ratelimit.KeyedRateLimiter
	router          *chi.Mux
	api             huma.API
	logger          *slog.Logger
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(
	st store.Store,
	index IndexStatus,
	services *Services,
	binder *auth.SessionBinder,
	m *metrics.Metrics,
	authRateLimiter *ratelimit.KeyedRateLimiter,
	logger *slog.Logger,
	opts Options,
) *Server {
	router := chi.NewRouter()

	s := &Server{
		store:           st,
		index:           index,
		services:        services,
		binder:          binder,
		metrics:         m,
		authRateLimiter: authRateLimiter,
		router:          router,
		logger:          logger,
	}

	s.setupMiddleware(opts)

	name := opts.Name
	if name == "" {
		name = "Cadence API"
	}
	humaConfig := huma.DefaultConfig(name, apiVersion)
	humaConfig.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"cookie": {
			Type: "apiKey",
			In:   "cookie",
			Name: auth.AccessCookieName,
		},
		"bearer": {
			Type:         "http",
			Scheme:       "bearer",
			BearerFormat: "PASETO",
		},
	}

	s.api = humachi.New(router, humaConfig)
	RegisterErrorHandler(logger)

	s.registerRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// API returns the underlying huma API, used by tests and OpenAPI export.
func (s *Server) API() huma.API {
	return s.api
}

// setupMiddleware configures the middleware stack.
func (s *Server) setupMiddleware(opts Options) {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	if s.metrics != nil {
		s.router.Use(s.metrics.Middleware)
	}
	s.router.Use(sessionMiddleware(s.binder))
}

// registerRoutes registers every route group.
func (s *Server) registerRoutes() {
	if s.metrics != nil {
		s.router.Handle("/metrics", s.metrics.Handler())
	}

	s.registerHealthRoutes()
	s.registerUserRoutes()
	s.registerAdminRoutes()
	s.registerSongRoutes()
	s.registerPlaylistRoutes()
}
