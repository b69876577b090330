package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/foxzi/planry/internal/config"
	"github.com/foxzi/planry/internal/export"
	"github.com/foxzi/planry/internal/ipfilter"
	"github.com/foxzi/planry/internal/metrics"
	"github.com/foxzi/planry/internal/ratelimit"
	"github.com/foxzi/planry/internal/session"
)

// Version is reported by the health endpoint
var Version = "dev"

// Archive stores exported checklists
type Archive interface {
	Save(ctx context.Context, e *export.Entry) error
	Get(ctx context.Context, id string) (*export.Entry, error)
	List(ctx context.Context, filter export.ListFilter) ([]*export.Entry, error)
	Delete(ctx context.Context, id string) error
}

// Server is the HTTP API server
type Server struct {
	router     *chi.Mux
	httpServer *http.Server
	sessions   *session.Store
	archive    Archive
	config     *config.APIConfig
	filter     *ipfilter.Filter
	limiter    *ratelimit.Limiter
	logger     *slog.Logger
	startTime  time.Time
}

// NewServer creates a new API server. archive may be nil, in which case the
// archive routes answer 503.
func NewServer(sessions *session.Store, archive Archive, cfg *config.APIConfig, logger *slog.Logger) *Server {
	s := &Server{
		router:    chi.NewRouter(),
		sessions:  sessions,
		archive:   archive,
		config:    cfg,
		filter:    ipfilter.New(cfg.AllowedIPs, logger),
		logger:    logger,
		startTime: time.Now(),
	}

	if s.filter.Enabled() {
		logger.Info("API IP filtering enabled", "allowed_networks", s.filter.Count())
	}

	if cfg.RateLimit.Enabled() {
		s.limiter = ratelimit.NewLimiter(&cfg.RateLimit)
		logger.Info("API rate limiting enabled",
			"global", cfg.RateLimit.Global,
			"per_ip", cfg.RateLimit.PerIP,
			"per_api_key", cfg.RateLimit.PerAPIKey,
		)
	}

	s.setupRoutes()
	return s
}

// Handler returns the HTTP handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// setupRoutes configures the HTTP routes
func (s *Server) setupRoutes() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.filter.Middleware)
	s.router.Use(s.loggingMiddleware)
	s.router.Use(middleware.Recoverer)
	s.router.Use(metrics.HTTPMiddleware)

	if len(s.config.CORSOrigins) > 0 {
		s.router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   s.config.CORSOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-API-Key"},
			ExposedHeaders:   []string{"X-Request-Id"},
			AllowCredentials: false,
			MaxAge:           300,
		}))
	}

	// Health check (no auth required)
	s.router.Get("/health", s.handleHealth)

	// API v1 routes (auth required)
	s.router.Route("/api/v1", func(r chi.Router) {
		r.Use(s.authMiddleware)
		r.Use(s.rateLimitMiddleware)

		r.Route("/sessions", func(r chi.Router) {
			r.Post("/", s.handleCreateSession)
			r.Get("/", s.handleListSessions)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetSession)
				r.Put("/", s.handleImportSession)
				r.Delete("/", s.handleDeleteSession)

				r.Patch("/campaign", s.handleUpdateCampaign)

				r.Post("/content", s.handleAddContent)
				r.Patch("/content/{index}", s.handleUpdateContent)
				r.Delete("/content/{index}", s.handleRemoveContent)

				r.Post("/weeks/{week}/{brand}/emails", s.handleAddEmail)
				r.Patch("/weeks/{week}/{brand}/emails/{index}", s.handleUpdateEmail)
				r.Delete("/weeks/{week}/{brand}/emails/{index}", s.handleRemoveEmail)

				r.Get("/ads", s.handleAds)
				r.Get("/checklist", s.handleChecklist)
				r.Get("/options", s.handleOptions)
				r.Get("/orphans", s.handleOrphans)
				r.Get("/export", s.handleExport)
				r.Post("/archive", s.handleArchiveSession)
			})
		})

		r.Route("/archive", func(r chi.Router) {
			r.Get("/", s.handleListArchive)
			r.Get("/{id}", s.handleGetArchive)
			r.Delete("/{id}", s.handleDeleteArchive)
		})
	})
}

// ListenAndServe starts the HTTP server
func (s *Server) ListenAndServe() error {
	s.httpServer = &http.Server{
		Addr:           s.config.ListenAddr,
		Handler:        s.router,
		ReadTimeout:    s.config.ReadTimeout,
		WriteTimeout:   s.config.WriteTimeout,
		IdleTimeout:    s.config.IdleTimeout,
		MaxHeaderBytes: s.config.MaxHeaderBytes,
	}

	s.logger.Info("starting HTTP API server", "addr", s.config.ListenAddr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP API server")
	if s.limiter != nil {
		s.limiter.Stop()
	}
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}
