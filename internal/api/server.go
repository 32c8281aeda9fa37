// Package api provides the HTTP API server and handlers for the Sadhana player.
package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/sadhanaapp/sadhana-server/internal/ratelimit"
	"github.com/sadhanaapp/sadhana-server/internal/service"
	"github.com/sadhanaapp/sadhana-server/internal/sse"
	"github.com/sadhanaapp/sadhana-server/internal/store"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	store          *store.Store
	catalogService *service.CatalogService
	annotations    *service.AnnotationService
	playback       *service.PlaybackService
	preferences    *service.PreferenceService
	sseManager     *sse.Manager
	sseHandler     *sse.Handler
	writeLimiter   *ratelimit.KeyedRateLimiter
	allowedOrigins []string
	router         *chi.Mux
	logger         *slog.Logger
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(
	st *store.Store,
	catalogService *service.CatalogService,
	annotations *service.AnnotationService,
	playback *service.PlaybackService,
	preferences *service.PreferenceService,
	sseManager *sse.Manager,
	sseHandler *sse.Handler,
	writeLimiter *ratelimit.KeyedRateLimiter,
	allowedOrigins []string,
	logger *slog.Logger,
) *Server {
	s := &Server{
		store:          st,
		catalogService: catalogService,
		annotations:    annotations,
		playback:       playback,
		preferences:    preferences,
		sseManager:     sseManager,
		sseHandler:     sseHandler,
		writeLimiter:   writeLimiter,
		allowedOrigins: allowedOrigins,
		router:         chi.NewRouter(),
		logger:         logger,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// setupMiddleware configures middleware stack.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	// Health check.
	s.router.Get("/health", s.handleHealthCheck)

	// API v1.
	s.router.Route("/api/v1", func(r chi.Router) {
		// Catalog browsing and maintenance.
		r.Route("/catalog", func(r chi.Router) {
			r.Get("/", s.handleQueryCatalog)
			r.Get("/export", s.handleExportCatalog)
			r.Post("/reload", s.handleReloadCatalog)
		})

		r.Route("/favorites", func(r chi.Router) {
			r.Get("/", s.handleListFavorites)
			r.Post("/toggle", s.handleToggleFavorite)
		})

		r.Route("/starts", func(r chi.Router) {
			r.Get("/", s.handleListStarts)
			r.Put("/", s.handleSetStart)
			r.Delete("/", s.handleClearStart)
		})

		// Annotation writes come straight from UI gestures; keep runaway
		// clients from hammering the store.
		r.Route("/annotations", func(r chi.Router) {
			r.Get("/", s.handleGetAnnotations)
			r.Group(func(r chi.Router) {
				r.Use(RateLimitMiddleware(s.writeLimiter, s.logger))
				r.Post("/markers", s.handleAddMarker)
				r.Delete("/markers", s.handleRemoveMarker)
				r.Post("/notes", s.handleAddNote)
				r.Delete("/notes", s.handleRemoveNote)
			})
		})

		// The playback session: clients select items and report media
		// element events, the server answers over the event stream.
		r.Route("/session", func(r chi.Router) {
			r.Get("/", s.handleGetSession)
			r.Post("/select", s.handleSelect)
			r.Post("/ready", s.handleReady)
			r.Post("/tick", s.handleTick)
			r.Post("/ended", s.handleEnded)
			r.Post("/pause", s.handlePause)
			r.Post("/resume", s.handleResume)
			r.Post("/rejected", s.handlePlayRejected)
			r.Post("/seek", s.handleSeek)
		})

		r.Route("/preferences", func(r chi.Router) {
			r.Get("/", s.handleGetPreferences)
			r.Patch("/", s.handleUpdatePreferences)
		})

		// Server-sent events stream.
		r.Get("/events", s.sseHandler.ServeHTTP)
	})
}
