package providers

import (
	"context"
	"net/http"

	"github.com/samber/do/v2"

	"github.com/sadhanaapp/sadhana-server/internal/api"
	"github.com/sadhanaapp/sadhana-server/internal/config"
	"github.com/sadhanaapp/sadhana-server/internal/logger"
	"github.com/sadhanaapp/sadhana-server/internal/service"
	"github.com/sadhanaapp/sadhana-server/internal/sse"
)

// HTTPServerHandle wraps http.Server with Shutdownable.
type HTTPServerHandle struct {
	*http.Server
}

// Shutdown implements do.Shutdownable.
func (h *HTTPServerHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return h.Server.Shutdown(ctx)
}

// ProvideHTTPServer provides the HTTP server.
func ProvideHTTPServer(i do.Injector) (*HTTPServerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	sseHandle := do.MustInvoke[*SSEManagerHandle](i)
	limiterHandle := do.MustInvoke[*RateLimiterHandle](i)

	catalogService := do.MustInvoke[*service.CatalogService](i)
	annotationService := do.MustInvoke[*service.AnnotationService](i)
	playbackService := do.MustInvoke[*service.PlaybackService](i)
	preferenceService := do.MustInvoke[*service.PreferenceService](i)

	sseHandler := sse.NewHandler(sseHandle.Manager, log.Logger)

	handler := api.NewServer(
		storeHandle.Store,
		catalogService,
		annotationService,
		playbackService,
		preferenceService,
		sseHandle.Manager,
		sseHandler,
		limiterHandle.KeyedRateLimiter,
		cfg.Server.AllowedOrigins,
		log.Logger,
	)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start in background
	go func() {
		log.Info("HTTP server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error", "error", err)
		}
	}()

	log.Info("Server running", "addr", srv.Addr)

	return &HTTPServerHandle{Server: srv}, nil
}
