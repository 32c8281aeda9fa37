package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/sadhanaapp/sadhana-server/internal/catalog"
	"github.com/sadhanaapp/sadhana-server/internal/config"
	"github.com/sadhanaapp/sadhana-server/internal/logger"
	"github.com/sadhanaapp/sadhana-server/internal/ratelimit"
	"github.com/sadhanaapp/sadhana-server/internal/service"
)

// CatalogWatcherHandle wraps the catalog file watcher with Shutdownable.
// Watcher is nil when watching is disabled or the source is a URL.
type CatalogWatcherHandle struct {
	*catalog.Watcher
	cancel context.CancelFunc
}

// Shutdown implements do.Shutdownable.
func (h *CatalogWatcherHandle) Shutdown() error {
	if h.Watcher == nil {
		return nil
	}
	h.cancel()
	return h.Close()
}

// ProvideCatalogWatcher provides the file watcher that reloads the
// catalog when the source file changes on disk.
func ProvideCatalogWatcher(i do.Injector) (*CatalogWatcherHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	catalogService := do.MustInvoke[*service.CatalogService](i)

	if !cfg.Catalog.Watch || catalog.IsURL(cfg.Catalog.Source) {
		if cfg.Catalog.Watch {
			log.Info("Catalog watching skipped for remote source", "source", cfg.Catalog.Source)
		}
		return &CatalogWatcherHandle{}, nil
	}

	ctx, cancel := context.WithCancel(context.Background())

	watcher, err := catalog.NewWatcher(cfg.Catalog.Source, 0, func() {
		if err := catalogService.Load(ctx); err != nil {
			log.Warn("Catalog reload after file change failed", "error", err)
		}
	}, log.Logger)
	if err != nil {
		cancel()
		return nil, err
	}

	watcher.Start(ctx)
	log.Info("Catalog watcher started", "path", cfg.Catalog.Source)

	return &CatalogWatcherHandle{Watcher: watcher, cancel: cancel}, nil
}

// RateLimiterHandle wraps the write rate limiter with Shutdownable.
type RateLimiterHandle struct {
	*ratelimit.KeyedRateLimiter
}

// Shutdown implements do.Shutdownable.
func (h *RateLimiterHandle) Shutdown() error {
	h.Stop()
	return nil
}

// ProvideRateLimiter provides the per-IP limiter for annotation writes.
func ProvideRateLimiter(i do.Injector) (*RateLimiterHandle, error) {
	return &RateLimiterHandle{KeyedRateLimiter: ratelimit.New(writeLimitRPS, writeLimitBurst)}, nil
}
