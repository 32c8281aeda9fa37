package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/sadhanaapp/sadhana-server/internal/config"
	"github.com/sadhanaapp/sadhana-server/internal/logger"
	"github.com/sadhanaapp/sadhana-server/internal/service"
	"github.com/sadhanaapp/sadhana-server/internal/validation"
)

// ProvideValidator provides the request validator.
func ProvideValidator(i do.Injector) (*validation.Validator, error) {
	return validation.New(), nil
}

// ProvideCatalogService provides the catalog service and performs the
// initial load. A failed load is not fatal; the server starts with an
// empty catalog and reports degraded health until a reload succeeds.
func ProvideCatalogService(i do.Injector) (*service.CatalogService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	sseHandle := do.MustInvoke[*SSEManagerHandle](i)

	svc := service.NewCatalogService(storeHandle.Store, sseHandle.Manager, log.Logger, cfg.Catalog.Source)

	if err := svc.Load(context.Background()); err != nil {
		log.Warn("Initial catalog load failed", "source", cfg.Catalog.Source, "error", err)
	}

	return svc, nil
}

// ProvideAnnotationService provides the marker and note service.
func ProvideAnnotationService(i do.Injector) (*service.AnnotationService, error) {
	log := do.MustInvoke[*logger.Logger](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	sseHandle := do.MustInvoke[*SSEManagerHandle](i)
	catalogService := do.MustInvoke[*service.CatalogService](i)
	validate := do.MustInvoke[*validation.Validator](i)

	return service.NewAnnotationService(storeHandle.Store, catalogService, sseHandle.Manager, validate, log.Logger), nil
}

// ProvidePlaybackService provides the playback session service and
// restores the last listened item, paused, if one is on record.
func ProvidePlaybackService(i do.Injector) (*service.PlaybackService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	sseHandle := do.MustInvoke[*SSEManagerHandle](i)
	catalogService := do.MustInvoke[*service.CatalogService](i)
	annotationService := do.MustInvoke[*service.AnnotationService](i)

	svc := service.NewPlaybackService(
		storeHandle.Store,
		catalogService,
		annotationService,
		sseHandle.Manager,
		log.Logger,
		cfg.Session.MinTickInterval,
	)

	np, err := svc.Restore(context.Background())
	if err != nil {
		log.Warn("Session restore failed", "error", err)
	} else if np != nil {
		log.Info("Restored last listened item", "key", np.Key)
	}

	return svc, nil
}

// ProvidePreferenceService provides the playback preference service.
func ProvidePreferenceService(i do.Injector) (*service.PreferenceService, error) {
	log := do.MustInvoke[*logger.Logger](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	sseHandle := do.MustInvoke[*SSEManagerHandle](i)

	return service.NewPreferenceService(storeHandle.Store, sseHandle.Manager, log.Logger), nil
}
