// Package service provides the business logic layer binding the catalog,
// persisted listening state, and the playback session together.
package service

import (
	"context"
	"log/slog"
	"slices"
	"sync"

	"github.com/sadhanaapp/sadhana-server/internal/catalog"
	"github.com/sadhanaapp/sadhana-server/internal/domain"
	"github.com/sadhanaapp/sadhana-server/internal/errors"
	"github.com/sadhanaapp/sadhana-server/internal/sse"
	"github.com/sadhanaapp/sadhana-server/internal/store"
)

// CatalogService owns the in-memory item list and the listener's view of
// it. The most recent query result doubles as the playback order that
// auto-advance walks.
type CatalogService struct {
	store  *store.Store
	events sse.Emitter
	logger *slog.Logger
	source string

	mu       sync.RWMutex
	items    []domain.Item
	byKey    map[string]int
	ordered  []domain.Item // last query result, playback order
	loadErr  error
	lastSort catalog.SortMode
}

// NewCatalogService creates a catalog service reading from source.
func NewCatalogService(st *store.Store, events sse.Emitter, logger *slog.Logger, source string) *CatalogService {
	return &CatalogService{
		store:    st,
		events:   events,
		logger:   logger,
		source:   source,
		byKey:    make(map[string]int),
		lastSort: catalog.DefaultSort,
	}
}

// Load fetches and parses the catalog source, seeds catalog-declared start
// times into the custom-starts store, and resets the playback order to the
// full list in default order. A failed load keeps the previous items and
// surfaces the error to clients.
func (s *CatalogService) Load(ctx context.Context) error {
	items, err := catalog.Load(ctx, s.source)
	if err != nil {
		s.mu.Lock()
		s.loadErr = err
		s.mu.Unlock()

		s.logger.Error("catalog load failed", slog.String("source", s.source), slog.String("error", err.Error()))
		s.events.Emit(sse.NewEvent(sse.EventCatalogError, map[string]string{"message": err.Error()}))
		return err
	}

	// Catalog defaults seed only keys the listener has never overridden.
	seeds := make(map[string]int)
	for i := range items {
		if items[i].StartTime != nil {
			seeds[items[i].Key()] = int(*items[i].StartTime)
		}
	}
	seeded := s.store.SeedCustomStarts(ctx, seeds)

	byKey := make(map[string]int, len(items))
	for i := range items {
		byKey[items[i].Key()] = i
	}

	ordered := slices.Clone(items)
	catalog.Sort(ordered, catalog.DefaultSort)

	s.mu.Lock()
	s.items = items
	s.byKey = byKey
	s.ordered = ordered
	s.lastSort = catalog.DefaultSort
	s.loadErr = nil
	s.mu.Unlock()

	s.logger.Info("catalog loaded",
		slog.String("source", s.source),
		slog.Int("items", len(items)),
		slog.Int("seeded_starts", seeded))
	s.events.Emit(sse.NewEvent(sse.EventCatalogReloaded, map[string]int{"items": len(items)}))
	return nil
}

// QueryRequest narrows and orders the catalog view.
type QueryRequest struct {
	Query         string
	FavoritesOnly bool
	Sort          catalog.SortMode
}

// Query filters and sorts the catalog. The result becomes the playback
// order used by auto-advance until the next query.
func (s *CatalogService) Query(ctx context.Context, req QueryRequest) []domain.Item {
	if req.Sort == "" {
		req.Sort = catalog.DefaultSort
	}

	var favs map[string]struct{}
	if req.FavoritesOnly {
		favs = s.store.GetFavorites(ctx)
	}

	s.mu.RLock()
	items := s.items
	s.mu.RUnlock()

	out := catalog.Filter(items, req.Query, req.FavoritesOnly, favs)
	catalog.Sort(out, req.Sort)

	s.mu.Lock()
	s.ordered = out
	s.lastSort = req.Sort
	s.mu.Unlock()

	return slices.Clone(out)
}

// PlaybackOrder returns the item sequence auto-advance walks: the most
// recent query result, or the full default-ordered list before any query.
func (s *CatalogService) PlaybackOrder() []domain.Item {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.ordered)
}

// ItemByKey resolves an item key against the loaded catalog.
func (s *CatalogService) ItemByKey(key string) (domain.Item, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.byKey[key]
	if !ok {
		return domain.Item{}, false
	}
	return s.items[i], true
}

// LoadError returns the error from the most recent failed load, or nil
// when the catalog is healthy.
func (s *CatalogService) LoadError() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loadErr
}

// Favorites returns the favorited item keys, sorted.
func (s *CatalogService) Favorites(ctx context.Context) []string {
	favs := s.store.GetFavorites(ctx)
	keys := make([]string, 0, len(favs))
	for k := range favs {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// ToggleFavorite flips an item's favorite state and returns the new state.
func (s *CatalogService) ToggleFavorite(ctx context.Context, key string) (bool, error) {
	if _, ok := s.ItemByKey(key); !ok {
		return false, errors.NotFoundf("unknown item key %q", key)
	}

	favorited := s.store.ToggleFavorite(ctx, key)
	s.events.Emit(sse.NewEvent(sse.EventFavoritesUpdated, map[string]any{
		"key":       key,
		"favorited": favorited,
	}))
	return favorited, nil
}

// CustomStarts returns the persisted per-item start offsets.
func (s *CatalogService) CustomStarts(ctx context.Context) map[string]int {
	return s.store.GetCustomStarts(ctx)
}

// SetCustomStart persists a per-item default start offset in seconds.
// Negative values are stored as zero.
func (s *CatalogService) SetCustomStart(ctx context.Context, key string, seconds int) error {
	if _, ok := s.ItemByKey(key); !ok {
		return errors.NotFoundf("unknown item key %q", key)
	}
	s.store.SetCustomStart(ctx, key, seconds)
	return nil
}

// ClearCustomStart removes a per-item start offset. Clearing an absent key
// is a no-op.
func (s *CatalogService) ClearCustomStart(ctx context.Context, key string) error {
	if _, ok := s.ItemByKey(key); !ok {
		return errors.NotFoundf("unknown item key %q", key)
	}
	s.store.ClearCustomStart(ctx, key)
	return nil
}

// Export returns the catalog with each item's start time replaced by the
// listener's effective custom start, suitable for re-publishing the source
// document with accumulated overrides.
func (s *CatalogService) Export(ctx context.Context) []domain.Item {
	starts := s.store.GetCustomStarts(ctx)

	s.mu.RLock()
	out := slices.Clone(s.items)
	s.mu.RUnlock()

	for i := range out {
		if v, ok := starts[out[i].Key()]; ok {
			start := float64(v)
			out[i].StartTime = &start
		}
	}
	return out
}
