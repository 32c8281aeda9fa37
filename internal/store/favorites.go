package store

import (
	"context"
	"slices"
)

// GetFavorites returns the persisted favorite set, keyed by item key.
// Absent or corrupt storage yields an empty set.
func (s *Store) GetFavorites(ctx context.Context) map[string]struct{} {
	favs := make(map[string]struct{})
	if ctx.Err() != nil {
		return favs
	}

	var keys []string
	if s.getJSON(favoritesKey, &keys) {
		for _, k := range keys {
			favs[k] = struct{}{}
		}
	}
	return favs
}

// SetFavorites overwrites the persisted favorite set.
func (s *Store) SetFavorites(ctx context.Context, favs map[string]struct{}) {
	if ctx.Err() != nil {
		return
	}
	// Sorted for a deterministic stored representation.
	keys := make([]string, 0, len(favs))
	for k := range favs {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	s.setJSON(favoritesKey, keys)
}

// ToggleFavorite flips an item's favorite state and persists the set.
// Returns true when the item is a favorite after the toggle.
func (s *Store) ToggleFavorite(ctx context.Context, itemKey string) bool {
	favs := s.GetFavorites(ctx)
	if _, ok := favs[itemKey]; ok {
		delete(favs, itemKey)
	} else {
		favs[itemKey] = struct{}{}
	}
	s.SetFavorites(ctx, favs)

	_, nowFavorite := favs[itemKey]
	return nowFavorite
}
