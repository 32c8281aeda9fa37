package store

import "context"

// GetCustomStarts returns the persisted item-key to start-seconds mapping.
// Absent or corrupt storage yields an empty map.
func (s *Store) GetCustomStarts(ctx context.Context) map[string]int {
	starts := make(map[string]int)
	if ctx.Err() != nil {
		return starts
	}
	s.getJSON(startsKey, &starts)
	return starts
}

// SetCustomStart records a per-item default start offset in whole seconds.
// Negative values are stored as 0.
func (s *Store) SetCustomStart(ctx context.Context, itemKey string, seconds int) {
	if ctx.Err() != nil {
		return
	}
	if seconds < 0 {
		seconds = 0
	}
	starts := s.GetCustomStarts(ctx)
	starts[itemKey] = seconds
	s.setJSON(startsKey, starts)
}

// ClearCustomStart removes an item's start offset.
func (s *Store) ClearCustomStart(ctx context.Context, itemKey string) {
	if ctx.Err() != nil {
		return
	}
	starts := s.GetCustomStarts(ctx)
	if _, ok := starts[itemKey]; !ok {
		return
	}
	delete(starts, itemKey)
	s.setJSON(startsKey, starts)
}

// SeedCustomStarts merges catalog-provided start times into the persisted
// map, writing only keys not already present: a user override must never
// be clobbered by a catalog default. Returns the number of keys added.
func (s *Store) SeedCustomStarts(ctx context.Context, seeds map[string]int) int {
	if ctx.Err() != nil || len(seeds) == 0 {
		return 0
	}

	starts := s.GetCustomStarts(ctx)
	added := 0
	for key, seconds := range seeds {
		if _, exists := starts[key]; exists {
			continue
		}
		if seconds < 0 {
			continue
		}
		starts[key] = seconds
		added++
	}

	if added > 0 {
		s.setJSON(startsKey, starts)
	}
	return added
}
