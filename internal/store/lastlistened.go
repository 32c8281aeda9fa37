package store

import (
	"context"

	"github.com/sadhanaapp/sadhana-server/internal/domain"
)

// GetLastListened returns the single global resume record, or nil when
// absent or corrupt.
func (s *Store) GetLastListened(ctx context.Context) *domain.LastListened {
	if ctx.Err() != nil {
		return nil
	}

	var rec domain.LastListened
	if !s.getJSON(lastListenedKey, &rec) {
		return nil
	}
	// A record without a key cannot be matched to any item.
	if rec.Key == "" {
		return nil
	}
	return &rec
}

// SetLastListened overwrites the global resume record.
func (s *Store) SetLastListened(ctx context.Context, rec *domain.LastListened) {
	if ctx.Err() != nil || rec == nil {
		return
	}
	s.setJSON(lastListenedKey, rec)
}
