package service

import (
	"context"
	"log/slog"

	"github.com/sadhanaapp/sadhana-server/internal/domain"
	"github.com/sadhanaapp/sadhana-server/internal/sse"
	"github.com/sadhanaapp/sadhana-server/internal/store"
)

// PreferenceService exposes the scalar listening preferences.
type PreferenceService struct {
	store  *store.Store
	events sse.Emitter
	logger *slog.Logger
}

// NewPreferenceService creates a new preference service.
func NewPreferenceService(st *store.Store, events sse.Emitter, logger *slog.Logger) *PreferenceService {
	return &PreferenceService{store: st, events: events, logger: logger}
}

// Get returns the current preferences, with defaults filled in for any
// value never set or unreadable.
func (s *PreferenceService) Get(ctx context.Context) domain.Preferences {
	return s.store.GetPreferences(ctx)
}

// UpdateRequest carries partial preference changes; absent fields are left
// untouched.
type UpdateRequest struct {
	Rate   *float64 `json:"rate,omitempty"`
	Volume *float64 `json:"volume,omitempty"`
	Theme  *string  `json:"theme,omitempty"`
}

// Update applies the supplied changes, clamping each to its valid range,
// and returns the resulting preferences.
func (s *PreferenceService) Update(ctx context.Context, req UpdateRequest) domain.Preferences {
	if req.Rate != nil {
		stored := s.store.SetRate(ctx, *req.Rate)
		s.logger.Debug("rate updated", slog.Float64("rate", stored))
	}
	if req.Volume != nil {
		stored := s.store.SetVolume(ctx, *req.Volume)
		s.logger.Debug("volume updated", slog.Float64("volume", stored))
	}
	if req.Theme != nil {
		stored := s.store.SetTheme(ctx, *req.Theme)
		s.logger.Debug("theme updated", slog.String("theme", string(stored)))
	}

	prefs := s.store.GetPreferences(ctx)
	s.events.Emit(sse.NewEvent(sse.EventPreferencesUpdated, prefs))
	return prefs
}
