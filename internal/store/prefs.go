package store

import (
	"context"

	"github.com/sadhanaapp/sadhana-server/internal/domain"
)

// GetPreferences assembles the three scalar preferences, each read from its
// own namespace so corruption in one falls back to that preference's
// default without touching the others.
func (s *Store) GetPreferences(ctx context.Context) domain.Preferences {
	prefs := domain.DefaultPreferences()
	if ctx.Err() != nil {
		return prefs
	}

	var rate float64
	if s.getJSON(prefRateKey, &rate) {
		prefs.Rate = domain.ClampRate(rate)
	}

	var volume float64
	if s.getJSON(prefVolumeKey, &volume) {
		prefs.Volume = domain.ClampVolume(volume)
	}

	var theme string
	if s.getJSON(prefThemeKey, &theme) {
		prefs.Theme = domain.NormalizeTheme(theme)
	}

	return prefs
}

// SetRate persists a clamped playback rate and returns the stored value.
func (s *Store) SetRate(ctx context.Context, rate float64) float64 {
	clamped := domain.ClampRate(rate)
	if ctx.Err() != nil {
		return clamped
	}
	s.setJSON(prefRateKey, clamped)
	return clamped
}

// SetVolume persists a clamped volume and returns the stored value.
func (s *Store) SetVolume(ctx context.Context, volume float64) float64 {
	clamped := domain.ClampVolume(volume)
	if ctx.Err() != nil {
		return clamped
	}
	s.setJSON(prefVolumeKey, clamped)
	return clamped
}

// SetTheme persists a normalized theme and returns the stored value.
func (s *Store) SetTheme(ctx context.Context, theme string) domain.Theme {
	normalized := domain.NormalizeTheme(theme)
	if ctx.Err() != nil {
		return normalized
	}
	s.setJSON(prefThemeKey, string(normalized))
	return normalized
}
