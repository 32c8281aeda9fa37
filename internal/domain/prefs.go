package domain

import "math"

// Theme selects the client color scheme.
type Theme string

// Supported themes.
const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// Playback preference bounds.
const (
	MinRate   = 0.25
	MaxRate   = 3.0
	MinVolume = 0.0
	MaxVolume = 1.0
)

// Preferences are the scalar player settings, each persisted independently.
type Preferences struct {
	Rate   float64 `json:"rate"`
	Volume float64 `json:"volume"`
	Theme  Theme   `json:"theme"`
}

// DefaultPreferences returns the out-of-the-box preference values.
func DefaultPreferences() Preferences {
	return Preferences{Rate: 1, Volume: 1, Theme: ThemeDark}
}

// ClampRate bounds a playback rate to [0.25, 3]; zero or NaN falls back to 1.
func ClampRate(v float64) float64 {
	if v == 0 || math.IsNaN(v) {
		return 1
	}
	return min(max(v, MinRate), MaxRate)
}

// ClampVolume bounds a volume to [0, 1]; NaN falls back to 1.
func ClampVolume(v float64) float64 {
	if math.IsNaN(v) {
		return 1
	}
	return min(max(v, MinVolume), MaxVolume)
}

// NormalizeTheme maps any unrecognized value to the dark default.
func NormalizeTheme(v string) Theme {
	if Theme(v) == ThemeLight {
		return ThemeLight
	}
	return ThemeDark
}
