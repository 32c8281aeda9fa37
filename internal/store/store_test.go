package store_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/sadhanaapp/sadhana-server/internal/domain"
	"github.com/sadhanaapp/sadhana-server/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.New(filepath.Join(t.TempDir(), "test.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestFavorites_RoundTrip(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	assert.Empty(t, s.GetFavorites(ctx))

	assert.True(t, s.ToggleFavorite(ctx, "day1.mp3|01-01-2024|1"))
	assert.True(t, s.ToggleFavorite(ctx, "day2.mp3|02-01-2024|2"))

	favs := s.GetFavorites(ctx)
	assert.Len(t, favs, 2)
	assert.Contains(t, favs, "day1.mp3|01-01-2024|1")

	// Toggle off removes the key.
	assert.False(t, s.ToggleFavorite(ctx, "day1.mp3|01-01-2024|1"))
	favs = s.GetFavorites(ctx)
	assert.Len(t, favs, 1)
	assert.NotContains(t, favs, "day1.mp3|01-01-2024|1")
}

// External tooling reads the favorites namespace directly, so its stored
// form is a contract: a sorted JSON array of item keys.
func TestFavorites_StoredAsSortedArray(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	s.ToggleFavorite(ctx, "b-key")
	s.ToggleFavorite(ctx, "a-key")

	raw, err := s.GetRaw(store.TestFavoritesKey)
	require.NoError(t, err)
	assert.Equal(t, `["a-key","b-key"]`, string(raw))
}

func TestCustomStarts_RoundTrip(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	s.SetCustomStart(ctx, "key-a", 30)
	s.SetCustomStart(ctx, "key-b", -5) // stored as 0

	starts := s.GetCustomStarts(ctx)
	assert.Equal(t, 30, starts["key-a"])
	assert.Equal(t, 0, starts["key-b"])

	s.ClearCustomStart(ctx, "key-a")
	starts = s.GetCustomStarts(ctx)
	assert.NotContains(t, starts, "key-a")
	assert.Contains(t, starts, "key-b")
}

func TestSeedCustomStarts_NeverClobbersUserValues(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	s.SetCustomStart(ctx, "key-a", 120) // user override

	added := s.SeedCustomStarts(ctx, map[string]int{
		"key-a": 30, // catalog default, must not win
		"key-b": 45,
		"key-c": -1, // invalid, skipped
	})

	assert.Equal(t, 1, added)
	starts := s.GetCustomStarts(ctx)
	assert.Equal(t, 120, starts["key-a"])
	assert.Equal(t, 45, starts["key-b"])
	assert.NotContains(t, starts, "key-c")
}

func TestSeedCustomStarts_IdempotentAcrossReloads(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	seeds := map[string]int{"key-a": 30}
	assert.Equal(t, 1, s.SeedCustomStarts(ctx, seeds))
	assert.Equal(t, 0, s.SeedCustomStarts(ctx, seeds))
}

func TestMarkers_RoundTripSorted(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	assert.Empty(t, s.GetMarkers(ctx, "item-1"))

	s.SetMarkers(ctx, "item-1", []domain.Marker{
		{Time: 90, Label: "closing"},
		{Time: 10, Label: "opening"},
	})

	markers := s.GetMarkers(ctx, "item-1")
	require.Len(t, markers, 2)
	assert.Equal(t, 10, markers[0].Time)
	assert.Equal(t, 90, markers[1].Time)

	// Other items are untouched.
	assert.Empty(t, s.GetMarkers(ctx, "item-2"))
}

func TestSetMarkers_EmptyListRemovesKey(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	s.SetMarkers(ctx, "item-1", []domain.Marker{{Time: 5}})
	s.SetMarkers(ctx, "item-1", nil)
	assert.Empty(t, s.GetMarkers(ctx, "item-1"))
}

func TestNotes_RoundTripSorted(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	s.SetNotes(ctx, "item-1", []domain.Note{
		{Start: 40, End: 50, Text: "later", Title: "later"},
		{Start: 10, End: 20, Text: "earlier", Title: "earlier"},
	})

	notes := s.GetNotes(ctx, "item-1")
	require.Len(t, notes, 2)
	assert.Equal(t, "earlier", notes[0].Title)
	assert.Equal(t, "later", notes[1].Title)
}

func TestLastListened_RoundTrip(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	assert.Nil(t, s.GetLastListened(ctx))

	item := &domain.Item{Title: "Class", Date: "01-01-2024"}
	s.SetLastListened(ctx, domain.NewLastListened(item, "https://cdn/a.mp3", 75))

	rec := s.GetLastListened(ctx)
	require.NotNil(t, rec)
	assert.Equal(t, item.Key(), rec.Key)
	assert.Equal(t, 75.0, rec.Time)
	assert.Equal(t, "Class", rec.Meta.Title)
}

func TestPreferences_DefaultsAndRoundTrip(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	prefs := s.GetPreferences(ctx)
	assert.Equal(t, domain.DefaultPreferences(), prefs)

	assert.Equal(t, 1.5, s.SetRate(ctx, 1.5))
	assert.Equal(t, 3.0, s.SetRate(ctx, 10)) // clamped
	assert.Equal(t, 0.4, s.SetVolume(ctx, 0.4))
	assert.Equal(t, domain.ThemeLight, s.SetTheme(ctx, "light"))

	prefs = s.GetPreferences(ctx)
	assert.Equal(t, 3.0, prefs.Rate)
	assert.Equal(t, 0.4, prefs.Volume)
	assert.Equal(t, domain.ThemeLight, prefs.Theme)
}

// Corruption in one namespace must not affect any other.
func TestCorruptValue_IsolatedPerNamespace(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	s.ToggleFavorite(ctx, "item-1")
	s.SetCustomStart(ctx, "item-1", 30)
	s.SetMarkers(ctx, "item-1", []domain.Marker{{Time: 10, Label: "ok"}})

	// Smash the favorites and notes namespaces.
	require.NoError(t, s.SetRaw(store.TestFavoritesKey, []byte("{not json")))
	require.NoError(t, s.SetRaw(store.TestNotesPrefix+"item-1", []byte("\xff\xfe")))

	// Corrupt namespaces fall back to their defaults.
	assert.Empty(t, s.GetFavorites(ctx))
	assert.Empty(t, s.GetNotes(ctx, "item-1"))

	// Healthy namespaces are unaffected.
	assert.Equal(t, 30, s.GetCustomStarts(ctx)["item-1"])
	require.Len(t, s.GetMarkers(ctx, "item-1"), 1)
}

func TestCorruptPreference_FallsBackToThatDefaultOnly(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	s.SetRate(ctx, 2)
	s.SetVolume(ctx, 0.5)
	require.NoError(t, s.SetRaw(store.TestPrefRateKey, []byte("wat")))

	prefs := s.GetPreferences(ctx)
	assert.Equal(t, 1.0, prefs.Rate) // corrupt → default
	assert.Equal(t, 0.5, prefs.Volume)
}

func TestPersistsAcrossReopen(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "test.db")
	ctx := context.Background()

	s, err := store.New(dir, nil)
	require.NoError(t, err)
	s.SetCustomStart(ctx, "item-1", 42)
	require.NoError(t, s.Close())

	s, err = store.New(dir, nil)
	require.NoError(t, err)
	defer s.Close()
	assert.Equal(t, 42, s.GetCustomStarts(ctx)["item-1"])
}

func TestCanceledContext_ReadsReturnDefaults(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	s.SetCustomStart(ctx, "item-1", 42)

	canceled, cancel := context.WithCancel(ctx)
	cancel()

	assert.Empty(t, s.GetCustomStarts(canceled))
	assert.Nil(t, s.GetLastListened(canceled))
}
