package service_test

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sadhanaapp/sadhana-server/internal/service"
	"github.com/sadhanaapp/sadhana-server/internal/sse"
	"github.com/sadhanaapp/sadhana-server/internal/store"
	"github.com/sadhanaapp/sadhana-server/internal/validation"
)

// captureEmitter records emitted events for assertions.
type captureEmitter struct {
	mu     sync.Mutex
	events []sse.Event
}

func (c *captureEmitter) Emit(ev sse.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, ev)
}

func (c *captureEmitter) ofType(t sse.EventType) []sse.Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []sse.Event
	for _, ev := range c.events {
		if ev.Type == t {
			out = append(out, ev)
		}
	}
	return out
}

func (c *captureEmitter) reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = nil
}

// Three recordings: day 1 and day 2 playable, day 2 with a catalog-declared
// start time, day 3 without any media match.
const fixtureCatalog = `[
	{"title": "Morning Class", "day": 1, "date": "01-03-2024", "filename": "d1.mp3",
	 "cloudinary_matches": [{"cloudinary_url": "https://cdn/d1.mp3"}]},
	{"title": "Evening Class", "day": 2, "date": "02-03-2024", "filename": "d2.mp3", "start_time": 30,
	 "cloudinary_matches": [{"cloudinary_url": "https://cdn/d2.mp3"}]},
	{"title": "Silent Class", "day": 3, "date": "03-03-2024", "filename": "d3.mp3"}
]`

type fixture struct {
	store       *store.Store
	emitter     *captureEmitter
	catalog     *service.CatalogService
	annotations *service.AnnotationService
	playback    *service.PlaybackService
	prefs       *service.PreferenceService
	sourcePath  string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	st, err := store.New(filepath.Join(t.TempDir(), "state.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	sourcePath := filepath.Join(t.TempDir(), "catalog.json")
	require.NoError(t, os.WriteFile(sourcePath, []byte(fixtureCatalog), 0o644))

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	emitter := &captureEmitter{}

	cat := service.NewCatalogService(st, emitter, logger, sourcePath)
	ann := service.NewAnnotationService(st, cat, emitter, validation.New(), logger)
	play := service.NewPlaybackService(st, cat, ann, emitter, logger, 0)
	prefs := service.NewPreferenceService(st, emitter, logger)

	require.NoError(t, cat.Load(context.Background()))
	emitter.reset()

	return &fixture{
		store:       st,
		emitter:     emitter,
		catalog:     cat,
		annotations: ann,
		playback:    play,
		prefs:       prefs,
		sourcePath:  sourcePath,
	}
}

// keyFor returns the identity key of the fixture item with the given title.
func (f *fixture) keyFor(t *testing.T, title string) string {
	t.Helper()
	for _, it := range f.catalog.PlaybackOrder() {
		if it.Title == title {
			return it.Key()
		}
	}
	t.Fatalf("no fixture item titled %q", title)
	return ""
}
