package api_test

import (
	"context"
	json "github.com/go-json-experiment/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sadhanaapp/sadhana-server/internal/api"
	"github.com/sadhanaapp/sadhana-server/internal/http/response"
	"github.com/sadhanaapp/sadhana-server/internal/ratelimit"
	"github.com/sadhanaapp/sadhana-server/internal/service"
	"github.com/sadhanaapp/sadhana-server/internal/sse"
	"github.com/sadhanaapp/sadhana-server/internal/store"
	"github.com/sadhanaapp/sadhana-server/internal/validation"
)

const testCatalog = `[
	{"title": "Morning Class", "day": 1, "date": "01-03-2024", "filename": "d1.mp3",
	 "cloudinary_matches": [{"cloudinary_url": "https://cdn/d1.mp3"}]},
	{"title": "Evening Class", "day": 2, "date": "02-03-2024", "filename": "d2.mp3", "start_time": 30,
	 "cloudinary_matches": [{"cloudinary_url": "https://cdn/d2.mp3"}]},
	{"title": "Silent Class", "day": 3, "date": "03-03-2024", "filename": "d3.mp3"}
]`

type testEnv struct {
	server  *api.Server
	catalog *service.CatalogService
}

func newTestServer(t *testing.T, writeLimiter *ratelimit.KeyedRateLimiter) *testEnv {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	st, err := store.New(filepath.Join(t.TempDir(), "state.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	sourcePath := filepath.Join(t.TempDir(), "catalog.json")
	require.NoError(t, os.WriteFile(sourcePath, []byte(testCatalog), 0o644))

	manager := sse.NewManager(logger)
	handler := sse.NewHandler(manager, logger)

	cat := service.NewCatalogService(st, manager, logger, sourcePath)
	ann := service.NewAnnotationService(st, cat, manager, validation.New(), logger)
	play := service.NewPlaybackService(st, cat, ann, manager, logger, 0)
	prefs := service.NewPreferenceService(st, manager, logger)

	require.NoError(t, cat.Load(context.Background()))

	if writeLimiter == nil {
		writeLimiter = ratelimit.New(100, 100)
	}
	t.Cleanup(writeLimiter.Stop)

	srv := api.NewServer(st, cat, ann, play, prefs, manager, handler, writeLimiter, []string{"*"}, logger)
	return &testEnv{server: srv, catalog: cat}
}

func (e *testEnv) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	e.server.ServeHTTP(rec, req)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) response.Envelope {
	t.Helper()
	var env response.Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func itemKey(t *testing.T, e *testEnv, title string) string {
	t.Helper()
	for _, it := range e.catalog.PlaybackOrder() {
		if it.Title == title {
			return it.Key()
		}
	}
	t.Fatalf("no item titled %q", title)
	return ""
}

func TestHealthCheck(t *testing.T) {
	e := newTestServer(t, nil)

	rec := e.do(t, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"healthy"`)
}

func TestQueryCatalog(t *testing.T) {
	e := newTestServer(t, nil)

	rec := e.do(t, http.MethodGet, "/api/v1/catalog/?q=evening", "")
	require.Equal(t, http.StatusOK, rec.Code)

	env := decodeEnvelope(t, rec)
	require.True(t, env.Success)
	items, ok := env.Data.([]any)
	require.True(t, ok)
	require.Len(t, items, 1)

	rec = e.do(t, http.MethodGet, "/api/v1/catalog/?favorites=maybe", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestToggleFavorite(t *testing.T) {
	e := newTestServer(t, nil)
	key := itemKey(t, e, "Morning Class")

	rec := e.do(t, http.MethodPost, "/api/v1/favorites/toggle", `{"key":`+mustJSON(t, key)+`}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"favorited":true`)

	rec = e.do(t, http.MethodPost, "/api/v1/favorites/toggle", `{"key":"no|such|key"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = e.do(t, http.MethodPost, "/api/v1/favorites/toggle", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStartsRoundTrip(t *testing.T) {
	e := newTestServer(t, nil)
	key := itemKey(t, e, "Morning Class")

	rec := e.do(t, http.MethodPut, "/api/v1/starts/", `{"key":`+mustJSON(t, key)+`,"seconds":45}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = e.do(t, http.MethodGet, "/api/v1/starts/", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "45")

	rec = e.do(t, http.MethodDelete, "/api/v1/starts/?key="+queryEscape(key), "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestAddMarkerAndNote(t *testing.T) {
	e := newTestServer(t, nil)
	key := itemKey(t, e, "Morning Class")

	rec := e.do(t, http.MethodPost, "/api/v1/annotations/markers",
		`{"key":`+mustJSON(t, key)+`,"time":12.7,"label":"opening"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"time":12`)

	// Bad note range surfaces field-level validation details.
	rec = e.do(t, http.MethodPost, "/api/v1/annotations/notes",
		`{"key":`+mustJSON(t, key)+`,"start":20,"end":10,"text":"x"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `"end"`)

	rec = e.do(t, http.MethodPost, "/api/v1/annotations/notes",
		`{"key":`+mustJSON(t, key)+`,"start":10,"end":20,"text":"breath emphasis"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"breath emphasis"`)

	rec = e.do(t, http.MethodGet, "/api/v1/annotations/?key="+queryEscape(key), "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"markers"`)
	assert.Contains(t, rec.Body.String(), `"notes"`)

	rec = e.do(t, http.MethodDelete, "/api/v1/annotations/markers?key="+queryEscape(key)+"&index=0", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSessionFlow(t *testing.T) {
	e := newTestServer(t, nil)

	// Selecting the silent item must not create a session.
	rec := e.do(t, http.MethodPost, "/api/v1/session/select",
		`{"key":`+mustJSON(t, itemKey(t, e, "Silent Class"))+`}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = e.do(t, http.MethodGet, "/api/v1/session/", "")
	assert.Contains(t, rec.Body.String(), `"idle"`)

	rec = e.do(t, http.MethodPost, "/api/v1/session/select",
		`{"key":`+mustJSON(t, itemKey(t, e, "Evening Class"))+`}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "https://cdn/d2.mp3")

	rec = e.do(t, http.MethodPost, "/api/v1/session/ready", `{"generation":1,"duration":3600}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"time":30`)

	rec = e.do(t, http.MethodPost, "/api/v1/session/tick", `{"generation":1,"time":95.5}`)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = e.do(t, http.MethodGet, "/api/v1/session/", "")
	assert.Contains(t, rec.Body.String(), `"playing"`)
	assert.Contains(t, rec.Body.String(), "95.5")

	rec = e.do(t, http.MethodPost, "/api/v1/session/pause", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = e.do(t, http.MethodPost, "/api/v1/session/seek", `{"time":50,"delta":5}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = e.do(t, http.MethodPost, "/api/v1/session/seek", `{"delta":-10}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"time":85.5`)
}

func TestPreferences(t *testing.T) {
	e := newTestServer(t, nil)

	rec := e.do(t, http.MethodPatch, "/api/v1/preferences/", `{"rate":2.5,"theme":"light"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"rate":2.5`)
	assert.Contains(t, rec.Body.String(), `"light"`)

	rec = e.do(t, http.MethodGet, "/api/v1/preferences/", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"rate":2.5`)
}

func TestAnnotationWritesAreRateLimited(t *testing.T) {
	e := newTestServer(t, ratelimit.New(0.1, 1))
	key := itemKey(t, e, "Morning Class")
	body := `{"key":` + mustJSON(t, key) + `,"time":5}`

	rec := e.do(t, http.MethodPost, "/api/v1/annotations/markers", body)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = e.do(t, http.MethodPost, "/api/v1/annotations/markers", body)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)

	// Reads stay open.
	rec = e.do(t, http.MethodGet, "/api/v1/annotations/?key="+queryEscape(key), "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func mustJSON(t *testing.T, s string) string {
	t.Helper()
	b, err := json.Marshal(s)
	require.NoError(t, err)
	return string(b)
}

func queryEscape(s string) string {
	r := strings.NewReplacer("|", "%7C", " ", "%20")
	return r.Replace(s)
}
