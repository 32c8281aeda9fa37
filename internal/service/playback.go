package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/sadhanaapp/sadhana-server/internal/domain"
	"github.com/sadhanaapp/sadhana-server/internal/errors"
	"github.com/sadhanaapp/sadhana-server/internal/sse"
	"github.com/sadhanaapp/sadhana-server/internal/store"
)

// State is the playback session state.
type State string

// Session states. Once any item has been selected the session never
// returns to Idle; an inherited quirk kept on purpose.
const (
	StateIdle    State = "idle"
	StateLoading State = "loading"
	StateReady   State = "ready"
	StatePlaying State = "playing"
	StatePaused  State = "paused"
)

// endMargin keeps seek targets short of the exact end so a seek cannot
// re-trigger completion.
const endMargin = 0.5

// PlaybackService is the session state machine binding the selected item
// to the client's media element. The client reports media element events
// (metadata ready, time progress, ended) tagged with the generation it was
// handed at selection time; reports from a superseded generation are
// discarded, which is what prevents a stale load from completing after a
// rapid re-selection.
type PlaybackService struct {
	store       *store.Store
	catalog     *CatalogService
	annotations *AnnotationService
	events      sse.Emitter
	logger      *slog.Logger
	minTick     time.Duration

	mu          sync.Mutex
	state       State
	current     *domain.Item
	generation  uint64
	duration    float64
	position    float64
	activeNote  int
	autoplay    bool
	lastPersist time.Time
}

// NewPlaybackService creates the session in Idle with nothing selected.
// minTick throttles how often progress reports are persisted.
func NewPlaybackService(st *store.Store, cat *CatalogService, ann *AnnotationService, events sse.Emitter, logger *slog.Logger, minTick time.Duration) *PlaybackService {
	return &PlaybackService{
		store:       st,
		catalog:     cat,
		annotations: ann,
		events:      events,
		logger:      logger,
		minTick:     minTick,
		state:       StateIdle,
		activeNote:  -1,
	}
}

// NowPlaying tells clients what to load into their media element.
type NowPlaying struct {
	Key        string `json:"key"`
	URL        string `json:"url"`
	Title      string `json:"title"`
	Day        *int   `json:"day,omitempty"`
	Date       string `json:"date,omitempty"`
	Speaker    string `json:"speaker,omitempty"`
	Autoplay   bool   `json:"autoplay"`
	Generation uint64 `json:"generation"`
}

// Snapshot is the full observable session state.
type Snapshot struct {
	State      State        `json:"state"`
	Item       *domain.Item `json:"item,omitempty"`
	Generation uint64       `json:"generation"`
	Position   float64      `json:"position"`
	Duration   float64      `json:"duration"`
	ActiveNote int          `json:"active_note"`
}

// SeekTarget instructs clients to move the media element position.
type SeekTarget struct {
	Time       float64 `json:"time"`
	Generation uint64  `json:"generation"`
}

// Select makes the item with the given key current. An item without a
// playable URL is rejected without touching the session. Selection starts
// a new generation; pending reports from the previous load become stale.
func (s *PlaybackService) Select(ctx context.Context, key string) (*NowPlaying, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.begin(key, true)
}

func (s *PlaybackService) begin(key string, autoplay bool) (*NowPlaying, error) {
	item, ok := s.catalog.ItemByKey(key)
	if !ok {
		return nil, errors.NotFoundf("unknown item key %q", key)
	}
	url, ok := item.PlayableURL()
	if !ok {
		return nil, errors.ErrNoPlayableSource.WithMessage("no audio available for " + item.Title)
	}

	s.mu.Lock()
	s.generation++
	s.state = StateLoading
	s.current = &item
	s.duration = 0
	s.position = 0
	s.activeNote = -1
	s.autoplay = autoplay
	s.lastPersist = time.Time{}
	np := &NowPlaying{
		Key:        key,
		URL:        url,
		Title:      item.Title,
		Day:        item.Day,
		Date:       item.Date,
		Speaker:    item.Speaker,
		Autoplay:   autoplay,
		Generation: s.generation,
	}
	s.mu.Unlock()

	s.logger.Info("item selected",
		slog.String("key", key),
		slog.Uint64("generation", np.Generation),
		slog.Bool("autoplay", autoplay))
	s.events.Emit(sse.NewEvent(sse.EventNowPlaying, np))
	s.emitState(StateLoading)
	return np, nil
}

// Ready reports that the client's media element has metadata for the given
// generation. It resolves the start position, persists the resume record
// immediately so a crash right after selection still resumes correctly,
// and tells clients where to seek. Stale generations return nil.
func (s *PlaybackService) Ready(ctx context.Context, generation uint64, duration float64) (*SeekTarget, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	starts := s.store.GetCustomStarts(ctx)
	last := s.store.GetLastListened(ctx)

	s.mu.Lock()
	if generation != s.generation || s.current == nil {
		s.mu.Unlock()
		s.logger.Debug("discarding stale metadata report", slog.Uint64("generation", generation))
		return nil, nil
	}

	item := *s.current
	s.duration = duration

	start := domain.ResolveStart(&item, starts, last)
	start = clampSeek(start, duration)
	s.position = start

	if s.autoplay {
		s.state = StatePlaying
	} else {
		s.state = StatePaused
	}
	state := s.state
	target := &SeekTarget{Time: start, Generation: generation}
	s.mu.Unlock()

	url, _ := item.PlayableURL()
	s.store.SetLastListened(ctx, domain.NewLastListened(&item, url, start))

	s.events.Emit(sse.NewEvent(sse.EventSeek, target))
	s.emitState(state)

	// Annotation delivery rides behind the seek; it never gates playback.
	if ann, err := s.annotations.Get(ctx, item.Key()); err == nil {
		s.events.Emit(sse.NewEvent(sse.EventAnnotationsUpdated, ann))
	}
	s.updateHighlight(ctx, item.Key(), start)

	s.logger.Info("playback ready",
		slog.String("key", item.Key()),
		slog.Float64("start", start),
		slog.Float64("duration", duration))
	return target, nil
}

// Tick records a time-progress report from the client. The resume record
// is persisted at most once per minTick; the highlight check runs on every
// report so a note boundary is never missed.
func (s *PlaybackService) Tick(ctx context.Context, generation uint64, position float64) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	if generation != s.generation || s.current == nil {
		s.mu.Unlock()
		return nil
	}
	if s.state != StatePlaying && s.state != StatePaused {
		s.mu.Unlock()
		return nil
	}

	item := *s.current
	s.position = position

	persist := s.minTick <= 0 || s.lastPersist.IsZero() || time.Since(s.lastPersist) >= s.minTick
	if persist {
		s.lastPersist = time.Now()
	}
	s.mu.Unlock()

	if persist {
		url, _ := item.PlayableURL()
		s.store.SetLastListened(ctx, domain.NewLastListened(&item, url, position))
	}

	s.updateHighlight(ctx, item.Key(), position)
	return nil
}

// Pause moves a playing session to Paused.
func (s *PlaybackService) Pause(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	if s.state != StatePlaying {
		s.mu.Unlock()
		return nil
	}
	s.state = StatePaused
	s.mu.Unlock()

	s.emitState(StatePaused)
	return nil
}

// Resume moves a paused or ready session to Playing.
func (s *PlaybackService) Resume(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	if s.state != StatePaused && s.state != StateReady {
		s.mu.Unlock()
		return nil
	}
	s.state = StatePlaying
	s.mu.Unlock()

	s.emitState(StatePlaying)
	return nil
}

// PlayRejected records that the client's host refused to start playback,
// typically an autoplay policy. The session stays paused; this is a
// degradation, not an error.
func (s *PlaybackService) PlayRejected(ctx context.Context, generation uint64) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	if generation != s.generation {
		s.mu.Unlock()
		return nil
	}
	s.state = StatePaused
	key := ""
	if s.current != nil {
		key = s.current.Key()
	}
	s.mu.Unlock()

	s.logger.Warn("playback rejected by host", slog.String("key", key))
	s.emitState(StatePaused)
	return nil
}

// Ended reports playback completion. The finished item's resume position
// is reset to zero, then the session advances to the next playable item in
// the current playback order, wrapping around. With nothing playable in
// the order the session simply goes Ready.
func (s *PlaybackService) Ended(ctx context.Context, generation uint64) (*NowPlaying, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	if generation != s.generation || s.current == nil {
		s.mu.Unlock()
		return nil, nil
	}
	finished := *s.current
	s.state = StateReady
	s.mu.Unlock()

	url, _ := finished.PlayableURL()
	s.store.SetLastListened(ctx, domain.NewLastListened(&finished, url, 0))

	next, ok := s.nextPlayable(finished.Key())
	if !ok {
		s.logger.Info("playback finished, nothing playable to advance to",
			slog.String("key", finished.Key()))
		s.emitState(StateReady)
		return nil, nil
	}

	return s.begin(next.Key(), true)
}

// nextPlayable walks the playback order from just past the given key,
// wrapping, and returns the first item with a playable URL. The finished
// item itself is the last candidate, so a one-item order replays it.
func (s *PlaybackService) nextPlayable(afterKey string) (domain.Item, bool) {
	order := s.catalog.PlaybackOrder()
	if len(order) == 0 {
		return domain.Item{}, false
	}

	from := 0
	for i := range order {
		if order[i].Key() == afterKey {
			from = i + 1
			break
		}
	}

	for off := 0; off < len(order); off++ {
		candidate := order[(from+off)%len(order)]
		if _, ok := candidate.PlayableURL(); ok {
			return candidate, true
		}
	}
	return domain.Item{}, false
}

// Seek moves the playback position, clamped to [0, duration - 0.5].
// Out-of-range targets are clamped, never an error. No-op before metadata.
func (s *PlaybackService) Seek(ctx context.Context, target float64) (*SeekTarget, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	if s.current == nil || s.duration <= 0 {
		s.mu.Unlock()
		return nil, nil
	}
	item := *s.current
	clamped := clampSeek(target, s.duration)
	s.position = clamped
	st := &SeekTarget{Time: clamped, Generation: s.generation}
	s.mu.Unlock()

	url, _ := item.PlayableURL()
	s.store.SetLastListened(ctx, domain.NewLastListened(&item, url, clamped))

	s.events.Emit(sse.NewEvent(sse.EventSeek, st))
	s.updateHighlight(ctx, item.Key(), clamped)
	return st, nil
}

// SeekRelative seeks by a signed offset from the current position.
func (s *PlaybackService) SeekRelative(ctx context.Context, delta float64) (*SeekTarget, error) {
	s.mu.Lock()
	target := s.position + delta
	s.mu.Unlock()
	return s.Seek(ctx, target)
}

// Restore rebuilds the session from the persisted resume record at
// startup: the item is reloaded but left paused, so a server restart never
// starts audio unasked. Returns nil when there is nothing to restore or
// the recorded item has left the catalog.
func (s *PlaybackService) Restore(ctx context.Context) (*NowPlaying, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	last := s.store.GetLastListened(ctx)
	if last == nil {
		return nil, nil
	}
	if _, ok := s.catalog.ItemByKey(last.Key); !ok {
		s.logger.Info("resume record points outside the catalog, skipping restore",
			slog.String("key", last.Key))
		return nil, nil
	}

	np, err := s.begin(last.Key, false)
	if err != nil {
		if errors.Is(err, errors.ErrNoPlayableSource) {
			s.logger.Info("resume item no longer playable, skipping restore",
				slog.String("key", last.Key))
			return nil, nil
		}
		return nil, err
	}
	return np, nil
}

// Current returns the observable session state.
func (s *PlaybackService) Current(ctx context.Context) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		State:      s.state,
		Generation: s.generation,
		Position:   s.position,
		Duration:   s.duration,
		ActiveNote: s.activeNote,
	}
	if s.current != nil {
		item := *s.current
		snap.Item = &item
	}
	return snap
}

// updateHighlight recomputes which note covers position and emits a
// highlight change only when the index differs from the previous one.
func (s *PlaybackService) updateHighlight(ctx context.Context, key string, position float64) {
	idx := s.annotations.ActiveNoteAt(ctx, key, position)

	s.mu.Lock()
	if s.current == nil || s.current.Key() != key || idx == s.activeNote {
		s.mu.Unlock()
		return
	}
	s.activeNote = idx
	gen := s.generation
	s.mu.Unlock()

	s.events.Emit(sse.NewEvent(sse.EventHighlightChange, map[string]any{
		"key":        key,
		"index":      idx,
		"generation": gen,
	}))
}

func (s *PlaybackService) emitState(state State) {
	s.events.Emit(sse.NewEvent(sse.EventSessionState, map[string]string{"state": string(state)}))
}

func clampSeek(target, duration float64) float64 {
	// Recordings no longer than the end margin leave no seekable range.
	if duration <= endMargin {
		return 0
	}
	if target < 0 {
		return 0
	}
	if target > duration-endMargin {
		return duration - endMargin
	}
	return target
}
