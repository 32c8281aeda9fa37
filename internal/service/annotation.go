package service

import (
	"context"
	"log/slog"
	"math"

	"github.com/sadhanaapp/sadhana-server/internal/domain"
	"github.com/sadhanaapp/sadhana-server/internal/errors"
	"github.com/sadhanaapp/sadhana-server/internal/sse"
	"github.com/sadhanaapp/sadhana-server/internal/store"
	"github.com/sadhanaapp/sadhana-server/internal/validation"
)

// AnnotationService owns the per-item marker and note collections.
type AnnotationService struct {
	store    *store.Store
	catalog  *CatalogService
	events   sse.Emitter
	validate *validation.Validator
	logger   *slog.Logger
}

// NewAnnotationService creates a new annotation service.
func NewAnnotationService(st *store.Store, cat *CatalogService, events sse.Emitter, validate *validation.Validator, logger *slog.Logger) *AnnotationService {
	return &AnnotationService{
		store:    st,
		catalog:  cat,
		events:   events,
		validate: validate,
		logger:   logger,
	}
}

// Annotations bundles both collections for one item.
type Annotations struct {
	Key     string          `json:"key"`
	Markers []domain.Marker `json:"markers"`
	Notes   []domain.Note   `json:"notes"`
}

// Get returns both annotation collections for an item, time-ordered.
func (s *AnnotationService) Get(ctx context.Context, key string) (*Annotations, error) {
	if _, ok := s.catalog.ItemByKey(key); !ok {
		return nil, errors.NotFoundf("unknown item key %q", key)
	}
	return &Annotations{
		Key:     key,
		Markers: s.store.GetMarkers(ctx, key),
		Notes:   s.store.GetNotes(ctx, key),
	}, nil
}

// AddMarkerRequest contains the data for creating a marker.
type AddMarkerRequest struct {
	Key   string  `json:"key" validate:"required"`
	Time  float64 `json:"time"`
	Label string  `json:"label" validate:"max=200"`
}

// AddMarker inserts a marker floored to whole seconds and clamped to be
// non-negative, and returns the re-sorted list. The engine is
// duration-agnostic; no upper bound is enforced.
func (s *AnnotationService) AddMarker(ctx context.Context, req AddMarkerRequest) ([]domain.Marker, error) {
	if err := s.validate.Validate(req); err != nil {
		return nil, err
	}
	if _, ok := s.catalog.ItemByKey(req.Key); !ok {
		return nil, errors.NotFoundf("unknown item key %q", req.Key)
	}

	seconds := int(math.Floor(req.Time))
	if seconds < 0 {
		seconds = 0
	}

	markers := s.store.GetMarkers(ctx, req.Key)
	markers = append(markers, domain.Marker{Time: seconds, Label: req.Label})
	domain.SortMarkers(markers)
	s.store.SetMarkers(ctx, req.Key, markers)

	s.logger.Info("marker added",
		slog.String("key", req.Key),
		slog.Int("time", seconds))
	s.emitUpdated(ctx, req.Key)
	return markers, nil
}

// RemoveMarker removes the marker at the given position in the sorted
// list. Out-of-range indexes are a silent no-op.
func (s *AnnotationService) RemoveMarker(ctx context.Context, key string, index int) ([]domain.Marker, error) {
	if _, ok := s.catalog.ItemByKey(key); !ok {
		return nil, errors.NotFoundf("unknown item key %q", key)
	}

	markers := s.store.GetMarkers(ctx, key)
	if index < 0 || index >= len(markers) {
		return markers, nil
	}

	markers = append(markers[:index], markers[index+1:]...)
	s.store.SetMarkers(ctx, key, markers)
	s.emitUpdated(ctx, key)
	return markers, nil
}

// AddNoteRequest contains the data for creating a note.
type AddNoteRequest struct {
	Key   string  `json:"key" validate:"required"`
	Start float64 `json:"start" validate:"gte=0"`
	End   float64 `json:"end" validate:"gtfield=Start"`
	Text  string  `json:"text"`
}

// AddNote inserts a time-ranged note and returns the re-sorted list. The
// title is derived once at creation and never recomputed.
func (s *AnnotationService) AddNote(ctx context.Context, req AddNoteRequest) ([]domain.Note, error) {
	if err := s.validate.Validate(req); err != nil {
		return nil, err
	}
	if _, ok := s.catalog.ItemByKey(req.Key); !ok {
		return nil, errors.NotFoundf("unknown item key %q", req.Key)
	}

	notes := s.store.GetNotes(ctx, req.Key)
	note := domain.Note{
		Start: req.Start,
		End:   req.End,
		Text:  req.Text,
		Title: domain.NoteTitle(req.Text, len(notes)+1),
	}
	notes = append(notes, note)
	domain.SortNotes(notes)
	s.store.SetNotes(ctx, req.Key, notes)

	s.logger.Info("note added",
		slog.String("key", req.Key),
		slog.String("title", note.Title))
	s.emitUpdated(ctx, req.Key)
	return notes, nil
}

// RemoveNote removes the note at the given position in the sorted list.
// Out-of-range indexes are a silent no-op.
func (s *AnnotationService) RemoveNote(ctx context.Context, key string, index int) ([]domain.Note, error) {
	if _, ok := s.catalog.ItemByKey(key); !ok {
		return nil, errors.NotFoundf("unknown item key %q", key)
	}

	notes := s.store.GetNotes(ctx, key)
	if index < 0 || index >= len(notes) {
		return notes, nil
	}

	notes = append(notes[:index], notes[index+1:]...)
	s.store.SetNotes(ctx, key, notes)
	s.emitUpdated(ctx, key)
	return notes, nil
}

// ActiveNoteAt returns the index of the note covering time t for an item,
// or -1 when none does.
func (s *AnnotationService) ActiveNoteAt(ctx context.Context, key string, t float64) int {
	return domain.ActiveNoteIndex(s.store.GetNotes(ctx, key), t)
}

func (s *AnnotationService) emitUpdated(ctx context.Context, key string) {
	s.events.Emit(sse.NewEvent(sse.EventAnnotationsUpdated, Annotations{
		Key:     key,
		Markers: s.store.GetMarkers(ctx, key),
		Notes:   s.store.GetNotes(ctx, key),
	}))
}
