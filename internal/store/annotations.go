package store

import (
	"context"

	"github.com/sadhanaapp/sadhana-server/internal/domain"
)

// Markers and notes are stored one Badger key per item rather than one
// monolithic blob, so a corrupt entry loses annotations for a single
// recording only.

// GetMarkers returns the marker list for an item, sorted ascending by time.
// Absent or corrupt storage yields an empty list.
func (s *Store) GetMarkers(ctx context.Context, itemKey string) []domain.Marker {
	if ctx.Err() != nil {
		return nil
	}
	var markers []domain.Marker
	s.getJSON(markersPrefix+itemKey, &markers)
	domain.SortMarkers(markers)
	return markers
}

// SetMarkers overwrites the marker list for an item.
func (s *Store) SetMarkers(ctx context.Context, itemKey string, markers []domain.Marker) {
	if ctx.Err() != nil {
		return
	}
	if len(markers) == 0 {
		s.deleteKey(markersPrefix + itemKey)
		return
	}
	s.setJSON(markersPrefix+itemKey, markers)
}

// GetNotes returns the note list for an item, sorted ascending by start.
// Absent or corrupt storage yields an empty list.
func (s *Store) GetNotes(ctx context.Context, itemKey string) []domain.Note {
	if ctx.Err() != nil {
		return nil
	}
	var notes []domain.Note
	s.getJSON(notesPrefix+itemKey, &notes)
	domain.SortNotes(notes)
	return notes
}

// SetNotes overwrites the note list for an item.
func (s *Store) SetNotes(ctx context.Context, itemKey string, notes []domain.Note) {
	if ctx.Err() != nil {
		return
	}
	if len(notes) == 0 {
		s.deleteKey(notesPrefix + itemKey)
		return
	}
	s.setJSON(notesPrefix+itemKey, notes)
}
