package domain

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestNoteTitle(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		ordinal int
		want    string
	}{
		{"first line", "key point about dharma\nmore detail here", 1, "key point about dharma"},
		{"single line", "short", 3, "short"},
		{"empty text", "", 2, "Note 2"},
		{"newline only", "\nbody", 5, "Note 5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NoteTitle(tt.text, tt.ordinal))
		})
	}
}

func TestNoteTitle_Truncates(t *testing.T) {
	long := strings.Repeat("a", 100)
	got := NoteTitle(long+"\nsecond line", 1)
	assert.Len(t, got, 60)
	assert.Equal(t, strings.Repeat("a", 60), got)
}

func TestNoteTitle_TruncatesOnRuneBoundary(t *testing.T) {
	got := NoteTitle(strings.Repeat("ॐ", 100), 1)
	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, strings.Repeat("ॐ", 60), got)
}

func TestSortMarkers_StableWithDuplicates(t *testing.T) {
	markers := []Marker{
		{Time: 30, Label: "c"},
		{Time: 10, Label: "a"},
		{Time: 30, Label: "d"},
		{Time: 20, Label: "b"},
	}
	SortMarkers(markers)

	assert.Equal(t, []Marker{
		{Time: 10, Label: "a"},
		{Time: 20, Label: "b"},
		{Time: 30, Label: "c"},
		{Time: 30, Label: "d"},
	}, markers)
}

func TestSortNotes(t *testing.T) {
	notes := []Note{
		{Start: 15, End: 25, Title: "later"},
		{Start: 10, End: 20, Title: "earlier"},
	}
	SortNotes(notes)

	assert.Equal(t, "earlier", notes[0].Title)
	assert.Equal(t, "later", notes[1].Title)
}

func TestActiveNoteIndex(t *testing.T) {
	notes := []Note{
		{Start: 10, End: 20},
		{Start: 15, End: 25},
	}

	// Earliest-starting qualifying note wins on overlap.
	assert.Equal(t, 0, ActiveNoteIndex(notes, 17))
	// Start is inclusive, end exclusive.
	assert.Equal(t, 0, ActiveNoteIndex(notes, 10))
	assert.Equal(t, 1, ActiveNoteIndex(notes, 20))
	assert.Equal(t, 1, ActiveNoteIndex(notes, 24.9))
	// Outside all ranges.
	assert.Equal(t, -1, ActiveNoteIndex(notes, 26))
	assert.Equal(t, -1, ActiveNoteIndex(notes, 5))
	assert.Equal(t, -1, ActiveNoteIndex(nil, 5))
}
