package domain

import (
	"slices"
	"strconv"
	"strings"
)

// Marker is a labeled point-in-time bookmark on a recording.
// Marker lists are kept sorted ascending by time; duplicate times are allowed.
type Marker struct {
	Time  int    `json:"time"` // whole seconds from the start
	Label string `json:"label"`
}

// Note is a labeled time range ("clip") with free-text content.
// Note lists are kept sorted ascending by start.
type Note struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
	Title string  `json:"title"`
}

// noteTitleMax is the truncation length for titles derived from note text.
const noteTitleMax = 60

// NoteTitle derives a note title at creation time: the first line of the
// text truncated to 60 characters, or "Note N" for blank text where N is
// the 1-based creation order. Titles are never recomputed afterwards.
func NoteTitle(text string, ordinal int) string {
	firstLine, _, _ := strings.Cut(text, "\n")
	firstLine = strings.TrimSpace(firstLine)
	if firstLine != "" {
		// Truncate on rune boundaries; byte slicing could split a
		// multibyte character.
		if runes := []rune(firstLine); len(runes) > noteTitleMax {
			return string(runes[:noteTitleMax])
		}
		return firstLine
	}
	return "Note " + strconv.Itoa(ordinal)
}

// SortMarkers orders markers ascending by time, keeping insertion order
// among duplicates.
func SortMarkers(markers []Marker) {
	slices.SortStableFunc(markers, func(a, b Marker) int {
		return a.Time - b.Time
	})
}

// SortNotes orders notes ascending by start, keeping insertion order among
// equal starts.
func SortNotes(notes []Note) {
	slices.SortStableFunc(notes, func(a, b Note) int {
		switch {
		case a.Start < b.Start:
			return -1
		case a.Start > b.Start:
			return 1
		default:
			return 0
		}
	})
}

// ActiveNoteIndex returns the index of the first note whose range contains
// t (start <= t < end), or -1 if none does. Lists are start-ascending, so
// the earliest-starting qualifying note wins on overlap.
func ActiveNoteIndex(notes []Note, t float64) int {
	for i, n := range notes {
		if n.Start <= t && t < n.End {
			return i
		}
	}
	return -1
}
