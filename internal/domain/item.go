package domain

import (
	"strconv"
	"strings"
	"time"
)

// Item is a single catalog entry. The catalog document is read-only to the
// rest of the system; all mutable listening state is keyed by Item.Key().
type Item struct {
	Title     string       `json:"title"`
	Speaker   string       `json:"speaker,omitempty"`
	ClassType string       `json:"class_type,omitempty"`
	Day       *int         `json:"day,omitempty"`
	Date      string       `json:"date,omitempty"` // dd-mm-yyyy
	Filename  string       `json:"filename,omitempty"`
	StartTime *float64     `json:"start_time,omitempty"` // catalog-provided default start, seconds
	Matches   []MediaMatch `json:"cloudinary_matches,omitempty"`
}

// MediaMatch is one resolved media upload for an item.
type MediaMatch struct {
	CloudinaryURL string `json:"cloudinary_url"`
}

// Key derives the stable identity for an item:
// (filename or title) + "|" + date + "|" + day, empty parts for absent fields.
//
// Known collision risk inherited from the catalog shape: items without a
// filename fall back to the title, so two distinct recordings sharing
// title/date/day produce the same key. Do not "fix" this silently - the
// persisted stores for such items are shared.
func (it *Item) Key() string {
	name := it.Filename
	if name == "" {
		name = it.Title
	}
	day := ""
	if it.Day != nil {
		day = strconv.Itoa(*it.Day)
	}
	return name + "|" + it.Date + "|" + day
}

// PlayableURL returns the media URL for the item, if any.
// Only the first match counts; later matches are alternates the player ignores.
func (it *Item) PlayableURL() (string, bool) {
	if len(it.Matches) == 0 || it.Matches[0].CloudinaryURL == "" {
		return "", false
	}
	return it.Matches[0].CloudinaryURL, true
}

// DayOrZero returns the item day, treating absent as 0 for sorting.
func (it *Item) DayOrZero() int {
	if it.Day == nil {
		return 0
	}
	return *it.Day
}

// SearchText returns the space-joined haystack used for substring filtering:
// title, speaker, class type, day, date, with absent fields omitted.
func (it *Item) SearchText() string {
	fields := make([]string, 0, 5)
	if it.Title != "" {
		fields = append(fields, it.Title)
	}
	if it.Speaker != "" {
		fields = append(fields, it.Speaker)
	}
	if it.ClassType != "" {
		fields = append(fields, it.ClassType)
	}
	if it.Day != nil {
		fields = append(fields, strconv.Itoa(*it.Day))
	}
	if it.Date != "" {
		fields = append(fields, it.Date)
	}
	return strings.Join(fields, " ")
}

// DateMillis parses the item date (dd-mm-yyyy) to milliseconds since epoch.
// Unparsable dates return 0, so they sort first in ascending order.
func (it *Item) DateMillis() int64 {
	return ParseDateMillis(it.Date)
}

// ParseDateMillis parses dd-mm-yyyy to epoch milliseconds; 0 on failure.
// A missing day or month falls back to 1, matching the lenient parsing the
// catalog dates have always received.
func ParseDateMillis(date string) int64 {
	if date == "" {
		return 0
	}
	parts := strings.Split(date, "-")
	if len(parts) != 3 {
		return 0
	}

	year, err := strconv.Atoi(parts[2])
	if err != nil {
		return 0
	}
	month, _ := strconv.Atoi(parts[1])
	if month == 0 {
		month = 1
	}
	day, _ := strconv.Atoi(parts[0])
	if day == 0 {
		day = 1
	}

	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC).UnixMilli()
}
