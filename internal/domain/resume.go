package domain

// LastListened is the single globally most-recent playback position, across
// all items. It is overwritten on every playback tick and on track switch;
// there is no per-item history.
type LastListened struct {
	Key  string       `json:"key"`
	URL  string       `json:"url"`
	Time float64      `json:"time"` // seconds
	Meta ListenedMeta `json:"meta"`
}

// ListenedMeta is display-only item metadata carried alongside the resume
// position. It is not authoritative; the catalog is.
type ListenedMeta struct {
	Title   string `json:"title,omitempty"`
	Day     *int   `json:"day,omitempty"`
	Date    string `json:"date,omitempty"`
	Speaker string `json:"speaker,omitempty"`
}

// NewLastListened builds a resume record for an item at the given position.
func NewLastListened(item *Item, url string, seconds float64) *LastListened {
	return &LastListened{
		Key:  item.Key(),
		URL:  url,
		Time: seconds,
		Meta: ListenedMeta{
			Title:   item.Title,
			Day:     item.Day,
			Date:    item.Date,
			Speaker: item.Speaker,
		},
	}
}

// ResolveStart decides where playback of an item should begin:
// max(customStart, resumeTime), where customStart comes from the persisted
// custom-starts map (0 if absent or negative) and resumeTime counts only
// when the last-listened record belongs to this item's key.
//
// A custom start (skip-the-intro offset) must never be overridden backward
// by a stale resume pointer belonging to a different item; when the same
// item was paused further in, the resume position wins. This single max
// rule is the entire policy.
func ResolveStart(item *Item, starts map[string]int, last *LastListened) float64 {
	key := item.Key()

	start := 0.0
	if s, ok := starts[key]; ok && s > 0 {
		start = float64(s)
	}

	resume := 0.0
	if last != nil && last.Key == key && last.Time > 0 {
		resume = last.Time
	}

	return max(start, resume)
}
