// Package sse implements Server-Sent Events for pushing playback and
// catalog state to connected player clients.
package sse

import "time"

// The browser player is a thin renderer: it reports media element events
// over HTTP and receives every state change it must render through this
// stream. All connected clients see the same session.

// EventType represents the type of SSE event.
type EventType string

const (
	// EventNowPlaying announces the selected item, its media URL, and the
	// position playback should start from.
	EventNowPlaying EventType = "session.now_playing"
	// EventSessionState announces a playback state transition.
	EventSessionState EventType = "session.state"
	// EventSeek instructs the player to move the media element position.
	EventSeek EventType = "session.seek"
	// EventHighlightChange announces that a different note (or none) now
	// covers the playback position.
	EventHighlightChange EventType = "session.highlight_changed"

	// EventAnnotationsUpdated announces a change to an item's markers or notes.
	EventAnnotationsUpdated EventType = "annotations.updated"
	// EventFavoritesUpdated announces a favorites toggle.
	EventFavoritesUpdated EventType = "favorites.updated"
	// EventPreferencesUpdated announces a rate, volume, or theme change.
	EventPreferencesUpdated EventType = "preferences.updated"

	// EventCatalogReloaded announces that the catalog source was re-read.
	EventCatalogReloaded EventType = "catalog.reloaded"
	// EventCatalogError announces a failed catalog reload.
	EventCatalogError EventType = "catalog.error"

	// EventHeartbeat represents a connection keepalive event.
	EventHeartbeat EventType = "heartbeat"
)

// Event represents an SSE event to be sent to clients.
// The Data field contains the event payload as a JSON object for direct deserialization.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
	Type      EventType `json:"type"`
}

// NewEvent creates an event stamped with the current time.
func NewEvent(eventType EventType, data any) Event {
	return Event{
		Type:      eventType,
		Data:      data,
		Timestamp: time.Now(),
	}
}

// NewHeartbeatEvent creates a keepalive event.
func NewHeartbeatEvent() Event {
	return NewEvent(EventHeartbeat, map[string]string{"status": "alive"})
}

// Emitter is the sink services publish events to. The Manager implements
// it; tests use NoopEmitter.
type Emitter interface {
	Emit(event Event)
}

// NoopEmitter discards all events.
type NoopEmitter struct{}

// Emit implements Emitter.
func (NoopEmitter) Emit(Event) {}
