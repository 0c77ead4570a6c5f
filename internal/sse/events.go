// Package sse implements Server-Sent Events so connected clients learn
// about shelf changes without polling. Communication is strictly server to
// client; everything else goes through the regular request/response API.
package sse

import (
	"time"

	"github.com/cozyshelfapp/shelf-server/internal/store"
)

// EventType represents the type of SSE event.
type EventType string

const (
	// EventCollectionChanged signals that one of the user's collections
	// changed. Clients re-fetch the collection snapshot; the event carries
	// no delta.
	EventCollectionChanged EventType = "collection.changed"

	// EventDailySticker signals that a daily sticker was granted.
	EventDailySticker EventType = "sticker.daily"

	// EventHeartbeat is a connection keepalive event.
	EventHeartbeat EventType = "heartbeat"
)

// Event represents an SSE event to be sent to clients. The Data field
// carries the payload as a JSON object for direct deserialization.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
	Type      EventType `json:"type"`
	// UserID scopes delivery to one user's clients. Empty broadcasts to all.
	UserID string `json:"-"`
}

// NewHeartbeatEvent creates a keepalive event.
func NewHeartbeatEvent() Event {
	return Event{
		Type:      EventHeartbeat,
		Timestamp: time.Now(),
	}
}

// NewCollectionChangedEvent converts a store change event into its SSE form.
func NewCollectionChangedEvent(ce store.ChangeEvent) Event {
	return Event{
		Type:      EventCollectionChanged,
		Timestamp: time.UnixMilli(ce.At),
		UserID:    ce.UserID,
		Data:      ce,
	}
}

// NewDailyStickerEvent announces a freshly granted daily sticker.
func NewDailyStickerEvent(userID string, sticker any) Event {
	return Event{
		Type:      EventDailySticker,
		Timestamp: time.Now(),
		UserID:    userID,
		Data:      sticker,
	}
}
