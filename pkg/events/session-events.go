package events

import (
	"encoding/json"
	"time"

	"github.com/pkg/errors"
)

type EventType string

const (
	EventTypeMessageAppended EventType = "message-appended"
	EventTypeMessagesCleared EventType = "messages-cleared"
	EventTypeLoadingChanged  EventType = "loading-changed"
	EventTypeDraftUpdated    EventType = "draft-updated"
	EventTypeCopiedChanged   EventType = "copied-changed"
)

// MessagePayload mirrors a session message on the wire. It is kept separate from
// the session types so that events can be decoded without importing the session.
type MessagePayload struct {
	ID                    int64     `json:"id"`
	Text                  string    `json:"text"`
	Sender                string    `json:"sender"`
	Timestamp             time.Time `json:"timestamp"`
	IsError               bool      `json:"is_error,omitempty"`
	ProcessingTimeSeconds *float64  `json:"processing_time,omitempty"`
}

// Event is the envelope for every state change the presentation layer observes.
// Only the fields relevant to Type are set.
type Event struct {
	Type      EventType       `json:"type"`
	SessionID string          `json:"session_id,omitempty"`
	Message   *MessagePayload `json:"message,omitempty"`
	Loading   *bool           `json:"loading,omitempty"`
	Draft     *string         `json:"draft,omitempty"`
	CopiedID  string          `json:"copied_id,omitempty"`
	Copied    *bool           `json:"copied,omitempty"`
}

func NewMessageAppendedEvent(sessionID string, message MessagePayload) Event {
	return Event{Type: EventTypeMessageAppended, SessionID: sessionID, Message: &message}
}

func NewMessagesClearedEvent(sessionID string) Event {
	return Event{Type: EventTypeMessagesCleared, SessionID: sessionID}
}

func NewLoadingChangedEvent(sessionID string, loading bool) Event {
	return Event{Type: EventTypeLoadingChanged, SessionID: sessionID, Loading: &loading}
}

func NewDraftUpdatedEvent(sessionID string, draft string) Event {
	return Event{Type: EventTypeDraftUpdated, SessionID: sessionID, Draft: &draft}
}

func NewCopiedChangedEvent(copiedID string, copied bool) Event {
	return Event{Type: EventTypeCopiedChanged, CopiedID: copiedID, Copied: &copied}
}

func (e Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// NewEventFromJSON decodes an event published by a PublisherSink.
func NewEventFromJSON(b []byte) (Event, error) {
	var e Event
	if err := json.Unmarshal(b, &e); err != nil {
		return Event{}, errors.Wrap(err, "could not decode event")
	}

	switch e.Type {
	case EventTypeMessageAppended:
		if e.Message == nil {
			return Event{}, errors.Errorf("event %s without message", e.Type)
		}
	case EventTypeLoadingChanged:
		if e.Loading == nil {
			return Event{}, errors.Errorf("event %s without loading flag", e.Type)
		}
	case EventTypeDraftUpdated:
		if e.Draft == nil {
			return Event{}, errors.Errorf("event %s without draft", e.Type)
		}
	case EventTypeCopiedChanged:
		if e.Copied == nil {
			return Event{}, errors.Errorf("event %s without copied flag", e.Type)
		}
	case EventTypeMessagesCleared:
	default:
		return Event{}, errors.Errorf("unknown event type %q", e.Type)
	}

	return e, nil
}
