package session

import (
	"time"

	"github.com/go-go-golems/chatty/pkg/events"
)

type Sender string

const (
	SenderUser      Sender = "user"
	SenderAssistant Sender = "assistant"
)

// MessageID is strictly increasing within a session and never reused, even
// across Clear.
type MessageID int64

// Message is an entry of the conversation log. Messages are values and are
// never modified once appended.
type Message struct {
	ID        MessageID `json:"id"`
	Text      string    `json:"text"`
	Sender    Sender    `json:"sender"`
	Timestamp time.Time `json:"timestamp"`
	IsError   bool      `json:"is_error,omitempty"`
	// ProcessingTimeSeconds is only set on successful assistant messages.
	ProcessingTimeSeconds *float64 `json:"processing_time,omitempty"`
}

func (m Message) ProcessingTime() (float64, bool) {
	if m.ProcessingTimeSeconds == nil {
		return 0, false
	}
	return *m.ProcessingTimeSeconds, true
}

func (m Message) IsUser() bool {
	return m.Sender == SenderUser
}

func (m Message) clone() Message {
	if m.ProcessingTimeSeconds != nil {
		pt := *m.ProcessingTimeSeconds
		m.ProcessingTimeSeconds = &pt
	}
	return m
}

func (m Message) payload() events.MessagePayload {
	c := m.clone()
	return events.MessagePayload{
		ID:                    int64(c.ID),
		Text:                  c.Text,
		Sender:                string(c.Sender),
		Timestamp:             c.Timestamp,
		IsError:               c.IsError,
		ProcessingTimeSeconds: c.ProcessingTimeSeconds,
	}
}
