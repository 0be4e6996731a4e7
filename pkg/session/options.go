package session

import (
	"time"

	"github.com/go-go-golems/chatty/pkg/events"
)

// DefaultApologyText is appended as an error message when the answering service fails.
const DefaultApologyText = "Sorry, I encountered an error. Please try again."

// DefaultQuickQuestions are the one-click example prompts offered by the shell.
var DefaultQuickQuestions = []string{
	"What is machine learning?",
	"Explain neural networks",
	"What are the types of ML algorithms?",
	"How does supervised learning work?",
	"What is deep learning?",
	"What is reinforcement learning?",
}

type Option func(*Session)

func WithSessionID(id string) Option {
	return func(s *Session) {
		s.id = id
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Session) {
		s.now = now
	}
}

func WithEventSink(sink events.Sink) Option {
	return func(s *Session) {
		s.sink = sink
	}
}

// WithRequestTimeout bounds each answering request. Zero, the default, leaves
// requests unbounded.
func WithRequestTimeout(timeout time.Duration) Option {
	return func(s *Session) {
		s.requestTimeout = timeout
	}
}

func WithApologyText(text string) Option {
	return func(s *Session) {
		s.apologyText = text
	}
}

func WithQuickQuestions(questions []string) Option {
	return func(s *Session) {
		s.quickQuestions = append([]string(nil), questions...)
	}
}
