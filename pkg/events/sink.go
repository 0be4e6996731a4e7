package events

import "sync"

// Sink receives session and clipboard events. Implementations must not call back
// into the emitter synchronously.
type Sink interface {
	PublishEvent(e Event)
}

type NopSink struct{}

func (NopSink) PublishEvent(Event) {}

var _ Sink = NopSink{}

// SinkFunc adapts a function to Sink.
type SinkFunc func(e Event)

func (f SinkFunc) PublishEvent(e Event) {
	f(e)
}

// RecordingSink keeps every event in memory, in publication order.
type RecordingSink struct {
	mu     sync.Mutex
	events []Event
}

var _ Sink = (*RecordingSink)(nil)

func NewRecordingSink() *RecordingSink {
	return &RecordingSink{}
}

func (r *RecordingSink) PublishEvent(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *RecordingSink) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	ret := make([]Event, len(r.events))
	copy(ret, r.events)
	return ret
}

func (r *RecordingSink) Types() []EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	ret := make([]EventType, len(r.events))
	for i, e := range r.events {
		ret[i] = e.Type
	}
	return ret
}

// MultiSink fans an event out to several sinks in order.
type MultiSink []Sink

func (m MultiSink) PublishEvent(e Event) {
	for _, s := range m {
		if s != nil {
			s.PublishEvent(e)
		}
	}
}
