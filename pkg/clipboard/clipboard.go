// Package clipboard copies text to the system clipboard and remembers, for a
// short window, which item was copied last so the shell can show a
// confirmation next to it.
package clipboard

import (
	"sync"
	"time"

	sysclip "github.com/atotto/clipboard"
	"github.com/go-go-golems/chatty/pkg/events"
	"github.com/rs/zerolog/log"
)

// DefaultWindow is how long a copy confirmation stays visible.
const DefaultWindow = 2 * time.Second

type Writer interface {
	WriteAll(text string) error
}

// SystemWriter writes to the OS clipboard.
type SystemWriter struct{}

func (SystemWriter) WriteAll(text string) error {
	return sysclip.WriteAll(text)
}

var _ Writer = SystemWriter{}

// Tracker records the correlation id of the most recent copy. A newer copy
// replaces the older confirmation and restarts the window.
type Tracker struct {
	writer   Writer
	window   time.Duration
	onChange func(id string, copied bool)

	mu         sync.Mutex
	recentID   string
	hasRecent  bool
	generation uint64
	timer      *time.Timer
	closed     bool
}

type TrackerOption func(*Tracker)

func WithWriter(w Writer) TrackerOption {
	return func(t *Tracker) {
		t.writer = w
	}
}

func WithWindow(d time.Duration) TrackerOption {
	return func(t *Tracker) {
		t.window = d
	}
}

// WithOnChange registers a callback invoked whenever the confirmation is set or
// reset. It runs outside the tracker lock, possibly on a timer goroutine.
func WithOnChange(f func(id string, copied bool)) TrackerOption {
	return func(t *Tracker) {
		t.onChange = f
	}
}

// WithEventSink publishes copied-changed events to sink.
func WithEventSink(sink events.Sink) TrackerOption {
	return WithOnChange(func(id string, copied bool) {
		sink.PublishEvent(events.NewCopiedChangedEvent(id, copied))
	})
}

func NewTracker(options ...TrackerOption) *Tracker {
	ret := &Tracker{
		writer: SystemWriter{},
		window: DefaultWindow,
	}
	for _, o := range options {
		o(ret)
	}
	return ret
}

// Copy writes text to the clipboard and marks correlationID as recently copied.
// A failed write is logged and the confirmation is still shown.
func (t *Tracker) Copy(text string, correlationID string) {
	if err := t.writer.WriteAll(text); err != nil {
		log.Warn().Err(err).Str("id", correlationID).Msg("Could not write to clipboard")
	}

	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return
	}
	if t.timer != nil {
		t.timer.Stop()
	}
	t.generation++
	generation := t.generation
	t.recentID = correlationID
	t.hasRecent = true
	t.timer = time.AfterFunc(t.window, func() {
		t.reset(generation)
	})
	t.mu.Unlock()

	t.notify(correlationID, true)
}

func (t *Tracker) reset(generation uint64) {
	t.mu.Lock()
	// a newer copy owns the confirmation now
	if generation != t.generation || !t.hasRecent {
		t.mu.Unlock()
		return
	}
	id := t.recentID
	t.recentID = ""
	t.hasRecent = false
	t.timer = nil
	t.mu.Unlock()

	t.notify(id, false)
}

func (t *Tracker) notify(id string, copied bool) {
	if t.onChange != nil {
		t.onChange(id, copied)
	}
}

// Recent returns the id of the item copied within the window.
func (t *Tracker) Recent() (string, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.recentID, t.hasRecent
}

func (t *Tracker) IsRecent(id string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.hasRecent && t.recentID == id
}

// Close stops the pending reset. Later copies still write to the clipboard but
// no longer record a confirmation.
func (t *Tracker) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closed = true
	t.generation++
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
}
