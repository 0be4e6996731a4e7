package ui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/go-go-golems/chatty/pkg/events"
	"github.com/rs/zerolog/log"
)

// refreshMsg asks the model to re-read the session state.
type refreshMsg struct{}

// Sender is the part of *tea.Program the Refresher needs.
type Sender interface {
	Send(msg tea.Msg)
}

// Refresher coalesces change notifications into at most one pending redraw.
// Signal never blocks, so it is safe to call from event handlers while the
// program is busy in Update.
type Refresher struct {
	ch chan struct{}
}

func NewRefresher() *Refresher {
	return &Refresher{ch: make(chan struct{}, 1)}
}

func (r *Refresher) Signal() {
	select {
	case r.ch <- struct{}{}:
	default:
	}
}

// Run forwards pending signals to p until ctx is cancelled.
func (r *Refresher) Run(ctx context.Context, p Sender) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-r.ch:
			p.Send(refreshMsg{})
		}
	}
}

// SessionForwardFunc returns a router handler turning session and clipboard
// events into redraw signals.
func SessionForwardFunc(r *Refresher) events.EventHandler {
	return func(ctx context.Context, e events.Event) error {
		log.Trace().
			Str("event_type", string(e.Type)).
			Str("session_id", e.SessionID).
			Msg("Forwarding event to UI")
		r.Signal()
		return nil
	}
}
