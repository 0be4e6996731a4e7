// Package session owns the state of one conversation with the answering service.
//
// A Session holds the ordered message log, the draft input and the in-flight
// request. At most one request is outstanding at a time: submitting while a
// request is in flight is silently ignored. Service failures never surface as
// errors; they are appended to the log as assistant messages flagged IsError.
//
// Every state change is published to an events.Sink after the session lock has
// been released, in the order the changes were made.
package session

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/go-go-golems/chatty/pkg/answering"
	"github.com/go-go-golems/chatty/pkg/events"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

type State string

const (
	StateIdle    State = "idle"
	StateSending State = "sending"
)

type Session struct {
	id             string
	asker          answering.Asker
	sink           events.Sink
	now            func() time.Time
	requestTimeout time.Duration
	apologyText    string
	quickQuestions []string

	// emitMu is taken before mu is released so that events leave in mutation order.
	emitMu sync.Mutex
	mu     sync.Mutex

	messages       []Message
	draft          string
	loading        bool
	closed         bool
	lastID         MessageID
	inflight       chan struct{}
	cancelInflight context.CancelFunc
}

// New creates a session with a fresh id and an empty log.
func New(asker answering.Asker, options ...Option) *Session {
	ret := &Session{
		asker:          asker,
		sink:           events.NopSink{},
		now:            time.Now,
		apologyText:    DefaultApologyText,
		quickQuestions: append([]string(nil), DefaultQuickQuestions...),
		messages:       []Message{},
	}
	for _, option := range options {
		option(ret)
	}
	if ret.id == "" {
		ret.id = uuid.NewString()
	}
	if ret.sink == nil {
		ret.sink = events.NopSink{}
	}

	log.Debug().Str("session_id", ret.id).Msg("Session created")

	return ret
}

func (s *Session) ID() string {
	return s.id
}

// Messages returns a copy of the log in insertion order.
func (s *Session) Messages() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	ret := make([]Message, len(s.messages))
	for i, m := range s.messages {
		ret[i] = m.clone()
	}
	return ret
}

func (s *Session) IsLoading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

func (s *Session) State() State {
	if s.IsLoading() {
		return StateSending
	}
	return StateIdle
}

func (s *Session) Draft() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft
}

func (s *Session) UserMessageCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, m := range s.messages {
		if m.IsUser() {
			n++
		}
	}
	return n
}

func (s *Session) QuickQuestions() []string {
	return append([]string(nil), s.quickQuestions...)
}

// Submit sends rawInput to the answering service.
//
// It is a no-op, returning false, when the trimmed input is empty, a request is
// already in flight, or the session is closed. Otherwise the user message is
// appended and the draft cleared before Submit returns; the returned channel is
// closed once the answer (or the apology) has been appended and loading has been
// reset.
func (s *Session) Submit(ctx context.Context, rawInput string) (<-chan struct{}, bool) {
	text := strings.TrimSpace(rawInput)
	if text == "" {
		return nil, false
	}

	s.mu.Lock()
	if s.closed || s.loading {
		loading, closed := s.loading, s.closed
		s.mu.Unlock()
		log.Debug().
			Str("session_id", s.id).
			Bool("loading", loading).
			Bool("closed", closed).
			Msg("Ignoring submission")
		return nil, false
	}

	userMessage := s.appendLocked(SenderUser, text, false, nil)
	s.draft = ""
	s.loading = true

	done := make(chan struct{})
	s.inflight = done

	var reqCtx context.Context
	var cancel context.CancelFunc
	if s.requestTimeout > 0 {
		reqCtx, cancel = context.WithTimeout(ctx, s.requestTimeout)
	} else {
		reqCtx, cancel = context.WithCancel(ctx)
	}
	s.cancelInflight = cancel

	s.unlockAndEmit(
		events.NewMessageAppendedEvent(s.id, userMessage.payload()),
		events.NewDraftUpdatedEvent(s.id, ""),
		events.NewLoadingChangedEvent(s.id, true),
	)

	log.Debug().
		Str("session_id", s.id).
		Int64("message_id", int64(userMessage.ID)).
		Msg("Submitted message")

	go s.run(reqCtx, cancel, userMessage, done)

	return done, true
}

// SubmitQuickQuestion puts question into the draft and submits it.
func (s *Session) SubmitQuickQuestion(ctx context.Context, question string) (<-chan struct{}, bool) {
	s.UpdateDraft(question)
	return s.Submit(ctx, s.Draft())
}

// Clear empties the log. It neither resets the session id nor cancels an
// in-flight request; the answer of such a request is appended to the cleared log.
func (s *Session) Clear() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.messages = []Message{}
	s.unlockAndEmit(events.NewMessagesClearedEvent(s.id))
}

func (s *Session) UpdateDraft(text string) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.draft = text
	s.unlockAndEmit(events.NewDraftUpdatedEvent(s.id, text))
}

// Wait blocks until no request is in flight and the events of the last one
// have been published.
func (s *Session) Wait() {
	s.mu.Lock()
	done := s.inflight
	s.mu.Unlock()
	if done != nil {
		<-done
	}
}

// Close disposes of the session. The in-flight request is cancelled and its
// result dropped; every later operation is a no-op.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	cancel := s.cancelInflight
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	log.Debug().Str("session_id", s.id).Msg("Session closed")
}

func (s *Session) run(ctx context.Context, cancel context.CancelFunc, userMessage Message, done chan struct{}) {
	defer func() {
		s.mu.Lock()
		if s.inflight == done {
			s.inflight = nil
		}
		s.mu.Unlock()
		close(done)
	}()
	defer cancel()

	start := s.now()
	answer, err := s.ask(ctx, userMessage.Text)

	s.mu.Lock()
	s.loading = false
	s.cancelInflight = nil

	if s.closed {
		s.mu.Unlock()
		log.Debug().
			Str("session_id", s.id).
			Int64("message_id", int64(userMessage.ID)).
			Msg("Dropping answer for closed session")
		return
	}

	var reply Message
	if err != nil {
		reply = s.appendLocked(SenderAssistant, s.apologyText, true, nil)
	} else {
		pt := answer.ProcessingTimeSeconds
		reply = s.appendLocked(SenderAssistant, answer.Text, false, &pt)
	}

	s.unlockAndEmit(
		events.NewMessageAppendedEvent(s.id, reply.payload()),
		events.NewLoadingChangedEvent(s.id, false),
	)

	if err != nil {
		log.Warn().Err(err).
			Str("session_id", s.id).
			Int64("message_id", int64(userMessage.ID)).
			Dur("elapsed", s.now().Sub(start)).
			Msg("Answering service failed")
		return
	}
	log.Debug().
		Str("session_id", s.id).
		Int64("message_id", int64(reply.ID)).
		Float64("processing_time", answer.ProcessingTimeSeconds).
		Msg("Received answer")
}

// ask calls the answering service. A panicking Asker is reported like any other
// failure so loading is always reset.
func (s *Session) ask(ctx context.Context, text string) (answer *answering.Answer, err error) {
	defer func() {
		if r := recover(); r != nil {
			answer = nil
			err = errors.Errorf("answering service panicked: %v", r)
		}
	}()

	answer, err = s.asker.Ask(ctx, text, s.id)
	if err == nil && answer == nil {
		err = errors.New("answering service returned no answer")
	}
	return answer, err
}

func (s *Session) appendLocked(sender Sender, text string, isError bool, processingTime *float64) Message {
	s.lastID++
	m := Message{
		ID:                    s.lastID,
		Text:                  text,
		Sender:                sender,
		Timestamp:             s.now(),
		IsError:               isError,
		ProcessingTimeSeconds: processingTime,
	}
	s.messages = append(s.messages, m)
	return m.clone()
}

// unlockAndEmit releases mu and publishes evs. Must be called with mu held.
func (s *Session) unlockAndEmit(evs ...events.Event) {
	s.emitMu.Lock()
	s.mu.Unlock()
	defer s.emitMu.Unlock()

	for _, e := range evs {
		s.sink.PublishEvent(e)
	}
}
