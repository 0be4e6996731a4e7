package ui

import (
	"context"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/go-go-golems/chatty/pkg/answering"
	"github.com/go-go-golems/chatty/pkg/clipboard"
	"github.com/go-go-golems/chatty/pkg/events"
	"github.com/go-go-golems/chatty/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type echoAsker struct {
	answer string
}

func (e echoAsker) Ask(ctx context.Context, message string, sessionID string) (*answering.Answer, error) {
	return &answering.Answer{Text: e.answer, ProcessingTimeSeconds: 0.42}, nil
}

type memoryWriter struct {
	mu   sync.Mutex
	last string
}

func (w *memoryWriter) WriteAll(text string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.last = text
	return nil
}

func (w *memoryWriter) Last() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.last
}

func newTestModel(t *testing.T, answer string) (model, *session.Session, *memoryWriter) {
	t.Helper()
	s := session.New(echoAsker{answer: answer})
	t.Cleanup(s.Close)

	w := &memoryWriter{}
	tracker := clipboard.NewTracker(clipboard.WithWriter(w), clipboard.WithWindow(time.Hour))
	t.Cleanup(tracker.Close)

	m := InitialModel(context.Background(), s, tracker)
	m = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 40})
	return m, s, w
}

func update(t *testing.T, m model, msg tea.Msg) model {
	t.Helper()
	next, _ := m.Update(msg)
	ret, ok := next.(model)
	require.True(t, ok)
	return ret
}

func typeText(t *testing.T, m model, text string) model {
	t.Helper()
	return update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)})
}

func TestEnterSubmitsDraft(t *testing.T) {
	m, s, _ := newTestModel(t, "ML is...")

	m = typeText(t, m, "What is ML?")
	assert.Equal(t, "What is ML?", s.Draft())

	m = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	s.Wait()
	m = update(t, m, refreshMsg{})

	msgs := s.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, "What is ML?", msgs[0].Text)
	assert.Equal(t, "ML is...", msgs[1].Text)
	assert.Equal(t, "", m.textArea.Value())

	view := m.View()
	assert.Contains(t, view, "1 messages")
	assert.Contains(t, view, "ML is...")
	assert.Contains(t, view, "Processed in 0.42s")
}

func TestEnterWithBlankDraftDoesNothing(t *testing.T) {
	m, s, _ := newTestModel(t, "unused")

	m = typeText(t, m, "   ")
	_ = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	assert.Empty(t, s.Messages())
	assert.False(t, s.IsLoading())
}

func TestQuickQuestionKey(t *testing.T) {
	m, s, _ := newTestModel(t, "DL is...")

	_ = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'5'}, Alt: true})
	s.Wait()

	msgs := s.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, session.DefaultQuickQuestions[4], msgs[0].Text)
}

func TestClearKey(t *testing.T) {
	m, s, _ := newTestModel(t, "answer")

	m = typeText(t, m, "hello")
	m = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	s.Wait()
	m = update(t, m, refreshMsg{})
	require.Len(t, s.Messages(), 2)

	m = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlL})
	assert.Empty(t, s.Messages())
	assert.Contains(t, m.View(), "0 messages")
	assert.Contains(t, m.View(), "Welcome to ML Chatbot!")
}

func TestCopyLastCodeBlock(t *testing.T) {
	m, s, w := newTestModel(t, "Use this:\n```python\nprint('hi')\n```\n")

	m = typeText(t, m, "code please")
	m = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	s.Wait()
	m = update(t, m, refreshMsg{})

	m = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlY})
	assert.Equal(t, "print('hi')\n", w.Last())
	assert.Contains(t, m.View(), "Copied!")
}

func TestCopySelectedMessage(t *testing.T) {
	m, s, w := newTestModel(t, "the answer")

	m = typeText(t, m, "the question")
	m = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	s.Wait()
	m = update(t, m, refreshMsg{})

	m = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, StateMovingAround, m.state)
	m = update(t, m, tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, 0, m.selectedIdx)

	_ = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'y'}, Alt: true})
	assert.Equal(t, "the question", w.Last())
}

func TestLoadingShowsThinking(t *testing.T) {
	release := make(chan struct{})
	s := session.New(askerFunc(func(ctx context.Context) (*answering.Answer, error) {
		<-release
		return &answering.Answer{Text: "done"}, nil
	}))
	defer s.Close()

	m := InitialModel(context.Background(), s, nil)
	m = update(t, m, tea.WindowSizeMsg{Width: 80, Height: 30})
	m = typeText(t, m, "slow")
	m = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	assert.True(t, m.loading)
	assert.Contains(t, m.View(), "Thinking...")

	close(release)
	s.Wait()
	m = update(t, m, refreshMsg{})
	assert.False(t, m.loading)
	assert.NotContains(t, m.View(), "Thinking...")
}

func TestQuitClosesSession(t *testing.T) {
	m, s, _ := newTestModel(t, "a")

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())

	_, ok := s.Submit(context.Background(), "after quit")
	assert.False(t, ok)
}

type askerFunc func(ctx context.Context) (*answering.Answer, error)

func (f askerFunc) Ask(ctx context.Context, message string, sessionID string) (*answering.Answer, error) {
	return f(ctx)
}

type recordingSender struct {
	mu   sync.Mutex
	msgs []tea.Msg
}

func (r *recordingSender) Send(msg tea.Msg) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, msg)
}

func (r *recordingSender) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.msgs)
}

func TestRefresherCoalescesSignals(t *testing.T) {
	r := NewRefresher()
	for i := 0; i < 10; i++ {
		r.Signal()
	}
	assert.Len(t, r.ch, 1)

	sender := &recordingSender{}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = r.Run(ctx, sender)
	}()

	require.Eventually(t, func() bool {
		return sender.Count() == 1
	}, 2*time.Second, 5*time.Millisecond)

	cancel()
	<-done
	assert.Equal(t, 1, sender.Count())
}

func TestSessionForwardFuncSignals(t *testing.T) {
	r := NewRefresher()
	h := SessionForwardFunc(r)

	require.NoError(t, h(context.Background(), events.NewLoadingChangedEvent("s", true)))
	require.NoError(t, h(context.Background(), events.NewMessagesClearedEvent("s")))
	assert.Len(t, r.ch, 1)
}
