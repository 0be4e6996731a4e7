package ui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/go-go-golems/chatty/pkg/clipboard"
	"github.com/go-go-golems/chatty/pkg/render"
	"github.com/go-go-golems/chatty/pkg/segment"
	"github.com/go-go-golems/chatty/pkg/session"
	"github.com/rs/zerolog/log"
)

// states:
// - user input
// - user moving around messages
//
// Whether a request is in flight is read from the session, not tracked here.

type State string

const (
	StateUserInput    State = "user_input"
	StateMovingAround State = "moving_around"
)

type model struct {
	ctx     context.Context
	session *session.Session
	tracker *clipboard.Tracker

	viewport viewport.Model
	textArea textarea.Model
	help     help.Model
	spinner  spinner.Model

	// currently selected message, -1 if the log is empty
	selectedIdx int
	keyMap      KeyMap

	style  *Style
	width  int
	height int

	markdown bool
	renderer render.Renderer
	// rendered message bodies, reset when the width changes
	rendered map[session.MessageID]string

	// snapshot of the session, refreshed on every refreshMsg
	messages []session.Message
	loading  bool

	state State
}

type ModelOption func(*model)

// WithMarkdown renders assistant answers with glamour and chroma.
func WithMarkdown(enabled bool) ModelOption {
	return func(m *model) {
		m.markdown = enabled
	}
}

func WithKeyMap(keyMap KeyMap) ModelOption {
	return func(m *model) {
		m.keyMap = keyMap
	}
}

func WithStyle(style *Style) ModelOption {
	return func(m *model) {
		m.style = style
	}
}

func InitialModel(ctx context.Context, s *session.Session, tracker *clipboard.Tracker, options ...ModelOption) model {
	ret := model{
		ctx:         ctx,
		session:     s,
		tracker:     tracker,
		style:       DefaultStyles(),
		keyMap:      DefaultKeyMap,
		viewport:    viewport.New(0, 0),
		help:        help.New(),
		spinner:     spinner.New(spinner.WithSpinner(spinner.Dot)),
		rendered:    map[session.MessageID]string{},
		selectedIdx: -1,
	}
	for _, o := range options {
		o(&ret)
	}

	ret.textArea = textarea.New()
	ret.textArea.Placeholder = "Ask about machine learning..."
	ret.textArea.ShowLineNumbers = false
	ret.textArea.SetHeight(3)
	ret.textArea.KeyMap.InsertNewline = key.NewBinding(key.WithKeys("alt+enter"))
	ret.textArea.Focus()
	ret.state = StateUserInput

	ret.resetRenderer()
	ret.sync()
	ret.updateKeyBindings()

	return ret
}

func (m model) Init() tea.Cmd {
	return textarea.Blink
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keyMap.Quit):
			m.session.Close()
			return m, tea.Quit

		case key.Matches(msg, m.keyMap.UnfocusMessage):
			m.textArea.Blur()
			m.state = StateMovingAround
			m.updateKeyBindings()
			m.recomputeSize()

		case key.Matches(msg, m.keyMap.FocusMessage):
			cmds = append(cmds, m.textArea.Focus())
			m.state = StateUserInput
			m.selectedIdx = len(m.messages) - 1
			m.updateKeyBindings()
			m.recomputeSize()

		case key.Matches(msg, m.keyMap.SelectNextMessage):
			if m.selectedIdx < len(m.messages)-1 {
				m.selectedIdx++
				m.refreshView()
			}

		case key.Matches(msg, m.keyMap.SelectPrevMessage):
			if m.selectedIdx > 0 {
				m.selectedIdx--
				m.refreshView()
			}

		case key.Matches(msg, m.keyMap.SubmitMessage):
			cmds = append(cmds, m.submit())

		case key.Matches(msg, m.keyMap.QuickQuestion):
			cmds = append(cmds, m.submitQuickQuestion(msg.String()))

		case key.Matches(msg, m.keyMap.ClearChat):
			m.session.Clear()
			cmds = append(cmds, m.sync())

		case key.Matches(msg, m.keyMap.CopyLastCodeBlock):
			m.copyLastCodeBlock()

		case key.Matches(msg, m.keyMap.CopyMessage):
			m.copyMessage()

		case key.Matches(msg, m.keyMap.ScrollUp):
			m.viewport.HalfViewUp()

		case key.Matches(msg, m.keyMap.ScrollDown):
			m.viewport.HalfViewDown()

		case key.Matches(msg, m.keyMap.Help):
			m.help.ShowAll = !m.help.ShowAll
			m.recomputeSize()

		default:
			switch m.state {
			case StateUserInput:
				m.textArea, cmd = m.textArea.Update(msg)
				cmds = append(cmds, cmd)
				if v := m.textArea.Value(); v != m.session.Draft() {
					m.session.UpdateDraft(v)
				}
			case StateMovingAround:
				m.viewport, cmd = m.viewport.Update(msg)
				cmds = append(cmds, cmd)
			}
		}
		return m, tea.Batch(cmds...)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resetRenderer()
		m.recomputeSize()
		m.viewport.GotoBottom()

	case refreshMsg:
		cmds = append(cmds, m.sync())

	case spinner.TickMsg:
		// let the tick chain die once the answer is in
		if !m.loading {
			return m, nil
		}
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)
		return m, tea.Batch(cmds...)

	default:
	}

	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// sync copies the session state into the model.
func (m *model) sync() tea.Cmd {
	previousCount := len(m.messages)
	wasLoading := m.loading

	m.messages = m.session.Messages()
	m.loading = m.session.IsLoading()
	if draft := m.session.Draft(); draft != m.textArea.Value() {
		m.textArea.SetValue(draft)
	}

	if m.state == StateUserInput || m.selectedIdx >= len(m.messages) {
		m.selectedIdx = len(m.messages) - 1
	}

	live := make(map[session.MessageID]struct{}, len(m.messages))
	for _, msg := range m.messages {
		live[msg.ID] = struct{}{}
	}
	for id := range m.rendered {
		if _, ok := live[id]; !ok {
			delete(m.rendered, id)
		}
	}

	m.recomputeSize()
	if len(m.messages) != previousCount {
		m.viewport.GotoBottom()
	}

	if m.loading && !wasLoading {
		return m.spinner.Tick
	}
	return nil
}

func (m *model) updateKeyBindings() {
	hasTracker := m.tracker != nil
	m.keyMap.CopyLastCodeBlock.SetEnabled(hasTracker)
	m.keyMap.CopyMessage.SetEnabled(hasTracker)

	m.keyMap.SelectNextMessage.SetEnabled(m.state == StateMovingAround)
	m.keyMap.SelectPrevMessage.SetEnabled(m.state == StateMovingAround)
	m.keyMap.FocusMessage.SetEnabled(m.state == StateMovingAround)
	m.keyMap.UnfocusMessage.SetEnabled(m.state == StateUserInput)
	m.keyMap.SubmitMessage.SetEnabled(m.state == StateUserInput)
}

func (m *model) resetRenderer() {
	m.rendered = map[session.MessageID]string{}
	m.renderer = nil
	if !m.markdown {
		return
	}

	r, err := render.NewTerminalRenderer(render.WithWordWrap(m.contentWidth()))
	if err != nil {
		log.Warn().Err(err).Msg("Could not create markdown renderer, falling back to plain text")
		return
	}
	m.renderer = r
}

func (m *model) recomputeSize() {
	headerHeight := lipgloss.Height(m.headerView())

	m.textArea.SetWidth(max(m.width-m.style.FocusedMessage.GetHorizontalFrameSize(), minWidth))
	textAreaHeight := lipgloss.Height(m.textAreaView())

	m.help.Width = m.width
	helpViewHeight := lipgloss.Height(m.help.View(m.keyMap))

	newHeight := m.height - textAreaHeight - headerHeight - helpViewHeight
	if newHeight < 0 {
		newHeight = 0
	}
	m.viewport.Width = m.width
	m.viewport.Height = newHeight
	m.viewport.YPosition = headerHeight + 1

	m.refreshView()
}

func (m *model) refreshView() {
	m.viewport.SetContent(m.messageView())
}

func (m model) contentWidth() int {
	return max(m.width-m.style.SelectedMessage.GetHorizontalFrameSize(), minWidth)
}

func (m model) userMessageCount() int {
	n := 0
	for _, msg := range m.messages {
		if msg.IsUser() {
			n++
		}
	}
	return n
}

func (m model) headerView() string {
	return m.style.Header.Render(fmt.Sprintf("Machine Learning Assistant · %d messages", m.userMessageCount()))
}

func (m *model) messageView() string {
	if len(m.messages) == 0 {
		return m.welcomeView()
	}

	var b strings.Builder
	for idx, msg := range m.messages {
		style := m.style.UnselectedMessage
		switch {
		case m.state == StateMovingAround && idx == m.selectedIdx:
			style = m.style.SelectedMessage
		case msg.IsError:
			style = m.style.ErrorMessage
		}

		v := lipgloss.JoinVertical(lipgloss.Left,
			m.style.Sender.Render(senderLabel(msg.Sender)),
			m.body(msg),
			m.footerView(msg),
		)
		b.WriteString(style.Width(m.contentWidth() + style.GetHorizontalPadding()).Render(v))
		b.WriteString("\n")
	}

	return b.String()
}

func (m model) welcomeView() string {
	var b strings.Builder
	b.WriteString(m.style.Sender.Render("Welcome to ML Chatbot!"))
	b.WriteString("\n")
	b.WriteString(wrapWords(
		"Ask me anything about Machine Learning. Try one of the example questions or type your own.",
		m.contentWidth(),
	))
	b.WriteString("\n\n")
	for i, q := range m.session.QuickQuestions() {
		if i >= 6 {
			break
		}
		b.WriteString(fmt.Sprintf("  alt+%d  %s\n", i+1, q))
	}
	return b.String()
}

func (m *model) body(msg session.Message) string {
	if v, ok := m.rendered[msg.ID]; ok {
		return v
	}

	v := ""
	if m.renderer != nil && !msg.IsUser() && !msg.IsError {
		out, err := render.RenderText(m.renderer, msg.Text)
		if err != nil {
			log.Warn().Err(err).Int64("message_id", int64(msg.ID)).Msg("Could not render message")
			v = wrapWords(msg.Text, m.contentWidth())
		} else {
			v = strings.Trim(out, "\n")
		}
	} else {
		v = wrapWords(msg.Text, m.contentWidth())
	}

	m.rendered[msg.ID] = v
	return v
}

func (m model) footerView(msg session.Message) string {
	parts := []string{render.FormatTimestamp(msg.Timestamp)}
	if pt, ok := msg.ProcessingTime(); ok {
		parts = append(parts, render.FormatProcessingTime(pt))
	}
	ret := m.style.Footer.Render(strings.Join(parts, " · "))
	if m.tracker != nil && m.tracker.IsRecent(copyID(msg.ID)) {
		ret += " " + m.style.Copied.Render("Copied!")
	}
	return ret
}

func (m model) textAreaView() string {
	v := m.textArea.View()
	switch m.state {
	case StateUserInput:
		v = m.style.FocusedMessage.Render(v)
	case StateMovingAround:
		v = m.style.UnselectedMessage.Render(v)
	}

	if m.loading {
		v = m.style.Thinking.Render(m.spinner.View()+" Thinking...") + "\n" + v
	}

	return v
}

func (m model) View() string {
	headerView := m.headerView()
	viewportView := m.viewport.View()
	textAreaView := m.textAreaView()
	helpView := m.help.View(m.keyMap)

	return headerView + "\n" + viewportView + "\n" + textAreaView + "\n" + helpView
}

func (m *model) submit() tea.Cmd {
	if _, ok := m.session.Submit(m.ctx, m.textArea.Value()); !ok {
		return nil
	}
	return m.sync()
}

func (m *model) submitQuickQuestion(binding string) tea.Cmd {
	idx, err := strconv.Atoi(strings.TrimPrefix(binding, "alt+"))
	if err != nil {
		return nil
	}
	questions := m.session.QuickQuestions()
	if idx < 1 || idx > len(questions) {
		return nil
	}
	if _, ok := m.session.SubmitQuickQuestion(m.ctx, questions[idx-1]); !ok {
		return nil
	}
	return m.sync()
}

func (m *model) copyLastCodeBlock() {
	if m.tracker == nil {
		return
	}
	for i := len(m.messages) - 1; i >= 0; i-- {
		msg := m.messages[i]
		if msg.IsUser() || msg.IsError {
			continue
		}
		if block, ok := segment.LastCodeBlock(msg.Text); ok {
			m.tracker.Copy(block.Content, copyID(msg.ID))
			m.refreshView()
			return
		}
	}
	log.Debug().Msg("No code block to copy")
}

// copyMessage copies the selected message while browsing, the last answer
// otherwise.
func (m *model) copyMessage() {
	if m.tracker == nil {
		return
	}

	if m.state == StateMovingAround && m.selectedIdx >= 0 && m.selectedIdx < len(m.messages) {
		msg := m.messages[m.selectedIdx]
		m.tracker.Copy(msg.Text, copyID(msg.ID))
		m.refreshView()
		return
	}

	for i := len(m.messages) - 1; i >= 0; i-- {
		msg := m.messages[i]
		if msg.IsUser() || msg.IsError {
			continue
		}
		m.tracker.Copy(msg.Text, copyID(msg.ID))
		m.refreshView()
		return
	}
}

func senderLabel(s session.Sender) string {
	if s == session.SenderUser {
		return "You"
	}
	return "Assistant"
}

func copyID(id session.MessageID) string {
	return strconv.FormatInt(int64(id), 10)
}
