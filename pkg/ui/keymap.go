package ui

import "github.com/charmbracelet/bubbles/key"

type KeyMap struct {
	SelectPrevMessage key.Binding
	SelectNextMessage key.Binding
	UnfocusMessage    key.Binding
	FocusMessage      key.Binding
	SubmitMessage     key.Binding
	QuickQuestion     key.Binding
	ClearChat         key.Binding
	ScrollUp          key.Binding
	ScrollDown        key.Binding

	CopyLastCodeBlock key.Binding
	CopyMessage       key.Binding

	Help key.Binding
	Quit key.Binding
}

var DefaultKeyMap = KeyMap{
	SelectPrevMessage: key.NewBinding(key.WithKeys("up"), key.WithHelp("↑", "previous message")),
	SelectNextMessage: key.NewBinding(key.WithKeys("down"), key.WithHelp("↓", "next message")),
	UnfocusMessage:    key.NewBinding(key.WithKeys("esc", "ctrl+g"), key.WithHelp("esc", "browse messages")),
	FocusMessage:      key.NewBinding(key.WithKeys("enter", "esc"), key.WithHelp("enter", "back to input")),
	SubmitMessage:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "send")),
	QuickQuestion: key.NewBinding(
		key.WithKeys("alt+1", "alt+2", "alt+3", "alt+4", "alt+5", "alt+6"),
		key.WithHelp("alt+1-6", "quick question"),
	),
	ClearChat:         key.NewBinding(key.WithKeys("ctrl+l"), key.WithHelp("ctrl+l", "clear")),
	ScrollUp:          key.NewBinding(key.WithKeys("shift+pgup", "pgup")),
	ScrollDown:        key.NewBinding(key.WithKeys("shift+pgdown", "pgdown")),
	CopyLastCodeBlock: key.NewBinding(key.WithKeys("ctrl+y"), key.WithHelp("ctrl+y", "copy code")),
	CopyMessage:       key.NewBinding(key.WithKeys("alt+y"), key.WithHelp("alt+y", "copy answer")),
	Help:              key.NewBinding(key.WithKeys("ctrl+_", "ctrl+/"), key.WithHelp("ctrl+/", "help")),
	Quit:              key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
}

func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{
		k.SubmitMessage,
		k.FocusMessage,
		k.UnfocusMessage,
		k.QuickQuestion,
		k.ClearChat,
		k.CopyLastCodeBlock,
		k.Help,
		k.Quit,
	}
}

func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.SubmitMessage, k.QuickQuestion, k.ClearChat},
		{k.UnfocusMessage, k.FocusMessage, k.SelectPrevMessage, k.SelectNextMessage},
		{k.CopyLastCodeBlock, k.CopyMessage, k.ScrollUp, k.ScrollDown},
		{k.Help, k.Quit},
	}
}
