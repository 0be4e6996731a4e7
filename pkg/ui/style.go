package ui

import "github.com/charmbracelet/lipgloss"

type Style struct {
	UnselectedMessage lipgloss.Style
	SelectedMessage   lipgloss.Style
	FocusedMessage    lipgloss.Style
	ErrorMessage      lipgloss.Style

	Header   lipgloss.Style
	Sender   lipgloss.Style
	Footer   lipgloss.Style
	Copied   lipgloss.Style
	Thinking lipgloss.Style
}

type BorderColors struct {
	Unselected string
	Selected   string
	Focused    string
	Error      string
}

func DefaultStyles() *Style {
	lightModeColors := BorderColors{
		Unselected: "#CCCCCC",
		Selected:   "#FFB6C1", // Light pink
		Focused:    "#FFFF99", // Light yellow
		Error:      "#E06C75",
	}

	darkModeColors := BorderColors{
		Unselected: "#444444",
		Selected:   "#DD7090",
		Focused:    "#DDDD77",
		Error:      "#BE5046",
	}

	subtle := lipgloss.AdaptiveColor{Light: "#888888", Dark: "#777777"}

	return &Style{
		UnselectedMessage: lipgloss.NewStyle().Border(lipgloss.NormalBorder()).
			Padding(0, 1).
			BorderForeground(lipgloss.AdaptiveColor{
				Light: lightModeColors.Unselected,
				Dark:  darkModeColors.Unselected,
			}),
		SelectedMessage: lipgloss.NewStyle().Border(lipgloss.ThickBorder()).
			Padding(0, 1).
			BorderForeground(lipgloss.AdaptiveColor{
				Light: lightModeColors.Selected,
				Dark:  darkModeColors.Selected,
			}),
		FocusedMessage: lipgloss.NewStyle().Border(lipgloss.NormalBorder()).
			Padding(0, 1).
			BorderForeground(lipgloss.AdaptiveColor{
				Light: lightModeColors.Focused,
				Dark:  darkModeColors.Focused,
			}),
		ErrorMessage: lipgloss.NewStyle().Border(lipgloss.NormalBorder()).
			Padding(0, 1).
			BorderForeground(lipgloss.AdaptiveColor{
				Light: lightModeColors.Error,
				Dark:  darkModeColors.Error,
			}).
			Foreground(lipgloss.AdaptiveColor{
				Light: lightModeColors.Error,
				Dark:  darkModeColors.Error,
			}),
		Header:   lipgloss.NewStyle().Bold(true).Padding(0, 1),
		Sender:   lipgloss.NewStyle().Bold(true),
		Footer:   lipgloss.NewStyle().Foreground(subtle),
		Copied:   lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#2E7D32", Dark: "#98C379"}),
		Thinking: lipgloss.NewStyle().Foreground(subtle).Italic(true),
	}
}
