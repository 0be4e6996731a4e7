package render

import (
	"strings"

	"github.com/alecthomas/chroma/v2/quick"
	"github.com/charmbracelet/glamour"
	"github.com/go-go-golems/chatty/pkg/segment"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

const (
	DefaultCodeStyle     = "monokai"
	DefaultCodeFormatter = "terminal256"
)

// TerminalRenderer renders markdown with glamour and highlights code blocks
// with chroma.
type TerminalRenderer struct {
	markdown  *glamour.TermRenderer
	codeStyle string
	formatter string
}

type TerminalOption func(*terminalConfig)

type terminalConfig struct {
	width     int
	style     string
	codeStyle string
	formatter string
}

// WithWordWrap sets the wrapping width of markdown text. Zero disables wrapping.
func WithWordWrap(width int) TerminalOption {
	return func(c *terminalConfig) {
		c.width = width
	}
}

// WithStyle picks a glamour style ("dark", "light", "notty"). The default
// detects the terminal background.
func WithStyle(style string) TerminalOption {
	return func(c *terminalConfig) {
		c.style = style
	}
}

func WithCodeStyle(style string) TerminalOption {
	return func(c *terminalConfig) {
		c.codeStyle = style
	}
}

// WithCodeFormatter picks the chroma formatter, e.g. "terminal256" or "noop".
func WithCodeFormatter(formatter string) TerminalOption {
	return func(c *terminalConfig) {
		c.formatter = formatter
	}
}

func NewTerminalRenderer(options ...TerminalOption) (*TerminalRenderer, error) {
	c := &terminalConfig{
		width:     80,
		codeStyle: DefaultCodeStyle,
		formatter: DefaultCodeFormatter,
	}
	for _, o := range options {
		o(c)
	}

	glamourOptions := []glamour.TermRendererOption{
		glamour.WithWordWrap(c.width),
	}
	if c.style == "" {
		glamourOptions = append(glamourOptions, glamour.WithAutoStyle())
	} else {
		glamourOptions = append(glamourOptions, glamour.WithStandardStyle(c.style))
	}

	md, err := glamour.NewTermRenderer(glamourOptions...)
	if err != nil {
		return nil, errors.Wrap(err, "could not create markdown renderer")
	}

	return &TerminalRenderer{
		markdown:  md,
		codeStyle: c.codeStyle,
		formatter: c.formatter,
	}, nil
}

func (r *TerminalRenderer) Render(segments []segment.Segment) (string, error) {
	var b strings.Builder
	for _, s := range segments {
		if s.IsCode() {
			b.WriteString(r.renderCode(s))
			continue
		}

		out, err := r.markdown.Render(s.Content)
		if err != nil {
			return "", errors.Wrap(err, "could not render markdown")
		}
		b.WriteString(out)
	}
	return b.String(), nil
}

func (r *TerminalRenderer) renderCode(s segment.Segment) string {
	var b strings.Builder
	if s.HasLanguage {
		b.WriteString(s.Language)
		b.WriteString("\n")
	}

	lexer := s.Language
	if lexer == "" {
		lexer = "plaintext"
	}
	var code strings.Builder
	if err := quick.Highlight(&code, s.Content, lexer, r.formatter, r.codeStyle); err != nil {
		log.Debug().Err(err).Str("language", s.Language).Msg("Could not highlight code, using plain text")
		b.WriteString(s.Content)
	} else {
		b.WriteString(code.String())
	}
	if !strings.HasSuffix(s.Content, "\n") {
		b.WriteString("\n")
	}
	return b.String()
}
