package ui

import (
	"github.com/muesli/reflow/wordwrap"
)

const minWidth = 20

func wrapWords(text string, width int) string {
	if width < minWidth {
		width = minWidth
	}
	w := wordwrap.NewWriter(width)
	// the wordwrap writer never fails
	_, _ = w.Write([]byte(text))
	_ = w.Close()
	return w.String()
}
