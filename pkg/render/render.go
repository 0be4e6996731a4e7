// Package render turns answer segments into something a shell can display.
package render

import (
	"fmt"
	"strconv"
	"time"

	"github.com/go-go-golems/chatty/pkg/segment"
)

type Renderer interface {
	Render(segments []segment.Segment) (string, error)
}

// RenderText splits text into segments and renders them with r.
func RenderText(r Renderer, text string) (string, error) {
	return r.Render(segment.Split(text))
}

// FormatTimestamp renders the time shown under a message.
func FormatTimestamp(t time.Time) string {
	return t.Format("15:04")
}

// FormatProcessingTime renders the footer of a successful answer, e.g.
// "Processed in 0.42s".
func FormatProcessingTime(seconds float64) string {
	return fmt.Sprintf("Processed in %ss", strconv.FormatFloat(seconds, 'f', -1, 64))
}
