package render

import (
	"strings"
	"testing"
	"time"

	"github.com/go-go-golems/chatty/pkg/segment"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTMLRendererRendersSegments(t *testing.T) {
	r := NewHTMLRenderer()

	out, err := RenderText(r, "Here:\n```python\nprint('hi')\n```\nDone")
	require.NoError(t, err)

	assert.Contains(t, out, "<p>Here:</p>")
	assert.Contains(t, out, `<pre><code class="language-python">print(&#39;hi&#39;)`)
	assert.Contains(t, out, "<p>Done</p>")
	assert.True(t, strings.Index(out, "Here:") < strings.Index(out, "print"))
}

func TestHTMLRendererSanitizes(t *testing.T) {
	r := NewHTMLRenderer()

	tcs := []struct {
		name     string
		segments []segment.Segment
	}{
		{
			name:     "raw script in markdown",
			segments: []segment.Segment{segment.Markdown("hello <script>alert(1)</script>")},
		},
		{
			name:     "link with javascript scheme",
			segments: []segment.Segment{segment.Markdown("[x](javascript:alert(1))")},
		},
		{
			name:     "script in code",
			segments: []segment.Segment{segment.Code("html", "<script>alert(1)</script>\n")},
		},
		{
			name:     "quote in language",
			segments: []segment.Segment{segment.Code(`x" onclick="alert(1)`, "a\n")},
		},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			out, err := r.Render(tc.segments)
			require.NoError(t, err)
			assert.NotContains(t, out, "<script")
			assert.NotContains(t, out, "javascript:")
			assert.NotContains(t, out, "onclick")
		})
	}
}

func TestHTMLRendererCodeWithoutLanguage(t *testing.T) {
	out, err := NewHTMLRenderer().Render([]segment.Segment{segment.CodeWithoutLanguage("x := 1\n")})
	require.NoError(t, err)
	assert.Equal(t, "<pre><code>x := 1\n</code></pre>\n", out)
}

func TestTerminalRendererKeepsContent(t *testing.T) {
	r, err := NewTerminalRenderer(WithStyle("notty"), WithCodeFormatter("noop"), WithWordWrap(0))
	require.NoError(t, err)

	out, err := RenderText(r, "Some **bold** text\n```go\nfmt.Println(1)\n```\n")
	require.NoError(t, err)

	assert.Contains(t, out, "bold")
	assert.Contains(t, out, "go\nfmt.Println(1)\n")
}

func TestTerminalRendererUnknownLanguage(t *testing.T) {
	r, err := NewTerminalRenderer(WithStyle("notty"), WithCodeFormatter("noop"))
	require.NoError(t, err)

	out, err := r.Render([]segment.Segment{segment.Code("not-a-language", "a b c")})
	require.NoError(t, err)
	assert.Contains(t, out, "a b c\n")
}

func TestFormatters(t *testing.T) {
	assert.Equal(t, "Processed in 0.42s", FormatProcessingTime(0.42))
	assert.Equal(t, "Processed in 3s", FormatProcessingTime(3))
	assert.Equal(t, "09:05", FormatTimestamp(time.Date(2024, 1, 2, 9, 5, 59, 0, time.UTC)))
}
