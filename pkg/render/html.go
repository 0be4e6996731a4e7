package render

import (
	"bytes"
	"html"
	"regexp"

	"github.com/go-go-golems/chatty/pkg/segment"
	"github.com/microcosm-cc/bluemonday"
	"github.com/pkg/errors"
	"github.com/yuin/goldmark"
)

var languageClass = regexp.MustCompile(`^language-[a-zA-Z0-9_+-]+$`)

// HTMLRenderer converts markdown segments with goldmark and wraps code segments
// in pre/code elements. The whole document goes through a bluemonday policy, so
// script or event-handler markup in an answer never survives.
type HTMLRenderer struct {
	markdown goldmark.Markdown
	policy   *bluemonday.Policy
}

func NewHTMLRenderer() *HTMLRenderer {
	policy := bluemonday.UGCPolicy()
	policy.AllowAttrs("class").Matching(languageClass).OnElements("code")

	return &HTMLRenderer{
		markdown: goldmark.New(),
		policy:   policy,
	}
}

func (r *HTMLRenderer) Render(segments []segment.Segment) (string, error) {
	var buf bytes.Buffer
	for _, s := range segments {
		if !s.IsCode() {
			if err := r.markdown.Convert([]byte(s.Content), &buf); err != nil {
				return "", errors.Wrap(err, "could not convert markdown")
			}
			continue
		}

		buf.WriteString("<pre><code")
		if s.HasLanguage {
			buf.WriteString(` class="language-`)
			buf.WriteString(html.EscapeString(s.Language))
			buf.WriteString(`"`)
		}
		buf.WriteString(">")
		buf.WriteString(html.EscapeString(s.Content))
		buf.WriteString("</code></pre>\n")
	}

	return r.policy.Sanitize(buf.String()), nil
}
