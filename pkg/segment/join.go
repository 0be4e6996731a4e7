package segment

import "strings"

// MarkdownText concatenates the content of the markdown segments, dropping code.
func MarkdownText(segments []Segment) string {
	var b strings.Builder
	for _, s := range segments {
		if s.Kind == KindMarkdown {
			b.WriteString(s.Content)
		}
	}
	return b.String()
}

// CodeBlocks returns the code segments in order.
func CodeBlocks(segments []Segment) []Segment {
	ret := []Segment{}
	for _, s := range segments {
		if s.Kind == KindCode {
			ret = append(ret, s)
		}
	}
	return ret
}

// LastCodeBlock returns the last code segment of text, if any.
func LastCodeBlock(text string) (Segment, bool) {
	blocks := CodeBlocks(Split(text))
	if len(blocks) == 0 {
		return Segment{}, false
	}
	return blocks[len(blocks)-1], true
}

// Join renders segments back into markdown. Code is re-fenced with a run longer
// than any backtick run inside its content.
func Join(segments []Segment) string {
	var b strings.Builder
	for _, s := range segments {
		if s.Kind != KindCode {
			b.WriteString(s.Content)
			continue
		}
		fence := strings.Repeat(string(fenceChar), fenceLengthFor(s.Content))
		b.WriteString(fence)
		if s.HasLanguage {
			b.WriteString(s.Language)
		}
		b.WriteByte('\n')
		b.WriteString(s.Content)
		b.WriteString(fence)
	}
	return b.String()
}

func fenceLengthFor(content string) int {
	longest := 0
	for i := 0; i < len(content); {
		n := backtickRun(content, i)
		if n == 0 {
			i++
			continue
		}
		if n > longest {
			longest = n
		}
		i += n
	}
	if longest < minFenceLength {
		return minFenceLength
	}
	return longest + 1
}
