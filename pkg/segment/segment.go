// Package segment splits answer text into plain markdown and fenced code segments.
//
// The splitter follows the fence rules chat answers actually use rather than full
// CommonMark: a fence may open in the middle of a line, and a fence that is never
// closed stays plain text instead of swallowing the rest of the answer. Fences
// nested inside a block belong to its content; the outermost fence wins.
package segment

import (
	"strings"
)

type Kind int

const (
	KindMarkdown Kind = iota
	KindCode
)

func (k Kind) String() string {
	switch k {
	case KindMarkdown:
		return "markdown"
	case KindCode:
		return "code"
	default:
		return "unknown"
	}
}

// Segment is a typed unit of parsed answer text.
// Language and HasLanguage are only meaningful for KindCode.
type Segment struct {
	Kind        Kind
	Language    string
	HasLanguage bool
	Content     string
}

func Markdown(content string) Segment {
	return Segment{Kind: KindMarkdown, Content: content}
}

func Code(language string, content string) Segment {
	return Segment{Kind: KindCode, Language: language, HasLanguage: true, Content: content}
}

func CodeWithoutLanguage(content string) Segment {
	return Segment{Kind: KindCode, Content: content}
}

func (s Segment) IsCode() bool {
	return s.Kind == KindCode
}

const fenceChar = '`'

const minFenceLength = 3

// Split parses text into an ordered sequence of segments. It is a pure function
// of text.
func Split(text string) []Segment {
	ret := []Segment{}
	plainStart := 0
	pos := 0

	for pos < len(text) {
		open := strings.IndexByte(text[pos:], fenceChar)
		if open < 0 {
			break
		}
		open += pos
		runLength := backtickRun(text, open)
		afterRun := open + runLength
		if runLength < minFenceLength {
			pos = afterRun
			continue
		}

		block, end, ok := parseFence(text, afterRun, runLength)
		if !ok {
			pos = afterRun
			continue
		}

		ret = appendMarkdown(ret, text[plainStart:open])
		ret = append(ret, block)
		plainStart = end
		pos = end
	}

	ret = appendMarkdown(ret, text[plainStart:])
	return ret
}

// parseFence tries to read the info line and body of a fence whose opening run of
// runLength backticks ends at infoStart. It returns the code segment and the index
// just past the closing run.
func parseFence(text string, infoStart int, runLength int) (Segment, int, bool) {
	newline := strings.IndexByte(text[infoStart:], '\n')
	if newline < 0 {
		return Segment{}, 0, false
	}
	info := text[infoStart : infoStart+newline]
	if strings.IndexByte(info, fenceChar) >= 0 {
		return Segment{}, 0, false
	}

	bodyStart := infoStart + newline + 1
	closeStart, closeEnd, ok := findClosingRun(text, bodyStart, runLength)
	if !ok {
		return Segment{}, 0, false
	}

	content := text[bodyStart:closeStart]
	fields := strings.Fields(info)
	if len(fields) == 0 {
		return CodeWithoutLanguage(content), closeEnd, true
	}
	return Code(fields[0], content), closeEnd, true
}

// findClosingRun returns the run that closes a fence whose body starts at from.
// A run of at least three backticks that starts a line and carries an info
// string opens a nested block; a bare run at least as long closes it again.
// Outside nested blocks the first run of at least minLength closes the fence,
// whether it stands alone on its line or is followed by more text.
func findClosingRun(text string, from int, minLength int) (int, int, bool) {
	nested := []int{}
	pos := from
	for pos < len(text) {
		idx := strings.IndexByte(text[pos:], fenceChar)
		if idx < 0 {
			return 0, 0, false
		}
		start := pos + idx
		length := backtickRun(text, start)
		end := start + length
		pos = end

		rest, hasNewline := restOfLine(text, end)
		blank := strings.TrimSpace(rest) == ""

		switch {
		case length >= minFenceLength && startsLine(text, from, start) &&
			!blank && hasNewline && strings.IndexByte(rest, fenceChar) < 0:
			nested = append(nested, length)
		case len(nested) > 0:
			if blank && length >= nested[len(nested)-1] {
				nested = nested[:len(nested)-1]
			}
		case length >= minLength:
			return start, end, true
		}
	}
	return 0, 0, false
}

// startsLine reports whether only indentation separates idx from the start of
// its line or from the start of the fence body.
func startsLine(text string, from int, idx int) bool {
	for i := idx - 1; i >= from; i-- {
		switch text[i] {
		case ' ', '\t':
			continue
		case '\n':
			return true
		default:
			return false
		}
	}
	return true
}

func restOfLine(text string, from int) (string, bool) {
	newline := strings.IndexByte(text[from:], '\n')
	if newline < 0 {
		return text[from:], false
	}
	return text[from : from+newline], true
}

func backtickRun(text string, start int) int {
	n := 0
	for start+n < len(text) && text[start+n] == fenceChar {
		n++
	}
	return n
}

func appendMarkdown(segments []Segment, content string) []Segment {
	if content == "" {
		return segments
	}
	if n := len(segments); n > 0 && segments[n-1].Kind == KindMarkdown {
		segments[n-1].Content += content
		return segments
	}
	return append(segments, Markdown(content))
}
