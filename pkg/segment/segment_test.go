package segment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplit(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []Segment
	}{
		{
			name:     "empty input",
			input:    "",
			expected: []Segment{},
		},
		{
			name:     "plain text only",
			input:    "Machine learning is a subset of AI.",
			expected: []Segment{Markdown("Machine learning is a subset of AI.")},
		},
		{
			name:  "inline fence with language",
			input: "plain ```python\nprint(1)\n``` more",
			expected: []Segment{
				Markdown("plain "),
				Code("python", "print(1)\n"),
				Markdown(" more"),
			},
		},
		{
			name:     "unterminated fence stays plain",
			input:    "unterminated ```js\ncode",
			expected: []Segment{Markdown("unterminated ```js\ncode")},
		},
		{
			name:     "empty fence",
			input:    "```\n```",
			expected: []Segment{CodeWithoutLanguage("")},
		},
		{
			name:  "fence without language",
			input: "Run:\n```\nls -la\n```\n",
			expected: []Segment{
				Markdown("Run:\n"),
				CodeWithoutLanguage("ls -la\n"),
				Markdown("\n"),
			},
		},
		{
			name:  "info string keeps only the first word",
			input: "```go title=main.go\npackage main\n```",
			expected: []Segment{
				Code("go", "package main\n"),
			},
		},
		{
			name:  "multiple blocks",
			input: "A\n```py\na = 1\n```\nB\n```sh\necho hi\n```",
			expected: []Segment{
				Markdown("A\n"),
				Code("py", "a = 1\n"),
				Markdown("\nB\n"),
				Code("sh", "echo hi\n"),
			},
		},
		{
			name:  "outer fence wins over a shorter nested fence",
			input: "````md\n```go\nx := 1\n```\n````",
			expected: []Segment{
				Code("md", "```go\nx := 1\n```\n"),
			},
		},
		{
			name:  "nested fence of the same length stays in the outer block",
			input: "```md\n```js\nx\n```\n```",
			expected: []Segment{
				Code("md", "```js\nx\n```\n"),
			},
		},
		{
			name:  "two nested fences inside one block",
			input: "Example:\n```markdown\n```go\na\n```\n\n```sh\nb\n```\n```\ndone",
			expected: []Segment{
				Markdown("Example:\n"),
				Code("markdown", "```go\na\n```\n\n```sh\nb\n```\n"),
				Markdown("\ndone"),
			},
		},
		{
			name:  "indented nested fence",
			input: "```md\n  ```py\n  x\n  ```\n```",
			expected: []Segment{
				Code("md", "  ```py\n  x\n  ```\n"),
			},
		},
		{
			name:  "unclosed outer fence leaves the inner block",
			input: "```md\n```js\nx\n```",
			expected: []Segment{
				Markdown("```md\n"),
				Code("js", "x\n"),
			},
		},
		{
			name:  "back to back blocks are not nested",
			input: "```py\na\n```\n```sh\nb\n```",
			expected: []Segment{
				Code("py", "a\n"),
				Markdown("\n"),
				Code("sh", "b\n"),
			},
		},
		{
			name:     "inline code spans are plain",
			input:    "use `fmt.Println` or ``x``",
			expected: []Segment{Markdown("use `fmt.Println` or ``x``")},
		},
		{
			name:     "triple backticks on one line are not a fence",
			input:    "say ```hello``` please",
			expected: []Segment{Markdown("say ```hello``` please")},
		},
		{
			name:     "opening fence without newline",
			input:    "trailing ```",
			expected: []Segment{Markdown("trailing ```")},
		},
		{
			name:  "unterminated fence after a closed one",
			input: "```go\nx\n```\nthen ```js\ny",
			expected: []Segment{
				Code("go", "x\n"),
				Markdown("\nthen ```js\ny"),
			},
		},
		{
			name:  "closing run may be longer than the opening run",
			input: "```c\nint x;\n`````",
			expected: []Segment{
				Code("c", "int x;\n"),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Split(tt.input))
		})
	}
}

func TestSplitIsDeterministic(t *testing.T) {
	input := "intro\n```python\nimport numpy as np\n```\noutro ```js\nnot closed"
	first := Split(input)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Split(input))
	}
}

func TestSplitNeverDropsText(t *testing.T) {
	inputs := []string{
		"unterminated ```js\ncode",
		"a ``` b ``` c",
		"````\n```\n",
		"```",
		"``",
		"x\n```\n\n```\ny",
	}
	for _, input := range inputs {
		segments := Split(input)
		assert.Equal(t, input, Join(segments), "input %q", input)
	}
}

func TestSplitMarkdownTextIsStable(t *testing.T) {
	inputs := []string{
		"plain ```python\nprint(1)\n``` more",
		"What is **ML**?\n\n- supervised\n- unsupervised",
		"A\n```py\na = 1\n```\nB\n```sh\necho hi\n```\nC",
		"unterminated ```js\ncode",
	}
	for _, input := range inputs {
		plain := MarkdownText(Split(input))
		segments := Split(plain)
		if plain == "" {
			assert.Empty(t, segments)
			continue
		}
		assert.Equal(t, []Segment{Markdown(plain)}, segments, "input %q", input)
		assert.Equal(t, segments, Split(MarkdownText(segments)))
	}
}

func TestJoinRoundTrip(t *testing.T) {
	inputs := []string{
		"plain ```python\nprint(1)\n``` more",
		"```\n```",
		"````md\n```go\nx := 1\n```\n````",
		"```md\n```js\nx\n```\n```",
		"A\n```py\na = 1\n```\nB",
	}
	for _, input := range inputs {
		segments := Split(input)
		assert.Equal(t, segments, Split(Join(segments)), "input %q", input)
	}
}

func TestJoinLengthensFenceAroundBackticks(t *testing.T) {
	joined := Join([]Segment{Code("md", "```go\nx\n```\n")})
	assert.Equal(t, "````md\n```go\nx\n```\n````", joined)
}

func TestCodeBlocks(t *testing.T) {
	segments := Split("a\n```py\n1\n```\nb\n```\n2\n```")
	blocks := CodeBlocks(segments)
	require.Len(t, blocks, 2)
	assert.Equal(t, "py", blocks[0].Language)
	assert.True(t, blocks[0].HasLanguage)
	assert.False(t, blocks[1].HasLanguage)
	assert.Equal(t, "2\n", blocks[1].Content)

	last, ok := LastCodeBlock("a\n```py\n1\n```\nb\n```\n2\n```")
	require.True(t, ok)
	assert.Equal(t, "2\n", last.Content)

	_, ok = LastCodeBlock("no code here")
	assert.False(t, ok)
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "markdown", KindMarkdown.String())
	assert.Equal(t, "code", KindCode.String())
}
