// Package source maps byte offsets in a file's text to line numbers.
package source

import "sort"

// Index is the line-start table of one version of a file's text.
// It is immutable; build a new Index whenever the text changes.
type Index struct {
	text       string
	lineStarts []int
}

// NewIndex builds the line-start table for text.
// lineStarts[0] is always 0 and the table is strictly increasing.
// A trailing newline does not open a new line.
func NewIndex(text string) *Index {
	starts := make([]int, 1, 64)
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' && i+1 < len(text) {
			starts = append(starts, i+1)
		}
	}
	return &Index{text: text, lineStarts: starts}
}

// Text returns the indexed text
func (x *Index) Text() string {
	return x.text
}

// Len returns the text length in bytes
func (x *Index) Len() int {
	return len(x.text)
}

// LineCount returns the number of lines, at least 1
func (x *Index) LineCount() int {
	return len(x.lineStarts)
}

// LineStarts returns a copy of the line-start table
func (x *Index) LineStarts() []int {
	out := make([]int, len(x.lineStarts))
	copy(out, x.lineStarts)
	return out
}

// LineOf returns the 1-based line containing offset, clamped to
// [1, LineCount()] for offsets outside the text.
func (x *Index) LineOf(offset int) int {
	if offset <= 0 {
		return 1
	}
	// first line start greater than offset, the line is the one before it
	i := sort.Search(len(x.lineStarts), func(i int) bool {
		return x.lineStarts[i] > offset
	})
	return x.ClampLine(i)
}

// ClampLine clamps line to [1, LineCount()]
func (x *Index) ClampLine(line int) int {
	if line < 1 {
		return 1
	}
	if n := x.LineCount(); line > n {
		return n
	}
	return line
}

// ValidLine reports whether line exists in the text
func (x *Index) ValidLine(line int) bool {
	return line >= 1 && line <= x.LineCount()
}

// LineSpan returns the half-open byte range of line, including its
// line terminator when it has one. ok is false for lines outside the text.
func (x *Index) LineSpan(line int) (start, end int, ok bool) {
	if !x.ValidLine(line) {
		return 0, 0, false
	}
	start = x.lineStarts[line-1]
	if line < len(x.lineStarts) {
		end = x.lineStarts[line]
	} else {
		end = len(x.text)
	}
	return start, end, true
}

// LineText returns line without its terminator ("\n" or "\r\n")
func (x *Index) LineText(line int) string {
	start, end, ok := x.LineSpan(line)
	if !ok {
		return ""
	}
	s := x.text[start:end]
	return s[:len(s)-len(terminator(s))]
}

// LineEnding returns the terminator of line: "\r\n", "\n", or "" for a
// final line without one.
func (x *Index) LineEnding(line int) string {
	start, end, ok := x.LineSpan(line)
	if !ok {
		return ""
	}
	return terminator(x.text[start:end])
}

// Slice returns text[start:end] with both bounds clamped into the text
func (x *Index) Slice(start, end int) string {
	if start < 0 {
		start = 0
	}
	if end > len(x.text) {
		end = len(x.text)
	}
	if start >= end {
		return ""
	}
	return x.text[start:end]
}

func terminator(s string) string {
	switch {
	case len(s) >= 2 && s[len(s)-2:] == "\r\n":
		return "\r\n"
	case len(s) >= 1 && s[len(s)-1] == '\n':
		return "\n"
	default:
		return ""
	}
}
