package analyzer

import (
	"strings"

	"github.com/ludo-technologies/jsfix/internal/source"
)

type suppressionDirective struct {
	token string
	kind  DetectionKind
}

// Order matters: the first directive found on a line wins.
var suppressionDirectives = []suppressionDirective{
	{"@ts-ignore", DetectTSIgnore},
	{"@ts-nocheck", DetectTSNoCheck},
	{"@ts-expect-error", DetectTSExpectError},
	{"eslint-disable", DetectESLintDisable},
}

// ScanSuppressions scans text line by line for comment directives that
// silence the type checker or linter. It does not need a syntax tree and
// runs even when parsing failed.
func ScanSuppressions(idx *source.Index) []Detection {
	var detections []Detection
	for line := 1; line <= idx.LineCount(); line++ {
		text := idx.LineText(line)
		if !strings.Contains(text, "@ts-") && !strings.Contains(text, "eslint-disable") {
			continue
		}
		start, _, _ := idx.LineSpan(line)
		for _, d := range suppressionDirectives {
			pos := strings.Index(text, d.token)
			if pos < 0 || !inComment(text, pos) {
				continue
			}
			detections = append(detections, Detection{
				Kind:    d.kind,
				Offset:  start + pos,
				Payload: Payload{Name: d.token, Text: strings.TrimSpace(text)},
			})
			break
		}
	}
	return detections
}

// inComment reports whether the directive at pos follows a comment marker
// that is not itself inside a string literal on the same line.
func inComment(line string, pos int) bool {
	marker := lastCommentMarker(line[:pos])
	if marker < 0 {
		// continuation line of a block comment: "* @ts-ignore"
		trimmed := strings.TrimSpace(line[:pos])
		return trimmed == "*"
	}
	return !insideString(line[:marker])
}

// lastCommentMarker returns the index of the last "//" or "/*" in s, or -1
func lastCommentMarker(s string) int {
	lineComment := strings.LastIndex(s, "//")
	blockComment := strings.LastIndex(s, "/*")
	if lineComment > blockComment {
		return lineComment
	}
	return blockComment
}

// insideString reports whether the end of prefix lies inside an unterminated
// quote. Escaped quotes do not count.
func insideString(prefix string) bool {
	var open byte
	for i := 0; i < len(prefix); i++ {
		c := prefix[i]
		if c == '\\' {
			i++
			continue
		}
		switch {
		case open == 0 && (c == '\'' || c == '"' || c == '`'):
			open = c
		case open != 0 && c == open:
			open = 0
		}
	}
	return open != 0
}
