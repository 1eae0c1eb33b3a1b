package fixer

import (
	"regexp"
	"strings"

	"github.com/ludo-technologies/jsfix/domain"
	"github.com/ludo-technologies/jsfix/internal/source"
)

var (
	debuggerToken   = regexp.MustCompile(`\bdebugger\b`)
	debuggerOnly    = regexp.MustCompile(`^\s*debugger\s*;?\s*$`)
	debugCallPrefix = regexp.MustCompile(`^\s*(?:console\.[A-Za-z]+|(?:(?:window|globalThis|self)\.)?(?:alert|confirm|prompt))\s*\(`)
)

// RemoveDebugFixer deletes debug output, dialogs and debugger statements
type RemoveDebugFixer struct{}

func (RemoveDebugFixer) ID() string { return "remove-debug" }

func (RemoveDebugFixer) Fix(issue domain.QualityIssue, src *source.Index) *domain.FixOperation {
	line, ok := lineOf(issue, src)
	if !ok {
		return nil
	}

	if issue.Rule == "no-debugger" {
		loc, ok := targetMatch(issue, debuggerToken, line)
		if !ok {
			return nil
		}
		if debuggerOnly.MatchString(line) {
			return deleteLine(issue, line)
		}
		return replaceLine(issue, line, line[:loc[0]]+line[loc[1]:])
	}

	// A console or dialog call is only removed when it is the whole statement;
	// its value may be used anywhere else.
	if isSoleCallStatement(line) {
		return deleteLine(issue, line)
	}
	return nil
}

// isSoleCallStatement reports whether line holds exactly one debug or
// dialog call statement and nothing else.
func isSoleCallStatement(line string) bool {
	loc := debugCallPrefix.FindStringIndex(line)
	if loc == nil {
		return false
	}
	end := closingParen(line, loc[1]-1)
	if end < 0 {
		return false
	}
	rest := strings.TrimSpace(line[end+1:])
	return rest == "" || rest == ";"
}

// closingParen returns the index of the parenthesis matching the one at
// open, skipping string literals, or -1 when it does not close on the line.
func closingParen(line string, open int) int {
	depth := 0
	var quote byte
	for i := open; i < len(line); i++ {
		c := line[i]
		if quote != 0 {
			switch c {
			case '\\':
				i++
			case quote:
				quote = 0
			}
			continue
		}
		switch c {
		case '\'', '"', '`':
			quote = c
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}
