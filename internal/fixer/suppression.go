package fixer

import (
	"strings"

	"github.com/ludo-technologies/jsfix/domain"
	"github.com/ludo-technologies/jsfix/internal/source"
)

var suppressionTokens = map[string]string{
	"no-ts-ignore":       "@ts-ignore",
	"no-ts-nocheck":      "@ts-nocheck",
	"no-ts-expect-error": "@ts-expect-error",
	"no-eslint-disable":  "eslint-disable",
}

// RemoveSuppressionFixer removes type checker and linter suppression comments
type RemoveSuppressionFixer struct{}

func (RemoveSuppressionFixer) ID() string { return "remove-suppression" }

func (RemoveSuppressionFixer) Fix(issue domain.QualityIssue, src *source.Index) *domain.FixOperation {
	line, ok := lineOf(issue, src)
	if !ok {
		return nil
	}
	token, ok := suppressionTokens[issue.Rule]
	if !ok {
		return nil
	}
	pos := strings.Index(line, token)
	if issue.Column > 0 {
		pos = issue.Column - 1
		if pos >= len(line) || !strings.HasPrefix(line[pos:], token) {
			return nil
		}
	}
	if pos < 0 {
		return nil
	}

	lineComment := strings.LastIndex(line[:pos], "//")
	blockComment := strings.LastIndex(line[:pos], "/*")

	switch {
	case lineComment > blockComment:
		code := strings.TrimRight(line[:lineComment], " \t")
		if strings.TrimSpace(code) == "" {
			return deleteLine(issue, line)
		}
		return replaceLine(issue, line, code)

	case blockComment >= 0:
		closing := strings.Index(line[pos:], "*/")
		if closing < 0 {
			// the comment continues on later lines
			return nil
		}
		after := line[pos+closing+2:]
		before := strings.TrimRight(line[:blockComment], " \t")
		if strings.TrimSpace(before) == "" && strings.TrimSpace(after) == "" {
			return deleteLine(issue, line)
		}
		if strings.TrimSpace(before) == "" {
			return replaceLine(issue, line, line[:len(line)-len(strings.TrimLeft(line, " \t"))]+strings.TrimLeft(after, " \t"))
		}
		return replaceLine(issue, line, before+after)

	default:
		// " * @ts-ignore" inside a multi-line block comment
		if strings.TrimSpace(line[:pos]) == "*" && !strings.Contains(line, "*/") {
			return deleteLine(issue, line)
		}
		return nil
	}
}
