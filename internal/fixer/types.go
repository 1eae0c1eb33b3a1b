package fixer

import (
	"regexp"

	"github.com/ludo-technologies/jsfix/domain"
	"github.com/ludo-technologies/jsfix/internal/source"
)

var (
	anyType      = regexp.MustCompile(`(:\s*|\bas\s+|<)any\b`)
	functionBody = regexp.MustCompile(`\)\s*(\{|=>)`)
)

// AnyToUnknownFixer replaces the any annotation or cast the issue points at
// with unknown
type AnyToUnknownFixer struct{}

func (AnyToUnknownFixer) ID() string { return "any-to-unknown" }

func (AnyToUnknownFixer) Fix(issue domain.QualityIssue, src *source.Index) *domain.FixOperation {
	line, ok := lineOf(issue, src)
	if !ok {
		return nil
	}
	loc, ok := targetMatch(issue, anyType, line)
	if !ok {
		return nil
	}
	replaced := anyType.ReplaceAllString(line[loc[0]:loc[1]], "${1}unknown")
	return replaceLine(issue, line, line[:loc[0]]+replaced+line[loc[1]:])
}

// AddReturnTypeFixer annotates exported functions that return nothing.
// It only acts on the type the analyzer proved safe, passed as the issue hint.
type AddReturnTypeFixer struct{}

func (AddReturnTypeFixer) ID() string { return "add-return-type" }

func (AddReturnTypeFixer) Fix(issue domain.QualityIssue, src *source.Index) *domain.FixOperation {
	if issue.Hint == "" {
		return nil
	}
	line, ok := lineOf(issue, src)
	if !ok {
		return nil
	}

	matches := functionBody.FindAllStringIndex(line, -1)
	if len(matches) != 1 {
		return nil
	}
	at := matches[0][0] + 1
	return replaceLine(issue, line, line[:at]+": "+issue.Hint+line[at:])
}
