// Package fixer turns quality issues into declarative fix operations.
// A fixer either proposes one operation or declines with nil; declining is
// never an error.
package fixer

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/ludo-technologies/jsfix/domain"
	"github.com/ludo-technologies/jsfix/internal/source"
)

// Fixer proposes a fix for issues carrying its id
type Fixer interface {
	ID() string
	Fix(issue domain.QualityIssue, src *source.Index) *domain.FixOperation
}

// Registry maps fixer ids to fixers
type Registry struct {
	fixers map[string]Fixer
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{fixers: make(map[string]Fixer)}
}

// DefaultRegistry returns a registry holding every built-in fixer
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(RemoveDebugFixer{})
	r.Register(RemoveSuppressionFixer{})
	r.Register(AnyToUnknownFixer{})
	r.Register(AddReturnTypeFixer{})
	r.Register(RequireToImportFixer{})
	return r
}

// Register adds f. Registering an id twice is a programming error and panics.
func (r *Registry) Register(f Fixer) {
	if _, exists := r.fixers[f.ID()]; exists {
		panic(fmt.Sprintf("fixer %q registered twice", f.ID()))
	}
	r.fixers[f.ID()] = f
}

// Get returns the fixer registered under id
func (r *Registry) Get(id string) (Fixer, bool) {
	f, ok := r.fixers[id]
	return f, ok
}

// IDs returns the registered fixer ids in sorted order
func (r *Registry) IDs() []string {
	ids := make([]string, 0, len(r.fixers))
	for id := range r.fixers {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// lineOf returns the issue's line text, or false when the line is out of range
func lineOf(issue domain.QualityIssue, src *source.Index) (string, bool) {
	if src == nil || !src.ValidLine(issue.Line) {
		return "", false
	}
	return src.LineText(issue.Line), true
}

// replaceLine builds a replace-line operation guarded by the current line text
func replaceLine(issue domain.QualityIssue, oldLine, newLine string) *domain.FixOperation {
	if newLine == oldLine {
		return nil
	}
	return &domain.FixOperation{
		Action:  domain.ActionReplaceLine,
		File:    issue.File,
		Line:    issue.Line,
		OldCode: oldLine,
		NewCode: domain.Code(newLine),
	}
}

// deleteLine builds a delete-line operation guarded by the current line text
func deleteLine(issue domain.QualityIssue, oldLine string) *domain.FixOperation {
	return &domain.FixOperation{
		Action:  domain.ActionDeleteLine,
		File:    issue.File,
		Line:    issue.Line,
		OldCode: oldLine,
	}
}

// targetMatch returns the match of re that the issue points at. With a known
// column that is the code match covering it; without one the line must hold
// exactly one code match. Text inside strings and comments never matches.
func targetMatch(issue domain.QualityIssue, re *regexp.Regexp, line string) ([]int, bool) {
	mask := codeMask(line)
	var matches [][]int
	for _, m := range re.FindAllStringIndex(line, -1) {
		if m[0] < len(mask) && mask[m[0]] {
			matches = append(matches, m)
		}
	}

	if issue.Column > 0 {
		col := issue.Column - 1
		for _, m := range matches {
			if m[0] <= col && col < m[1] {
				return m, true
			}
		}
		return nil, false
	}
	if len(matches) != 1 {
		return nil, false
	}
	return matches[0], true
}

// codeMask marks the bytes of line that are code rather than string literal
// or comment text. Template literals count as strings.
func codeMask(line string) []bool {
	mask := make([]bool, len(line))
	var quote byte
	for i := 0; i < len(line); i++ {
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
		switch {
		case c == '\'' || c == '"' || c == '`':
			quote = c
		case c == '/' && i+1 < len(line) && line[i+1] == '/':
			return mask
		case c == '/' && i+1 < len(line) && line[i+1] == '*':
			end := strings.Index(line[i+2:], "*/")
			if end < 0 {
				return mask
			}
			i += end + 3
		default:
			mask[i] = true
		}
	}
	return mask
}
