package fixer

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/ludo-technologies/jsfix/domain"
	"github.com/ludo-technologies/jsfix/internal/source"
)

var (
	requireDefault = regexp.MustCompile(`^(\s*)(?:const|let|var)\s+([A-Za-z_$][\w$]*)\s*=\s*require\(\s*(['"])([^'"]+)['"]\s*\)\s*;?\s*$`)
	requireNamed   = regexp.MustCompile(`^(\s*)(?:const|let|var)\s*\{([^}]*)\}\s*=\s*require\(\s*(['"])([^'"]+)['"]\s*\)\s*;?\s*$`)
	requireBare    = regexp.MustCompile(`^(\s*)require\(\s*(['"])([^'"]+)['"]\s*\)\s*;?\s*$`)
	namedBinding   = regexp.MustCompile(`^([A-Za-z_$][\w$]*)(?:\s*:\s*([A-Za-z_$][\w$]*))?$`)
)

// RequireToImportFixer rewrites single-line CommonJS requires as ES imports.
// Files that are CommonJS by extension are left alone.
type RequireToImportFixer struct{}

func (RequireToImportFixer) ID() string { return "require-to-import" }

func (RequireToImportFixer) Fix(issue domain.QualityIssue, src *source.Index) *domain.FixOperation {
	switch strings.ToLower(filepath.Ext(issue.File)) {
	case ".cjs", ".cts":
		return nil
	}
	line, ok := lineOf(issue, src)
	if !ok {
		return nil
	}

	if m := requireDefault.FindStringSubmatch(line); m != nil {
		indent, name, quote, module := m[1], m[2], m[3], m[4]
		return replaceLine(issue, line, indent+"import "+name+" from "+quote+module+quote+";")
	}

	if m := requireNamed.FindStringSubmatch(line); m != nil {
		indent, bindings, quote, module := m[1], m[2], m[3], m[4]
		names, ok := importBindings(bindings)
		if !ok {
			return nil
		}
		return replaceLine(issue, line, indent+"import { "+strings.Join(names, ", ")+" } from "+quote+module+quote+";")
	}

	if m := requireBare.FindStringSubmatch(line); m != nil {
		indent, quote, module := m[1], m[2], m[3]
		return replaceLine(issue, line, indent+"import "+quote+module+quote+";")
	}

	return nil
}

// importBindings converts destructuring entries into import specifiers.
// Defaults, nested patterns and rest elements have no import form.
func importBindings(list string) ([]string, bool) {
	var names []string
	for _, part := range strings.Split(list, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		m := namedBinding.FindStringSubmatch(part)
		if m == nil {
			return nil, false
		}
		if m[2] != "" && m[2] != m[1] {
			names = append(names, m[1]+" as "+m[2])
		} else {
			names = append(names, m[1])
		}
	}
	return names, len(names) > 0
}
