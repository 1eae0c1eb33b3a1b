package analyzer

import (
	"path/filepath"
	"strings"

	"github.com/ludo-technologies/jsfix/internal/parser"
	"github.com/ludo-technologies/jsfix/internal/source"
)

// FileContext is the immutable per-file state shared by every detector
// during one analysis call.
type FileContext struct {
	Path     string
	Language parser.Language
	Index    *source.Index

	// Base is subtracted from every parser span before it is mapped to text
	Base int
}

// IsTypeScript reports whether the file was parsed with a TypeScript grammar
func (f *FileContext) IsTypeScript() bool {
	return f.Language == parser.LanguageTypeScript || f.Language == parser.LanguageTSX
}

// IsStyleFile reports whether the file holds styling or theme definitions,
// where hardcoded colors are expected.
func (f *FileContext) IsStyleFile() bool {
	name := strings.ToLower(filepath.ToSlash(f.Path))
	for _, marker := range []string{"css", "theme", "style", "color", "palette"} {
		if strings.Contains(name, marker) {
			return true
		}
	}
	return false
}

// Offset converts a parser offset into a text offset
func (f *FileContext) Offset(parserOffset int) int {
	off := parserOffset - f.Base
	if off < 0 {
		return 0
	}
	return off
}

// Text returns the source text covered by span
func (f *FileContext) Text(span parser.Span) string {
	s := span.Shift(f.Base)
	return f.Index.Slice(s.Start, s.End)
}

// LineText returns the full line containing the parser offset
func (f *FileContext) LineText(parserOffset int) string {
	return f.Index.LineText(f.Index.LineOf(f.Offset(parserOffset)))
}

// VisitContext is the lexical context of a node, derived only from its
// ancestors. It is a value: descending produces a new context and never
// changes the parent's.
type VisitContext struct {
	File *FileContext

	AtTopLevel               bool
	InsideUpperCaseConstDecl bool
	ParentIsComputedMember   bool
	Exported                 bool

	// Negated marks the operand of a unary minus
	Negated bool

	// BindingName is the name a function-like node is bound to by its
	// parent declarator, method or default export
	BindingName string

	FunctionDepth int
	ParentKind    parser.NodeKind

	inConstDecl bool
}

// rootContext returns the context of the program node
func rootContext(file *FileContext) VisitContext {
	return VisitContext{
		File:       file,
		AtTopLevel: true,
		ParentKind: parser.NodeOther,
	}
}

// descend computes the context of child from the context of its parent
func (c VisitContext) descend(parent, child *parser.Node) VisitContext {
	next := c
	next.ParentKind = parent.Kind
	next.ParentIsComputedMember = parent.Kind == parser.NodeSubscriptExpression && child == parent.Index
	next.Negated = parent.Kind == parser.NodeUnaryExpression && parent.Operator == "-" && child == parent.Argument
	next.BindingName = ""

	if parent.IsFunction() {
		next.FunctionDepth++
		next.AtTopLevel = false
	}

	switch parent.Kind {
	case parser.NodeExportStatement:
		next.Exported = child == parent.Declaration || child == parent.Value
		if parent.Default && next.Exported {
			next.BindingName = "default"
		}
	case parser.NodeLexicalDeclaration, parser.NodeVariableDeclaration:
		// exportness flows from the statement into its declarators
	case parser.NodeVariableDeclarator:
		next.Exported = c.Exported && child == parent.Value
		if child == parent.Value {
			next.BindingName = parent.Name
		}
	default:
		next.Exported = false
	}

	switch parent.Kind {
	case parser.NodeLexicalDeclaration:
		next.inConstDecl = parent.DeclKind == "const"
	case parser.NodeVariableDeclarator:
		if c.inConstDecl && c.AtTopLevel && child == parent.Value && isUpperCaseName(parent.Name) {
			next.InsideUpperCaseConstDecl = true
		}
		next.inConstDecl = false
	default:
		next.inConstDecl = false
	}

	return next
}

// isUpperCaseName reports whether name is an ALL_CAPS constant name
func isUpperCaseName(name string) bool {
	if name == "" {
		return false
	}
	hasLetter := false
	for i, r := range name {
		switch {
		case r >= 'A' && r <= 'Z':
			hasLetter = true
		case r == '_' || r == '$':
		case r >= '0' && r <= '9':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return hasLetter
}
