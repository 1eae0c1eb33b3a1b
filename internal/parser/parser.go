package parser

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

// ErrSyntax is reported when the source contains syntax errors
var ErrSyntax = errors.New("syntax error")

// Language selects the tree-sitter grammar
type Language int

const (
	LanguageJavaScript Language = iota
	LanguageTypeScript
	LanguageTSX
)

// String returns the language name
func (l Language) String() string {
	switch l {
	case LanguageTypeScript:
		return "typescript"
	case LanguageTSX:
		return "tsx"
	default:
		return "javascript"
	}
}

// LanguageForFile picks the grammar from the file extension.
// JSX is handled by the JavaScript grammar.
func LanguageForFile(filename string) Language {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".ts", ".mts", ".cts":
		return LanguageTypeScript
	case ".tsx":
		return LanguageTSX
	default:
		return LanguageJavaScript
	}
}

func (l Language) grammar() *sitter.Language {
	switch l {
	case LanguageTypeScript:
		return typescript.GetLanguage()
	case LanguageTSX:
		return tsx.GetLanguage()
	default:
		return javascript.GetLanguage()
	}
}

// Tree is the result of parsing one file.
// A failed parse has a nil Root and a non-nil Err; it is never a panic.
type Tree struct {
	Root     *Node
	Language Language
	Err      error
}

// Empty reports whether the parse produced no tree
func (t *Tree) Empty() bool {
	return t == nil || t.Root == nil
}

// Parser wraps a tree-sitter parser for one language
type Parser struct {
	parser   *sitter.Parser
	language Language

	// TolerateErrors keeps trees that contain ERROR nodes instead of
	// reporting them as syntax failures.
	TolerateErrors bool
}

// NewParser creates a parser for the given language
func NewParser(language Language) *Parser {
	p := sitter.NewParser()
	p.SetLanguage(language.grammar())
	return &Parser{
		parser:   p,
		language: language,
	}
}

// Language returns the grammar this parser uses
func (p *Parser) Language() Language {
	return p.language
}

// Parse parses source and converts it to our tree.
// Syntax errors are swallowed into a Tree with no Root.
func (p *Parser) Parse(ctx context.Context, filename string, source []byte) *Tree {
	result := &Tree{Language: p.language}

	tree, err := p.parser.ParseCtx(ctx, nil, source)
	if err != nil || tree == nil {
		if err == nil {
			err = ErrSyntax
		}
		result.Err = fmt.Errorf("failed to parse file %s: %w", filename, err)
		return result
	}
	defer tree.Close()

	rootNode := tree.RootNode()
	if rootNode == nil {
		result.Err = fmt.Errorf("no root node in parse tree for %s: %w", filename, ErrSyntax)
		return result
	}
	if rootNode.HasError() && !p.TolerateErrors {
		result.Err = fmt.Errorf("%s: %w", filename, ErrSyntax)
		return result
	}

	result.Root = NewASTBuilder(source).Build(rootNode)
	return result
}

// Close closes the parser and frees resources
func (p *Parser) Close() {
	if p.parser != nil {
		p.parser.Close()
	}
}

// ParseForLanguage selects the grammar from the file extension and parses source
func ParseForLanguage(ctx context.Context, filename string, source []byte, tolerateErrors bool) *Tree {
	p := NewParser(LanguageForFile(filename))
	defer p.Close()
	p.TolerateErrors = tolerateErrors
	return p.Parse(ctx, filename, source)
}
