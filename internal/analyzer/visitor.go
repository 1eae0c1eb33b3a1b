// Package analyzer runs every detector over a file's syntax tree in a
// single depth-first pass and turns the findings into quality issues.
package analyzer

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/ludo-technologies/jsfix/domain"
	"github.com/ludo-technologies/jsfix/internal/parser"
	"github.com/ludo-technologies/jsfix/internal/source"
	"go.opentelemetry.io/otel/attribute"
)

// Options configures an Analyzer
type Options struct {
	// Disabled turns detector families off
	Disabled map[Family]bool

	// Skip lists glob patterns of files each family ignores
	Skip map[Family][]string

	// AllowedNumbers overrides DefaultAllowedNumbers when non-empty
	AllowedNumbers []float64

	// TolerateSyntaxErrors analyzes partial trees instead of skipping the file
	TolerateSyntaxErrors bool

	// Thresholds and per-path overrides for function metrics
	Thresholds Thresholds
	Overrides  []ThresholdOverride

	Logger *slog.Logger
}

// Result is the raw output of one analysis pass.
// Detection offsets are already corrected into the file text.
type Result struct {
	File        *FileContext
	Detections  []Detection
	Functions   []domain.FunctionInfo
	ParseFailed bool
	ParseErr    error
}

// Analyzer owns the detector registry. It holds no per-file state and is
// safe for concurrent use.
type Analyzer struct {
	registry *Registry
	opts     Options
	logger   *slog.Logger
}

// NewAnalyzer registers every enabled detector family
func NewAnalyzer(opts Options) (*Analyzer, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Thresholds == (Thresholds{}) {
		opts.Thresholds = DefaultThresholds()
	}
	if err := validateOverrides(opts.Overrides); err != nil {
		return nil, err
	}

	registry := NewRegistry()
	candidates := []Detector{
		SuspiciousCallDetector{},
		TypeEscapeDetector{},
		NewHardcodedLiteralDetector(opts.AllowedNumbers),
		LegacyPatternDetector{},
		ReturnTypeDetector{},
	}
	for _, d := range candidates {
		if !opts.Disabled[d.Family()] {
			registry.Register(d)
		}
	}
	for family, patterns := range opts.Skip {
		if err := registry.SkipFiles(family, patterns...); err != nil {
			return nil, err
		}
	}

	return &Analyzer{registry: registry, opts: opts, logger: logger}, nil
}

// Analyze parses text once and runs every detector over it in one traversal.
// A parse failure yields no tree-based detections; the suppression scan still runs.
func (a *Analyzer) Analyze(ctx context.Context, path, text string) *Result {
	start := time.Now()
	idx := source.NewIndex(text)
	file := &FileContext{
		Path:     path,
		Language: parser.LanguageForFile(path),
		Index:    idx,
	}
	result := &Result{File: file}

	ctx, span := startAnalyzeSpan(ctx, file.Language.String(), path)
	defer span.End()

	tree := parser.ParseForLanguage(ctx, path, []byte(text), a.opts.TolerateSyntaxErrors)
	if tree.Empty() {
		result.ParseFailed = true
		result.ParseErr = tree.Err
		a.logger.Debug("parse failed, skipping tree detectors",
			slog.String("file", path),
			slog.Any("error", tree.Err))
	} else {
		file.Base = BaseOffset(tree.Root, text)
		v := &visitor{
			file:     file,
			dispatch: a.registry.ForFile(path),
		}
		v.visit(tree.Root, rootContext(file))
		result.Detections = v.detections
		result.Functions = v.functions
	}

	if !a.opts.Disabled[FamilySuppressions] && !a.registry.skipped(FamilySuppressions, slashPath(path)) {
		result.Detections = append(result.Detections, ScanSuppressions(idx)...)
	}
	sort.SliceStable(result.Detections, func(i, j int) bool {
		return result.Detections[i].Offset < result.Detections[j].Offset
	})

	span.SetAttributes(
		attribute.Int("analyze.detections", len(result.Detections)),
		attribute.Bool("analyze.parse_failed", result.ParseFailed),
	)
	recordAnalysis(ctx, file.Language.String(), time.Since(start), len(result.Detections), result.ParseFailed)
	return result
}

// AnalyzeFile runs Analyze and converts the result into issues, including
// function metric issues against the thresholds that apply to path.
func (a *Analyzer) AnalyzeFile(ctx context.Context, path, text string) domain.FileAnalysis {
	result := a.Analyze(ctx, path, text)
	issues := BuildIssues(path, result)
	thresholds := ResolveThresholds(path, a.opts.Thresholds, a.opts.Overrides)
	issues = append(issues, FunctionIssues(path, result.File.Index, result.Functions, thresholds)...)
	sortIssues(issues)

	return domain.FileAnalysis{
		File:        path,
		Issues:      issues,
		Functions:   result.Functions,
		TotalLines:  result.File.Index.LineCount(),
		ParseFailed: result.ParseFailed,
	}
}

// visitor is the per-file traversal state. It lives on the stack of one
// Analyze call and is never shared.
type visitor struct {
	file       *FileContext
	dispatch   *dispatchTable
	scopes     scopeStack
	detections []Detection
	functions  []domain.FunctionInfo
}

// visit handles node with its already computed context, then recurses
func (v *visitor) visit(node *parser.Node, ctx VisitContext) {
	isFunction := node.IsFunction()
	if isFunction {
		v.scopes.push(node, ctx)
	} else if isDecisionPoint(node) {
		v.scopes.increment()
	}

	if node.Span.Len() > 0 {
		for _, d := range v.dispatch[node.Kind] {
			if det, ok := d.Detect(node, ctx); ok {
				det.Offset = v.file.Offset(det.Offset)
				v.detections = append(v.detections, det)
			}
		}
	}

	for _, child := range node.Children {
		v.visit(child, ctx.descend(node, child))
	}

	if isFunction {
		v.finishFunction(node, v.scopes.pop())
	}
}

// finishFunction turns a closed scope into FunctionInfo
func (v *visitor) finishFunction(node *parser.Node, scope *functionScope) {
	if scope == nil {
		return
	}
	span := node.Span.Shift(v.file.Base)
	idx := v.file.Index
	startLine := idx.LineOf(span.Start)
	endLine := idx.LineOf(span.End - 1)
	if endLine < startLine {
		endLine = startLine
	}

	v.functions = append(v.functions, domain.FunctionInfo{
		Name:       scope.name,
		StartLine:  startLine,
		EndLine:    endLine,
		StartByte:  span.Start,
		EndByte:    span.End,
		ParamCount: node.ParamCount(),
		IsAsync:    node.Async,
		IsExported: scope.exported,
		Complexity: scope.complexity,
		LineCount:  endLine - startLine + 1,
	})
}

// BaseOffset returns the constant by which the parser's spans are shifted
// from offsets into text. It is derived from the first top-level node,
// which must start right after any leading whitespace and comments.
func BaseOffset(root *parser.Node, text string) int {
	if root == nil || len(root.Children) == 0 {
		return 0
	}
	base := root.Children[0].Span.Start - leadingTriviaLen(text)
	if base < 0 {
		return 0
	}
	return base
}

// leadingTriviaLen returns the length of the whitespace, comments (HTML-like
// ones included) and byte order mark that precede the first token of text.
func leadingTriviaLen(text string) int {
	i := 0
	if len(text) >= 3 && text[:3] == "\xef\xbb\xbf" {
		i = 3
	}
	for i < len(text) {
		switch c := text[i]; {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f' || c == '\v':
			i++
		case c == '/' && i+1 < len(text) && text[i+1] == '/',
			strings.HasPrefix(text[i:], "<!--"),
			strings.HasPrefix(text[i:], "-->"):
			// HTML-like comments run to the end of the line
			for i < len(text) && text[i] != '\n' {
				i++
			}
		case c == '/' && i+1 < len(text) && text[i+1] == '*':
			end := strings.Index(text[i+2:], "*/")
			if end < 0 {
				return len(text)
			}
			i += 2 + end + 2
		default:
			return i
		}
	}
	return i
}
