package analyzer

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/ludo-technologies/jsfix/domain"
	"github.com/ludo-technologies/jsfix/internal/source"
)

// MaxSnippetLength bounds the preview of the offending line
const MaxSnippetLength = 80

// Fixer ids attached to issues
const (
	FixerRemoveDebug       = "remove-debug"
	FixerRemoveSuppression = "remove-suppression"
	FixerAnyToUnknown      = "any-to-unknown"
	FixerAddReturnType     = "add-return-type"
	FixerRequireToImport   = "require-to-import"
)

// rule describes how a detection kind renders as an issue
type rule struct {
	id       string
	severity domain.Severity
	category domain.Category
	fixerID  string
	message  func(p Payload) string
	suggest  func(p Payload) string
}

func fixed(s string) func(Payload) string {
	return func(Payload) string { return s }
}

var rules = map[DetectionKind]rule{
	DetectConsoleCall: {
		id: "no-console", severity: domain.SeverityWarning, category: domain.CategoryLint, fixerID: FixerRemoveDebug,
		message: func(p Payload) string { return fmt.Sprintf("console.%s call left in code", p.Name) },
		suggest: fixed("Remove the console call or route it through a logger"),
	},
	DetectDebugger: {
		id: "no-debugger", severity: domain.SeverityError, category: domain.CategoryLint, fixerID: FixerRemoveDebug,
		message: fixed("debugger statement left in code"),
		suggest: fixed("Remove the debugger statement"),
	},
	DetectDialogCall: {
		id: "no-alert", severity: domain.SeverityWarning, category: domain.CategoryLint, fixerID: FixerRemoveDebug,
		message: func(p Payload) string { return fmt.Sprintf("%s() dialog call blocks the page", p.Name) },
		suggest: fixed("Replace the browser dialog with an in-app notification"),
	},
	DetectEval: {
		id: "no-eval", severity: domain.SeverityError, category: domain.CategorySecurity,
		message: func(p Payload) string {
			if p.Name == "Function" {
				return "new Function() compiles code from a string"
			}
			return "eval() executes code from a string"
		},
		suggest: fixed("Avoid evaluating strings as code"),
	},
	DetectAnyType: {
		id: "no-explicit-any", severity: domain.SeverityWarning, category: domain.CategoryTypeSafety, fixerID: FixerAnyToUnknown,
		message: fixed("Explicit any type disables type checking"),
		suggest: fixed("Use unknown and narrow the value, or a precise type"),
	},
	DetectAnyCast: {
		id: "no-any-cast", severity: domain.SeverityWarning, category: domain.CategoryTypeSafety, fixerID: FixerAnyToUnknown,
		message: func(p Payload) string { return fmt.Sprintf("Cast to any (%s) disables type checking", p.Text) },
		suggest: fixed("Cast to unknown or to the precise type instead"),
	},
	DetectNonNull: {
		id: "no-non-null-assertion", severity: domain.SeverityInfo, category: domain.CategoryTypeSafety,
		message: fixed("Non-null assertion bypasses null checks"),
		suggest: fixed("Check for null or undefined explicitly"),
	},
	DetectDoubleCast: {
		id: "no-double-cast", severity: domain.SeverityWarning, category: domain.CategoryTypeSafety,
		message: fixed("Double cast forces an incompatible type"),
		suggest: fixed("Fix the underlying type mismatch instead of casting through unknown"),
	},
	DetectTSIgnore: {
		id: "no-ts-ignore", severity: domain.SeverityWarning, category: domain.CategoryTypeSafety, fixerID: FixerRemoveSuppression,
		message: fixed("@ts-ignore suppresses type errors on the next line"),
		suggest: fixed("Remove the directive and fix the type error"),
	},
	DetectTSNoCheck: {
		id: "no-ts-nocheck", severity: domain.SeverityError, category: domain.CategoryTypeSafety, fixerID: FixerRemoveSuppression,
		message: fixed("@ts-nocheck disables type checking for the whole file"),
		suggest: fixed("Remove the directive and fix the type errors"),
	},
	DetectTSExpectError: {
		id: "no-ts-expect-error", severity: domain.SeverityInfo, category: domain.CategoryTypeSafety, fixerID: FixerRemoveSuppression,
		message: fixed("@ts-expect-error suppresses an expected type error"),
		suggest: fixed("Remove the directive once the type error is fixed"),
	},
	DetectESLintDisable: {
		id: "no-eslint-disable", severity: domain.SeverityInfo, category: domain.CategoryLint, fixerID: FixerRemoveSuppression,
		message: fixed("eslint-disable comment suppresses lint rules"),
		suggest: fixed("Remove the comment and fix the reported problems"),
	},
	DetectHardcodedNumber: {
		id: "no-magic-number", severity: domain.SeverityInfo, category: domain.CategoryHardcoded,
		message: func(p Payload) string { return fmt.Sprintf("Magic number %s", p.Text) },
		suggest: fixed("Extract the value into a named constant"),
	},
	DetectHardcodedURL: {
		id: "no-hardcoded-url", severity: domain.SeverityWarning, category: domain.CategoryHardcoded,
		message: func(p Payload) string { return fmt.Sprintf("Hardcoded URL %s", p.Text) },
		suggest: fixed("Move the URL into configuration or an environment variable"),
	},
	DetectHardcodedColor: {
		id: "no-hardcoded-color", severity: domain.SeverityInfo, category: domain.CategoryHardcoded,
		message: func(p Payload) string { return fmt.Sprintf("Hardcoded color %s", p.Text) },
		suggest: fixed("Use a theme token or CSS variable"),
	},
	DetectRequire: {
		id: "no-require", severity: domain.SeverityInfo, category: domain.CategoryLegacy, fixerID: FixerRequireToImport,
		message: func(p Payload) string {
			if p.Name == "" {
				return "require() call with a dynamic module path"
			}
			return fmt.Sprintf("require('%s') uses CommonJS module loading", p.Name)
		},
		suggest: fixed("Use an ES module import"),
	},
	DetectExecInjection: {
		id: "no-exec-injection", severity: domain.SeverityCritical, category: domain.CategorySecurity,
		message: func(p Payload) string { return fmt.Sprintf("%s() runs a command built from an interpolated string", p.Name) },
		suggest: fixed("Pass arguments as an array to execFile or spawn without a shell"),
	},
	DetectPathTraversal: {
		id: "no-path-traversal", severity: domain.SeverityError, category: domain.CategorySecurity,
		message: func(p Payload) string { return fmt.Sprintf("path.%s() with unvalidated request input", p.Name) },
		suggest: fixed("Normalize the path and check it stays inside the allowed root"),
	},
	DetectMissingReturnType: {
		id: "explicit-return-type", severity: domain.SeverityInfo, category: domain.CategoryTypeSafety, fixerID: FixerAddReturnType,
		message: func(p Payload) string { return fmt.Sprintf("Exported function '%s' has no explicit return type", p.Name) },
		suggest: func(p Payload) string {
			if p.Detail != "" {
				return fmt.Sprintf("Annotate the return type as %s", p.Detail)
			}
			return "Annotate the return type"
		},
	},
}

// RuleID returns the rule id of a detection kind
func RuleID(kind DetectionKind) string {
	return rules[kind].id
}

// BuildIssues converts the detections of one file into quality issues
func BuildIssues(path string, result *Result) []domain.QualityIssue {
	idx := result.File.Index
	issues := make([]domain.QualityIssue, 0, len(result.Detections))
	for _, det := range result.Detections {
		r, ok := rules[det.Kind]
		if !ok {
			continue
		}
		line := idx.LineOf(det.Offset)
		column := 0
		if start, _, ok := idx.LineSpan(line); ok && det.Offset >= start {
			column = det.Offset - start + 1
		}
		issues = append(issues, domain.QualityIssue{
			File:       path,
			Line:       line,
			Column:     column,
			Severity:   r.severity,
			Category:   r.category,
			Rule:       r.id,
			Message:    r.message(det.Payload),
			Suggestion: r.suggest(det.Payload),
			Snippet:    Snippet(idx.LineText(line)),
			FixerID:    r.fixerID,
			Hint:       det.Payload.Detail,
		})
	}
	return issues
}

// FunctionIssues reports functions that exceed the thresholds. A threshold
// <= 0 disables that check.
func FunctionIssues(path string, idx *source.Index, functions []domain.FunctionInfo, t Thresholds) []domain.QualityIssue {
	var issues []domain.QualityIssue
	for _, fn := range functions {
		snippet := Snippet(idx.LineText(fn.StartLine))
		if t.MaxComplexity > 0 && fn.Complexity > t.MaxComplexity {
			issues = append(issues, domain.QualityIssue{
				File:       path,
				Line:       fn.StartLine,
				Severity:   domain.SeverityWarning,
				Category:   domain.CategoryComplexity,
				Rule:       "max-complexity",
				Message:    fmt.Sprintf("Function '%s' has cyclomatic complexity %d (max %d)", fn.Name, fn.Complexity, t.MaxComplexity),
				Suggestion: "Split the function into smaller functions",
				Snippet:    snippet,
			})
		}
		if t.MaxFunctionLines > 0 && fn.LineCount > t.MaxFunctionLines {
			issues = append(issues, domain.QualityIssue{
				File:       path,
				Line:       fn.StartLine,
				Severity:   domain.SeverityInfo,
				Category:   domain.CategoryMaintainability,
				Rule:       "max-lines-per-function",
				Message:    fmt.Sprintf("Function '%s' spans %d lines (max %d)", fn.Name, fn.LineCount, t.MaxFunctionLines),
				Suggestion: "Extract parts of the function",
				Snippet:    snippet,
			})
		}
		if t.MaxParams > 0 && fn.ParamCount > t.MaxParams {
			issues = append(issues, domain.QualityIssue{
				File:       path,
				Line:       fn.StartLine,
				Severity:   domain.SeverityInfo,
				Category:   domain.CategoryMaintainability,
				Rule:       "max-params",
				Message:    fmt.Sprintf("Function '%s' takes %d parameters (max %d)", fn.Name, fn.ParamCount, t.MaxParams),
				Suggestion: "Group related parameters into an options object",
				Snippet:    snippet,
			})
		}
	}
	return issues
}

// Snippet trims a source line and bounds it to MaxSnippetLength bytes
// without splitting a multi-byte character.
func Snippet(line string) string {
	s := strings.TrimSpace(line)
	if len(s) <= MaxSnippetLength {
		return s
	}
	cut := MaxSnippetLength
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}

// sortIssues orders issues by line; ties keep detection order
func sortIssues(issues []domain.QualityIssue) {
	sort.SliceStable(issues, func(i, j int) bool {
		return issues[i].Line < issues[j].Line
	})
}
