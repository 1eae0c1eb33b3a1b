package analyzer

import (
	"regexp"
	"strings"

	"github.com/ludo-technologies/jsfix/internal/parser"
)

var consoleMethods = map[string]bool{
	"log": true, "debug": true, "info": true, "trace": true,
	"dir": true, "dirxml": true, "table": true,
	"time": true, "timeEnd": true, "timeLog": true,
	"count": true, "group": true, "groupCollapsed": true, "groupEnd": true,
}

var dialogFunctions = map[string]bool{
	"alert": true, "confirm": true, "prompt": true,
}

var globalReceivers = map[string]bool{
	"window": true, "globalThis": true, "self": true,
}

// SuspiciousCallDetector finds debug output, dialogs, eval and debugger statements
type SuspiciousCallDetector struct{}

func (SuspiciousCallDetector) Family() Family { return FamilySuspiciousCalls }

func (SuspiciousCallDetector) Kinds() []parser.NodeKind {
	return []parser.NodeKind{
		parser.NodeCallExpression,
		parser.NodeNewExpression,
		parser.NodeDebuggerStatement,
	}
}

func (SuspiciousCallDetector) Detect(node *parser.Node, ctx VisitContext) (Detection, bool) {
	switch node.Kind {
	case parser.NodeDebuggerStatement:
		return Detection{Kind: DetectDebugger, Offset: node.Span.Start, Payload: Payload{Name: "debugger"}}, true

	case parser.NodeNewExpression:
		if node.Callee != nil && node.Callee.Kind == parser.NodeIdentifier && node.Callee.Name == "Function" {
			return Detection{Kind: DetectEval, Offset: node.Span.Start, Payload: Payload{Name: "Function"}}, true
		}
		return Detection{}, false
	}

	callee := node.Callee
	if callee == nil {
		return Detection{}, false
	}

	switch callee.Kind {
	case parser.NodeIdentifier:
		switch {
		case dialogFunctions[callee.Name]:
			return Detection{Kind: DetectDialogCall, Offset: node.Span.Start, Payload: Payload{Name: callee.Name}}, true
		case callee.Name == "eval":
			return Detection{Kind: DetectEval, Offset: node.Span.Start, Payload: Payload{Name: "eval"}}, true
		}

	case parser.NodeMemberExpression:
		object, property := callee.Object, callee.Property
		if object == nil || property == nil || object.Kind != parser.NodeIdentifier {
			return Detection{}, false
		}
		switch {
		case object.Name == "console" && consoleMethods[property.Name]:
			return Detection{Kind: DetectConsoleCall, Offset: node.Span.Start, Payload: Payload{Name: property.Name}}, true
		case globalReceivers[object.Name] && dialogFunctions[property.Name]:
			return Detection{Kind: DetectDialogCall, Offset: node.Span.Start, Payload: Payload{Name: property.Name}}, true
		case globalReceivers[object.Name] && property.Name == "eval":
			return Detection{Kind: DetectEval, Offset: node.Span.Start, Payload: Payload{Name: "eval"}}, true
		}
	}

	return Detection{}, false
}

var (
	execFunctions = map[string]bool{
		"exec": true, "execSync": true, "spawn": true, "spawnSync": true,
	}
	childProcessReceivers = map[string]bool{
		"child_process": true, "childProcess": true, "cp": true,
	}
	pathFunctions = map[string]bool{
		"join": true, "resolve": true,
	}
	requestInput = regexp.MustCompile(`\b(req|request)\.|\b(params|query|body)\b|process\.argv|\buserInput\b`)
)

// LegacyPatternDetector finds CommonJS require calls, shell commands built
// from interpolated strings and path joins fed request input.
type LegacyPatternDetector struct{}

func (LegacyPatternDetector) Family() Family { return FamilyLegacy }

func (LegacyPatternDetector) Kinds() []parser.NodeKind {
	return []parser.NodeKind{parser.NodeCallExpression}
}

func (LegacyPatternDetector) Detect(node *parser.Node, ctx VisitContext) (Detection, bool) {
	name, receiver := calleeName(node.Callee)
	if name == "" {
		return Detection{}, false
	}
	args := callArguments(node)

	switch {
	case name == "require" && receiver == "":
		module := ""
		if len(args) > 0 && args[0].Kind == parser.NodeString {
			module = unquote(args[0].Raw)
		}
		return Detection{Kind: DetectRequire, Offset: node.Span.Start, Payload: Payload{Name: module}}, true

	case execFunctions[name] && (receiver == "" || childProcessReceivers[receiver]):
		if len(args) > 0 && isInterpolated(args[0]) {
			return Detection{
				Kind:    DetectExecInjection,
				Offset:  node.Span.Start,
				Payload: Payload{Name: name, Text: ctx.File.Text(args[0].Span)},
			}, true
		}

	case pathFunctions[name] && (receiver == "" || receiver == "path"):
		for _, arg := range args {
			text := ctx.File.Text(arg.Span)
			if requestInput.MatchString(text) {
				return Detection{
					Kind:    DetectPathTraversal,
					Offset:  node.Span.Start,
					Payload: Payload{Name: name, Text: text},
				}, true
			}
		}
	}

	return Detection{}, false
}

// calleeName returns the called function name and, for member calls on an
// identifier, the receiver name.
func calleeName(callee *parser.Node) (name, receiver string) {
	if callee == nil {
		return "", ""
	}
	switch callee.Kind {
	case parser.NodeIdentifier:
		return callee.Name, ""
	case parser.NodeMemberExpression:
		if callee.Property == nil {
			return "", ""
		}
		if callee.Object != nil && callee.Object.Kind == parser.NodeIdentifier {
			return callee.Property.Name, callee.Object.Name
		}
		return callee.Property.Name, "?"
	}
	return "", ""
}

// callArguments returns the argument expressions of a call
func callArguments(call *parser.Node) []*parser.Node {
	if call.Arguments == nil || call.Arguments.Kind != parser.NodeArguments {
		return nil
	}
	return call.Arguments.Children
}

// isInterpolated reports whether an argument is built from a template with
// substitutions or a string concatenation.
func isInterpolated(arg *parser.Node) bool {
	switch arg.Kind {
	case parser.NodeTemplateString:
		return arg.FirstChild(parser.NodeTemplateSubstitution) != nil
	case parser.NodeBinaryExpression:
		return arg.Operator == "+"
	case parser.NodeParenthesizedExpression:
		return len(arg.Children) == 1 && isInterpolated(arg.Children[0])
	}
	return false
}

// unquote strips the quotes of a string literal's raw text
func unquote(raw string) string {
	if len(raw) >= 2 {
		first, last := raw[0], raw[len(raw)-1]
		if (first == '"' || first == '\'' || first == '`') && first == last {
			return raw[1 : len(raw)-1]
		}
	}
	return strings.TrimSpace(raw)
}
