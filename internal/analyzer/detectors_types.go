package analyzer

import "github.com/ludo-technologies/jsfix/internal/parser"

// TypeEscapeDetector finds the places where TypeScript's checks are bypassed:
// any annotations, casts to any, non-null assertions and double casts.
type TypeEscapeDetector struct{}

func (TypeEscapeDetector) Family() Family { return FamilyTypeEscapes }

func (TypeEscapeDetector) Kinds() []parser.NodeKind {
	return []parser.NodeKind{
		parser.NodeTypeAnnotation,
		parser.NodeAsExpression,
		parser.NodeTypeAssertion,
		parser.NodeNonNullExpression,
	}
}

func (TypeEscapeDetector) Detect(node *parser.Node, ctx VisitContext) (Detection, bool) {
	switch node.Kind {
	case parser.NodeTypeAnnotation:
		if len(node.Children) > 0 && isAnyType(node.Children[0]) {
			return Detection{Kind: DetectAnyType, Offset: node.Span.Start, Payload: Payload{Text: "any"}}, true
		}

	case parser.NodeAsExpression:
		if len(node.Children) < 2 {
			return Detection{}, false
		}
		inner, target := node.Children[0], node.Children[len(node.Children)-1]
		if inner.Kind == parser.NodeAsExpression {
			return Detection{Kind: DetectDoubleCast, Offset: node.Span.Start, Payload: Payload{Text: ctx.File.Text(node.Span)}}, true
		}
		if isAnyType(target) {
			return Detection{Kind: DetectAnyCast, Offset: target.Span.Start, Payload: Payload{Text: "as any"}}, true
		}

	case parser.NodeTypeAssertion:
		args := node.FirstChild(parser.NodeTypeArguments)
		if args != nil && len(args.Children) == 1 && isAnyType(args.Children[0]) {
			return Detection{Kind: DetectAnyCast, Offset: node.Span.Start, Payload: Payload{Text: "<any>"}}, true
		}

	case parser.NodeNonNullExpression:
		return Detection{Kind: DetectNonNull, Offset: node.Span.Start, Payload: Payload{Text: ctx.File.Text(node.Span)}}, true
	}

	return Detection{}, false
}

func isAnyType(n *parser.Node) bool {
	return n != nil && n.Kind == parser.NodePredefinedType && n.Raw == "any"
}

// ReturnTypeDetector finds exported function-like declarations without an
// explicit return type annotation. It only runs on TypeScript files.
type ReturnTypeDetector struct{}

func (ReturnTypeDetector) Family() Family { return FamilyReturnTypes }

func (ReturnTypeDetector) Kinds() []parser.NodeKind {
	return []parser.NodeKind{
		parser.NodeFunction,
		parser.NodeGeneratorFunction,
		parser.NodeFunctionExpression,
		parser.NodeArrowFunction,
	}
}

func (ReturnTypeDetector) Detect(node *parser.Node, ctx VisitContext) (Detection, bool) {
	if !ctx.Exported || node.ReturnType != nil || !ctx.File.IsTypeScript() {
		return Detection{}, false
	}

	name := node.Name
	if name == "" {
		name = ctx.BindingName
	}
	if name == "" {
		name = "<anonymous>"
	}

	// A suggestion is only safe when the body provably returns nothing.
	detail := ""
	if node.Kind != parser.NodeGeneratorFunction && node.Body != nil &&
		node.Body.Kind == parser.NodeBlockStatement && !returnsValue(node.Body) {
		detail = "void"
		if node.Async {
			detail = "Promise<void>"
		}
	}

	return Detection{
		Kind:    DetectMissingReturnType,
		Offset:  node.Span.Start,
		Payload: Payload{Name: name, Detail: detail},
	}, true
}

// returnsValue reports whether a function body contains a return statement
// with an argument, ignoring nested functions.
func returnsValue(body *parser.Node) bool {
	found := false
	body.Walk(func(n *parser.Node) bool {
		if found {
			return false
		}
		if n != body && n.IsFunction() {
			return false
		}
		if n.Kind == parser.NodeReturnStatement && len(n.Children) > 0 {
			found = true
			return false
		}
		return true
	})
	return found
}
