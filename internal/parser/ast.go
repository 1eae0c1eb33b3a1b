package parser

import "fmt"

// NodeKind identifies the syntactic category of a node.
// Kinds are a closed set; tree-sitter types with no dedicated kind map to NodeOther.
type NodeKind uint8

// JavaScript/TypeScript node kinds
const (
	NodeOther NodeKind = iota

	// Program and structure
	NodeProgram
	NodeBlockStatement
	NodeExpressionStatement
	NodeDebuggerStatement
	NodeReturnStatement

	// Functions and classes
	NodeFunction
	NodeGeneratorFunction
	NodeFunctionExpression
	NodeArrowFunction
	NodeMethodDefinition
	NodeClass
	NodeFormalParameters

	// Declarations
	NodeLexicalDeclaration
	NodeVariableDeclaration
	NodeVariableDeclarator
	NodeImportDeclaration
	NodeExportStatement

	// Control flow
	NodeIfStatement
	NodeForStatement
	NodeForInStatement
	NodeWhileStatement
	NodeDoWhileStatement
	NodeSwitchCase
	NodeSwitchDefault
	NodeCatchClause

	// Expressions
	NodeTernaryExpression
	NodeBinaryExpression
	NodeUnaryExpression
	NodeAssignmentExpression
	NodeCallExpression
	NodeNewExpression
	NodeMemberExpression
	NodeSubscriptExpression
	NodeArguments
	NodeAwaitExpression
	NodeParenthesizedExpression

	// Literals and names
	NodeIdentifier
	NodePropertyIdentifier
	NodeNumber
	NodeString
	NodeTemplateString
	NodeTemplateSubstitution

	// TypeScript
	NodeTypeAnnotation
	NodePredefinedType
	NodeTypeIdentifier
	NodeAsExpression
	NodeSatisfiesExpression
	NodeNonNullExpression
	NodeTypeAssertion
	NodeTypeArguments
	NodeLiteralType

	nodeKindCount
)

var nodeKindNames = [...]string{
	NodeOther:                   "Other",
	NodeProgram:                 "Program",
	NodeBlockStatement:          "BlockStatement",
	NodeExpressionStatement:     "ExpressionStatement",
	NodeDebuggerStatement:       "DebuggerStatement",
	NodeReturnStatement:         "ReturnStatement",
	NodeFunction:                "FunctionDeclaration",
	NodeGeneratorFunction:       "GeneratorFunctionDeclaration",
	NodeFunctionExpression:      "FunctionExpression",
	NodeArrowFunction:           "ArrowFunctionExpression",
	NodeMethodDefinition:        "MethodDefinition",
	NodeClass:                   "ClassDeclaration",
	NodeFormalParameters:        "FormalParameters",
	NodeLexicalDeclaration:      "LexicalDeclaration",
	NodeVariableDeclaration:     "VariableDeclaration",
	NodeVariableDeclarator:      "VariableDeclarator",
	NodeImportDeclaration:       "ImportDeclaration",
	NodeExportStatement:         "ExportStatement",
	NodeIfStatement:             "IfStatement",
	NodeForStatement:            "ForStatement",
	NodeForInStatement:          "ForInStatement",
	NodeWhileStatement:          "WhileStatement",
	NodeDoWhileStatement:        "DoWhileStatement",
	NodeSwitchCase:              "SwitchCase",
	NodeSwitchDefault:           "SwitchDefault",
	NodeCatchClause:             "CatchClause",
	NodeTernaryExpression:       "TernaryExpression",
	NodeBinaryExpression:        "BinaryExpression",
	NodeUnaryExpression:         "UnaryExpression",
	NodeAssignmentExpression:    "AssignmentExpression",
	NodeCallExpression:          "CallExpression",
	NodeNewExpression:           "NewExpression",
	NodeMemberExpression:        "MemberExpression",
	NodeSubscriptExpression:     "SubscriptExpression",
	NodeArguments:               "Arguments",
	NodeAwaitExpression:         "AwaitExpression",
	NodeParenthesizedExpression: "ParenthesizedExpression",
	NodeIdentifier:              "Identifier",
	NodePropertyIdentifier:      "PropertyIdentifier",
	NodeNumber:                  "NumberLiteral",
	NodeString:                  "StringLiteral",
	NodeTemplateString:          "TemplateLiteral",
	NodeTemplateSubstitution:    "TemplateSubstitution",
	NodeTypeAnnotation:          "TypeAnnotation",
	NodePredefinedType:          "PredefinedType",
	NodeTypeIdentifier:          "TypeIdentifier",
	NodeAsExpression:            "AsExpression",
	NodeSatisfiesExpression:     "SatisfiesExpression",
	NodeNonNullExpression:       "NonNullExpression",
	NodeTypeAssertion:           "TypeAssertion",
	NodeTypeArguments:           "TypeArguments",
	NodeLiteralType:             "LiteralType",
}

// String returns the kind name
func (k NodeKind) String() string {
	if k < nodeKindCount {
		return nodeKindNames[k]
	}
	return fmt.Sprintf("NodeKind(%d)", uint8(k))
}

// NodeKindCount is the number of defined kinds, for kind-indexed tables
const NodeKindCount = int(nodeKindCount)

// Span is a half-open byte range [Start, End) into the parsed source
type Span struct {
	Start int
	End   int
}

// Len returns the number of bytes covered
func (s Span) Len() int {
	return s.End - s.Start
}

// Shift returns the span moved left by base, never below zero
func (s Span) Shift(base int) Span {
	start, end := s.Start-base, s.End-base
	if start < 0 {
		start = 0
	}
	if end < start {
		end = start
	}
	return Span{Start: start, End: end}
}

// Node is one node of the syntax tree.
// Children hold every named child in source order; the field pointers
// below alias entries of Children and are nil when absent.
type Node struct {
	Kind NodeKind
	Type string // tree-sitter node type
	Span Span

	Children []*Node

	Name     string // identifier text of the name field, or of the node itself for identifiers
	Raw      string // source text of leaf nodes (literals, identifiers, predefined types)
	Operator string // binary/unary/assignment operator token
	DeclKind string // const, let or var for declarations
	Async    bool
	Default  bool // export default

	// Named fields
	Callee         *Node
	Arguments      *Node
	Object         *Node
	Property       *Node
	Index          *Node
	Left           *Node
	Right          *Node
	Argument       *Node
	NameNode       *Node
	Value          *Node
	Declaration    *Node
	ReturnType     *Node
	TypeAnnotation *Node
	Body           *Node
	Parameters     *Node
}

// Walk traverses the tree depth-first in source order.
// Returning false from visitor skips the node's children.
func (n *Node) Walk(visitor func(*Node) bool) {
	if n == nil {
		return
	}
	if !visitor(n) {
		return
	}
	for _, child := range n.Children {
		child.Walk(visitor)
	}
}

// IsFunction returns true for every function-like node
func (n *Node) IsFunction() bool {
	switch n.Kind {
	case NodeFunction, NodeGeneratorFunction, NodeFunctionExpression,
		NodeArrowFunction, NodeMethodDefinition:
		return true
	}
	return false
}

// ParamCount returns the number of declared parameters of a function-like node
func (n *Node) ParamCount() int {
	if n.Parameters == nil {
		return 0
	}
	if n.Parameters.Kind != NodeFormalParameters {
		// single unparenthesized arrow parameter
		return 1
	}
	return len(n.Parameters.Children)
}

// FirstChild returns the first child of the given kind, or nil
func (n *Node) FirstChild(kind NodeKind) *Node {
	for _, child := range n.Children {
		if child.Kind == kind {
			return child
		}
	}
	return nil
}

// Contains reports whether any node of the subtree, n included, satisfies pred
func (n *Node) Contains(pred func(*Node) bool) bool {
	found := false
	n.Walk(func(c *Node) bool {
		if found {
			return false
		}
		if pred(c) {
			found = true
			return false
		}
		return true
	})
	return found
}

// String returns a string representation of the node
func (n *Node) String() string {
	if n.Name != "" {
		return fmt.Sprintf("%s(%s) at [%d,%d)", n.Kind, n.Name, n.Span.Start, n.Span.End)
	}
	return fmt.Sprintf("%s at [%d,%d)", n.Kind, n.Span.Start, n.Span.End)
}
