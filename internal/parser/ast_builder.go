package parser

import (
	"fortio.org/safecast"
	sitter "github.com/smacker/go-tree-sitter"
)

// ASTBuilder builds our internal tree from a tree-sitter CST
type ASTBuilder struct {
	source []byte
}

// NewASTBuilder creates a new AST builder
func NewASTBuilder(source []byte) *ASTBuilder {
	return &ASTBuilder{source: source}
}

// Build builds the tree rooted at tsNode
func (b *ASTBuilder) Build(tsNode *sitter.Node) *Node {
	if tsNode == nil {
		return nil
	}
	return b.buildNode(tsNode)
}

// buildNode converts one tree-sitter node and its named descendants
func (b *ASTBuilder) buildNode(tsNode *sitter.Node) *Node {
	nodeType := tsNode.Type()
	node := &Node{
		Kind: kindOf(nodeType),
		Type: nodeType,
		Span: b.getSpan(tsNode),
	}

	for i := 0; i < int(tsNode.ChildCount()); i++ {
		child := tsNode.Child(i)
		if child == nil {
			continue
		}
		field := tsNode.FieldNameForChild(i)

		if !child.IsNamed() {
			b.applyToken(node, field, child.Type())
			continue
		}
		if b.isTrivia(child) {
			continue
		}

		childNode := b.buildNode(child)
		node.Children = append(node.Children, childNode)
		b.applyField(node, field, childNode)
	}

	switch node.Kind {
	case NodeIdentifier, NodePropertyIdentifier, NodeTypeIdentifier:
		node.Raw = tsNode.Content(b.source)
		node.Name = node.Raw
	case NodeNumber, NodeString, NodeTemplateString, NodePredefinedType:
		node.Raw = tsNode.Content(b.source)
	case NodeVariableDeclaration:
		if node.DeclKind == "" {
			node.DeclKind = "var"
		}
	}

	return node
}

// applyToken records anonymous tokens that carry meaning
func (b *ASTBuilder) applyToken(node *Node, field, token string) {
	switch {
	case field == "operator":
		node.Operator = token
	case field == "kind":
		node.DeclKind = token
	case token == "async":
		node.Async = true
	case token == "default" && node.Kind == NodeExportStatement:
		node.Default = true
	case token == "var" && node.Kind == NodeVariableDeclaration:
		node.DeclKind = token
	}
}

// applyField links a named child to the field it occupies in its parent
func (b *ASTBuilder) applyField(node *Node, field string, child *Node) {
	switch field {
	case "function", "constructor":
		node.Callee = child
	case "arguments":
		node.Arguments = child
	case "object":
		node.Object = child
	case "property":
		node.Property = child
	case "index":
		node.Index = child
	case "left":
		node.Left = child
	case "right":
		node.Right = child
	case "argument":
		node.Argument = child
	case "name":
		node.NameNode = child
		switch child.Kind {
		case NodeIdentifier, NodePropertyIdentifier, NodeTypeIdentifier:
			node.Name = child.Name
		}
	case "value":
		node.Value = child
	case "declaration":
		node.Declaration = child
	case "return_type":
		node.ReturnType = child
	case "type":
		node.TypeAnnotation = child
	case "body":
		node.Body = child
	case "parameters", "parameter":
		node.Parameters = child
	}
}

// kindOf maps a tree-sitter node type to a NodeKind
func kindOf(nodeType string) NodeKind {
	switch nodeType {
	case "program":
		return NodeProgram
	case "statement_block":
		return NodeBlockStatement
	case "expression_statement":
		return NodeExpressionStatement
	case "debugger_statement":
		return NodeDebuggerStatement
	case "return_statement":
		return NodeReturnStatement
	case "function_declaration":
		return NodeFunction
	case "generator_function_declaration":
		return NodeGeneratorFunction
	case "function", "function_expression", "generator_function":
		return NodeFunctionExpression
	case "arrow_function":
		return NodeArrowFunction
	case "method_definition":
		return NodeMethodDefinition
	case "class_declaration", "class":
		return NodeClass
	case "formal_parameters":
		return NodeFormalParameters
	case "lexical_declaration":
		return NodeLexicalDeclaration
	case "variable_declaration":
		return NodeVariableDeclaration
	case "variable_declarator":
		return NodeVariableDeclarator
	case "import_statement":
		return NodeImportDeclaration
	case "export_statement":
		return NodeExportStatement
	case "if_statement":
		return NodeIfStatement
	case "for_statement":
		return NodeForStatement
	case "for_in_statement": // for-in and for-of share one node type
		return NodeForInStatement
	case "while_statement":
		return NodeWhileStatement
	case "do_statement":
		return NodeDoWhileStatement
	case "switch_case":
		return NodeSwitchCase
	case "switch_default":
		return NodeSwitchDefault
	case "catch_clause":
		return NodeCatchClause
	case "ternary_expression", "conditional_expression":
		return NodeTernaryExpression
	case "binary_expression":
		return NodeBinaryExpression
	case "unary_expression":
		return NodeUnaryExpression
	case "assignment_expression", "augmented_assignment_expression":
		return NodeAssignmentExpression
	case "call_expression":
		return NodeCallExpression
	case "new_expression":
		return NodeNewExpression
	case "member_expression":
		return NodeMemberExpression
	case "subscript_expression":
		return NodeSubscriptExpression
	case "arguments":
		return NodeArguments
	case "await_expression":
		return NodeAwaitExpression
	case "parenthesized_expression":
		return NodeParenthesizedExpression
	case "identifier", "shorthand_property_identifier":
		return NodeIdentifier
	case "property_identifier", "private_property_identifier":
		return NodePropertyIdentifier
	case "number":
		return NodeNumber
	case "string":
		return NodeString
	case "template_string":
		return NodeTemplateString
	case "template_substitution":
		return NodeTemplateSubstitution
	case "type_annotation":
		return NodeTypeAnnotation
	case "predefined_type":
		return NodePredefinedType
	case "type_identifier":
		return NodeTypeIdentifier
	case "as_expression":
		return NodeAsExpression
	case "satisfies_expression":
		return NodeSatisfiesExpression
	case "non_null_expression":
		return NodeNonNullExpression
	case "type_assertion":
		return NodeTypeAssertion
	case "type_arguments":
		return NodeTypeArguments
	case "literal_type":
		return NodeLiteralType
	default:
		return NodeOther
	}
}

// Helper methods

// getSpan extracts the byte range of a tree-sitter node
func (b *ASTBuilder) getSpan(tsNode *sitter.Node) Span {
	return Span{
		Start: toInt(tsNode.StartByte()),
		End:   toInt(tsNode.EndByte()),
	}
}

// isTrivia checks if a node is trivia (comments)
func (b *ASTBuilder) isTrivia(tsNode *sitter.Node) bool {
	nodeType := tsNode.Type()
	return nodeType == "comment" ||
		nodeType == "html_comment" ||
		nodeType == ""
}

func toInt(v uint32) int {
	n, err := safecast.Conv[int](v)
	if err != nil {
		return 0
	}
	return n
}
