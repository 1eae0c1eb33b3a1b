package analyzer

import "github.com/ludo-technologies/jsfix/internal/parser"

// isDecisionPoint reports whether node adds one to the cyclomatic
// complexity of its innermost enclosing function. Switch defaults and
// the function node itself do not count.
func isDecisionPoint(node *parser.Node) bool {
	switch node.Kind {
	case parser.NodeIfStatement,
		parser.NodeForStatement,
		parser.NodeForInStatement,
		parser.NodeWhileStatement,
		parser.NodeDoWhileStatement,
		parser.NodeSwitchCase,
		parser.NodeCatchClause,
		parser.NodeTernaryExpression:
		return true
	case parser.NodeBinaryExpression:
		return isShortCircuit(node.Operator)
	}
	return false
}

// isShortCircuit reports whether op is a logical or nullish operator
func isShortCircuit(op string) bool {
	return op == "&&" || op == "||" || op == "??"
}

// functionScope accumulates metrics of one function while it is open
type functionScope struct {
	node       *parser.Node
	name       string
	exported   bool
	complexity int
}

// scopeStack keeps the open function scopes; the top is always the
// innermost enclosing function.
type scopeStack struct {
	scopes []*functionScope
}

func (s *scopeStack) push(node *parser.Node, ctx VisitContext) {
	name := node.Name
	if name == "" {
		name = ctx.BindingName
	}
	if name == "" {
		name = "<anonymous>"
	}
	s.scopes = append(s.scopes, &functionScope{
		node:       node,
		name:       name,
		exported:   ctx.Exported,
		complexity: 1,
	})
}

func (s *scopeStack) pop() *functionScope {
	n := len(s.scopes)
	if n == 0 {
		return nil
	}
	top := s.scopes[n-1]
	s.scopes = s.scopes[:n-1]
	return top
}

// increment adds a decision point to the innermost scope. Decision points
// at module level belong to no function and are not counted.
func (s *scopeStack) increment() {
	if n := len(s.scopes); n > 0 {
		s.scopes[n-1].complexity++
	}
}

func (s *scopeStack) depth() int {
	return len(s.scopes)
}
