package ast

// Children returns the direct child nodes of node in source order.
// Jump targets are references, not children, and are not included.
func Children(node Node) []Node {
	var out []Node
	add := func(n Node) {
		if n != nil {
			out = append(out, n)
		}
	}
	addStmts := func(list []Statement) {
		for _, s := range list {
			add(s)
		}
	}
	addExprs := func(list []Expression) {
		for _, e := range list {
			add(e)
		}
	}
	switch n := node.(type) {
	case *Program:
		addStmts(n.Body)
	case *BlockStatement:
		addStmts(n.Body)
	case *VarDeclaration:
		for _, d := range n.Declarations {
			add(d)
		}
	case *VariableDeclarator:
		add(n.ID)
		add(n.Init)
	case *FunctionDeclaration:
		add(n.Function)
	case *FunctionLiteral:
		if n.ID != nil {
			add(n.ID)
		}
		for _, p := range n.Params {
			add(p)
		}
		addStmts(n.Body)
	case *IfStatement:
		add(n.Test)
		add(n.Consequent)
		add(n.Alternate)
	case *SwitchStatement:
		add(n.Discriminant)
		for _, c := range n.Cases {
			add(c)
		}
	case *SwitchCase:
		add(n.Test)
		addStmts(n.Body)
	case *WhileStatement:
		add(n.Test)
		add(n.Body)
	case *DoWhileStatement:
		add(n.Body)
		add(n.Test)
	case *ForStatement:
		add(n.Init)
		add(n.Test)
		add(n.Update)
		add(n.Body)
	case *ForInStatement:
		add(n.Left)
		add(n.Right)
		add(n.Body)
	case *BreakStatement:
		if n.Label != nil {
			add(n.Label)
		}
	case *ContinueStatement:
		if n.Label != nil {
			add(n.Label)
		}
	case *ReturnStatement:
		add(n.Argument)
	case *ThrowStatement:
		add(n.Argument)
	case *TryStatement:
		if n.Block != nil {
			add(n.Block)
		}
		for _, h := range n.Handlers {
			add(h)
		}
		if n.Finalizer != nil {
			add(n.Finalizer)
		}
	case *CatchClause:
		add(n.Param)
		add(n.Guard)
		if n.Body != nil {
			add(n.Body)
		}
	case *LabeledStatement:
		add(n.Label)
		add(n.Body)
	case *WithStatement:
		add(n.Object)
		add(n.Body)
	case *ArrayLiteral:
		addExprs(n.Elements)
	case *ObjectLiteral:
		for _, p := range n.Properties {
			add(p)
		}
	case *Property:
		add(n.Value)
	case *AssignmentExpression:
		add(n.Target)
		add(n.Value)
	case *BinaryExpression:
		add(n.Left)
		add(n.Right)
	case *LogicalExpression:
		add(n.Left)
		add(n.Right)
	case *UnaryExpression:
		add(n.Operand)
	case *UpdateExpression:
		add(n.Operand)
	case *ConditionalExpression:
		add(n.Test)
		add(n.Consequent)
		add(n.Alternate)
	case *SequenceExpression:
		addExprs(n.Expressions)
	case *CallExpression:
		add(n.Callee)
		addExprs(n.Arguments)
	case *NewExpression:
		add(n.Callee)
		addExprs(n.Arguments)
	case *MemberExpression:
		add(n.Object)
		add(n.Property)
	case *IndexExpression:
		add(n.Object)
		add(n.Index)
	case *LabelExpression:
		add(n.Expression)
	}
	return out
}

// Inspect traverses the tree rooted at node depth-first, calling fn for each
// node. Children are skipped when fn returns false.
func Inspect(node Node, fn func(Node) bool) {
	if node == nil || !fn(node) {
		return
	}
	for _, child := range Children(node) {
		Inspect(child, fn)
	}
}
