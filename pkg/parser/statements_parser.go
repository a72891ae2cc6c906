package parser

import (
	oast "github.com/robertkrimen/otto/ast"
	"github.com/robertkrimen/otto/token"

	"flowjs/interpreter-go/pkg/ast"
)

func (c *converter) statements(list []oast.Statement) ([]ast.Statement, error) {
	out := make([]ast.Statement, 0, len(list))
	for _, item := range list {
		stmt, err := c.statement(item)
		if err != nil {
			return nil, err
		}
		if stmt != nil {
			out = append(out, stmt)
		}
	}
	return out, nil
}

// block converts a statement expected to be a block; anything else is
// wrapped in a single-statement block.
func (c *converter) block(node oast.Statement) (*ast.BlockStatement, error) {
	if node == nil {
		return nil, nil
	}
	if b, ok := node.(*oast.BlockStatement); ok {
		if b == nil {
			return nil, nil
		}
		body, err := c.statements(b.List)
		if err != nil {
			return nil, err
		}
		out := ast.NewBlockStatement(body)
		ast.SetSpan(out, c.spanOf(b))
		return out, nil
	}
	stmt, err := c.statement(node)
	if err != nil {
		return nil, err
	}
	return ast.NewBlockStatement([]ast.Statement{stmt}), nil
}

func (c *converter) statement(node oast.Statement) (ast.Statement, error) {
	switch n := node.(type) {
	case nil:
		return nil, nil
	case *oast.BlockStatement:
		if n == nil {
			return nil, nil
		}
		body, err := c.statements(n.List)
		if err != nil {
			return nil, err
		}
		return annotateStatement(c, ast.NewBlockStatement(body), n), nil
	case *oast.ExpressionStatement:
		expr, err := c.expression(n.Expression)
		if err != nil {
			return nil, err
		}
		if expr == nil {
			return annotateStatement(c, ast.NewEmptyStatement(), n), nil
		}
		return expr, nil
	case *oast.VariableStatement:
		decl, err := c.varDeclaration(n.List)
		if err != nil {
			return nil, err
		}
		return annotateStatement(c, decl, n), nil
	case *oast.FunctionStatement:
		fn, err := c.functionLiteral(n.Function)
		if err != nil {
			return nil, err
		}
		return annotateStatement(c, ast.NewFunctionDeclaration(fn), n), nil
	case *oast.IfStatement:
		test, err := c.expression(n.Test)
		if err != nil {
			return nil, err
		}
		cons, err := c.statement(n.Consequent)
		if err != nil {
			return nil, err
		}
		alt, err := c.statement(n.Alternate)
		if err != nil {
			return nil, err
		}
		return annotateStatement(c, ast.NewIfStatement(test, cons, alt), n), nil
	case *oast.SwitchStatement:
		disc, err := c.expression(n.Discriminant)
		if err != nil {
			return nil, err
		}
		cases := make([]*ast.SwitchCase, 0, len(n.Body))
		for _, cs := range n.Body {
			test, err := c.expression(cs.Test)
			if err != nil {
				return nil, err
			}
			body, err := c.statements(cs.Consequent)
			if err != nil {
				return nil, err
			}
			sc := ast.NewSwitchCase(test, body)
			ast.SetSpan(sc, c.spanOf(cs))
			cases = append(cases, sc)
		}
		return annotateStatement(c, ast.NewSwitchStatement(disc, cases), n), nil
	case *oast.WhileStatement:
		test, err := c.expression(n.Test)
		if err != nil {
			return nil, err
		}
		body, err := c.statement(n.Body)
		if err != nil {
			return nil, err
		}
		return annotateStatement(c, ast.NewWhileStatement(test, orEmpty(body)), n), nil
	case *oast.DoWhileStatement:
		body, err := c.statement(n.Body)
		if err != nil {
			return nil, err
		}
		test, err := c.expression(n.Test)
		if err != nil {
			return nil, err
		}
		return annotateStatement(c, ast.NewDoWhileStatement(orEmpty(body), test), n), nil
	case *oast.ForStatement:
		init, err := c.forInitializer(n.Initializer)
		if err != nil {
			return nil, err
		}
		test, err := c.expression(n.Test)
		if err != nil {
			return nil, err
		}
		update, err := c.expression(n.Update)
		if err != nil {
			return nil, err
		}
		body, err := c.statement(n.Body)
		if err != nil {
			return nil, err
		}
		return annotateStatement(c, ast.NewForStatement(init, test, update, orEmpty(body)), n), nil
	case *oast.ForInStatement:
		var left ast.Statement
		if v, ok := n.Into.(*oast.VariableExpression); ok {
			decl, err := c.varDeclaration([]oast.Expression{v})
			if err != nil {
				return nil, err
			}
			left = decl
		} else {
			expr, err := c.expression(n.Into)
			if err != nil {
				return nil, err
			}
			left = expr
		}
		right, err := c.expression(n.Source)
		if err != nil {
			return nil, err
		}
		body, err := c.statement(n.Body)
		if err != nil {
			return nil, err
		}
		return annotateStatement(c, ast.NewForInStatement(left, right, orEmpty(body)), n), nil
	case *oast.BranchStatement:
		var label *ast.Identifier
		if n.Label != nil {
			label = c.identifier(n.Label)
		}
		switch n.Token {
		case token.BREAK:
			return annotateStatement(c, ast.NewBreakStatement(label), n), nil
		case token.CONTINUE:
			return annotateStatement(c, ast.NewContinueStatement(label), n), nil
		default:
			return nil, c.errorf(c.position(n.Idx0()), "unsupported branch %s", n.Token)
		}
	case *oast.ReturnStatement:
		arg, err := c.expression(n.Argument)
		if err != nil {
			return nil, err
		}
		return annotateStatement(c, ast.NewReturnStatement(arg), n), nil
	case *oast.ThrowStatement:
		arg, err := c.expression(n.Argument)
		if err != nil {
			return nil, err
		}
		return annotateStatement(c, ast.NewThrowStatement(arg), n), nil
	case *oast.TryStatement:
		return c.tryStatement(n)
	case *oast.LabelledStatement:
		body, err := c.statement(n.Statement)
		if err != nil {
			return nil, err
		}
		return annotateStatement(c, ast.NewLabeledStatement(c.identifier(n.Label), orEmpty(body)), n), nil
	case *oast.WithStatement:
		obj, err := c.expression(n.Object)
		if err != nil {
			return nil, err
		}
		body, err := c.statement(n.Body)
		if err != nil {
			return nil, err
		}
		return annotateStatement(c, ast.NewWithStatement(obj, orEmpty(body)), n), nil
	case *oast.EmptyStatement:
		return annotateStatement(c, ast.NewEmptyStatement(), n), nil
	case *oast.DebuggerStatement:
		return annotateStatement(c, ast.NewDebuggerStatement(), n), nil
	case *oast.BadStatement:
		return nil, c.errorf(c.position(n.From), "invalid statement")
	default:
		return nil, c.errorf(c.spanOf(node).Start, "unsupported statement %T", node)
	}
}

func orEmpty(stmt ast.Statement) ast.Statement {
	if stmt == nil {
		return ast.NewEmptyStatement()
	}
	return stmt
}

func (c *converter) tryStatement(n *oast.TryStatement) (ast.Statement, error) {
	block, err := c.block(n.Body)
	if err != nil {
		return nil, err
	}
	if block == nil {
		block = ast.NewBlockStatement(nil)
	}
	var handlers []*ast.CatchClause
	if n.Catch != nil {
		body, err := c.block(n.Catch.Body)
		if err != nil {
			return nil, err
		}
		if body == nil {
			body = ast.NewBlockStatement(nil)
		}
		clause := ast.NewCatchClause(c.identifier(n.Catch.Parameter), nil, body)
		ast.SetSpan(clause, c.spanOf(n.Catch))
		handlers = append(handlers, clause)
	}
	finalizer, err := c.block(n.Finally)
	if err != nil {
		return nil, err
	}
	return annotateStatement(c, ast.NewTryStatement(block, handlers, finalizer), n), nil
}

func (c *converter) varDeclaration(list []oast.Expression) (*ast.VarDeclaration, error) {
	decls := make([]*ast.VariableDeclarator, 0, len(list))
	for _, item := range list {
		v, ok := item.(*oast.VariableExpression)
		if !ok {
			return nil, c.errorf(c.spanOf(item).Start, "expected variable declaration, found %T", item)
		}
		init, err := c.expression(v.Initializer)
		if err != nil {
			return nil, err
		}
		id := ast.NewIdentifier(v.Name)
		ast.SetSpan(id, ast.Span{Start: c.position(v.Idx)})
		d := ast.NewVariableDeclarator(id, init)
		ast.SetSpan(d, c.spanOf(v))
		decls = append(decls, d)
	}
	return ast.NewVarDeclaration(ast.VarKindVar, decls), nil
}

// forInitializer handles otto's encoding of `for (init; ...)`: the
// initializer is a sequence, holding variable expressions for `var`.
func (c *converter) forInitializer(node oast.Expression) (ast.Statement, error) {
	switch n := node.(type) {
	case nil:
		return nil, nil
	case *oast.SequenceExpression:
		if len(n.Sequence) == 0 {
			return nil, nil
		}
		if _, ok := n.Sequence[0].(*oast.VariableExpression); ok {
			return c.varDeclaration(n.Sequence)
		}
		if len(n.Sequence) == 1 {
			return c.expression(n.Sequence[0])
		}
	case *oast.VariableExpression:
		return c.varDeclaration([]oast.Expression{n})
	}
	return c.expression(node)
}
