package parser

import (
	oast "github.com/robertkrimen/otto/ast"
	"github.com/robertkrimen/otto/file"

	"flowjs/interpreter-go/pkg/ast"
)

func (c *converter) position(idx file.Idx) ast.Position {
	if c.file == nil || idx <= 0 {
		return ast.Position{}
	}
	pos := c.file.Position(idx)
	if pos == nil {
		return ast.Position{}
	}
	return ast.Position{Line: pos.Line + c.lineDelta, Column: pos.Column}
}

func (c *converter) spanOf(node oast.Node) (span ast.Span) {
	if node == nil {
		return span
	}
	// Some otto nodes index into empty child lists.
	defer func() {
		if recover() != nil {
			span = ast.Span{}
		}
	}()
	return ast.Span{Start: c.position(node.Idx0()), End: c.position(node.Idx1())}
}

func annotateStatement(c *converter, stmt ast.Statement, node oast.Node) ast.Statement {
	if stmt != nil {
		ast.SetSpan(stmt, c.spanOf(node))
	}
	return stmt
}

func annotateExpression(c *converter, expr ast.Expression, node oast.Node) ast.Expression {
	if expr != nil {
		ast.SetSpan(expr, c.spanOf(node))
	}
	return expr
}
