package parser

import (
	oast "github.com/robertkrimen/otto/ast"
	"github.com/robertkrimen/otto/token"

	"flowjs/interpreter-go/pkg/ast"
)

var binaryOperators = map[token.Token]string{
	token.PLUS:                 "+",
	token.MINUS:                "-",
	token.MULTIPLY:             "*",
	token.SLASH:                "/",
	token.REMAINDER:            "%",
	token.AND:                  "&",
	token.OR:                   "|",
	token.EXCLUSIVE_OR:         "^",
	token.SHIFT_LEFT:           "<<",
	token.SHIFT_RIGHT:          ">>",
	token.UNSIGNED_SHIFT_RIGHT: ">>>",
	token.EQUAL:                "==",
	token.NOT_EQUAL:            "!=",
	token.STRICT_EQUAL:         "===",
	token.STRICT_NOT_EQUAL:     "!==",
	token.LESS:                 "<",
	token.GREATER:              ">",
	token.LESS_OR_EQUAL:        "<=",
	token.GREATER_OR_EQUAL:     ">=",
	token.INSTANCEOF:           "instanceof",
	token.IN:                   "in",
}

var assignmentOperators = map[token.Token]ast.AssignmentOperator{
	token.ASSIGN:               ast.AssignmentAssign,
	token.PLUS:                 ast.AssignmentAdd,
	token.MINUS:                ast.AssignmentSub,
	token.MULTIPLY:             ast.AssignmentMul,
	token.SLASH:                ast.AssignmentDiv,
	token.REMAINDER:            ast.AssignmentMod,
	token.AND:                  ast.AssignmentBitAnd,
	token.OR:                   ast.AssignmentBitOr,
	token.EXCLUSIVE_OR:         ast.AssignmentBitXor,
	token.SHIFT_LEFT:           ast.AssignmentShiftL,
	token.SHIFT_RIGHT:          ast.AssignmentShiftR,
	token.UNSIGNED_SHIFT_RIGHT: ast.AssignmentShiftRU,
}

var unaryOperators = map[token.Token]ast.UnaryOperator{
	token.NOT:         ast.UnaryNot,
	token.BITWISE_NOT: ast.UnaryBitNot,
	token.PLUS:        ast.UnaryPlus,
	token.MINUS:       ast.UnaryMinus,
	token.TYPEOF:      ast.UnaryTypeof,
	token.VOID:        ast.UnaryVoid,
	token.DELETE:      ast.UnaryDelete,
}

func (c *converter) identifier(id *oast.Identifier) *ast.Identifier {
	if id == nil {
		return nil
	}
	out := ast.NewIdentifier(id.Name)
	ast.SetSpan(out, c.spanOf(id))
	return out
}

func (c *converter) expressions(list []oast.Expression) ([]ast.Expression, error) {
	out := make([]ast.Expression, 0, len(list))
	for _, item := range list {
		expr, err := c.expression(item)
		if err != nil {
			return nil, err
		}
		out = append(out, expr)
	}
	return out, nil
}

func (c *converter) expression(node oast.Expression) (ast.Expression, error) {
	switch n := node.(type) {
	case nil:
		return nil, nil
	case *oast.EmptyExpression:
		return nil, nil
	case *oast.Identifier:
		return c.identifier(n), nil
	case *oast.ThisExpression:
		return annotateExpression(c, ast.NewThisExpression(), n), nil
	case *oast.NumberLiteral, *oast.StringLiteral, *oast.BooleanLiteral, *oast.NullLiteral, *oast.RegExpLiteral,
		*oast.ArrayLiteral, *oast.ObjectLiteral, *oast.FunctionLiteral:
		return c.literal(n)
	case *oast.AssignExpression:
		op, ok := assignmentOperators[n.Operator]
		if !ok {
			return nil, c.errorf(c.spanOf(n).Start, "unsupported assignment operator %s", n.Operator)
		}
		target, err := c.expression(n.Left)
		if err != nil {
			return nil, err
		}
		value, err := c.expression(n.Right)
		if err != nil {
			return nil, err
		}
		return annotateExpression(c, ast.NewAssignmentExpression(op, target, value), n), nil
	case *oast.BinaryExpression:
		left, err := c.expression(n.Left)
		if err != nil {
			return nil, err
		}
		right, err := c.expression(n.Right)
		if err != nil {
			return nil, err
		}
		switch n.Operator {
		case token.LOGICAL_AND:
			return annotateExpression(c, ast.NewLogicalExpression("&&", left, right), n), nil
		case token.LOGICAL_OR:
			return annotateExpression(c, ast.NewLogicalExpression("||", left, right), n), nil
		}
		op, ok := binaryOperators[n.Operator]
		if !ok {
			return nil, c.errorf(c.spanOf(n).Start, "unsupported binary operator %s", n.Operator)
		}
		return annotateExpression(c, ast.NewBinaryExpression(op, left, right), n), nil
	case *oast.UnaryExpression:
		operand, err := c.expression(n.Operand)
		if err != nil {
			return nil, err
		}
		switch n.Operator {
		case token.INCREMENT:
			return annotateExpression(c, ast.NewUpdateExpression("++", !n.Postfix, operand), n), nil
		case token.DECREMENT:
			return annotateExpression(c, ast.NewUpdateExpression("--", !n.Postfix, operand), n), nil
		}
		op, ok := unaryOperators[n.Operator]
		if !ok {
			return nil, c.errorf(c.spanOf(n).Start, "unsupported unary operator %s", n.Operator)
		}
		return annotateExpression(c, ast.NewUnaryExpression(op, operand), n), nil
	case *oast.ConditionalExpression:
		test, err := c.expression(n.Test)
		if err != nil {
			return nil, err
		}
		cons, err := c.expression(n.Consequent)
		if err != nil {
			return nil, err
		}
		alt, err := c.expression(n.Alternate)
		if err != nil {
			return nil, err
		}
		return annotateExpression(c, ast.NewConditionalExpression(test, cons, alt), n), nil
	case *oast.SequenceExpression:
		exprs, err := c.expressions(n.Sequence)
		if err != nil {
			return nil, err
		}
		return annotateExpression(c, ast.NewSequenceExpression(exprs), n), nil
	case *oast.CallExpression:
		if labeled, ok, err := c.labelIntrinsic(n); ok || err != nil {
			return labeled, err
		}
		callee, err := c.expression(n.Callee)
		if err != nil {
			return nil, err
		}
		args, err := c.expressions(n.ArgumentList)
		if err != nil {
			return nil, err
		}
		return annotateExpression(c, ast.NewCallExpression(callee, args), n), nil
	case *oast.NewExpression:
		callee, err := c.expression(n.Callee)
		if err != nil {
			return nil, err
		}
		args, err := c.expressions(n.ArgumentList)
		if err != nil {
			return nil, err
		}
		return annotateExpression(c, ast.NewNewExpression(callee, args), n), nil
	case *oast.DotExpression:
		obj, err := c.expression(n.Left)
		if err != nil {
			return nil, err
		}
		return annotateExpression(c, ast.NewMemberExpression(obj, c.identifier(n.Identifier)), n), nil
	case *oast.BracketExpression:
		obj, err := c.expression(n.Left)
		if err != nil {
			return nil, err
		}
		index, err := c.expression(n.Member)
		if err != nil {
			return nil, err
		}
		return annotateExpression(c, ast.NewIndexExpression(obj, index), n), nil
	case *oast.VariableExpression:
		return nil, c.errorf(c.position(n.Idx), "unexpected variable declaration")
	case *oast.BadExpression:
		return nil, c.errorf(c.position(n.From), "invalid expression")
	default:
		return nil, c.errorf(c.spanOf(node).Start, "unsupported expression %T", node)
	}
}

// labelIntrinsic rewrites `label("NAME", expr)` into a label expression.
func (c *converter) labelIntrinsic(call *oast.CallExpression) (ast.Expression, bool, error) {
	if c.intrinsic == "" || len(call.ArgumentList) != 2 {
		return nil, false, nil
	}
	callee, ok := call.Callee.(*oast.Identifier)
	if !ok || callee.Name != c.intrinsic {
		return nil, false, nil
	}
	name, ok := call.ArgumentList[0].(*oast.StringLiteral)
	if !ok {
		return nil, false, nil
	}
	inner, err := c.expression(call.ArgumentList[1])
	if err != nil {
		return nil, true, err
	}
	return annotateExpression(c, ast.NewLabelExpression(name.Value, inner), call), true, nil
}
