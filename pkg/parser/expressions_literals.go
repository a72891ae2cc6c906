package parser

import (
	"math"
	"strconv"
	"strings"

	oast "github.com/robertkrimen/otto/ast"

	"flowjs/interpreter-go/pkg/ast"
)

func (c *converter) literal(node oast.Expression) (ast.Expression, error) {
	switch n := node.(type) {
	case *oast.NumberLiteral:
		value, err := numberValue(n)
		if err != nil {
			return nil, c.errorf(c.spanOf(n).Start, "invalid number literal %s", n.Literal)
		}
		return annotateExpression(c, ast.NewNumberLiteral(value), n), nil
	case *oast.StringLiteral:
		return annotateExpression(c, ast.NewStringLiteral(n.Value), n), nil
	case *oast.BooleanLiteral:
		return annotateExpression(c, ast.NewBooleanLiteral(n.Value), n), nil
	case *oast.NullLiteral:
		return annotateExpression(c, ast.NewNullLiteral(), n), nil
	case *oast.RegExpLiteral:
		return annotateExpression(c, ast.NewRegExpLiteral(n.Pattern, n.Flags), n), nil
	case *oast.ArrayLiteral:
		elems := make([]ast.Expression, 0, len(n.Value))
		for _, item := range n.Value {
			if item == nil {
				elems = append(elems, nil)
				continue
			}
			expr, err := c.expression(item)
			if err != nil {
				return nil, err
			}
			elems = append(elems, expr)
		}
		return annotateExpression(c, ast.NewArrayLiteral(elems), n), nil
	case *oast.ObjectLiteral:
		props := make([]*ast.Property, 0, len(n.Value))
		for _, p := range n.Value {
			value, err := c.expression(p.Value)
			if err != nil {
				return nil, err
			}
			kind := ast.PropertyInit
			switch p.Kind {
			case "get":
				kind = ast.PropertyGetter
			case "set":
				kind = ast.PropertySetter
			}
			props = append(props, ast.NewProperty(p.Key, kind, value))
		}
		return annotateExpression(c, ast.NewObjectLiteral(props), n), nil
	case *oast.FunctionLiteral:
		fn, err := c.functionLiteral(n)
		if err != nil {
			return nil, err
		}
		return fn, nil
	default:
		return nil, c.errorf(c.spanOf(node).Start, "unsupported literal %T", node)
	}
}

func numberValue(n *oast.NumberLiteral) (float64, error) {
	switch v := n.Value.(type) {
	case float64:
		return v, nil
	case int64:
		return float64(v), nil
	case int:
		return float64(v), nil
	}
	lit := strings.ToLower(n.Literal)
	switch {
	case strings.HasPrefix(lit, "0x"):
		u, err := strconv.ParseUint(lit[2:], 16, 64)
		if err != nil {
			return math.NaN(), err
		}
		return float64(u), nil
	default:
		return strconv.ParseFloat(lit, 64)
	}
}

func (c *converter) functionLiteral(n *oast.FunctionLiteral) (*ast.FunctionLiteral, error) {
	var params []*ast.Identifier
	if n.ParameterList != nil {
		params = make([]*ast.Identifier, 0, len(n.ParameterList.List))
		for _, p := range n.ParameterList.List {
			params = append(params, c.identifier(p))
		}
	}
	var body []ast.Statement
	switch b := n.Body.(type) {
	case nil:
	case *oast.BlockStatement:
		if b != nil {
			stmts, err := c.statements(b.List)
			if err != nil {
				return nil, err
			}
			body = stmts
		}
	default:
		stmt, err := c.statement(b)
		if err != nil {
			return nil, err
		}
		body = []ast.Statement{stmt}
	}
	fn := ast.NewFunctionLiteral(c.identifier(n.Name), params, body)
	fn.Source = n.Source
	ast.SetSpan(fn, c.spanOf(n))
	return fn, nil
}
