package interpreter

import (
	"fmt"
	"math"

	"flowjs/interpreter-go/pkg/runtime"
)

// binaryOp applies a binary operator to raw operands.
func (i *Interpreter) binaryOp(op string, left, right runtime.Value) (runtime.Value, error) {
	switch op {
	case "+":
		return addValues(left, right)
	case "-", "*", "/", "%":
		a, err := runtime.NumberOf(left)
		if err != nil {
			return nil, err
		}
		b, err := runtime.NumberOf(right)
		if err != nil {
			return nil, err
		}
		return runtime.Number(arithmetic(op, a, b)), nil
	case "==", "!=":
		eq, err := runtime.LooseEquals(left, right)
		if err != nil {
			return nil, err
		}
		return runtime.Bool(eq == (op == "==")), nil
	case "===":
		return runtime.Bool(runtime.StrictEquals(left, right)), nil
	case "!==":
		return runtime.Bool(!runtime.StrictEquals(left, right)), nil
	case "<", ">", "<=", ">=":
		return compareValues(op, left, right)
	case "&", "|", "^", "<<", ">>", ">>>":
		a, err := runtime.NumberOf(left)
		if err != nil {
			return nil, err
		}
		b, err := runtime.NumberOf(right)
		if err != nil {
			return nil, err
		}
		return runtime.Number(bitwise(op, runtime.Number(a), runtime.Number(b))), nil
	case "in":
		obj, ok := right.(runtime.ObjectValue)
		if !ok {
			return nil, runtime.NewTypeError("invalid 'in' operand %s", Inspect(right))
		}
		name, err := runtime.StringOf(left)
		if err != nil {
			return nil, err
		}
		return runtime.Bool(obj.AsObject().HasProperty(name)), nil
	case "instanceof":
		checker, ok := right.(runtime.InstanceChecker)
		if !ok {
			return nil, runtime.NewTypeError("invalid 'instanceof' operand %s", Inspect(right))
		}
		result, err := checker.HasInstance(left)
		if err != nil {
			return nil, err
		}
		return runtime.Bool(result), nil
	default:
		return nil, &InternalError{Message: fmt.Sprintf("unknown binary operator %s", op)}
	}
}

func addValues(left, right runtime.Value) (runtime.Value, error) {
	a, err := runtime.ToPrimitive(left, "")
	if err != nil {
		return nil, err
	}
	b, err := runtime.ToPrimitive(right, "")
	if err != nil {
		return nil, err
	}
	_, aStr := a.(runtime.StringValue)
	_, bStr := b.(runtime.StringValue)
	if aStr || bStr {
		return runtime.String(runtime.ToString(a) + runtime.ToString(b)), nil
	}
	return runtime.Number(runtime.ToNumber(a) + runtime.ToNumber(b)), nil
}

func arithmetic(op string, a, b float64) float64 {
	switch op {
	case "-":
		return a - b
	case "*":
		return a * b
	case "/":
		return a / b
	default:
		return math.Mod(a, b)
	}
}

func bitwise(op string, a, b runtime.Value) float64 {
	shift := runtime.ToUint32(b) & 31
	switch op {
	case "&":
		return float64(runtime.ToInt32(a) & runtime.ToInt32(b))
	case "|":
		return float64(runtime.ToInt32(a) | runtime.ToInt32(b))
	case "^":
		return float64(runtime.ToInt32(a) ^ runtime.ToInt32(b))
	case "<<":
		return float64(runtime.ToInt32(a) << shift)
	case ">>":
		return float64(runtime.ToInt32(a) >> shift)
	default:
		return float64(runtime.ToUint32(a) >> shift)
	}
}

// compareValues implements the relational operators. Two strings compare
// by code units; anything else compares numerically and NaN is unordered.
func compareValues(op string, left, right runtime.Value) (runtime.Value, error) {
	a, err := runtime.ToPrimitive(left, "number")
	if err != nil {
		return nil, err
	}
	b, err := runtime.ToPrimitive(right, "number")
	if err != nil {
		return nil, err
	}
	as, aStr := a.(runtime.StringValue)
	bs, bStr := b.(runtime.StringValue)
	if aStr && bStr {
		var result bool
		switch op {
		case "<":
			result = as.Val < bs.Val
		case ">":
			result = as.Val > bs.Val
		case "<=":
			result = as.Val <= bs.Val
		default:
			result = as.Val >= bs.Val
		}
		return runtime.Bool(result), nil
	}
	x, y := runtime.ToNumber(a), runtime.ToNumber(b)
	if math.IsNaN(x) || math.IsNaN(y) {
		return runtime.False, nil
	}
	var result bool
	switch op {
	case "<":
		result = x < y
	case ">":
		result = x > y
	case "<=":
		result = x <= y
	default:
		result = x >= y
	}
	return runtime.Bool(result), nil
}
