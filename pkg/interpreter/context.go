package interpreter

import (
	"flowjs/interpreter-go/pkg/lattice"
	"flowjs/interpreter-go/pkg/runtime"
)

// CodeKind distinguishes the three kinds of activation.
type CodeKind int

const (
	GlobalCode CodeKind = iota
	EvalCode
	FunctionCode
)

func (k CodeKind) String() string {
	switch k {
	case GlobalCode:
		return "global"
	case EvalCode:
		return "eval"
	case FunctionCode:
		return "function"
	default:
		return "unknown"
	}
}

// Context is the state of one activation: the program counter label, the
// current scope chain and the dynamic link to the caller. Result holds the
// value of the last expression statement.
type Context struct {
	Kind   CodeKind
	PC     lattice.Label
	Scope  *runtime.Frame
	This   runtime.Value
	Caller *Context
	Callee runtime.ObjectValue
	Result runtime.Value
}

// scopeSpace is the store that declarations made at the current pc go to.
func (c *Context) scopeSpace() *runtime.Object {
	return c.Scope.Store(c.PC).AsObject()
}
