package interpreter

import (
	"flowjs/interpreter-go/pkg/ast"
	"flowjs/interpreter-go/pkg/runtime"
)

// CompletionKind classifies how a statement finished.
type CompletionKind int

const (
	Normal CompletionKind = iota
	Break
	Continue
	Return
	Throw
)

func (k CompletionKind) String() string {
	switch k {
	case Normal:
		return "normal"
	case Break:
		return "break"
	case Continue:
		return "continue"
	case Return:
		return "return"
	case Throw:
		return "throw"
	default:
		return "unknown"
	}
}

// Completion is the outcome of evaluating a statement. Break and Continue
// carry the statement they exit by identity; Return and Throw carry a value.
// Line records where a throw originated.
type Completion struct {
	Kind   CompletionKind
	Value  runtime.Value
	Target ast.Statement
	Line   int
}

var normalCompletion = Completion{Kind: Normal}

// Abrupt reports whether the completion transfers control.
func (c Completion) Abrupt() bool {
	return c.Kind != Normal
}

// loopControl interprets the completion of a loop body. stop reports
// whether the loop must exit; out is the completion the loop then returns.
func loopControl(c Completion, loop ast.Statement) (stop bool, out Completion) {
	switch c.Kind {
	case Break:
		if c.Target == loop {
			return true, normalCompletion
		}
		return true, c
	case Continue:
		if c.Target == loop {
			return false, normalCompletion
		}
		return true, c
	case Return, Throw:
		return true, c
	}
	return false, normalCompletion
}
