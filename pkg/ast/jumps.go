package ast

import "fmt"

// JumpError reports a break or continue with no valid target.
type JumpError struct {
	Node    Node
	Message string
}

func (e *JumpError) Error() string {
	if e.Node != nil {
		if pos := e.Node.Span().Start; pos.Line > 0 {
			return fmt.Sprintf("%s (line %d)", e.Message, pos.Line)
		}
	}
	return e.Message
}

// ResolveJumps sets the Target of every break and continue statement under
// root. Targets are node identities: `break L` exits the labeled statement L,
// `continue L` resumes the loop labeled L, and unlabeled jumps bind to the
// innermost enclosing loop (or switch, for break). Function bodies start a
// fresh target stack.
func ResolveJumps(root Node) error {
	r := &jumpResolver{}
	r.visit(root)
	return r.err
}

type jumpResolver struct {
	stack []Statement
	err   error
}

func isLoop(stmt Statement) bool {
	switch stmt.(type) {
	case *WhileStatement, *DoWhileStatement, *ForStatement, *ForInStatement:
		return true
	}
	return false
}

func (r *jumpResolver) fail(node Node, format string, args ...any) {
	if r.err == nil {
		r.err = &JumpError{Node: node, Message: fmt.Sprintf(format, args...)}
	}
}

func (r *jumpResolver) labeled(name string) *LabeledStatement {
	for i := len(r.stack) - 1; i >= 0; i-- {
		if l, ok := r.stack[i].(*LabeledStatement); ok && l.Label.Name == name {
			return l
		}
	}
	return nil
}

func (r *jumpResolver) innermost(allowSwitch bool) Statement {
	for i := len(r.stack) - 1; i >= 0; i-- {
		stmt := r.stack[i]
		if isLoop(stmt) {
			return stmt
		}
		if _, ok := stmt.(*SwitchStatement); ok && allowSwitch {
			return stmt
		}
	}
	return nil
}

func (r *jumpResolver) within(stmt Statement, node Node) {
	r.stack = append(r.stack, stmt)
	for _, child := range Children(node) {
		r.visit(child)
	}
	r.stack = r.stack[:len(r.stack)-1]
}

func (r *jumpResolver) visit(node Node) {
	switch n := node.(type) {
	case *FunctionLiteral:
		saved := r.stack
		r.stack = nil
		for _, child := range Children(n) {
			r.visit(child)
		}
		r.stack = saved
	case *LabeledStatement:
		if r.labeled(n.Label.Name) != nil {
			r.fail(n, "duplicate label %s", n.Label.Name)
		}
		r.within(n, n)
	case *WhileStatement, *DoWhileStatement, *ForStatement, *ForInStatement:
		r.within(n.(Statement), n)
	case *SwitchStatement:
		r.within(n, n)
	case *BreakStatement:
		if n.Label != nil {
			target := r.labeled(n.Label.Name)
			if target == nil {
				r.fail(n, "label not found: %s", n.Label.Name)
				return
			}
			n.Target = target
			return
		}
		if target := r.innermost(true); target != nil {
			n.Target = target
			return
		}
		r.fail(n, "invalid break")
	case *ContinueStatement:
		if n.Label != nil {
			l := r.labeled(n.Label.Name)
			if l == nil {
				r.fail(n, "label not found: %s", n.Label.Name)
				return
			}
			body := l.Body
			for {
				inner, ok := body.(*LabeledStatement)
				if !ok {
					break
				}
				body = inner.Body
			}
			if !isLoop(body) {
				r.fail(n, "invalid continue: %s is not a loop label", n.Label.Name)
				return
			}
			n.Target = body
			return
		}
		if target := r.innermost(false); target != nil {
			n.Target = target
			return
		}
		r.fail(n, "invalid continue")
	default:
		for _, child := range Children(node) {
			r.visit(child)
		}
	}
}
