package ast

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestHoistCollectsVarsAndDeclaredFunctions(t *testing.T) {
	inner := FnDecl("inner", nil)
	top := FnDecl("top", []string{"a"})
	prog := NewProgram("", []Statement{
		Var("x", Num(1)),
		top,
		If(ID("x"), Block(Var("y", nil), inner), nil),
		For(Var("i", Num(0)), nil, nil, Var("x", nil)),
		Try(Block(Var("z", nil)), []*CatchClause{Catch("e", nil, Var("w", nil))}, nil),
		Const("k", Num(2)),
	})

	var names []string
	for _, v := range prog.Vars {
		names = append(names, v.Name)
	}
	if diff := cmp.Diff([]string{"x", "y", "i", "z", "w", "k"}, names); diff != "" {
		t.Fatalf("hoisted vars mismatch (-want +got):\n%s", diff)
	}
	if !prog.Vars[len(prog.Vars)-1].Const {
		t.Fatalf("expected k to be const")
	}
	if len(prog.Functions) != 1 || prog.Functions[0] != top.Function {
		t.Fatalf("expected only top to be hoisted, got %d functions", len(prog.Functions))
	}
	if top.Function.Form != FormDeclared {
		t.Fatalf("top form = %s, want declared", top.Function.Form)
	}
	if inner.Function.Form != FormStatement {
		t.Fatalf("inner form = %s, want statement", inner.Function.Form)
	}
}

func TestHoistDoesNotEnterNestedFunctions(t *testing.T) {
	prog := NewProgram("", []Statement{
		Assign(ID("f"), Fn("", nil, Var("hidden", nil))),
	})
	if len(prog.Vars) != 0 {
		t.Fatalf("expected no hoisted vars, got %+v", prog.Vars)
	}
	fn := prog.Body[0].(*AssignmentExpression).Value.(*FunctionLiteral)
	if len(fn.Vars) != 1 || fn.Vars[0].Name != "hidden" {
		t.Fatalf("expected function to hoist its own var, got %+v", fn.Vars)
	}
	if fn.Form != FormExpression {
		t.Fatalf("function literal form = %s, want expression", fn.Form)
	}
}

func TestResolveJumpsBindsByIdentity(t *testing.T) {
	innerBreak := Brk("outer")
	innerContinue := Cont("outer")
	plainBreak := Brk("")
	inner := While(Bool(true), innerBreak, innerContinue, plainBreak)
	outer := While(Bool(true), inner)
	labeled := Labeled("outer", outer)
	Script(labeled)

	if innerBreak.Target != labeled {
		t.Fatalf("break outer should target the labeled statement")
	}
	if innerContinue.Target != outer {
		t.Fatalf("continue outer should target the outer loop")
	}
	if plainBreak.Target != inner {
		t.Fatalf("unlabeled break should target the innermost loop")
	}
}

func TestResolveJumpsSwitchAndFunctions(t *testing.T) {
	caseBreak := Brk("")
	sw := Switch(Num(1), Case(Num(1), caseBreak))
	loopContinue := Cont("")
	loop := While(Bool(true), sw, loopContinue)
	Script(loop)
	if caseBreak.Target != sw {
		t.Fatalf("break inside switch should target the switch")
	}
	if loopContinue.Target != loop {
		t.Fatalf("continue should target the loop")
	}

	nested := NewProgram("", []Statement{
		While(Bool(true), Assign(ID("f"), Fn("", nil, Brk("")))),
	})
	err := ResolveJumps(nested)
	var jumpErr *JumpError
	if !errors.As(err, &jumpErr) {
		t.Fatalf("expected jump error for break across a function boundary, got %v", err)
	}
}

func TestResolveJumpsRejectsContinueToNonLoop(t *testing.T) {
	prog := NewProgram("", []Statement{
		Labeled("blk", Block(While(Bool(true), Cont("blk")))),
	})
	if err := ResolveJumps(prog); err == nil {
		t.Fatalf("expected continue to a block label to fail")
	}
}

func TestSwitchRecordsDefaultIndex(t *testing.T) {
	sw := Switch(ID("x"), Case(Num(1)), Default(), Case(Num(2)))
	if sw.DefaultIndex != 1 {
		t.Fatalf("default index = %d, want 1", sw.DefaultIndex)
	}
	if none := Switch(ID("x"), Case(Num(1))); none.DefaultIndex != -1 {
		t.Fatalf("default index = %d, want -1", none.DefaultIndex)
	}
}

func TestChildrenOrderAndSpans(t *testing.T) {
	call := Call(Member(ID("o"), "f"), Num(1), Str("a"))
	kids := Children(call)
	var kinds []NodeType
	for _, k := range kids {
		kinds = append(kinds, k.NodeType())
	}
	want := []NodeType{NodeMemberExpression, NodeNumberLiteral, NodeStringLiteral}
	if diff := cmp.Diff(want, kinds); diff != "" {
		t.Fatalf("children mismatch (-want +got):\n%s", diff)
	}

	id := ID("x")
	SetSpan(id, Span{Start: Position{Line: 3, Column: 4}})
	if id.Span().Start.Line != 3 {
		t.Fatalf("expected span to be recorded, got %+v", id.Span())
	}

	count := 0
	Inspect(Script(Var("a", Bin("+", Num(1), Num(2)))), func(Node) bool {
		count++
		return true
	})
	if count != 7 {
		t.Fatalf("inspect visited %d nodes, want 7", count)
	}
}

func TestCompoundAssignmentOperator(t *testing.T) {
	if got := AssignmentShiftRU.BinaryOperator(); got != ">>>" {
		t.Fatalf("got %q", got)
	}
	if got := AssignmentAssign.BinaryOperator(); got != "" {
		t.Fatalf("got %q", got)
	}
}
