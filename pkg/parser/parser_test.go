package parser_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"flowjs/interpreter-go/pkg/ast"
	"flowjs/interpreter-go/pkg/parser"
)

func mustParse(t *testing.T, source string) *ast.Program {
	t.Helper()
	prog, err := parser.ParseScript("test.js", []byte(source), 1)
	if err != nil {
		t.Fatalf("ParseScript returned error: %v", err)
	}
	return prog
}

func nodeTypes(stmts []ast.Statement) []ast.NodeType {
	out := make([]ast.NodeType, 0, len(stmts))
	for _, s := range stmts {
		out = append(out, s.NodeType())
	}
	return out
}

func TestParseScriptVarAndExpression(t *testing.T) {
	prog := mustParse(t, "var x = 3; x")
	want := []ast.NodeType{ast.NodeVarDeclaration, ast.NodeIdentifier}
	if diff := cmp.Diff(want, nodeTypes(prog.Body)); diff != "" {
		t.Fatalf("body mismatch (-want +got):\n%s", diff)
	}
	if len(prog.Vars) != 1 || prog.Vars[0].Name != "x" {
		t.Fatalf("expected x to be hoisted, got %+v", prog.Vars)
	}
	decl := prog.Body[0].(*ast.VarDeclaration)
	num, ok := decl.Declarations[0].Init.(*ast.NumberLiteral)
	if !ok || num.Value != 3 {
		t.Fatalf("unexpected initializer %#v", decl.Declarations[0].Init)
	}
	if prog.Source != "test.js" {
		t.Fatalf("source = %q", prog.Source)
	}
}

func TestParseLabelIntrinsic(t *testing.T) {
	prog := mustParse(t, `var h = label("H", 1 + 2);`)
	decl := prog.Body[0].(*ast.VarDeclaration)
	lbl, ok := decl.Declarations[0].Init.(*ast.LabelExpression)
	if !ok {
		t.Fatalf("expected label expression, got %T", decl.Declarations[0].Init)
	}
	if lbl.Label != "H" {
		t.Fatalf("label = %q, want H", lbl.Label)
	}
	if _, ok := lbl.Expression.(*ast.BinaryExpression); !ok {
		t.Fatalf("expected binary operand, got %T", lbl.Expression)
	}

	plain, err := (&parser.ScriptParser{}).ParseScript("", []byte(`label("H", 1)`), 1)
	if err != nil {
		t.Fatalf("ParseScript: %v", err)
	}
	if _, ok := plain.Body[0].(*ast.CallExpression); !ok {
		t.Fatalf("expected ordinary call with the intrinsic disabled, got %T", plain.Body[0])
	}
}

func TestParseFunctionForms(t *testing.T) {
	prog := mustParse(t, `
function top() { function innerDecl() {} }
if (true) { function nested() {} }
var f = function named() {};
`)
	if len(prog.Functions) != 1 || prog.Functions[0].Name() != "top" {
		t.Fatalf("expected top to be hoisted, got %d", len(prog.Functions))
	}
	top := prog.Functions[0]
	if top.Form != ast.FormDeclared {
		t.Fatalf("top form = %s", top.Form)
	}
	if len(top.Functions) != 1 || top.Functions[0].Form != ast.FormDeclared {
		t.Fatalf("expected innerDecl to be declared inside top")
	}
	ifStmt := prog.Body[1].(*ast.IfStatement)
	block := ifStmt.Consequent.(*ast.BlockStatement)
	nested := block.Body[0].(*ast.FunctionDeclaration)
	if nested.Function.Form != ast.FormStatement {
		t.Fatalf("nested form = %s", nested.Function.Form)
	}
	decl := prog.Body[2].(*ast.VarDeclaration)
	expr := decl.Declarations[0].Init.(*ast.FunctionLiteral)
	if expr.Form != ast.FormExpression || expr.Name() != "named" {
		t.Fatalf("unexpected function expression %+v", expr)
	}
	if expr.Source == "" {
		t.Fatalf("expected function source text to be kept")
	}
}

func TestParseOperators(t *testing.T) {
	prog := mustParse(t, "a += 1; b >>>= 2; i++; --j; c && d; typeof e; x instanceof Y; 'k' in o;")
	assign := prog.Body[0].(*ast.AssignmentExpression)
	if assign.Operator != ast.AssignmentAdd {
		t.Fatalf("operator = %s", assign.Operator)
	}
	if op := prog.Body[1].(*ast.AssignmentExpression).Operator; op != ast.AssignmentShiftRU {
		t.Fatalf("operator = %s", op)
	}
	post := prog.Body[2].(*ast.UpdateExpression)
	if post.Prefix || post.Operator != "++" {
		t.Fatalf("unexpected postfix update %+v", post)
	}
	pre := prog.Body[3].(*ast.UpdateExpression)
	if !pre.Prefix || pre.Operator != "--" {
		t.Fatalf("unexpected prefix update %+v", pre)
	}
	if _, ok := prog.Body[4].(*ast.LogicalExpression); !ok {
		t.Fatalf("expected logical expression, got %T", prog.Body[4])
	}
	if un := prog.Body[5].(*ast.UnaryExpression); un.Operator != ast.UnaryTypeof {
		t.Fatalf("operator = %s", un.Operator)
	}
	if bin := prog.Body[6].(*ast.BinaryExpression); bin.Operator != "instanceof" {
		t.Fatalf("operator = %s", bin.Operator)
	}
	if bin := prog.Body[7].(*ast.BinaryExpression); bin.Operator != "in" {
		t.Fatalf("operator = %s", bin.Operator)
	}
}

func TestParseLoopsAndJumps(t *testing.T) {
	prog := mustParse(t, `
outer: for (var i = 0; i < 3; i++) {
  for (var k in o) {
    if (k) continue outer;
    break;
  }
}
`)
	labeled := prog.Body[0].(*ast.LabeledStatement)
	outer := labeled.Body.(*ast.ForStatement)
	if _, ok := outer.Init.(*ast.VarDeclaration); !ok {
		t.Fatalf("expected var initializer, got %T", outer.Init)
	}
	forIn := outer.Body.(*ast.BlockStatement).Body[0].(*ast.ForInStatement)
	if _, ok := forIn.Left.(*ast.VarDeclaration); !ok {
		t.Fatalf("expected var for-in target, got %T", forIn.Left)
	}
	body := forIn.Body.(*ast.BlockStatement).Body
	cont := body[0].(*ast.IfStatement).Consequent.(*ast.ContinueStatement)
	if cont.Target != outer {
		t.Fatalf("continue outer should target the outer loop")
	}
	brk := body[1].(*ast.BreakStatement)
	if brk.Target != forIn {
		t.Fatalf("break should target the for-in loop")
	}

	var names []string
	for _, v := range prog.Vars {
		names = append(names, v.Name)
	}
	if diff := cmp.Diff([]string{"i", "k"}, names); diff != "" {
		t.Fatalf("hoisted vars mismatch (-want +got):\n%s", diff)
	}
}

func TestParseTrySwitchAndLiterals(t *testing.T) {
	prog := mustParse(t, `
try { throw 1; } catch (e) { e; } finally { 2; }
switch (x) { case 1: y; default: z; case 2: w; }
var a = [1, , 3];
var o = { p: 1, get q() { return 2; } };
`)
	try := prog.Body[0].(*ast.TryStatement)
	if len(try.Handlers) != 1 || try.Handlers[0].Param.Name != "e" || try.Finalizer == nil {
		t.Fatalf("unexpected try statement %+v", try)
	}
	sw := prog.Body[1].(*ast.SwitchStatement)
	if sw.DefaultIndex != 1 || len(sw.Cases) != 3 {
		t.Fatalf("unexpected switch %+v", sw)
	}
	arr := prog.Body[2].(*ast.VarDeclaration).Declarations[0].Init.(*ast.ArrayLiteral)
	if len(arr.Elements) != 3 || arr.Elements[1] != nil {
		t.Fatalf("expected a hole in the array literal, got %#v", arr.Elements)
	}
	obj := prog.Body[3].(*ast.VarDeclaration).Declarations[0].Init.(*ast.ObjectLiteral)
	if len(obj.Properties) != 2 || obj.Properties[1].Kind != ast.PropertyGetter {
		t.Fatalf("unexpected object literal %+v", obj.Properties)
	}
}

func TestParseSpansHonorStartLine(t *testing.T) {
	prog, err := parser.ParseScript("f.js", []byte("\nvar x = 1;"), 10)
	if err != nil {
		t.Fatalf("ParseScript: %v", err)
	}
	if line := prog.Body[0].Span().Start.Line; line != 11 {
		t.Fatalf("line = %d, want 11", line)
	}
}

func TestParseErrors(t *testing.T) {
	_, err := parser.ParseScript("bad.js", []byte("var = ;"), 5)
	var perr *parser.Error
	if !errors.As(err, &perr) {
		t.Fatalf("expected parser error, got %v", err)
	}
	if perr.Filename != "bad.js" || perr.Line != 5 {
		t.Fatalf("unexpected error position %+v", perr)
	}

	if _, err := parser.ParseScript("", []byte("function f() { break; }"), 1); err == nil {
		t.Fatalf("expected break outside a loop to fail")
	}
}

func TestParseErrorsReportFirstOttoError(t *testing.T) {
	cases := []struct {
		source string
		line   int
	}{
		{"(", 3},
		{"var a = 1;\nvar b = ;", 4},
		{"function f() {", 3},
	}
	for _, tc := range cases {
		_, err := parser.ParseScript("unfinished.js", []byte(tc.source), 3)
		var perr *parser.Error
		if !errors.As(err, &perr) {
			t.Fatalf("%q: expected parser error, got %v", tc.source, err)
		}
		if perr.Filename != "unfinished.js" || perr.Line != tc.line || perr.Message == "" {
			t.Fatalf("%q: unexpected error %+v", tc.source, perr)
		}
	}
}
