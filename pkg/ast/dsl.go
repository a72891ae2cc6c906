package ast

// Program helpers.

// Script builds a program from statements and resolves its jump targets.
// It panics on unresolvable jumps, so it is meant for hand-built trees.
func Script(body ...Statement) *Program {
	p := NewProgram("", body)
	if err := ResolveJumps(p); err != nil {
		panic(err)
	}
	return p
}

// Identifier and literal helpers.

func ID(name string) *Identifier {
	return NewIdentifier(name)
}

func Num(value float64) *NumberLiteral {
	return NewNumberLiteral(value)
}

func Str(value string) *StringLiteral {
	return NewStringLiteral(value)
}

func Bool(value bool) *BooleanLiteral {
	return NewBooleanLiteral(value)
}

func Null() *NullLiteral {
	return NewNullLiteral()
}

func Regex(pattern, flags string) *RegExpLiteral {
	return NewRegExpLiteral(pattern, flags)
}

func Arr(elements ...Expression) *ArrayLiteral {
	return NewArrayLiteral(elements)
}

func Obj(props ...*Property) *ObjectLiteral {
	return NewObjectLiteral(props)
}

func Prop(key string, value Expression) *Property {
	return NewProperty(key, PropertyInit, value)
}

func Getter(key string, fn *FunctionLiteral) *Property {
	return NewProperty(key, PropertyGetter, fn)
}

func Setter(key string, fn *FunctionLiteral) *Property {
	return NewProperty(key, PropertySetter, fn)
}

func This() *ThisExpression {
	return NewThisExpression()
}

// Function helpers.

func params(names []string) []*Identifier {
	out := make([]*Identifier, len(names))
	for i, name := range names {
		out[i] = ID(name)
	}
	return out
}

// Fn builds a function expression; name may be "".
func Fn(name string, paramNames []string, body ...Statement) *FunctionLiteral {
	var id *Identifier
	if name != "" {
		id = ID(name)
	}
	return NewFunctionLiteral(id, params(paramNames), body)
}

// FnDecl builds `function name(params) { body }` in statement position.
func FnDecl(name string, paramNames []string, body ...Statement) *FunctionDeclaration {
	return NewFunctionDeclaration(Fn(name, paramNames, body...))
}

// Expression helpers.

func Assign(target, value Expression) *AssignmentExpression {
	return NewAssignmentExpression(AssignmentAssign, target, value)
}

func AssignOp(op AssignmentOperator, target, value Expression) *AssignmentExpression {
	return NewAssignmentExpression(op, target, value)
}

func Bin(op string, left, right Expression) *BinaryExpression {
	return NewBinaryExpression(op, left, right)
}

func And(left, right Expression) *LogicalExpression {
	return NewLogicalExpression("&&", left, right)
}

func Or(left, right Expression) *LogicalExpression {
	return NewLogicalExpression("||", left, right)
}

func Un(op UnaryOperator, operand Expression) *UnaryExpression {
	return NewUnaryExpression(op, operand)
}

func Inc(operand Expression, prefix bool) *UpdateExpression {
	return NewUpdateExpression("++", prefix, operand)
}

func Dec(operand Expression, prefix bool) *UpdateExpression {
	return NewUpdateExpression("--", prefix, operand)
}

func Cond(test, consequent, alternate Expression) *ConditionalExpression {
	return NewConditionalExpression(test, consequent, alternate)
}

func Seq(exprs ...Expression) *SequenceExpression {
	return NewSequenceExpression(exprs)
}

func Call(callee Expression, args ...Expression) *CallExpression {
	return NewCallExpression(callee, args)
}

func CallName(name string, args ...Expression) *CallExpression {
	return NewCallExpression(ID(name), args)
}

func New(callee Expression, args ...Expression) *NewExpression {
	return NewNewExpression(callee, args)
}

func Member(object Expression, name string) *MemberExpression {
	return NewMemberExpression(object, ID(name))
}

func Index(object, index Expression) *IndexExpression {
	return NewIndexExpression(object, index)
}

// Tag classifies the value of expr with the named label.
func Tag(label string, expr Expression) *LabelExpression {
	return NewLabelExpression(label, expr)
}

// Statement helpers.

func Block(body ...Statement) *BlockStatement {
	return NewBlockStatement(body)
}

func Var(name string, init Expression) *VarDeclaration {
	return NewVarDeclaration(VarKindVar, []*VariableDeclarator{NewVariableDeclarator(ID(name), init)})
}

func Const(name string, init Expression) *VarDeclaration {
	return NewVarDeclaration(VarKindConst, []*VariableDeclarator{NewVariableDeclarator(ID(name), init)})
}

func If(test Expression, consequent Statement, alternate Statement) *IfStatement {
	return NewIfStatement(test, consequent, alternate)
}

func Switch(discriminant Expression, cases ...*SwitchCase) *SwitchStatement {
	return NewSwitchStatement(discriminant, cases)
}

func Case(test Expression, body ...Statement) *SwitchCase {
	return NewSwitchCase(test, body)
}

func Default(body ...Statement) *SwitchCase {
	return NewSwitchCase(nil, body)
}

func While(test Expression, body ...Statement) *WhileStatement {
	return NewWhileStatement(test, Block(body...))
}

func DoWhile(test Expression, body ...Statement) *DoWhileStatement {
	return NewDoWhileStatement(Block(body...), test)
}

func For(init Statement, test, update Expression, body ...Statement) *ForStatement {
	return NewForStatement(init, test, update, Block(body...))
}

func ForIn(left Statement, right Expression, body ...Statement) *ForInStatement {
	return NewForInStatement(left, right, Block(body...))
}

func Brk(label string) *BreakStatement {
	if label == "" {
		return NewBreakStatement(nil)
	}
	return NewBreakStatement(ID(label))
}

func Cont(label string) *ContinueStatement {
	if label == "" {
		return NewContinueStatement(nil)
	}
	return NewContinueStatement(ID(label))
}

func Ret(argument Expression) *ReturnStatement {
	return NewReturnStatement(argument)
}

func Throw(argument Expression) *ThrowStatement {
	return NewThrowStatement(argument)
}

func Try(block *BlockStatement, handlers []*CatchClause, finalizer *BlockStatement) *TryStatement {
	return NewTryStatement(block, handlers, finalizer)
}

func Catch(param string, guard Expression, body ...Statement) *CatchClause {
	return NewCatchClause(ID(param), guard, Block(body...))
}

func Labeled(label string, body Statement) *LabeledStatement {
	return NewLabeledStatement(ID(label), body)
}

func With(object Expression, body ...Statement) *WithStatement {
	return NewWithStatement(object, Block(body...))
}

func Empty() *EmptyStatement {
	return NewEmptyStatement()
}

func Debugger() *DebuggerStatement {
	return NewDebuggerStatement()
}
