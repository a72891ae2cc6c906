package ast

// Statements

type BlockStatement struct {
	nodeImpl
	statementMarker

	Body []Statement `json:"body"`
}

func NewBlockStatement(body []Statement) *BlockStatement {
	return &BlockStatement{nodeImpl: newNodeImpl(NodeBlockStatement), Body: body}
}

type VarKind string

const (
	VarKindVar   VarKind = "var"
	VarKindConst VarKind = "const"
)

type VariableDeclarator struct {
	nodeImpl

	ID   *Identifier `json:"id"`
	Init Expression  `json:"init,omitempty"`
}

func NewVariableDeclarator(id *Identifier, init Expression) *VariableDeclarator {
	return &VariableDeclarator{nodeImpl: newNodeImpl(NodeVariableDeclarator), ID: id, Init: init}
}

type VarDeclaration struct {
	nodeImpl
	statementMarker

	Kind         VarKind               `json:"kind"`
	Declarations []*VariableDeclarator `json:"declarations"`
}

func NewVarDeclaration(kind VarKind, declarations []*VariableDeclarator) *VarDeclaration {
	return &VarDeclaration{nodeImpl: newNodeImpl(NodeVarDeclaration), Kind: kind, Declarations: declarations}
}

type IfStatement struct {
	nodeImpl
	statementMarker

	Test       Expression `json:"test"`
	Consequent Statement  `json:"consequent"`
	Alternate  Statement  `json:"alternate,omitempty"`
}

func NewIfStatement(test Expression, consequent, alternate Statement) *IfStatement {
	return &IfStatement{nodeImpl: newNodeImpl(NodeIfStatement), Test: test, Consequent: consequent, Alternate: alternate}
}

// SwitchCase is `case Test:` or, when Test is nil, `default:`.
type SwitchCase struct {
	nodeImpl

	Test Expression  `json:"test,omitempty"`
	Body []Statement `json:"body"`
}

func NewSwitchCase(test Expression, body []Statement) *SwitchCase {
	return &SwitchCase{nodeImpl: newNodeImpl(NodeSwitchCase), Test: test, Body: body}
}

type SwitchStatement struct {
	nodeImpl
	statementMarker

	Discriminant Expression    `json:"discriminant"`
	Cases        []*SwitchCase `json:"cases"`
	DefaultIndex int           `json:"defaultIndex"`
}

func NewSwitchStatement(discriminant Expression, cases []*SwitchCase) *SwitchStatement {
	sw := &SwitchStatement{nodeImpl: newNodeImpl(NodeSwitchStatement), Discriminant: discriminant, Cases: cases, DefaultIndex: -1}
	for i, c := range cases {
		if c.Test == nil {
			sw.DefaultIndex = i
			break
		}
	}
	return sw
}

type WhileStatement struct {
	nodeImpl
	statementMarker

	Test Expression `json:"test"`
	Body Statement  `json:"body"`
}

func NewWhileStatement(test Expression, body Statement) *WhileStatement {
	return &WhileStatement{nodeImpl: newNodeImpl(NodeWhileStatement), Test: test, Body: body}
}

type DoWhileStatement struct {
	nodeImpl
	statementMarker

	Body Statement  `json:"body"`
	Test Expression `json:"test"`
}

func NewDoWhileStatement(body Statement, test Expression) *DoWhileStatement {
	return &DoWhileStatement{nodeImpl: newNodeImpl(NodeDoWhileStatement), Body: body, Test: test}
}

// ForStatement Init is nil, an Expression or a *VarDeclaration.
type ForStatement struct {
	nodeImpl
	statementMarker

	Init   Statement  `json:"init,omitempty"`
	Test   Expression `json:"test,omitempty"`
	Update Expression `json:"update,omitempty"`
	Body   Statement  `json:"body"`
}

func NewForStatement(init Statement, test, update Expression, body Statement) *ForStatement {
	return &ForStatement{nodeImpl: newNodeImpl(NodeForStatement), Init: init, Test: test, Update: update, Body: body}
}

// ForInStatement Left is an assignable Expression or a *VarDeclaration with
// a single declarator.
type ForInStatement struct {
	nodeImpl
	statementMarker

	Left  Statement  `json:"left"`
	Right Expression `json:"right"`
	Body  Statement  `json:"body"`
}

func NewForInStatement(left Statement, right Expression, body Statement) *ForInStatement {
	return &ForInStatement{nodeImpl: newNodeImpl(NodeForInStatement), Left: left, Right: right, Body: body}
}

// BreakStatement Target is the statement it exits, resolved by ResolveJumps.
type BreakStatement struct {
	nodeImpl
	statementMarker

	Label  *Identifier `json:"label,omitempty"`
	Target Statement   `json:"-"`
}

func NewBreakStatement(label *Identifier) *BreakStatement {
	return &BreakStatement{nodeImpl: newNodeImpl(NodeBreakStatement), Label: label}
}

// ContinueStatement Target is always a loop, resolved by ResolveJumps.
type ContinueStatement struct {
	nodeImpl
	statementMarker

	Label  *Identifier `json:"label,omitempty"`
	Target Statement   `json:"-"`
}

func NewContinueStatement(label *Identifier) *ContinueStatement {
	return &ContinueStatement{nodeImpl: newNodeImpl(NodeContinueStatement), Label: label}
}

type ReturnStatement struct {
	nodeImpl
	statementMarker

	Argument Expression `json:"argument,omitempty"`
}

func NewReturnStatement(argument Expression) *ReturnStatement {
	return &ReturnStatement{nodeImpl: newNodeImpl(NodeReturnStatement), Argument: argument}
}

type ThrowStatement struct {
	nodeImpl
	statementMarker

	Argument Expression `json:"argument"`
}

func NewThrowStatement(argument Expression) *ThrowStatement {
	return &ThrowStatement{nodeImpl: newNodeImpl(NodeThrowStatement), Argument: argument}
}

// CatchClause binds the thrown value to Param. A non-nil Guard that
// evaluates falsy passes the exception on to the next clause.
type CatchClause struct {
	nodeImpl

	Param *Identifier     `json:"param"`
	Guard Expression      `json:"guard,omitempty"`
	Body  *BlockStatement `json:"body"`
}

func NewCatchClause(param *Identifier, guard Expression, body *BlockStatement) *CatchClause {
	return &CatchClause{nodeImpl: newNodeImpl(NodeCatchClause), Param: param, Guard: guard, Body: body}
}

type TryStatement struct {
	nodeImpl
	statementMarker

	Block     *BlockStatement `json:"block"`
	Handlers  []*CatchClause  `json:"handlers,omitempty"`
	Finalizer *BlockStatement `json:"finalizer,omitempty"`
}

func NewTryStatement(block *BlockStatement, handlers []*CatchClause, finalizer *BlockStatement) *TryStatement {
	return &TryStatement{nodeImpl: newNodeImpl(NodeTryStatement), Block: block, Handlers: handlers, Finalizer: finalizer}
}

type LabeledStatement struct {
	nodeImpl
	statementMarker

	Label *Identifier `json:"label"`
	Body  Statement   `json:"body"`
}

func NewLabeledStatement(label *Identifier, body Statement) *LabeledStatement {
	return &LabeledStatement{nodeImpl: newNodeImpl(NodeLabeledStatement), Label: label, Body: body}
}

type WithStatement struct {
	nodeImpl
	statementMarker

	Object Expression `json:"object"`
	Body   Statement  `json:"body"`
}

func NewWithStatement(object Expression, body Statement) *WithStatement {
	return &WithStatement{nodeImpl: newNodeImpl(NodeWithStatement), Object: object, Body: body}
}

type EmptyStatement struct {
	nodeImpl
	statementMarker
}

func NewEmptyStatement() *EmptyStatement {
	return &EmptyStatement{nodeImpl: newNodeImpl(NodeEmptyStatement)}
}

type DebuggerStatement struct {
	nodeImpl
	statementMarker
}

func NewDebuggerStatement() *DebuggerStatement {
	return &DebuggerStatement{nodeImpl: newNodeImpl(NodeDebuggerStatement)}
}
