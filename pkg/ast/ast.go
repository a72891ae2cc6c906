package ast

type NodeType string

const (
	NodeProgram               NodeType = "Program"
	NodeBlockStatement        NodeType = "BlockStatement"
	NodeVarDeclaration        NodeType = "VarDeclaration"
	NodeVariableDeclarator    NodeType = "VariableDeclarator"
	NodeFunctionDeclaration   NodeType = "FunctionDeclaration"
	NodeIfStatement           NodeType = "IfStatement"
	NodeSwitchStatement       NodeType = "SwitchStatement"
	NodeSwitchCase            NodeType = "SwitchCase"
	NodeWhileStatement        NodeType = "WhileStatement"
	NodeDoWhileStatement      NodeType = "DoWhileStatement"
	NodeForStatement          NodeType = "ForStatement"
	NodeForInStatement        NodeType = "ForInStatement"
	NodeBreakStatement        NodeType = "BreakStatement"
	NodeContinueStatement     NodeType = "ContinueStatement"
	NodeReturnStatement       NodeType = "ReturnStatement"
	NodeThrowStatement        NodeType = "ThrowStatement"
	NodeTryStatement          NodeType = "TryStatement"
	NodeCatchClause           NodeType = "CatchClause"
	NodeLabeledStatement      NodeType = "LabeledStatement"
	NodeWithStatement         NodeType = "WithStatement"
	NodeEmptyStatement        NodeType = "EmptyStatement"
	NodeDebuggerStatement     NodeType = "DebuggerStatement"
	NodeIdentifier            NodeType = "Identifier"
	NodeNumberLiteral         NodeType = "NumberLiteral"
	NodeStringLiteral         NodeType = "StringLiteral"
	NodeBooleanLiteral        NodeType = "BooleanLiteral"
	NodeNullLiteral           NodeType = "NullLiteral"
	NodeRegExpLiteral         NodeType = "RegExpLiteral"
	NodeArrayLiteral          NodeType = "ArrayLiteral"
	NodeObjectLiteral         NodeType = "ObjectLiteral"
	NodeProperty              NodeType = "Property"
	NodeFunctionLiteral       NodeType = "FunctionLiteral"
	NodeThisExpression        NodeType = "ThisExpression"
	NodeAssignmentExpression  NodeType = "AssignmentExpression"
	NodeBinaryExpression      NodeType = "BinaryExpression"
	NodeLogicalExpression     NodeType = "LogicalExpression"
	NodeUnaryExpression       NodeType = "UnaryExpression"
	NodeUpdateExpression      NodeType = "UpdateExpression"
	NodeConditionalExpression NodeType = "ConditionalExpression"
	NodeSequenceExpression    NodeType = "SequenceExpression"
	NodeCallExpression        NodeType = "CallExpression"
	NodeNewExpression         NodeType = "NewExpression"
	NodeMemberExpression      NodeType = "MemberExpression"
	NodeIndexExpression       NodeType = "IndexExpression"
	NodeLabelExpression       NodeType = "LabelExpression"
)

type Node interface {
	NodeType() NodeType
	Span() Span
	isNode()
}

type Position struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

type Span struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

type nodeImpl struct {
	Type NodeType `json:"type"`
	span Span
}

func newNodeImpl(kind NodeType) nodeImpl {
	return nodeImpl{Type: kind}
}

func (n nodeImpl) NodeType() NodeType { return n.Type }
func (n nodeImpl) Span() Span         { return n.span }
func (nodeImpl) isNode()              {}
func (n *nodeImpl) setSpan(span Span) { n.span = span }

type spanSetter interface {
	setSpan(Span)
}

// SetSpan records the source span of node.
func SetSpan(node Node, span Span) {
	if s, ok := node.(spanSetter); ok {
		s.setSpan(span)
	}
}

// Marker interfaces.

type Expression interface {
	Node
	expressionNode()
	statementNode()
}

type expressionMarker struct{}

func (expressionMarker) expressionNode() {}

type Statement interface {
	Node
	statementNode()
}

type statementMarker struct{}

func (statementMarker) statementNode() {}

type Literal interface {
	Expression
	literalNode()
}

type literalMarker struct{}

func (literalMarker) literalNode() {}

// Program

// Program is a parsed script. Vars and Functions hold the declarations
// hoisted out of Body.
type Program struct {
	nodeImpl

	Source    string             `json:"source,omitempty"`
	Body      []Statement        `json:"body"`
	Vars      []HoistedVar       `json:"vars,omitempty"`
	Functions []*FunctionLiteral `json:"functions,omitempty"`
}

func NewProgram(source string, body []Statement) *Program {
	p := &Program{nodeImpl: newNodeImpl(NodeProgram), Source: source, Body: body}
	p.Vars, p.Functions = Hoist(body)
	return p
}

// Identifier

type Identifier struct {
	nodeImpl
	expressionMarker
	statementMarker

	Name string `json:"name"`
}

func NewIdentifier(name string) *Identifier {
	return &Identifier{nodeImpl: newNodeImpl(NodeIdentifier), Name: name}
}

// Literals

type NumberLiteral struct {
	nodeImpl
	expressionMarker
	statementMarker
	literalMarker

	Value float64 `json:"value"`
}

func NewNumberLiteral(value float64) *NumberLiteral {
	return &NumberLiteral{nodeImpl: newNodeImpl(NodeNumberLiteral), Value: value}
}

type StringLiteral struct {
	nodeImpl
	expressionMarker
	statementMarker
	literalMarker

	Value string `json:"value"`
}

func NewStringLiteral(value string) *StringLiteral {
	return &StringLiteral{nodeImpl: newNodeImpl(NodeStringLiteral), Value: value}
}

type BooleanLiteral struct {
	nodeImpl
	expressionMarker
	statementMarker
	literalMarker

	Value bool `json:"value"`
}

func NewBooleanLiteral(value bool) *BooleanLiteral {
	return &BooleanLiteral{nodeImpl: newNodeImpl(NodeBooleanLiteral), Value: value}
}

type NullLiteral struct {
	nodeImpl
	expressionMarker
	statementMarker
	literalMarker
}

func NewNullLiteral() *NullLiteral {
	return &NullLiteral{nodeImpl: newNodeImpl(NodeNullLiteral)}
}

type RegExpLiteral struct {
	nodeImpl
	expressionMarker
	statementMarker
	literalMarker

	Pattern string `json:"pattern"`
	Flags   string `json:"flags,omitempty"`
}

func NewRegExpLiteral(pattern, flags string) *RegExpLiteral {
	return &RegExpLiteral{nodeImpl: newNodeImpl(NodeRegExpLiteral), Pattern: pattern, Flags: flags}
}

// ArrayLiteral elements may be nil for holes (`[1,,3]`).
type ArrayLiteral struct {
	nodeImpl
	expressionMarker
	statementMarker

	Elements []Expression `json:"elements"`
}

func NewArrayLiteral(elements []Expression) *ArrayLiteral {
	return &ArrayLiteral{nodeImpl: newNodeImpl(NodeArrayLiteral), Elements: elements}
}

type PropertyKind string

const (
	PropertyInit   PropertyKind = "init"
	PropertyGetter PropertyKind = "get"
	PropertySetter PropertyKind = "set"
)

type Property struct {
	nodeImpl

	Key   string       `json:"key"`
	Kind  PropertyKind `json:"kind"`
	Value Expression   `json:"value"`
}

func NewProperty(key string, kind PropertyKind, value Expression) *Property {
	return &Property{nodeImpl: newNodeImpl(NodeProperty), Key: key, Kind: kind, Value: value}
}

type ObjectLiteral struct {
	nodeImpl
	expressionMarker
	statementMarker

	Properties []*Property `json:"properties"`
}

func NewObjectLiteral(properties []*Property) *ObjectLiteral {
	return &ObjectLiteral{nodeImpl: newNodeImpl(NodeObjectLiteral), Properties: properties}
}

// Functions

// FunctionForm decides whether and where a function binds its own name.
type FunctionForm string

const (
	// FormDeclared functions are hoisted into the enclosing activation.
	FormDeclared FunctionForm = "declared"
	// FormStatement functions bind their name when the statement executes.
	FormStatement FunctionForm = "statement"
	// FormExpression functions bind their name only inside their own body.
	FormExpression FunctionForm = "expression"
)

type FunctionLiteral struct {
	nodeImpl
	expressionMarker
	statementMarker

	ID        *Identifier        `json:"id,omitempty"`
	Params    []*Identifier      `json:"params"`
	Body      []Statement        `json:"body"`
	Form      FunctionForm       `json:"form"`
	Source    string             `json:"source,omitempty"`
	Vars      []HoistedVar       `json:"vars,omitempty"`
	Functions []*FunctionLiteral `json:"functions,omitempty"`
}

func NewFunctionLiteral(id *Identifier, params []*Identifier, body []Statement) *FunctionLiteral {
	fn := &FunctionLiteral{nodeImpl: newNodeImpl(NodeFunctionLiteral), ID: id, Params: params, Body: body, Form: FormExpression}
	fn.Vars, fn.Functions = Hoist(body)
	return fn
}

// Name returns the function's own name or "".
func (f *FunctionLiteral) Name() string {
	if f == nil || f.ID == nil {
		return ""
	}
	return f.ID.Name
}

// FunctionDeclaration is `function name(...) {...}` in statement position.
type FunctionDeclaration struct {
	nodeImpl
	statementMarker

	Function *FunctionLiteral `json:"function"`
}

func NewFunctionDeclaration(fn *FunctionLiteral) *FunctionDeclaration {
	if fn.Form == FormExpression {
		fn.Form = FormStatement
	}
	return &FunctionDeclaration{nodeImpl: newNodeImpl(NodeFunctionDeclaration), Function: fn}
}

type ThisExpression struct {
	nodeImpl
	expressionMarker
	statementMarker
}

func NewThisExpression() *ThisExpression {
	return &ThisExpression{nodeImpl: newNodeImpl(NodeThisExpression)}
}

// Operators

type AssignmentOperator string

const (
	AssignmentAssign  AssignmentOperator = "="
	AssignmentAdd     AssignmentOperator = "+="
	AssignmentSub     AssignmentOperator = "-="
	AssignmentMul     AssignmentOperator = "*="
	AssignmentDiv     AssignmentOperator = "/="
	AssignmentMod     AssignmentOperator = "%="
	AssignmentBitAnd  AssignmentOperator = "&="
	AssignmentBitOr   AssignmentOperator = "|="
	AssignmentBitXor  AssignmentOperator = "^="
	AssignmentShiftL  AssignmentOperator = "<<="
	AssignmentShiftR  AssignmentOperator = ">>="
	AssignmentShiftRU AssignmentOperator = ">>>="
)

// BinaryOperator returns the operator applied by a compound assignment,
// or "" for plain assignment.
func (op AssignmentOperator) BinaryOperator() string {
	if op == AssignmentAssign || len(op) < 2 {
		return ""
	}
	return string(op[:len(op)-1])
}

type AssignmentExpression struct {
	nodeImpl
	expressionMarker
	statementMarker

	Operator AssignmentOperator `json:"operator"`
	Target   Expression         `json:"target"`
	Value    Expression         `json:"value"`
}

func NewAssignmentExpression(operator AssignmentOperator, target, value Expression) *AssignmentExpression {
	return &AssignmentExpression{nodeImpl: newNodeImpl(NodeAssignmentExpression), Operator: operator, Target: target, Value: value}
}

// BinaryExpression covers arithmetic, comparison, equality, bitwise, shift,
// `in` and `instanceof`.
type BinaryExpression struct {
	nodeImpl
	expressionMarker
	statementMarker

	Operator string     `json:"operator"`
	Left     Expression `json:"left"`
	Right    Expression `json:"right"`
}

func NewBinaryExpression(operator string, left, right Expression) *BinaryExpression {
	return &BinaryExpression{nodeImpl: newNodeImpl(NodeBinaryExpression), Operator: operator, Left: left, Right: right}
}

type LogicalExpression struct {
	nodeImpl
	expressionMarker
	statementMarker

	Operator string     `json:"operator"`
	Left     Expression `json:"left"`
	Right    Expression `json:"right"`
}

func NewLogicalExpression(operator string, left, right Expression) *LogicalExpression {
	return &LogicalExpression{nodeImpl: newNodeImpl(NodeLogicalExpression), Operator: operator, Left: left, Right: right}
}

type UnaryOperator string

const (
	UnaryNot    UnaryOperator = "!"
	UnaryBitNot UnaryOperator = "~"
	UnaryPlus   UnaryOperator = "+"
	UnaryMinus  UnaryOperator = "-"
	UnaryTypeof UnaryOperator = "typeof"
	UnaryVoid   UnaryOperator = "void"
	UnaryDelete UnaryOperator = "delete"
)

type UnaryExpression struct {
	nodeImpl
	expressionMarker
	statementMarker

	Operator UnaryOperator `json:"operator"`
	Operand  Expression    `json:"operand"`
}

func NewUnaryExpression(operator UnaryOperator, operand Expression) *UnaryExpression {
	return &UnaryExpression{nodeImpl: newNodeImpl(NodeUnaryExpression), Operator: operator, Operand: operand}
}

type UpdateExpression struct {
	nodeImpl
	expressionMarker
	statementMarker

	Operator string     `json:"operator"`
	Prefix   bool       `json:"prefix"`
	Operand  Expression `json:"operand"`
}

func NewUpdateExpression(operator string, prefix bool, operand Expression) *UpdateExpression {
	return &UpdateExpression{nodeImpl: newNodeImpl(NodeUpdateExpression), Operator: operator, Prefix: prefix, Operand: operand}
}

type ConditionalExpression struct {
	nodeImpl
	expressionMarker
	statementMarker

	Test       Expression `json:"test"`
	Consequent Expression `json:"consequent"`
	Alternate  Expression `json:"alternate"`
}

func NewConditionalExpression(test, consequent, alternate Expression) *ConditionalExpression {
	return &ConditionalExpression{nodeImpl: newNodeImpl(NodeConditionalExpression), Test: test, Consequent: consequent, Alternate: alternate}
}

type SequenceExpression struct {
	nodeImpl
	expressionMarker
	statementMarker

	Expressions []Expression `json:"expressions"`
}

func NewSequenceExpression(expressions []Expression) *SequenceExpression {
	return &SequenceExpression{nodeImpl: newNodeImpl(NodeSequenceExpression), Expressions: expressions}
}

type CallExpression struct {
	nodeImpl
	expressionMarker
	statementMarker

	Callee    Expression   `json:"callee"`
	Arguments []Expression `json:"arguments"`
}

func NewCallExpression(callee Expression, args []Expression) *CallExpression {
	return &CallExpression{nodeImpl: newNodeImpl(NodeCallExpression), Callee: callee, Arguments: args}
}

type NewExpression struct {
	nodeImpl
	expressionMarker
	statementMarker

	Callee    Expression   `json:"callee"`
	Arguments []Expression `json:"arguments"`
}

func NewNewExpression(callee Expression, args []Expression) *NewExpression {
	return &NewExpression{nodeImpl: newNodeImpl(NodeNewExpression), Callee: callee, Arguments: args}
}

// MemberExpression is `object.property`.
type MemberExpression struct {
	nodeImpl
	expressionMarker
	statementMarker

	Object   Expression  `json:"object"`
	Property *Identifier `json:"property"`
}

func NewMemberExpression(object Expression, property *Identifier) *MemberExpression {
	return &MemberExpression{nodeImpl: newNodeImpl(NodeMemberExpression), Object: object, Property: property}
}

// IndexExpression is `object[index]`.
type IndexExpression struct {
	nodeImpl
	expressionMarker
	statementMarker

	Object Expression `json:"object"`
	Index  Expression `json:"index"`
}

func NewIndexExpression(object, index Expression) *IndexExpression {
	return &IndexExpression{nodeImpl: newNodeImpl(NodeIndexExpression), Object: object, Index: index}
}

// LabelExpression attaches a classification to the value of Expression.
type LabelExpression struct {
	nodeImpl
	expressionMarker
	statementMarker

	Label      string     `json:"label"`
	Expression Expression `json:"expression"`
}

func NewLabelExpression(label string, expression Expression) *LabelExpression {
	return &LabelExpression{nodeImpl: newNodeImpl(NodeLabelExpression), Label: label, Expression: expression}
}
