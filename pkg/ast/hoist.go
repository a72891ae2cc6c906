package ast

// HoistedVar is a `var` or `const` name bound on entry to its activation.
type HoistedVar struct {
	Name  string `json:"name"`
	Const bool   `json:"const,omitempty"`
	Span  Span   `json:"-"`
}

// Hoist collects the variable declarations and declared functions of a
// script or function body. Function declarations directly in body become
// FormDeclared; nested ones keep FormStatement. Nested function bodies are
// not entered.
func Hoist(body []Statement) ([]HoistedVar, []*FunctionLiteral) {
	h := &hoister{seen: make(map[string]bool)}
	for _, stmt := range body {
		if decl, ok := stmt.(*FunctionDeclaration); ok && decl.Function != nil {
			decl.Function.Form = FormDeclared
			h.functions = append(h.functions, decl.Function)
			continue
		}
		h.statement(stmt)
	}
	return h.vars, h.functions
}

type hoister struct {
	vars      []HoistedVar
	functions []*FunctionLiteral
	seen      map[string]bool
}

func (h *hoister) declare(decl *VarDeclaration) {
	for _, d := range decl.Declarations {
		if d == nil || d.ID == nil {
			continue
		}
		isConst := decl.Kind == VarKindConst
		if h.seen[d.ID.Name] && !isConst {
			continue
		}
		h.seen[d.ID.Name] = true
		h.vars = append(h.vars, HoistedVar{Name: d.ID.Name, Const: isConst, Span: d.Span()})
	}
}

func (h *hoister) statement(stmt Statement) {
	switch s := stmt.(type) {
	case nil:
	case *VarDeclaration:
		h.declare(s)
	case *BlockStatement:
		h.statements(s.Body)
	case *IfStatement:
		h.statement(s.Consequent)
		h.statement(s.Alternate)
	case *SwitchStatement:
		for _, c := range s.Cases {
			h.statements(c.Body)
		}
	case *WhileStatement:
		h.statement(s.Body)
	case *DoWhileStatement:
		h.statement(s.Body)
	case *ForStatement:
		h.statement(s.Init)
		h.statement(s.Body)
	case *ForInStatement:
		h.statement(s.Left)
		h.statement(s.Body)
	case *TryStatement:
		if s.Block != nil {
			h.statements(s.Block.Body)
		}
		for _, c := range s.Handlers {
			if c.Body != nil {
				h.statements(c.Body.Body)
			}
		}
		if s.Finalizer != nil {
			h.statements(s.Finalizer.Body)
		}
	case *LabeledStatement:
		h.statement(s.Body)
	case *WithStatement:
		h.statement(s.Body)
	}
}

func (h *hoister) statements(list []Statement) {
	for _, s := range list {
		h.statement(s)
	}
}
