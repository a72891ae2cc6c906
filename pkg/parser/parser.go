// Package parser turns script source into the interpreter's AST. Parsing
// itself is delegated to the otto JavaScript parser; this package converts
// otto's tree, resolves jump targets and recognizes the label intrinsic.
package parser

import (
	"errors"
	"fmt"

	"github.com/robertkrimen/otto/file"
	ottoparser "github.com/robertkrimen/otto/parser"

	"flowjs/interpreter-go/pkg/ast"
)

// DefaultIntrinsic is the call name rewritten into a label expression:
// `label("H", expr)` classifies expr as H.
const DefaultIntrinsic = "label"

// Error is a syntax error with its source position.
type Error struct {
	Filename string
	Line     int
	Column   int
	Message  string
}

func (e *Error) Error() string {
	switch {
	case e.Filename != "" && e.Line > 0:
		return fmt.Sprintf("%s:%d:%d: %s", e.Filename, e.Line, e.Column, e.Message)
	case e.Line > 0:
		return fmt.Sprintf("line %d:%d: %s", e.Line, e.Column, e.Message)
	default:
		return e.Message
	}
}

// ScriptParser converts source text into ast.Program trees.
type ScriptParser struct {
	// Intrinsic names the label intrinsic; empty disables the rewrite.
	Intrinsic string
}

// NewScriptParser returns a parser using DefaultIntrinsic.
func NewScriptParser() *ScriptParser {
	return &ScriptParser{Intrinsic: DefaultIntrinsic}
}

// ParseScript parses source as a script. Reported line numbers start at
// startLine (values below 1 are treated as 1).
func (p *ScriptParser) ParseScript(filename string, source []byte, startLine int) (*ast.Program, error) {
	if p == nil {
		return nil, fmt.Errorf("parser: nil parser")
	}
	if startLine < 1 {
		startLine = 1
	}
	program, err := ottoparser.ParseFile(nil, filename, source, ottoparser.IgnoreRegExpErrors)
	if err != nil {
		return nil, convertParseError(filename, startLine, err)
	}

	c := &converter{
		file:      program.File,
		filename:  filename,
		lineDelta: startLine - 1,
		intrinsic: p.Intrinsic,
	}
	body, err := c.statements(program.Body)
	if err != nil {
		return nil, err
	}
	prog := ast.NewProgram(filename, body)
	if err := ast.ResolveJumps(prog); err != nil {
		var jumpErr *ast.JumpError
		if errors.As(err, &jumpErr) && jumpErr.Node != nil {
			pos := jumpErr.Node.Span().Start
			return nil, &Error{Filename: filename, Line: pos.Line, Column: pos.Column, Message: jumpErr.Message}
		}
		return nil, &Error{Filename: filename, Message: err.Error()}
	}
	return prog, nil
}

// ParseScript parses source with a default ScriptParser.
func ParseScript(filename string, source []byte, startLine int) (*ast.Program, error) {
	return NewScriptParser().ParseScript(filename, source, startLine)
}

func convertParseError(filename string, startLine int, err error) error {
	var list *ottoparser.ErrorList
	if errors.As(err, &list) && len(*list) > 0 {
		return fromOttoError(filename, startLine, (*list)[0])
	}
	var single *ottoparser.Error
	if errors.As(err, &single) {
		return fromOttoError(filename, startLine, single)
	}
	return &Error{Filename: filename, Message: err.Error()}
}

func fromOttoError(filename string, startLine int, e *ottoparser.Error) *Error {
	out := &Error{Filename: filename, Message: e.Message}
	if e.Position.Line > 0 {
		out.Line = e.Position.Line + startLine - 1
		out.Column = e.Position.Column
	}
	return out
}

type converter struct {
	file      *file.File
	filename  string
	lineDelta int
	intrinsic string
}

func (c *converter) errorf(pos ast.Position, format string, args ...any) error {
	return &Error{Filename: c.filename, Line: pos.Line, Column: pos.Column, Message: fmt.Sprintf(format, args...)}
}
