package ast

import (
	"bytes"
)

// Program is the root of a parsed compilation unit. IsModule is true when
// the file opens with a ModuleStmt; the semantic pass then requires the
// `__EXPORTS__` synthesis described in spec.md §7.
type Program struct {
	base
	Module *ModuleStmt // nil if the file is not a module
	Body   NodeList    // []Statement

	// Exports is filled in by the semantic pass: the ordered list of names
	// this program exports when IsModule is true.
	Exports []string

	// NumLocals is filled in by the semantic pass: the number of local
	// slots the top-level chunk needs, treating it as an implicit function
	// body the way FunctionLiteral.NumLocals does for an ordinary function.
	NumLocals int
}

func NewProgram(a *Arena, module *ModuleStmt, body NodeList) *Program {
	n := alloc[Program](a)
	if module != nil {
		n.position = module.position
	} else if body.First() != nil {
		n.position = body.First().Pos()
	}
	n.Module = module
	n.Body = body
	return n
}

func (*Program) Kind() Kind { return KindProgram }
func (*Program) stmtNode()  {}

func (p *Program) IsModule() bool { return p.Module != nil }

func (p *Program) String() string {
	var buf bytes.Buffer
	if p.Module != nil {
		buf.WriteString(p.Module.String())
		buf.WriteString("\n")
	}
	for _, s := range Statements(p.Body) {
		buf.WriteString(s.String())
		buf.WriteString("\n")
	}
	return buf.String()
}
