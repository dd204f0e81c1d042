package ast

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/behl-lang/behl-go/pkg/token"
)

// ExprStmt is an expression evaluated for its side effects, e.g. a bare
// call statement.
type ExprStmt struct {
	base
	Expr Expression
}

func NewExprStmt(a *Arena, pos token.Position, expr Expression) *ExprStmt {
	n := alloc[ExprStmt](a)
	n.position = pos
	n.Expr = expr
	return n
}

func (*ExprStmt) Kind() Kind       { return KindExprStmt }
func (*ExprStmt) stmtNode()        {}
func (n *ExprStmt) String() string { return n.Expr.String() + ";" }

// LetStmt declares one or more local bindings: `let x = 1, y, z = f();`.
// Const is true for `const` declarations, which the semantic pass rejects
// reassignment of.
type LetStmt struct {
	base
	Names  []string
	Values []Expression // one entry per Name; nil entries have no initializer
	Const  bool

	// Slots holds the resolved local slot for each name, filled in by the
	// semantic pass.
	Slots []int
}

func NewLetStmt(a *Arena, pos token.Position, names []string, values []Expression, isConst bool) *LetStmt {
	n := alloc[LetStmt](a)
	n.position = pos
	n.Names = names
	n.Values = values
	n.Const = isConst
	return n
}

func (*LetStmt) Kind() Kind { return KindLetStmt }
func (*LetStmt) stmtNode()  {}
func (n *LetStmt) String() string {
	kw := "let"
	if n.Const {
		kw = "const"
	}
	return fmt.Sprintf("%s %s;", kw, strings.Join(n.Names, ", "))
}

// Block is a brace-delimited statement list introducing its own lexical
// scope.
type Block struct {
	base
	Stmts NodeList // []Statement
}

func NewBlock(a *Arena, pos token.Position, stmts NodeList) *Block {
	n := alloc[Block](a)
	n.position = pos
	n.Stmts = stmts
	return n
}

func (*Block) Kind() Kind { return KindBlock }
func (*Block) stmtNode()  {}
func (n *Block) String() string {
	var buf bytes.Buffer
	buf.WriteString("{ ")
	for _, s := range Statements(n.Stmts) {
		buf.WriteString(s.String())
		buf.WriteString(" ")
	}
	buf.WriteString("}")
	return buf.String()
}

// ElseIfClause is one `elseif (cond) { ... }` arm of an IfStmt.
type ElseIfClause struct {
	Cond Expression
	Body *Block
}

// IfStmt is `if (cond) { ... } elseif (cond) { ... } else { ... }`.
type IfStmt struct {
	base
	Cond     Expression
	Then     *Block
	ElseIfs  []ElseIfClause
	Else     *Block // nil if absent
}

func NewIfStmt(a *Arena, pos token.Position, cond Expression, then *Block, elseIfs []ElseIfClause, els *Block) *IfStmt {
	n := alloc[IfStmt](a)
	n.position = pos
	n.Cond = cond
	n.Then = then
	n.ElseIfs = elseIfs
	n.Else = els
	return n
}

func (*IfStmt) Kind() Kind { return KindIfStmt }
func (*IfStmt) stmtNode()  {}
func (n *IfStmt) String() string {
	s := fmt.Sprintf("if (%s) %s", n.Cond, n.Then)
	for _, ei := range n.ElseIfs {
		s += fmt.Sprintf(" elseif (%s) %s", ei.Cond, ei.Body)
	}
	if n.Else != nil {
		s += " else " + n.Else.String()
	}
	return s
}

// WhileStmt is `while (cond) { ... }`.
type WhileStmt struct {
	base
	Cond Expression
	Body *Block
}

func NewWhileStmt(a *Arena, pos token.Position, cond Expression, body *Block) *WhileStmt {
	n := alloc[WhileStmt](a)
	n.position = pos
	n.Cond = cond
	n.Body = body
	return n
}

func (*WhileStmt) Kind() Kind { return KindWhileStmt }
func (*WhileStmt) stmtNode()  {}
func (n *WhileStmt) String() string {
	return fmt.Sprintf("while (%s) %s", n.Cond, n.Body)
}

// ForCStmt is the C-style `for (init; cond; post) { ... }`. Any of Init,
// Cond, Post may be nil.
type ForCStmt struct {
	base
	Init Statement
	Cond Expression
	Post Statement
	Body *Block
}

func NewForCStmt(a *Arena, pos token.Position, init Statement, cond Expression, post Statement, body *Block) *ForCStmt {
	n := alloc[ForCStmt](a)
	n.position = pos
	n.Init = init
	n.Cond = cond
	n.Post = post
	n.Body = body
	return n
}

func (*ForCStmt) Kind() Kind { return KindForCStmt }
func (*ForCStmt) stmtNode()  {}
func (n *ForCStmt) String() string {
	return fmt.Sprintf("for (%v; %v; %v) %s", n.Init, n.Cond, n.Post, n.Body)
}

// ForNumericStmt is `for (x = start, stop[, step]) { ... }`, the
// counted-loop sugar distinguished from ForCStmt so the compiler can emit
// dedicated FORPREP/FORLOOP instructions (spec.md §5).
type ForNumericStmt struct {
	base
	Var   string
	Start Expression
	Stop  Expression
	Step  Expression // nil means implicit step of 1
	Body  *Block

	Slot int // resolved local slot for Var
}

func NewForNumericStmt(a *Arena, pos token.Position, v string, start, stop, step Expression, body *Block) *ForNumericStmt {
	n := alloc[ForNumericStmt](a)
	n.position = pos
	n.Var = v
	n.Start = start
	n.Stop = stop
	n.Step = step
	n.Body = body
	return n
}

func (*ForNumericStmt) Kind() Kind { return KindForNumericStmt }
func (*ForNumericStmt) stmtNode()  {}
func (n *ForNumericStmt) String() string {
	if n.Step != nil {
		return fmt.Sprintf("for (%s = %s, %s, %s) %s", n.Var, n.Start, n.Stop, n.Step, n.Body)
	}
	return fmt.Sprintf("for (%s = %s, %s) %s", n.Var, n.Start, n.Stop, n.Body)
}

// ForInStmt is `foreach (k, v in expr) { ... }`, iterating a table via the
// stateless-iterator protocol (`next`, or a table's `__pairs` metamethod).
// Key is "" when only a single loop variable is bound (`foreach (v in
// expr)`, which binds the value and discards the key).
type ForInStmt struct {
	base
	Key   string
	Value string
	Expr  Expression
	Body  *Block

	KeySlot   int
	ValueSlot int
}

func NewForInStmt(a *Arena, pos token.Position, key, value string, expr Expression, body *Block) *ForInStmt {
	n := alloc[ForInStmt](a)
	n.position = pos
	n.Key = key
	n.Value = value
	n.Expr = expr
	n.Body = body
	return n
}

func (*ForInStmt) Kind() Kind { return KindForInStmt }
func (*ForInStmt) stmtNode()  {}
func (n *ForInStmt) String() string {
	if n.Key == "" {
		return fmt.Sprintf("foreach (%s in %s) %s", n.Value, n.Expr, n.Body)
	}
	return fmt.Sprintf("foreach (%s, %s in %s) %s", n.Key, n.Value, n.Expr, n.Body)
}

// BreakStmt is `break;`.
type BreakStmt struct{ base }

func NewBreakStmt(a *Arena, pos token.Position) *BreakStmt {
	n := alloc[BreakStmt](a)
	n.position = pos
	return n
}

func (*BreakStmt) Kind() Kind      { return KindBreakStmt }
func (*BreakStmt) stmtNode()       {}
func (*BreakStmt) String() string  { return "break;" }

// ContinueStmt is `continue;`.
type ContinueStmt struct{ base }

func NewContinueStmt(a *Arena, pos token.Position) *ContinueStmt {
	n := alloc[ContinueStmt](a)
	n.position = pos
	return n
}

func (*ContinueStmt) Kind() Kind     { return KindContinueStmt }
func (*ContinueStmt) stmtNode()      {}
func (*ContinueStmt) String() string { return "continue;" }

// ReturnStmt is `return;` or `return expr;`. Value is nil for a bare
// return.
type ReturnStmt struct {
	base
	Value Expression
}

func NewReturnStmt(a *Arena, pos token.Position, value Expression) *ReturnStmt {
	n := alloc[ReturnStmt](a)
	n.position = pos
	n.Value = value
	return n
}

func (*ReturnStmt) Kind() Kind { return KindReturnStmt }
func (*ReturnStmt) stmtNode()  {}
func (n *ReturnStmt) String() string {
	if n.Value == nil {
		return "return;"
	}
	return fmt.Sprintf("return %s;", n.Value)
}

// DeferStmt is `defer expr;`, where expr is normally a call expression.
// The compiler appends it to the enclosing function's pending-defers list
// rather than emitting it inline; pending defers run in LIFO order on
// every exit path, including error unwinding (spec.md §5).
type DeferStmt struct {
	base
	Call Expression
}

func NewDeferStmt(a *Arena, pos token.Position, call Expression) *DeferStmt {
	n := alloc[DeferStmt](a)
	n.position = pos
	n.Call = call
	return n
}

func (*DeferStmt) Kind() Kind       { return KindDeferStmt }
func (*DeferStmt) stmtNode()        {}
func (n *DeferStmt) String() string { return fmt.Sprintf("defer %s;", n.Call) }

// FunctionDeclStmt is `function name(params) { ... }`, sugar for
// `let name = function name(params) { ... };`. The semantic pass does not
// rewrite the node; it declares name before resolving the body, so the
// function's own name is visible inside its body (for recursion) under
// ordinary local/global lookup rules.
type FunctionDeclStmt struct {
	base
	Name string
	Fn   *FunctionLiteral

	Slot int
}

func NewFunctionDeclStmt(a *Arena, pos token.Position, name string, fn *FunctionLiteral) *FunctionDeclStmt {
	n := alloc[FunctionDeclStmt](a)
	n.position = pos
	n.Name = name
	n.Fn = fn
	fn.Name = name
	return n
}

func (*FunctionDeclStmt) Kind() Kind { return KindFunctionDeclStmt }
func (*FunctionDeclStmt) stmtNode()  {}
func (n *FunctionDeclStmt) String() string {
	return fmt.Sprintf("function %s%s", n.Name, strings.TrimPrefix(n.Fn.String(), "function "+n.Name))
}

// ExportDeclStmt wraps a declaration statement (LetStmt or
// FunctionDeclStmt) that is additionally exported from its module, or
// names an already-declared identifier via `export { a, b, c };`. Decl is
// nil and Names is non-empty for the latter form.
type ExportDeclStmt struct {
	base
	Decl  Statement // *LetStmt or *FunctionDeclStmt, or nil
	Names []string  // used when Decl is nil
}

func NewExportDeclStmt(a *Arena, pos token.Position, decl Statement, names []string) *ExportDeclStmt {
	n := alloc[ExportDeclStmt](a)
	n.position = pos
	n.Decl = decl
	n.Names = names
	return n
}

func (*ExportDeclStmt) Kind() Kind { return KindExportDeclStmt }
func (*ExportDeclStmt) stmtNode()  {}
func (n *ExportDeclStmt) String() string {
	if n.Decl != nil {
		return "export " + n.Decl.String()
	}
	return fmt.Sprintf("export { %s };", strings.Join(n.Names, ", "))
}

// ModuleStmt is the `module "name";` declaration that, if present, must be
// the first statement in the file (spec.md §7).
type ModuleStmt struct {
	base
	Name string
}

func NewModuleStmt(a *Arena, pos token.Position, name string) *ModuleStmt {
	n := alloc[ModuleStmt](a)
	n.position = pos
	n.Name = name
	return n
}

func (*ModuleStmt) Kind() Kind       { return KindModuleStmt }
func (*ModuleStmt) stmtNode()        {}
func (n *ModuleStmt) String() string { return fmt.Sprintf("module %q;", n.Name) }
