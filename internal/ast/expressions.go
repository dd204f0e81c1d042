package ast

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/behl-lang/behl-go/pkg/token"
)

// Identifier is a bare name reference. Scope/Slot are filled in by the
// semantic pass (spec.md §4.1): Scope distinguishes local/upvalue/global
// and Slot is the resolved register or upvalue index (unused for global).
type Identifier struct {
	base
	Name  string
	Scope ScopeKind
	Slot  int
}

func NewIdentifier(a *Arena, pos token.Position, name string) *Identifier {
	n := alloc[Identifier](a)
	n.position = pos
	n.Name = name
	return n
}

func (*Identifier) Kind() Kind        { return KindIdentifier }
func (*Identifier) exprNode()         {}
func (i *Identifier) String() string  { return i.Name }

// IntLiteral is an integer literal (decimal or 0x-hex, per spec.md §6).
type IntLiteral struct {
	base
	Value int64
}

func NewIntLiteral(a *Arena, pos token.Position, v int64) *IntLiteral {
	n := alloc[IntLiteral](a)
	n.position = pos
	n.Value = v
	return n
}

func (*IntLiteral) Kind() Kind       { return KindIntLiteral }
func (*IntLiteral) exprNode()        {}
func (n *IntLiteral) String() string { return fmt.Sprintf("%d", n.Value) }

// FloatLiteral is a floating-point literal.
type FloatLiteral struct {
	base
	Value float64
}

func NewFloatLiteral(a *Arena, pos token.Position, v float64) *FloatLiteral {
	n := alloc[FloatLiteral](a)
	n.position = pos
	n.Value = v
	return n
}

func (*FloatLiteral) Kind() Kind       { return KindFloatLiteral }
func (*FloatLiteral) exprNode()        {}
func (n *FloatLiteral) String() string { return fmt.Sprintf("%g", n.Value) }

// StringLiteral is a string literal with escapes already decoded by the lexer.
type StringLiteral struct {
	base
	Value string
}

func NewStringLiteral(a *Arena, pos token.Position, v string) *StringLiteral {
	n := alloc[StringLiteral](a)
	n.position = pos
	n.Value = v
	return n
}

func (*StringLiteral) Kind() Kind       { return KindStringLiteral }
func (*StringLiteral) exprNode()        {}
func (n *StringLiteral) String() string { return fmt.Sprintf("%q", n.Value) }

// BoolLiteral is `true` or `false`.
type BoolLiteral struct {
	base
	Value bool
}

func NewBoolLiteral(a *Arena, pos token.Position, v bool) *BoolLiteral {
	n := alloc[BoolLiteral](a)
	n.position = pos
	n.Value = v
	return n
}

func (*BoolLiteral) Kind() Kind       { return KindBoolLiteral }
func (*BoolLiteral) exprNode()        {}
func (n *BoolLiteral) String() string { return fmt.Sprintf("%t", n.Value) }

// NilLiteral is the `nil` literal.
type NilLiteral struct{ base }

func NewNilLiteral(a *Arena, pos token.Position) *NilLiteral {
	n := alloc[NilLiteral](a)
	n.position = pos
	return n
}

func (*NilLiteral) Kind() Kind       { return KindNilLiteral }
func (*NilLiteral) exprNode()        {}
func (*NilLiteral) String() string   { return "nil" }

// VarargExpr is the `...` expression, valid only inside a vararg function.
type VarargExpr struct{ base }

func NewVarargExpr(a *Arena, pos token.Position) *VarargExpr {
	n := alloc[VarargExpr](a)
	n.position = pos
	return n
}

func (*VarargExpr) Kind() Kind      { return KindVarargExpr }
func (*VarargExpr) exprNode()       {}
func (*VarargExpr) String() string  { return "..." }

// UnaryExpr is a prefix unary operator: `-x`, `!x`, `#x`, `~x`, `not x`.
type UnaryExpr struct {
	base
	Op      token.Type
	Operand Expression
}

func NewUnaryExpr(a *Arena, pos token.Position, op token.Type, operand Expression) *UnaryExpr {
	n := alloc[UnaryExpr](a)
	n.position = pos
	n.Op = op
	n.Operand = operand
	return n
}

func (*UnaryExpr) Kind() Kind      { return KindUnaryExpr }
func (*UnaryExpr) exprNode()       {}
func (n *UnaryExpr) String() string {
	if n.Op == token.NOT {
		return fmt.Sprintf("(not %s)", n.Operand)
	}
	return fmt.Sprintf("(%s%s)", n.Op, n.Operand)
}

// BinaryExpr is a non-short-circuiting binary operator.
type BinaryExpr struct {
	base
	Op    token.Type
	Left  Expression
	Right Expression
}

func NewBinaryExpr(a *Arena, pos token.Position, op token.Type, l, r Expression) *BinaryExpr {
	n := alloc[BinaryExpr](a)
	n.position = pos
	n.Op = op
	n.Left = l
	n.Right = r
	return n
}

func (*BinaryExpr) Kind() Kind      { return KindBinaryExpr }
func (*BinaryExpr) exprNode()       {}
func (n *BinaryExpr) String() string { return fmt.Sprintf("(%s %s %s)", n.Left, n.Op, n.Right) }

// LogicalExpr is `&&`/`and` or `||`/`or`: it short-circuits, which the
// bytecode compiler realizes as a chain of TEST/TESTSET instructions
// rather than unconditionally evaluating both sides (spec.md §4.2).
type LogicalExpr struct {
	base
	Op    token.Type
	Left  Expression
	Right Expression
}

func NewLogicalExpr(a *Arena, pos token.Position, op token.Type, l, r Expression) *LogicalExpr {
	n := alloc[LogicalExpr](a)
	n.position = pos
	n.Op = op
	n.Left = l
	n.Right = r
	return n
}

func (*LogicalExpr) Kind() Kind      { return KindLogicalExpr }
func (*LogicalExpr) exprNode()       {}
func (n *LogicalExpr) String() string { return fmt.Sprintf("(%s %s %s)", n.Left, n.Op, n.Right) }

// TernaryExpr is `cond ? then : else`, the lowest-precedence operator.
type TernaryExpr struct {
	base
	Cond Expression
	Then Expression
	Else Expression
}

func NewTernaryExpr(a *Arena, pos token.Position, cond, then, els Expression) *TernaryExpr {
	n := alloc[TernaryExpr](a)
	n.position = pos
	n.Cond = cond
	n.Then = then
	n.Else = els
	return n
}

func (*TernaryExpr) Kind() Kind { return KindTernaryExpr }
func (*TernaryExpr) exprNode()  {}
func (n *TernaryExpr) String() string {
	return fmt.Sprintf("(%s ? %s : %s)", n.Cond, n.Then, n.Else)
}

// AssignExpr is `target = value`. Target is either an Identifier (lowered
// to Scope/Slot by the semantic pass) or a MemberExpr/IndexExpr, which
// stays generic per spec.md §4.1 ("target forms that are table-index or
// member expressions remain as the generic variant").
type AssignExpr struct {
	base
	Target Expression
	Value  Expression
}

func NewAssignExpr(a *Arena, pos token.Position, target, value Expression) *AssignExpr {
	n := alloc[AssignExpr](a)
	n.position = pos
	n.Target = target
	n.Value = value
	return n
}

func (*AssignExpr) Kind() Kind      { return KindAssignExpr }
func (*AssignExpr) exprNode()       {}
func (n *AssignExpr) String() string { return fmt.Sprintf("(%s = %s)", n.Target, n.Value) }

// CompoundAssignExpr is `target += value` and its siblings.
type CompoundAssignExpr struct {
	base
	Op     token.Type // PLUSEQ, MINUSEQ, STAREQ, SLASHEQ, PERCENTEQ
	Target Expression
	Value  Expression
}

func NewCompoundAssignExpr(a *Arena, pos token.Position, op token.Type, target, value Expression) *CompoundAssignExpr {
	n := alloc[CompoundAssignExpr](a)
	n.position = pos
	n.Op = op
	n.Target = target
	n.Value = value
	return n
}

func (*CompoundAssignExpr) Kind() Kind { return KindCompoundAssignExpr }
func (*CompoundAssignExpr) exprNode()  {}
func (n *CompoundAssignExpr) String() string {
	return fmt.Sprintf("(%s %s %s)", n.Target, n.Op, n.Value)
}

// IncDecExpr is `target++`/`++target`/`target--`/`--target`.
type IncDecExpr struct {
	base
	Op     token.Type // INC or DEC
	Target Expression
	Prefix bool
}

func NewIncDecExpr(a *Arena, pos token.Position, op token.Type, target Expression, prefix bool) *IncDecExpr {
	n := alloc[IncDecExpr](a)
	n.position = pos
	n.Op = op
	n.Target = target
	n.Prefix = prefix
	return n
}

func (*IncDecExpr) Kind() Kind { return KindIncDecExpr }
func (*IncDecExpr) exprNode()  {}
func (n *IncDecExpr) String() string {
	if n.Prefix {
		return fmt.Sprintf("(%s%s)", n.Op, n.Target)
	}
	return fmt.Sprintf("(%s%s)", n.Target, n.Op)
}

// CallExpr is `callee(args...)`.
type CallExpr struct {
	base
	Callee Expression
	Args   NodeList
}

func NewCallExpr(a *Arena, pos token.Position, callee Expression, args NodeList) *CallExpr {
	n := alloc[CallExpr](a)
	n.position = pos
	n.Callee = callee
	n.Args = args
	return n
}

func (*CallExpr) Kind() Kind { return KindCallExpr }
func (*CallExpr) exprNode()  {}
func (n *CallExpr) String() string {
	var parts []string
	for _, e := range Expressions(n.Args) {
		parts = append(parts, e.String())
	}
	return fmt.Sprintf("%s(%s)", n.Callee, strings.Join(parts, ", "))
}

// MethodCallExpr is `receiver:method(args...)`, parsed as its own node and
// desugared by the semantic pass into a MemberExpr-then-CallExpr with the
// receiver cloned as the implicit first argument (spec.md §4.1, §9).
type MethodCallExpr struct {
	base
	Receiver Expression
	Method   string
	Args     NodeList
}

func NewMethodCallExpr(a *Arena, pos token.Position, recv Expression, method string, args NodeList) *MethodCallExpr {
	n := alloc[MethodCallExpr](a)
	n.position = pos
	n.Receiver = recv
	n.Method = method
	n.Args = args
	return n
}

func (*MethodCallExpr) Kind() Kind { return KindMethodCallExpr }
func (*MethodCallExpr) exprNode()  {}
func (n *MethodCallExpr) String() string {
	var parts []string
	for _, e := range Expressions(n.Args) {
		parts = append(parts, e.String())
	}
	return fmt.Sprintf("%s:%s(%s)", n.Receiver, n.Method, strings.Join(parts, ", "))
}

// MemberExpr is `object.property`.
type MemberExpr struct {
	base
	Object   Expression
	Property string
}

func NewMemberExpr(a *Arena, pos token.Position, obj Expression, prop string) *MemberExpr {
	n := alloc[MemberExpr](a)
	n.position = pos
	n.Object = obj
	n.Property = prop
	return n
}

func (*MemberExpr) Kind() Kind      { return KindMemberExpr }
func (*MemberExpr) exprNode()       {}
func (n *MemberExpr) String() string { return fmt.Sprintf("%s.%s", n.Object, n.Property) }

// IndexExpr is `object[index]`.
type IndexExpr struct {
	base
	Object Expression
	Index  Expression
}

func NewIndexExpr(a *Arena, pos token.Position, obj, index Expression) *IndexExpr {
	n := alloc[IndexExpr](a)
	n.position = pos
	n.Object = obj
	n.Index = index
	return n
}

func (*IndexExpr) Kind() Kind      { return KindIndexExpr }
func (*IndexExpr) exprNode()       {}
func (n *IndexExpr) String() string { return fmt.Sprintf("%s[%s]", n.Object, n.Index) }

// Param is a single function parameter.
type Param struct {
	base
	Name string
}

func NewParam(a *Arena, pos token.Position, name string) *Param {
	n := alloc[Param](a)
	n.position = pos
	n.Name = name
	return n
}

func (*Param) Kind() Kind      { return KindParam }
func (*Param) exprNode()       {}
func (n *Param) String() string { return n.Name }

// FunctionLiteral is an anonymous or named function value: `function(a, b) { ... }`.
// Name is set for `function name(...) {...}` declarations (see
// FunctionDeclStmt) and for `obj:meth(...)` method-definition sugar, in
// which case IsMethod is true and Params has an implicit leading `self`
// inserted by the semantic pass's method-desugaring step.
type FunctionLiteral struct {
	base
	Name     string
	Params   NodeList // []*Param
	Vararg   bool
	Body     *Block
	IsMethod bool

	// NumLocals and Upvalues are filled in by the semantic pass: the total
	// number of local slots this function's frame needs, and the upvalue
	// descriptors closures over it must capture.
	NumLocals int
	Upvalues  []UpvalueDesc
}

// UpvalueDesc names where a captured variable lives in the enclosing
// function: either a parent stack slot (FromParentLocal) or an index into
// the parent's own upvalue list (FromParentUpvalue), per spec.md §3
// ("Prototype... upvalue descriptors").
type UpvalueDesc struct {
	Name           string
	FromParentLocal bool
	Index          int
}

func NewFunctionLiteral(a *Arena, pos token.Position, params NodeList, vararg bool, body *Block) *FunctionLiteral {
	n := alloc[FunctionLiteral](a)
	n.position = pos
	n.Params = params
	n.Vararg = vararg
	n.Body = body
	return n
}

func (*FunctionLiteral) Kind() Kind { return KindFunctionLiteral }
func (*FunctionLiteral) exprNode()  {}
func (n *FunctionLiteral) String() string {
	var parts []string
	for _, p := range Params(n.Params) {
		parts = append(parts, p.Name)
	}
	name := n.Name
	return fmt.Sprintf("function %s(%s) { ... }", name, strings.Join(parts, ", "))
}

// TableItem is one entry of a TableConstructor. Key is nil for a
// positional/array-style entry (`{1, 2, 3}`); non-nil for a keyed entry
// (`{x = 1}` or `{["x"] = 1}`).
type TableItem struct {
	base
	Key   Expression
	Value Expression
}

func NewTableItem(a *Arena, pos token.Position, key, value Expression) *TableItem {
	n := alloc[TableItem](a)
	n.position = pos
	n.Key = key
	n.Value = value
	return n
}

func (*TableItem) Kind() Kind { return KindTableItem }
func (*TableItem) exprNode()  {}
func (n *TableItem) String() string {
	if n.Key == nil {
		return n.Value.String()
	}
	return fmt.Sprintf("%s = %s", n.Key, n.Value)
}

// TableConstructor is a `{ ... }` literal producing a table.
type TableConstructor struct {
	base
	Items NodeList // []*TableItem
}

func NewTableConstructor(a *Arena, pos token.Position, items NodeList) *TableConstructor {
	n := alloc[TableConstructor](a)
	n.position = pos
	n.Items = items
	return n
}

func (*TableConstructor) Kind() Kind { return KindTableConstructor }
func (*TableConstructor) exprNode()  {}
func (n *TableConstructor) String() string {
	var buf bytes.Buffer
	buf.WriteString("{")
	for i, item := range TableItems(n.Items) {
		if i > 0 {
			buf.WriteString(", ")
		}
		buf.WriteString(item.String())
	}
	buf.WriteString("}")
	return buf.String()
}
