// Package ast defines the abstract syntax tree produced by the parser.
//
// Every node is allocated from an Arena (never with a bare `new`/literal)
// and carries an intrusive "next sibling" link so that variadic child
// lists — statements in a block, call arguments, function parameters,
// table-constructor items — are threaded without a separate slice header
// per node. Traversal (Walk) and copying (Clone) are both a single
// type-switch over Kind, not a virtual-dispatch hierarchy.
package ast

import "github.com/behl-lang/behl-go/pkg/token"

// Kind tags every concrete node type for the type-switch used by Walk,
// Clone, and the bytecode compiler.
type Kind int

const (
	KindIdentifier Kind = iota
	KindIntLiteral
	KindFloatLiteral
	KindStringLiteral
	KindBoolLiteral
	KindNilLiteral
	KindVarargExpr
	KindUnaryExpr
	KindBinaryExpr
	KindLogicalExpr
	KindTernaryExpr
	KindAssignExpr
	KindCompoundAssignExpr
	KindIncDecExpr
	KindCallExpr
	KindMethodCallExpr
	KindMemberExpr
	KindIndexExpr
	KindFunctionLiteral
	KindParam
	KindTableConstructor
	KindTableItem

	KindExprStmt
	KindLetStmt
	KindBlock
	KindIfStmt
	KindWhileStmt
	KindForCStmt
	KindForNumericStmt
	KindForInStmt
	KindBreakStmt
	KindContinueStmt
	KindReturnStmt
	KindDeferStmt
	KindFunctionDeclStmt
	KindExportDeclStmt
	KindModuleStmt
	KindProgram
)

// Node is the common interface every AST node satisfies.
type Node interface {
	Kind() Kind
	Pos() token.Position
	String() string

	next() Node
	setNext(Node)
}

// Expression is a node that produces a value.
type Expression interface {
	Node
	exprNode()
}

// Statement is a node that performs an action.
type Statement interface {
	Node
	stmtNode()
}

// base is embedded in every concrete node type; it supplies Pos() and the
// intrusive sibling link.
type base struct {
	position token.Position
	sibling  Node
}

func (b *base) Pos() token.Position { return b.position }
func (b *base) next() Node          { return b.sibling }
func (b *base) setNext(n Node)      { b.sibling = n }

// ScopeKind records how the semantic pass resolved an identifier or
// assignment target: to a local register slot, a captured upvalue, or a
// global name. This is the "lowering" spec.md §4.1 describes — rather than
// rewriting Assign/CompoundAssign/Increment/Decrement into four separate
// Go struct types per scope, the single struct family here carries a Scope
// tag the bytecode compiler switches on (see DESIGN.md).
type ScopeKind int

const (
	ScopeUnresolved ScopeKind = iota
	ScopeLocal
	ScopeUpvalue
	ScopeGlobal
)

func (s ScopeKind) String() string {
	switch s {
	case ScopeLocal:
		return "local"
	case ScopeUpvalue:
		return "upvalue"
	case ScopeGlobal:
		return "global"
	default:
		return "unresolved"
	}
}

// NodeList is an intrusive singly-linked list of sibling nodes, used for
// every variadic child list in the tree (statements, call arguments,
// function parameters, table-constructor entries).
type NodeList struct {
	first, last Node
	length      int
}

// Push appends n to the end of the list.
func (l *NodeList) Push(n Node) {
	if l.first == nil {
		l.first = n
		l.last = n
	} else {
		l.last.setNext(n)
		l.last = n
	}
	l.length++
}

// First returns the head of the list, or nil if empty.
func (l *NodeList) First() Node { return l.first }

// Len returns the number of nodes in the list.
func (l *NodeList) Len() int { return l.length }

// Statements materializes the list as a []Statement slice. Every element
// must actually satisfy Statement.
func Statements(l NodeList) []Statement {
	out := make([]Statement, 0, l.length)
	for n := l.first; n != nil; n = n.next() {
		out = append(out, n.(Statement))
	}
	return out
}

// Expressions materializes the list as an []Expression slice. Every
// element must actually satisfy Expression.
func Expressions(l NodeList) []Expression {
	out := make([]Expression, 0, l.length)
	for n := l.first; n != nil; n = n.next() {
		out = append(out, n.(Expression))
	}
	return out
}

// Params materializes the list as a []*Param slice.
func Params(l NodeList) []*Param {
	out := make([]*Param, 0, l.length)
	for n := l.first; n != nil; n = n.next() {
		out = append(out, n.(*Param))
	}
	return out
}

// TableItems materializes the list as a []*TableItem slice.
func TableItems(l NodeList) []*TableItem {
	out := make([]*TableItem, 0, l.length)
	for n := l.first; n != nil; n = n.next() {
		out = append(out, n.(*TableItem))
	}
	return out
}

// ListOf builds a NodeList from a slice, useful for tests and for the
// generic AST transforms in the semantic pass that synthesize new lists.
func ListOf[T Node](items ...T) NodeList {
	var l NodeList
	for _, it := range items {
		l.Push(it)
	}
	return l
}
