// Package semantic implements behl's semantic pass: the stage between the
// parser and the bytecode compiler that turns a freshly parsed
// *ast.Program into one the compiler can walk without deriving any scope
// information of its own.
//
// Analyze runs, in order: the module transform (synthesizing
// `__EXPORTS__` for a `module`-tagged program), scope resolution (binding
// every identifier to a local slot, an upvalue index, or the global
// table, chaining upvalue descriptors through every intervening function
// along the way), method-call desugaring (`recv:meth(args)` becomes a
// member load plus an ordinary call with a cloned receiver as the
// implicit first argument), and validation (const reassignment,
// break/continue outside a loop, `...` outside a vararg function, export
// of a non-const local). All four are grounded on spec.md §4.1; see
// DESIGN.md for the decision to represent the "scope-specific node
// variant" lowering it describes as an ast.ScopeKind tag set on the
// existing Identifier/Assign node family rather than as four parallel AST
// struct types.
package semantic

import (
	"github.com/behl-lang/behl-go/internal/ast"
	"github.com/behl-lang/behl-go/internal/errfmt"
)

// Analyze runs the full semantic pass over prog in place. It returns every
// error encountered; a non-empty result means prog must not be handed to
// the bytecode compiler.
func Analyze(prog *ast.Program) []*errfmt.Error {
	arena := ast.NewArena()

	var errs []*errfmt.Error
	errs = append(errs, transformModule(arena, prog)...)

	r := newResolver(arena)
	r.resolveProgram(prog)
	errs = append(errs, r.errs...)

	return errs
}
