package semantic

import (
	"github.com/behl-lang/behl-go/internal/ast"
	"github.com/behl-lang/behl-go/internal/errfmt"
	"github.com/behl-lang/behl-go/pkg/token"
)

// exportsName is the synthesized table every module-tagged program builds
// up and returns, per spec.md §4.1 / §7.
const exportsName = "__EXPORTS__"

// transformModule rewrites a module-tagged program: it synthesizes
// `let __EXPORTS__ = {}` as the first statement, unwraps each `export`
// declaration into its underlying local/function declaration followed by
// `__EXPORTS__["name"] = name`, and appends `return __EXPORTS__`.
// Non-module programs are returned unchanged. This runs before scope
// resolution, since the synthesized statements need resolving like any
// other (the `__EXPORTS__` local itself must get a slot, its index
// assignments must resolve `__EXPORTS__` and each exported name).
func transformModule(arena *ast.Arena, prog *ast.Program) []*errfmt.Error {
	if !prog.IsModule() {
		return nil
	}

	var errs []*errfmt.Error
	pos := prog.Module.Pos()

	var body ast.NodeList
	body.Push(ast.NewLetStmt(arena, pos, []string{exportsName},
		[]ast.Expression{ast.NewTableConstructor(arena, pos, ast.NodeList{})}, false))

	var exports []string
	emitExport := func(p token.Position, name string) {
		target := ast.NewIndexExpr(arena, p, ast.NewIdentifier(arena, p, exportsName), ast.NewStringLiteral(arena, p, name))
		assign := ast.NewAssignExpr(arena, p, target, ast.NewIdentifier(arena, p, name))
		body.Push(ast.NewExprStmt(arena, p, assign))
		exports = append(exports, name)
	}

	for _, stmt := range ast.Statements(prog.Body) {
		ed, ok := stmt.(*ast.ExportDeclStmt)
		if !ok {
			body.Push(stmt)
			continue
		}

		if ed.Decl == nil {
			for _, name := range ed.Names {
				emitExport(ed.Pos(), name)
			}
			continue
		}

		switch decl := ed.Decl.(type) {
		case *ast.LetStmt:
			if !decl.Const {
				errs = append(errs, errfmt.New(errfmt.SemanticError, decl.Pos(),
					"export let %q is not allowed; use export const", decl.Names[0]))
				continue
			}
			body.Push(decl)
			for _, name := range decl.Names {
				emitExport(decl.Pos(), name)
			}
		case *ast.FunctionDeclStmt:
			body.Push(decl)
			emitExport(decl.Pos(), decl.Name)
		default:
			errs = append(errs, errfmt.New(errfmt.SemanticError, ed.Pos(),
				"export may only wrap a const declaration or a function declaration"))
		}
	}

	body.Push(ast.NewReturnStmt(arena, pos, ast.NewIdentifier(arena, pos, exportsName)))

	prog.Body = body
	prog.Exports = exports
	return errs
}
