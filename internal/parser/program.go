package parser

import (
	"github.com/behl-lang/behl-go/internal/ast"
	"github.com/behl-lang/behl-go/pkg/token"
)

// ParseProgram is the parser's entry point: an optional leading
// `module "name";` declaration (spec.md §7) followed by a statement list
// running to EOF.
func (p *Parser) ParseProgram() *ast.Program {
	var mod *ast.ModuleStmt
	if p.curIs(token.MODULE) {
		mod = p.parseModuleStmt().(*ast.ModuleStmt)
	}

	var stmts ast.NodeList
	for !p.curIs(token.EOF) {
		if stmt := p.parseStatement(); stmt != nil {
			stmts.Push(stmt)
		}
	}
	return ast.NewProgram(p.arena, mod, stmts)
}
