package parser

import (
	"github.com/behl-lang/behl-go/internal/ast"
	"github.com/behl-lang/behl-go/pkg/token"
)

// parseStatement dispatches on the current token to the statement-level
// grammar production it starts. A lone `;` is an empty statement and
// produces no node.
func (p *Parser) parseStatement() ast.Statement {
	switch p.cur().Type {
	case token.LET, token.CONST:
		return p.parseLetStmt()
	case token.LBRACE:
		return p.parseBlock()
	case token.IF:
		return p.parseIfStmt()
	case token.WHILE:
		return p.parseWhileStmt()
	case token.FOR:
		return p.parseForStmt()
	case token.FOREACH:
		return p.parseForeachStmt()
	case token.BREAK:
		return p.parseBreakStmt()
	case token.CONTINUE:
		return p.parseContinueStmt()
	case token.RETURN:
		return p.parseReturnStmt()
	case token.DEFER:
		return p.parseDeferStmt()
	case token.FUNCTION:
		return p.parseFunctionDeclStmt()
	case token.EXPORT:
		return p.parseExportDeclStmt()
	case token.MODULE:
		return p.parseModuleStmt()
	case token.SEMICOLON:
		p.advance()
		return nil
	default:
		return p.parseExprStmt()
	}
}

// parseBlock parses a brace-delimited statement list.
func (p *Parser) parseBlock() *ast.Block {
	tok, ok := p.expect(token.LBRACE)
	if !ok {
		return ast.NewBlock(p.arena, p.cur().Pos, ast.NodeList{})
	}
	var stmts ast.NodeList
	for !p.curIs(token.RBRACE) && !p.curIs(token.EOF) {
		if stmt := p.parseStatement(); stmt != nil {
			stmts.Push(stmt)
		}
	}
	p.expect(token.RBRACE)
	return ast.NewBlock(p.arena, tok.Pos, stmts)
}

// parseBlockOrSingleStmt parses the body of an if/while/for: either a brace
// block, or (spec.md §6) a single statement with no braces, wrapped in a
// one-statement Block so downstream passes only ever see Block bodies.
func (p *Parser) parseBlockOrSingleStmt() *ast.Block {
	if p.curIs(token.LBRACE) {
		return p.parseBlock()
	}
	pos := p.cur().Pos
	var stmts ast.NodeList
	if stmt := p.parseStatement(); stmt != nil {
		stmts.Push(stmt)
	}
	return ast.NewBlock(p.arena, pos, stmts)
}

func (p *Parser) parseExprStmt() ast.Statement {
	pos := p.cur().Pos
	expr := p.parseExpression(LOWEST)
	if expr == nil {
		p.advance() // avoid looping forever on an unparseable token
		return nil
	}
	p.skipSemicolons()
	return ast.NewExprStmt(p.arena, pos, expr)
}

// parseLetStmt parses `let`/`const` declarations: `let x = 1, y, z = f();`.
// Values is padded with nil so it always lines up 1:1 with Names, even when
// a bare name in the middle has no initializer.
func (p *Parser) parseLetStmt() *ast.LetStmt {
	tok := p.advance() // let or const
	isConst := tok.Type == token.CONST

	var names []string
	var values []ast.Expression
	for {
		name, ok := p.expectIdent()
		if !ok {
			break
		}
		names = append(names, name)
		if p.curIs(token.ASSIGN) {
			p.advance()
			values = append(values, p.parseExpression(ASSIGN-1))
		} else {
			values = append(values, nil)
		}
		if p.curIs(token.COMMA) {
			p.advance()
			continue
		}
		break
	}
	p.skipSemicolons()
	return ast.NewLetStmt(p.arena, tok.Pos, names, values, isConst)
}

func (p *Parser) parseIfStmt() ast.Statement {
	tok := p.advance() // if
	p.expect(token.LPAREN)
	cond := p.parseExpression(LOWEST)
	p.expect(token.RPAREN)
	then := p.parseBlockOrSingleStmt()

	var elseIfs []ast.ElseIfClause
	for p.curIs(token.ELSEIF) {
		p.advance()
		p.expect(token.LPAREN)
		c := p.parseExpression(LOWEST)
		p.expect(token.RPAREN)
		b := p.parseBlockOrSingleStmt()
		elseIfs = append(elseIfs, ast.ElseIfClause{Cond: c, Body: b})
	}

	var els *ast.Block
	if p.curIs(token.ELSE) {
		p.advance()
		els = p.parseBlockOrSingleStmt()
	}
	return ast.NewIfStmt(p.arena, tok.Pos, cond, then, elseIfs, els)
}

func (p *Parser) parseWhileStmt() ast.Statement {
	tok := p.advance() // while
	p.expect(token.LPAREN)
	cond := p.parseExpression(LOWEST)
	p.expect(token.RPAREN)
	body := p.parseBlockOrSingleStmt()
	return ast.NewWhileStmt(p.arena, tok.Pos, cond, body)
}

// parseForStmt handles `for`'s two comma/semicolon forms. Both start
// `for (IDENT = expr`; the form is disambiguated by what follows: a `,`
// means the numeric form (`for (i = 0, 10[, 2]) {...}`), a `;` means the
// first clause of the C-style form (`for (i = 0; i < 10; i++) {...}`).
// `foreach` (parseForeachStmt) owns the separate for-in form.
func (p *Parser) parseForStmt() ast.Statement {
	tok := p.advance() // for
	p.expect(token.LPAREN)

	if p.curIs(token.IDENT) && p.peekIs(token.ASSIGN) {
		nameTok := p.advance()
		p.advance() // =
		start := p.parseExpression(LOWEST)

		if p.curIs(token.COMMA) {
			p.advance()
			stop := p.parseExpression(LOWEST)
			var step ast.Expression
			if p.curIs(token.COMMA) {
				p.advance()
				step = p.parseExpression(LOWEST)
			}
			p.expect(token.RPAREN)
			body := p.parseBlockOrSingleStmt()
			return ast.NewForNumericStmt(p.arena, tok.Pos, nameTok.Literal, start, stop, step, body)
		}

		target := ast.NewIdentifier(p.arena, nameTok.Pos, nameTok.Literal)
		assign := ast.NewAssignExpr(p.arena, nameTok.Pos, target, start)
		init := ast.NewExprStmt(p.arena, nameTok.Pos, assign)
		p.expect(token.SEMICOLON)
		return p.finishForCStmt(tok, init)
	}

	var init ast.Statement
	switch {
	case p.curIs(token.SEMICOLON):
		p.advance()
	case p.curIs(token.LET) || p.curIs(token.CONST):
		init = p.parseLetStmt()
	default:
		pos := p.cur().Pos
		expr := p.parseExpression(LOWEST)
		init = ast.NewExprStmt(p.arena, pos, expr)
		p.expect(token.SEMICOLON)
	}
	return p.finishForCStmt(tok, init)
}

// finishForCStmt parses the cond; post) body) tail shared by both ways
// parseForStmt can reach the C-style form.
func (p *Parser) finishForCStmt(tok token.Token, init ast.Statement) ast.Statement {
	var cond ast.Expression
	if !p.curIs(token.SEMICOLON) {
		cond = p.parseExpression(LOWEST)
	}
	p.expect(token.SEMICOLON)

	var post ast.Statement
	if !p.curIs(token.RPAREN) {
		pos := p.cur().Pos
		expr := p.parseExpression(LOWEST)
		post = ast.NewExprStmt(p.arena, pos, expr)
	}
	p.expect(token.RPAREN)
	body := p.parseBlockOrSingleStmt()
	return ast.NewForCStmt(p.arena, tok.Pos, init, cond, post, body)
}

// parseForeachStmt parses `foreach (v in expr) {...}` and
// `foreach (k, v in expr) {...}`.
func (p *Parser) parseForeachStmt() ast.Statement {
	tok := p.advance() // foreach
	p.expect(token.LPAREN)

	first, ok := p.expectIdent()
	if !ok {
		return nil
	}
	key, value := "", first
	if p.curIs(token.COMMA) {
		p.advance()
		second, ok := p.expectIdent()
		if !ok {
			return nil
		}
		key, value = first, second
	}

	if _, ok := p.expect(token.IN); !ok {
		return nil
	}
	expr := p.parseExpression(LOWEST)
	p.expect(token.RPAREN)
	body := p.parseBlockOrSingleStmt()
	return ast.NewForInStmt(p.arena, tok.Pos, key, value, expr, body)
}

func (p *Parser) parseBreakStmt() ast.Statement {
	tok := p.advance()
	p.skipSemicolons()
	return ast.NewBreakStmt(p.arena, tok.Pos)
}

func (p *Parser) parseContinueStmt() ast.Statement {
	tok := p.advance()
	p.skipSemicolons()
	return ast.NewContinueStmt(p.arena, tok.Pos)
}

// parseReturnStmt treats a `return` immediately followed by a statement
// terminator (`;`, a closing `}`, or EOF) as a bare return with no value.
func (p *Parser) parseReturnStmt() ast.Statement {
	tok := p.advance()
	var value ast.Expression
	if !p.curIs(token.SEMICOLON) && !p.curIs(token.RBRACE) && !p.curIs(token.EOF) {
		value = p.parseExpression(LOWEST)
	}
	p.skipSemicolons()
	return ast.NewReturnStmt(p.arena, tok.Pos, value)
}

func (p *Parser) parseDeferStmt() ast.Statement {
	tok := p.advance()
	call := p.parseExpression(LOWEST)
	p.skipSemicolons()
	return ast.NewDeferStmt(p.arena, tok.Pos, call)
}

// parseFunctionDeclStmt parses `function name(params) {...}` and the
// Lua-style method-definition sugar `function obj:meth(params) {...}`,
// which desugars here into `obj.meth = function(params) {...}` with
// FunctionLiteral.IsMethod set; the semantic pass (not the parser) is
// responsible for prepending the implicit `self` parameter, since the
// call-site desugaring it performs for `expr:meth(args)` lives there too
// (spec.md §4.1) and both halves belong together.
func (p *Parser) parseFunctionDeclStmt() ast.Statement {
	tok := p.advance() // function
	nameTok, ok := p.expect(token.IDENT)
	if !ok {
		return nil
	}

	if p.curIs(token.COLON) {
		p.advance()
		methodTok, ok := p.expect(token.IDENT)
		if !ok {
			return nil
		}
		params, vararg := p.parseParamList()
		body := p.parseBlock()
		fn := ast.NewFunctionLiteral(p.arena, tok.Pos, params, vararg, body)
		fn.Name = nameTok.Literal + ":" + methodTok.Literal
		fn.IsMethod = true
		target := ast.NewMemberExpr(p.arena, methodTok.Pos, ast.NewIdentifier(p.arena, nameTok.Pos, nameTok.Literal), methodTok.Literal)
		assign := ast.NewAssignExpr(p.arena, tok.Pos, target, fn)
		return ast.NewExprStmt(p.arena, tok.Pos, assign)
	}

	params, vararg := p.parseParamList()
	body := p.parseBlock()
	fn := ast.NewFunctionLiteral(p.arena, tok.Pos, params, vararg, body)
	fn.Name = nameTok.Literal
	return ast.NewFunctionDeclStmt(p.arena, tok.Pos, nameTok.Literal, fn)
}

// parseExportDeclStmt parses `export const ...`, `export function ...`, and
// `export { a, b, c };`. `export let` is syntactically accepted (so the
// rejection in the semantic pass, spec.md §4.1, carries a real source
// position) but every other declaration form is a parse error here.
func (p *Parser) parseExportDeclStmt() ast.Statement {
	tok := p.advance() // export

	if p.curIs(token.LBRACE) {
		p.advance()
		var names []string
		for !p.curIs(token.RBRACE) && !p.curIs(token.EOF) {
			name, ok := p.expectIdent()
			if !ok {
				break
			}
			names = append(names, name)
			if p.curIs(token.COMMA) {
				p.advance()
				continue
			}
			break
		}
		p.expect(token.RBRACE)
		p.skipSemicolons()
		return ast.NewExportDeclStmt(p.arena, tok.Pos, nil, names)
	}

	switch p.cur().Type {
	case token.LET, token.CONST:
		decl := p.parseLetStmt()
		return ast.NewExportDeclStmt(p.arena, tok.Pos, decl, nil)
	case token.FUNCTION:
		decl := p.parseFunctionDeclStmt()
		return ast.NewExportDeclStmt(p.arena, tok.Pos, decl, nil)
	default:
		p.errorf(ErrUnexpectedToken, "expected 'const', 'function', or '{' after 'export', got %s", p.cur().Type)
		return nil
	}
}

func (p *Parser) parseModuleStmt() ast.Statement {
	tok := p.advance() // module
	strTok, ok := p.expect(token.STRING)
	if !ok {
		return nil
	}
	p.skipSemicolons()
	return ast.NewModuleStmt(p.arena, tok.Pos, strTok.Literal)
}
