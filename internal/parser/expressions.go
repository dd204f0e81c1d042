package parser

import (
	"strconv"
	"strings"

	"github.com/behl-lang/behl-go/internal/ast"
	"github.com/behl-lang/behl-go/pkg/token"
)

func (p *Parser) parseExpression(precedence int) ast.Expression {
	prefix, ok := p.prefix[p.cur().Type]
	if !ok {
		p.errorf(ErrNoPrefixParse, "no prefix parse function for %s", p.cur().Type)
		return nil
	}
	left := prefix()

	for !p.curIs(token.SEMICOLON) && precedence < p.curPrecedence() {
		if p.noMethodColon && p.curIs(token.COLON) {
			return left
		}
		infix, ok := p.infix[p.cur().Type]
		if !ok || left == nil {
			return left
		}
		left = infix(left)
	}
	return left
}

func (p *Parser) parseIdentifier() ast.Expression {
	tok := p.advance()
	return ast.NewIdentifier(p.arena, tok.Pos, tok.Literal)
}

func (p *Parser) parseIntLiteral() ast.Expression {
	tok := p.advance()
	lit := strings.ReplaceAll(tok.Literal, "_", "")
	var v int64
	var err error
	if strings.HasPrefix(lit, "0x") || strings.HasPrefix(lit, "0X") {
		v, err = strconv.ParseInt(lit[2:], 16, 64)
	} else {
		v, err = strconv.ParseInt(lit, 10, 64)
	}
	if err != nil {
		p.errors = append(p.errors, newError(tok.Pos, ErrInvalidExpression, "invalid integer literal %q", tok.Literal))
		return nil
	}
	return ast.NewIntLiteral(p.arena, tok.Pos, v)
}

func (p *Parser) parseFloatLiteral() ast.Expression {
	tok := p.advance()
	lit := strings.ReplaceAll(tok.Literal, "_", "")
	v, err := strconv.ParseFloat(lit, 64)
	if err != nil {
		p.errors = append(p.errors, newError(tok.Pos, ErrInvalidExpression, "invalid float literal %q", tok.Literal))
		return nil
	}
	return ast.NewFloatLiteral(p.arena, tok.Pos, v)
}

func (p *Parser) parseStringLiteral() ast.Expression {
	tok := p.advance()
	return ast.NewStringLiteral(p.arena, tok.Pos, tok.Literal)
}

func (p *Parser) parseBoolLiteral() ast.Expression {
	tok := p.advance()
	return ast.NewBoolLiteral(p.arena, tok.Pos, tok.Type == token.TRUE)
}

func (p *Parser) parseNilLiteral() ast.Expression {
	tok := p.advance()
	return ast.NewNilLiteral(p.arena, tok.Pos)
}

func (p *Parser) parseVarargExpr() ast.Expression {
	tok := p.advance()
	return ast.NewVarargExpr(p.arena, tok.Pos)
}

func (p *Parser) parseUnaryExpr() ast.Expression {
	tok := p.advance()
	operand := p.parseExpression(UNARY)
	return ast.NewUnaryExpr(p.arena, tok.Pos, tok.Type, operand)
}

func (p *Parser) parsePrefixIncDec() ast.Expression {
	tok := p.advance()
	target := p.parseExpression(UNARY)
	return ast.NewIncDecExpr(p.arena, tok.Pos, tok.Type, target, true)
}

func (p *Parser) parsePostfixIncDec(target ast.Expression) ast.Expression {
	tok := p.advance()
	return ast.NewIncDecExpr(p.arena, tok.Pos, tok.Type, target, false)
}

func (p *Parser) parseGroupedExpr() ast.Expression {
	p.advance() // (
	prevNoColon := p.noMethodColon
	p.noMethodColon = false
	expr := p.parseExpression(LOWEST)
	p.noMethodColon = prevNoColon
	p.expect(token.RPAREN)
	return expr
}

func (p *Parser) parseBinaryExpr(left ast.Expression) ast.Expression {
	tok := p.advance()
	prec := p.precedenceOf(tok.Type)
	right := p.parseExpression(prec)
	return ast.NewBinaryExpr(p.arena, tok.Pos, tok.Type, left, right)
}

// parseBinaryExprRightAssoc handles `**`, which associates right-to-left
// (`2 ** 3 ** 2` is `2 ** (3 ** 2)`), by recursing at one precedence level
// lower than its own.
func (p *Parser) parseBinaryExprRightAssoc(left ast.Expression) ast.Expression {
	tok := p.advance()
	right := p.parseExpression(POW - 1)
	return ast.NewBinaryExpr(p.arena, tok.Pos, tok.Type, left, right)
}

func (p *Parser) parseLogicalExpr(left ast.Expression) ast.Expression {
	tok := p.advance()
	prec := p.precedenceOf(tok.Type)
	right := p.parseExpression(prec)
	return ast.NewLogicalExpr(p.arena, tok.Pos, tok.Type, left, right)
}

func (p *Parser) precedenceOf(t token.Type) int {
	if prec, ok := precedences[t]; ok {
		return prec
	}
	return LOWEST
}

// parseTernaryExpr parses `cond ? then : else`. `then` is parsed with
// noMethodColon set so its upcoming separator colon is never mistaken for a
// method call (see the field doc on Parser); a bare method call directly as
// `then` needs parens, e.g. `cond ? (x:m()) : y`. `else` has no such
// conflict and parses at TERNARY-1 so chained ternaries (`a?b:c?d:e`)
// associate to the right.
func (p *Parser) parseTernaryExpr(cond ast.Expression) ast.Expression {
	tok := p.advance() // ?

	prevNoColon := p.noMethodColon
	p.noMethodColon = true
	then := p.parseExpression(TERNARY)
	p.noMethodColon = prevNoColon

	if _, ok := p.expect(token.COLON); !ok {
		return nil
	}
	els := p.parseExpression(TERNARY - 1)
	return ast.NewTernaryExpr(p.arena, tok.Pos, cond, then, els)
}

func (p *Parser) parseAssignExpr(target ast.Expression) ast.Expression {
	tok := p.advance() // =
	value := p.parseExpression(ASSIGN - 1)
	return ast.NewAssignExpr(p.arena, tok.Pos, target, value)
}

func (p *Parser) parseCompoundAssignExpr(target ast.Expression) ast.Expression {
	tok := p.advance()
	value := p.parseExpression(ASSIGN - 1)
	return ast.NewCompoundAssignExpr(p.arena, tok.Pos, tok.Type, target, value)
}

func (p *Parser) parseCallExpr(callee ast.Expression) ast.Expression {
	tok := p.advance() // (
	args := p.parseExpressionList(token.RPAREN)
	return ast.NewCallExpr(p.arena, tok.Pos, callee, args)
}

func (p *Parser) parseExpressionList(terminator token.Type) ast.NodeList {
	var list ast.NodeList
	if p.curIs(terminator) {
		p.advance()
		return list
	}
	for {
		expr := p.parseExpression(LOWEST)
		if expr != nil {
			list.Push(expr)
		}
		if p.curIs(token.COMMA) {
			p.advance()
			continue
		}
		break
	}
	p.expect(terminator)
	return list
}

func (p *Parser) parseIndexExpr(object ast.Expression) ast.Expression {
	tok := p.advance() // [
	index := p.parseExpression(LOWEST)
	p.expect(token.RBRACKET)
	return ast.NewIndexExpr(p.arena, tok.Pos, object, index)
}

func (p *Parser) parseMemberExpr(object ast.Expression) ast.Expression {
	tok := p.advance() // .
	name, ok := p.expectIdent()
	if !ok {
		return object
	}
	return ast.NewMemberExpr(p.arena, tok.Pos, object, name)
}

func (p *Parser) parseMethodCallExpr(receiver ast.Expression) ast.Expression {
	tok := p.advance() // :
	name, ok := p.expectIdent()
	if !ok {
		return receiver
	}
	if _, ok := p.expect(token.LPAREN); !ok {
		return receiver
	}
	args := p.parseExpressionList(token.RPAREN)
	return ast.NewMethodCallExpr(p.arena, tok.Pos, receiver, name, args)
}

func (p *Parser) parseTableConstructor() ast.Expression {
	tok := p.advance() // {
	var items ast.NodeList
	for !p.curIs(token.RBRACE) && !p.curIs(token.EOF) {
		items.Push(p.parseTableItem())
		if p.curIs(token.COMMA) || p.curIs(token.SEMICOLON) {
			p.advance()
			continue
		}
		break
	}
	p.expect(token.RBRACE)
	return ast.NewTableConstructor(p.arena, tok.Pos, items)
}

// parseTableItem handles the three table-entry forms: `expr` (positional),
// `name = expr` (shorthand keyed), and `[expr] = expr` (computed keyed).
func (p *Parser) parseTableItem() *ast.TableItem {
	pos := p.cur().Pos

	if p.curIs(token.LBRACKET) {
		p.advance()
		key := p.parseExpression(LOWEST)
		p.expect(token.RBRACKET)
		p.expect(token.ASSIGN)
		value := p.parseExpression(LOWEST)
		return ast.NewTableItem(p.arena, pos, key, value)
	}

	if p.curIs(token.IDENT) && p.peekIs(token.ASSIGN) {
		nameTok := p.advance()
		p.advance() // =
		key := ast.NewStringLiteral(p.arena, nameTok.Pos, nameTok.Literal)
		value := p.parseExpression(LOWEST)
		return ast.NewTableItem(p.arena, pos, key, value)
	}

	value := p.parseExpression(LOWEST)
	return ast.NewTableItem(p.arena, pos, nil, value)
}

func (p *Parser) parseFunctionLiteral() ast.Expression {
	tok := p.advance() // function
	var name string
	if p.curIs(token.IDENT) {
		name = p.advance().Literal
	}
	params, vararg := p.parseParamList()
	body := p.parseBlock()
	fn := ast.NewFunctionLiteral(p.arena, tok.Pos, params, vararg, body)
	fn.Name = name
	return fn
}

// parseParamList parses `(a, b, ...)`. The ellipsis, if present, must be
// the last parameter and marks the function as variadic.
func (p *Parser) parseParamList() (ast.NodeList, bool) {
	var params ast.NodeList
	vararg := false
	if _, ok := p.expect(token.LPAREN); !ok {
		return params, vararg
	}
	for !p.curIs(token.RPAREN) && !p.curIs(token.EOF) {
		if p.curIs(token.ELLIPSIS) {
			p.advance()
			vararg = true
			break
		}
		nameTok, ok := p.expect(token.IDENT)
		if !ok {
			break
		}
		params.Push(ast.NewParam(p.arena, nameTok.Pos, nameTok.Literal))
		if p.curIs(token.COMMA) {
			p.advance()
			continue
		}
		break
	}
	p.expect(token.RPAREN)
	return params, vararg
}
