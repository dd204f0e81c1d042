// Package parser implements a Pratt parser that turns a token stream into
// an internal/ast tree.
//
// Key patterns, in the teacher's own words: curToken/peekToken with a
// one-token lookahead, prefix/infix parse function tables keyed by token
// type, and a precedence table driving parseExpression's climbing. Unlike
// the teacher's speculative-backtracking parser (DWScript's grammar is
// ambiguous enough to need full state snapshots), behl's grammar needs no
// backtracking: a single token of lookahead resolves every production, so
// this parser carries none of that machinery.
package parser

import (
	"github.com/behl-lang/behl-go/internal/ast"
	"github.com/behl-lang/behl-go/pkg/token"
)

// Precedence levels, lowest to highest.
const (
	_ int = iota
	LOWEST
	ASSIGN      // = += -= *= /= %=
	TERNARY     // ?:
	LOGOR       // || or
	LOGAND      // && and
	BITOR       // |
	BITXOR      // ^
	BITAND      // &
	EQUALS      // == !=
	COMPARE     // < <= > >=
	SHIFT       // << >>
	SUM         // + -
	PRODUCT     // * / %
	UNARY       // - ! # ~ not (prefix)
	POW         // ** (right-assoc, binds tighter than unary on its left)
	CALL        // f(args)
	INDEX       // a[i]
	MEMBER      // a.b, a:b(...)
)

var precedences = map[token.Type]int{
	token.ASSIGN:    ASSIGN,
	token.PLUSEQ:    ASSIGN,
	token.MINUSEQ:   ASSIGN,
	token.STAREQ:    ASSIGN,
	token.SLASHEQ:   ASSIGN,
	token.PERCENTEQ: ASSIGN,
	token.QUESTION:  TERNARY,
	token.LOGOR:     LOGOR,
	token.OR:        LOGOR,
	token.LOGAND:    LOGAND,
	token.AND:       LOGAND,
	token.PIPE:      BITOR,
	token.CARET:     BITXOR,
	token.AMP:       BITAND,
	token.EQ:        EQUALS,
	token.NEQ:       EQUALS,
	token.LT:        COMPARE,
	token.LE:        COMPARE,
	token.GT:        COMPARE,
	token.GE:        COMPARE,
	token.SHL:       SHIFT,
	token.SHR:       SHIFT,
	token.PLUS:      SUM,
	token.MINUS:     SUM,
	token.STAR:      PRODUCT,
	token.SLASH:     PRODUCT,
	token.PERCENT:   PRODUCT,
	token.POW:       POW,
	token.LPAREN:    CALL,
	token.LBRACKET:  INDEX,
	token.DOT:       MEMBER,
	token.COLON:     MEMBER,
	token.INC:       CALL, // postfix a++ binds like a call: tighter than everything below it
	token.DEC:       CALL,
}

type prefixParseFn func() ast.Expression
type infixParseFn func(ast.Expression) ast.Expression

// Parser converts a token stream into an *ast.Program.
type Parser struct {
	toks   []token.Token
	pos    int
	arena  *ast.Arena
	errors []*Error
	prefix map[token.Type]prefixParseFn
	infix  map[token.Type]infixParseFn

	// noMethodColon suppresses COLON's infix role while set. A bare `:` is
	// ambiguous between a method call (`a:b(...)`) and the ternary
	// separator (`cond ? then : else`): parsing `then` with a COLON
	// infix active would let `cond ? x : len(s)` misparse as
	// `cond ? (x:len(s))`, swallowing the separator. parseTernaryExpr sets
	// this for the `then` parse only; `else` has no upcoming separator to
	// confuse it with, so bare method calls remain legal there.
	noMethodColon bool
}

// New creates a Parser over an already-tokenized input.
func New(toks []token.Token, arena *ast.Arena) *Parser {
	p := &Parser{toks: toks, arena: arena}
	p.prefix = map[token.Type]prefixParseFn{
		token.IDENT:    p.parseIdentifier,
		token.INT:      p.parseIntLiteral,
		token.FLOAT:    p.parseFloatLiteral,
		token.STRING:   p.parseStringLiteral,
		token.TRUE:     p.parseBoolLiteral,
		token.FALSE:    p.parseBoolLiteral,
		token.NIL:      p.parseNilLiteral,
		token.ELLIPSIS: p.parseVarargExpr,
		token.MINUS:    p.parseUnaryExpr,
		token.BANG:     p.parseUnaryExpr,
		token.NOT:      p.parseUnaryExpr,
		token.HASH:     p.parseUnaryExpr,
		token.TILDE:    p.parseUnaryExpr,
		token.INC:      p.parsePrefixIncDec,
		token.DEC:      p.parsePrefixIncDec,
		token.LPAREN:   p.parseGroupedExpr,
		token.LBRACE:   p.parseTableConstructor,
		token.FUNCTION: p.parseFunctionLiteral,
	}
	p.infix = map[token.Type]infixParseFn{
		token.PLUS:      p.parseBinaryExpr,
		token.MINUS:     p.parseBinaryExpr,
		token.STAR:      p.parseBinaryExpr,
		token.SLASH:     p.parseBinaryExpr,
		token.PERCENT:   p.parseBinaryExpr,
		token.POW:       p.parseBinaryExprRightAssoc,
		token.AMP:       p.parseBinaryExpr,
		token.PIPE:      p.parseBinaryExpr,
		token.CARET:     p.parseBinaryExpr,
		token.SHL:       p.parseBinaryExpr,
		token.SHR:       p.parseBinaryExpr,
		token.EQ:        p.parseBinaryExpr,
		token.NEQ:       p.parseBinaryExpr,
		token.LT:        p.parseBinaryExpr,
		token.LE:        p.parseBinaryExpr,
		token.GT:        p.parseBinaryExpr,
		token.GE:        p.parseBinaryExpr,
		token.LOGAND:    p.parseLogicalExpr,
		token.AND:       p.parseLogicalExpr,
		token.LOGOR:     p.parseLogicalExpr,
		token.OR:        p.parseLogicalExpr,
		token.QUESTION:  p.parseTernaryExpr,
		token.ASSIGN:    p.parseAssignExpr,
		token.PLUSEQ:    p.parseCompoundAssignExpr,
		token.MINUSEQ:   p.parseCompoundAssignExpr,
		token.STAREQ:    p.parseCompoundAssignExpr,
		token.SLASHEQ:   p.parseCompoundAssignExpr,
		token.PERCENTEQ: p.parseCompoundAssignExpr,
		token.LPAREN:    p.parseCallExpr,
		token.LBRACKET:  p.parseIndexExpr,
		token.DOT:       p.parseMemberExpr,
		token.COLON:     p.parseMethodCallExpr,
		token.INC:       p.parsePostfixIncDec,
		token.DEC:       p.parsePostfixIncDec,
	}
	return p
}

// Parse parses an already-tokenized source (toks, ending in EOF) into a
// Program in one step, using a fresh arena.
func Parse(toks []token.Token) (*ast.Program, []*Error) {
	arena := ast.NewArena()
	p := New(toks, arena)
	prog := p.ParseProgram()
	return prog, p.errors
}

func (p *Parser) cur() token.Token {
	if p.pos >= len(p.toks) {
		return p.toks[len(p.toks)-1] // EOF
	}
	return p.toks[p.pos]
}

func (p *Parser) peek() token.Token {
	if p.pos+1 >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[p.pos+1]
}

func (p *Parser) advance() token.Token {
	t := p.cur()
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}

func (p *Parser) curIs(t token.Type) bool  { return p.cur().Type == t }
func (p *Parser) peekIs(t token.Type) bool { return p.peek().Type == t }

func (p *Parser) expect(t token.Type) (token.Token, bool) {
	if p.curIs(t) {
		return p.advance(), true
	}
	p.errorf(ErrUnexpectedToken, "expected %s, got %s", t, p.cur().Type)
	return p.cur(), false
}

func (p *Parser) expectIdent() (string, bool) {
	if p.curIs(token.IDENT) {
		lit := p.cur().Literal
		p.advance()
		return lit, true
	}
	p.errorf(ErrUnexpectedToken, "expected identifier, got %s", p.cur().Type)
	return "", false
}

func (p *Parser) errorf(code, format string, args ...any) {
	p.errors = append(p.errors, newError(p.cur().Pos, code, format, args...))
}

func (p *Parser) curPrecedence() int {
	if prec, ok := precedences[p.cur().Type]; ok {
		return prec
	}
	return LOWEST
}

// skipSemicolons consumes zero or more statement terminators; a trailing
// `;` after a simple statement is optional and stray extras are
// tolerated, matching the teacher's permissive statement separator
// handling.
func (p *Parser) skipSemicolons() {
	for p.curIs(token.SEMICOLON) {
		p.advance()
	}
}
