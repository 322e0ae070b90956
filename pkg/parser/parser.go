// Package parser builds an ast.Program from a token stream by recursive
// descent, with expression precedence climbing layered as comparison over
// term over factor over primary.
package parser

import (
	"github.com/mc-lang/mcc/pkg/ast"
	"github.com/mc-lang/mcc/pkg/cerr"
	"github.com/mc-lang/mcc/pkg/token"
)

// Parser consumes a pre-tokenized, layout-filtered token slice. NEWLINE,
// INDENT, and DEDENT never affect any parse decision in MC's grammar — only
// ';' and '{'/'}' do — so they are dropped up front rather than threaded
// through every production.
type Parser struct {
	toks []token.Token
	pos  int
}

// New constructs a Parser over toks, which need not already be
// layout-filtered.
func New(toks []token.Token) *Parser {
	return &Parser{toks: filterLayout(toks)}
}

func filterLayout(toks []token.Token) []token.Token {
	out := make([]token.Token, 0, len(toks))
	for _, t := range toks {
		switch t.Kind {
		case token.Newline, token.Indent, token.Dedent:
			continue
		}
		out = append(out, t)
	}
	if len(out) == 0 || out[len(out)-1].Kind != token.EOF {
		out = append(out, token.Token{Kind: token.EOF})
	}
	return out
}

// parseError is panicked internally by fail and recovered at Parse's top
// level; it never escapes this package.
type parseError struct{ err *cerr.Error }

// Parse parses an already-lexed token stream into a Program, or returns the
// first syntax error encountered.
func Parse(toks []token.Token) (prog *ast.Program, err *cerr.Error) {
	p := New(toks)
	defer func() {
		if r := recover(); r != nil {
			pe, ok := r.(parseError)
			if !ok {
				panic(r)
			}
			prog, err = nil, pe.err
		}
	}()
	return p.parseProgram(), nil
}

func (p *Parser) cur() token.Token {
	if p.pos < len(p.toks) {
		return p.toks[p.pos]
	}
	return p.toks[len(p.toks)-1]
}

func (p *Parser) check(k token.Kind) bool { return p.cur().Kind == k }

func (p *Parser) advance() token.Token {
	t := p.cur()
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}

func (p *Parser) match(k token.Kind) bool {
	if p.check(k) {
		p.advance()
		return true
	}
	return false
}

func (p *Parser) expect(k token.Kind, what string) token.Token {
	if p.check(k) {
		return p.advance()
	}
	p.fail("expected %s, found %s", what, p.cur().Kind)
	return token.Token{}
}

func (p *Parser) fail(format string, args ...interface{}) {
	pos := p.cur().Pos
	panic(parseError{cerr.Errorf(cerr.StageParse, pos.Line, pos.Column, format, args...)})
}

func (p *Parser) parseProgram() *ast.Program {
	prog := &ast.Program{}
	for !p.check(token.EOF) {
		prog.Functions = append(prog.Functions, p.parseFunction())
	}
	return prog
}

func (p *Parser) parseFunction() *ast.Function {
	pos := p.cur().Pos
	retType := p.parseType()
	name := p.expect(token.Ident, "function name")
	p.expect(token.LParen, "'('")
	var params []ast.Param
	if !p.check(token.RParen) {
		params = append(params, p.parseParam())
		for p.match(token.Comma) {
			params = append(params, p.parseParam())
		}
	}
	p.expect(token.RParen, "')'")
	body := p.parseBlock()
	return &ast.Function{Name: name.StrValue, ReturnType: retType, Params: params, Body: body, Pos: pos}
}

func (p *Parser) parseParam() ast.Param {
	typ := p.parseType()
	name := p.expect(token.Ident, "parameter name")
	return ast.Param{Type: typ, Name: name.StrValue, Pos: name.Pos}
}

func (p *Parser) parseType() ast.Type {
	switch {
	case p.match(token.Int):
		return ast.TypeInt
	case p.match(token.Void):
		return ast.TypeVoid
	case p.match(token.StringKw):
		return ast.TypeString
	default:
		p.fail("expected a type, found %s", p.cur().Kind)
		return ast.TypeVoid
	}
}

func isTypeStart(k token.Kind) bool {
	return k == token.Int || k == token.Void || k == token.StringKw
}

func (p *Parser) parseBlock() []ast.Stmt {
	p.expect(token.LBrace, "'{'")
	var stmts []ast.Stmt
	for !p.check(token.RBrace) && !p.check(token.EOF) {
		stmts = append(stmts, p.parseStmt())
	}
	p.expect(token.RBrace, "'}'")
	return stmts
}

func (p *Parser) parseStmt() ast.Stmt {
	switch {
	case p.check(token.If):
		return p.parseIf()
	case p.check(token.While):
		return p.parseWhile()
	case p.check(token.Return):
		return p.parseReturn()
	case isTypeStart(p.cur().Kind):
		return p.parseVarDecl()
	case p.check(token.Ident):
		return p.parseAssign()
	default:
		p.fail("expected a statement, found %s", p.cur().Kind)
		return nil
	}
}

// parseCondition parses an expression optionally wrapped in parentheses;
// the parens are accepted and discarded either way.
func (p *Parser) parseCondition() ast.Expr {
	hadParen := p.match(token.LParen)
	cond := p.parseExpr()
	if hadParen {
		p.expect(token.RParen, "')'")
	}
	return cond
}

func (p *Parser) parseIf() ast.Stmt {
	tok := p.advance() // 'if'
	cond := p.parseCondition()
	then := p.parseBlock()
	var els []ast.Stmt
	if p.match(token.Else) {
		els = p.parseBlock()
	}
	return &ast.If{Cond: cond, Then: then, Else: els, Pos: tok.Pos}
}

func (p *Parser) parseWhile() ast.Stmt {
	tok := p.advance() // 'while'
	cond := p.parseCondition()
	body := p.parseBlock()
	return &ast.While{Cond: cond, Body: body, Pos: tok.Pos}
}

func (p *Parser) parseReturn() ast.Stmt {
	tok := p.advance() // 'return'
	var val ast.Expr
	if !p.check(token.Semi) {
		val = p.parseExpr()
	}
	p.expect(token.Semi, "';'")
	return &ast.Return{Value: val, Pos: tok.Pos}
}

func (p *Parser) parseVarDecl() ast.Stmt {
	pos := p.cur().Pos
	typ := p.parseType()
	name := p.expect(token.Ident, "variable name")
	var init ast.Expr
	if p.match(token.Assign) {
		init = p.parseExpr()
	}
	p.expect(token.Semi, "';'")
	return &ast.VarDecl{Type: typ, Name: name.StrValue, Initializer: init, Pos: pos}
}

func (p *Parser) parseAssign() ast.Stmt {
	name := p.advance() // identifier, per parseStmt's dispatch
	p.expect(token.Assign, "'='")
	val := p.parseExpr()
	p.expect(token.Semi, "';'")
	return &ast.Assign{Name: name.StrValue, Value: val, Pos: name.Pos}
}

func (p *Parser) parseExpr() ast.Expr { return p.parseComparison() }

func isComparisonOp(k token.Kind) bool {
	switch k {
	case token.Eq, token.Neq, token.Lt, token.Lte, token.Gt, token.Gte:
		return true
	}
	return false
}

func (p *Parser) parseComparison() ast.Expr {
	left := p.parseTerm()
	for isComparisonOp(p.cur().Kind) {
		op := p.advance()
		right := p.parseTerm()
		left = &ast.Binary{Left: left, Op: op.Kind, Right: right, Pos: op.Pos}
	}
	return left
}

func (p *Parser) parseTerm() ast.Expr {
	left := p.parseFactor()
	for p.check(token.Plus) || p.check(token.Minus) {
		op := p.advance()
		right := p.parseFactor()
		left = &ast.Binary{Left: left, Op: op.Kind, Right: right, Pos: op.Pos}
	}
	return left
}

func (p *Parser) parseFactor() ast.Expr {
	left := p.parsePrimary()
	for p.check(token.Star) || p.check(token.Slash) {
		op := p.advance()
		right := p.parsePrimary()
		left = &ast.Binary{Left: left, Op: op.Kind, Right: right, Pos: op.Pos}
	}
	return left
}

func (p *Parser) parsePrimary() ast.Expr {
	switch {
	case p.match(token.LParen):
		e := p.parseExpr()
		p.expect(token.RParen, "')'")
		return e
	case p.check(token.Bang) || p.check(token.Minus):
		op := p.advance()
		operand := p.parsePrimary()
		return &ast.Unary{Op: op.Kind, Operand: operand, Pos: op.Pos}
	case p.check(token.IntLit):
		t := p.advance()
		return &ast.IntLiteral{Value: t.IntValue, Pos: t.Pos}
	case p.check(token.StringLit):
		t := p.advance()
		return &ast.StringLiteral{Value: t.StrValue, Pos: t.Pos}
	case p.check(token.Ident):
		t := p.advance()
		return &ast.Identifier{Name: t.StrValue, Pos: t.Pos}
	default:
		p.fail("expected an expression, found %s", p.cur().Kind)
		return nil
	}
}
