// Package lexer turns MC source text into a token stream, handling
// indentation, comments, and string escapes.
package lexer

import (
	"strings"

	"github.com/mc-lang/mcc/pkg/cerr"
	"github.com/mc-lang/mcc/pkg/token"
)

// Lexer is a peek/advance scanner over a rune buffer. It is single-use:
// construct one with New per source file and drain it with Next until it
// returns an EOF token.
type Lexer struct {
	src  []rune
	pos  int
	line int
	col  int

	tabWidth int // columns a '\t' advances in indentation measurement

	indent  []int // indentation-width stack, seeded with 0
	pending []token.Token
	atEOF   bool
}

// New creates a Lexer over src. tabWidth is how many columns a '\t'
// advances the indentation measurement in scanIndent; callers with no
// configured value should pass 4.
func New(src string, tabWidth int) *Lexer {
	return &Lexer{
		src:      []rune(src),
		line:     1,
		col:      1,
		tabWidth: tabWidth,
		indent:   []int{0},
	}
}

// Next returns the next token, or a *cerr.Error with Stage ==
// cerr.StageLex on a malformed lexeme. Once it returns an EOF token it
// will keep returning EOF tokens (with the same position) on further calls.
func (l *Lexer) Next() (token.Token, *cerr.Error) {
	if len(l.pending) > 0 {
		t := l.pending[0]
		l.pending = l.pending[1:]
		return t, nil
	}
	return l.lexOne()
}

func (l *Lexer) atEnd() bool { return l.pos >= len(l.src) }

func (l *Lexer) peek() rune {
	if l.atEnd() {
		return 0
	}
	return l.src[l.pos]
}

func (l *Lexer) peekAt(n int) rune {
	if l.pos+n >= len(l.src) {
		return 0
	}
	return l.src[l.pos+n]
}

// advance consumes one character that is known not to be '\n', maintaining
// line/column. Use advanceLine for '\n' itself.
func (l *Lexer) advance() rune {
	c := l.src[l.pos]
	l.pos++
	l.col++
	return c
}

func (l *Lexer) advanceLine() {
	l.pos++
	l.line++
	l.col = 1
}

func (l *Lexer) here() token.Pos { return token.Pos{Line: l.line, Column: l.col} }

func (l *Lexer) lexErr(p token.Pos, format string, args ...interface{}) (token.Token, *cerr.Error) {
	return token.Token{}, cerr.Errorf(cerr.StageLex, p.Line, p.Column, format, args...)
}

func (l *Lexer) lexOne() (token.Token, *cerr.Error) {
	for {
		if l.atEOF {
			return token.Token{Kind: token.EOF, Pos: l.here()}, nil
		}
		switch {
		case l.atEnd():
			return l.finishAtEOF()
		case l.peek() == ' ' || l.peek() == '\t' || l.peek() == '\r':
			l.advance()
			continue
		case l.peek() == '\n':
			return l.lexNewline()
		case l.peek() == '/' && l.peekAt(1) == '/':
			l.skipLineComment()
			continue
		case l.peek() == '/' && l.peekAt(1) == '*':
			l.skipBlockComment()
			continue
		}

		start := l.here()
		ch := l.peek()
		switch {
		case isDigit(ch):
			return l.lexNumber(start)
		case isIdentStart(ch):
			return l.lexIdentOrKeyword(start)
		case ch == '"':
			return l.lexString(start)
		default:
			return l.lexOperator(start)
		}
	}
}

// finishAtEOF unwinds the indentation stack (one DEDENT per still-open
// level) and then yields EOF on every subsequent call.
func (l *Lexer) finishAtEOF() (token.Token, *cerr.Error) {
	pos := l.here()
	for len(l.indent) > 1 {
		l.indent = l.indent[:len(l.indent)-1]
		l.pending = append(l.pending, token.Token{Kind: token.Dedent, Pos: pos})
	}
	l.atEOF = true
	if len(l.pending) > 0 {
		t := l.pending[0]
		l.pending = l.pending[1:]
		return t, nil
	}
	return token.Token{Kind: token.EOF, Pos: pos}, nil
}

func (l *Lexer) lexNewline() (token.Token, *cerr.Error) {
	pos := l.here()
	l.advanceLine()
	nlTok := token.Token{Kind: token.Newline, Pos: pos}

	indentToks, err := l.scanIndent()
	if err != nil {
		return token.Token{}, err
	}
	l.pending = append(l.pending, indentToks...)
	return nlTok, nil
}

// scanIndent measures the leading whitespace of the line the lexer now sits
// at the start of, and turns the change relative to the indentation stack
// into zero or more INDENT/DEDENT tokens. Blank lines (nothing but
// whitespace, or a line that's only a comment) change nothing.
func (l *Lexer) scanIndent() ([]token.Token, *cerr.Error) {
	startPos := l.here()
	width := 0
	sawSpace, sawTab := false, false
loop:
	for {
		switch l.peek() {
		case ' ':
			width++
			sawSpace = true
			l.advance()
		case '\t':
			width += l.tabWidth
			sawTab = true
			l.advance()
		case '\r':
			l.advance()
		default:
			break loop
		}
	}
	if sawSpace && sawTab {
		_, err := l.lexErr(startPos, "mixed tabs and spaces in indentation")
		return nil, err
	}

	// Blank line or comment-only line: no indentation change.
	if l.atEnd() || l.peek() == '\n' || (l.peek() == '/' && (l.peekAt(1) == '/' || l.peekAt(1) == '*')) {
		return nil, nil
	}

	top := l.indent[len(l.indent)-1]
	var toks []token.Token
	switch {
	case width > top:
		l.indent = append(l.indent, width)
		toks = append(toks, token.Token{Kind: token.Indent, Pos: startPos})
	case width < top:
		for len(l.indent) > 1 && l.indent[len(l.indent)-1] > width {
			l.indent = l.indent[:len(l.indent)-1]
			toks = append(toks, token.Token{Kind: token.Dedent, Pos: startPos})
		}
		if l.indent[len(l.indent)-1] != width {
			_, err := l.lexErr(startPos, "unindent does not match any outer indentation level")
			return nil, err
		}
	}
	return toks, nil
}

func (l *Lexer) skipLineComment() {
	for !l.atEnd() && l.peek() != '\n' {
		l.advance()
	}
}

// skipBlockComment consumes a non-nested /* ... */ comment. An unterminated
// block comment silently consumes to EOF (documented lexer quirk).
func (l *Lexer) skipBlockComment() {
	l.advance()
	l.advance()
	for !l.atEnd() {
		if l.peek() == '*' && l.peekAt(1) == '/' {
			l.advance()
			l.advance()
			return
		}
		if l.peek() == '\n' {
			l.advanceLine()
			continue
		}
		l.advance()
	}
}

func isDigit(r rune) bool { return r >= '0' && r <= '9' }
func isIdentStart(r rune) bool {
	return r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}
func isIdentCont(r rune) bool {
	return isIdentStart(r) || isDigit(r) || r == '$'
}

func (l *Lexer) lexNumber(start token.Pos) (token.Token, *cerr.Error) {
	begin := l.pos
	for !l.atEnd() && isDigit(l.peek()) {
		l.advance()
	}
	text := string(l.src[begin:l.pos])
	var v int64
	for _, c := range text {
		v = v*10 + int64(c-'0')
	}
	start.Len = l.pos - begin
	return token.Token{Kind: token.IntLit, IntValue: v, Pos: start}, nil
}

func (l *Lexer) lexIdentOrKeyword(start token.Pos) (token.Token, *cerr.Error) {
	begin := l.pos
	for !l.atEnd() && isIdentCont(l.peek()) {
		l.advance()
	}
	text := string(l.src[begin:l.pos])
	start.Len = l.pos - begin
	if kw, ok := token.Keywords[text]; ok {
		return token.Token{Kind: kw, StrValue: text, Pos: start}, nil
	}
	return token.Token{Kind: token.Ident, StrValue: text, Pos: start}, nil
}

func (l *Lexer) lexString(start token.Pos) (token.Token, *cerr.Error) {
	begin := l.pos
	l.advance() // opening quote
	var sb strings.Builder
	for {
		if l.atEnd() {
			return l.lexErr(start, "unterminated string literal")
		}
		c := l.peek()
		if c == '"' {
			l.advance()
			break
		}
		if c == '\n' {
			return l.lexErr(start, "unterminated string literal")
		}
		if c == '\\' {
			l.advance()
			if l.atEnd() {
				return l.lexErr(start, "unterminated string literal")
			}
			esc := l.advance()
			switch esc {
			case 'n':
				sb.WriteByte('\n')
			case 't':
				sb.WriteByte('\t')
			case 'r':
				sb.WriteByte('\r')
			case 'b':
				sb.WriteByte('\b')
			case '"':
				sb.WriteByte('"')
			case '\\':
				sb.WriteByte('\\')
			default:
				return l.lexErr(start, "unrecognized escape sequence '\\%c'", esc)
			}
			continue
		}
		sb.WriteRune(c)
		l.advance()
	}
	start.Len = l.pos - begin
	return token.Token{Kind: token.StringLit, StrValue: sb.String(), Pos: start}, nil
}

func (l *Lexer) lexOperator(start token.Pos) (token.Token, *cerr.Error) {
	c := l.advance()
	two := func(second rune, withSecond, withoutSecond token.Kind) (token.Token, *cerr.Error) {
		if l.peek() == second {
			l.advance()
			start.Len = 2
			return token.Token{Kind: withSecond, Pos: start}, nil
		}
		start.Len = 1
		return token.Token{Kind: withoutSecond, Pos: start}, nil
	}
	switch c {
	case '+':
		start.Len = 1
		return token.Token{Kind: token.Plus, Pos: start}, nil
	case '-':
		start.Len = 1
		return token.Token{Kind: token.Minus, Pos: start}, nil
	case '*':
		start.Len = 1
		return token.Token{Kind: token.Star, Pos: start}, nil
	case '/':
		start.Len = 1
		return token.Token{Kind: token.Slash, Pos: start}, nil
	case '=':
		return two('=', token.Eq, token.Assign)
	case '!':
		return two('=', token.Neq, token.Bang)
	case '<':
		return two('=', token.Lte, token.Lt)
	case '>':
		return two('=', token.Gte, token.Gt)
	case '(':
		start.Len = 1
		return token.Token{Kind: token.LParen, Pos: start}, nil
	case ')':
		start.Len = 1
		return token.Token{Kind: token.RParen, Pos: start}, nil
	case '{':
		start.Len = 1
		return token.Token{Kind: token.LBrace, Pos: start}, nil
	case '}':
		start.Len = 1
		return token.Token{Kind: token.RBrace, Pos: start}, nil
	case ':':
		start.Len = 1
		return token.Token{Kind: token.Colon, Pos: start}, nil
	case ',':
		start.Len = 1
		return token.Token{Kind: token.Comma, Pos: start}, nil
	case ';':
		start.Len = 1
		return token.Token{Kind: token.Semi, Pos: start}, nil
	default:
		return l.lexErr(start, "unexpected character %q", c)
	}
}

// All tokenizes src fully, returning the token slice terminated by exactly
// one EOF token, or the first lexical error encountered. tabWidth is
// forwarded to New.
func All(src string, tabWidth int) ([]token.Token, *cerr.Error) {
	l := New(src, tabWidth)
	var toks []token.Token
	for {
		tok, err := l.Next()
		if err != nil {
			return nil, err
		}
		toks = append(toks, tok)
		if tok.Kind == token.EOF {
			return toks, nil
		}
	}
}
