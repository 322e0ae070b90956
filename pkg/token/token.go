// Package token defines the lexical token kinds MC's lexer produces and the
// Token value itself.
package token

import "fmt"

// Kind identifies what a Token represents. The set is closed: every
// reimplementation of the lexer, parser, or diagnostics must switch
// exhaustively over these values.
type Kind int

const (
	EOF Kind = iota

	Ident
	IntLit
	StringLit

	// Keywords
	Int
	Void
	StringKw
	If
	Else
	While
	Return

	// Operators
	Plus
	Minus
	Star
	Slash
	Assign
	Eq
	Neq
	Lt
	Gt
	Lte
	Gte
	Bang

	// Punctuation
	LParen
	RParen
	LBrace
	RBrace
	Colon
	Comma
	Semi

	// Layout
	Newline
	Indent
	Dedent
)

var kindNames = map[Kind]string{
	EOF:       "EOF",
	Ident:     "IDENT",
	IntLit:    "INT_LIT",
	StringLit: "STR_LIT",
	Int:       "int",
	Void:      "void",
	StringKw:  "string",
	If:        "if",
	Else:      "else",
	While:     "while",
	Return:    "return",
	Plus:      "+",
	Minus:     "-",
	Star:      "*",
	Slash:     "/",
	Assign:    "=",
	Eq:        "==",
	Neq:       "!=",
	Lt:        "<",
	Gt:        ">",
	Lte:       "<=",
	Gte:       ">=",
	Bang:      "!",
	LParen:    "(",
	RParen:    ")",
	LBrace:    "{",
	RBrace:    "}",
	Colon:     ":",
	Comma:     ",",
	Semi:      ";",
	Newline:   "NEWLINE",
	Indent:    "INDENT",
	Dedent:    "DEDENT",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("kind_%d", int(k))
}

// Keywords maps a lexeme to its keyword Kind. Identifiers that don't match
// any entry lex as Ident.
var Keywords = map[string]Kind{
	"int":    Int,
	"void":   Void,
	"string": StringKw,
	"if":     If,
	"else":   Else,
	"while":  While,
	"return": Return,
}

// Pos is a 1-based source position: the line and column of the first
// character of a lexeme, plus how many characters the lexeme spans.
type Pos struct {
	Line   int
	Column int
	Len    int
}

func (p Pos) String() string { return fmt.Sprintf("%d:%d", p.Line, p.Column) }

// Token is an immutable lexical token: a kind, an optional payload, and the
// source position of its first character.
//
// IntValue is populated only for IntLit; StrValue is populated for Ident,
// keyword tokens (storing the lexeme), and StringLit (storing the decoded
// value). Both are the zero value otherwise.
type Token struct {
	Kind     Kind
	IntValue int64
	StrValue string
	Pos      Pos
}

func (t Token) String() string {
	switch t.Kind {
	case IntLit:
		return fmt.Sprintf("%s(%d)", t.Kind, t.IntValue)
	case Ident, StringLit:
		return fmt.Sprintf("%s(%q)", t.Kind, t.StrValue)
	default:
		return t.Kind.String()
	}
}
