package lexer

import (
	"testing"

	"github.com/mc-lang/mcc/pkg/token"
)

func kinds(t *testing.T, src string) []token.Kind {
	t.Helper()
	toks, err := All(src, 4)
	if err != nil {
		t.Fatalf("unexpected lex error: %v", err)
	}
	var ks []token.Kind
	for _, tok := range toks {
		ks = append(ks, tok.Kind)
	}
	return ks
}

func TestLexSimpleFunction(t *testing.T) {
	src := "int main() {\n    return 0;\n}\n"
	toks, err := All(src, 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []token.Kind{
		token.Int, token.Ident, token.LParen, token.RParen, token.LBrace, token.Newline,
		token.Indent, token.Return, token.IntLit, token.Semi, token.Newline,
		token.Dedent, token.RBrace, token.Newline, token.EOF,
	}
	if len(toks) != len(want) {
		t.Fatalf("got %d tokens, want %d: %v", len(toks), len(want), toks)
	}
	for i, tok := range toks {
		if tok.Kind != want[i] {
			t.Errorf("token %d: got %s, want %s", i, tok.Kind, want[i])
		}
	}
}

func TestLexStringEscapes(t *testing.T) {
	toks, err := All(`"a\nb\tc\"d"`, 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if toks[0].Kind != token.StringLit {
		t.Fatalf("got kind %s, want StringLit", toks[0].Kind)
	}
	want := "a\nb\tc\"d"
	if toks[0].StrValue != want {
		t.Errorf("got %q, want %q", toks[0].StrValue, want)
	}
}

func TestLexUnterminatedString(t *testing.T) {
	_, err := All(`"unterminated`, 4)
	if err == nil {
		t.Fatal("expected an error")
	}
}

func TestLexIndentation(t *testing.T) {
	src := "int f() {\nif x {\n    return 1;\n}\n}\n"
	ks := kinds(t, src)
	sawIndent, sawDedent := false, false
	for _, k := range ks {
		if k == token.Indent {
			sawIndent = true
		}
		if k == token.Dedent {
			sawDedent = true
		}
	}
	if !sawIndent || !sawDedent {
		t.Errorf("expected both INDENT and DEDENT, got %v", ks)
	}
}

func TestLexMixedTabsAndSpacesError(t *testing.T) {
	_, err := All("int f() {\n \tint x = 1;\n}\n", 4)
	if err == nil {
		t.Fatal("expected a mixed tabs/spaces error")
	}
}

func TestLexUnterminatedBlockCommentConsumesToEOF(t *testing.T) {
	toks, err := All("int x = 1; /* never closed", 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if toks[len(toks)-1].Kind != token.EOF {
		t.Fatalf("expected trailing EOF, got %v", toks)
	}
}

func TestLexTabWidthConfigurable(t *testing.T) {
	src := "a\n b\n\tc\n"

	count := func(ks []token.Kind, k token.Kind) int {
		n := 0
		for _, tk := range ks {
			if tk == k {
				n++
			}
		}
		return n
	}

	toks1, err := All(src, 1)
	if err != nil {
		t.Fatalf("tabWidth 1: unexpected error: %v", err)
	}
	var ks1 []token.Kind
	for _, tok := range toks1 {
		ks1 = append(ks1, tok.Kind)
	}
	if n := count(ks1, token.Indent); n != 1 {
		t.Errorf("tabWidth 1: got %d INDENT tokens, want 1 (tab same width as the single leading space)", n)
	}

	toks4, err := All(src, 4)
	if err != nil {
		t.Fatalf("tabWidth 4: unexpected error: %v", err)
	}
	var ks4 []token.Kind
	for _, tok := range toks4 {
		ks4 = append(ks4, tok.Kind)
	}
	if n := count(ks4, token.Indent); n != 2 {
		t.Errorf("tabWidth 4: got %d INDENT tokens, want 2 (tab wider than the single leading space)", n)
	}
}

func TestLexOperators(t *testing.T) {
	ks := kinds(t, "== != <= >= < > ! = + - * /")
	want := []token.Kind{
		token.Eq, token.Neq, token.Lte, token.Gte, token.Lt, token.Gt,
		token.Bang, token.Assign, token.Plus, token.Minus, token.Star, token.Slash, token.EOF,
	}
	if len(ks) != len(want) {
		t.Fatalf("got %v, want %v", ks, want)
	}
	for i := range want {
		if ks[i] != want[i] {
			t.Errorf("operand %d: got %s, want %s", i, ks[i], want[i])
		}
	}
}
