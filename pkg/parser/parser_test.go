package parser

import (
	"testing"

	"github.com/mc-lang/mcc/pkg/ast"
	"github.com/mc-lang/mcc/pkg/lexer"
)

func parseSrc(t *testing.T, src string) *ast.Program {
	t.Helper()
	toks, lexErr := lexer.All(src, 4)
	if lexErr != nil {
		t.Fatalf("unexpected lex error: %v", lexErr)
	}
	prog, err := Parse(toks)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	return prog
}

func TestParseSimpleFunction(t *testing.T) {
	prog := parseSrc(t, "int main() {\n    return 0;\n}\n")
	if len(prog.Functions) != 1 {
		t.Fatalf("got %d functions, want 1", len(prog.Functions))
	}
	fn := prog.Functions[0]
	if fn.Name != "main" || fn.ReturnType != ast.TypeInt {
		t.Errorf("got %+v", fn)
	}
	if len(fn.Body) != 1 {
		t.Fatalf("got %d statements, want 1", len(fn.Body))
	}
	ret, ok := fn.Body[0].(*ast.Return)
	if !ok {
		t.Fatalf("got %T, want *ast.Return", fn.Body[0])
	}
	lit, ok := ret.Value.(*ast.IntLiteral)
	if !ok || lit.Value != 0 {
		t.Errorf("got %+v", ret.Value)
	}
}

func TestParseParams(t *testing.T) {
	prog := parseSrc(t, "int add(int a, int b) {\n    return a + b;\n}\n")
	fn := prog.Functions[0]
	if len(fn.Params) != 2 || fn.Params[0].Name != "a" || fn.Params[1].Name != "b" {
		t.Fatalf("got params %+v", fn.Params)
	}
}

func TestParseIfElseWithoutParens(t *testing.T) {
	prog := parseSrc(t, "int f() {\n    if x > 0 {\n        return 1;\n    } else {\n        return 0;\n    }\n}\n")
	fn := prog.Functions[0]
	ifStmt, ok := fn.Body[0].(*ast.If)
	if !ok {
		t.Fatalf("got %T, want *ast.If", fn.Body[0])
	}
	if len(ifStmt.Then) != 1 || len(ifStmt.Else) != 1 {
		t.Errorf("got then=%d else=%d", len(ifStmt.Then), len(ifStmt.Else))
	}
}

func TestParseIfWithParens(t *testing.T) {
	prog := parseSrc(t, "int f() {\n    if (x > 0) {\n        return 1;\n    }\n}\n")
	fn := prog.Functions[0]
	if _, ok := fn.Body[0].(*ast.If); !ok {
		t.Fatalf("got %T, want *ast.If", fn.Body[0])
	}
}

func TestParseWhile(t *testing.T) {
	prog := parseSrc(t, "void f() {\n    int i = 0;\n    while i < 10 {\n        i = i + 1;\n    }\n}\n")
	fn := prog.Functions[0]
	if len(fn.Body) != 2 {
		t.Fatalf("got %d statements, want 2", len(fn.Body))
	}
	while, ok := fn.Body[1].(*ast.While)
	if !ok {
		t.Fatalf("got %T, want *ast.While", fn.Body[1])
	}
	if len(while.Body) != 1 {
		t.Errorf("got body len %d", len(while.Body))
	}
}

func TestParseOperatorPrecedence(t *testing.T) {
	prog := parseSrc(t, "int f() {\n    return 1 + 2 * 3;\n}\n")
	ret := prog.Functions[0].Body[0].(*ast.Return)
	bin, ok := ret.Value.(*ast.Binary)
	if !ok {
		t.Fatalf("got %T, want *ast.Binary", ret.Value)
	}
	if bin.Op.String() != "+" {
		t.Fatalf("got top-level op %s, want +", bin.Op)
	}
	rhs, ok := bin.Right.(*ast.Binary)
	if !ok || rhs.Op.String() != "*" {
		t.Fatalf("got rhs %+v, want a '*' binary", bin.Right)
	}
}

func TestParseUnaryBindsTighterThanBinary(t *testing.T) {
	prog := parseSrc(t, "int f() {\n    return -1 + 2;\n}\n")
	ret := prog.Functions[0].Body[0].(*ast.Return)
	bin, ok := ret.Value.(*ast.Binary)
	if !ok {
		t.Fatalf("got %T, want *ast.Binary", ret.Value)
	}
	if _, ok := bin.Left.(*ast.Unary); !ok {
		t.Errorf("got left %T, want *ast.Unary", bin.Left)
	}
}

func TestParseMissingSemicolonFails(t *testing.T) {
	toks, err := lexer.All("int f() {\n    return 0\n}\n", 4)
	if err != nil {
		t.Fatalf("unexpected lex error: %v", err)
	}
	if _, parseErr := Parse(toks); parseErr == nil {
		t.Fatal("expected a parse error for a missing semicolon")
	}
}

func TestParseVarDeclWithInitializer(t *testing.T) {
	prog := parseSrc(t, "void f() {\n    string s = \"hi\";\n}\n")
	decl, ok := prog.Functions[0].Body[0].(*ast.VarDecl)
	if !ok {
		t.Fatalf("got %T, want *ast.VarDecl", prog.Functions[0].Body[0])
	}
	if decl.Type != ast.TypeString || decl.Name != "s" {
		t.Errorf("got %+v", decl)
	}
	lit, ok := decl.Initializer.(*ast.StringLiteral)
	if !ok || lit.Value != "hi" {
		t.Errorf("got initializer %+v", decl.Initializer)
	}
}
