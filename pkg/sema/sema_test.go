package sema

import (
	"testing"

	"github.com/mc-lang/mcc/pkg/lexer"
	"github.com/mc-lang/mcc/pkg/parser"
)

func checkSrc(t *testing.T, src string) error {
	t.Helper()
	toks, lexErr := lexer.All(src, 4)
	if lexErr != nil {
		t.Fatalf("unexpected lex error: %v", lexErr)
	}
	prog, parseErr := parser.Parse(toks)
	if parseErr != nil {
		t.Fatalf("unexpected parse error: %v", parseErr)
	}
	if err := Check(prog); err != nil {
		return err
	}
	return nil
}

func TestCheckTwoFunctionsNoSharedScope(t *testing.T) {
	err := checkSrc(t, "int add(int a, int b) {\n    return a + b;\n}\n\nint main() {\n    int a = 1;\n    return a;\n}\n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCheckSimpleValidProgram(t *testing.T) {
	err := checkSrc(t, "int main() {\n    int x = 1;\n    return x;\n}\n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCheckUndefinedVariable(t *testing.T) {
	err := checkSrc(t, "int main() {\n    return y;\n}\n")
	if err == nil {
		t.Fatal("expected an undefined-variable error")
	}
}

func TestCheckDuplicateFunction(t *testing.T) {
	err := checkSrc(t, "int f() {\n    return 0;\n}\n\nint f() {\n    return 1;\n}\n")
	if err == nil {
		t.Fatal("expected a duplicate-function error")
	}
}

func TestCheckDuplicateParam(t *testing.T) {
	err := checkSrc(t, "int f(int a, int a) {\n    return a;\n}\n")
	if err == nil {
		t.Fatal("expected a duplicate-parameter error")
	}
}

func TestCheckVoidVariableRejected(t *testing.T) {
	err := checkSrc(t, "void f() {\n    void x;\n}\n")
	if err == nil {
		t.Fatal("expected a void-variable error")
	}
}

func TestCheckTypeMismatchOnAssign(t *testing.T) {
	err := checkSrc(t, "void f() {\n    int x = 1;\n    x = \"oops\";\n}\n")
	if err == nil {
		t.Fatal("expected a type-mismatch error")
	}
}

func TestCheckVoidFunctionCannotReturnValue(t *testing.T) {
	err := checkSrc(t, "void f() {\n    return 1;\n}\n")
	if err == nil {
		t.Fatal("expected a void-return error")
	}
}

func TestCheckIntFunctionMustReturnValue(t *testing.T) {
	err := checkSrc(t, "int f() {\n    return;\n}\n")
	if err == nil {
		t.Fatal("expected a missing-return-value error")
	}
}

func TestCheckConditionMustBeInt(t *testing.T) {
	err := checkSrc(t, "void f() {\n    string s = \"x\";\n    if s {\n        return;\n    }\n}\n")
	if err == nil {
		t.Fatal("expected a condition-must-be-int error")
	}
}

func TestCheckRedeclarationInSameScope(t *testing.T) {
	err := checkSrc(t, "void f() {\n    int x = 1;\n    int x = 2;\n}\n")
	if err == nil {
		t.Fatal("expected a redeclaration error")
	}
}

func TestCheckShadowingAcrossScopesAllowed(t *testing.T) {
	err := checkSrc(t, "void f() {\n    int x = 1;\n    if x > 0 {\n        int x = 2;\n    }\n}\n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
