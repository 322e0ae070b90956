package irgen

import (
	"testing"

	"github.com/mc-lang/mcc/pkg/ir"
	"github.com/mc-lang/mcc/pkg/lexer"
	"github.com/mc-lang/mcc/pkg/parser"
	"github.com/mc-lang/mcc/pkg/sema"
)

func genSrc(t *testing.T, src string) *ir.Program {
	t.Helper()
	toks, lexErr := lexer.All(src, 4)
	if lexErr != nil {
		t.Fatalf("unexpected lex error: %v", lexErr)
	}
	prog, parseErr := parser.Parse(toks)
	if parseErr != nil {
		t.Fatalf("unexpected parse error: %v", parseErr)
	}
	if err := sema.Check(prog); err != nil {
		t.Fatalf("unexpected semantic error: %v", err)
	}
	irProg, genErr := Generate(prog)
	if genErr != nil {
		t.Fatalf("unexpected irgen error: %v", genErr)
	}
	return irProg
}

func blockLabels(p *ir.Program, fnName string) []string {
	for _, fn := range p.Functions {
		if fn.Name != fnName {
			continue
		}
		labels := make([]string, len(fn.Blocks))
		for i, b := range fn.Blocks {
			labels[i] = b.Label
		}
		return labels
	}
	return nil
}

func instructionStrings(p *ir.Program, fnName, blockLabel string) []string {
	for _, fn := range p.Functions {
		if fn.Name != fnName {
			continue
		}
		for _, b := range fn.Blocks {
			if b.Label != blockLabel {
				continue
			}
			out := make([]string, len(b.Instructions))
			for i, ins := range b.Instructions {
				out[i] = ins.String()
			}
			return out
		}
	}
	return nil
}

func TestGenerateArithmeticIntoTemps(t *testing.T) {
	prog := genSrc(t, "int f() {\n    return 1 + 2 * 3;\n}\n")
	got := instructionStrings(prog, "f", "entry_0")
	want := []string{
		"t0 = 1",
		"t1 = 2",
		"t2 = 3",
		"t3 = mul t1, t2",
		"t4 = add t0, t3",
		"return t4",
	}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("instruction %d: got %q, want %q", i, got[i], want[i])
		}
	}
}

func TestGenerateVarDeclAndAssign(t *testing.T) {
	prog := genSrc(t, "void f() {\n    int x = 1;\n    x = x + 1;\n}\n")
	got := instructionStrings(prog, "f", "entry_0")
	want := []string{
		"t0 = 1",
		"x = t0",
		"t1 = 1",
		"t2 = add x, t1",
		"x = t2",
		"return",
	}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("instruction %d: got %q, want %q", i, got[i], want[i])
		}
	}
}

func TestGenerateStringLiteralAllocatesTemp(t *testing.T) {
	prog := genSrc(t, "void f() {\n    string s = \"x\";\n}\n")
	got := instructionStrings(prog, "f", "entry_0")
	want := []string{
		`t0 = "x"`,
		"s = t0",
		"return",
	}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("instruction %d: got %q, want %q", i, got[i], want[i])
		}
	}
}

func TestGenerateIfElseBlockStructure(t *testing.T) {
	prog := genSrc(t, "void f() {\n    if 1 > 0 {\n        int a = 1;\n    } else {\n        int b = 2;\n    }\n}\n")
	labels := blockLabels(prog, "f")
	want := []string{"entry_0", "if_then_1", "if_else_2", "if_end_3"}
	if len(labels) != len(want) {
		t.Fatalf("got %v, want %v", labels, want)
	}
	for i := range want {
		if labels[i] != want[i] {
			t.Errorf("block %d: got %q, want %q", i, labels[i], want[i])
		}
	}

	entry := instructionStrings(prog, "f", "entry_0")
	wantEntry := []string{
		"t0 = 1",
		"t1 = 0",
		"t2 = gt t0, t1",
		"jumpifnot t2, if_else_2",
	}
	if len(entry) != len(wantEntry) {
		t.Fatalf("got %v, want %v", entry, wantEntry)
	}
	for i := range wantEntry {
		if entry[i] != wantEntry[i] {
			t.Errorf("entry instruction %d: got %q, want %q", i, entry[i], wantEntry[i])
		}
	}

	then := instructionStrings(prog, "f", "if_then_1")
	wantThen := []string{"t3 = 1", "a = t3", "jump if_end_3"}
	if len(then) != len(wantThen) {
		t.Fatalf("got %v, want %v", then, wantThen)
	}
	for i := range wantThen {
		if then[i] != wantThen[i] {
			t.Errorf("then instruction %d: got %q, want %q", i, then[i], wantThen[i])
		}
	}
}

func TestGenerateWhileBlockStructure(t *testing.T) {
	prog := genSrc(t, "void f() {\n    int i = 0;\n    while i < 10 {\n        i = i + 1;\n    }\n}\n")
	labels := blockLabels(prog, "f")
	want := []string{"entry_0", "while_cond_1", "while_body_2", "while_end_3"}
	if len(labels) != len(want) {
		t.Fatalf("got %v, want %v", labels, want)
	}
	for i := range want {
		if labels[i] != want[i] {
			t.Errorf("block %d: got %q, want %q", i, labels[i], want[i])
		}
	}

	cond := instructionStrings(prog, "f", "while_cond_1")
	wantCond := []string{
		"t1 = 10",
		"t2 = lt i, t1",
		"jumpifnot t2, while_end_3",
	}
	if len(cond) != len(wantCond) {
		t.Fatalf("got %v, want %v", cond, wantCond)
	}
	for i := range wantCond {
		if cond[i] != wantCond[i] {
			t.Errorf("cond instruction %d: got %q, want %q", i, cond[i], wantCond[i])
		}
	}

	body := instructionStrings(prog, "f", "while_body_2")
	wantBody := []string{
		"t3 = 1",
		"t4 = add i, t3",
		"i = t4",
		"jump while_cond_1",
	}
	if len(body) != len(wantBody) {
		t.Fatalf("got %v, want %v", body, wantBody)
	}
	for i := range wantBody {
		if body[i] != wantBody[i] {
			t.Errorf("body instruction %d: got %q, want %q", i, body[i], wantBody[i])
		}
	}
}

func TestGenerateImplicitVoidReturn(t *testing.T) {
	prog := genSrc(t, "void f() {\n    int x = 1;\n}\n")
	got := instructionStrings(prog, "f", "entry_0")
	want := []string{"t0 = 1", "x = t0", "return"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("instruction %d: got %q, want %q", i, got[i], want[i])
		}
	}
}

func TestGenerateParamsRecorded(t *testing.T) {
	prog := genSrc(t, "int add(int a, int b) {\n    return a + b;\n}\n")
	fn := prog.Functions[0]
	if len(fn.Params) != 2 || fn.Params[0].Name != "a" || fn.Params[1].Name != "b" {
		t.Fatalf("got params %+v", fn.Params)
	}
}
