// Package compiler wires the lexer, parser, semantic analyzer, IR
// generator, and code generator into a single Compile entry point. The
// uniform error type every stage fails with lives in pkg/cerr, not
// here, so those stages don't need to import the package that wires
// them together.
package compiler

import (
	"github.com/mc-lang/mcc/pkg/ast"
	"github.com/mc-lang/mcc/pkg/cerr"
	"github.com/mc-lang/mcc/pkg/codegen/amd64"
	"github.com/mc-lang/mcc/pkg/ir"
	"github.com/mc-lang/mcc/pkg/irgen"
	"github.com/mc-lang/mcc/pkg/lexer"
	"github.com/mc-lang/mcc/pkg/parser"
	"github.com/mc-lang/mcc/pkg/sema"
	"github.com/mc-lang/mcc/pkg/token"
)

// Options threads the handful of user-visible codegen policy choices
// through the whole pipeline. It mirrors amd64.Options rather than
// importing config directly, so this package stays independent of the
// CLI/config layer above it.
type Options struct {
	TabWidth           int
	MaxRegisterParams  int
	ErrorOnExtraParams bool
}

// Result holds every intermediate artifact the pipeline produced, so a
// caller that wants --dump-tokens/--dump-ast/--dump-ir can do so without
// re-running earlier stages.
type Result struct {
	Tokens []token.Token
	AST    *ast.Program
	IR     *ir.Program
	Asm    string
}

// Compile runs the full Lex -> Parse -> Semantic -> IrGen -> CodeGen
// pipeline over src, stopping at the first stage that fails. Whatever
// artifacts later stages never reached are left at their zero value in
// the returned Result, so --dump-tokens still works after a parse error.
func Compile(src string, opts Options) (*Result, *cerr.Error) {
	res := &Result{}

	toks, err := lexer.All(src, opts.TabWidth)
	if err != nil {
		return res, err
	}
	res.Tokens = toks

	prog, err := parser.Parse(toks)
	if err != nil {
		return res, err
	}
	res.AST = prog

	if err := sema.Check(prog); err != nil {
		return res, err
	}

	irProg, err := irgen.Generate(prog)
	if err != nil {
		return res, err
	}
	res.IR = irProg

	asm, err := amd64.Generate(irProg, amd64.Options{
		MaxRegisterParams:  opts.MaxRegisterParams,
		ErrorOnExtraParams: opts.ErrorOnExtraParams,
	})
	if err != nil {
		return res, err
	}
	res.Asm = asm

	return res, nil
}
