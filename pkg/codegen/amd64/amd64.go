// Package amd64 lowers an ir.Program into NASM-syntax x86-64 assembly
// text: one stack frame per function, no register allocator, every
// temporary and local pinned to a deterministic stack slot.
package amd64

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mc-lang/mcc/pkg/cerr"
	"github.com/mc-lang/mcc/pkg/ir"
)

// sysVArgRegs is the System V AMD64 argument-passing register order for
// the first six integer/pointer parameters.
var sysVArgRegs = []string{"rdi", "rsi", "rdx", "rcx", "r8", "r9"}

// Options configures the one deliberately user-visible codegen policy
// choice: what to do with a function declaring more parameters than fit
// in registers.
type Options struct {
	MaxRegisterParams int  // 0 means use the System V default of 6
	ErrorOnExtraParams bool // false reproduces the silent-truncation quirk
}

func (o Options) maxParams() int {
	if o.MaxRegisterParams > 0 {
		return o.MaxRegisterParams
	}
	return 6
}

// Generate lowers prog into a complete NASM source text, including the
// _start trampoline that calls main and exits with its return value.
func Generate(prog *ir.Program, opts Options) (string, *cerr.Error) {
	g := &generator{opts: opts}
	g.w.WriteString("section .data\n\n")
	g.w.WriteString("section .text\n")
	g.w.WriteString("global _start\n\n")
	g.w.WriteString("_start:\n")
	g.w.WriteString("    call main\n")
	g.w.WriteString("    mov rdi, rax\n")
	g.w.WriteString("    mov rax, 60\n")
	g.w.WriteString("    syscall\n\n")

	for _, fn := range prog.Functions {
		if err := g.emitFunction(fn); err != nil {
			return "", err
		}
	}
	return g.w.String(), nil
}

type generator struct {
	w    strings.Builder
	opts Options
}

// frame maps every Var name, Temp index, and string-immediate payload a
// function references to a fixed, negative byte offset from rbp,
// assigned in two bands: params in declaration order, then every local,
// temporary, and string payload merged into one set and sorted by name
// ascending ("t0" < "t10" < "t2" < "x"). This two-pass scheme (collect,
// then assign) is what makes codegen output deterministic independent
// of map iteration order anywhere upstream.
type frame struct {
	slot map[string]int
	size int
}

func tempName(i int) string { return fmt.Sprintf("t%d", i) }

func buildFrame(fn *ir.Function) *frame {
	paramNames := make(map[string]bool, len(fn.Params))
	for _, p := range fn.Params {
		paramNames[p.Name] = true
	}

	localSet := map[string]bool{}
	record := func(op ir.Operand) {
		switch op.Kind {
		case ir.Var, ir.StrImmediate:
			if !paramNames[op.Name] {
				localSet[op.Name] = true
			}
		case ir.Temp:
			localSet[tempName(op.Index)] = true
		}
	}
	for _, b := range fn.Blocks {
		for _, ins := range b.Instructions {
			record(ins.Operand1)
			record(ins.Operand2)
			if ins.HasResult {
				record(ins.Result)
			}
		}
	}
	for i := 0; i < fn.NumTemps; i++ {
		localSet[tempName(i)] = true
	}

	locals := make([]string, 0, len(localSet))
	for name := range localSet {
		locals = append(locals, name)
	}
	sort.Strings(locals)

	fr := &frame{slot: map[string]int{}}
	slot := 0
	nextSlot := func() int {
		slot++
		return -(slot * 8)
	}
	for _, p := range fn.Params {
		fr.slot[p.Name] = nextSlot()
	}
	for _, name := range locals {
		fr.slot[name] = nextSlot()
	}

	size := slot * 8
	if size%16 != 0 {
		size += 16 - size%16
	}
	fr.size = size
	return fr
}

func (fr *frame) loc(op ir.Operand) string {
	switch op.Kind {
	case ir.Immediate:
		return fmt.Sprintf("%d", op.IntValue)
	case ir.Var, ir.StrImmediate:
		return fmt.Sprintf("[rbp-%d]", -fr.slot[op.Name])
	case ir.Temp:
		return fmt.Sprintf("[rbp-%d]", -fr.slot[tempName(op.Index)])
	default:
		return "?"
	}
}

func (g *generator) emitFunction(fn *ir.Function) *cerr.Error {
	if len(fn.Params) > g.opts.maxParams() {
		if g.opts.ErrorOnExtraParams {
			return cerr.Errorf(cerr.StageCodeGen, 0, 0,
				"function '%s' declares %d parameters, more than the %d supported by the register calling convention",
				fn.Name, len(fn.Params), g.opts.maxParams())
		}
		fn = &ir.Function{
			Name:       fn.Name,
			Params:     fn.Params[:g.opts.maxParams()],
			ReturnKind: fn.ReturnKind,
			NumTemps:   fn.NumTemps,
			Blocks:     fn.Blocks,
		}
	}

	fr := buildFrame(fn)

	g.w.WriteString(fmt.Sprintf("global %s\n", fn.Name))
	g.w.WriteString(fmt.Sprintf("%s:\n", fn.Name))
	g.w.WriteString("    push rbp\n")
	g.w.WriteString("    mov rbp, rsp\n")
	if fr.size > 0 {
		g.w.WriteString(fmt.Sprintf("    sub rsp, %d\n", fr.size))
	}
	for i, p := range fn.Params {
		g.w.WriteString(fmt.Sprintf("    mov [rbp-%d], %s\n", -fr.slot[p.Name], sysVArgRegs[i]))
	}

	for _, b := range fn.Blocks {
		g.w.WriteString(fmt.Sprintf("%s:\n", b.Label))
		for _, ins := range b.Instructions {
			if err := g.emitInstruction(fn, fr, ins); err != nil {
				return err
			}
		}
	}

	g.w.WriteString(fmt.Sprintf("%s_epilogue:\n", fn.Name))
	g.w.WriteString("    leave\n")
	g.w.WriteString("    ret\n\n")
	return nil
}

func (g *generator) emitInstruction(fn *ir.Function, fr *frame, ins ir.Instruction) *cerr.Error {
	switch ins.Op {
	case ir.OpAdd, ir.OpSub, ir.OpMul:
		g.emitArith(fr, ins)
	case ir.OpDiv:
		g.emitDiv(fr, ins)
	case ir.OpEq, ir.OpNeq, ir.OpLt, ir.OpGt, ir.OpLe, ir.OpGe:
		g.emitCompare(fr, ins)
	case ir.OpNeg:
		g.w.WriteString(fmt.Sprintf("    mov rax, %s\n", fr.loc(ins.Operand1)))
		g.w.WriteString("    neg rax\n")
		g.w.WriteString(fmt.Sprintf("    mov %s, rax\n", fr.loc(ins.Result)))
	case ir.OpNot:
		g.w.WriteString(fmt.Sprintf("    mov rax, %s\n", fr.loc(ins.Operand1)))
		g.w.WriteString("    test rax, rax\n")
		g.w.WriteString("    sete al\n")
		g.w.WriteString("    movzx rax, al\n")
		g.w.WriteString(fmt.Sprintf("    mov %s, rax\n", fr.loc(ins.Result)))
	case ir.OpAssign:
		if ins.Operand1.Kind == ir.Immediate {
			g.w.WriteString(fmt.Sprintf("    mov qword %s, %s\n", fr.loc(ins.Result), fr.loc(ins.Operand1)))
		} else {
			g.w.WriteString(fmt.Sprintf("    mov rax, %s\n", fr.loc(ins.Operand1)))
			g.w.WriteString(fmt.Sprintf("    mov %s, rax\n", fr.loc(ins.Result)))
		}
	case ir.OpJump:
		g.w.WriteString(fmt.Sprintf("    jmp %s\n", ins.Operand1.Name))
	case ir.OpJumpIf:
		g.w.WriteString(fmt.Sprintf("    mov rax, %s\n", fr.loc(ins.Operand1)))
		g.w.WriteString("    test rax, rax\n")
		g.w.WriteString(fmt.Sprintf("    jnz %s\n", ins.Operand2.Name))
	case ir.OpJumpIfNot:
		g.w.WriteString(fmt.Sprintf("    mov rax, %s\n", fr.loc(ins.Operand1)))
		g.w.WriteString("    test rax, rax\n")
		g.w.WriteString(fmt.Sprintf("    jz %s\n", ins.Operand2.Name))
	case ir.OpReturn:
		if ins.HasOp1 {
			g.w.WriteString(fmt.Sprintf("    mov rax, %s\n", fr.loc(ins.Operand1)))
		}
		g.w.WriteString(fmt.Sprintf("    jmp %s_epilogue\n", fn.Name))
	default:
		return cerr.Errorf(cerr.StageCodeGen, 0, 0, "codegen: unhandled opcode %s", ins.Op)
	}
	return nil
}

var arithMnemonic = map[ir.Opcode]string{ir.OpAdd: "add", ir.OpSub: "sub"}

func (g *generator) emitArith(fr *frame, ins ir.Instruction) {
	g.w.WriteString(fmt.Sprintf("    mov rax, %s\n", fr.loc(ins.Operand1)))
	if ins.Op == ir.OpMul {
		g.w.WriteString(fmt.Sprintf("    mov rcx, %s\n", fr.loc(ins.Operand2)))
		g.w.WriteString("    imul rax, rcx\n")
	} else {
		g.w.WriteString(fmt.Sprintf("    %s rax, %s\n", arithMnemonic[ins.Op], fr.loc(ins.Operand2)))
	}
	g.w.WriteString(fmt.Sprintf("    mov %s, rax\n", fr.loc(ins.Result)))
}

func (g *generator) emitDiv(fr *frame, ins ir.Instruction) {
	g.w.WriteString(fmt.Sprintf("    mov rax, %s\n", fr.loc(ins.Operand1)))
	g.w.WriteString("    cqo\n")
	g.w.WriteString(fmt.Sprintf("    mov rcx, %s\n", fr.loc(ins.Operand2)))
	g.w.WriteString("    idiv rcx\n")
	g.w.WriteString(fmt.Sprintf("    mov %s, rax\n", fr.loc(ins.Result)))
}

var setccMnemonic = map[ir.Opcode]string{
	ir.OpEq: "sete", ir.OpNeq: "setne",
	ir.OpLt: "setl", ir.OpGt: "setg",
	ir.OpLe: "setle", ir.OpGe: "setge",
}

func (g *generator) emitCompare(fr *frame, ins ir.Instruction) {
	g.w.WriteString(fmt.Sprintf("    mov rax, %s\n", fr.loc(ins.Operand1)))
	g.w.WriteString(fmt.Sprintf("    mov rcx, %s\n", fr.loc(ins.Operand2)))
	g.w.WriteString("    cmp rax, rcx\n")
	g.w.WriteString(fmt.Sprintf("    %s al\n", setccMnemonic[ins.Op]))
	g.w.WriteString("    movzx rax, al\n")
	g.w.WriteString(fmt.Sprintf("    mov %s, rax\n", fr.loc(ins.Result)))
}
