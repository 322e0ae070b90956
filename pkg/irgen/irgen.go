// Package irgen lowers a checked ast.Program into an ir.Program: every
// expression becomes a chain of three-address instructions feeding a
// temporary, every statement becomes zero or more basic blocks.
package irgen

import (
	"fmt"

	"github.com/mc-lang/mcc/pkg/ast"
	"github.com/mc-lang/mcc/pkg/cerr"
	"github.com/mc-lang/mcc/pkg/ir"
	"github.com/mc-lang/mcc/pkg/token"
)

// Generate lowers prog, which must already have passed sema.Check, into an
// ir.Program. The only failures possible at this stage are internal
// invariant violations, not user-facing source errors — those were all
// caught earlier — so a *cerr.Error here means a bug in an earlier
// stage, not a malformed program.
func Generate(prog *ast.Program) (*ir.Program, *cerr.Error) {
	out := &ir.Program{}
	for _, fn := range prog.Functions {
		irFn, err := generateFunction(fn)
		if err != nil {
			return nil, err
		}
		out.Functions = append(out.Functions, irFn)
	}
	return out, nil
}

type generator struct {
	tempCount  int
	labelCount int
	blocks     []*ir.BasicBlock
	cur        *ir.BasicBlock
}

func (g *generator) newTemp() ir.Operand {
	t := ir.TempOperand(g.tempCount)
	g.tempCount++
	return t
}

func (g *generator) newLabel(prefix string) string {
	n := g.labelCount
	g.labelCount++
	return fmt.Sprintf("%s_%d", prefix, n)
}

func (g *generator) startBlock(label string) *ir.BasicBlock {
	b := &ir.BasicBlock{Label: label}
	g.blocks = append(g.blocks, b)
	g.cur = b
	return b
}

func (g *generator) emit(ins ir.Instruction) { g.cur.Instructions = append(g.cur.Instructions, ins) }

func generateFunction(fn *ast.Function) (*ir.Function, *cerr.Error) {
	g := &generator{}
	g.startBlock(g.newLabel("entry"))

	params := make([]ir.Param, len(fn.Params))
	for i, p := range fn.Params {
		params[i] = ir.Param{Name: p.Name}
	}

	for _, stmt := range fn.Body {
		if err := g.generateStmt(stmt); err != nil {
			return nil, err
		}
	}

	rk := ir.ReturnValue
	if fn.ReturnType == ast.TypeVoid {
		rk = ir.ReturnVoid
		g.emit(ir.Instruction{Op: ir.OpReturn})
	}

	return &ir.Function{
		Name:       fn.Name,
		Params:     params,
		ReturnKind: rk,
		NumTemps:   g.tempCount,
		Blocks:     g.blocks,
	}, nil
}

func (g *generator) generateStmt(stmt ast.Stmt) *cerr.Error {
	switch s := stmt.(type) {
	case *ast.VarDecl:
		if s.Initializer == nil {
			return nil
		}
		val, err := g.generateExpr(s.Initializer)
		if err != nil {
			return err
		}
		g.emit(ir.Instruction{Op: ir.OpAssign, Result: ir.VarOperand(s.Name), HasResult: true, Operand1: val, HasOp1: true})
		return nil

	case *ast.Assign:
		val, err := g.generateExpr(s.Value)
		if err != nil {
			return err
		}
		g.emit(ir.Instruction{Op: ir.OpAssign, Result: ir.VarOperand(s.Name), HasResult: true, Operand1: val, HasOp1: true})
		return nil

	case *ast.Return:
		if s.Value == nil {
			g.emit(ir.Instruction{Op: ir.OpReturn})
			return nil
		}
		val, err := g.generateExpr(s.Value)
		if err != nil {
			return err
		}
		g.emit(ir.Instruction{Op: ir.OpReturn, Operand1: val, HasOp1: true})
		return nil

	case *ast.If:
		return g.generateIf(s)

	case *ast.While:
		return g.generateWhile(s)

	default:
		return internalErr(stmt.Position(), "irgen: unhandled statement kind")
	}
}

func (g *generator) generateIf(s *ast.If) *cerr.Error {
	cond, err := g.generateExpr(s.Cond)
	if err != nil {
		return err
	}

	thenLabel := g.newLabel("if_then")
	elseLabel := g.newLabel("if_else")
	endLabel := g.newLabel("if_end")

	g.emit(ir.Instruction{Op: ir.OpJumpIfNot, Operand1: cond, HasOp1: true, Operand2: ir.LabelOperand(elseLabel), HasOp2: true})

	g.startBlock(thenLabel)
	for _, stmt := range s.Then {
		if err := g.generateStmt(stmt); err != nil {
			return err
		}
	}
	g.emit(ir.Instruction{Op: ir.OpJump, Operand1: ir.LabelOperand(endLabel), HasOp1: true})

	g.startBlock(elseLabel)
	for _, stmt := range s.Else {
		if err := g.generateStmt(stmt); err != nil {
			return err
		}
	}
	g.emit(ir.Instruction{Op: ir.OpJump, Operand1: ir.LabelOperand(endLabel), HasOp1: true})

	g.startBlock(endLabel)
	return nil
}

func (g *generator) generateWhile(s *ast.While) *cerr.Error {
	condLabel := g.newLabel("while_cond")
	bodyLabel := g.newLabel("while_body")
	endLabel := g.newLabel("while_end")

	g.emit(ir.Instruction{Op: ir.OpJump, Operand1: ir.LabelOperand(condLabel), HasOp1: true})

	g.startBlock(condLabel)
	cond, err := g.generateExpr(s.Cond)
	if err != nil {
		return err
	}
	g.emit(ir.Instruction{Op: ir.OpJumpIfNot, Operand1: cond, HasOp1: true, Operand2: ir.LabelOperand(endLabel), HasOp2: true})

	g.startBlock(bodyLabel)
	for _, stmt := range s.Body {
		if err := g.generateStmt(stmt); err != nil {
			return err
		}
	}
	g.emit(ir.Instruction{Op: ir.OpJump, Operand1: ir.LabelOperand(condLabel), HasOp1: true})

	g.startBlock(endLabel)
	return nil
}

var binaryOpcodes = map[token.Kind]ir.Opcode{
	token.Plus:  ir.OpAdd,
	token.Minus: ir.OpSub,
	token.Star:  ir.OpMul,
	token.Slash: ir.OpDiv,
	token.Eq:    ir.OpEq,
	token.Neq:   ir.OpNeq,
	token.Lt:    ir.OpLt,
	token.Gt:    ir.OpGt,
	token.Lte:   ir.OpLe,
	token.Gte:   ir.OpGe,
}

func (g *generator) generateExpr(e ast.Expr) (ir.Operand, *cerr.Error) {
	switch n := e.(type) {
	case *ast.IntLiteral:
		t := g.newTemp()
		g.emit(ir.Instruction{Op: ir.OpAssign, Result: t, HasResult: true, Operand1: ir.ImmOperand(n.Value), HasOp1: true})
		return t, nil

	case *ast.StringLiteral:
		t := g.newTemp()
		g.emit(ir.Instruction{Op: ir.OpAssign, Result: t, HasResult: true, Operand1: ir.StrImmOperand(n.Value), HasOp1: true})
		return t, nil

	case *ast.Identifier:
		return ir.VarOperand(n.Name), nil

	case *ast.Unary:
		operand, err := g.generateExpr(n.Operand)
		if err != nil {
			return ir.Operand{}, err
		}
		op := ir.OpNeg
		if n.Op == token.Bang {
			op = ir.OpNot
		}
		result := g.newTemp()
		g.emit(ir.Instruction{Op: op, Result: result, HasResult: true, Operand1: operand, HasOp1: true})
		return result, nil

	case *ast.Binary:
		left, err := g.generateExpr(n.Left)
		if err != nil {
			return ir.Operand{}, err
		}
		right, err := g.generateExpr(n.Right)
		if err != nil {
			return ir.Operand{}, err
		}
		opcode, ok := binaryOpcodes[n.Op]
		if !ok {
			return ir.Operand{}, internalErr(n.Pos, "irgen: unhandled binary operator %s", n.Op)
		}
		result := g.newTemp()
		g.emit(ir.Instruction{Op: opcode, Result: result, HasResult: true, Operand1: left, HasOp1: true, Operand2: right, HasOp2: true})
		return result, nil

	default:
		return ir.Operand{}, internalErr(e.Position(), "irgen: unhandled expression kind")
	}
}

func internalErr(pos token.Pos, format string, args ...interface{}) *cerr.Error {
	return cerr.Errorf(cerr.StageIrGen, pos.Line, pos.Column, format, args...)
}
