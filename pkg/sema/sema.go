// Package sema checks a parsed Program for scope, type, and signature
// errors before IR generation ever sees it. It does not rewrite the AST;
// a Program that comes back from Check is the same Program, now known
// well-typed.
package sema

import (
	"github.com/mc-lang/mcc/pkg/ast"
	"github.com/mc-lang/mcc/pkg/cerr"
	"github.com/mc-lang/mcc/pkg/token"
)

// scope is one lexical level: a flat map of locally declared names to
// their declared type. A scope stack (rather than the teacher's symbol
// linked-list) makes enter/exit an append/truncate on a slice.
type scope map[string]ast.Type

// Analyzer walks a Program once, maintaining the function table and a
// scope stack.
type Analyzer struct {
	funcs       map[string]*ast.Function
	scopes      []scope
	currentFunc *ast.Function
}

// Check runs full semantic analysis over prog, returning the first error
// found, or nil if prog is well-formed.
func Check(prog *ast.Program) *cerr.Error {
	a := &Analyzer{funcs: make(map[string]*ast.Function)}
	if err := a.collectFunctions(prog); err != nil {
		return err
	}
	for _, fn := range prog.Functions {
		if err := a.checkFunction(fn); err != nil {
			return err
		}
	}
	return nil
}

func (a *Analyzer) collectFunctions(prog *ast.Program) *cerr.Error {
	for _, fn := range prog.Functions {
		if _, ok := a.funcs[fn.Name]; ok {
			return errAt(fn.Pos, "duplicate function '%s'", fn.Name)
		}
		a.funcs[fn.Name] = fn
	}
	return nil
}

func (a *Analyzer) pushScope() { a.scopes = append(a.scopes, scope{}) }
func (a *Analyzer) popScope()  { a.scopes = a.scopes[:len(a.scopes)-1] }

func (a *Analyzer) declare(name string, typ ast.Type) bool {
	top := a.scopes[len(a.scopes)-1]
	if _, ok := top[name]; ok {
		return false
	}
	top[name] = typ
	return true
}

func (a *Analyzer) lookup(name string) (ast.Type, bool) {
	for i := len(a.scopes) - 1; i >= 0; i-- {
		if t, ok := a.scopes[i][name]; ok {
			return t, true
		}
	}
	return 0, false
}

func (a *Analyzer) checkFunction(fn *ast.Function) *cerr.Error {
	a.currentFunc = fn
	a.pushScope()
	defer a.popScope()

	seen := map[string]bool{}
	for _, p := range fn.Params {
		if seen[p.Name] {
			return errAt(p.Pos, "duplicate parameter '%s' in function '%s'", p.Name, fn.Name)
		}
		seen[p.Name] = true
		if p.Type == ast.TypeVoid {
			return errAt(p.Pos, "parameter '%s' cannot have type void", p.Name)
		}
		a.declare(p.Name, p.Type)
	}

	for _, stmt := range fn.Body {
		if err := a.checkStmt(stmt); err != nil {
			return err
		}
	}
	return nil
}

func (a *Analyzer) checkBlock(stmts []ast.Stmt) *cerr.Error {
	a.pushScope()
	defer a.popScope()
	for _, stmt := range stmts {
		if err := a.checkStmt(stmt); err != nil {
			return err
		}
	}
	return nil
}

func (a *Analyzer) checkStmt(stmt ast.Stmt) *cerr.Error {
	switch s := stmt.(type) {
	case *ast.VarDecl:
		return a.checkVarDecl(s)
	case *ast.Assign:
		return a.checkAssign(s)
	case *ast.Return:
		return a.checkReturn(s)
	case *ast.If:
		return a.checkIf(s)
	case *ast.While:
		return a.checkWhile(s)
	default:
		return errAt(stmt.Position(), "unhandled statement kind")
	}
}

func (a *Analyzer) checkVarDecl(s *ast.VarDecl) *cerr.Error {
	if s.Type == ast.TypeVoid {
		return errAt(s.Pos, "variable '%s' cannot have type void", s.Name)
	}
	if s.Initializer != nil {
		initType, err := a.inferExpr(s.Initializer)
		if err != nil {
			return err
		}
		if initType != s.Type {
			return errAt(s.Pos, "cannot initialize '%s' of type %s with a value of type %s", s.Name, s.Type, initType)
		}
	}
	if !a.declare(s.Name, s.Type) {
		return errAt(s.Pos, "'%s' is already declared in this scope", s.Name)
	}
	return nil
}

func (a *Analyzer) checkAssign(s *ast.Assign) *cerr.Error {
	varType, ok := a.lookup(s.Name)
	if !ok {
		return errAt(s.Pos, "undefined variable '%s'", s.Name)
	}
	valType, err := a.inferExpr(s.Value)
	if err != nil {
		return err
	}
	if valType != varType {
		return errAt(s.Pos, "cannot assign a value of type %s to '%s' of type %s", valType, s.Name, varType)
	}
	return nil
}

func (a *Analyzer) checkReturn(s *ast.Return) *cerr.Error {
	want := a.currentFunc.ReturnType
	if s.Value == nil {
		if want != ast.TypeVoid {
			return errAt(s.Pos, "function '%s' must return a value of type %s", a.currentFunc.Name, want)
		}
		return nil
	}
	if want == ast.TypeVoid {
		return errAt(s.Pos, "void function '%s' cannot return a value", a.currentFunc.Name)
	}
	got, err := a.inferExpr(s.Value)
	if err != nil {
		return err
	}
	if got != want {
		return errAt(s.Pos, "function '%s' returns %s, found %s", a.currentFunc.Name, want, got)
	}
	return nil
}

func (a *Analyzer) checkIf(s *ast.If) *cerr.Error {
	if err := a.requireInt(s.Cond, "if condition"); err != nil {
		return err
	}
	if err := a.checkBlock(s.Then); err != nil {
		return err
	}
	return a.checkBlock(s.Else)
}

func (a *Analyzer) checkWhile(s *ast.While) *cerr.Error {
	if err := a.requireInt(s.Cond, "while condition"); err != nil {
		return err
	}
	return a.checkBlock(s.Body)
}

func (a *Analyzer) requireInt(e ast.Expr, what string) *cerr.Error {
	t, err := a.inferExpr(e)
	if err != nil {
		return err
	}
	if t != ast.TypeInt {
		return errAt(e.Position(), "%s must be of type int, found %s", what, t)
	}
	return nil
}

// inferExpr computes e's static type, rejecting any use of a string value
// as an operand to an arithmetic, comparison, or unary operator — MC has
// no string concatenation or ordering, only declaration and pass-through.
func (a *Analyzer) inferExpr(e ast.Expr) (ast.Type, *cerr.Error) {
	switch n := e.(type) {
	case *ast.IntLiteral:
		return ast.TypeInt, nil
	case *ast.StringLiteral:
		return ast.TypeString, nil
	case *ast.Identifier:
		t, ok := a.lookup(n.Name)
		if !ok {
			return 0, errAt(n.Pos, "undefined variable '%s'", n.Name)
		}
		return t, nil
	case *ast.Unary:
		t, err := a.inferExpr(n.Operand)
		if err != nil {
			return 0, err
		}
		if t != ast.TypeInt {
			return 0, errAt(n.Pos, "unary operator requires an operand of type int, found %s", t)
		}
		return ast.TypeInt, nil
	case *ast.Binary:
		lt, err := a.inferExpr(n.Left)
		if err != nil {
			return 0, err
		}
		if lt != ast.TypeInt {
			return 0, errAt(n.Left.Position(), "binary operator requires operands of type int, found %s", lt)
		}
		rt, err := a.inferExpr(n.Right)
		if err != nil {
			return 0, err
		}
		if rt != ast.TypeInt {
			return 0, errAt(n.Right.Position(), "binary operator requires operands of type int, found %s", rt)
		}
		return ast.TypeInt, nil
	default:
		return 0, errAt(e.Position(), "unhandled expression kind")
	}
}

func errAt(pos token.Pos, format string, args ...interface{}) *cerr.Error {
	return cerr.Errorf(cerr.StageSemantic, pos.Line, pos.Column, format, args...)
}
