// Package irgen lowers a type-checked *ast.Program into an *ir.Program.
// It assumes the semantic pass has already run: every expression's
// Type() is valid and every name resolves, so this stage never
// produces a user-facing diagnostic, only *diag.Internal ones if an
// invariant the checker was supposed to guarantee turns out false.
package irgen

import (
	"github.com/anemo-lang/anemo/abi"
	"github.com/anemo-lang/anemo/ast"
	"github.com/anemo-lang/anemo/diag"
	"github.com/anemo-lang/anemo/ir"
	"github.com/anemo-lang/anemo/stack"
)

type scopeEntry struct {
	name     string
	varIndex int
	depth    int
}

// loopLabels is the head/end label pair pushed for each cycle we are
// currently lowering, so a nested break/continue knows where to jump.
type loopLabels struct {
	head int
	end  int
}

// builder holds the IR generator's per-function state. A fresh one is
// used for every function, the way the checker resets its own state
// per function.
type builder struct {
	fn *ir.Function

	scope []scopeEntry
	depth int

	nextTemp  int
	nextLabel int

	loops *stack.Stack[loopLabels]

	strings *[]ir.String
}

// Generate lowers an entire program. The AST is assumed well-typed.
func Generate(prog *ast.Program) (*ir.Program, error) {
	out := &ir.Program{}
	for _, fn := range prog.Functions {
		irFn, err := genFunction(out, fn)
		if err != nil {
			return nil, err
		}
		out.Functions = append(out.Functions, *irFn)
	}
	return out, nil
}

func genFunction(out *ir.Program, f *ast.Function) (*ir.Function, error) {
	fn := &ir.Function{Name: f.Name, ReturnType: f.ReturnType}

	b := &builder{
		fn:      fn,
		loops:   stack.New[loopLabels](),
		strings: &out.Strings,
	}

	b.beginScope()
	for _, p := range f.Params {
		vi := b.addVar(p.Name, p.Type, false, true)
		b.scopePush(p.Name, vi)
	}
	fn.ParamCount = len(f.Params)

	if err := b.genBlock(f.Body); err != nil {
		return nil, err
	}
	b.endScope()

	if fn.ReturnType == ast.Unit {
		fn.Code = append(fn.Code, ir.Instr{Op: ir.Ret, HasValue: false})
	}

	fn.TempCount = b.nextTemp
	return fn, nil
}

func (b *builder) push(ins ir.Instr) {
	b.fn.Code = append(b.fn.Code, ins)
}

func (b *builder) addVar(name string, typ ast.Type, mutable, isParam bool) int {
	idx := len(b.fn.Vars)
	b.fn.Vars = append(b.fn.Vars, ir.Var{Name: name, Type: typ, Mutable: mutable, IsParam: isParam})
	return idx
}

func (b *builder) scopePush(name string, varIndex int) {
	b.scope = append(b.scope, scopeEntry{name: name, varIndex: varIndex, depth: b.depth})
}

func (b *builder) scopeFind(name string) int {
	for i := len(b.scope) - 1; i >= 0; i-- {
		if b.scope[i].name == name {
			return b.scope[i].varIndex
		}
	}
	return -1
}

func (b *builder) beginScope() { b.depth++ }

func (b *builder) endScope() {
	for len(b.scope) > 0 && b.scope[len(b.scope)-1].depth == b.depth {
		b.scope = b.scope[:len(b.scope)-1]
	}
	b.depth--
}

func (b *builder) newTemp() int {
	t := b.nextTemp
	b.nextTemp++
	return t
}

func (b *builder) newLabel() int {
	l := b.nextLabel
	b.nextLabel++
	return l
}

func (b *builder) internString(value string) int {
	for _, s := range *b.strings {
		if s.Value == value {
			return s.ID
		}
	}
	id := len(*b.strings)
	*b.strings = append(*b.strings, ir.String{ID: id, Value: value})
	return id
}

func (b *builder) emitLoadVar(varIndex, line, col int) int {
	t := b.newTemp()
	b.push(ir.Instr{Op: ir.LoadVar, Line: line, Col: col, Dst: t, VarIndex: varIndex})
	return t
}

func (b *builder) emitStoreVar(varIndex, src, line, col int) {
	b.push(ir.Instr{Op: ir.StoreVar, Line: line, Col: col, VarIndex: varIndex, Src1: src})
}

func (b *builder) genCall(e *ast.CallExpr) (int, error) {
	if len(e.Args) > abi.MaxCallArgs {
		return -1, diag.NewInternal(e.Pos.Line, e.Pos.Col, "codegen currently supports up to %d call arguments on this target", abi.MaxCallArgs)
	}

	argTemps := make([]int, len(e.Args))
	for i, arg := range e.Args {
		t, err := b.genExpr(arg)
		if err != nil {
			return -1, err
		}
		argTemps[i] = t
	}

	ins := ir.Instr{Op: ir.Call, Line: e.Pos.Line, Col: e.Pos.Col, Name: e.Name, Args: argTemps, Type: e.Type()}

	if e.Type() == ast.Unit {
		ins.Dst = -1
		b.push(ins)
		return -1, nil
	}

	t := b.newTemp()
	ins.Dst = t
	b.push(ins)
	return t, nil
}

func (b *builder) genExpr(e ast.Expr) (int, error) {
	switch ex := e.(type) {
	case *ast.IntLit:
		t := b.newTemp()
		b.push(ir.Instr{Op: ir.ImmInt, Line: ex.Pos.Line, Col: ex.Pos.Col, Dst: t, Imm: ex.Value})
		return t, nil

	case *ast.BoolLit:
		t := b.newTemp()
		var imm int64
		if ex.Value {
			imm = 1
		}
		b.push(ir.Instr{Op: ir.ImmBool, Line: ex.Pos.Line, Col: ex.Pos.Col, Dst: t, Imm: imm})
		return t, nil

	case *ast.StringLit:
		t := b.newTemp()
		id := b.internString(ex.Value)
		b.push(ir.Instr{Op: ir.ImmStr, Line: ex.Pos.Line, Col: ex.Pos.Col, Dst: t, Imm: int64(id)})
		return t, nil

	case *ast.VarExpr:
		vi := b.scopeFind(ex.Name)
		if vi < 0 {
			return -1, diag.NewInternal(ex.Pos.Line, ex.Pos.Col, "unknown var in IR gen: %s", ex.Name)
		}
		return b.emitLoadVar(vi, ex.Pos.Line, ex.Pos.Col), nil

	case *ast.CallExpr:
		return b.genCall(ex)

	case *ast.UnaryExpr:
		src, err := b.genExpr(ex.Operand)
		if err != nil {
			return -1, err
		}
		t := b.newTemp()
		op := ir.Neg
		if ex.Op == ast.Flip {
			op = ir.Flip
		}
		b.push(ir.Instr{Op: ir.Un, Line: ex.Pos.Line, Col: ex.Pos.Col, Dst: t, Src1: src, UnOp: op})
		return t, nil

	case *ast.BinaryExpr:
		left, err := b.genExpr(ex.Left)
		if err != nil {
			return -1, err
		}
		right, err := b.genExpr(ex.Right)
		if err != nil {
			return -1, err
		}
		t := b.newTemp()
		b.push(ir.Instr{Op: ir.Bin, Line: ex.Pos.Line, Col: ex.Pos.Col, Dst: t, Src1: left, Src2: right, BinOp: binOpOf(ex.Op)})
		return t, nil

	default:
		return -1, diag.NewInternal(e.Position().Line, e.Position().Col, "unhandled expression kind %T in IR gen", e)
	}
}

func binOpOf(op ast.BinaryOp) ir.BinOp {
	switch op {
	case ast.Add:
		return ir.Add
	case ast.Sub:
		return ir.Sub
	case ast.Mul:
		return ir.Mul
	case ast.Div:
		return ir.Div
	case ast.And:
		return ir.And
	case ast.Or:
		return ir.Or
	case ast.Eq:
		return ir.Eq
	case ast.Ne:
		return ir.Ne
	case ast.Lt:
		return ir.Lt
	case ast.Gt:
		return ir.Gt
	case ast.Le:
		return ir.Le
	default:
		return ir.Ge
	}
}

func (b *builder) emitLabel(label int) {
	b.push(ir.Instr{Op: ir.Label, Label: label})
}

func (b *builder) emitJmp(label int) {
	b.push(ir.Instr{Op: ir.Jmp, Label: label})
}

func (b *builder) emitJmpFalse(cond, label int) {
	b.push(ir.Instr{Op: ir.JmpFalse, Src1: cond, Label: label})
}

func (b *builder) genBlock(block *ast.Block) error {
	for _, stmt := range block.Stmts {
		if err := b.genStmt(stmt); err != nil {
			return err
		}
	}
	return nil
}

func (b *builder) genStmt(stmt ast.Stmt) error {
	switch s := stmt.(type) {
	case *ast.BindStmt:
		src, err := b.genExpr(s.Value)
		if err != nil {
			return err
		}
		vi := b.addVar(s.Name, s.Value.Type(), false, false)
		b.scopePush(s.Name, vi)
		b.emitStoreVar(vi, src, s.Pos.Line, s.Pos.Col)
		return nil

	case *ast.MorphStmt:
		src, err := b.genExpr(s.Value)
		if err != nil {
			return err
		}
		vi := b.addVar(s.Name, s.Value.Type(), true, false)
		b.scopePush(s.Name, vi)
		b.emitStoreVar(vi, src, s.Pos.Line, s.Pos.Col)
		return nil

	case *ast.ShiftStmt:
		vi := b.scopeFind(s.Name)
		if vi < 0 {
			return diag.NewInternal(s.Pos.Line, s.Pos.Col, "unknown var in IR gen: %s", s.Name)
		}
		src, err := b.genExpr(s.Value)
		if err != nil {
			return err
		}
		b.emitStoreVar(vi, src, s.Pos.Line, s.Pos.Col)
		return nil

	case *ast.ForkStmt:
		cond, err := b.genExpr(s.Cond)
		if err != nil {
			return err
		}
		lElse := b.newLabel()
		lEnd := b.newLabel()
		b.emitJmpFalse(cond, lElse)

		b.beginScope()
		if err := b.genBlock(s.Then); err != nil {
			return err
		}
		b.endScope()
		b.emitJmp(lEnd)

		b.emitLabel(lElse)
		if s.Else != nil {
			b.beginScope()
			if err := b.genBlock(s.Else); err != nil {
				return err
			}
			b.endScope()
		}
		b.emitLabel(lEnd)
		return nil

	case *ast.CycleStmt:
		lHead := b.newLabel()
		lEnd := b.newLabel()
		b.loops.Push(loopLabels{head: lHead, end: lEnd})

		b.emitLabel(lHead)
		cond, err := b.genExpr(s.Cond)
		if err != nil {
			return err
		}
		b.emitJmpFalse(cond, lEnd)

		b.beginScope()
		if err := b.genBlock(s.Body); err != nil {
			return err
		}
		b.endScope()
		b.emitJmp(lHead)
		b.emitLabel(lEnd)

		if _, err := b.loops.Pop(); err != nil {
			return diag.NewInternal(s.Pos.Line, s.Pos.Col, "loop label stack underflow")
		}
		return nil

	case *ast.BreakStmt:
		top, err := b.loops.Top()
		if err != nil {
			return diag.NewInternal(s.Pos.Line, s.Pos.Col, "break used outside loop during IR gen")
		}
		b.emitJmp(top.end)
		return nil

	case *ast.ContinueStmt:
		top, err := b.loops.Top()
		if err != nil {
			return diag.NewInternal(s.Pos.Line, s.Pos.Col, "continue used outside loop during IR gen")
		}
		b.emitJmp(top.head)
		return nil

	case *ast.ReturnStmt:
		ins := ir.Instr{Op: ir.Ret, Line: s.Pos.Line, Col: s.Pos.Col}
		if s.Value != nil {
			src, err := b.genExpr(s.Value)
			if err != nil {
				return err
			}
			ins.HasValue = true
			ins.Src1 = src
		}
		b.push(ins)
		return nil

	case *ast.PrintStmt:
		src, err := b.genExpr(s.Value)
		if err != nil {
			return err
		}
		b.push(ir.Instr{Op: ir.Print, Line: s.Pos.Line, Col: s.Pos.Col, Src1: src, Type: s.Value.Type()})
		return nil

	case *ast.ExprStmt:
		_, err := b.genExpr(s.Value)
		return err

	default:
		return diag.NewInternal(stmt.Position().Line, stmt.Position().Col, "unhandled statement kind %T in IR gen", stmt)
	}
}
