// Package sema implements the semantic analyzer: name resolution,
// type checking, and the scope/mutability discipline described by the
// language's binding rules. It runs as two passes over the program —
// first every procedure signature is collected so forward calls
// resolve, then each procedure body is checked against those
// signatures — and it stops at the first error it finds.
package sema

import (
	"github.com/anemo-lang/anemo/abi"
	"github.com/anemo-lang/anemo/ast"
	"github.com/anemo-lang/anemo/diag"
)

type fnSym struct {
	name   string
	ret    ast.Type
	params []ast.Param
}

type varSym struct {
	name    string
	typ     ast.Type
	mutable bool
	depth   int
}

// Checker walks a *ast.Program and reports the first diagnostic it
// finds, or nil if the program is well-typed.
type Checker struct {
	file string

	fns  map[string]*fnSym
	vars []varSym
	depth int

	currentFn *fnSym
	sawReturn bool
	loopDepth int
}

// NewChecker builds a Checker for the named source file (used only to
// qualify diagnostics).
func NewChecker(file string) *Checker {
	return &Checker{file: file, fns: make(map[string]*fnSym)}
}

// Check runs both passes and returns the first diagnostic encountered.
func Check(file string, prog *ast.Program) error {
	c := NewChecker(file)
	return c.Check(prog)
}

func (c *Checker) Check(prog *ast.Program) error {
	if err := c.collectFunctions(prog); err != nil {
		return err
	}

	main, ok := c.fns["main"]
	if !ok {
		return diag.New(c.file, 1, 1, "program must define glyph main")
	}
	if len(main.params) != 0 {
		return diag.New(c.file, 1, 1, "glyph main must have [] parameter list")
	}
	if main.ret != ast.Int {
		return diag.New(c.file, 1, 1, "glyph main must yield ember")
	}

	for _, fn := range prog.Functions {
		if err := c.checkFunction(fn); err != nil {
			return err
		}
	}
	return nil
}

func (c *Checker) collectFunctions(prog *ast.Program) error {
	for _, fn := range prog.Functions {
		if _, exists := c.fns[fn.Name]; exists {
			return diag.New(c.file, fn.Pos.Line, fn.Pos.Col, "duplicate glyph '%s'", fn.Name)
		}
		c.fns[fn.Name] = &fnSym{
			name:   fn.Name,
			ret:    fn.ReturnType,
			params: fn.Params,
		}
	}
	return nil
}

func (c *Checker) beginScope() { c.depth++ }

func (c *Checker) endScope() {
	for len(c.vars) > 0 && c.vars[len(c.vars)-1].depth == c.depth {
		c.vars = c.vars[:len(c.vars)-1]
	}
	c.depth--
}

func (c *Checker) findVar(name string) *varSym {
	for i := len(c.vars) - 1; i >= 0; i-- {
		if c.vars[i].name == name {
			return &c.vars[i]
		}
	}
	return nil
}

func (c *Checker) defineVar(name string, typ ast.Type, mutable bool, line, col int) error {
	for i := len(c.vars) - 1; i >= 0; i-- {
		v := &c.vars[i]
		if v.depth != c.depth {
			break
		}
		if v.name == name {
			return diag.New(c.file, line, col, "'%s' already declared in this scope", name)
		}
	}
	c.vars = append(c.vars, varSym{name: name, typ: typ, mutable: mutable, depth: c.depth})
	return nil
}

func (c *Checker) checkFunction(fn *ast.Function) error {
	c.vars = c.vars[:0]
	c.depth = 0
	c.currentFn = c.fns[fn.Name]
	c.sawReturn = false
	c.loopDepth = 0

	c.beginScope()
	for _, p := range fn.Params {
		if err := c.defineVar(p.Name, p.Type, false, p.Pos.Line, p.Pos.Col); err != nil {
			return err
		}
	}
	if err := c.checkBlock(fn.Body); err != nil {
		return err
	}
	c.endScope()

	if fn.ReturnType != ast.Unit && !c.sawReturn {
		return diag.New(c.file, fn.Pos.Line, fn.Pos.Col, "glyph '%s' yields %s but has no offer", fn.Name, fn.ReturnType)
	}
	return nil
}

func (c *Checker) checkBlock(block *ast.Block) error {
	for _, stmt := range block.Stmts {
		if err := c.checkStmt(stmt); err != nil {
			return err
		}
	}
	return nil
}

func (c *Checker) checkStmt(stmt ast.Stmt) error {
	switch s := stmt.(type) {
	case *ast.BindStmt:
		t, err := c.checkExpr(s.Value)
		if err != nil {
			return err
		}
		return c.defineVar(s.Name, t, false, s.Pos.Line, s.Pos.Col)

	case *ast.MorphStmt:
		t, err := c.checkExpr(s.Value)
		if err != nil {
			return err
		}
		return c.defineVar(s.Name, t, true, s.Pos.Line, s.Pos.Col)

	case *ast.ShiftStmt:
		v := c.findVar(s.Name)
		if v == nil {
			return diag.New(c.file, s.Pos.Line, s.Pos.Col, "unknown symbol '%s'", s.Name)
		}
		if !v.mutable {
			return diag.New(c.file, s.Pos.Line, s.Pos.Col, "cannot shift immutable symbol '%s'", s.Name)
		}
		t, err := c.checkExpr(s.Value)
		if err != nil {
			return err
		}
		if t != v.typ {
			return diag.New(c.file, s.Pos.Line, s.Pos.Col, "shift type mismatch for '%s': expected %s, got %s", s.Name, v.typ, t)
		}
		return nil

	case *ast.ForkStmt:
		cond, err := c.checkExpr(s.Cond)
		if err != nil {
			return err
		}
		if cond != ast.Bool {
			return diag.New(c.file, s.Pos.Line, s.Pos.Col, "fork condition must be pulse")
		}
		c.beginScope()
		if err := c.checkBlock(s.Then); err != nil {
			return err
		}
		c.endScope()
		if s.Else != nil {
			c.beginScope()
			if err := c.checkBlock(s.Else); err != nil {
				return err
			}
			c.endScope()
		}
		return nil

	case *ast.CycleStmt:
		cond, err := c.checkExpr(s.Cond)
		if err != nil {
			return err
		}
		if cond != ast.Bool {
			return diag.New(c.file, s.Pos.Line, s.Pos.Col, "cycle condition must be pulse")
		}
		c.loopDepth++
		c.beginScope()
		if err := c.checkBlock(s.Body); err != nil {
			return err
		}
		c.endScope()
		c.loopDepth--
		return nil

	case *ast.BreakStmt:
		if c.loopDepth <= 0 {
			return diag.New(c.file, s.Pos.Line, s.Pos.Col, "break can only be used inside cycle")
		}
		return nil

	case *ast.ContinueStmt:
		if c.loopDepth <= 0 {
			return diag.New(c.file, s.Pos.Line, s.Pos.Col, "continue can only be used inside cycle")
		}
		return nil

	case *ast.ReturnStmt:
		c.sawReturn = true
		if c.currentFn.ret == ast.Unit {
			if s.Value != nil {
				return diag.New(c.file, s.Pos.Line, s.Pos.Col, "mist glyph cannot offer a value")
			}
			return nil
		}
		if s.Value == nil {
			return diag.New(c.file, s.Pos.Line, s.Pos.Col, "glyph must offer %s value", c.currentFn.ret)
		}
		t, err := c.checkExpr(s.Value)
		if err != nil {
			return err
		}
		if t != c.currentFn.ret {
			return diag.New(c.file, s.Pos.Line, s.Pos.Col, "offer mismatch: glyph yields %s but offered %s", c.currentFn.ret, t)
		}
		return nil

	case *ast.PrintStmt:
		t, err := c.checkExpr(s.Value)
		if err != nil {
			return err
		}
		if t != ast.Int && t != ast.Bool && t != ast.Text {
			return diag.New(c.file, s.Pos.Line, s.Pos.Col, "chant supports ember|pulse|text")
		}
		return nil

	case *ast.ExprStmt:
		_, err := c.checkExpr(s.Value)
		return err

	default:
		return diag.NewInternal(stmt.Position().Line, stmt.Position().Col, "unhandled statement kind %T", stmt)
	}
}

func (c *Checker) checkExpr(e ast.Expr) (ast.Type, error) {
	var t ast.Type

	switch ex := e.(type) {
	case *ast.IntLit:
		t = ast.Int
	case *ast.BoolLit:
		t = ast.Bool
	case *ast.StringLit:
		t = ast.Text
	case *ast.VarExpr:
		v := c.findVar(ex.Name)
		if v == nil {
			return ast.Invalid, diag.New(c.file, ex.Pos.Line, ex.Pos.Col, "unknown symbol '%s'", ex.Name)
		}
		t = v.typ
	case *ast.CallExpr:
		ct, err := c.checkCall(ex)
		if err != nil {
			return ast.Invalid, err
		}
		t = ct
	case *ast.UnaryExpr:
		inner, err := c.checkExpr(ex.Operand)
		if err != nil {
			return ast.Invalid, err
		}
		if ex.Op == ast.Neg {
			if inner != ast.Int {
				return ast.Invalid, diag.New(c.file, ex.Operand.Position().Line, ex.Operand.Position().Col, "negation expects ember, got %s", inner)
			}
			t = ast.Int
		} else {
			if inner != ast.Bool {
				return ast.Invalid, diag.New(c.file, ex.Operand.Position().Line, ex.Operand.Position().Col, "flip expects pulse, got %s", inner)
			}
			t = ast.Bool
		}
	case *ast.BinaryExpr:
		bt, err := c.checkBinary(ex)
		if err != nil {
			return ast.Invalid, err
		}
		t = bt
	default:
		return ast.Invalid, diag.NewInternal(e.Position().Line, e.Position().Col, "unhandled expression kind %T", e)
	}

	e.SetType(t)
	return t, nil
}

func (c *Checker) checkBinary(ex *ast.BinaryExpr) (ast.Type, error) {
	lt, err := c.checkExpr(ex.Left)
	if err != nil {
		return ast.Invalid, err
	}
	rt, err := c.checkExpr(ex.Right)
	if err != nil {
		return ast.Invalid, err
	}

	switch ex.Op {
	case ast.Add, ast.Sub, ast.Mul, ast.Div:
		if lt != ast.Int || rt != ast.Int {
			return ast.Invalid, diag.New(c.file, ex.Pos.Line, ex.Pos.Col, "arithmetic needs ember operands")
		}
		return ast.Int, nil
	case ast.And, ast.Or:
		if lt != ast.Bool || rt != ast.Bool {
			return ast.Invalid, diag.New(c.file, ex.Pos.Line, ex.Pos.Col, "boolean chaining needs pulse operands")
		}
		return ast.Bool, nil
	case ast.Lt, ast.Gt, ast.Le, ast.Ge:
		if lt != ast.Int || rt != ast.Int {
			return ast.Invalid, diag.New(c.file, ex.Pos.Line, ex.Pos.Col, "comparison needs ember operands")
		}
		return ast.Bool, nil
	case ast.Eq, ast.Ne:
		if lt != rt {
			return ast.Invalid, diag.New(c.file, ex.Pos.Line, ex.Pos.Col, "same/diff operands must share type")
		}
		return ast.Bool, nil
	default:
		return ast.Invalid, diag.NewInternal(ex.Pos.Line, ex.Pos.Col, "unhandled binary operator %d", ex.Op)
	}
}

func (c *Checker) checkCall(ex *ast.CallExpr) (ast.Type, error) {
	fn, ok := c.fns[ex.Name]
	if !ok {
		return ast.Invalid, diag.New(c.file, ex.Pos.Line, ex.Pos.Col, "unknown glyph '%s'", ex.Name)
	}

	if len(ex.Args) > abi.MaxCallArgs {
		return ast.Invalid, diag.New(c.file, ex.Pos.Line, ex.Pos.Col, "glyph calls currently support at most %d arguments on this target", abi.MaxCallArgs)
	}
	if len(fn.params) != len(ex.Args) {
		return ast.Invalid, diag.New(c.file, ex.Pos.Line, ex.Pos.Col, "glyph '%s' expects %d arguments, got %d", ex.Name, len(fn.params), len(ex.Args))
	}

	for i, arg := range ex.Args {
		argT, err := c.checkExpr(arg)
		if err != nil {
			return ast.Invalid, err
		}
		expT := fn.params[i].Type
		if argT != expT {
			return ast.Invalid, diag.New(c.file, arg.Position().Line, arg.Position().Col,
				"argument %d of '%s' expects %s, got %s", i+1, ex.Name, expT, argT)
		}
	}

	return fn.ret, nil
}
