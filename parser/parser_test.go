package parser

import (
	"testing"

	"github.com/anemo-lang/anemo/ast"
	"github.com/anemo-lang/anemo/lexer"
)

func parseSource(t *testing.T, src string) *ast.Program {
	t.Helper()
	l := lexer.New("test.anm", src)
	prog, err := Parse("test.anm", l)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	return prog
}

func TestParseSimpleFunction(t *testing.T) {
	src := `glyph add [a: ember, b: ember] yields ember
bind total = a + b
offer total
seal
`
	prog := parseSource(t, src)
	if len(prog.Functions) != 1 {
		t.Fatalf("got %d functions, want 1", len(prog.Functions))
	}
	fn := prog.Functions[0]
	if fn.Name != "add" {
		t.Errorf("Name = %q, want add", fn.Name)
	}
	if len(fn.Params) != 2 {
		t.Fatalf("got %d params, want 2", len(fn.Params))
	}
	if fn.Params[0].Name != "a" || fn.Params[0].Type != ast.Int {
		t.Errorf("param 0 = %+v", fn.Params[0])
	}
	if fn.ReturnType != ast.Int {
		t.Errorf("ReturnType = %v, want Int", fn.ReturnType)
	}
	if len(fn.Body.Stmts) != 2 {
		t.Fatalf("got %d statements, want 2", len(fn.Body.Stmts))
	}
	bind, ok := fn.Body.Stmts[0].(*ast.BindStmt)
	if !ok {
		t.Fatalf("stmt 0 = %T, want *ast.BindStmt", fn.Body.Stmts[0])
	}
	bin, ok := bind.Value.(*ast.BinaryExpr)
	if !ok {
		t.Fatalf("bind value = %T, want *ast.BinaryExpr", bind.Value)
	}
	if bin.Op != ast.Add {
		t.Errorf("Op = %v, want Add", bin.Op)
	}
}

func TestParseNoParams(t *testing.T) {
	src := `glyph main [] yields mist
chant "hi"
seal
`
	prog := parseSource(t, src)
	fn := prog.Functions[0]
	if len(fn.Params) != 0 {
		t.Errorf("got %d params, want 0", len(fn.Params))
	}
	if fn.ReturnType != ast.Unit {
		t.Errorf("ReturnType = %v, want Unit", fn.ReturnType)
	}
	print, ok := fn.Body.Stmts[0].(*ast.PrintStmt)
	if !ok {
		t.Fatalf("stmt 0 = %T, want *ast.PrintStmt", fn.Body.Stmts[0])
	}
	str, ok := print.Value.(*ast.StringLit)
	if !ok || str.Value != "hi" {
		t.Errorf("print value = %+v", print.Value)
	}
}

func TestParseForkOtherwise(t *testing.T) {
	src := `glyph choose [x: ember] yields ember
fork x more 0
offer 1
otherwise
offer 0
seal
seal
`
	prog := parseSource(t, src)
	fork, ok := prog.Functions[0].Body.Stmts[0].(*ast.ForkStmt)
	if !ok {
		t.Fatalf("stmt 0 = %T, want *ast.ForkStmt", prog.Functions[0].Body.Stmts[0])
	}
	if fork.Else == nil {
		t.Fatalf("expected an otherwise arm")
	}
	if len(fork.Then.Stmts) != 1 || len(fork.Else.Stmts) != 1 {
		t.Errorf("then/else block sizes = %d/%d, want 1/1", len(fork.Then.Stmts), len(fork.Else.Stmts))
	}
}

func TestParseCycleWithBreakContinue(t *testing.T) {
	src := `glyph run [] yields mist
morph i = 0
cycle i less 10
shift i = i + 1
fork i same 5
continue
seal
fork i same 8
break
seal
seal
seal
`
	prog := parseSource(t, src)
	cycle, ok := prog.Functions[0].Body.Stmts[1].(*ast.CycleStmt)
	if !ok {
		t.Fatalf("stmt 1 = %T, want *ast.CycleStmt", prog.Functions[0].Body.Stmts[1])
	}
	if len(cycle.Body.Stmts) != 3 {
		t.Fatalf("cycle body has %d statements, want 3", len(cycle.Body.Stmts))
	}
}

func TestParseCallWithArgs(t *testing.T) {
	src := `glyph main [] yields ember
offer invoke add with 1, 2
seal
`
	prog := parseSource(t, src)
	ret, ok := prog.Functions[0].Body.Stmts[0].(*ast.ReturnStmt)
	if !ok {
		t.Fatalf("stmt 0 = %T, want *ast.ReturnStmt", prog.Functions[0].Body.Stmts[0])
	}
	call, ok := ret.Value.(*ast.CallExpr)
	if !ok {
		t.Fatalf("return value = %T, want *ast.CallExpr", ret.Value)
	}
	if call.Name != "add" {
		t.Errorf("Name = %q, want add", call.Name)
	}
	if len(call.Args) != 2 {
		t.Fatalf("got %d args, want 2", len(call.Args))
	}
}

func TestParseCallNoArgs(t *testing.T) {
	src := `glyph main [] yields mist
invoke greet
seal
`
	prog := parseSource(t, src)
	exprStmt, ok := prog.Functions[0].Body.Stmts[0].(*ast.ExprStmt)
	if !ok {
		t.Fatalf("stmt 0 = %T, want *ast.ExprStmt", prog.Functions[0].Body.Stmts[0])
	}
	call, ok := exprStmt.Value.(*ast.CallExpr)
	if !ok {
		t.Fatalf("value = %T, want *ast.CallExpr", exprStmt.Value)
	}
	if len(call.Args) != 0 {
		t.Errorf("got %d args, want 0", len(call.Args))
	}
}

func TestParseOperatorPrecedence(t *testing.T) {
	src := `glyph main [] yields pulse
offer 1 + 2 * 3 more 5 both flip no
seal
`
	prog := parseSource(t, src)
	ret := prog.Functions[0].Body.Stmts[0].(*ast.ReturnStmt)

	// Top level should be "both" (AND), since it has the lowest precedence.
	top, ok := ret.Value.(*ast.BinaryExpr)
	if !ok || top.Op != ast.And {
		t.Fatalf("top = %+v, want BinaryExpr{Op: And}", ret.Value)
	}

	// Left side of "both" is "more" (GT): (1 + 2*3) more 5
	left, ok := top.Left.(*ast.BinaryExpr)
	if !ok || left.Op != ast.Gt {
		t.Fatalf("left = %+v, want BinaryExpr{Op: Gt}", top.Left)
	}
	add, ok := left.Left.(*ast.BinaryExpr)
	if !ok || add.Op != ast.Add {
		t.Fatalf("add = %+v, want BinaryExpr{Op: Add}", left.Left)
	}
	mul, ok := add.Right.(*ast.BinaryExpr)
	if !ok || mul.Op != ast.Mul {
		t.Fatalf("mul = %+v, want BinaryExpr{Op: Mul}", add.Right)
	}

	// Right side of "both" is "flip no" (unary NOT over a bool literal).
	right, ok := top.Right.(*ast.UnaryExpr)
	if !ok || right.Op != ast.Flip {
		t.Fatalf("right = %+v, want UnaryExpr{Op: Flip}", top.Right)
	}
}

func TestParseMissingSealError(t *testing.T) {
	src := `glyph main [] yields mist
chant "hi"
`
	l := lexer.New("test.anm", src)
	_, err := Parse("test.anm", l)
	if err == nil {
		t.Fatalf("expected an error for a function missing its closing seal")
	}
}

func TestParseEmptyProgramError(t *testing.T) {
	l := lexer.New("test.anm", "")
	_, err := Parse("test.anm", l)
	if err == nil {
		t.Fatalf("expected an error for a program with no glyphs")
	}
}

func TestParseExpectedExpressionError(t *testing.T) {
	src := `glyph main [] yields mist
bind x = [
seal
`
	l := lexer.New("test.anm", src)
	_, err := Parse("test.anm", l)
	if err == nil {
		t.Fatalf("expected an error parsing a malformed expression")
	}
}
