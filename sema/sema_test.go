package sema

import (
	"testing"

	"github.com/anemo-lang/anemo/ast"
	"github.com/anemo-lang/anemo/lexer"
	"github.com/anemo-lang/anemo/parser"
)

func checkSource(t *testing.T, src string) error {
	t.Helper()
	l := lexer.New("test.anm", src)
	prog, err := parser.Parse("test.anm", l)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	return Check("test.anm", prog)
}

func TestCheckValidProgram(t *testing.T) {
	src := `glyph add [a: ember, b: ember] yields ember
offer a + b
seal

glyph main [] yields ember
offer invoke add with 1, 2
seal
`
	if err := checkSource(t, src); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCheckMissingMain(t *testing.T) {
	src := `glyph foo [] yields mist
seal
`
	if err := checkSource(t, src); err == nil {
		t.Fatalf("expected an error for a program with no glyph main")
	}
}

func TestCheckMainWrongReturnType(t *testing.T) {
	src := `glyph main [] yields mist
seal
`
	if err := checkSource(t, src); err == nil {
		t.Fatalf("expected an error for glyph main not yielding ember")
	}
}

func TestCheckUnknownSymbol(t *testing.T) {
	src := `glyph main [] yields ember
offer missing
seal
`
	if err := checkSource(t, src); err == nil {
		t.Fatalf("expected an error referencing an unknown symbol")
	}
}

func TestCheckShiftImmutable(t *testing.T) {
	src := `glyph main [] yields ember
bind x = 1
shift x = 2
offer x
seal
`
	if err := checkSource(t, src); err == nil {
		t.Fatalf("expected an error shifting an immutable binding")
	}
}

func TestCheckShiftMutableOK(t *testing.T) {
	src := `glyph main [] yields ember
morph x = 1
shift x = 2
offer x
seal
`
	if err := checkSource(t, src); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCheckTypeMismatchInBinary(t *testing.T) {
	src := `glyph main [] yields ember
offer 1 + yes
seal
`
	if err := checkSource(t, src); err == nil {
		t.Fatalf("expected an error mixing ember and pulse in arithmetic")
	}
}

func TestCheckBreakOutsideLoop(t *testing.T) {
	src := `glyph main [] yields ember
break
offer 0
seal
`
	if err := checkSource(t, src); err == nil {
		t.Fatalf("expected an error for break outside a cycle")
	}
}

func TestCheckContinueInsideLoop(t *testing.T) {
	src := `glyph main [] yields ember
morph i = 0
cycle i less 3
shift i = i + 1
continue
seal
offer i
seal
`
	if err := checkSource(t, src); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCheckDuplicateGlyph(t *testing.T) {
	src := `glyph foo [] yields mist
seal

glyph foo [] yields mist
seal

glyph main [] yields ember
offer 0
seal
`
	if err := checkSource(t, src); err == nil {
		t.Fatalf("expected an error for a duplicate glyph name")
	}
}

func TestCheckScopeShadowingAcrossBlocks(t *testing.T) {
	src := `glyph main [] yields ember
bind x = 1
fork yes
bind x = 2
chant x
otherwise
chant x
seal
offer x
seal
`
	if err := checkSource(t, src); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCheckRedeclarationInSameScope(t *testing.T) {
	src := `glyph main [] yields ember
bind x = 1
bind x = 2
offer x
seal
`
	if err := checkSource(t, src); err == nil {
		t.Fatalf("expected an error redeclaring 'x' in the same scope")
	}
}

func TestCheckCallArityMismatch(t *testing.T) {
	src := `glyph foo [a: ember] yields mist
seal

glyph main [] yields ember
invoke foo with 1, 2
offer 0
seal
`
	if err := checkSource(t, src); err == nil {
		t.Fatalf("expected an error for a call arity mismatch")
	}
}

func TestCheckInferredTypeIsRecorded(t *testing.T) {
	src := `glyph main [] yields ember
offer 1 + 2
seal
`
	l := lexer.New("test.anm", src)
	prog, err := parser.Parse("test.anm", l)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if err := Check("test.anm", prog); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ret := prog.Functions[0].Body.Stmts[0].(*ast.ReturnStmt)
	if ret.Value.Type() != ast.Int {
		t.Errorf("Type() = %v, want Int", ret.Value.Type())
	}
}
