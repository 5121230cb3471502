package compiler

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/anemo-lang/anemo/internal/toolchain"
)

func TestCompileToAssemblyValidProgram(t *testing.T) {
	src := `glyph main [] yields ember
bind x = 2 * 3 + 4
chant x
offer 0
seal
`
	c := New("test.anm", src, toolchain.Default())
	asm, err := c.CompileToAssembly()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(asm, "main:") {
		t.Errorf("expected assembly to contain a main: label, got:\n%s", asm)
	}
}

func TestCompileToAssemblyLexError(t *testing.T) {
	c := New("test.anm", "glyph main [] yields ember\noffer 0 $\nseal\n", toolchain.Default())
	if _, err := c.CompileToAssembly(); err == nil {
		t.Errorf("expected a lex error for an unexpected character")
	}
}

func TestCompileToAssemblyParseError(t *testing.T) {
	c := New("test.anm", "glyph main [] yields ember\noffer\n", toolchain.Default())
	if _, err := c.CompileToAssembly(); err == nil {
		t.Errorf("expected a parse error for a missing seal")
	}
}

func TestCompileToAssemblySemanticError(t *testing.T) {
	c := New("test.anm", `glyph main [] yields ember
offer yes
seal
`, toolchain.Default())
	if _, err := c.CompileToAssembly(); err == nil {
		t.Errorf("expected a semantic error for a Bool returned as Int")
	}
}

func TestBuildAssembleOnlyWritesAssemblyFile(t *testing.T) {
	src := `glyph main [] yields ember
offer 0
seal
`
	c := New("test.anm", src, toolchain.Default())
	out := filepath.Join(t.TempDir(), "prog.s")
	if err := c.Build(BuildOptions{OutputPath: out, AssembleOnly: true}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("expected the assembly file to exist: %v", err)
	}
	if !strings.Contains(string(data), "main:") {
		t.Errorf("expected written assembly to contain main:, got:\n%s", data)
	}
}

func TestStem(t *testing.T) {
	tests := []struct{ in, want string }{
		{"prog.anm", "prog"},
		{"dir/sub/prog.anm", "prog"},
		{"noext", "noext"},
	}
	for _, tt := range tests {
		if got := Stem(tt.in); got != tt.want {
			t.Errorf("Stem(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
