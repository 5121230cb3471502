// Package compiler orchestrates a source file's translation from text
// to a runnable executable: it owns nothing on its own, it just calls
// the five compilation stages in order and stops at the first error
// any of them raises, then optionally hands the resulting assembly to
// an external assembler and linker.
package compiler

import (
	"fmt"
	"os"
	"strings"

	"github.com/pkg/errors"

	"github.com/anemo-lang/anemo/codegen"
	"github.com/anemo-lang/anemo/internal/toolchain"
	"github.com/anemo-lang/anemo/irgen"
	"github.com/anemo-lang/anemo/lexer"
	"github.com/anemo-lang/anemo/parser"
	"github.com/anemo-lang/anemo/sema"
)

// Compiler holds the state needed to translate one source file.
type Compiler struct {
	// file is the path reported in diagnostics.
	file string

	// source is the program text.
	source string

	// tc is the assembler/linker pair to invoke in Build.
	tc toolchain.Toolchain

	// verbose gates the per-stage progress lines printed to stderr.
	verbose bool
}

// New creates a compiler for the given source file and its contents.
func New(file, source string, tc toolchain.Toolchain) *Compiler {
	return &Compiler{file: file, source: source, tc: tc}
}

// SetVerbose changes whether Build narrates its stages to stderr.
func (c *Compiler) SetVerbose(val bool) {
	c.verbose = val
}

func (c *Compiler) trace(stage string) {
	if c.verbose {
		fmt.Fprintf(os.Stderr, "anemo: %s\n", stage)
	}
}

// CompileToAssembly runs the five front-end/middle-end stages and
// returns the generated AT&T-syntax assembly text. It stops at the
// first stage that returns an error: lex errors, parse errors and
// semantic errors are all *diag.Diagnostic (or wrap one); anything
// from irgen or codegen past that point is an internal-compiler-error,
// since the semantic pass is supposed to have ruled those out.
func (c *Compiler) CompileToAssembly() (string, error) {
	c.trace("lexing")
	l := lexer.New(c.file, c.source)

	c.trace("parsing")
	prog, err := parser.Parse(c.file, l)
	if err != nil {
		return "", err
	}

	c.trace("checking")
	if err := sema.Check(c.file, prog); err != nil {
		return "", err
	}

	c.trace("generating IR")
	irProg, err := irgen.Generate(prog)
	if err != nil {
		return "", err
	}

	c.trace("emitting assembly")
	asm, err := codegen.Emit(irProg)
	if err != nil {
		return "", err
	}

	return asm, nil
}

// BuildOptions controls what Build produces beyond the assembly text
// itself.
type BuildOptions struct {
	// OutputPath is the executable (or, with AssembleOnly, the .s
	// file) to write.
	OutputPath string

	// AssembleOnly stops after writing the assembly file, matching
	// the driver's -S flag; as/cc are never invoked.
	AssembleOnly bool
}

// Build compiles the source all the way to an executable (or, with
// AssembleOnly, to an assembly-language file) at opts.OutputPath.
func (c *Compiler) Build(opts BuildOptions) error {
	asm, err := c.CompileToAssembly()
	if err != nil {
		return err
	}

	if opts.AssembleOnly {
		c.trace("writing assembly")
		if err := os.WriteFile(opts.OutputPath, []byte(asm), 0644); err != nil {
			return errors.Wrapf(err, "writing %s", opts.OutputPath)
		}
		return nil
	}

	asmPath := opts.OutputPath + ".s"
	objPath := opts.OutputPath + ".o"
	defer os.Remove(asmPath)
	defer os.Remove(objPath)

	c.trace("writing assembly")
	if err := os.WriteFile(asmPath, []byte(asm), 0644); err != nil {
		return errors.Wrapf(err, "writing %s", asmPath)
	}

	c.trace("assembling")
	if err := c.tc.Assemble(asmPath, objPath); err != nil {
		return err
	}

	c.trace("linking")
	if err := c.tc.Link(objPath, opts.OutputPath); err != nil {
		return err
	}

	return nil
}

// Stem strips a leading directory and trailing extension, the way the
// driver derives a default output name ("prog.anm" -> "prog") from the
// input path.
func Stem(path string) string {
	base := path
	if i := strings.LastIndexByte(base, '/'); i >= 0 {
		base = base[i+1:]
	}
	if i := strings.LastIndexByte(base, '.'); i > 0 {
		base = base[:i]
	}
	return base
}
