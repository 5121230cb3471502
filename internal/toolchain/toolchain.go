// Package toolchain shells out to the system assembler and linker:
// "as -o <obj> <asm>" then "cc -no-pie -o <exe> <obj>".
package toolchain

import (
	"os"
	"os/exec"

	"github.com/pkg/errors"
)

// Toolchain names the assembler and linker binaries to invoke.
type Toolchain struct {
	Assembler string
	Linker    string
}

// Default is the toolchain used when no anemo.toml overrides it.
func Default() Toolchain {
	return Toolchain{Assembler: "as", Linker: "cc"}
}

// Assemble runs "<assembler> -o objPath asmPath", reporting the
// failing command string on error.
func (tc Toolchain) Assemble(asmPath, objPath string) error {
	cmd := exec.Command(tc.Assembler, "-o", objPath, asmPath)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return errors.Wrapf(err, "running %s", cmd.String())
	}
	return nil
}

// Link runs "<linker> -no-pie -o exePath objPath", reporting the
// failing command string on error.
func (tc Toolchain) Link(objPath, exePath string) error {
	cmd := exec.Command(tc.Linker, "-no-pie", "-o", exePath, objPath)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return errors.Wrapf(err, "running %s", cmd.String())
	}
	return nil
}
