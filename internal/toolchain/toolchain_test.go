package toolchain

import (
	"path/filepath"
	"testing"
)

func TestDefaultNamesStandardBinaries(t *testing.T) {
	tc := Default()
	if tc.Assembler != "as" {
		t.Errorf("Assembler = %q, want as", tc.Assembler)
	}
	if tc.Linker != "cc" {
		t.Errorf("Linker = %q, want cc", tc.Linker)
	}
}

func TestAssembleReportsMissingBinary(t *testing.T) {
	tc := Toolchain{Assembler: "no-such-assembler-binary", Linker: "cc"}
	err := tc.Assemble("in.s", filepath.Join(t.TempDir(), "out.o"))
	if err == nil {
		t.Fatalf("expected an error invoking a nonexistent assembler")
	}
}

func TestLinkReportsMissingBinary(t *testing.T) {
	tc := Toolchain{Assembler: "as", Linker: "no-such-linker-binary"}
	err := tc.Link("in.o", filepath.Join(t.TempDir(), "out"))
	if err == nil {
		t.Fatalf("expected an error invoking a nonexistent linker")
	}
}
