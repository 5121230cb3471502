package abi

import "testing"

func TestArgRegistersMatchesMaxCallArgs(t *testing.T) {
	if len(ArgRegisters) != MaxCallArgs {
		t.Errorf("len(ArgRegisters) = %d, MaxCallArgs = %d, want equal", len(ArgRegisters), MaxCallArgs)
	}
}

func TestNameIsKnown(t *testing.T) {
	if Name != "sysv" && Name != "msx64" {
		t.Errorf("Name = %q, want sysv or msx64", Name)
	}
}

func TestShadowSpaceMatchesVariant(t *testing.T) {
	switch Name {
	case "sysv":
		if ShadowSpace != 0 {
			t.Errorf("ShadowSpace = %d, want 0 for sysv", ShadowSpace)
		}
	case "msx64":
		if ShadowSpace != 32 {
			t.Errorf("ShadowSpace = %d, want 32 for msx64", ShadowSpace)
		}
	}
}

func TestPrintfSymbolIsSet(t *testing.T) {
	if PrintfSymbol == "" {
		t.Errorf("PrintfSymbol is empty")
	}
}
