//go:build msx64

package abi

// Name identifies the ABI variant baked into this compiler binary.
const Name = "msx64"

// ArgRegisters lists the integer/pointer argument registers in call
// order. Its length is the hard cap on glyph call arity.
var ArgRegisters = []string{"rcx", "rdx", "r8", "r9"}

// MaxCallArgs is len(ArgRegisters), spelled out for callers that only
// need the count.
const MaxCallArgs = 4

// ShadowSpace is the number of bytes the caller must reserve below the
// return address before every call, on top of any stack-passed
// arguments. Microsoft x64 requires 32 bytes around every call site,
// regardless of the callee's own arity.
const ShadowSpace = 32

// PrintfSymbol is the symbol the emitted call instruction targets.
// Microsoft x64 calls the CRT import directly, no PLT indirection.
const PrintfSymbol = "printf"
