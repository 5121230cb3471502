//go:build !msx64

// Package abi exposes the calling-convention constants the semantic
// checker and code emitter both need. Which variant is compiled in is
// decided once, at compiler build time, via the msx64 build tag — not
// detected from the host running the compiler and not selectable at
// runtime. This file builds the System V AMD64 variant, the default.
package abi

// Name identifies the ABI variant baked into this compiler binary.
const Name = "sysv"

// ArgRegisters lists the integer/pointer argument registers in call
// order. Its length is the hard cap on glyph call arity.
var ArgRegisters = []string{"rdi", "rsi", "rdx", "rcx", "r8", "r9"}

// MaxCallArgs is len(ArgRegisters), spelled out for callers that only
// need the count.
const MaxCallArgs = 6

// ShadowSpace is the number of bytes the caller must reserve below the
// return address before every call, on top of any stack-passed
// arguments. System V requires none.
const ShadowSpace = 0

// PrintfSymbol is the symbol the emitted call instruction targets.
// System V links through the PLT.
const PrintfSymbol = "printf@PLT"
