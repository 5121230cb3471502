// Package ir defines the compiler's intermediate representation: a
// flat, linear sequence of three-address-ish instructions per
// procedure, with explicit labels and jumps standing in for the
// source-level control-flow statements that produced them.
package ir

import "github.com/anemo-lang/anemo/ast"

// BinOp identifies a binary IR operation. It mirrors ast.BinaryOp
// one-for-one but is kept distinct: IR is the point past which the
// codegen stage should never need to look back at the AST.
type BinOp int

const (
	Add BinOp = iota
	Sub
	Mul
	Div
	And
	Or
	Eq
	Ne
	Lt
	Gt
	Le
	Ge
)

// UnOp identifies a unary IR operation.
type UnOp int

const (
	Neg UnOp = iota
	Flip
)

// Op identifies the shape of a single Instr.
type Op int

const (
	Label Op = iota
	Jmp
	JmpFalse

	ImmInt
	ImmBool
	ImmStr
	LoadVar
	StoreVar

	Bin
	Un

	Call
	Print
	Ret
)

// Instr is one IR instruction. Not every field is meaningful for
// every Op; which ones are is documented per-Op below. Temporaries and
// variables are both referenced by small integer indices, scoped to
// the enclosing Function — Dst/Src1/Src2 name temporaries, VarIndex
// names a slot in Function.Vars.
type Instr struct {
	Op   Op
	Line int
	Col  int

	Dst  int // ImmInt/ImmBool/ImmStr/LoadVar/Bin/Un/Call: destination temp (-1 if none)
	Src1 int // StoreVar/Bin/Un/JmpFalse/Print/Ret: a source temp
	Src2 int // Bin: the right-hand source temp
	Imm  int64

	VarIndex int // LoadVar/StoreVar: index into Function.Vars

	Label  int // Label/Jmp/JmpFalse: target or defined label id
	BinOp  BinOp
	UnOp   UnOp

	Name string // Call: callee name
	Args []int  // Call: argument temps, in order

	Type     ast.Type // Call (return type)/Print (operand type)
	HasValue bool     // Ret: whether Src1 holds a return value
}

// Var is one stack-slot-backed variable: a parameter or a bind/morph
// target. Its index in Function.Vars is what Instr.VarIndex refers to.
type Var struct {
	Name    string
	Type    ast.Type
	Mutable bool
	IsParam bool
}

// Function is one procedure's IR: its variable table and its linear
// instruction stream.
type Function struct {
	Name       string
	ReturnType ast.Type
	Vars       []Var
	ParamCount int
	TempCount  int
	Code       []Instr
}

// SlotCount is the number of 8-byte stack slots this function needs:
// one per variable plus one per temporary.
func (f *Function) SlotCount() int {
	return len(f.Vars) + f.TempCount
}

// String is one entry in the program's deduplicated string table.
type String struct {
	ID    int
	Value string
}

// Program is the IR for an entire translation unit: every procedure,
// plus the shared, interned string table chant/text literals draw
// from.
type Program struct {
	Functions []Function
	Strings   []String
}
