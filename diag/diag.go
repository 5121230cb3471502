// Package diag implements the compiler's position-qualified diagnostic
// format. Every user-source error (lex, parse, semantic) is reported
// through a Diagnostic; internal inconsistencies are reported through
// Internal. Neither is ever batched: the pipeline halts on the first
// one raised.
package diag

import "fmt"

// Diagnostic is a user-source error: something wrong with the program
// being compiled, at a precise source location.
type Diagnostic struct {
	File string
	Line int
	Col  int
	Msg  string
}

// New builds a Diagnostic at the given source coordinates.
func New(file string, line, col int, format string, args ...interface{}) *Diagnostic {
	return &Diagnostic{
		File: file,
		Line: line,
		Col:  col,
		Msg:  fmt.Sprintf(format, args...),
	}
}

// Error renders as "<file>:<line>:<col>: error: <message>".
func (d *Diagnostic) Error() string {
	return fmt.Sprintf("%s:%d:%d: error: %s", d.File, d.Line, d.Col, d.Msg)
}

// Internal is a compiler-bug diagnostic: something the semantic pass
// should have already ruled out slipped through to IR generation or
// code emission.
type Internal struct {
	Line int
	Col  int
	Msg  string
}

// NewInternal builds an Internal diagnostic at the given coordinates.
func NewInternal(line, col int, format string, args ...interface{}) *Internal {
	return &Internal{
		Line: line,
		Col:  col,
		Msg:  fmt.Sprintf(format, args...),
	}
}

// Error renders using the "<internal>" pseudo-file in place of a
// source path, since these diagnostics have no user-source origin.
func (i *Internal) Error() string {
	return fmt.Sprintf("<internal>:%d:%d: %s", i.Line, i.Col, i.Msg)
}

// InternalPlain is for internal errors with no meaningful position
// (e.g. an arity cap exceeded deep in codegen with no single source
// coordinate to blame).
type InternalPlain struct {
	Msg string
}

// NewInternalPlain builds a position-less internal diagnostic.
func NewInternalPlain(format string, args ...interface{}) *InternalPlain {
	return &InternalPlain{Msg: fmt.Sprintf(format, args...)}
}

func (i *InternalPlain) Error() string {
	return "fatal: " + i.Msg
}
