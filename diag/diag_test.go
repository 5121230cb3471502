package diag

import "testing"

func TestDiagnosticError(t *testing.T) {
	d := New("prog.anm", 5, 12, "unknown symbol '%s'", "x")
	want := "prog.anm:5:12: error: unknown symbol 'x'"
	if got := d.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestInternalError(t *testing.T) {
	i := NewInternal(2, 3, "loop stack underflow")
	want := "<internal>:2:3: loop stack underflow"
	if got := i.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestInternalPlainError(t *testing.T) {
	i := NewInternalPlain("too many call arguments: %d", 9)
	want := "fatal: too many call arguments: 9"
	if got := i.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}
