package report

import (
	"bytes"
	"errors"
	"testing"
)

func TestStaticError(t *testing.T) {
	var out bytes.Buffer
	r := New(&out)

	r.Static(errors.New("[line 3] Error at 'x': Expect ';' after value."))

	if out.String() != "[line 3] Error at 'x': Expect ';' after value.\n" {
		t.Fatalf("wrong output %q", out.String())
	}
	if !r.HadError() || r.HadRuntimeError() {
		t.Fatalf("flags wrong: error=%t runtime=%t", r.HadError(), r.HadRuntimeError())
	}
	if r.ExitCode() != ExitStatic {
		t.Fatalf("expected exit code %d, got %d", ExitStatic, r.ExitCode())
	}
}

func TestRuntimeError(t *testing.T) {
	var out bytes.Buffer
	r := New(&out)

	r.RuntimeError(7, "Operands must be numbers.")

	if out.String() != "Operands must be numbers.\n[line 7]\n" {
		t.Fatalf("wrong output %q", out.String())
	}
	if r.HadError() || !r.HadRuntimeError() {
		t.Fatalf("flags wrong: error=%t runtime=%t", r.HadError(), r.HadRuntimeError())
	}
	if r.ExitCode() != ExitRuntime {
		t.Fatalf("expected exit code %d, got %d", ExitRuntime, r.ExitCode())
	}
}

func TestReset(t *testing.T) {
	r := New(&bytes.Buffer{})
	r.Static(errors.New("x"))
	r.RuntimeError(1, "y")
	r.Reset()

	if r.HadError() || r.HadRuntimeError() || r.ExitCode() != 0 {
		t.Fatalf("reset did not clear the flags")
	}
}
