package lox

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"lox/pkg/eval"
)

func newTestSession() (*Session, *bytes.Buffer, *bytes.Buffer) {
	var out, errOut bytes.Buffer
	return NewSession(&out, &errOut, nil), &out, &errOut
}

func TestGoldenScripts(t *testing.T) {
	scripts, err := filepath.Glob(filepath.Join("testdata", "*.lox"))
	if err != nil {
		t.Fatal(err)
	}
	if len(scripts) == 0 {
		t.Fatal("no scripts in testdata")
	}

	for _, script := range scripts {
		t.Run(filepath.Base(script), func(t *testing.T) {
			want, err := os.ReadFile(strings.TrimSuffix(script, ".lox") + ".out")
			if err != nil {
				t.Fatal(err)
			}

			session, out, errOut := newTestSession()
			if err := session.RunFile(script); err != nil {
				t.Fatalf("run failed: %v\n%s", err, errOut.String())
			}
			if out.String() != string(want) {
				t.Errorf("output mismatch.\nexpected=%q\ngot=%q", string(want), out.String())
			}
		})
	}
}

func TestStaticErrorsStopExecution(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"print 1;\nprint ;", "[line 2] Error at ';': Expect expression.\n"},
		{"print 1; @", "[line 1] Error: Unexpected character '@'.\n"},
		{"print 1;\nreturn 2;", "[line 2] Error at 'return': Can't return from top-level code.\n"},
	}

	for i, tt := range tests {
		session, out, errOut := newTestSession()
		err := session.Run(tt.input)
		if !errors.Is(err, ErrStatic) {
			t.Fatalf("tests[%d] - expected ErrStatic, got %v", i, err)
		}
		if out.Len() != 0 {
			t.Errorf("tests[%d] - nothing should run, got output %q", i, out.String())
		}
		if errOut.String() != tt.expected {
			t.Errorf("tests[%d] - report wrong.\nexpected=%q\ngot=%q", i, tt.expected, errOut.String())
		}
		if !session.Reporter.HadError() {
			t.Errorf("tests[%d] - HadError not set", i)
		}
	}
}

func TestRuntimeErrorReported(t *testing.T) {
	session, out, errOut := newTestSession()
	err := session.Run("print \"before\";\nprint -\"x\";\nprint \"after\";")

	var rtErr *eval.RuntimeError
	if !errors.As(err, &rtErr) {
		t.Fatalf("expected *eval.RuntimeError, got %v", err)
	}
	if rtErr.Kind != eval.TypeError {
		t.Errorf("wrong kind %s", rtErr.Kind)
	}
	if out.String() != "before\n" {
		t.Errorf("wrong output %q", out.String())
	}
	if errOut.String() != "Operand must be a number.\n[line 2]\n" {
		t.Errorf("wrong report %q", errOut.String())
	}
	if !session.Reporter.HadRuntimeError() {
		t.Errorf("HadRuntimeError not set")
	}
}

func TestSessionKeepsGlobals(t *testing.T) {
	session, out, _ := newTestSession()

	lines := []string{
		"var greeting = \"hello\";",
		"class Greeter { greet(who) { return greeting + \" \" + who; } }",
		"print undefinedThing;",
		"print Greeter().greet(\"lox\");",
	}
	for _, line := range lines {
		session.Run(line)
	}

	if out.String() != "hello lox\n" {
		t.Fatalf("expected state to survive across runs, got %q", out.String())
	}
}

func TestRunFileMissing(t *testing.T) {
	session, _, _ := newTestSession()
	err := session.RunFile(filepath.Join(t.TempDir(), "missing.lox"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected a not-exist error, got %v", err)
	}
}
