package eval

import (
	"errors"
	"testing"

	"lox/pkg/token"
)

func ident(name string) token.Token {
	return token.Token{Type: token.IDENT, Lexeme: name, Line: 1}
}

func TestDefineThenGet(t *testing.T) {
	env := NewEnvironment()
	value := &Number{Value: 3}
	env.Define("a", value)

	got, err := env.Get(ident("a"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != value {
		t.Fatalf("expected the defined object back, got %v", got)
	}
}

func TestRedefineOverwrites(t *testing.T) {
	env := NewEnvironment()
	env.Define("a", &Number{Value: 1})
	env.Define("a", &String{Value: "two"})

	got, _ := env.Get(ident("a"))
	if got.Inspect() != "two" {
		t.Fatalf("expected redefinition to win, got %s", got.Inspect())
	}
}

func TestGetWalksOutward(t *testing.T) {
	global := NewEnvironment()
	global.Define("a", TRUE)
	inner := NewEnclosedEnvironment(NewEnclosedEnvironment(global))

	got, err := inner.Get(ident("a"))
	if err != nil || got != TRUE {
		t.Fatalf("expected TRUE from the global frame, got %v (%v)", got, err)
	}
}

func TestGetUndefined(t *testing.T) {
	env := NewEnclosedEnvironment(NewEnvironment())
	_, err := env.Get(ident("missing"))

	var rtErr *RuntimeError
	if !errors.As(err, &rtErr) {
		t.Fatalf("expected *RuntimeError, got %T", err)
	}
	if rtErr.Kind != UndefinedVariable {
		t.Errorf("wrong kind %s", rtErr.Kind)
	}
	if rtErr.Message != "Undefined variable 'missing'." {
		t.Errorf("wrong message %q", rtErr.Message)
	}
}

func TestAssignMutatesNearestBinding(t *testing.T) {
	global := NewEnvironment()
	global.Define("a", &Number{Value: 1})
	middle := NewEnclosedEnvironment(global)
	middle.Define("a", &Number{Value: 2})
	inner := NewEnclosedEnvironment(middle)

	if err := inner.Assign(ident("a"), &Number{Value: 3}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := middle.GetAt(0, "a").Inspect(); got != "3" {
		t.Errorf("middle frame not updated, got %s", got)
	}
	if got := global.GetAt(0, "a").Inspect(); got != "1" {
		t.Errorf("global frame should be untouched, got %s", got)
	}
	if _, ok := inner.store["a"]; ok {
		t.Errorf("assign must not create a binding in the current frame")
	}
}

func TestAssignUndefined(t *testing.T) {
	env := NewEnvironment()
	err := env.Assign(ident("nope"), NIL)

	var rtErr *RuntimeError
	if !errors.As(err, &rtErr) || rtErr.Kind != UndefinedVariable {
		t.Fatalf("expected UndefinedVariable, got %v", err)
	}
	if _, ok := env.store["nope"]; ok {
		t.Fatalf("failed assign created a binding")
	}
}

func TestAncestorAndDistanceAccess(t *testing.T) {
	global := NewEnvironment()
	a := NewEnclosedEnvironment(global)
	b := NewEnclosedEnvironment(a)

	if b.Ancestor(0) != b || b.Ancestor(1) != a || b.Ancestor(2) != global {
		t.Fatalf("ancestor walked the wrong number of links")
	}

	a.Define("x", &String{Value: "outer"})
	b.Define("x", &String{Value: "shadow"})

	if got := b.GetAt(1, "x").Inspect(); got != "outer" {
		t.Errorf("GetAt(1) should skip the shadowing frame, got %s", got)
	}

	b.AssignAt(1, "x", &String{Value: "changed"})
	if got := a.GetAt(0, "x").Inspect(); got != "changed" {
		t.Errorf("AssignAt(1) did not land on the declaring frame, got %s", got)
	}
	if got := b.GetAt(0, "x").Inspect(); got != "shadow" {
		t.Errorf("AssignAt(1) touched the shadowing frame, got %s", got)
	}
}
