package eval

import (
	"fmt"

	"lox/pkg/token"
)

// ErrorKind classifies a runtime error.
type ErrorKind uint8

const (
	UndefinedVariable ErrorKind = iota + 1
	TypeError
	NotCallable
	ArityMismatch
	NotAnInstance
	UndefinedProperty
	InvalidSuperclass
	StackOverflow
)

func (k ErrorKind) String() string {
	switch k {
	case UndefinedVariable:
		return "UndefinedVariable"
	case TypeError:
		return "TypeError"
	case NotCallable:
		return "NotCallable"
	case ArityMismatch:
		return "ArityMismatch"
	case NotAnInstance:
		return "NotAnInstance"
	case UndefinedProperty:
		return "UndefinedProperty"
	case InvalidSuperclass:
		return "InvalidSuperclass"
	case StackOverflow:
		return "StackOverflow"
	default:
		return "Unknown"
	}
}

// RuntimeError aborts the current Interpret call. Token points at the
// offending operator, name or call site.
type RuntimeError struct {
	Kind    ErrorKind
	Token   token.Token
	Message string
}

func (e *RuntimeError) Error() string { return e.Message }

// Line is the source line of the offending token.
func (e *RuntimeError) Line() int { return e.Token.Line }

func newRuntimeError(kind ErrorKind, tok token.Token, format string, a ...any) *RuntimeError {
	return &RuntimeError{Kind: kind, Token: tok, Message: fmt.Sprintf(format, a...)}
}

func undefinedVariable(name token.Token) *RuntimeError {
	return newRuntimeError(UndefinedVariable, name, "Undefined variable '%s'.", name.Lexeme)
}
