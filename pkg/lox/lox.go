// Package lox wires the scanner, parser, resolver and interpreter into a
// single entry point.
package lox

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"lox/pkg/ast"
	"lox/pkg/eval"
	"lox/pkg/lexer"
	"lox/pkg/parser"
	"lox/pkg/report"
	"lox/pkg/resolver"
)

// ErrStatic is returned by Run when scanning, parsing or resolving failed.
// The individual errors have already gone to the reporter.
var ErrStatic = errors.New("lox: static errors")

// Session is one interpreter and its reporter. Globals persist across Run
// calls, which is what a REPL needs.
type Session struct {
	Reporter    *report.Reporter
	Interpreter *eval.Interpreter
}

// NewSession prints program output to out and diagnostics to errOut.
func NewSession(out, errOut io.Writer, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	reporter := report.New(errOut)
	return &Session{
		Reporter: reporter,
		Interpreter: eval.NewInterpreter(
			eval.WithOutput(out),
			eval.WithReporter(reporter),
			eval.WithLogger(logger),
		),
	}
}

// Parse scans, parses and resolves source. Every static error found is
// reported; if there was any, ErrStatic is returned.
func (s *Session) Parse(source string) (*ast.Program, error) {
	l := lexer.New(source)
	p := parser.New(l)
	program := p.ParseProgram()

	failed := false
	for _, err := range l.Errors() {
		s.Reporter.Static(err)
		failed = true
	}
	for _, err := range p.Errors() {
		s.Reporter.Static(err)
		failed = true
	}
	if failed {
		return nil, ErrStatic
	}

	if errs := resolver.New().Resolve(program.Statements); len(errs) != 0 {
		for _, err := range errs {
			s.Reporter.Static(err)
		}
		return nil, ErrStatic
	}
	return program, nil
}

// Run executes source. Static errors stop it before anything runs; a
// runtime error stops it at the failing statement.
func (s *Session) Run(source string) error {
	program, err := s.Parse(source)
	if err != nil {
		return err
	}
	return s.Interpreter.Interpret(program.Statements)
}

func (s *Session) RunFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("lox: read %s: %w", path, err)
	}
	return s.Run(string(data))
}
