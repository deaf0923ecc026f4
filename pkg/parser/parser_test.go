package parser

import (
	"testing"

	"lox/pkg/ast"
	"lox/pkg/lexer"
)

func parse(t *testing.T, input string) *ast.Program {
	t.Helper()
	l := lexer.New(input)
	p := New(l)
	program := p.ParseProgram()
	checkParserErrors(t, p)
	return program
}

func TestReturnStatements(t *testing.T) {
	input := `
fun f() {
  return 5;
  return;
  return a + b;
}
`
	program := parse(t, input)

	if len(program.Statements) != 1 {
		t.Fatalf("program.Statements does not contain 1 statement. got=%d",
			len(program.Statements))
	}
	fn, ok := program.Statements[0].(*ast.FunctionStatement)
	if !ok {
		t.Fatalf("stmt not *ast.FunctionStatement. got=%T", program.Statements[0])
	}
	if len(fn.Body) != 3 {
		t.Fatalf("function body does not contain 3 statements. got=%d", len(fn.Body))
	}

	expected := []string{"return 5;", "return;", "return (a + b);"}
	for i, stmt := range fn.Body {
		returnStmt, ok := stmt.(*ast.ReturnStatement)
		if !ok {
			t.Errorf("stmt not *ast.ReturnStatement. got=%T", stmt)
			continue
		}
		if returnStmt.TokenLiteral() != "return" {
			t.Errorf("returnStmt.TokenLiteral not 'return', got %q",
				returnStmt.TokenLiteral())
		}
		if returnStmt.String() != expected[i] {
			t.Errorf("tests[%d] - expected %q, got %q", i, expected[i], returnStmt.String())
		}
	}
}

func TestFunctionStatement(t *testing.T) {
	input := `fun add(x, y) {
  return x + y;
}
`
	program := parse(t, input)

	if len(program.Statements) != 1 {
		t.Fatalf("program.Statements does not contain 1 statements. got=%d",
			len(program.Statements))
	}

	stmt, ok := program.Statements[0].(*ast.FunctionStatement)
	if !ok {
		t.Fatalf("program.Statements[0] is not ast.FunctionStatement. got=%T",
			program.Statements[0])
	}

	if stmt.Name.Lexeme != "add" {
		t.Fatalf("function name not 'add'. got=%q", stmt.Name.Lexeme)
	}

	if len(stmt.Parameters) != 2 {
		t.Fatalf("function has wrong parameters count. got=%d",
			len(stmt.Parameters))
	}

	if stmt.Parameters[0].Lexeme != "x" {
		t.Fatalf("parameter 0 is not 'x'. got=%q", stmt.Parameters[0].Lexeme)
	}

	if stmt.Parameters[1].Lexeme != "y" {
		t.Fatalf("parameter 1 is not 'y'. got=%q", stmt.Parameters[1].Lexeme)
	}

	if len(stmt.Body) != 1 {
		t.Fatalf("function body has wrong statements count. got=%d",
			len(stmt.Body))
	}

	returnStmt, ok := stmt.Body[0].(*ast.ReturnStatement)
	if !ok {
		t.Fatalf("function body stmt is not ast.ReturnStatement. got=%T",
			stmt.Body[0])
	}

	binary, ok := returnStmt.ReturnValue.(*ast.Binary)
	if !ok {
		t.Fatalf("return value is not ast.Binary. got=%T", returnStmt.ReturnValue)
	}
	if binary.Operator != "+" {
		t.Fatalf("operator is not '+'. got=%q", binary.Operator)
	}
}

func TestOperatorPrecedence(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"-a * b;", "((-a) * b);"},
		{"!-a;", "(!(-a));"},
		{"a + b * c;", "(a + (b * c));"},
		{"a + b - c;", "((a + b) - c);"},
		{"a < b == c > d;", "((a < b) == (c > d));"},
		{"a <= b != c >= d;", "((a <= b) != (c >= d));"},
		{"a or b and c;", "(a or (b and c));"},
		{"a == b or c;", "((a == b) or c);"},
		{"(a + b) * c;", "((group (a + b)) * c);"},
		{"a = b = c;", "(a = (b = c));"},
		{"a.b.c = d or e;", "(a.b.c = (d or e));"},
		{"f(a, b)(c);", "f(a, b)(c);"},
		{"-obj.field;", "(-obj.field);"},
		{"super.method(1);", "super.method(1);"},
		{"this.x = 1;", "(this.x = 1);"},
		{"nil == false;", "(nil == false);"},
		{`"s" + 2.5;`, `("s" + 2.5);`},
	}

	for i, tt := range tests {
		program := parse(t, tt.input)
		if len(program.Statements) != 1 {
			t.Fatalf("tests[%d] - expected 1 statement, got %d", i, len(program.Statements))
		}
		actual := program.String()
		if actual != tt.expected {
			t.Errorf("tests[%d] - expected=%q, got=%q", i, tt.expected, actual)
		}
	}
}

func TestClassStatement(t *testing.T) {
	input := `class B < A {
  init(x) { this.x = x; }
  greet() { return super.greet(); }
}`
	program := parse(t, input)

	class, ok := program.Statements[0].(*ast.ClassStatement)
	if !ok {
		t.Fatalf("stmt not *ast.ClassStatement. got=%T", program.Statements[0])
	}
	if class.Name.Lexeme != "B" {
		t.Errorf("class name not 'B'. got=%q", class.Name.Lexeme)
	}
	if class.Superclass == nil || class.Superclass.Name.Lexeme != "A" {
		t.Fatalf("superclass not 'A'. got=%v", class.Superclass)
	}
	if len(class.Methods) != 2 {
		t.Fatalf("expected 2 methods, got %d", len(class.Methods))
	}
	if class.Methods[0].Name.Lexeme != "init" || len(class.Methods[0].Parameters) != 1 {
		t.Errorf("first method wrong: %s", class.Methods[0].String())
	}
	if class.Methods[1].Name.Lexeme != "greet" {
		t.Errorf("second method wrong: %s", class.Methods[1].String())
	}
}

func TestForDesugarsToWhile(t *testing.T) {
	program := parse(t, `for (var i = 0; i < 3; i = i + 1) print i;`)

	block, ok := program.Statements[0].(*ast.BlockStatement)
	if !ok {
		t.Fatalf("for with initializer should be a block. got=%T", program.Statements[0])
	}
	if _, ok := block.Statements[0].(*ast.VarStatement); !ok {
		t.Fatalf("first statement not the initializer. got=%T", block.Statements[0])
	}
	loop, ok := block.Statements[1].(*ast.WhileStatement)
	if !ok {
		t.Fatalf("second statement not a while loop. got=%T", block.Statements[1])
	}
	body, ok := loop.Body.(*ast.BlockStatement)
	if !ok || len(body.Statements) != 2 {
		t.Fatalf("loop body should hold the body and the increment. got=%s", loop.Body.String())
	}
	if body.Statements[1].String() != "(i = (i + 1));" {
		t.Errorf("increment wrong. got=%q", body.Statements[1].String())
	}
}

func TestEmptyForClauses(t *testing.T) {
	program := parse(t, `for (;;) print 1;`)

	loop, ok := program.Statements[0].(*ast.WhileStatement)
	if !ok {
		t.Fatalf("for without initializer should be a bare while. got=%T", program.Statements[0])
	}
	if loop.Condition.String() != "true" {
		t.Errorf("missing condition should default to true. got=%q", loop.Condition.String())
	}
}

func TestIfElse(t *testing.T) {
	program := parse(t, `if (a) print 1; else if (b) print 2; else { print 3; }`)
	expected := "if (a) print 1; else if (b) print 2; else { print 3; }"
	if program.String() != expected {
		t.Fatalf("expected=%q, got=%q", expected, program.String())
	}
}

func TestParserErrors(t *testing.T) {
	tests := []struct {
		input    string
		expected []string
	}{
		{"print ;", []string{"[line 1] Error at ';': Expect expression."}},
		{"var = 1;", []string{"[line 1] Error at '=': Expect variable name."}},
		{"1 + 2 = 3;", []string{"[line 1] Error at '=': Invalid assignment target."}},
		{"print 1", []string{"[line 1] Error at end: Expect ';' after value."}},
		{"class { }", []string{"[line 1] Error at '{': Expect class name."}},
		{"a.;", []string{"[line 1] Error at ';': Expect property name after '.'."}},
		{"super;", []string{"[line 1] Error at ';': Expect '.' after 'super'."}},
		{"{ print 1;", []string{"[line 1] Error at end: Expect '}' after block."}},
		{
			"var a = ;\nprint a;\nfun (x) {}",
			[]string{
				"[line 1] Error at ';': Expect expression.",
				"[line 3] Error at '(': Expect function name.",
			},
		},
	}

	for i, tt := range tests {
		p := New(lexer.New(tt.input))
		p.ParseProgram()

		errs := p.Errors()
		if len(errs) != len(tt.expected) {
			t.Fatalf("tests[%d] - expected %d errors, got %d: %v", i, len(tt.expected), len(errs), errs)
		}
		for j, msg := range tt.expected {
			if errs[j].Error() != msg {
				t.Errorf("tests[%d] - error %d wrong. expected=%q, got=%q", i, j, msg, errs[j].Error())
			}
		}
	}
}

func TestRecoveryKeepsLaterStatements(t *testing.T) {
	p := New(lexer.New("var a = ;\nprint 2;"))
	program := p.ParseProgram()

	if len(p.Errors()) != 1 {
		t.Fatalf("expected 1 error, got %v", p.Errors())
	}
	if len(program.Statements) != 1 {
		t.Fatalf("expected the print statement to survive, got %d statements", len(program.Statements))
	}
	if program.Statements[0].String() != "print 2;" {
		t.Errorf("wrong surviving statement %q", program.Statements[0].String())
	}
}

func TestTooManyArguments(t *testing.T) {
	args := "0"
	for i := 1; i <= 255; i++ {
		args += ", 0"
	}
	p := New(lexer.New("f(" + args + ");"))
	program := p.ParseProgram()

	errs := p.Errors()
	if len(errs) != 1 || errs[0].Message != "Can't have more than 255 arguments." {
		t.Fatalf("expected a single argument-limit error, got %v", errs)
	}
	if len(program.Statements) != 1 {
		t.Fatalf("argument-limit error should not drop the statement")
	}
}

func checkParserErrors(t *testing.T, p *Parser) {
	t.Helper()
	errors := p.Errors()
	if len(errors) == 0 {
		return
	}

	t.Errorf("parser has %d errors", len(errors))
	for _, msg := range errors {
		t.Errorf("parser error: %q", msg.Error())
	}
	t.FailNow()
}
