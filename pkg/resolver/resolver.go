// Package resolver performs the static pass that runs between parsing and
// evaluation. It pins every local variable reference, every 'this' and every
// 'super' to the number of scope hops between the reference and the scope
// that declares it. References it cannot pin are left unresolved and are
// looked up in the global frame at run time.
package resolver

import (
	"fmt"

	"lox/pkg/ast"
	"lox/pkg/token"
)

type functionType int

const (
	functionNone functionType = iota
	functionPlain
	functionInitializer
	functionMethod
)

type classType int

const (
	classNone classType = iota
	classPlain
	classSubclass
)

// Error is a static semantic error reported at a token.
type Error struct {
	Token   token.Token
	Message string
}

func (e *Error) Error() string {
	if e.Token.Type == token.EOF {
		return fmt.Sprintf("[line %d] Error at end: %s", e.Token.Line, e.Message)
	}
	return fmt.Sprintf("[line %d] Error at '%s': %s", e.Token.Line, e.Token.Lexeme, e.Message)
}

type Resolver struct {
	// Each scope maps a name to whether its initializer has finished.
	scopes []map[string]bool

	currentFunction functionType
	currentClass    classType

	errors []*Error
}

func New() *Resolver {
	return &Resolver{}
}

// Resolve annotates the statements in place and returns the errors found.
func (r *Resolver) Resolve(statements []ast.Statement) []*Error {
	r.resolveStatements(statements)
	return r.errors
}

func (r *Resolver) Errors() []*Error {
	return r.errors
}

func (r *Resolver) resolveStatements(statements []ast.Statement) {
	for _, s := range statements {
		r.resolveStatement(s)
	}
}

func (r *Resolver) resolveStatement(stmt ast.Statement) {
	switch s := stmt.(type) {
	case *ast.BlockStatement:
		r.beginScope()
		r.resolveStatements(s.Statements)
		r.endScope()

	case *ast.VarStatement:
		r.declare(s.Name)
		if s.Initializer != nil {
			r.resolveExpression(s.Initializer)
		}
		r.define(s.Name)

	case *ast.FunctionStatement:
		// Defined before the body so the function can call itself.
		r.declare(s.Name)
		r.define(s.Name)
		r.resolveFunction(s, functionPlain)

	case *ast.ClassStatement:
		r.resolveClass(s)

	case *ast.ExpressionStatement:
		r.resolveExpression(s.Expression)

	case *ast.PrintStatement:
		r.resolveExpression(s.Expression)

	case *ast.IfStatement:
		r.resolveExpression(s.Condition)
		r.resolveStatement(s.Consequence)
		if s.Alternative != nil {
			r.resolveStatement(s.Alternative)
		}

	case *ast.WhileStatement:
		r.resolveExpression(s.Condition)
		r.resolveStatement(s.Body)

	case *ast.ReturnStatement:
		if r.currentFunction == functionNone {
			r.errorAt(s.Token, "Can't return from top-level code.")
		}
		if s.ReturnValue != nil {
			if r.currentFunction == functionInitializer {
				r.errorAt(s.Token, "Can't return a value from an initializer.")
			}
			r.resolveExpression(s.ReturnValue)
		}
	}
}

func (r *Resolver) resolveClass(s *ast.ClassStatement) {
	enclosingClass := r.currentClass
	r.currentClass = classPlain
	defer func() { r.currentClass = enclosingClass }()

	r.declare(s.Name)
	r.define(s.Name)

	if s.Superclass != nil {
		if s.Superclass.Name.Lexeme == s.Name.Lexeme {
			r.errorAt(s.Superclass.Name, "A class can't inherit from itself.")
		}
		r.currentClass = classSubclass
		r.resolveExpression(s.Superclass)

		r.beginScope()
		r.peek()["super"] = true
		defer r.endScope()
	}

	r.beginScope()
	r.peek()["this"] = true

	for _, method := range s.Methods {
		kind := functionMethod
		if method.Name.Lexeme == "init" {
			kind = functionInitializer
		}
		r.resolveFunction(method, kind)
	}

	r.endScope()
}

func (r *Resolver) resolveFunction(fn *ast.FunctionStatement, kind functionType) {
	enclosingFunction := r.currentFunction
	r.currentFunction = kind

	r.beginScope()
	for _, param := range fn.Parameters {
		r.declare(param)
		r.define(param)
	}
	r.resolveStatements(fn.Body)
	r.endScope()

	r.currentFunction = enclosingFunction
}

func (r *Resolver) resolveExpression(expr ast.Expression) {
	switch e := expr.(type) {
	case *ast.Variable:
		if len(r.scopes) > 0 {
			if ready, declared := r.peek()[e.Name.Lexeme]; declared && !ready {
				r.errorAt(e.Name, "Can't read local variable in its own initializer.")
			}
		}
		r.resolveLocal(e, e.Name.Lexeme)

	case *ast.Assign:
		r.resolveExpression(e.Value)
		r.resolveLocal(e, e.Name.Lexeme)

	case *ast.This:
		if r.currentClass == classNone {
			r.errorAt(e.Keyword, "Can't use 'this' outside of a class.")
			return
		}
		r.resolveLocal(e, "this")

	case *ast.Super:
		switch r.currentClass {
		case classNone:
			r.errorAt(e.Keyword, "Can't use 'super' outside of a class.")
		case classPlain:
			r.errorAt(e.Keyword, "Can't use 'super' in a class with no superclass.")
		}
		r.resolveLocal(e, "super")

	case *ast.Binary:
		r.resolveExpression(e.Left)
		r.resolveExpression(e.Right)

	case *ast.Logical:
		r.resolveExpression(e.Left)
		r.resolveExpression(e.Right)

	case *ast.Unary:
		r.resolveExpression(e.Right)

	case *ast.Grouping:
		r.resolveExpression(e.Expression)

	case *ast.Call:
		r.resolveExpression(e.Callee)
		for _, arg := range e.Arguments {
			r.resolveExpression(arg)
		}

	case *ast.Get:
		r.resolveExpression(e.Object)

	case *ast.Set:
		r.resolveExpression(e.Value)
		r.resolveExpression(e.Object)

	case *ast.Literal:
	}
}

// resolveLocal walks the scope stack from the innermost scope outwards.
// A name found in no scope stays unresolved, i.e. global.
func (r *Resolver) resolveLocal(expr ast.Resolvable, name string) {
	for i := len(r.scopes) - 1; i >= 0; i-- {
		if _, ok := r.scopes[i][name]; ok {
			expr.Resolve(len(r.scopes) - 1 - i)
			return
		}
	}
}

func (r *Resolver) beginScope() {
	r.scopes = append(r.scopes, map[string]bool{})
}

func (r *Resolver) endScope() {
	r.scopes = r.scopes[:len(r.scopes)-1]
}

func (r *Resolver) peek() map[string]bool {
	return r.scopes[len(r.scopes)-1]
}

func (r *Resolver) declare(name token.Token) {
	if len(r.scopes) == 0 {
		return
	}
	// Redeclaring in the same scope is allowed and rebinds the name.
	r.peek()[name.Lexeme] = false
}

func (r *Resolver) define(name token.Token) {
	if len(r.scopes) == 0 {
		return
	}
	r.peek()[name.Lexeme] = true
}

func (r *Resolver) errorAt(tok token.Token, message string) {
	r.errors = append(r.errors, &Error{Token: tok, Message: message})
}
