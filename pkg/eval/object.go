package eval

import (
	"math"
	"strconv"

	"lox/pkg/ast"
	"lox/pkg/token"
)

// Object is the interface that all Lox values implement.
type Object interface {
	Kind() ObjectKind
	Inspect() string
}

// Callable is anything a call expression can invoke.
type Callable interface {
	Object
	Arity() int
	Call(interp *Interpreter, args []Object) (Object, error)
}

type Nil struct{}

func (n *Nil) Kind() ObjectKind { return KindNil }
func (n *Nil) Inspect() string  { return "nil" }

type Boolean struct {
	Value bool
}

func (b *Boolean) Kind() ObjectKind { return KindBoolean }
func (b *Boolean) Inspect() string  { return strconv.FormatBool(b.Value) }

type Number struct {
	Value float64
}

func (n *Number) Kind() ObjectKind { return KindNumber }

// Inspect prints integral values without a fractional part.
func (n *Number) Inspect() string {
	switch {
	case math.IsInf(n.Value, 1):
		return "inf"
	case math.IsInf(n.Value, -1):
		return "-inf"
	case math.IsNaN(n.Value):
		return "nan"
	}
	return strconv.FormatFloat(n.Value, 'f', -1, 64)
}

type String struct {
	Value string
}

func (s *String) Kind() ObjectKind { return KindString }
func (s *String) Inspect() string  { return s.Value }

// ReturnValue is the completion produced by a return statement. It travels
// up through enclosing blocks and loops and is consumed by Function.Call.
type ReturnValue struct {
	Value Object
}

// Function is a user-declared function or method together with the frame
// it closes over.
type Function struct {
	Declaration   *ast.FunctionStatement
	Closure       *Environment
	IsInitializer bool
}

func (f *Function) Kind() ObjectKind { return KindFunction }
func (f *Function) Inspect() string  { return "<fn " + f.Declaration.Name.Lexeme + ">" }
func (f *Function) Arity() int       { return len(f.Declaration.Parameters) }

func (f *Function) Call(interp *Interpreter, args []Object) (Object, error) {
	env := NewEnclosedEnvironment(f.Closure)
	for i, param := range f.Declaration.Parameters {
		env.Define(param.Lexeme, args[i])
	}

	ret, err := interp.executeBlock(f.Declaration.Body, env)
	if err != nil {
		return nil, err
	}

	if f.IsInitializer {
		return f.Closure.GetAt(0, "this"), nil
	}
	if ret != nil {
		return ret.Value, nil
	}
	return NIL, nil
}

// Bind returns a copy of the method whose closure defines 'this'.
func (f *Function) Bind(instance *Instance) *Function {
	env := NewEnclosedEnvironment(f.Closure)
	env.Define("this", instance)
	return &Function{Declaration: f.Declaration, Closure: env, IsInitializer: f.IsInitializer}
}

// Builtin is a function implemented in Go.
type Builtin struct {
	Name   string
	Params int
	Fn     func(interp *Interpreter, args []Object) (Object, error)
}

func (b *Builtin) Kind() ObjectKind { return KindBuiltin }
func (b *Builtin) Inspect() string  { return "<native fn>" }
func (b *Builtin) Arity() int       { return b.Params }

func (b *Builtin) Call(interp *Interpreter, args []Object) (Object, error) {
	return b.Fn(interp, args)
}

type Class struct {
	Name       string
	Superclass *Class // nil for a root class
	Methods    map[string]*Function
}

func (c *Class) Kind() ObjectKind { return KindClass }
func (c *Class) Inspect() string  { return c.Name }

// FindMethod looks the method up on the class, then on its ancestors.
func (c *Class) FindMethod(name string) (*Function, bool) {
	for class := c; class != nil; class = class.Superclass {
		if method, ok := class.Methods[name]; ok {
			return method, true
		}
	}
	return nil, false
}

func (c *Class) Arity() int {
	if initializer, ok := c.FindMethod("init"); ok {
		return initializer.Arity()
	}
	return 0
}

// Call constructs a new instance and runs its initializer, if any.
func (c *Class) Call(interp *Interpreter, args []Object) (Object, error) {
	instance := &Instance{Class: c, Fields: make(map[string]Object)}
	if initializer, ok := c.FindMethod("init"); ok {
		if _, err := initializer.Bind(instance).Call(interp, args); err != nil {
			return nil, err
		}
	}
	return instance, nil
}

type Instance struct {
	Class  *Class
	Fields map[string]Object
}

func (i *Instance) Kind() ObjectKind { return KindInstance }
func (i *Instance) Inspect() string  { return i.Class.Name + " instance" }

// Get returns a field, or a method bound to this instance. Fields shadow
// methods.
func (i *Instance) Get(name token.Token) (Object, error) {
	if value, ok := i.Fields[name.Lexeme]; ok {
		return value, nil
	}
	if method, ok := i.Class.FindMethod(name.Lexeme); ok {
		return method.Bind(i), nil
	}
	return nil, newRuntimeError(UndefinedProperty, name, "Undefined property '%s'.", name.Lexeme)
}

func (i *Instance) Set(name token.Token, value Object) {
	i.Fields[name.Lexeme] = value
}

func isTruthy(obj Object) bool {
	switch obj := obj.(type) {
	case *Nil:
		return false
	case *Boolean:
		return obj.Value
	default:
		return true
	}
}

// isEqual compares primitives by value and everything else by identity.
func isEqual(left, right Object) bool {
	switch l := left.(type) {
	case *Nil:
		_, ok := right.(*Nil)
		return ok
	case *Boolean:
		r, ok := right.(*Boolean)
		return ok && l.Value == r.Value
	case *Number:
		r, ok := right.(*Number)
		return ok && l.Value == r.Value
	case *String:
		r, ok := right.(*String)
		return ok && l.Value == r.Value
	default:
		return left == right
	}
}
