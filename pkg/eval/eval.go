package eval

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"lox/pkg/ast"
	"lox/pkg/token"
)

// MaxCallDepth bounds recursion so a runaway script fails with a runtime
// error instead of exhausting the goroutine stack.
const MaxCallDepth = 10000

// Reporter receives runtime errors that abort an Interpret call.
type Reporter interface {
	RuntimeError(line int, message string)
}

type Option func(*Interpreter)

// WithOutput redirects print statements. The default is os.Stdout.
func WithOutput(w io.Writer) Option {
	return func(i *Interpreter) { i.out = w }
}

func WithReporter(r Reporter) Option {
	return func(i *Interpreter) { i.reporter = r }
}

func WithLogger(l *slog.Logger) Option {
	return func(i *Interpreter) { i.logger = l }
}

// Interpreter walks resolved statements. The global frame lives as long as
// the interpreter, so successive Interpret calls share top-level state.
type Interpreter struct {
	globals *Environment
	env     *Environment

	out      io.Writer
	reporter Reporter
	logger   *slog.Logger

	callDepth  int
	frameDepth int
}

func NewInterpreter(opts ...Option) *Interpreter {
	globals := NewEnvironment()
	i := &Interpreter{
		globals: globals,
		env:     globals,
		out:     os.Stdout,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(i)
	}

	i.globals.Define("clock", &Builtin{
		Name: "clock",
		Fn: func(_ *Interpreter, _ []Object) (Object, error) {
			return &Number{Value: float64(time.Now().UnixNano()) / float64(time.Second)}, nil
		},
	})
	return i
}

// Globals is the process-lifetime frame at the root of every scope chain.
func (i *Interpreter) Globals() *Environment {
	return i.globals
}

// Interpret executes statements in order. The first runtime error stops the
// sequence, is passed to the reporter and returned.
func (i *Interpreter) Interpret(statements []ast.Statement) error {
	for _, stmt := range statements {
		if _, err := i.execute(stmt); err != nil {
			var rtErr *RuntimeError
			if errors.As(err, &rtErr) && i.reporter != nil {
				i.reporter.RuntimeError(rtErr.Line(), rtErr.Message)
			}
			return err
		}
	}
	return nil
}

func (i *Interpreter) execute(stmt ast.Statement) (*ReturnValue, error) {
	switch node := stmt.(type) {
	case *ast.ExpressionStatement:
		_, err := i.evaluate(node.Expression)
		return nil, err

	case *ast.PrintStatement:
		value, err := i.evaluate(node.Expression)
		if err != nil {
			return nil, err
		}
		_, err = fmt.Fprintln(i.out, value.Inspect())
		return nil, err

	case *ast.VarStatement:
		var value Object = NIL
		if node.Initializer != nil {
			v, err := i.evaluate(node.Initializer)
			if err != nil {
				return nil, err
			}
			value = v
		}
		i.env.Define(node.Name.Lexeme, value)
		return nil, nil

	case *ast.BlockStatement:
		return i.executeBlock(node.Statements, NewEnclosedEnvironment(i.env))

	case *ast.IfStatement:
		condition, err := i.evaluate(node.Condition)
		if err != nil {
			return nil, err
		}
		if isTruthy(condition) {
			return i.execute(node.Consequence)
		} else if node.Alternative != nil {
			return i.execute(node.Alternative)
		}
		return nil, nil

	case *ast.WhileStatement:
		return i.executeWhile(node)

	case *ast.FunctionStatement:
		fn := &Function{Declaration: node, Closure: i.env}
		i.env.Define(node.Name.Lexeme, fn)
		return nil, nil

	case *ast.ReturnStatement:
		var value Object = NIL
		if node.ReturnValue != nil {
			v, err := i.evaluate(node.ReturnValue)
			if err != nil {
				return nil, err
			}
			value = v
		}
		return &ReturnValue{Value: value}, nil

	case *ast.ClassStatement:
		return nil, i.executeClass(node)
	}
	return nil, nil
}

// executeBlock runs statements in env and restores the previous frame on
// every exit path.
func (i *Interpreter) executeBlock(statements []ast.Statement, env *Environment) (*ReturnValue, error) {
	previous := i.env
	i.env = env
	i.frameDepth++
	i.trace("push frame", slog.Int("depth", i.frameDepth))
	defer func() {
		i.env = previous
		i.trace("pop frame", slog.Int("depth", i.frameDepth))
		i.frameDepth--
	}()

	for _, stmt := range statements {
		ret, err := i.execute(stmt)
		if err != nil || ret != nil {
			return ret, err
		}
	}
	return nil, nil
}

func (i *Interpreter) executeWhile(ws *ast.WhileStatement) (*ReturnValue, error) {
	for {
		condition, err := i.evaluate(ws.Condition)
		if err != nil {
			return nil, err
		}
		if !isTruthy(condition) {
			return nil, nil
		}
		ret, err := i.execute(ws.Body)
		if err != nil || ret != nil {
			return ret, err
		}
	}
}

// executeClass binds the name first so methods can refer to the class,
// then builds the methods over a frame holding 'super' when there is a
// superclass, and finally assigns the finished class to the name.
func (i *Interpreter) executeClass(node *ast.ClassStatement) error {
	i.env.Define(node.Name.Lexeme, NIL)

	var superclass *Class
	if node.Superclass != nil {
		value, err := i.evaluate(node.Superclass)
		if err != nil {
			return err
		}
		class, ok := value.(*Class)
		if !ok {
			return newRuntimeError(InvalidSuperclass, node.Superclass.Name, "Superclass must be a class.")
		}
		superclass = class
	}

	closure := i.env
	if superclass != nil {
		closure = NewEnclosedEnvironment(i.env)
		closure.Define("super", superclass)
	}

	methods := make(map[string]*Function, len(node.Methods))
	for _, method := range node.Methods {
		methods[method.Name.Lexeme] = &Function{
			Declaration:   method,
			Closure:       closure,
			IsInitializer: method.Name.Lexeme == "init",
		}
	}

	class := &Class{Name: node.Name.Lexeme, Superclass: superclass, Methods: methods}
	i.trace("declare class", slog.String("class", class.Name), slog.Int("methods", len(methods)))
	return i.env.Assign(node.Name, class)
}

func (i *Interpreter) evaluate(expr ast.Expression) (Object, error) {
	switch node := expr.(type) {
	case *ast.Literal:
		return FromLiteral(node.Value), nil

	case *ast.Grouping:
		return i.evaluate(node.Expression)

	case *ast.Variable:
		return i.lookUpVariable(node.Name, node)

	case *ast.Assign:
		value, err := i.evaluate(node.Value)
		if err != nil {
			return nil, err
		}
		if distance, ok := node.Depth(); ok {
			i.env.AssignAt(distance, node.Name.Lexeme, value)
		} else if err := i.globals.Assign(node.Name, value); err != nil {
			return nil, err
		}
		return value, nil

	case *ast.Unary:
		right, err := i.evaluate(node.Right)
		if err != nil {
			return nil, err
		}
		return evalUnaryExpression(node.Token, right)

	case *ast.Binary:
		left, err := i.evaluate(node.Left)
		if err != nil {
			return nil, err
		}
		right, err := i.evaluate(node.Right)
		if err != nil {
			return nil, err
		}
		return evalBinaryExpression(node.Token, left, right)

	case *ast.Logical:
		left, err := i.evaluate(node.Left)
		if err != nil {
			return nil, err
		}
		if node.Token.Type == token.OR {
			if isTruthy(left) {
				return left, nil
			}
		} else if !isTruthy(left) {
			return left, nil
		}
		return i.evaluate(node.Right)

	case *ast.Call:
		return i.evalCall(node)

	case *ast.Get:
		object, err := i.evaluate(node.Object)
		if err != nil {
			return nil, err
		}
		instance, ok := object.(*Instance)
		if !ok {
			return nil, newRuntimeError(NotAnInstance, node.Name, "Only instances have properties.")
		}
		return instance.Get(node.Name)

	case *ast.Set:
		object, err := i.evaluate(node.Object)
		if err != nil {
			return nil, err
		}
		instance, ok := object.(*Instance)
		if !ok {
			return nil, newRuntimeError(NotAnInstance, node.Name, "Only instances have fields.")
		}
		value, err := i.evaluate(node.Value)
		if err != nil {
			return nil, err
		}
		instance.Set(node.Name, value)
		return value, nil

	case *ast.This:
		return i.lookUpVariable(node.Keyword, node)

	case *ast.Super:
		return i.evalSuper(node)
	}
	return nil, fmt.Errorf("unknown expression %T", expr)
}

// lookUpVariable reads a resolved reference from its declaring frame and
// an unresolved one from the globals.
func (i *Interpreter) lookUpVariable(name token.Token, expr ast.Resolvable) (Object, error) {
	if distance, ok := expr.Depth(); ok {
		return i.env.GetAt(distance, name.Lexeme), nil
	}
	return i.globals.Get(name)
}

func (i *Interpreter) evalCall(node *ast.Call) (Object, error) {
	callee, err := i.evaluate(node.Callee)
	if err != nil {
		return nil, err
	}

	args := make([]Object, 0, len(node.Arguments))
	for _, a := range node.Arguments {
		arg, err := i.evaluate(a)
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
	}

	function, ok := callee.(Callable)
	if !ok {
		return nil, newRuntimeError(NotCallable, node.Token, "Can only call functions and classes.")
	}
	if len(args) != function.Arity() {
		return nil, newRuntimeError(ArityMismatch, node.Token,
			"Expected %d arguments but got %d.", function.Arity(), len(args))
	}
	if i.callDepth >= MaxCallDepth {
		return nil, newRuntimeError(StackOverflow, node.Token, "Stack overflow.")
	}

	i.callDepth++
	defer func() { i.callDepth-- }()
	i.trace("call", slog.String("callee", function.Inspect()), slog.Int("argument-count", len(args)))
	return function.Call(i, args)
}

// evalSuper finds the superclass in the frame the resolver pointed at and
// 'this' in the frame just inside it.
func (i *Interpreter) evalSuper(node *ast.Super) (Object, error) {
	distance, _ := node.Depth()
	superclass, ok := i.env.GetAt(distance, "super").(*Class)
	if !ok {
		return nil, undefinedVariable(node.Keyword)
	}
	object, ok := i.env.GetAt(distance-1, "this").(*Instance)
	if !ok {
		return nil, newRuntimeError(UndefinedVariable, node.Keyword, "Undefined variable 'this'.")
	}

	method, ok := superclass.FindMethod(node.Method.Lexeme)
	if !ok {
		return nil, newRuntimeError(UndefinedProperty, node.Method, "Undefined property '%s'.", node.Method.Lexeme)
	}
	return method.Bind(object), nil
}

func evalUnaryExpression(operator token.Token, right Object) (Object, error) {
	switch operator.Type {
	case token.MINUS:
		n, ok := right.(*Number)
		if !ok {
			return nil, newRuntimeError(TypeError, operator, "Operand must be a number.")
		}
		return &Number{Value: -n.Value}, nil
	case token.BANG:
		return nativeBoolToBooleanObject(!isTruthy(right)), nil
	}
	return nil, newRuntimeError(TypeError, operator, "Unknown operator '%s'.", operator.Lexeme)
}

func evalBinaryExpression(operator token.Token, left, right Object) (Object, error) {
	switch operator.Type {
	case token.EQ:
		return nativeBoolToBooleanObject(isEqual(left, right)), nil
	case token.NOT_EQ:
		return nativeBoolToBooleanObject(!isEqual(left, right)), nil
	case token.PLUS:
		if l, ok := left.(*Number); ok {
			if r, ok := right.(*Number); ok {
				return &Number{Value: l.Value + r.Value}, nil
			}
		}
		if l, ok := left.(*String); ok {
			if r, ok := right.(*String); ok {
				return &String{Value: l.Value + r.Value}, nil
			}
		}
		return nil, newRuntimeError(TypeError, operator, "Operands must be two numbers or two strings.")
	}

	l, lok := left.(*Number)
	r, rok := right.(*Number)
	if !lok || !rok {
		return nil, newRuntimeError(TypeError, operator, "Operands must be numbers.")
	}

	switch operator.Type {
	case token.MINUS:
		return &Number{Value: l.Value - r.Value}, nil
	case token.ASTERISK:
		return &Number{Value: l.Value * r.Value}, nil
	case token.SLASH:
		return &Number{Value: l.Value / r.Value}, nil
	case token.LT:
		return nativeBoolToBooleanObject(l.Value < r.Value), nil
	case token.LTE:
		return nativeBoolToBooleanObject(l.Value <= r.Value), nil
	case token.GT:
		return nativeBoolToBooleanObject(l.Value > r.Value), nil
	case token.GTE:
		return nativeBoolToBooleanObject(l.Value >= r.Value), nil
	}
	return nil, newRuntimeError(TypeError, operator, "Unknown operator '%s'.", operator.Lexeme)
}

func (i *Interpreter) trace(msg string, attrs ...slog.Attr) {
	ctx := context.Background()
	if i.logger.Enabled(ctx, slog.LevelDebug) {
		i.logger.LogAttrs(ctx, slog.LevelDebug, msg, attrs...)
	}
}
