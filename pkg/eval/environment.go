package eval

import "lox/pkg/token"

// Environment is one frame of the scope chain. Frames only point outwards,
// so a closure keeps exactly the frames it can still reach alive.
type Environment struct {
	store map[string]Object
	outer *Environment
}

func NewEnvironment() *Environment {
	return &Environment{store: make(map[string]Object)}
}

func NewEnclosedEnvironment(outer *Environment) *Environment {
	env := NewEnvironment()
	env.outer = outer
	return env
}

// Define binds name in this frame, replacing any previous binding.
func (e *Environment) Define(name string, val Object) {
	e.store[name] = val
}

func (e *Environment) Get(name token.Token) (Object, error) {
	for env := e; env != nil; env = env.outer {
		if obj, ok := env.store[name.Lexeme]; ok {
			return obj, nil
		}
	}
	return nil, undefinedVariable(name)
}

// Assign updates the nearest frame that binds name. It never creates a
// binding.
func (e *Environment) Assign(name token.Token, val Object) error {
	for env := e; env != nil; env = env.outer {
		if _, ok := env.store[name.Lexeme]; ok {
			env.store[name.Lexeme] = val
			return nil
		}
	}
	return undefinedVariable(name)
}

// Ancestor follows distance outer links; 0 is the frame itself.
func (e *Environment) Ancestor(distance int) *Environment {
	env := e
	for i := 0; i < distance; i++ {
		env = env.outer
	}
	return env
}

// GetAt reads name from the frame distance hops out. It returns NIL when the
// frame does not bind name, which the resolver rules out.
func (e *Environment) GetAt(distance int, name string) Object {
	if obj, ok := e.Ancestor(distance).store[name]; ok {
		return obj
	}
	return NIL
}

func (e *Environment) AssignAt(distance int, name string, val Object) {
	e.Ancestor(distance).store[name] = val
}

// Outer returns the enclosing frame, or nil for the global frame.
func (e *Environment) Outer() *Environment {
	return e.outer
}

// Names lists the bindings of this frame only.
func (e *Environment) Names() []string {
	names := make([]string, 0, len(e.store))
	for name := range e.store {
		names = append(names, name)
	}
	return names
}
