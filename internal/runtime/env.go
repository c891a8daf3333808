package runtime

import "lox-lang/internal/token"

// Environment represents a variable scope with a parent chain. Environments
// are shared by pointer: a closure keeps its defining scope alive after the
// block or call that created it has returned.
type Environment struct {
	values    map[string]Value
	enclosing *Environment
}

// NewEnvironment creates a new environment with an optional enclosing scope.
func NewEnvironment(enclosing *Environment) *Environment {
	return &Environment{
		values:    make(map[string]Value),
		enclosing: enclosing,
	}
}

// Enclosing returns the parent scope, or nil for the global scope.
func (e *Environment) Enclosing() *Environment {
	return e.enclosing
}

// Define binds name in this scope. It always succeeds and may shadow an
// outer binding or replace one in the same scope.
func (e *Environment) Define(name string, value Value) {
	e.values[name] = value
}

// Get looks up a variable by walking the scope chain outward.
func (e *Environment) Get(name token.Token) (Value, error) {
	for env := e; env != nil; env = env.enclosing {
		if val, exists := env.values[name.Lexeme]; exists {
			return val, nil
		}
	}
	return nil, runtimeErr(name, "Undefined variable '%s'.", name.Lexeme)
}

// Assign updates the nearest existing binding of name. Unlike Define it never
// creates a binding.
func (e *Environment) Assign(name token.Token, value Value) error {
	for env := e; env != nil; env = env.enclosing {
		if _, exists := env.values[name.Lexeme]; exists {
			env.values[name.Lexeme] = value
			return nil
		}
	}
	return runtimeErr(name, "Undefined variable '%s'.", name.Lexeme)
}
