package runtime

import (
	"fmt"

	"lox-lang/internal/ast"
)

// Callable is implemented by every value that can appear as the callee of a
// call expression.
type Callable interface {
	Value
	Arity() int
	Call(interp *Interpreter, args []Value) (Value, error)
}

// Function is a user-defined function together with the environment that was
// active where it was declared.
type Function struct {
	Decl    *ast.FuncStmt
	Closure *Environment
}

func (f *Function) String() string { return fmt.Sprintf("<fn %s>", f.Decl.Name.Lexeme) }

// Arity returns the number of declared parameters.
func (f *Function) Arity() int { return len(f.Decl.Params) }

// Call runs the body in a fresh scope whose parent is the closure, not the
// caller's scope. A return signal from the body becomes the call's value.
func (f *Function) Call(interp *Interpreter, args []Value) (Value, error) {
	env := NewEnvironment(f.Closure)
	for idx, param := range f.Decl.Params {
		env.Define(param.Lexeme, args[idx])
	}

	result, err := interp.execBlock(f.Decl.Body, env)
	if err != nil {
		return nil, err
	}
	if result.Signal == SigReturn {
		return result.Value, nil
	}
	return NilVal{}, nil
}

// NativeFn is the Go signature for host-provided functions.
type NativeFn func(interp *Interpreter, args []Value) (Value, error)

// Native is a host-provided function.
type Native struct {
	Name    string
	NParams int
	Fn      NativeFn
}

func (n *Native) String() string { return "<native fn>" }

// Arity returns the fixed number of arguments the native accepts.
func (n *Native) Arity() int { return n.NParams }

// Call invokes the host function.
func (n *Native) Call(interp *Interpreter, args []Value) (Value, error) {
	return n.Fn(interp, args)
}
