package runtime

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"lox-lang/internal/ast"
	"lox-lang/internal/token"
)

// ============================================================
// Control flow signals
// ============================================================

// ExecSignal represents a control flow signal from statement execution.
type ExecSignal int

const (
	SigNone   ExecSignal = iota
	SigReturn            // return from function
)

// ExecResult carries a control flow signal and an optional value (for return).
// Returning is not an error: it travels up through blocks and loops as a
// result and is converted back into a value only at the call boundary.
type ExecResult struct {
	Signal ExecSignal
	Value  Value
}

var resultNone = ExecResult{Signal: SigNone}

// ============================================================
// Runtime error
// ============================================================

// RuntimeError represents an error during interpretation, located at the
// token that caused it.
type RuntimeError struct {
	Token   token.Token
	Message string
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("%s\n[line: %d]", e.Message, e.Token.Line)
}

func runtimeErr(tok token.Token, format string, args ...any) *RuntimeError {
	return &RuntimeError{Token: tok, Message: fmt.Sprintf(format, args...)}
}

// ============================================================
// Interpreter
// ============================================================

// DefaultMaxDepth is the default limit on nested calls.
const DefaultMaxDepth = 10000

// Interpreter walks the AST and executes it. It owns the global scope, so
// successive calls to Interpret (as in a REPL) see each other's definitions.
type Interpreter struct {
	globals *Environment
	env     *Environment
	output  io.Writer
	logger  *slog.Logger
	now     func() time.Time

	depth    int // calls currently active
	maxDepth int
}

// Option configures an Interpreter.
type Option func(*Interpreter)

// WithLogger sets the logger used for execution tracing.
func WithLogger(logger *slog.Logger) Option {
	return func(i *Interpreter) {
		if logger != nil {
			i.logger = logger
		}
	}
}

// WithClock sets the time source used by the clock() native.
func WithClock(now func() time.Time) Option {
	return func(i *Interpreter) {
		if now != nil {
			i.now = now
		}
	}
}

// WithMaxDepth limits how deeply calls may nest before execution stops with
// a "Stack overflow." runtime error. Non-positive values are ignored.
func WithMaxDepth(n int) Option {
	return func(i *Interpreter) {
		if n > 0 {
			i.maxDepth = n
		}
	}
}

// NewInterpreter creates a new interpreter writing print output to output,
// with the native functions registered in its global scope.
func NewInterpreter(output io.Writer, opts ...Option) *Interpreter {
	i := &Interpreter{
		output:   output,
		logger:   slog.New(slog.DiscardHandler),
		now:      time.Now,
		maxDepth: DefaultMaxDepth,
	}
	for _, opt := range opts {
		opt(i)
	}

	i.globals = NewEnvironment(nil)
	i.env = i.globals
	RegisterBuiltins(i.globals, i.now)
	return i
}

// Interpret executes statements in order. It stops at the first runtime
// error and returns it as a *RuntimeError; statements already executed keep
// their side effects.
func (i *Interpreter) Interpret(stmts []ast.Stmt) error {
	ctx := context.Background()
	start := time.Now()

	for _, stmt := range stmts {
		if _, err := i.execStmt(stmt); err != nil {
			i.env = i.globals
			i.depth = 0
			i.logger.LogAttrs(ctx, slog.LevelDebug, "execution halted",
				slog.Int("statements", len(stmts)),
				slog.Duration("elapsed", time.Since(start)),
				slog.String("error", err.Error()),
			)
			return err
		}
	}

	i.logger.LogAttrs(ctx, slog.LevelDebug, "execution finished",
		slog.Int("statements", len(stmts)),
		slog.Duration("elapsed", time.Since(start)),
	)
	return nil
}

// Globals returns the global environment.
func (i *Interpreter) Globals() *Environment {
	return i.globals
}

// ============================================================
// Statement execution
// ============================================================

func (i *Interpreter) execStmt(stmt ast.Stmt) (ExecResult, error) {
	switch s := stmt.(type) {
	case *ast.ExprStmt:
		_, err := i.evalExpr(s.Expr)
		return resultNone, err

	case *ast.PrintStmt:
		val, err := i.evalExpr(s.Expr)
		if err != nil {
			return resultNone, err
		}
		fmt.Fprintln(i.output, val.String())
		return resultNone, nil

	case *ast.VarStmt:
		return i.execVarDecl(s)

	case *ast.BlockStmt:
		return i.execBlock(s.Stmts, NewEnvironment(i.env))

	case *ast.IfStmt:
		return i.execIf(s)

	case *ast.WhileStmt:
		return i.execWhile(s)

	case *ast.FuncStmt:
		i.env.Define(s.Name.Lexeme, &Function{Decl: s, Closure: i.env})
		return resultNone, nil

	case *ast.ReturnStmt:
		var val Value = NilVal{}
		if s.Value != nil {
			v, err := i.evalExpr(s.Value)
			if err != nil {
				return resultNone, err
			}
			val = v
		}
		return ExecResult{Signal: SigReturn, Value: val}, nil

	default:
		return resultNone, fmt.Errorf("unhandled statement type: %T", stmt)
	}
}

func (i *Interpreter) execVarDecl(s *ast.VarStmt) (ExecResult, error) {
	var val Value = NilVal{}
	if s.Init != nil {
		v, err := i.evalExpr(s.Init)
		if err != nil {
			return resultNone, err
		}
		val = v
	}
	i.env.Define(s.Name.Lexeme, val)
	return resultNone, nil
}

func (i *Interpreter) execIf(s *ast.IfStmt) (ExecResult, error) {
	cond, err := i.evalExpr(s.Condition)
	if err != nil {
		return resultNone, err
	}

	if IsTruthy(cond) {
		return i.execStmt(s.Then)
	}
	if s.Else != nil {
		return i.execStmt(s.Else)
	}
	return resultNone, nil
}

func (i *Interpreter) execWhile(s *ast.WhileStmt) (ExecResult, error) {
	for {
		cond, err := i.evalExpr(s.Condition)
		if err != nil {
			return resultNone, err
		}
		if !IsTruthy(cond) {
			return resultNone, nil
		}

		result, err := i.execStmt(s.Body)
		if err != nil {
			return resultNone, err
		}
		if result.Signal == SigReturn {
			return result, nil // propagate return
		}
	}
}

// execBlock runs stmts in blockEnv and restores the previous environment on
// every exit path.
func (i *Interpreter) execBlock(stmts []ast.Stmt, blockEnv *Environment) (ExecResult, error) {
	prevEnv := i.env
	i.env = blockEnv
	defer func() { i.env = prevEnv }()

	for _, stmt := range stmts {
		result, err := i.execStmt(stmt)
		if err != nil {
			return resultNone, err
		}
		if result.Signal != SigNone {
			return result, nil // propagate signal
		}
	}
	return resultNone, nil
}

// ============================================================
// Expression evaluation
// ============================================================

func (i *Interpreter) evalExpr(expr ast.Expr) (Value, error) {
	switch e := expr.(type) {
	case *ast.LiteralExpr:
		return FromLiteral(e.Value), nil
	case *ast.GroupingExpr:
		return i.evalExpr(e.Expr)
	case *ast.UnaryExpr:
		return i.evalUnary(e)
	case *ast.BinaryExpr:
		return i.evalBinary(e)
	case *ast.LogicalExpr:
		return i.evalLogical(e)
	case *ast.VariableExpr:
		return i.env.Get(e.Name)
	case *ast.AssignExpr:
		val, err := i.evalExpr(e.Value)
		if err != nil {
			return nil, err
		}
		if err := i.env.Assign(e.Name, val); err != nil {
			return nil, err
		}
		return val, nil
	case *ast.CallExpr:
		return i.evalCall(e)
	default:
		return nil, fmt.Errorf("unhandled expression type: %T", expr)
	}
}

func (i *Interpreter) evalUnary(e *ast.UnaryExpr) (Value, error) {
	operand, err := i.evalExpr(e.Operand)
	if err != nil {
		return nil, err
	}

	switch e.Op.Kind {
	case token.BANG:
		return BoolVal(!IsTruthy(operand)), nil
	case token.MINUS:
		n, ok := operand.(NumberVal)
		if !ok {
			return nil, runtimeErr(e.Op, "Operand must be a number.")
		}
		return -n, nil
	default:
		return nil, runtimeErr(e.Op, "unknown unary operator '%s'", e.Op.Lexeme)
	}
}

func (i *Interpreter) evalBinary(e *ast.BinaryExpr) (Value, error) {
	left, err := i.evalExpr(e.Left)
	if err != nil {
		return nil, err
	}
	right, err := i.evalExpr(e.Right)
	if err != nil {
		return nil, err
	}

	switch e.Op.Kind {
	case token.EQ:
		return BoolVal(IsEqual(left, right)), nil
	case token.NEQ:
		return BoolVal(!IsEqual(left, right)), nil

	case token.PLUS:
		switch l := left.(type) {
		case NumberVal:
			if r, ok := right.(NumberVal); ok {
				return l + r, nil
			}
		case StringVal:
			if r, ok := right.(StringVal); ok {
				return l + r, nil
			}
		}
		return nil, runtimeErr(e.Op, "Operands must be two numbers or two strings.")
	}

	l, r, err := numberOperands(e.Op, left, right)
	if err != nil {
		return nil, err
	}

	switch e.Op.Kind {
	case token.MINUS:
		return l - r, nil
	case token.STAR:
		return l * r, nil
	case token.SLASH:
		return l / r, nil
	case token.GT:
		return BoolVal(l > r), nil
	case token.GTE:
		return BoolVal(l >= r), nil
	case token.LT:
		return BoolVal(l < r), nil
	case token.LTE:
		return BoolVal(l <= r), nil
	default:
		return nil, runtimeErr(e.Op, "unknown binary operator '%s'", e.Op.Lexeme)
	}
}

// numberOperands checks that both operands are numbers.
func numberOperands(op token.Token, left, right Value) (NumberVal, NumberVal, error) {
	l, lok := left.(NumberVal)
	r, rok := right.(NumberVal)
	if !lok || !rok {
		return 0, 0, runtimeErr(op, "Operands must be numbers.")
	}
	return l, r, nil
}

// evalLogical short-circuits: the right operand is evaluated only when the
// left one does not already decide the result, and the deciding operand
// itself (not a coerced bool) is the result.
func (i *Interpreter) evalLogical(e *ast.LogicalExpr) (Value, error) {
	left, err := i.evalExpr(e.Left)
	if err != nil {
		return nil, err
	}

	if e.Op.Kind == token.KW_OR {
		if IsTruthy(left) {
			return left, nil
		}
	} else if !IsTruthy(left) {
		return left, nil
	}

	return i.evalExpr(e.Right)
}

func (i *Interpreter) evalCall(e *ast.CallExpr) (Value, error) {
	callee, err := i.evalExpr(e.Callee)
	if err != nil {
		return nil, err
	}

	args := make([]Value, 0, len(e.Args))
	for _, argExpr := range e.Args {
		arg, err := i.evalExpr(argExpr)
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
	}

	fn, ok := callee.(Callable)
	if !ok {
		return nil, runtimeErr(e.Paren, "Can only call functions and classes.")
	}
	if len(args) != fn.Arity() {
		return nil, runtimeErr(e.Paren, "Expected %d arguments but got %d.", fn.Arity(), len(args))
	}

	if i.depth >= i.maxDepth {
		return nil, runtimeErr(e.Paren, "Stack overflow.")
	}
	i.depth++
	defer func() { i.depth-- }()

	result, err := fn.Call(i, args)
	if err != nil {
		if _, ok := err.(*RuntimeError); !ok {
			return nil, runtimeErr(e.Paren, "%s", err)
		}
		return nil, err
	}
	return result, nil
}
