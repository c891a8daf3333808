// Package ast defines the abstract syntax tree for Lox.
//
// Expressions and statements are closed sets: every node type lives in this
// package and is sealed by an unexported marker method, so consumers dispatch
// with exhaustive type switches.
package ast

import "lox-lang/internal/token"

// ============================================================
// Node interfaces
// ============================================================

// Node is the interface implemented by all AST nodes.
type Node interface {
	nodeNode()
}

// Expr is the interface for expression nodes.
type Expr interface {
	Node
	exprNode()
}

// Stmt is the interface for statement nodes.
type Stmt interface {
	Node
	stmtNode()
}

// ============================================================
// Base types (embedded to seal the interfaces)
// ============================================================

// ExprBase is embedded by all expression nodes.
type ExprBase struct{}

func (ExprBase) nodeNode() {}
func (ExprBase) exprNode() {}

// StmtBase is embedded by all statement nodes.
type StmtBase struct{}

func (StmtBase) nodeNode() {}
func (StmtBase) stmtNode() {}

// ============================================================
// Expressions
// ============================================================

// LiteralExpr is a literal value: nil, bool, float64 or string.
type LiteralExpr struct {
	ExprBase
	Value any
}

// GroupingExpr is a parenthesized expression.
type GroupingExpr struct {
	ExprBase
	Expr Expr
}

// UnaryExpr represents a unary operation: !x, -x.
type UnaryExpr struct {
	ExprBase
	Op      token.Token
	Operand Expr
}

// BinaryExpr represents an arithmetic, comparison or equality operation.
type BinaryExpr struct {
	ExprBase
	Left  Expr
	Op    token.Token
	Right Expr
}

// LogicalExpr represents a short-circuiting 'and' / 'or'.
type LogicalExpr struct {
	ExprBase
	Left  Expr
	Op    token.Token
	Right Expr
}

// VariableExpr is a variable reference.
type VariableExpr struct {
	ExprBase
	Name token.Token
}

// AssignExpr assigns to an existing variable: name = value.
type AssignExpr struct {
	ExprBase
	Name  token.Token
	Value Expr
}

// CallExpr represents a function call: f(a, b). Paren is the closing
// parenthesis, used to locate runtime errors.
type CallExpr struct {
	ExprBase
	Callee Expr
	Paren  token.Token
	Args   []Expr
}

// ============================================================
// Statements
// ============================================================

// ExprStmt wraps an expression used as a statement.
type ExprStmt struct {
	StmtBase
	Expr Expr
}

// PrintStmt writes the value of Expr to standard output.
type PrintStmt struct {
	StmtBase
	Expr Expr
}

// VarStmt declares a variable in the current scope.
type VarStmt struct {
	StmtBase
	Name token.Token
	Init Expr // may be nil if no initializer
}

// BlockStmt represents a block of statements: { ... }.
type BlockStmt struct {
	StmtBase
	Stmts []Stmt
}

// IfStmt represents if/else.
type IfStmt struct {
	StmtBase
	Condition Expr
	Then      Stmt
	Else      Stmt // may be nil
}

// WhileStmt represents a while loop. 'for' loops are desugared into it.
type WhileStmt struct {
	StmtBase
	Condition Expr
	Body      Stmt
}

// FuncStmt represents a function declaration: fun name(params) { body }.
type FuncStmt struct {
	StmtBase
	Name   token.Token
	Params []token.Token
	Body   []Stmt
}

// ReturnStmt represents a return statement.
type ReturnStmt struct {
	StmtBase
	Keyword token.Token
	Value   Expr // may be nil
}
