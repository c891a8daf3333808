package ast

import (
	"math"
	"strconv"
	"strings"
)

// Print renders a node in a fully parenthesized prefix form, e.g.
// "(+ 1 (* 2 3))". It is meant for debugging the parser.
func Print(node Node) string {
	var b strings.Builder
	write(&b, node)
	return b.String()
}

// PrintProgram renders each statement of a program on its own line.
func PrintProgram(stmts []Stmt) string {
	var b strings.Builder
	for _, s := range stmts {
		write(&b, s)
		b.WriteByte('\n')
	}
	return b.String()
}

func write(b *strings.Builder, node Node) {
	switch n := node.(type) {
	case *LiteralExpr:
		b.WriteString(literal(n.Value))
	case *GroupingExpr:
		parenthesize(b, "group", n.Expr)
	case *UnaryExpr:
		parenthesize(b, n.Op.Lexeme, n.Operand)
	case *BinaryExpr:
		parenthesize(b, n.Op.Lexeme, n.Left, n.Right)
	case *LogicalExpr:
		parenthesize(b, n.Op.Lexeme, n.Left, n.Right)
	case *VariableExpr:
		b.WriteString(n.Name.Lexeme)
	case *AssignExpr:
		parenthesize(b, "= "+n.Name.Lexeme, n.Value)
	case *CallExpr:
		parts := append([]Node{n.Callee}, exprNodes(n.Args)...)
		parenthesize(b, "call", parts...)

	case *ExprStmt:
		parenthesize(b, ";", n.Expr)
	case *PrintStmt:
		parenthesize(b, "print", n.Expr)
	case *VarStmt:
		if n.Init == nil {
			parenthesize(b, "var "+n.Name.Lexeme)
		} else {
			parenthesize(b, "var "+n.Name.Lexeme, n.Init)
		}
	case *BlockStmt:
		parenthesize(b, "block", stmtNodes(n.Stmts)...)
	case *IfStmt:
		if n.Else == nil {
			parenthesize(b, "if", n.Condition, n.Then)
		} else {
			parenthesize(b, "if-else", n.Condition, n.Then, n.Else)
		}
	case *WhileStmt:
		parenthesize(b, "while", n.Condition, n.Body)
	case *FuncStmt:
		params := make([]string, len(n.Params))
		for i, p := range n.Params {
			params[i] = p.Lexeme
		}
		head := "fun " + n.Name.Lexeme + " (" + strings.Join(params, " ") + ")"
		parenthesize(b, head, stmtNodes(n.Body)...)
	case *ReturnStmt:
		if n.Value == nil {
			parenthesize(b, "return")
		} else {
			parenthesize(b, "return", n.Value)
		}
	default:
		b.WriteString("(?)")
	}
}

func parenthesize(b *strings.Builder, name string, parts ...Node) {
	b.WriteByte('(')
	b.WriteString(name)
	for _, p := range parts {
		b.WriteByte(' ')
		write(b, p)
	}
	b.WriteByte(')')
}

func literal(v any) string {
	switch val := v.(type) {
	case nil:
		return "nil"
	case bool:
		return strconv.FormatBool(val)
	case float64:
		if math.IsInf(val, 0) || math.IsNaN(val) {
			return strconv.FormatFloat(val, 'g', -1, 64)
		}
		return strconv.FormatFloat(val, 'f', -1, 64)
	case string:
		return strconv.Quote(val)
	default:
		return "?"
	}
}

func exprNodes(exprs []Expr) []Node {
	nodes := make([]Node, len(exprs))
	for i, e := range exprs {
		nodes[i] = e
	}
	return nodes
}

func stmtNodes(stmts []Stmt) []Node {
	nodes := make([]Node, len(stmts))
	for i, s := range stmts {
		nodes[i] = s
	}
	return nodes
}
