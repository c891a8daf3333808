package ast

import (
	"lox-lang/internal/token"
)

// NodeToMap converts an AST node to a map suitable for JSON or YAML
// serialization. Every node has a "kind" field.
func NodeToMap(node Node) map[string]any {
	if node == nil {
		return nil
	}

	switch n := node.(type) {
	// ---- Expressions ----
	case *LiteralExpr:
		return m("Literal", "value", n.Value)
	case *GroupingExpr:
		return m("Grouping", "expr", NodeToMap(n.Expr))
	case *UnaryExpr:
		return m("Unary", "op", n.Op.Lexeme, "line", n.Op.Line, "operand", NodeToMap(n.Operand))
	case *BinaryExpr:
		return m("Binary",
			"op", n.Op.Lexeme,
			"line", n.Op.Line,
			"left", NodeToMap(n.Left),
			"right", NodeToMap(n.Right))
	case *LogicalExpr:
		return m("Logical",
			"op", n.Op.Lexeme,
			"line", n.Op.Line,
			"left", NodeToMap(n.Left),
			"right", NodeToMap(n.Right))
	case *VariableExpr:
		return m("Variable", "name", n.Name.Lexeme, "line", n.Name.Line)
	case *AssignExpr:
		return m("Assign", "name", n.Name.Lexeme, "line", n.Name.Line, "value", NodeToMap(n.Value))
	case *CallExpr:
		return m("Call",
			"callee", NodeToMap(n.Callee),
			"line", n.Paren.Line,
			"args", exprSlice(n.Args))

	// ---- Statements ----
	case *ExprStmt:
		return m("Expression", "expr", NodeToMap(n.Expr))
	case *PrintStmt:
		return m("Print", "expr", NodeToMap(n.Expr))
	case *VarStmt:
		result := m("Var", "name", n.Name.Lexeme, "line", n.Name.Line)
		if n.Init != nil {
			result["init"] = NodeToMap(n.Init)
		}
		return result
	case *BlockStmt:
		return m("Block", "stmts", StmtSlice(n.Stmts))
	case *IfStmt:
		result := m("If",
			"condition", NodeToMap(n.Condition),
			"then", NodeToMap(n.Then))
		if n.Else != nil {
			result["else"] = NodeToMap(n.Else)
		}
		return result
	case *WhileStmt:
		return m("While",
			"condition", NodeToMap(n.Condition),
			"body", NodeToMap(n.Body))
	case *FuncStmt:
		return m("Function",
			"name", n.Name.Lexeme,
			"line", n.Name.Line,
			"params", lexemes(n.Params),
			"body", StmtSlice(n.Body))
	case *ReturnStmt:
		result := m("Return", "line", n.Keyword.Line)
		if n.Value != nil {
			result["value"] = NodeToMap(n.Value)
		}
		return result

	default:
		return map[string]any{"kind": "Unknown"}
	}
}

// StmtSlice converts a statement list, such as a whole program, with NodeToMap.
func StmtSlice(stmts []Stmt) []any {
	result := make([]any, len(stmts))
	for i, s := range stmts {
		result[i] = NodeToMap(s)
	}
	return result
}

// ---- helpers ----

// m builds a map with kind and extra key-value pairs.
func m(kind string, kvs ...any) map[string]any {
	result := map[string]any{
		"kind": kind,
	}
	for i := 0; i+1 < len(kvs); i += 2 {
		key := kvs[i].(string)
		result[key] = kvs[i+1]
	}
	return result
}

func exprSlice(exprs []Expr) []any {
	result := make([]any, len(exprs))
	for i, e := range exprs {
		result[i] = NodeToMap(e)
	}
	return result
}

func lexemes(toks []token.Token) []string {
	result := make([]string, len(toks))
	for i, t := range toks {
		result[i] = t.Lexeme
	}
	return result
}
