package parser

import (
	"fmt"

	"lox-lang/internal/ast"
	"lox-lang/internal/token"
)

// ============================================================
// Expressions, lowest precedence first
// ============================================================

func (p *Parser) expression() (ast.Expr, error) {
	return p.assignment()
}

// assignment := ( IDENTIFIER "=" assignment ) | logic_or
//
// The target is parsed as an ordinary expression first; only a variable
// reference is a valid lvalue. Any other target is reported at the '='
// without synchronizing, since the parser is not in a confused state.
func (p *Parser) assignment() (ast.Expr, error) {
	expr, err := p.or()
	if err != nil {
		return nil, err
	}

	if p.accept(token.ASSIGN) {
		equals := p.previous()
		value, err := p.assignment()
		if err != nil {
			return nil, err
		}

		if v, ok := expr.(*ast.VariableExpr); ok {
			return &ast.AssignExpr{Name: v.Name, Value: value}, nil
		}
		p.error("E2003", equals, "Invalid assignment target.")
	}
	return expr, nil
}

// logic_or := logic_and ( "or" logic_and )*
func (p *Parser) or() (ast.Expr, error) {
	return p.logical(p.and, token.KW_OR)
}

// logic_and := equality ( "and" equality )*
func (p *Parser) and() (ast.Expr, error) {
	return p.logical(p.equality, token.KW_AND)
}

// equality := comparison ( ( "!=" | "==" ) comparison )*
func (p *Parser) equality() (ast.Expr, error) {
	return p.binary(p.comparison, token.NEQ, token.EQ)
}

// comparison := term ( ( ">" | ">=" | "<" | "<=" ) term )*
func (p *Parser) comparison() (ast.Expr, error) {
	return p.binary(p.term, token.GT, token.GTE, token.LT, token.LTE)
}

// term := factor ( ( "-" | "+" ) factor )*
func (p *Parser) term() (ast.Expr, error) {
	return p.binary(p.factor, token.MINUS, token.PLUS)
}

// factor := unary ( ( "/" | "*" ) unary )*
func (p *Parser) factor() (ast.Expr, error) {
	return p.binary(p.unary, token.SLASH, token.STAR)
}

// binary parses a left-associative chain of operands produced by next,
// separated by any of ops.
func (p *Parser) binary(next func() (ast.Expr, error), ops ...token.Kind) (ast.Expr, error) {
	expr, err := next()
	if err != nil {
		return nil, err
	}
	for p.accept(ops...) {
		op := p.previous()
		right, err := next()
		if err != nil {
			return nil, err
		}
		expr = &ast.BinaryExpr{Left: expr, Op: op, Right: right}
	}
	return expr, nil
}

// logical is binary for the short-circuiting operators.
func (p *Parser) logical(next func() (ast.Expr, error), op token.Kind) (ast.Expr, error) {
	expr, err := next()
	if err != nil {
		return nil, err
	}
	for p.accept(op) {
		opTok := p.previous()
		right, err := next()
		if err != nil {
			return nil, err
		}
		expr = &ast.LogicalExpr{Left: expr, Op: opTok, Right: right}
	}
	return expr, nil
}

// unary := ( "!" | "-" ) unary | call
func (p *Parser) unary() (ast.Expr, error) {
	if p.accept(token.BANG, token.MINUS) {
		op := p.previous()
		operand, err := p.unary()
		if err != nil {
			return nil, err
		}
		return &ast.UnaryExpr{Op: op, Operand: operand}, nil
	}
	return p.call()
}

// call := primary ( "(" arguments? ")" )*
func (p *Parser) call() (ast.Expr, error) {
	expr, err := p.primary()
	if err != nil {
		return nil, err
	}
	for p.accept(token.LPAREN) {
		if expr, err = p.finishCall(expr); err != nil {
			return nil, err
		}
	}
	return expr, nil
}

// finishCall parses the arguments after an opening parenthesis.
func (p *Parser) finishCall(callee ast.Expr) (ast.Expr, error) {
	var args []ast.Expr
	if !p.check(token.RPAREN) {
		for {
			if len(args) >= p.maxArgs {
				p.error("E2004", p.peek(), fmt.Sprintf("Can't have more than %d arguments.", p.maxArgs))
			}
			arg, err := p.expression()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
			if !p.accept(token.COMMA) {
				break
			}
		}
	}

	paren, err := p.expect(token.RPAREN, "Expect ')' after arguments.")
	if err != nil {
		return nil, err
	}
	return &ast.CallExpr{Callee: callee, Paren: paren, Args: args}, nil
}

// primary := NUMBER | STRING | "true" | "false" | "nil" | "(" expression ")" | IDENTIFIER
func (p *Parser) primary() (ast.Expr, error) {
	tok := p.peek()

	switch tok.Kind {
	case token.KW_FALSE:
		p.advance()
		return &ast.LiteralExpr{Value: false}, nil
	case token.KW_TRUE:
		p.advance()
		return &ast.LiteralExpr{Value: true}, nil
	case token.KW_NIL:
		p.advance()
		return &ast.LiteralExpr{Value: nil}, nil
	case token.NUMBER, token.STRING:
		p.advance()
		return &ast.LiteralExpr{Value: tok.Literal}, nil
	case token.IDENT:
		p.advance()
		return &ast.VariableExpr{Name: tok}, nil
	case token.LPAREN:
		p.advance()
		expr, err := p.expression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RPAREN, "Expect ')' after expression."); err != nil {
			return nil, err
		}
		return &ast.GroupingExpr{Expr: expr}, nil
	default:
		return nil, p.error("E2002", tok, "Expect expression.")
	}
}
