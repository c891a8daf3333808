// Package parser implements the syntax analysis for Lox.
// It is a recursive-descent parser with one function per precedence level and
// panic-mode error recovery at declaration boundaries.
package parser

import (
	"fmt"

	"lox-lang/internal/ast"
	"lox-lang/internal/diag"
	"lox-lang/internal/token"
)

// DefaultMaxArgs is the default cap on call arguments and function parameters.
const DefaultMaxArgs = 255

// ============================================================
// Parser
// ============================================================

// Parser performs syntax analysis on a stream of tokens.
type Parser struct {
	tokens []token.Token
	pos    int
	diags  []diag.Diagnostic

	maxArgs   int
	funcDepth int // number of enclosing function bodies
}

// Option configures a Parser.
type Option func(*Parser)

// WithMaxArgs sets the maximum number of call arguments and function
// parameters. Exceeding it is reported but does not stop the parse.
func WithMaxArgs(n int) Option {
	return func(p *Parser) {
		if n > 0 {
			p.maxArgs = n
		}
	}
}

// New creates a new parser from a token slice. The slice must end with an
// EOF token, as produced by the lexer.
func New(tokens []token.Token, opts ...Option) *Parser {
	p := &Parser{tokens: tokens, maxArgs: DefaultMaxArgs}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse parses the whole token stream into a list of statements. If any
// diagnostics are returned the statement list must not be executed.
func (p *Parser) Parse() ([]ast.Stmt, []diag.Diagnostic) {
	var stmts []ast.Stmt
	for !p.isAtEnd() {
		if stmt := p.declaration(); stmt != nil {
			stmts = append(stmts, stmt)
		}
	}
	return stmts, p.diags
}

// parseError marks a grammar violation that has already been recorded and
// now needs synchronization.
type parseError struct {
	diag diag.Diagnostic
}

func (e *parseError) Error() string { return e.diag.String() }

// ---- navigation helpers ----

func (p *Parser) peek() token.Token {
	if p.pos >= len(p.tokens) {
		return token.Token{Kind: token.EOF}
	}
	return p.tokens[p.pos]
}

func (p *Parser) previous() token.Token {
	if p.pos == 0 {
		return p.peek()
	}
	return p.tokens[p.pos-1]
}

func (p *Parser) advance() token.Token {
	tok := p.peek()
	if !p.isAtEnd() {
		p.pos++
	}
	return tok
}

func (p *Parser) check(kind token.Kind) bool {
	return p.peek().Kind == kind
}

// match reports whether the current token is any of kinds, without consuming it.
func (p *Parser) match(kinds ...token.Kind) bool {
	for _, k := range kinds {
		if p.check(k) {
			return true
		}
	}
	return false
}

// accept consumes the current token if it is any of kinds.
func (p *Parser) accept(kinds ...token.Kind) bool {
	if p.match(kinds...) {
		p.advance()
		return true
	}
	return false
}

func (p *Parser) expect(kind token.Kind, msg string) (token.Token, error) {
	if p.check(kind) {
		return p.advance(), nil
	}
	return p.peek(), p.error("E2001", p.peek(), msg)
}

func (p *Parser) isAtEnd() bool {
	return p.peek().Kind == token.EOF
}

// error records a diagnostic at tok and returns it as a parseError for the
// caller to propagate when synchronization is needed.
func (p *Parser) error(code string, tok token.Token, msg string) error {
	d := diag.At(code, tok, msg)
	p.diags = append(p.diags, d)
	return &parseError{diag: d}
}

// ============================================================
// Error recovery
// ============================================================

// synchronize discards tokens until a likely statement boundary: just past a
// ';' or just before a keyword that starts a declaration or statement.
func (p *Parser) synchronize() {
	p.advance()
	for !p.isAtEnd() {
		if p.previous().Kind == token.SEMICOLON {
			return
		}
		if p.match(token.KW_CLASS, token.KW_FUN, token.KW_VAR, token.KW_FOR,
			token.KW_IF, token.KW_WHILE, token.KW_PRINT, token.KW_RETURN) {
			return
		}
		p.advance()
	}
}

// ============================================================
// Declarations
// ============================================================

// declaration := varDecl | funDecl | statement
//
// It returns nil after a grammar violation, once the parser has synchronized.
func (p *Parser) declaration() ast.Stmt {
	var (
		stmt ast.Stmt
		err  error
	)

	switch {
	case p.check(token.KW_CLASS):
		p.error("E2005", p.advance(), "Classes are not supported.")
		p.skipClass()
		return nil
	case p.accept(token.KW_FUN):
		stmt, err = p.function("function")
	case p.accept(token.KW_VAR):
		stmt, err = p.varDeclaration()
	default:
		stmt, err = p.statement()
	}

	if err != nil {
		p.synchronize()
		return nil
	}
	return stmt
}

// skipClass discards the rest of a class declaration, up to and including
// its closing brace, so that its methods are not parsed as functions.
func (p *Parser) skipClass() {
	for !p.isAtEnd() && !p.check(token.LBRACE) {
		if p.advance().Kind == token.SEMICOLON {
			return
		}
	}

	depth := 0
	for !p.isAtEnd() {
		switch p.advance().Kind {
		case token.LBRACE:
			depth++
		case token.RBRACE:
			if depth--; depth == 0 {
				return
			}
		}
	}
}

// varDecl := "var" IDENTIFIER ( "=" expression )? ";"
func (p *Parser) varDeclaration() (ast.Stmt, error) {
	name, err := p.expect(token.IDENT, "Expect variable name.")
	if err != nil {
		return nil, err
	}

	stmt := &ast.VarStmt{Name: name}
	if p.accept(token.ASSIGN) {
		if stmt.Init, err = p.expression(); err != nil {
			return nil, err
		}
	}

	if _, err := p.expect(token.SEMICOLON, "Expect ';' after variable declaration."); err != nil {
		return nil, err
	}
	return stmt, nil
}

// funDecl := "fun" IDENTIFIER "(" parameters? ")" block
func (p *Parser) function(kind string) (ast.Stmt, error) {
	name, err := p.expect(token.IDENT, fmt.Sprintf("Expect %s name.", kind))
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LPAREN, fmt.Sprintf("Expect '(' after %s name.", kind)); err != nil {
		return nil, err
	}

	var params []token.Token
	if !p.check(token.RPAREN) {
		for {
			if len(params) >= p.maxArgs {
				p.error("E2004", p.peek(), fmt.Sprintf("Can't have more than %d parameters.", p.maxArgs))
			}
			param, err := p.expect(token.IDENT, "Expect parameter name.")
			if err != nil {
				return nil, err
			}
			params = append(params, param)
			if !p.accept(token.COMMA) {
				break
			}
		}
	}
	if _, err := p.expect(token.RPAREN, "Expect ')' after parameters."); err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LBRACE, fmt.Sprintf("Expect '{' before %s body.", kind)); err != nil {
		return nil, err
	}

	p.funcDepth++
	body, err := p.block()
	p.funcDepth--
	if err != nil {
		return nil, err
	}

	return &ast.FuncStmt{Name: name, Params: params, Body: body}, nil
}

// ============================================================
// Statements
// ============================================================

// statement := exprStmt | printStmt | block | ifStmt | whileStmt | forStmt | returnStmt
func (p *Parser) statement() (ast.Stmt, error) {
	switch {
	case p.accept(token.KW_FOR):
		return p.forStatement()
	case p.accept(token.KW_IF):
		return p.ifStatement()
	case p.accept(token.KW_PRINT):
		return p.printStatement()
	case p.accept(token.KW_RETURN):
		return p.returnStatement()
	case p.accept(token.KW_WHILE):
		return p.whileStatement()
	case p.accept(token.LBRACE):
		stmts, err := p.block()
		if err != nil {
			return nil, err
		}
		return &ast.BlockStmt{Stmts: stmts}, nil
	default:
		return p.expressionStatement()
	}
}

// forStmt := "for" "(" ( varDecl | exprStmt | ";" ) expression? ";" expression? ")" statement
//
// The loop is desugared into a block holding the initializer and a while loop
// whose body runs the original body followed by the increment.
func (p *Parser) forStatement() (ast.Stmt, error) {
	if _, err := p.expect(token.LPAREN, "Expect '(' after 'for'."); err != nil {
		return nil, err
	}

	var (
		init ast.Stmt
		err  error
	)
	switch {
	case p.accept(token.SEMICOLON):
	case p.accept(token.KW_VAR):
		init, err = p.varDeclaration()
	default:
		init, err = p.expressionStatement()
	}
	if err != nil {
		return nil, err
	}

	var cond ast.Expr
	if !p.check(token.SEMICOLON) {
		if cond, err = p.expression(); err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(token.SEMICOLON, "Expect ';' after loop condition."); err != nil {
		return nil, err
	}

	var increment ast.Expr
	if !p.check(token.RPAREN) {
		if increment, err = p.expression(); err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(token.RPAREN, "Expect ')' after for clauses."); err != nil {
		return nil, err
	}

	body, err := p.statement()
	if err != nil {
		return nil, err
	}

	if increment != nil {
		body = &ast.BlockStmt{Stmts: []ast.Stmt{body, &ast.ExprStmt{Expr: increment}}}
	}
	if cond == nil {
		cond = &ast.LiteralExpr{Value: true}
	}
	body = &ast.WhileStmt{Condition: cond, Body: body}
	if init != nil {
		body = &ast.BlockStmt{Stmts: []ast.Stmt{init, body}}
	}
	return body, nil
}

// ifStmt := "if" "(" expression ")" statement ( "else" statement )?
func (p *Parser) ifStatement() (ast.Stmt, error) {
	cond, err := p.parenthesized("'if'", "if condition")
	if err != nil {
		return nil, err
	}

	stmt := &ast.IfStmt{Condition: cond}
	if stmt.Then, err = p.statement(); err != nil {
		return nil, err
	}
	if p.accept(token.KW_ELSE) {
		if stmt.Else, err = p.statement(); err != nil {
			return nil, err
		}
	}
	return stmt, nil
}

// printStmt := "print" expression ";"
func (p *Parser) printStatement() (ast.Stmt, error) {
	value, err := p.expression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.SEMICOLON, "Expect ';' after value."); err != nil {
		return nil, err
	}
	return &ast.PrintStmt{Expr: value}, nil
}

// returnStmt := "return" expression? ";"
func (p *Parser) returnStatement() (ast.Stmt, error) {
	keyword := p.previous()
	if p.funcDepth == 0 {
		p.error("E2006", keyword, "Can't return from top-level code.")
	}

	stmt := &ast.ReturnStmt{Keyword: keyword}
	if !p.check(token.SEMICOLON) {
		value, err := p.expression()
		if err != nil {
			return nil, err
		}
		stmt.Value = value
	}
	if _, err := p.expect(token.SEMICOLON, "Expect ';' after return value."); err != nil {
		return nil, err
	}
	return stmt, nil
}

// whileStmt := "while" "(" expression ")" statement
func (p *Parser) whileStatement() (ast.Stmt, error) {
	cond, err := p.parenthesized("'while'", "condition")
	if err != nil {
		return nil, err
	}
	body, err := p.statement()
	if err != nil {
		return nil, err
	}
	return &ast.WhileStmt{Condition: cond, Body: body}, nil
}

// block := "{" declaration* "}"   (the opening brace is already consumed)
func (p *Parser) block() ([]ast.Stmt, error) {
	var stmts []ast.Stmt
	for !p.check(token.RBRACE) && !p.isAtEnd() {
		if stmt := p.declaration(); stmt != nil {
			stmts = append(stmts, stmt)
		}
	}
	if _, err := p.expect(token.RBRACE, "Expect '}' after block."); err != nil {
		return nil, err
	}
	return stmts, nil
}

// exprStmt := expression ";"
func (p *Parser) expressionStatement() (ast.Stmt, error) {
	expr, err := p.expression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.SEMICOLON, "Expect ';' after expression."); err != nil {
		return nil, err
	}
	return &ast.ExprStmt{Expr: expr}, nil
}

// parenthesized parses "(" expression ")" for if/while headers.
func (p *Parser) parenthesized(after, what string) (ast.Expr, error) {
	if _, err := p.expect(token.LPAREN, "Expect '(' after "+after+"."); err != nil {
		return nil, err
	}
	expr, err := p.expression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RPAREN, "Expect ')' after "+what+"."); err != nil {
		return nil, err
	}
	return expr, nil
}
