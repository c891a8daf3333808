// Package lexer implements the lexical analysis (tokenization) for Lox.
package lexer

import (
	"strconv"
	"unicode/utf8"

	"lox-lang/internal/diag"
	"lox-lang/internal/token"
)

// Lexer tokenizes source code into a sequence of tokens.
type Lexer struct {
	source string

	start int // offset of the token being scanned
	pos   int // current read position in source
	line  int // current line (1-based)

	tokens []token.Token
	diags  []diag.Diagnostic
}

// New creates a new Lexer for the given source text.
func New(source string) *Lexer {
	return &Lexer{
		source: source,
		line:   1,
	}
}

// Scan tokenizes source in one call.
func Scan(source string) ([]token.Token, []diag.Diagnostic) {
	return New(source).Tokenize()
}

// Tokenize scans the entire source and returns all tokens and diagnostics.
// It never stops early: every lexical error in the source is reported, and the
// token slice always ends with a single EOF token.
func (l *Lexer) Tokenize() ([]token.Token, []diag.Diagnostic) {
	for !l.isAtEnd() {
		l.start = l.pos
		l.scanToken()
	}
	l.tokens = append(l.tokens, token.Token{Kind: token.EOF, Line: l.line})
	return l.tokens, l.diags
}

// ---- internal helpers ----

func (l *Lexer) isAtEnd() bool {
	return l.pos >= len(l.source)
}

// peek returns the current character without advancing, or 0 if at end.
func (l *Lexer) peek() byte {
	if l.isAtEnd() {
		return 0
	}
	return l.source[l.pos]
}

// peekNext returns the character after current, or 0 if at end.
func (l *Lexer) peekNext() byte {
	if l.pos+1 >= len(l.source) {
		return 0
	}
	return l.source[l.pos+1]
}

// advance consumes the current character and returns it.
func (l *Lexer) advance() byte {
	ch := l.source[l.pos]
	l.pos++
	if ch == '\n' {
		l.line++
	}
	return ch
}

// match consumes the current character if it equals expected.
func (l *Lexer) match(expected byte) bool {
	if l.peek() != expected || l.isAtEnd() {
		return false
	}
	l.pos++
	return true
}

// skipLineComment skips from // to end of line, leaving the newline.
func (l *Lexer) skipLineComment() {
	for !l.isAtEnd() && l.peek() != '\n' {
		l.pos++
	}
}

func (l *Lexer) addToken(kind token.Kind) {
	l.addLiteral(kind, nil)
}

func (l *Lexer) addLiteral(kind token.Kind, literal any) {
	l.tokens = append(l.tokens, token.Token{
		Kind:    kind,
		Lexeme:  l.source[l.start:l.pos],
		Literal: literal,
		Line:    l.line,
	})
}

// addError records a diagnostic error on the current line.
func (l *Lexer) addError(code, msg string) {
	l.diags = append(l.diags, diag.Errorf(code, l.line, "%s", msg))
}

// ---- token reading ----

// choose consumes '=' if present and returns the two-character kind,
// otherwise the single-character kind.
func (l *Lexer) choose(withEq, without token.Kind) token.Kind {
	if l.match('=') {
		return withEq
	}
	return without
}

func (l *Lexer) scanToken() {
	ch := l.advance()

	switch ch {
	case ' ', '\r', '\t', '\n':
		// whitespace; advance already counted the newline
	case '(':
		l.addToken(token.LPAREN)
	case ')':
		l.addToken(token.RPAREN)
	case '{':
		l.addToken(token.LBRACE)
	case '}':
		l.addToken(token.RBRACE)
	case ',':
		l.addToken(token.COMMA)
	case '.':
		l.addToken(token.DOT)
	case '-':
		l.addToken(token.MINUS)
	case '+':
		l.addToken(token.PLUS)
	case ';':
		l.addToken(token.SEMICOLON)
	case '*':
		l.addToken(token.STAR)
	case '!':
		l.addToken(l.choose(token.NEQ, token.BANG))
	case '=':
		l.addToken(l.choose(token.EQ, token.ASSIGN))
	case '<':
		l.addToken(l.choose(token.LTE, token.LT))
	case '>':
		l.addToken(l.choose(token.GTE, token.GT))
	case '/':
		if l.match('/') {
			l.skipLineComment()
		} else {
			l.addToken(token.SLASH)
		}
	case '"':
		l.readString()
	default:
		switch {
		case isDigit(ch):
			l.readNumber()
		case isIdentStart(ch):
			l.readIdentifier()
		default:
			// Consume the whole rune so a multi-byte character is reported once.
			if ch >= utf8.RuneSelf {
				_, size := utf8.DecodeRuneInString(l.source[l.start:])
				l.pos = l.start + size
			}
			l.addError("E1003", "Unexpected character.")
		}
	}
}

// readString reads a double-quoted string literal. Strings may span lines and
// have no escape sequences.
func (l *Lexer) readString() {
	for !l.isAtEnd() && l.peek() != '"' {
		l.advance()
	}

	if l.isAtEnd() {
		l.addError("E1001", "Unterminated string.")
		return
	}

	l.advance() // closing "
	l.addLiteral(token.STRING, l.source[l.start+1:l.pos-1])
}

// readNumber reads a number literal with at most one fractional part.
func (l *Lexer) readNumber() {
	for isDigit(l.peek()) {
		l.advance()
	}

	// A trailing '.' without digits is left for the next token.
	if l.peek() == '.' && isDigit(l.peekNext()) {
		l.advance() // skip '.'
		for isDigit(l.peek()) {
			l.advance()
		}
	}

	val, err := strconv.ParseFloat(l.source[l.start:l.pos], 64)
	if err != nil {
		l.addError("E1004", "Invalid number literal.")
		return
	}
	l.addLiteral(token.NUMBER, val)
}

// readIdentifier reads an identifier or keyword.
func (l *Lexer) readIdentifier() {
	for isIdentPart(l.peek()) {
		l.advance()
	}
	l.addToken(token.LookupIdent(l.source[l.start:l.pos]))
}

// ---- character classification ----

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isIdentStart(ch byte) bool {
	return ch == '_' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isIdentPart(ch byte) bool {
	return isIdentStart(ch) || isDigit(ch)
}
