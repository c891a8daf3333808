package lexer

import (
	"testing"

	"lox-lang/internal/token"
)

func expectKinds(t *testing.T, tokens []token.Token, expected []token.Kind) {
	t.Helper()
	if len(tokens) != len(expected) {
		t.Fatalf("expected %d tokens, got %d: %v", len(expected), len(tokens), tokens)
	}
	for i, exp := range expected {
		if tokens[i].Kind != exp {
			t.Errorf("token[%d]: expected %s, got %s (%q)", i, exp, tokens[i].Kind, tokens[i].Lexeme)
		}
	}
}

func TestTokenizeSimple(t *testing.T) {
	tokens, diags := Scan(`var x = 1 + 2;`)
	if len(diags) > 0 {
		t.Errorf("unexpected diagnostics: %v", diags)
	}
	expectKinds(t, tokens, []token.Kind{
		token.KW_VAR, token.IDENT, token.ASSIGN,
		token.NUMBER, token.PLUS, token.NUMBER, token.SEMICOLON, token.EOF,
	})
}

func TestTokenizeKeywords(t *testing.T) {
	tokens, diags := Scan(`and class else false for fun if nil or print return super this true var while`)
	if len(diags) > 0 {
		t.Errorf("unexpected diagnostics: %v", diags)
	}
	expectKinds(t, tokens, []token.Kind{
		token.KW_AND, token.KW_CLASS, token.KW_ELSE, token.KW_FALSE,
		token.KW_FOR, token.KW_FUN, token.KW_IF, token.KW_NIL,
		token.KW_OR, token.KW_PRINT, token.KW_RETURN, token.KW_SUPER,
		token.KW_THIS, token.KW_TRUE, token.KW_VAR, token.KW_WHILE,
		token.EOF,
	})
}

func TestTokenizeKeywordPrefixIsIdentifier(t *testing.T) {
	tokens, _ := Scan(`orchid _var fun_1`)
	expectKinds(t, tokens, []token.Kind{token.IDENT, token.IDENT, token.IDENT, token.EOF})
}

func TestTokenizeOperators(t *testing.T) {
	tokens, diags := Scan(`= == != ! < <= > >= + - * /`)
	if len(diags) > 0 {
		t.Errorf("unexpected diagnostics: %v", diags)
	}
	expectKinds(t, tokens, []token.Kind{
		token.ASSIGN, token.EQ, token.NEQ, token.BANG,
		token.LT, token.LTE, token.GT, token.GTE,
		token.PLUS, token.MINUS, token.STAR, token.SLASH,
		token.EOF,
	})
}

func TestTokenizeMaximalMunch(t *testing.T) {
	tokens, _ := Scan(`!===`)
	expectKinds(t, tokens, []token.Kind{token.NEQ, token.EQ, token.EOF})
}

func TestTokenizeDelimiters(t *testing.T) {
	tokens, diags := Scan(`( ) { } , . ;`)
	if len(diags) > 0 {
		t.Errorf("unexpected diagnostics: %v", diags)
	}
	expectKinds(t, tokens, []token.Kind{
		token.LPAREN, token.RPAREN, token.LBRACE, token.RBRACE,
		token.COMMA, token.DOT, token.SEMICOLON,
		token.EOF,
	})
}

func TestTokenizeString(t *testing.T) {
	tokens, diags := Scan("\"hello\" \"line1\nline2\"")
	if len(diags) > 0 {
		t.Errorf("unexpected diagnostics: %v", diags)
	}

	if tokens[0].Kind != token.STRING || tokens[0].Literal != "hello" || tokens[0].Lexeme != `"hello"` {
		t.Errorf("expected STRING 'hello', got %s", tokens[0])
	}
	if tokens[1].Kind != token.STRING || tokens[1].Literal != "line1\nline2" {
		t.Errorf("expected multi-line STRING, got %s", tokens[1])
	}
	if tokens[1].Line != 2 {
		t.Errorf("multi-line string should end on line 2, got %d", tokens[1].Line)
	}
}

func TestTokenizeUnterminatedString(t *testing.T) {
	tokens, diags := Scan("print \"abc\n\ndef")
	if len(diags) != 1 {
		t.Fatalf("expected 1 diagnostic, got %d: %v", len(diags), diags)
	}
	if got := diags[0].String(); got != "[line 3] Error: Unterminated string." {
		t.Errorf("unexpected diagnostic: %q", got)
	}
	expectKinds(t, tokens, []token.Kind{token.KW_PRINT, token.EOF})
	if tokens[1].Line != 3 {
		t.Errorf("EOF should be on line 3, got %d", tokens[1].Line)
	}
}

func TestTokenizeNumbers(t *testing.T) {
	tokens, diags := Scan(`123 3.14 0`)
	if len(diags) > 0 {
		t.Errorf("unexpected diagnostics: %v", diags)
	}

	expected := []float64{123, 3.14, 0}
	for i, want := range expected {
		if tokens[i].Kind != token.NUMBER || tokens[i].Literal != want {
			t.Errorf("token[%d]: expected NUMBER %v, got %s", i, want, tokens[i])
		}
	}
}

func TestTokenizeNumberSingleFraction(t *testing.T) {
	tokens, _ := Scan(`1.2.3 4.`)
	expectKinds(t, tokens, []token.Kind{
		token.NUMBER, token.DOT, token.NUMBER, token.NUMBER, token.DOT, token.EOF,
	})
	if tokens[0].Lexeme != "1.2" || tokens[2].Lexeme != "3" || tokens[3].Lexeme != "4" {
		t.Errorf("unexpected lexemes: %v", tokens)
	}
}

func TestTokenizeComment(t *testing.T) {
	tokens, _ := Scan("x // this is a comment\ny")
	expectKinds(t, tokens, []token.Kind{token.IDENT, token.IDENT, token.EOF})
	if tokens[1].Line != 2 {
		t.Errorf("'y' should be on line 2, got %d", tokens[1].Line)
	}
}

func TestTokenizeReportsEveryError(t *testing.T) {
	tokens, diags := Scan("var a = 1 @ 2;\nprint # a;\n")
	if len(diags) != 2 {
		t.Fatalf("expected 2 diagnostics, got %d: %v", len(diags), diags)
	}
	if diags[0].Line != 1 || diags[1].Line != 2 {
		t.Errorf("unexpected diagnostic lines: %v", diags)
	}
	expectKinds(t, tokens, []token.Kind{
		token.KW_VAR, token.IDENT, token.ASSIGN, token.NUMBER, token.NUMBER, token.SEMICOLON,
		token.KW_PRINT, token.IDENT, token.SEMICOLON,
		token.EOF,
	})
}

func TestTokenizeMultiByteCharacterReportedOnce(t *testing.T) {
	_, diags := Scan("é")
	if len(diags) != 1 {
		t.Errorf("expected 1 diagnostic, got %d: %v", len(diags), diags)
	}
}

func TestTokenizeLines(t *testing.T) {
	tokens, _ := Scan("var\nx\n\n=")
	lines := []int{1, 2, 4, 4}
	for i, want := range lines {
		if tokens[i].Line != want {
			t.Errorf("token[%d] %s: expected line %d, got %d", i, tokens[i].Kind, want, tokens[i].Line)
		}
	}
}
