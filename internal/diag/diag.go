// Package diag provides diagnostic types and the reporting sink shared by the
// lexer, the parser, and the interpreter front end.
package diag

import (
	"fmt"

	"lox-lang/internal/token"
)

// Severity indicates the severity of a diagnostic.
type Severity int

// Error is the only severity the lexer and parser produce.
const Error Severity = iota

func (s Severity) String() string {
	if s == Error {
		return "error"
	}
	return "unknown"
}

// MarshalText encodes the severity by name, so encoded diagnostics read "error".
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Diagnostic represents a static (lexical or parse) error.
type Diagnostic struct {
	Code     string   `json:"code"`     // stable error code, e.g. "E1001"
	Severity Severity `json:"severity"` // "error"
	Message  string   `json:"message"`  // human-readable description
	Line     int      `json:"line"`     // 1-based source line
	Where    string   `json:"where"`    // location suffix: "", " at end" or " at 'x'"
}

// String formats the diagnostic as "[line N] Error<where>: <message>".
func (d Diagnostic) String() string {
	return fmt.Sprintf("[line %d] Error%s: %s", d.Line, d.Where, d.Message)
}

// Errorf creates an error diagnostic with no token location, as used for
// lexical errors.
func Errorf(code string, line int, format string, args ...any) Diagnostic {
	return Diagnostic{
		Code:     code,
		Severity: Error,
		Message:  fmt.Sprintf(format, args...),
		Line:     line,
	}
}

// At creates an error diagnostic located at tok.
func At(code string, tok token.Token, msg string) Diagnostic {
	d := Diagnostic{
		Code:     code,
		Severity: Error,
		Message:  msg,
		Line:     tok.Line,
	}
	if tok.Kind == token.EOF {
		d.Where = " at end"
	} else {
		d.Where = fmt.Sprintf(" at '%s'", tok.Lexeme)
	}
	return d
}
