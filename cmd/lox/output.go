package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/goccy/go-yaml"

	"lox-lang/internal/ast"
	"lox-lang/internal/diag"
	"lox-lang/internal/token"
)

// ---- output helpers ----

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("JSON encoding failed: %w", err)
	}
	return nil
}

func printYAML(w io.Writer, v any) error {
	out, err := yaml.MarshalWithOptions(v, yaml.Indent(2), yaml.IndentSequence(true))
	if err != nil {
		return fmt.Errorf("YAML encoding failed: %w", err)
	}
	_, err = w.Write(out)
	return err
}

func diagsToSlice(diags []diag.Diagnostic) []map[string]any {
	result := make([]map[string]any, len(diags))
	for i, d := range diags {
		result[i] = map[string]any{
			"code":     d.Code,
			"severity": d.Severity.String(),
			"message":  d.Message,
			"line":     d.Line,
		}
		if d.Where != "" {
			result[i]["where"] = d.Where
		}
	}
	return result
}

// programDoc is the document printed by "parse --format json|yaml".
func programDoc(stmts []ast.Stmt, diags []diag.Diagnostic) map[string]any {
	return map[string]any{
		"program":     ast.StmtSlice(stmts),
		"diagnostics": diagsToSlice(diags),
	}
}

// ---- token output helpers ----

func printTokensText(w io.Writer, tokens []token.Token) {
	for _, tok := range tokens {
		if tok.Literal != nil {
			fmt.Fprintf(w, "%-10s %-20s %-20v %d\n", tok.Kind, tok.Lexeme, tok.Literal, tok.Line)
		} else {
			fmt.Fprintf(w, "%-10s %-20s %-20s %d\n", tok.Kind, tok.Lexeme, "", tok.Line)
		}
	}
}

// tokenCategory groups kinds for the JSON token dump.
func tokenCategory(k token.Kind) string {
	switch {
	case k.IsKeyword():
		return "keyword"
	case k.IsLiteral():
		return "literal"
	case k == token.EOF:
		return "eof"
	default:
		return "punctuation"
	}
}

func printTokensJSON(w io.Writer, tokens []token.Token, diags []diag.Diagnostic) error {
	type tokenJSON struct {
		Kind     string `json:"kind"`
		Category string `json:"category"`
		Lexeme   string `json:"lexeme"`
		Literal  any    `json:"literal,omitempty"`
		Line     int    `json:"line"`
	}

	toks := make([]tokenJSON, 0, len(tokens))
	for _, tok := range tokens {
		toks = append(toks, tokenJSON{
			Kind:     tok.Kind.String(),
			Category: tokenCategory(tok.Kind),
			Lexeme:   tok.Lexeme,
			Literal:  tok.Literal,
			Line:     tok.Line,
		})
	}

	return printJSON(w, map[string]any{
		"tokens":      toks,
		"diagnostics": diagsToSlice(diags),
	})
}
