package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/chzyer/readline"

	"lox-lang/internal/diag"
	"lox-lang/internal/lexer"
	"lox-lang/internal/runtime"
	"lox-lang/internal/token"
)

// ---- styles ----

type styles struct {
	banner lipgloss.Style
	prompt lipgloss.Style
	cont   lipgloss.Style
	err    lipgloss.Style
	hint   lipgloss.Style
}

func newStyles(color bool) styles {
	if !color {
		plain := lipgloss.NewStyle()
		return styles{banner: plain, prompt: plain, cont: plain, err: plain, hint: plain}
	}
	return styles{
		banner: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6")),
		prompt: lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		cont:   lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		err:    lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
		hint:   lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
	}
}

// styledWriter renders every line written through it with style.
type styledWriter struct {
	w     io.Writer
	style lipgloss.Style
}

func (s styledWriter) Write(p []byte) (int, error) {
	lines := strings.Split(strings.TrimSuffix(string(p), "\n"), "\n")
	for i, line := range lines {
		lines[i] = s.style.Render(line)
	}
	if _, err := fmt.Fprintln(s.w, strings.Join(lines, "\n")); err != nil {
		return 0, err
	}
	return len(p), nil
}

// ---- session ----

// session holds the interpreter state that persists across REPL entries,
// together with any partially entered multi-line input.
type session struct {
	app    *app
	interp *runtime.Interpreter

	input      strings.Builder
	braceDepth int
}

// newSession routes diagnostics through errStyle and print output to stdout.
func newSession(a *app, stdout, stderr io.Writer, errStyle lipgloss.Style) *session {
	a.reporter = diag.NewReporter(styledWriter{w: stderr, style: errStyle})
	return &session{
		app:    a,
		interp: a.newInterpreter(stdout),
	}
}

// pending reports whether a multi-line entry is still open.
func (s *session) pending() bool { return s.braceDepth > 0 }

// cancel discards a partially entered multi-line entry.
func (s *session) cancel() {
	s.input.Reset()
	s.braceDepth = 0
}

// feed adds a line of input. It returns the accumulated entry once all
// braces are closed. Braces are counted on tokens, so braces inside strings
// and comments do not count.
func (s *session) feed(line string) (string, bool) {
	s.input.WriteString(line)
	s.input.WriteString("\n")

	s.braceDepth = 0
	tokens, _ := lexer.Scan(s.input.String())
	for _, tok := range tokens {
		switch tok.Kind {
		case token.LBRACE:
			s.braceDepth++
		case token.RBRACE:
			s.braceDepth--
		}
	}

	if s.braceDepth > 0 {
		return "", false
	}

	source := s.input.String()
	s.cancel()
	return source, strings.TrimSpace(source) != ""
}

// eval runs one complete entry. A static error discards the entry; a
// runtime error is reported and the session carries on with whatever state
// the entry left behind.
func (s *session) eval(source string) {
	defer s.app.reporter.Reset()

	stmts, ok := s.app.compile(source)
	if !ok {
		return
	}
	if err := s.interp.Interpret(stmts); err != nil {
		s.app.reporter.RuntimeError(err)
	}
}

// ---- repl command ----

type replCmd struct{}

func (c *replCmd) Run(a *app) error {
	historyFile := a.cli.HistoryFile
	if historyFile == "" {
		if home, err := os.UserHomeDir(); err == nil {
			historyFile = filepath.Join(home, ".lox_history")
		}
	}

	st := newStyles(a.cli.Color)
	rl, err := readline.NewEx(&readline.Config{
		Prompt:            st.prompt.Render("lox> "),
		HistoryFile:       historyFile,
		InterruptPrompt:   "^C",
		EOFPrompt:         "exit",
		HistorySearchFold: true,
	})
	if err != nil {
		return fmt.Errorf("readline init failed: %w", err)
	}
	defer rl.Close()

	fmt.Fprintf(rl.Stdout(), "%s %s\n\n",
		st.banner.Render("Lox REPL"), st.hint.Render("(type 'exit' or Ctrl+D to quit)"))

	s := newSession(a, rl.Stdout(), rl.Stderr(), st.err)
	for {
		if s.pending() {
			rl.SetPrompt(st.cont.Render("...  "))
		} else {
			rl.SetPrompt(st.prompt.Render("lox> "))
		}

		line, err := rl.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) {
				if s.pending() {
					s.cancel()
					continue
				}
				fmt.Fprintln(rl.Stdout(), st.hint.Render("(use 'exit' or Ctrl+D to quit)"))
				continue
			}
			// EOF (Ctrl+D) or a closed terminal ends the session.
			if errors.Is(err, io.EOF) {
				fmt.Fprintln(rl.Stdout())
			}
			return nil
		}

		if !s.pending() && strings.TrimSpace(line) == "exit" {
			return nil
		}

		if source, ok := s.feed(line); ok {
			a.logger.Debug("repl entry", slog.Int("bytes", len(source)))
			s.eval(source)
		}
	}
}
