// Command lox is the CLI entry point for the Lox interpreter.
//
// Usage:
//
//	lox <script>                          Run a script
//	lox tokens <script> [--json]          Print tokens
//	lox parse  <script> [--format FMT]    Print the syntax tree (sexpr, json, yaml)
//	lox repl                              Start interactive REPL
//
// A script whose name matches a command (tokens, parse, repl, run) must be
// run explicitly, as in "lox run tokens".
//
// Exit codes follow sysexits(3): 64 for usage errors, 65 for lexical or
// parse errors, 66 for an unreadable script and 70 for runtime errors.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/alecthomas/kong"

	"lox-lang/internal/ast"
	"lox-lang/internal/config"
	"lox-lang/internal/diag"
	"lox-lang/internal/lexer"
	"lox-lang/internal/log"
	"lox-lang/internal/parser"
	"lox-lang/internal/profile"
	"lox-lang/internal/runtime"
	"lox-lang/internal/token"
)

// CLI is the top-level command-line interface.
type CLI struct {
	Config kong.ConfigFlag `help:"Load options from a YAML file."                          placeholder:"PATH"`

	MaxArgs     int    `default:"255"  help:"Maximum number of call arguments and parameters."`
	MaxDepth    int    `default:"10000" help:"Maximum call depth before a stack overflow error."`
	LogLevel    string `default:"warn" enum:"trace,debug,info,warn,error" help:"Set log level."`
	LogFormat   string `default:"text" enum:"text,json"                   help:"Set log format."`
	Color       bool   `default:"true" help:"Colorize REPL output."       negatable:""`
	HistoryFile string `help:"REPL history file (default ~/.lox_history)." placeholder:"PATH"`
	Profile     string `help:"Enable profiling: ${profile_modes}."         placeholder:"MODE"`
	ProfilePath string `help:"Directory for profile output."               placeholder:"DIR"`

	Run    runCmd    `cmd:"" default:"withargs" help:"Run a Lox script."`
	Tokens tokensCmd `cmd:"" help:"Print the tokens of a script."`
	Parse  parseCmd  `cmd:"" help:"Print the syntax tree of a script."`
	Repl   replCmd   `cmd:"" help:"Start an interactive prompt."`
}

// exitStatus is returned by commands that finish with a non-zero exit code
// after already reporting their own diagnostics.
type exitStatus int

func (s exitStatus) Error() string { return fmt.Sprintf("exit status %d", int(s)) }

// status converts a reporter exit code into a command result.
func status(code int) error {
	if code == diag.ExitOK {
		return nil
	}
	return exitStatus(code)
}

// app carries the process streams and shared services into commands.
type app struct {
	cli      *CLI
	stdin    io.Reader
	stdout   io.Writer
	stderr   io.Writer
	logger   *slog.Logger
	reporter *diag.Reporter
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr, os.Exit))
}

// run parses args, executes the selected command and returns the process
// exit code. exit is only called by kong after printing --help.
func run(args []string, stdin io.Reader, stdout, stderr io.Writer, exit func(int)) int {
	var cli CLI

	k, err := kong.New(&cli,
		kong.Name("lox"),
		kong.Description("A tree-walking interpreter for the Lox language."),
		kong.Writers(stdout, stderr),
		kong.Exit(exit),
		kong.ConfigureHelp(kong.HelpOptions{Compact: true, Summary: true}),
		kong.Configuration(config.Load, config.DefaultPath()),
		kong.Vars{"profile_modes": strings.Join(profile.Modes(), ", ")},
	)
	if err != nil {
		fmt.Fprintf(stderr, "lox: %v\n", err)
		return diag.ExitUsage
	}

	ktx, err := k.Parse(args)
	if err != nil {
		fmt.Fprintf(stderr, "lox: %v\nRun 'lox --help' for usage.\n", err)
		return diag.ExitUsage
	}
	if cli.Profile != "" && !slices.Contains(profile.Modes(), cli.Profile) {
		fmt.Fprintf(stderr, "lox: --profile must be one of %s\n", strings.Join(profile.Modes(), ", "))
		return diag.ExitUsage
	}

	a := &app{
		cli:    &cli,
		stdin:  stdin,
		stdout: stdout,
		stderr: stderr,
		logger: log.Make(stderr,
			log.WithLevel(log.ParseLevel(cli.LogLevel)),
			log.WithFormat(log.ParseFormat(cli.LogFormat)),
		),
		reporter: diag.NewReporter(stderr),
	}
	a.logger.Debug("configured",
		slog.String("command", ktx.Command()),
		slog.Int("max_args", cli.MaxArgs),
		slog.Int("max_depth", cli.MaxDepth),
		slog.String("profile", cli.Profile),
	)

	stop := profile.Start(cli.Profile, cli.ProfilePath, false)
	defer stop.Stop()

	if err := ktx.Run(a); err != nil {
		var code exitStatus
		if errors.As(err, &code) {
			return int(code)
		}
		fmt.Fprintf(stderr, "lox: %v\n", err)
		return diag.ExitSoftware
	}
	return diag.ExitOK
}

// readSource reads a script, with "-" meaning standard input.
func (a *app) readSource(path string) (string, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(a.stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		fmt.Fprintf(a.stderr, "lox: cannot read script: %v\n", err)
		return "", exitStatus(diag.ExitNoInput)
	}
	return string(data), nil
}

// scan tokenizes source, reporting lexical errors.
func (a *app) scan(source string) []token.Token {
	start := time.Now()
	tokens, diags := lexer.Scan(source)
	a.reporter.Report(diags...)

	a.logger.Debug("scanned",
		slog.Int("tokens", len(tokens)),
		slog.Int("errors", len(diags)),
		slog.Duration("elapsed", time.Since(start)),
	)
	return tokens
}

// parse builds the syntax tree from tokens, reporting parse errors.
func (a *app) parse(tokens []token.Token) []ast.Stmt {
	start := time.Now()
	stmts, diags := parser.New(tokens, parser.WithMaxArgs(a.cli.MaxArgs)).Parse()
	a.reporter.Report(diags...)

	a.logger.Debug("parsed",
		slog.Int("statements", len(stmts)),
		slog.Int("errors", len(diags)),
		slog.Duration("elapsed", time.Since(start)),
	)
	return stmts
}

// compile runs both static phases. The parser still runs after lexical
// errors so that every static error is reported in one pass; ok is false
// when anything was reported.
func (a *app) compile(source string) (stmts []ast.Stmt, ok bool) {
	stmts = a.parse(a.scan(source))
	return stmts, !a.reporter.HadError()
}

func (a *app) newInterpreter(output io.Writer) *runtime.Interpreter {
	return runtime.NewInterpreter(output,
		runtime.WithLogger(a.logger),
		runtime.WithMaxDepth(a.cli.MaxDepth),
	)
}

// ---- run command ----

type runCmd struct {
	Script string `arg:"" help:"Script to run, or '-' for standard input."`
}

func (c *runCmd) Run(a *app) error {
	source, err := a.readSource(c.Script)
	if err != nil {
		return err
	}

	stmts, ok := a.compile(source)
	if !ok {
		return status(a.reporter.ExitCode())
	}

	if err := a.newInterpreter(a.stdout).Interpret(stmts); err != nil {
		a.reporter.RuntimeError(err)
		a.logger.LogAttrs(context.Background(), slog.LevelDebug, "runtime error",
			slog.String("script", c.Script))
	}
	return status(a.reporter.ExitCode())
}

// ---- tokens command ----

type tokensCmd struct {
	Script string `arg:"" help:"Script to tokenize, or '-' for standard input."`
	JSON   bool   `help:"Print tokens as JSON."                                 name:"json"`
}

func (c *tokensCmd) Run(a *app) error {
	source, err := a.readSource(c.Script)
	if err != nil {
		return err
	}

	if c.JSON {
		tokens, diags := lexer.Scan(source)
		if err := printTokensJSON(a.stdout, tokens, diags); err != nil {
			return err
		}
		if len(diags) > 0 {
			return exitStatus(diag.ExitDataErr)
		}
		return nil
	}

	printTokensText(a.stdout, a.scan(source))
	return status(a.reporter.ExitCode())
}

// ---- parse command ----

type parseCmd struct {
	Script string `arg:"" help:"Script to parse, or '-' for standard input."`
	Format string `default:"sexpr" enum:"sexpr,json,yaml" help:"Output format (sexpr, json, yaml)." short:"f"`
}

func (c *parseCmd) Run(a *app) error {
	source, err := a.readSource(c.Script)
	if err != nil {
		return err
	}

	stmts, _ := a.compile(source)

	switch c.Format {
	case "json":
		err = printJSON(a.stdout, programDoc(stmts, a.reporter.Diagnostics()))
	case "yaml":
		err = printYAML(a.stdout, programDoc(stmts, a.reporter.Diagnostics()))
	default:
		fmt.Fprint(a.stdout, ast.PrintProgram(stmts))
	}
	if err != nil {
		return err
	}
	return status(a.reporter.ExitCode())
}
