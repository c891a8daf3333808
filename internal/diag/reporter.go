package diag

import (
	"fmt"
	"io"
)

// Process exit codes, following sysexits(3).
const (
	ExitOK       = 0
	ExitUsage    = 64 // EX_USAGE: bad command line
	ExitDataErr  = 65 // EX_DATAERR: lexical or parse error
	ExitNoInput  = 66 // EX_NOINPUT: script cannot be read
	ExitSoftware = 70 // EX_SOFTWARE: uncaught runtime error
)

// Reporter is the sink every phase reports through. It writes each message
// to its writer as it arrives and remembers which kinds of failure occurred.
type Reporter struct {
	w               io.Writer
	diags           []Diagnostic
	hadError        bool
	hadRuntimeError bool
}

// NewReporter creates a Reporter that writes to w.
func NewReporter(w io.Writer) *Reporter {
	return &Reporter{w: w}
}

// Report records and prints static diagnostics.
func (r *Reporter) Report(diags ...Diagnostic) {
	for _, d := range diags {
		r.diags = append(r.diags, d)
		if d.Severity == Error {
			r.hadError = true
		}
		fmt.Fprintln(r.w, d.String())
	}
}

// RuntimeError records and prints an error that stopped execution.
func (r *Reporter) RuntimeError(err error) {
	r.hadRuntimeError = true
	fmt.Fprintln(r.w, err.Error())
}

// Diagnostics returns every static diagnostic reported so far.
func (r *Reporter) Diagnostics() []Diagnostic {
	return r.diags
}

// HadError reports whether a lexical or parse error was reported.
func (r *Reporter) HadError() bool { return r.hadError }

// HadRuntimeError reports whether a runtime error was reported.
func (r *Reporter) HadRuntimeError() bool { return r.hadRuntimeError }

// ExitCode maps the recorded failures to a process exit code. Static errors
// take precedence since they prevent execution entirely.
func (r *Reporter) ExitCode() int {
	switch {
	case r.hadError:
		return ExitDataErr
	case r.hadRuntimeError:
		return ExitSoftware
	default:
		return ExitOK
	}
}

// Reset clears the recorded state so the next REPL entry starts clean.
func (r *Reporter) Reset() {
	r.diags = nil
	r.hadError = false
	r.hadRuntimeError = false
}
