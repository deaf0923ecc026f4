// Package report is the error channel shared by every stage of the
// pipeline. It prints diagnostics and remembers which kind of failure
// happened so the CLI can pick an exit code.
package report

import (
	"fmt"
	"io"
)

// Exit codes used by the command line tool.
const (
	ExitUsage   = 64
	ExitStatic  = 65
	ExitRuntime = 70
)

type Reporter struct {
	out io.Writer

	hadError        bool
	hadRuntimeError bool
}

func New(out io.Writer) *Reporter {
	return &Reporter{out: out}
}

// Static reports a scan, parse or resolve error. The error text already
// carries its "[line N] Error ..." prefix.
func (r *Reporter) Static(err error) {
	fmt.Fprintln(r.out, err.Error())
	r.hadError = true
}

// RuntimeError reports an error raised while executing.
func (r *Reporter) RuntimeError(line int, message string) {
	fmt.Fprintf(r.out, "%s\n[line %d]\n", message, line)
	r.hadRuntimeError = true
}

func (r *Reporter) HadError() bool        { return r.hadError }
func (r *Reporter) HadRuntimeError() bool { return r.hadRuntimeError }

// Reset clears both flags, e.g. between REPL lines.
func (r *Reporter) Reset() {
	r.hadError = false
	r.hadRuntimeError = false
}

// ExitCode maps the recorded failures to a process exit status.
func (r *Reporter) ExitCode() int {
	switch {
	case r.hadError:
		return ExitStatic
	case r.hadRuntimeError:
		return ExitRuntime
	default:
		return 0
	}
}
