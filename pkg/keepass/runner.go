// Package keepass provides browsing access to a KeePass database by driving
// an external vault tool (keepassxc-cli) as a subprocess. It never touches
// the database file itself: all cryptography and file-format handling stays
// in the tool, and this package only parses its line-oriented text output.
package keepass

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
)

// DefaultProgram is the vault tool invoked when no override is configured.
const DefaultProgram = "keepassxc-cli"

// Result holds the outcome of one vault tool invocation.
// Output is stdout and stderr merged, in arrival order.
type Result struct {
	ExitCode int
	Output   string
}

// Ok reports whether the tool exited successfully.
func (r Result) Ok() bool { return r.ExitCode == 0 }

// Runner executes the vault tool once with the master password on stdin.
// Implementations must be a single blocking call with no retry logic.
type Runner interface {
	Run(ctx context.Context, password string, args []string) (Result, error)
}

// ExecRunner runs a real subprocess. Arguments are passed as a structured
// argv, never through a shell, so group and entry names containing shell
// metacharacters cannot be interpreted.
type ExecRunner struct {
	// Program is the vault tool binary. Empty means DefaultProgram.
	Program string

	// Debug, when non-nil, receives the argv and the raw combined output of
	// every invocation. The output can contain cleartext secrets and the
	// unlock prompt; wiring this is explicitly unsafe and opt-in only.
	Debug io.Writer
}

// Run invokes the vault tool, feeding password to its standard input.
// The password travels over stdin rather than argv or the environment so it
// never shows up in process listings.
func (e *ExecRunner) Run(ctx context.Context, password string, args []string) (Result, error) {
	program := e.Program
	if program == "" {
		program = DefaultProgram
	}

	cmd := exec.CommandContext(ctx, program, args...)
	cmd.Stdin = strings.NewReader(password + "\n")

	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	if e.Debug != nil {
		fmt.Fprintf(e.Debug, "exec: %s %s\n", program, strings.Join(args, " "))
	}

	err := cmd.Run()

	if e.Debug != nil {
		fmt.Fprintf(e.Debug, "exit: %v output: %q\n", err, out.String())
	}

	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			// The tool could not be started at all (missing binary,
			// permission problem). There is no exit status to report.
			return Result{}, fmt.Errorf("keepass: failed to run %s: %w", program, err)
		}
		return Result{ExitCode: exitErr.ExitCode(), Output: out.String()}, nil
	}

	return Result{ExitCode: 0, Output: out.String()}, nil
}
