// Package gitrun wraps the command-line git binary for the mutating
// operations of the reconciliation workflow, and go-git for read-only
// repository probes. Commands run as argv vectors (never through a shell),
// with the repository root as working directory.
package gitrun

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	logger "github.com/sirupsen/logrus"
)

// ExecError carries the full context of a failed git invocation for
// diagnosis: the arguments, the exit code and the captured output streams.
type ExecError struct {
	Args     []string
	ExitCode int
	Stdout   string
	Stderr   string
	Err      error
}

func (e *ExecError) Error() string {
	return fmt.Sprintf("git %s: exit %d: %s",
		strings.Join(e.Args, " "), e.ExitCode, strings.TrimSpace(e.Stderr))
}

func (e *ExecError) Unwrap() error {
	return e.Err
}

// Runner executes git commands with a fixed working directory.
type Runner struct {
	dir string
}

// NewRunner creates a Runner rooted at the given repository directory.
func NewRunner(dir string) *Runner {
	return &Runner{dir: dir}
}

// Dir returns the working directory commands run in.
func (it *Runner) Dir() string {
	return it.dir
}

// Run executes one git command and returns its trimmed stdout. A non-zero
// exit surfaces as an *ExecError.
func (it *Runner) Run(ctx context.Context, args ...string) (string, error) {
	stdout, _, err := it.exec(ctx, args...)
	return stdout, err
}

// RunAllowFailure executes one git command tolerating a non-zero exit, used
// for optional or fallible probes. It returns trimmed stdout and whether
// the command succeeded; only spawn-level failures return an error.
func (it *Runner) RunAllowFailure(ctx context.Context, args ...string) (string, bool, error) {
	stdout, _, err := it.exec(ctx, args...)
	if err != nil {
		var execErr *ExecError
		if errors.As(err, &execErr) && execErr.ExitCode >= 0 {
			return stdout, false, nil
		}
		return "", false, err
	}
	return stdout, true, nil
}

func (it *Runner) exec(ctx context.Context, args ...string) (string, string, error) {
	logger.Debugf("git %s (in %s)", strings.Join(args, " "), it.dir)

	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = it.dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	outStr := strings.TrimRight(stdout.String(), "\n")
	errStr := stderr.String()

	if err != nil {
		exitCode := -1
		if exitErr, ok := err.(*exec.ExitError); ok {
			exitCode = exitErr.ExitCode()
		}
		return outStr, errStr, &ExecError{
			Args:     args,
			ExitCode: exitCode,
			Stdout:   outStr,
			Stderr:   errStr,
			Err:      err,
		}
	}

	return outStr, errStr, nil
}
