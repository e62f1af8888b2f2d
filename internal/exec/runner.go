// Package exec provides a stub-friendly interface for running external commands.
package exec

import (
	"bytes"
	"context"
	stderrors "errors"
	"io"
	"os/exec"
	"time"
)

// Synthetic exit codes for outcomes where the process did not exit on its own.
const (
	ExitTimeout   = 124 // killed after RunOpts.Timeout elapsed
	ExitCanceled  = 125 // killed because the parent context was canceled
	ExitStartFail = -1  // binary missing or not executable
)

// waitDelay bounds how long Wait blocks on inherited pipes after the process is killed.
const waitDelay = 5 * time.Second

// CmdResult holds the result of a command execution.
type CmdResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
	Duration time.Duration
	TimedOut bool
}

// RunOpts holds optional parameters for command execution.
//
// When Stdout/Stderr are nil the output is captured into CmdResult.
// When they are set (typically os.Stdout/os.Stderr) the child writes to them
// directly and CmdResult.Stdout/Stderr stay empty.
type RunOpts struct {
	Dir     string            // working directory for the child only
	Env     map[string]string // extra environment variables (overlay)
	Stdin   io.Reader
	Stdout  io.Writer
	Stderr  io.Writer
	Timeout time.Duration // 0 means no timeout
}

// Inherit returns a copy of opts wired to the given streams.
func (o RunOpts) Inherit(stdin io.Reader, stdout, stderr io.Writer) RunOpts {
	o.Stdin = stdin
	o.Stdout = stdout
	o.Stderr = stderr
	return o
}

// CommandRunner is the interface for running external commands.
// Implementations must be safe for stubbing in tests.
type CommandRunner interface {
	// Run executes a command and returns the result.
	// Returns CmdResult with ExitCode set if the process exits (even non-zero).
	// Timeouts report ExitTimeout with a nil error.
	// Returns error only for execution failures (binary not found, ctx canceled).
	Run(ctx context.Context, name string, args []string, opts RunOpts) (CmdResult, error)
}

// RealRunner is the production implementation of CommandRunner using os/exec.
type RealRunner struct{}

// NewRealRunner creates a new RealRunner.
func NewRealRunner() *RealRunner {
	return &RealRunner{}
}

// Run executes the command. The parent process working directory is never changed;
// opts.Dir only applies to the child.
func (r *RealRunner) Run(ctx context.Context, name string, args []string, opts RunOpts) (CmdResult, error) {
	runCtx := ctx
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(runCtx, name, args...)
	cmd.WaitDelay = waitDelay

	var stdout, stderr bytes.Buffer
	cmd.Stdin = opts.Stdin
	cmd.Stdout = &stdout
	if opts.Stdout != nil {
		cmd.Stdout = opts.Stdout
	}
	cmd.Stderr = &stderr
	if opts.Stderr != nil {
		cmd.Stderr = opts.Stderr
	}

	if opts.Dir != "" {
		cmd.Dir = opts.Dir
	}

	if len(opts.Env) > 0 {
		cmd.Env = cmd.Environ()
		for k, v := range opts.Env {
			cmd.Env = append(cmd.Env, k+"="+v)
		}
	}

	start := time.Now()
	err := cmd.Run()

	result := CmdResult{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: time.Since(start),
	}

	// Parent cancellation wins over everything else.
	if ctx.Err() != nil {
		result.ExitCode = ExitCanceled
		return result, ctx.Err()
	}
	if runCtx.Err() == context.DeadlineExceeded {
		result.ExitCode = ExitTimeout
		result.TimedOut = true
		return result, nil
	}

	if err != nil {
		var exitErr *exec.ExitError
		if stderrors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
			return result, nil
		}
		result.ExitCode = ExitStartFail
		return result, err
	}

	result.ExitCode = 0
	return result, nil
}

// LookPath reports whether name resolves to an executable on PATH.
func LookPath(name string) (string, error) {
	return exec.LookPath(name)
}
