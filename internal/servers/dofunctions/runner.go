package dofunctions

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Output is the captured result of one CLI invocation
type Output struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Runner executes the deployment CLI
type Runner interface {
	Run(ctx context.Context, dir string, args ...string) (Output, error)
}

// CommandError reports a CLI invocation that could not start or exited non-zero
type CommandError struct {
	Command  string
	ExitCode int
	Stderr   string
	Err      error
}

func (e *CommandError) Error() string {
	msg := fmt.Sprintf("command failed: %s", e.Command)
	if e.ExitCode != 0 {
		msg += fmt.Sprintf(" (exit %d)", e.ExitCode)
	}
	if e.Stderr != "" {
		return msg + ": " + e.Stderr
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// ExecRunner runs a binary (doctl) as a subprocess, capturing stdout and stderr
type ExecRunner struct {
	Path   string
	Logger zerolog.Logger
}

// Run executes Path with args in dir. Output is trimmed of surrounding whitespace.
func (r *ExecRunner) Run(ctx context.Context, dir string, args ...string) (Output, error) {
	command := strings.Join(append([]string{r.Path}, args...), " ")

	// #nosec G204 -- the binary is configured by the operator, args are built by the deployer
	cmd := exec.CommandContext(ctx, r.Path, args...)
	cmd.Dir = dir
	cmd.WaitDelay = time.Second

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	out := Output{
		Stdout: strings.TrimSpace(stdout.String()),
		Stderr: strings.TrimSpace(stderr.String()),
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		out.ExitCode = exitErr.ExitCode()
	}

	r.Logger.Debug().
		Str("command", command).
		Str("dir", dir).
		Int("exit_code", out.ExitCode).
		Dur("duration", time.Since(start)).
		Msg("doctl command finished")

	if ctxErr := ctx.Err(); ctxErr != nil {
		return out, &CommandError{Command: command, ExitCode: out.ExitCode, Stderr: out.Stderr, Err: ctxErr}
	}
	if err != nil {
		return out, &CommandError{Command: command, ExitCode: out.ExitCode, Stderr: out.Stderr, Err: err}
	}
	return out, nil
}
