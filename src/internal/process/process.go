// Package process spawns child processes with an explicit environment
package process

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"

	"github.com/dtvem/noderuntime/src/internal/ui"
)

// Command describes a child process to start.
type Command struct {
	Path string
	Args []string

	// Env is the complete child environment. A nil Env inherits the
	// parent's environment; an empty non-nil Env starts the child with none.
	Env []string

	// Dir is the working directory; empty means the parent's.
	Dir string

	// Discard sends stdout and stderr to the null device instead of capturing them.
	Discard bool
}

func (c Command) String() string {
	return strings.Join(append([]string{c.Path}, c.Args...), " ")
}

// Output is the result of a process that was started and ran to completion.
type Output struct {
	Stdout   []byte
	Stderr   []byte
	ExitCode int
}

// Success reports whether the process exited with status zero.
func (o *Output) Success() bool {
	return o.ExitCode == 0
}

// Runner starts processes and waits for them.
//
// Run returns an error only when the process could not be started or waited
// on. A process that ran and exited non-zero yields an Output with its
// ExitCode and a nil error.
type Runner interface {
	Run(ctx context.Context, cmd Command) (*Output, error)
}

// ExecRunner is the os/exec backed Runner.
type ExecRunner struct{}

// NewExecRunner returns a Runner that spawns real processes.
func NewExecRunner() *ExecRunner {
	return &ExecRunner{}
}

// Run implements Runner.
func (ExecRunner) Run(ctx context.Context, cmd Command) (*Output, error) {
	ui.Debug("Running: %s", cmd)

	c := exec.CommandContext(ctx, cmd.Path, cmd.Args...)
	if cmd.Env != nil {
		// exec treats a nil Env as "inherit", so an empty slice must stay non-nil
		c.Env = append([]string{}, cmd.Env...)
	}
	c.Dir = cmd.Dir

	var stdout, stderr bytes.Buffer
	if cmd.Discard {
		c.Stdout = io.Discard
		c.Stderr = io.Discard
	} else {
		c.Stdout = &stdout
		c.Stderr = &stderr
	}

	err := c.Run()

	var exitErr *exec.ExitError
	if err != nil && !errors.As(err, &exitErr) {
		return nil, fmt.Errorf("failed to start %s: %w", cmd.Path, err)
	}
	if err != nil && ctx.Err() != nil {
		// Killed because the context ended, not a genuine exit status
		return nil, fmt.Errorf("%s interrupted: %w", cmd.Path, ctx.Err())
	}

	out := &Output{
		Stdout:   stdout.Bytes(),
		Stderr:   stderr.Bytes(),
		ExitCode: c.ProcessState.ExitCode(),
	}
	ui.Debug("Exit code: %d", out.ExitCode)
	return out, nil
}
