// Package exec runs external commands such as git and gh.
package exec

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	oe "os/exec"
	"strings"

	"github.com/rs/zerolog/log"
)

const redacted = "***"

// Command describes a single subprocess invocation
type Command struct {
	// Dir is the working directory, empty for the current one
	Dir  string
	Name string
	Args []string
	// Stdin is written to the process standard input when not empty
	Stdin string
	// Secrets are masked wherever the command line appears in logs or errors
	Secrets []string
}

// String returns the command line with secrets masked
func (c Command) String() string {
	return c.redact(c.Line())
}

// Line returns the command line without masking
func (c Command) Line() string {
	return strings.TrimSpace(c.Name + " " + strings.Join(c.Args, " "))
}

func (c Command) redact(s string) string {
	for _, secret := range c.Secrets {
		if secret != "" {
			s = strings.ReplaceAll(s, secret, redacted)
		}
	}
	return s
}

// Result holds the captured output of a finished command
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Runner executes commands. Implementations return a *CommandError for non-zero exits.
type Runner interface {
	Run(ctx context.Context, cmd Command) (*Result, error)
}

// CommandError is returned when a command cannot be started or exits non-zero
type CommandError struct {
	Command  string
	ExitCode int
	Stderr   string
	Err      error
}

func (e *CommandError) Error() string {
	msg := fmt.Sprintf("command failed: %s", e.Command)
	if e.ExitCode != 0 {
		msg = fmt.Sprintf("%s (exit code %d)", msg, e.ExitCode)
	}
	if stderr := strings.TrimSpace(e.Stderr); stderr != "" {
		msg = fmt.Sprintf("%s\n%s", msg, stderr)
	}
	return msg
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// ExecRunner runs commands as local subprocesses
type ExecRunner struct{}

// NewExecRunner creates a runner backed by os/exec
func NewExecRunner() *ExecRunner {
	return &ExecRunner{}
}

// Run executes the command and waits for it, capturing stdout and stderr separately
func (r *ExecRunner) Run(ctx context.Context, cmd Command) (*Result, error) {
	log.Debug().Str("dir", cmd.Dir).Msgf("Executing: %s", cmd)

	//nolint:gosec // arguments come from validated configuration
	c := oe.CommandContext(ctx, cmd.Name, cmd.Args...)
	if cmd.Dir != "" {
		c.Dir = cmd.Dir
	}
	if cmd.Stdin != "" {
		c.Stdin = strings.NewReader(cmd.Stdin)
	}

	var stdout, stderr bytes.Buffer
	c.Stdout = &stdout
	c.Stderr = &stderr

	err := c.Run()

	result := &Result{
		Stdout: strings.TrimSpace(stdout.String()),
		Stderr: cmd.redact(stderr.String()),
	}

	log.Trace().Str("stdout", cmd.redact(result.Stdout)).Str("stderr", result.Stderr).Msg("Command output")

	if err != nil {
		cmdErr := &CommandError{
			Command: cmd.String(),
			Stderr:  result.Stderr,
			Err:     err,
		}
		var exitErr *oe.ExitError
		if errors.As(err, &exitErr) {
			cmdErr.ExitCode = exitErr.ExitCode()
			result.ExitCode = cmdErr.ExitCode
		}
		return result, cmdErr
	}

	return result, nil
}
