package deploy

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
)

// Result holds the captured output of one CLI invocation.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Runner executes an external command and waits for it to finish, even when
// ctx is cancelled mid-run.
// A non-zero exit is reported in Result, not as an error; err is reserved
// for commands that could not be run at all.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (*Result, error)
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct {
	Dir string // working directory, empty = current
}

func (r ExecRunner) Run(ctx context.Context, name string, args ...string) (*Result, error) {
	// an interrupted sf deploy leaves the org half-deployed
	cmd := exec.CommandContext(context.WithoutCancel(ctx), name, args...)
	cmd.Dir = r.Dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	result := &Result{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}

	var exitErr *exec.ExitError
	switch {
	case err == nil:
		result.ExitCode = 0
	case errors.As(err, &exitErr):
		result.ExitCode = exitErr.ExitCode()
	default:
		result.ExitCode = -1
		return result, fmt.Errorf("running %s: %w", name, err)
	}
	return result, nil
}
