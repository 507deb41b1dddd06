// Package java runs the JVM-hosted EDNEL utilities as child processes.
package java

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"ednelkit/internal"
	apperrors "ednelkit/internal/errors"
	"ednelkit/ports"
)

// ExecRunner implements ports.CommandRunner with os/exec
type ExecRunner struct {
	logger *internal.Logger
}

// NewExecRunner creates a runner that traces every invocation
func NewExecRunner(logger *internal.Logger) *ExecRunner {
	return &ExecRunner{logger: logger}
}

// Run blocks until the process exits or ctx is cancelled
func (r *ExecRunner) Run(ctx context.Context, cmd ports.Command) (*ports.CommandResult, error) {
	r.logger.Debug("running %s %s", cmd.Name, strings.Join(cmd.Args, " "))

	c := exec.CommandContext(ctx, cmd.Name, cmd.Args...)
	c.Dir = cmd.Dir
	var stdout, stderr bytes.Buffer
	c.Stdout = &stdout
	c.Stderr = &stderr

	err := c.Run()
	result := &ports.CommandResult{Stdout: stdout.String(), Stderr: stderr.String()}

	var exitErr *exec.ExitError
	switch {
	case err == nil:
		return result, nil
	case ctx.Err() != nil:
		return nil, apperrors.ExternalProcessError(cmd.Name, ctx.Err())
	case errors.As(err, &exitErr):
		result.ExitCode = exitErr.ExitCode()
		r.logger.Trace("%s exited with %d: %s", cmd.Name, result.ExitCode, strings.TrimSpace(result.Stderr))
		return result, nil
	default:
		return nil, apperrors.ExternalProcessError(cmd.Name, err)
	}
}

// CompilePredictions builds the invocation of the toolkit's prediction compiler
// over one directory of .preds files.
func CompilePredictions(javaBin, jar, heapSize, predictionsDir string) ports.Command {
	args := []string{}
	if heapSize != "" {
		args = append(args, fmt.Sprintf("-Xmx%s", heapSize))
	}
	args = append(args,
		"-classpath", jar,
		"ednel.utils.analysis.CompilePredictions",
		"--path_predictions", predictionsDir,
	)
	return ports.Command{Name: javaBin, Args: args}
}
