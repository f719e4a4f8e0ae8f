// Package runner executes the build/test commands of a checked-out
// repository and detects which commands apply to its package manager.
package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/smartupdate/internal/domain/entities"
)

// transcriptTailBytes bounds how much of each stream is kept for diagnosis
// and issue bodies.
const transcriptTailBytes = 5000

// BuildRunner runs shell commands inside a repository working directory,
// bounding each run by the configured timeout. A timeout is a failed run,
// not an error, so it feeds the rollback cycle like any other failure.
type BuildRunner struct {
	timeout time.Duration
}

// NewBuildRunner creates a runner with the configured build timeout.
func NewBuildRunner(settings *entities.Settings) *BuildRunner {
	return &BuildRunner{timeout: time.Duration(settings.Build.TimeoutSeconds) * time.Second}
}

// Run executes the command through the shell with workDir as the working
// directory and captures the tail of both streams.
func (it *BuildRunner) Run(ctx context.Context, workDir, command string) (entities.BuildResult, error) {
	runCtx, cancel := context.WithTimeout(ctx, it.timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, "bash", "-c", command)
	cmd.Dir = workDir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	logger.Debugf("Running '%s' in '%s'", command, workDir)
	runErr := cmd.Run()

	result := entities.BuildResult{
		Command:    command,
		StdoutTail: tail(stdout.String()),
		StderrTail: tail(stderr.String()),
	}

	if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		result.TimedOut = true
		result.ExitCode = -1
		logger.Warnf("Command '%s' timed out after %s", command, it.timeout)
		return result, nil
	}

	if runErr != nil {
		var exitErr *exec.ExitError
		if errors.As(runErr, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
			return result, nil
		}
		return result, fmt.Errorf("failed to run %q: %w", command, runErr)
	}

	return result, nil
}

func tail(output string) string {
	if len(output) <= transcriptTailBytes {
		return output
	}
	return output[len(output)-transcriptTailBytes:]
}
