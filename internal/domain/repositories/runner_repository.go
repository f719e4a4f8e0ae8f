package repositories

import (
	"context"

	"github.com/rios0rios0/smartupdate/internal/domain/entities"
)

// BuildRunnerRepository executes build and test commands in a working tree.
// A timed-out command is reported as a failed result, not as an error:
// the orchestration treats it as a build/test failure feeding the rollback
// cycle, never as an infrastructure fault.
type BuildRunnerRepository interface {
	// Run executes one shell command in the given directory, bounded by the
	// configured timeout, and captures the output tails.
	Run(ctx context.Context, workDir, command string) (entities.BuildResult, error)

	// DetectCommands inspects the working tree and returns the install,
	// build, and test commands for its package manager.
	DetectCommands(workDir string) (entities.BuildCommands, error)
}

// DiagnoserRepository identifies the package most likely responsible for a
// failing build/test transcript. The heavy lifting lives outside this core;
// implementations may be as simple as substring matching.
type DiagnoserRepository interface {
	// SuspectPackage returns the name of the suspected package, or the empty
	// string when no candidate can be blamed.
	SuspectPackage(ctx context.Context, transcript string, candidates []entities.DependencyUpdate) (string, error)
}
