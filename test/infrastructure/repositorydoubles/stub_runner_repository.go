//go:build integration || unit || test

package repositorydoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"context"

	"github.com/rios0rios0/smartupdate/internal/domain/entities"
	"github.com/rios0rios0/smartupdate/internal/domain/repositories"
)

// StubRunnerRepository implements repositories.BuildRunnerRepository with
// scripted results. Each Run call consumes the next entry of Results; once
// the script is exhausted the last entry repeats, so a test can describe
// "fail twice, then pass" without counting every install/build/test command.
type StubRunnerRepository struct {
	// --- DetectCommands ---
	Commands  entities.BuildCommands
	DetectErr error

	// --- Run ---
	Results []entities.BuildResult
	RunErr  error
	// spy: commands executed, in order
	RunCalls []RunCall

	next int
}

// RunCall records a single invocation of Run.
type RunCall struct {
	WorkDir string
	Command string
}

var _ repositories.BuildRunnerRepository = (*StubRunnerRepository)(nil)

func (it *StubRunnerRepository) Run(
	_ context.Context, workDir, command string,
) (entities.BuildResult, error) {
	it.RunCalls = append(it.RunCalls, RunCall{WorkDir: workDir, Command: command})
	if it.RunErr != nil {
		return entities.BuildResult{}, it.RunErr
	}
	if len(it.Results) == 0 {
		return entities.BuildResult{Command: command, ExitCode: 0}, nil
	}
	result := it.Results[it.next]
	if it.next < len(it.Results)-1 {
		it.next++
	}
	result.Command = command
	return result, nil
}

func (it *StubRunnerRepository) DetectCommands(_ string) (entities.BuildCommands, error) {
	if it.DetectErr != nil {
		return entities.BuildCommands{}, it.DetectErr
	}
	return it.Commands, nil
}
