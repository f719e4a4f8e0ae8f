package repositories

import (
	"context"
	"encoding/json"

	"github.com/rios0rios0/smartupdate/internal/domain/entities"
)

// ToolServerRepository is the orchestration-facing surface of the persistent
// tool-server session. Exactly one implementation instance exists per process;
// all remote calls are serialized through it.
type ToolServerRepository interface {
	// Start launches the tool server and performs the capability handshake.
	// It fails with entities.ErrMissingToken when no credential is configured,
	// without spawning a process.
	Start(ctx context.Context) error

	// EnsureConnected is a no-op when running, starts when stopped, and
	// reconnects when in an error state.
	EnsureConnected(ctx context.Context) error

	// Stop tears down the child process and channel. Valid from any state.
	Stop()

	// Info returns a snapshot of the session state.
	Info() entities.SessionInfo

	// Tools returns the remote operation names enumerated by the handshake.
	Tools() []string

	// Call invokes a named remote operation with a JSON argument object and
	// returns the raw success payload. Channel faults are retried exactly
	// once after a reconnect before being surfaced.
	Call(ctx context.Context, operation string, args map[string]any) (json.RawMessage, error)

	// CreateBranch creates a branch on the remote repository.
	CreateBranch(ctx context.Context, identity entities.RepositoryIdentity, branch, fromBranch string) (entities.BranchResult, error)

	// PushFiles commits a batch of files to a branch as one commit.
	PushFiles(ctx context.Context, identity entities.RepositoryIdentity, branch string, files []entities.FileChange, message string) (entities.PushResult, error)

	// OpenPullRequest opens a pull request on the remote repository.
	OpenPullRequest(ctx context.Context, identity entities.RepositoryIdentity, input entities.PullRequestInput) (entities.PullRequestResult, error)

	// OpenIssue files an issue on the remote repository.
	OpenIssue(ctx context.Context, identity entities.RepositoryIdentity, title, body string, labels []string) (entities.IssueResult, error)
}
