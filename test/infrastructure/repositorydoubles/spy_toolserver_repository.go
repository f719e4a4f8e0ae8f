//go:build integration || unit || test

package repositorydoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"context"
	"encoding/json"

	"github.com/rios0rios0/smartupdate/internal/domain/entities"
	"github.com/rios0rios0/smartupdate/internal/domain/repositories"
)

// SpyToolServerRepository implements repositories.ToolServerRepository as a
// configurable spy. Configure the response fields for the operations your
// test exercises, then inspect the call-tracking fields to verify behavior.
type SpyToolServerRepository struct {
	// --- lifecycle ---
	StartErr    error
	EnsureErr   error
	InfoResult  entities.SessionInfo
	ToolNames   []string
	StartCalls  int
	EnsureCalls int
	StopCalls   int

	// --- Call ---
	CallPayload json.RawMessage
	CallErr     error
	// spy: raw calls received
	Calls []RawCall

	// --- CreateBranch ---
	BranchResult entities.BranchResult
	BranchErr    error
	// spy: branch creations received
	BranchCalls []BranchCall

	// --- PushFiles ---
	PushResult entities.PushResult
	PushErr    error
	// spy: pushes received
	PushCalls []PushCall

	// --- OpenPullRequest ---
	PRResult entities.PullRequestResult
	PRErr    error
	// spy: inputs received
	PRInputs []entities.PullRequestInput

	// --- OpenIssue ---
	IssueResult entities.IssueResult
	IssueErr    error
	// spy: issues received
	IssueCalls []IssueCall
}

// RawCall records a single invocation of Call.
type RawCall struct {
	Operation string
	Args      map[string]any
}

// BranchCall records a single invocation of CreateBranch.
type BranchCall struct {
	Identity   entities.RepositoryIdentity
	Branch     string
	FromBranch string
}

// PushCall records a single invocation of PushFiles.
type PushCall struct {
	Identity entities.RepositoryIdentity
	Branch   string
	Files    []entities.FileChange
	Message  string
}

// IssueCall records a single invocation of OpenIssue.
type IssueCall struct {
	Identity entities.RepositoryIdentity
	Title    string
	Body     string
	Labels   []string
}

var _ repositories.ToolServerRepository = (*SpyToolServerRepository)(nil)

func (it *SpyToolServerRepository) Start(_ context.Context) error {
	it.StartCalls++
	return it.StartErr
}

func (it *SpyToolServerRepository) EnsureConnected(_ context.Context) error {
	it.EnsureCalls++
	return it.EnsureErr
}

func (it *SpyToolServerRepository) Stop() {
	it.StopCalls++
}

func (it *SpyToolServerRepository) Info() entities.SessionInfo {
	return it.InfoResult
}

func (it *SpyToolServerRepository) Tools() []string {
	return it.ToolNames
}

func (it *SpyToolServerRepository) Call(
	_ context.Context, operation string, args map[string]any,
) (json.RawMessage, error) {
	it.Calls = append(it.Calls, RawCall{Operation: operation, Args: args})
	return it.CallPayload, it.CallErr
}

func (it *SpyToolServerRepository) CreateBranch(
	_ context.Context,
	identity entities.RepositoryIdentity,
	branch, fromBranch string,
) (entities.BranchResult, error) {
	it.BranchCalls = append(it.BranchCalls, BranchCall{
		Identity: identity, Branch: branch, FromBranch: fromBranch,
	})
	return it.BranchResult, it.BranchErr
}

func (it *SpyToolServerRepository) PushFiles(
	_ context.Context,
	identity entities.RepositoryIdentity,
	branch string,
	files []entities.FileChange,
	message string,
) (entities.PushResult, error) {
	it.PushCalls = append(it.PushCalls, PushCall{
		Identity: identity, Branch: branch, Files: files, Message: message,
	})
	return it.PushResult, it.PushErr
}

func (it *SpyToolServerRepository) OpenPullRequest(
	_ context.Context,
	_ entities.RepositoryIdentity,
	input entities.PullRequestInput,
) (entities.PullRequestResult, error) {
	it.PRInputs = append(it.PRInputs, input)
	return it.PRResult, it.PRErr
}

func (it *SpyToolServerRepository) OpenIssue(
	_ context.Context,
	identity entities.RepositoryIdentity,
	title, body string,
	labels []string,
) (entities.IssueResult, error) {
	it.IssueCalls = append(it.IssueCalls, IssueCall{
		Identity: identity, Title: title, Body: body, Labels: labels,
	})
	return it.IssueResult, it.IssueErr
}
