package toolserver

import (
	"context"
	"encoding/json"
	"fmt"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/smartupdate/internal/domain/entities"
	"github.com/rios0rios0/smartupdate/internal/domain/repositories"
)

// Remote operation names enumerated by the tool-server handshake.
const (
	opCreateBranch      = "create_branch"
	opPushFiles         = "push_files"
	opCreatePullRequest = "create_pull_request"
	opCreateIssue       = "create_issue"
)

// Client is the process-wide tool-server gateway. It layers the invoker's
// serialized dispatch over the session state machine and translates between
// entity shapes and the remote argument objects.
type Client struct {
	session *Session
	invoker *Invoker
}

// NewClient wires a session and its invoker into the repository surface.
func NewClient(settings entities.ToolServerSettings, token string) repositories.ToolServerRepository {
	session := NewSession(settings, token)
	return &Client{
		session: session,
		invoker: NewInvoker(session),
	}
}

func (it *Client) Start(ctx context.Context) error {
	return it.session.Start(ctx)
}

func (it *Client) EnsureConnected(ctx context.Context) error {
	return it.session.EnsureConnected(ctx)
}

func (it *Client) Stop() {
	it.invoker.Close()
	it.session.Stop()
}

func (it *Client) Info() entities.SessionInfo {
	return it.session.Info()
}

func (it *Client) Tools() []string {
	return it.session.Tools()
}

func (it *Client) Call(ctx context.Context, operation string, args map[string]any) (json.RawMessage, error) {
	return it.invoker.Invoke(ctx, operation, args)
}

func (it *Client) CreateBranch(
	ctx context.Context,
	identity entities.RepositoryIdentity,
	branch, fromBranch string,
) (entities.BranchResult, error) {
	args := map[string]any{
		"owner":  identity.Owner,
		"repo":   identity.Name,
		"branch": branch,
	}
	if fromBranch != "" {
		args["from_branch"] = fromBranch
	}

	var result entities.BranchResult
	if err := it.callInto(ctx, opCreateBranch, args, &result); err != nil {
		return entities.BranchResult{}, err
	}
	logger.Infof("Created branch '%s' on %s", branch, identity.String())
	return result, nil
}

func (it *Client) PushFiles(
	ctx context.Context,
	identity entities.RepositoryIdentity,
	branch string,
	files []entities.FileChange,
	message string,
) (entities.PushResult, error) {
	batch := make([]map[string]any, 0, len(files))
	for _, file := range files {
		batch = append(batch, map[string]any{
			"path":    file.Path,
			"content": file.Content,
		})
	}
	args := map[string]any{
		"owner":   identity.Owner,
		"repo":    identity.Name,
		"branch":  branch,
		"files":   batch,
		"message": message,
	}

	var result entities.PushResult
	if err := it.callInto(ctx, opPushFiles, args, &result); err != nil {
		return entities.PushResult{}, err
	}
	return result, nil
}

func (it *Client) OpenPullRequest(
	ctx context.Context,
	identity entities.RepositoryIdentity,
	input entities.PullRequestInput,
) (entities.PullRequestResult, error) {
	args := map[string]any{
		"owner": identity.Owner,
		"repo":  identity.Name,
		"title": input.Title,
		"body":  input.Description,
		"head":  input.SourceBranch,
		"base":  input.TargetBranch,
	}

	var result entities.PullRequestResult
	if err := it.callInto(ctx, opCreatePullRequest, args, &result); err != nil {
		return entities.PullRequestResult{}, err
	}
	logger.Infof("Opened PR #%d for %s: %s", result.Number, identity.String(), result.URL)
	return result, nil
}

func (it *Client) OpenIssue(
	ctx context.Context,
	identity entities.RepositoryIdentity,
	title, body string,
	labels []string,
) (entities.IssueResult, error) {
	args := map[string]any{
		"owner":  identity.Owner,
		"repo":   identity.Name,
		"title":  title,
		"body":   body,
		"labels": labels,
	}

	var result entities.IssueResult
	if err := it.callInto(ctx, opCreateIssue, args, &result); err != nil {
		return entities.IssueResult{}, err
	}
	logger.Infof("Filed issue #%d for %s: %s", result.Number, identity.String(), result.URL)
	return result, nil
}

// callInto invokes one operation and decodes the success payload into the
// typed result.
func (it *Client) callInto(ctx context.Context, operation string, args map[string]any, target any) error {
	payload, err := it.invoker.Invoke(ctx, operation, args)
	if err != nil {
		return err
	}
	if unmarshalErr := json.Unmarshal(payload, target); unmarshalErr != nil {
		return fmt.Errorf("failed to decode %q response: %w", operation, unmarshalErr)
	}
	return nil
}
