package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/smartupdate/internal/domain/entities"
	"github.com/rios0rios0/smartupdate/internal/domain/repositories"
	"github.com/rios0rios0/smartupdate/internal/infrastructure/cache"
	"github.com/rios0rios0/smartupdate/internal/infrastructure/manifest"
)

// maxRollbackCycles bounds the test -> diagnose -> rollback loop. Spending
// the budget files an issue instead of a pull request.
const maxRollbackCycles = 3

// Update is the interface for the update command.
type Update interface {
	Execute(ctx context.Context, settings *entities.Settings, opts UpdateOptions) (*entities.RunOutcome, error)
}

// UpdateOptions holds runtime options for a single update run.
type UpdateOptions struct {
	Repository string // owner/name or clone URL
	BaseBranch string // pull request target; the remote default when empty
	Updates    []entities.DependencyUpdate
	Verbose    bool
}

// UpdateCommand drives the apply -> test -> diagnose -> rollback cycle for
// one repository and publishes the result as a pull request, or files an
// issue when the rollback budget is spent.
type UpdateCommand struct {
	toolServer repositories.ToolServerRepository
	fetcher    repositories.FetcherRepository
	runner     repositories.BuildRunnerRepository
	diagnoser  repositories.DiagnoserRepository
	artifacts  *cache.Cache
	registry   *manifest.Registry
	now        func() time.Time
}

// NewUpdateCommand creates an UpdateCommand with its collaborators.
func NewUpdateCommand(
	toolServer repositories.ToolServerRepository,
	fetcher repositories.FetcherRepository,
	runner repositories.BuildRunnerRepository,
	diagnoser repositories.DiagnoserRepository,
	artifacts *cache.Cache,
	registry *manifest.Registry,
) *UpdateCommand {
	return &UpdateCommand{
		toolServer: toolServer,
		fetcher:    fetcher,
		runner:     runner,
		diagnoser:  diagnoser,
		artifacts:  artifacts,
		registry:   registry,
		now:        time.Now,
	}
}

// patchedManifest is one manifest file with updates applied, tracked so
// rollbacks and the final push operate on the same text.
type patchedManifest struct {
	relPath string
	format  string
	text    string
}

// Execute runs the full cycle for one repository.
func (it *UpdateCommand) Execute(
	ctx context.Context,
	settings *entities.Settings,
	opts UpdateOptions,
) (*entities.RunOutcome, error) {
	if opts.Verbose {
		logger.SetLevel(logger.DebugLevel)
	}

	identity, err := entities.ParseRepositoryIdentity(opts.Repository)
	if err != nil {
		return nil, err
	}

	updates := opts.Updates
	if len(updates) == 0 {
		updates = it.cachedOutdated(identity)
	}
	if len(updates) == 0 {
		logger.Infof("No outdated dependencies known for %s", identity.String())
		return &entities.RunOutcome{Kind: entities.OutcomeUpToDate, Summary: "no outdated dependencies"}, nil
	}

	workDir, cleanup, err := it.prepareWorkingTree(ctx, settings, identity)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	commands, err := it.runner.DetectCommands(workDir)
	if err != nil {
		return nil, fmt.Errorf("cannot test %q: %w", identity.String(), err)
	}

	manifests, applied, err := it.applyToManifests(workDir, updates)
	if err != nil {
		return nil, err
	}
	if len(applied) == 0 {
		logger.Infof("Manifests of %s already carry the latest versions", identity.String())
		return &entities.RunOutcome{Kind: entities.OutcomeUpToDate, Summary: "manifests already up to date"}, nil
	}

	return it.testAndPublish(ctx, identity, opts, workDir, commands, manifests, applied)
}

// testAndPublish runs the bounded test/diagnose/rollback loop and ends in
// either a pull request or an issue.
func (it *UpdateCommand) testAndPublish(
	ctx context.Context,
	identity entities.RepositoryIdentity,
	opts UpdateOptions,
	workDir string,
	commands entities.BuildCommands,
	manifests map[string]*patchedManifest,
	applied []entities.DependencyUpdate,
) (*entities.RunOutcome, error) {
	retained := applied
	var rolledBack []string
	cycles := 0

	for {
		result, err := it.runChecks(ctx, workDir, commands)
		if err != nil {
			return nil, err
		}
		if result.Succeeded() {
			return it.publish(ctx, identity, opts, commands, manifests, retained, rolledBack, cycles)
		}

		logger.Warnf("Build/test failed for %s (cycle %d): %s", identity.String(), cycles+1, result.Command)
		if cycles >= maxRollbackCycles {
			return it.fileIssue(ctx, identity, result, retained, rolledBack, cycles)
		}

		suspect, diagErr := it.diagnoser.SuspectPackage(ctx, result.Transcript(), retained)
		if diagErr != nil {
			return nil, fmt.Errorf("diagnosis failed: %w", diagErr)
		}
		if suspect == "" {
			logger.Warn("No package could be blamed for the failure")
			return it.fileIssue(ctx, identity, result, retained, rolledBack, cycles)
		}

		var rollbackErr error
		retained, rollbackErr = it.rollbackPackage(workDir, manifests, retained, suspect)
		if rollbackErr != nil {
			return nil, rollbackErr
		}
		rolledBack = append(rolledBack, suspect)
		cycles++
	}
}

// runChecks executes install, build, and test in order and returns the first
// failing result, or the final passing one.
func (it *UpdateCommand) runChecks(
	ctx context.Context,
	workDir string,
	commands entities.BuildCommands,
) (entities.BuildResult, error) {
	last := entities.BuildResult{}
	for _, command := range []string{commands.Install, commands.Build, commands.Test} {
		if command == "" {
			continue
		}
		result, err := it.runner.Run(ctx, workDir, command)
		if err != nil {
			return entities.BuildResult{}, err
		}
		if !result.Succeeded() {
			return result, nil
		}
		last = result
	}
	return last, nil
}

func (it *UpdateCommand) publish(
	ctx context.Context,
	identity entities.RepositoryIdentity,
	opts UpdateOptions,
	commands entities.BuildCommands,
	manifests map[string]*patchedManifest,
	retained []entities.DependencyUpdate,
	rolledBack []string,
	cycles int,
) (*entities.RunOutcome, error) {
	branch := fmt.Sprintf("deps/auto-update-%d", it.now().Unix())
	if _, err := it.toolServer.CreateBranch(ctx, identity, branch, opts.BaseBranch); err != nil {
		return nil, err
	}

	var files []entities.FileChange
	for _, patched := range manifests {
		files = append(files, entities.FileChange{
			Path:       patched.relPath,
			Content:    patched.text,
			ChangeType: "edit",
		})
	}

	categorized := manifest.Categorize(retained)
	push, err := it.toolServer.PushFiles(ctx, identity, branch, files, commitMessage(categorized))
	if err != nil {
		return nil, err
	}
	if push.FilesChanged == 0 {
		logger.Infof("Push for %s changed nothing; repository already up to date", identity.String())
		return &entities.RunOutcome{Kind: entities.OutcomeUpToDate, Summary: "push reported no file changes"}, nil
	}

	base := opts.BaseBranch
	if base == "" {
		base = "main"
	}
	pr, err := it.toolServer.OpenPullRequest(ctx, identity, entities.PullRequestInput{
		SourceBranch: branch,
		TargetBranch: base,
		Title:        pullRequestTitle(categorized),
		Description:  pullRequestBody(categorized, commands, rolledBack),
	})
	if err != nil {
		return nil, err
	}

	return &entities.RunOutcome{
		Kind: entities.OutcomePublished,
		PullRequest: &entities.PullRequest{
			ID:     pr.Number,
			Title:  pr.Title,
			URL:    pr.URL,
			Status: pr.State,
		},
		Attempts:   cycles,
		RolledBack: rolledBack,
		Retained:   updateNames(retained),
		Summary:    fmt.Sprintf("opened PR #%d with %d updates", pr.Number, len(retained)),
	}, nil
}

func (it *UpdateCommand) fileIssue(
	ctx context.Context,
	identity entities.RepositoryIdentity,
	result entities.BuildResult,
	retained []entities.DependencyUpdate,
	rolledBack []string,
	cycles int,
) (*entities.RunOutcome, error) {
	issue, err := it.toolServer.OpenIssue(
		ctx,
		identity,
		issueTitle(identity),
		issueBody(result, retained, rolledBack),
		[]string{"dependencies"},
	)
	if err != nil {
		return nil, err
	}

	return &entities.RunOutcome{
		Kind:       entities.OutcomeIssueFiled,
		IssueURL:   issue.URL,
		Attempts:   cycles,
		RolledBack: rolledBack,
		Retained:   updateNames(retained),
		Summary:    fmt.Sprintf("filed issue #%d after %d rollback cycles", issue.Number, cycles),
	}, nil
}

// prepareWorkingTree materializes a mutable checkout: a fresh copy of the
// cached snapshot when one is still valid, otherwise a new fetch that also
// reseeds the cache.
func (it *UpdateCommand) prepareWorkingTree(
	ctx context.Context,
	settings *entities.Settings,
	identity entities.RepositoryIdentity,
) (string, func(), error) {
	if snapshot, ok := it.artifacts.GetSnapshot(identity); ok {
		logger.Debugf("Using cached snapshot for %s", identity.String())
		workDir, err := copyTree(snapshot)
		if err != nil {
			return "", nil, err
		}
		return workDir, func() { _ = os.RemoveAll(workDir) }, nil
	}

	workDir, err := it.fetcher.Fetch(ctx, identity, settings.Token)
	if err != nil {
		return "", nil, err
	}
	if cacheErr := it.artifacts.PutSnapshot(identity, workDir); cacheErr != nil {
		logger.Warnf("Failed to cache snapshot for %s: %s", identity.String(), cacheErr)
	}
	return workDir, func() { _ = os.RemoveAll(workDir) }, nil
}

func (it *UpdateCommand) cachedOutdated(identity entities.RepositoryIdentity) []entities.DependencyUpdate {
	raw, ok := it.artifacts.GetRecord(identity, cache.FieldOutdated)
	if !ok {
		return nil
	}
	var updates []entities.DependencyUpdate
	if err := json.Unmarshal(raw, &updates); err != nil {
		logger.Warnf("Ignoring unreadable outdated-packages record for %s: %s", identity.String(), err)
		return nil
	}
	return updates
}

// applyToManifests patches every recognized manifest in the working tree and
// writes the updated text back, returning the manifests touched and the
// union of applied updates.
func (it *UpdateCommand) applyToManifests(
	workDir string,
	updates []entities.DependencyUpdate,
) (map[string]*patchedManifest, []entities.DependencyUpdate, error) {
	manifests := make(map[string]*patchedManifest)
	var applied []entities.DependencyUpdate

	for relPath, format := range discoverManifests(workDir) {
		fullPath := filepath.Join(workDir, relPath)
		raw, err := os.ReadFile(fullPath) //nolint:gosec // paths derive from the working tree scan
		if err != nil {
			return nil, nil, fmt.Errorf("failed to read manifest %q: %w", relPath, err)
		}

		result, applyErr := it.registry.ApplyUpdates(string(raw), updates, format)
		if applyErr != nil {
			return nil, nil, applyErr
		}
		if result.Total == 0 {
			continue
		}

		if writeErr := os.WriteFile(fullPath, []byte(result.UpdatedText), 0o644); writeErr != nil {
			return nil, nil, fmt.Errorf("failed to write manifest %q: %w", relPath, writeErr)
		}

		manifests[relPath] = &patchedManifest{relPath: relPath, format: format, text: result.UpdatedText}
		applied = append(applied, result.AppliedUpdates...)
		logger.Infof("Applied %d updates to %s", result.Total, relPath)
	}

	return manifests, applied, nil
}

// rollbackPackage reverts the suspect to its pre-update version in whichever
// manifest carries it and returns the retained updates without it.
func (it *UpdateCommand) rollbackPackage(
	workDir string,
	manifests map[string]*patchedManifest,
	retained []entities.DependencyUpdate,
	suspect string,
) ([]entities.DependencyUpdate, error) {
	var target entities.DependencyUpdate
	found := false
	remaining := make([]entities.DependencyUpdate, 0, len(retained))
	for _, update := range retained {
		if !found && strings.EqualFold(update.Name, suspect) {
			target = update
			found = true
			continue
		}
		remaining = append(remaining, update)
	}
	if !found {
		return retained, fmt.Errorf("suspect %q is not among the applied updates", suspect)
	}

	for _, patched := range manifests {
		result, err := it.registry.RollbackPackage(
			patched.text, target.Name, patched.format, bareVersionOf(target.CurrentVersion),
		)
		if err != nil {
			return nil, err
		}
		if result.Total == 0 {
			continue
		}

		fullPath := filepath.Join(workDir, patched.relPath)
		if writeErr := os.WriteFile(fullPath, []byte(result.UpdatedText), 0o644); writeErr != nil {
			return nil, fmt.Errorf("failed to write manifest %q: %w", patched.relPath, writeErr)
		}
		patched.text = result.UpdatedText
		logger.Infof("Rolled back '%s' to %s in %s", target.Name, target.CurrentVersion, patched.relPath)
		return remaining, nil
	}

	return nil, fmt.Errorf("no manifest carries the suspect %q", suspect)
}

// discoverManifests maps root-level manifest files to their format tags.
func discoverManifests(workDir string) map[string]string {
	found := make(map[string]string)
	for _, name := range []string{
		manifest.FormatPackageJSON,
		manifest.FormatRequirements,
		manifest.FormatCargoToml,
	} {
		if _, err := os.Stat(filepath.Join(workDir, name)); err == nil {
			found[name] = name
		}
	}

	entries, err := os.ReadDir(workDir)
	if err != nil {
		return found
	}
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".tf") {
			found[entry.Name()] = manifest.FormatTerraform
		}
	}
	return found
}

func updateNames(updates []entities.DependencyUpdate) []string {
	names := make([]string, 0, len(updates))
	for _, update := range updates {
		names = append(names, update.Name)
	}
	return names
}

// bareVersionOf strips any range operator so rollback targets are plain
// versions; the codec re-applies the manifest's own operator.
func bareVersionOf(version string) string {
	for _, operator := range []string{">=", "<=", "==", "^", "~"} {
		if strings.HasPrefix(version, operator) {
			return version[len(operator):]
		}
	}
	return version
}

// copyTree clones a snapshot into a fresh temp directory so the cached copy
// is never mutated.
func copyTree(source string) (string, error) {
	dir, err := os.MkdirTemp("", "smartupdate-work-*")
	if err != nil {
		return "", fmt.Errorf("failed to create working directory: %w", err)
	}
	if copyErr := os.CopyFS(dir, os.DirFS(source)); copyErr != nil {
		_ = os.RemoveAll(dir)
		return "", fmt.Errorf("failed to copy snapshot: %w", copyErr)
	}
	return dir, nil
}
