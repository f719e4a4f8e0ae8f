//go:build unit

package commands_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/smartupdate/internal/domain/commands"
	"github.com/rios0rios0/smartupdate/internal/domain/entities"
	"github.com/rios0rios0/smartupdate/internal/infrastructure/cache"
	"github.com/rios0rios0/smartupdate/internal/infrastructure/manifest"
	builders "github.com/rios0rios0/smartupdate/test/domain/entitybuilders"
	doubles "github.com/rios0rios0/smartupdate/test/infrastructure/repositorydoubles"
)

const packageJSONFixture = `{
  "name": "widgets",
  "version": "1.0.0",
  "dependencies": {
    "lodash": "^4.17.0",
    "react": "^17.0.2",
    "axios": "~0.21.0",
    "vue": "^3.2.0"
  }
}
`

type updateFixture struct {
	toolServer *doubles.SpyToolServerRepository
	runner     *doubles.StubRunnerRepository
	diagnoser  *doubles.StubDiagnoserRepository
	fetcher    *doubles.StubFetcherRepository
	artifacts  *cache.Cache
	command    *commands.UpdateCommand
}

func newUpdateFixture(t *testing.T, manifestText string) *updateFixture {
	t.Helper()

	workDir := t.TempDir()
	if manifestText != "" {
		err := os.WriteFile(filepath.Join(workDir, "package.json"), []byte(manifestText), 0o644)
		require.NoError(t, err)
	}

	toolServer := &doubles.SpyToolServerRepository{
		BranchResult: entities.BranchResult{Ref: "refs/heads/deps/auto-update-1"},
		PushResult:   entities.PushResult{CommitSHA: "abc123", FilesChanged: 1},
		PRResult: entities.PullRequestResult{
			Number: 7,
			URL:    "https://github.com/acme/widgets/pull/7",
			Title:  "chore(deps): update dependencies",
			State:  "open",
		},
		IssueResult: entities.IssueResult{
			Number: 12,
			URL:    "https://github.com/acme/widgets/issues/12",
		},
	}
	runner := &doubles.StubRunnerRepository{
		Commands: entities.BuildCommands{
			PackageManager: "npm",
			Install:        "npm install",
			Build:          "npm run build --if-present",
			Test:           "npm test",
		},
	}
	diagnoser := &doubles.StubDiagnoserRepository{}
	fetcher := &doubles.StubFetcherRepository{Dir: workDir}

	artifacts, err := cache.New(t.TempDir(), time.Hour)
	require.NoError(t, err)

	return &updateFixture{
		toolServer: toolServer,
		runner:     runner,
		diagnoser:  diagnoser,
		fetcher:    fetcher,
		artifacts:  artifacts,
		command: commands.NewUpdateCommand(
			toolServer, fetcher, runner, diagnoser, artifacts, manifest.NewDefaultRegistry(),
		),
	}
}

func testSettings() *entities.Settings {
	return &entities.Settings{Token: "test-token"}
}

func lodashUpdate() entities.DependencyUpdate {
	return builders.NewDependencyUpdateBuilder().
		WithName("lodash").
		WithCurrentVer("^4.17.0").
		WithLatestVer("4.17.21").
		BuildDependencyUpdate()
}

func reactUpdate() entities.DependencyUpdate {
	return builders.NewDependencyUpdateBuilder().
		WithName("react").
		WithCurrentVer("^17.0.2").
		WithLatestVer("18.2.0").
		BuildDependencyUpdate()
}

func TestUpdateCommandExecute(t *testing.T) {
	t.Parallel()

	t.Run("should report up to date when no updates are known", func(t *testing.T) {
		// given
		fixture := newUpdateFixture(t, packageJSONFixture)
		opts := commands.UpdateOptions{Repository: "acme/widgets"}

		// when
		outcome, err := fixture.command.Execute(context.Background(), testSettings(), opts)

		// then
		require.NoError(t, err)
		assert.Equal(t, entities.OutcomeUpToDate, outcome.Kind)
		assert.Empty(t, fixture.fetcher.Fetched)
		assert.Empty(t, fixture.toolServer.PRInputs)
	})

	t.Run("should open a pull request when all checks pass", func(t *testing.T) {
		// given
		fixture := newUpdateFixture(t, packageJSONFixture)
		opts := commands.UpdateOptions{
			Repository: "acme/widgets",
			Updates:    []entities.DependencyUpdate{lodashUpdate()},
		}

		// when
		outcome, err := fixture.command.Execute(context.Background(), testSettings(), opts)

		// then
		require.NoError(t, err)
		assert.Equal(t, entities.OutcomePublished, outcome.Kind)
		require.NotNil(t, outcome.PullRequest)
		assert.Equal(t, 7, outcome.PullRequest.ID)
		assert.Equal(t, "https://github.com/acme/widgets/pull/7", outcome.PullRequest.URL)
		assert.Zero(t, outcome.Attempts)
		assert.Equal(t, []string{"lodash"}, outcome.Retained)

		// install, build, and test all ran
		require.Len(t, fixture.runner.RunCalls, 3)
		assert.Equal(t, "npm install", fixture.runner.RunCalls[0].Command)
		assert.Equal(t, "npm test", fixture.runner.RunCalls[2].Command)

		// the branch carries the patched manifest
		require.Len(t, fixture.toolServer.BranchCalls, 1)
		branch := fixture.toolServer.BranchCalls[0].Branch
		assert.Contains(t, branch, "deps/auto-update-")

		require.Len(t, fixture.toolServer.PushCalls, 1)
		push := fixture.toolServer.PushCalls[0]
		assert.Equal(t, branch, push.Branch)
		require.Len(t, push.Files, 1)
		assert.Equal(t, "package.json", push.Files[0].Path)
		assert.Contains(t, push.Files[0].Content, `"lodash": "^4.17.21"`)
		assert.Equal(t, "chore(deps): update lodash from ^4.17.0 to ^4.17.21", push.Message)

		require.Len(t, fixture.toolServer.PRInputs, 1)
		input := fixture.toolServer.PRInputs[0]
		assert.Equal(t, branch, input.SourceBranch)
		assert.Equal(t, "main", input.TargetBranch)
	})

	t.Run("should target the configured base branch", func(t *testing.T) {
		// given
		fixture := newUpdateFixture(t, packageJSONFixture)
		opts := commands.UpdateOptions{
			Repository: "acme/widgets",
			BaseBranch: "develop",
			Updates:    []entities.DependencyUpdate{lodashUpdate()},
		}

		// when
		_, err := fixture.command.Execute(context.Background(), testSettings(), opts)

		// then
		require.NoError(t, err)
		require.Len(t, fixture.toolServer.BranchCalls, 1)
		assert.Equal(t, "develop", fixture.toolServer.BranchCalls[0].FromBranch)
		require.Len(t, fixture.toolServer.PRInputs, 1)
		assert.Equal(t, "develop", fixture.toolServer.PRInputs[0].TargetBranch)
	})

	t.Run("should fall back to the cached outdated record", func(t *testing.T) {
		// given
		fixture := newUpdateFixture(t, packageJSONFixture)
		identity := entities.RepositoryIdentity{Owner: "acme", Name: "widgets"}
		err := fixture.artifacts.PutRecord(
			identity, cache.FieldOutdated, []entities.DependencyUpdate{lodashUpdate()},
		)
		require.NoError(t, err)
		opts := commands.UpdateOptions{Repository: "acme/widgets"}

		// when
		outcome, err := fixture.command.Execute(context.Background(), testSettings(), opts)

		// then
		require.NoError(t, err)
		assert.Equal(t, entities.OutcomePublished, outcome.Kind)
		assert.Equal(t, []string{"lodash"}, outcome.Retained)
	})

	t.Run("should reuse a cached snapshot instead of fetching", func(t *testing.T) {
		// given
		fixture := newUpdateFixture(t, "")
		identity := entities.RepositoryIdentity{Owner: "acme", Name: "widgets"}
		seed := t.TempDir()
		err := os.WriteFile(filepath.Join(seed, "package.json"), []byte(packageJSONFixture), 0o644)
		require.NoError(t, err)
		require.NoError(t, fixture.artifacts.PutSnapshot(identity, seed))
		fixture.fetcher.Err = assert.AnError // fetching would fail the test
		opts := commands.UpdateOptions{
			Repository: "acme/widgets",
			Updates:    []entities.DependencyUpdate{lodashUpdate()},
		}

		// when
		outcome, err := fixture.command.Execute(context.Background(), testSettings(), opts)

		// then
		require.NoError(t, err)
		assert.Equal(t, entities.OutcomePublished, outcome.Kind)
		assert.Empty(t, fixture.fetcher.Fetched)
	})

	t.Run("should report up to date when manifests already carry the latest versions", func(t *testing.T) {
		// given
		fixture := newUpdateFixture(t, packageJSONFixture)
		update := builders.NewDependencyUpdateBuilder().
			WithName("lodash").
			WithCurrentVer("^4.17.0").
			WithLatestVer("4.17.0").
			BuildDependencyUpdate()
		opts := commands.UpdateOptions{
			Repository: "acme/widgets",
			Updates:    []entities.DependencyUpdate{update},
		}

		// when
		outcome, err := fixture.command.Execute(context.Background(), testSettings(), opts)

		// then
		require.NoError(t, err)
		assert.Equal(t, entities.OutcomeUpToDate, outcome.Kind)
		assert.Empty(t, fixture.runner.RunCalls)
		assert.Empty(t, fixture.toolServer.PushCalls)
	})

	t.Run("should report up to date when the push changes no files", func(t *testing.T) {
		// given
		fixture := newUpdateFixture(t, packageJSONFixture)
		fixture.toolServer.PushResult = entities.PushResult{CommitSHA: "abc123", FilesChanged: 0}
		opts := commands.UpdateOptions{
			Repository: "acme/widgets",
			Updates:    []entities.DependencyUpdate{lodashUpdate()},
		}

		// when
		outcome, err := fixture.command.Execute(context.Background(), testSettings(), opts)

		// then
		require.NoError(t, err)
		assert.Equal(t, entities.OutcomeUpToDate, outcome.Kind)
		assert.Empty(t, fixture.toolServer.PRInputs)
	})

	t.Run("should roll back the suspect and publish the survivors", func(t *testing.T) {
		// given
		fixture := newUpdateFixture(t, packageJSONFixture)
		fixture.runner.Results = []entities.BuildResult{
			{ExitCode: 1, StderrTail: "TypeError: react render is not a function"},
			{ExitCode: 0},
		}
		fixture.diagnoser.Suspects = []string{"react"}
		opts := commands.UpdateOptions{
			Repository: "acme/widgets",
			Updates:    []entities.DependencyUpdate{lodashUpdate(), reactUpdate()},
		}

		// when
		outcome, err := fixture.command.Execute(context.Background(), testSettings(), opts)

		// then
		require.NoError(t, err)
		assert.Equal(t, entities.OutcomePublished, outcome.Kind)
		assert.Equal(t, 1, outcome.Attempts)
		assert.Equal(t, []string{"react"}, outcome.RolledBack)
		assert.Equal(t, []string{"lodash"}, outcome.Retained)

		// the diagnoser saw the failing transcript
		require.Len(t, fixture.diagnoser.Transcripts, 1)
		assert.Contains(t, fixture.diagnoser.Transcripts[0], "react render")

		// the pushed manifest keeps lodash updated and react at its old version
		require.Len(t, fixture.toolServer.PushCalls, 1)
		content := fixture.toolServer.PushCalls[0].Files[0].Content
		assert.Contains(t, content, `"lodash": "^4.17.21"`)
		assert.Contains(t, content, `"react": "^17.0.2"`)

		// the pull request explains the rollback
		require.Len(t, fixture.toolServer.PRInputs, 1)
		assert.Contains(t, fixture.toolServer.PRInputs[0].Description, "react")
	})

	t.Run("should file an issue when the rollback budget is spent", func(t *testing.T) {
		// given
		fixture := newUpdateFixture(t, packageJSONFixture)
		fixture.runner.Results = []entities.BuildResult{
			{ExitCode: 1, StderrTail: "TypeError: widget.render is not a function"},
		}
		fixture.diagnoser.Suspects = []string{"react", "axios", "vue"}
		updates := []entities.DependencyUpdate{
			lodashUpdate(),
			reactUpdate(),
			builders.NewDependencyUpdateBuilder().
				WithName("axios").WithCurrentVer("~0.21.0").WithLatestVer("1.6.0").
				BuildDependencyUpdate(),
			builders.NewDependencyUpdateBuilder().
				WithName("vue").WithCurrentVer("^3.2.0").WithLatestVer("3.4.0").
				BuildDependencyUpdate(),
		}
		opts := commands.UpdateOptions{Repository: "acme/widgets", Updates: updates}

		// when
		outcome, err := fixture.command.Execute(context.Background(), testSettings(), opts)

		// then
		require.NoError(t, err)
		assert.Equal(t, entities.OutcomeIssueFiled, outcome.Kind)
		assert.Equal(t, 3, outcome.Attempts)
		assert.Equal(t, "https://github.com/acme/widgets/issues/12", outcome.IssueURL)
		assert.Equal(t, []string{"react", "axios", "vue"}, outcome.RolledBack)
		assert.Equal(t, []string{"lodash"}, outcome.Retained)
		assert.Empty(t, fixture.toolServer.PRInputs)

		// the issue carries the final failing transcript and the labels
		require.Len(t, fixture.toolServer.IssueCalls, 1)
		issue := fixture.toolServer.IssueCalls[0]
		assert.Equal(t, []string{"dependencies"}, issue.Labels)
		assert.Contains(t, issue.Body, "widget.render is not a function")
		assert.Contains(t, issue.Title, "acme/widgets")
	})

	t.Run("should file an issue when no package can be blamed", func(t *testing.T) {
		// given
		fixture := newUpdateFixture(t, packageJSONFixture)
		fixture.runner.Results = []entities.BuildResult{
			{ExitCode: 1, StderrTail: "segmentation fault"},
		}
		opts := commands.UpdateOptions{
			Repository: "acme/widgets",
			Updates:    []entities.DependencyUpdate{lodashUpdate()},
		}

		// when
		outcome, err := fixture.command.Execute(context.Background(), testSettings(), opts)

		// then
		require.NoError(t, err)
		assert.Equal(t, entities.OutcomeIssueFiled, outcome.Kind)
		assert.Zero(t, outcome.Attempts)
		assert.Empty(t, outcome.RolledBack)
	})

	t.Run("should fail when the suspect is not among the applied updates", func(t *testing.T) {
		// given
		fixture := newUpdateFixture(t, packageJSONFixture)
		fixture.runner.Results = []entities.BuildResult{{ExitCode: 1, StderrTail: "build failed"}}
		fixture.diagnoser.Suspects = []string{"left-pad"}
		opts := commands.UpdateOptions{
			Repository: "acme/widgets",
			Updates:    []entities.DependencyUpdate{lodashUpdate()},
		}

		// when
		_, err := fixture.command.Execute(context.Background(), testSettings(), opts)

		// then
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not among the applied updates")
	})

	t.Run("should fail for an unparseable repository reference", func(t *testing.T) {
		// given
		fixture := newUpdateFixture(t, packageJSONFixture)
		opts := commands.UpdateOptions{Repository: "widgets"}

		// when
		_, err := fixture.command.Execute(context.Background(), testSettings(), opts)

		// then
		require.Error(t, err)
	})
}
