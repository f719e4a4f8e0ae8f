//go:build unit

package commands //nolint:testpackage // tests unexported functions

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rios0rios0/smartupdate/internal/domain/entities"
)

func TestCommitMessage(t *testing.T) {
	t.Parallel()

	t.Run("should name the package for a single update", func(t *testing.T) {
		// given
		categorized := entities.CategorizedUpdates{
			Patch: []entities.DependencyUpdate{
				{Name: "lodash", CurrentVersion: "^4.17.0", LatestVersion: "^4.17.21"},
			},
		}

		// when
		message := commitMessage(categorized)

		// then
		assert.Equal(t, "chore(deps): update lodash from ^4.17.0 to ^4.17.21", message)
	})

	t.Run("should count the packages for multiple updates", func(t *testing.T) {
		// given
		categorized := entities.CategorizedUpdates{
			Major: []entities.DependencyUpdate{{Name: "react"}},
			Patch: []entities.DependencyUpdate{{Name: "lodash"}},
		}

		// when
		message := commitMessage(categorized)

		// then
		assert.Equal(t, "chore(deps): update 2 dependencies", message)
	})
}

func TestPullRequestBody(t *testing.T) {
	t.Parallel()

	t.Run("should group updates by category and flag majors", func(t *testing.T) {
		// given
		categorized := entities.CategorizedUpdates{
			Major: []entities.DependencyUpdate{
				{Name: "react", CurrentVersion: "^17.0.2", LatestVersion: "^18.2.0"},
			},
			Patch: []entities.DependencyUpdate{
				{Name: "lodash", CurrentVersion: "^4.17.0", LatestVersion: "^4.17.21"},
			},
		}
		commands := entities.BuildCommands{Install: "npm install", Test: "npm test"}

		// when
		body := pullRequestBody(categorized, commands, nil)

		// then
		assert.Contains(t, body, "### Major")
		assert.Contains(t, body, "- react: ^17.0.2 -> ^18.2.0 **(major)**")
		assert.Contains(t, body, "### Patch")
		assert.Contains(t, body, "- lodash: ^4.17.0 -> ^4.17.21")
		assert.NotContains(t, body, "### Minor")
		assert.NotContains(t, body, "## Rolled back")
		assert.Contains(t, body, "Verified with `npm test` after `npm install`.")
	})

	t.Run("should list rolled back packages", func(t *testing.T) {
		// given
		categorized := entities.CategorizedUpdates{
			Patch: []entities.DependencyUpdate{{Name: "lodash"}},
		}

		// when
		body := pullRequestBody(categorized, entities.BuildCommands{Test: "npm test"}, []string{"react"})

		// then
		assert.Contains(t, body, "## Rolled back")
		assert.Contains(t, body, "- react")
	})
}

func TestIssueBody(t *testing.T) {
	t.Parallel()

	t.Run("should carry the failing command and transcript", func(t *testing.T) {
		// given
		result := entities.BuildResult{
			Command:    "npm test",
			ExitCode:   1,
			StderrTail: "TypeError: widget.render is not a function",
		}
		retained := []entities.DependencyUpdate{
			{Name: "lodash", CurrentVersion: "^4.17.0", LatestVersion: "^4.17.21"},
		}

		// when
		body := issueBody(result, retained, []string{"react"})

		// then
		assert.Contains(t, body, "`npm test`")
		assert.Contains(t, body, "TypeError: widget.render is not a function")
		assert.Contains(t, body, "- lodash: ^4.17.0 -> ^4.17.21")
		assert.Contains(t, body, "- react")
		assert.NotContains(t, body, "(timed out)")
	})

	t.Run("should mark a timed out command", func(t *testing.T) {
		// given
		result := entities.BuildResult{Command: "npm test", ExitCode: -1, TimedOut: true}

		// when
		body := issueBody(result, nil, nil)

		// then
		assert.Contains(t, body, "`npm test` (timed out)")
	})
}
