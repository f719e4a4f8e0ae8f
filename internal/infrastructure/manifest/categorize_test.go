package manifest //nolint:testpackage // tests unexported functions

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rios0rios0/smartupdate/internal/domain/entities"
)

func TestCategorize(t *testing.T) {
	t.Parallel()

	t.Run("should file every update in exactly one bucket", func(t *testing.T) {
		t.Parallel()

		// given
		updates := []entities.DependencyUpdate{
			{Name: "a", CurrentVersion: "1.0.0", LatestVersion: "2.0.0"},
			{Name: "b", CurrentVersion: "1.0.0", LatestVersion: "1.1.0"},
			{Name: "c", CurrentVersion: "1.0.0", LatestVersion: "1.0.1"},
			{Name: "d", CurrentVersion: "weird", LatestVersion: "1.0.0"},
		}

		// when
		result := Categorize(updates)

		// then
		assert.Equal(t, len(updates), result.Total())
		assert.Len(t, result.Major, 1)
		assert.Len(t, result.Minor, 2)
		assert.Len(t, result.Patch, 1)
	})

	t.Run("should ignore the range operator when comparing", func(t *testing.T) {
		t.Parallel()

		// given
		updates := []entities.DependencyUpdate{
			{Name: "lodash", CurrentVersion: "^4.17.0", LatestVersion: "4.17.21"},
			{Name: "react", CurrentVersion: "~17.0.2", LatestVersion: "18.2.0"},
		}

		// when
		result := Categorize(updates)

		// then
		assert.Len(t, result.Patch, 1)
		assert.Len(t, result.Major, 1)
	})

	t.Run("should return empty buckets for no updates", func(t *testing.T) {
		t.Parallel()

		// when
		result := Categorize(nil)

		// then
		assert.Zero(t, result.Total())
	})
}

func TestCategorizeOne(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		current  string
		latest   string
		expected entities.UpdateCategory
	}{
		{"major bump", "1.2.3", "2.0.0", entities.CategoryMajor},
		{"minor bump", "1.2.3", "1.3.0", entities.CategoryMinor},
		{"patch bump", "1.2.3", "1.2.4", entities.CategoryPatch},
		{"single component versions", "1", "1", entities.CategoryMinor},
		{"missing minor on one side", "1", "1.2.0", entities.CategoryMinor},
		{"unparsable current", "latest", "1.0.0", entities.CategoryMinor},
		{"unparsable latest", "1.0.0", "beta", entities.CategoryMinor},
		{"non-numeric minor", "1.x.0", "1.2.0", entities.CategoryMinor},
		{"operator on current", "^1.2.3", "1.2.4", entities.CategoryPatch},
	}

	for _, test := range tests {
		t.Run("should categorize "+test.name, func(t *testing.T) {
			t.Parallel()

			// when
			category := categorizeOne(test.current, test.latest)

			// then
			assert.Equal(t, test.expected, category)
		})
	}
}
