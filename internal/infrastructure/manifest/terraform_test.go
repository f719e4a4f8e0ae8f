package manifest //nolint:testpackage // tests unexported functions

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/smartupdate/internal/domain/entities"
)

const terraformFixture = `module "network" {
  source = "git::https://github.com/acme/terraform-network.git?ref=1.2.0"
  cidr   = "10.0.0.0/16"
}

module "storage" {
  source = "git::https://github.com/acme/terraform-storage.git?ref=2.0.0"
}
`

func TestTerraformCodec_ApplyUpdates(t *testing.T) {
	t.Parallel()

	t.Run("should bump the ref of the matching module only", func(t *testing.T) {
		t.Parallel()

		// given
		updates := []entities.DependencyUpdate{
			{Name: "network", CurrentVersion: "1.2.0", LatestVersion: "1.3.0"},
		}
		codec := NewTerraformCodec()

		// when
		result, err := codec.ApplyUpdates(terraformFixture, updates)

		// then
		require.NoError(t, err)
		assert.Contains(t, result.UpdatedText, "terraform-network.git?ref=1.3.0")
		assert.Contains(t, result.UpdatedText, "terraform-storage.git?ref=2.0.0")
		assert.Equal(t, 1, result.Total)
	})

	t.Run("should keep formatting and non-source attributes intact", func(t *testing.T) {
		t.Parallel()

		// given
		updates := []entities.DependencyUpdate{
			{Name: "network", CurrentVersion: "1.2.0", LatestVersion: "1.3.0"},
		}
		codec := NewTerraformCodec()

		// when
		result, err := codec.ApplyUpdates(terraformFixture, updates)

		// then
		require.NoError(t, err)
		assert.Contains(t, result.UpdatedText, `cidr   = "10.0.0.0/16"`)
	})

	t.Run("should skip modules without a ref pin", func(t *testing.T) {
		t.Parallel()

		// given
		text := `module "local" {
  source = "./modules/local"
}
`
		updates := []entities.DependencyUpdate{
			{Name: "local", CurrentVersion: "", LatestVersion: "9.9.9"},
		}
		codec := NewTerraformCodec()

		// when
		result, err := codec.ApplyUpdates(text, updates)

		// then
		require.NoError(t, err)
		assert.Equal(t, 0, result.Total)
		assert.Equal(t, text, result.UpdatedText)
	})

	t.Run("should be idempotent at the target version", func(t *testing.T) {
		t.Parallel()

		// given
		updates := []entities.DependencyUpdate{
			{Name: "storage", CurrentVersion: "2.0.0", LatestVersion: "2.0.0"},
		}
		codec := NewTerraformCodec()

		// when
		result, err := codec.ApplyUpdates(terraformFixture, updates)

		// then
		require.NoError(t, err)
		assert.Equal(t, 0, result.Total)
		assert.Equal(t, terraformFixture, result.UpdatedText)
	})
}

func TestTerraformCodec_RollbackPackage(t *testing.T) {
	t.Parallel()

	t.Run("should restore the previous ref", func(t *testing.T) {
		t.Parallel()

		// given
		codec := NewTerraformCodec()
		updated, err := codec.ApplyUpdates(terraformFixture, []entities.DependencyUpdate{
			{Name: "storage", CurrentVersion: "2.0.0", LatestVersion: "3.0.0"},
		})
		require.NoError(t, err)
		require.Equal(t, 1, updated.Total)

		// when
		restored, err := codec.RollbackPackage(updated.UpdatedText, "storage", "2.0.0")

		// then
		require.NoError(t, err)
		assert.Equal(t, terraformFixture, restored.UpdatedText)
		assert.Equal(t, 1, restored.Total)
	})

	t.Run("should return unchanged text for unknown modules", func(t *testing.T) {
		t.Parallel()

		// given
		codec := NewTerraformCodec()

		// when
		result, err := codec.RollbackPackage(terraformFixture, "compute", "1.0.0")

		// then
		require.NoError(t, err)
		assert.Equal(t, 0, result.Total)
		assert.Equal(t, terraformFixture, result.UpdatedText)
	})
}

func TestExtractRefVersion(t *testing.T) {
	t.Parallel()

	t.Run("should pull the version out of a ref query", func(t *testing.T) {
		t.Parallel()

		// given
		source := "git::https://example.com/mod.git?ref=1.2.3"

		// when
		version := extractRefVersion(source)

		// then
		assert.Equal(t, "1.2.3", version)
	})

	t.Run("should return empty without a ref query", func(t *testing.T) {
		t.Parallel()

		// given
		source := "git::https://example.com/mod.git"

		// when
		version := extractRefVersion(source)

		// then
		assert.Empty(t, version)
	})
}
