package entities_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/smartupdate/internal/domain/entities"
)

func TestParseRepositoryIdentity(t *testing.T) {
	t.Parallel()

	t.Run("should normalize every reference form to the same identity", func(t *testing.T) {
		t.Parallel()

		// given
		refs := []string{
			"Acme/Widgets",
			"https://github.com/Acme/Widgets",
			"https://github.com/Acme/Widgets.git",
			"https://github.com/Acme/Widgets/",
			"git@github.com:Acme/Widgets.git",
		}

		// when / then
		for _, ref := range refs {
			identity, err := entities.ParseRepositoryIdentity(ref)
			require.NoError(t, err, "ref %q", ref)
			assert.Equal(t, "Acme", identity.Owner, "ref %q", ref)
			assert.Equal(t, "Widgets", identity.Name, "ref %q", ref)
		}
	})

	t.Run("should be idempotent over its own string form", func(t *testing.T) {
		t.Parallel()

		// given
		first, err := entities.ParseRepositoryIdentity("https://github.com/acme/widgets.git")
		require.NoError(t, err)

		// when
		second, err := entities.ParseRepositoryIdentity(first.String())

		// then
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})

	t.Run("should reject references without an owner", func(t *testing.T) {
		t.Parallel()

		// given
		for _, ref := range []string{"widgets", "", "/widgets"} {
			// when
			_, err := entities.ParseRepositoryIdentity(ref)

			// then
			require.Error(t, err, "ref %q", ref)
		}
	})

	t.Run("should derive a filesystem-safe stem", func(t *testing.T) {
		t.Parallel()

		// given
		identity, err := entities.ParseRepositoryIdentity("acme/widgets")
		require.NoError(t, err)

		// when / then
		assert.Equal(t, "acme_widgets", identity.FileStem())
		assert.Equal(t, "acme/widgets", identity.String())
	})
}
