//go:build integration || unit || test

package repositorydoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"context"

	"github.com/rios0rios0/smartupdate/internal/domain/entities"
	"github.com/rios0rios0/smartupdate/internal/domain/repositories"
)

// StubFetcherRepository implements repositories.FetcherRepository by
// returning a pre-built directory instead of cloning.
type StubFetcherRepository struct {
	Dir string
	Err error
	// spy: identities fetched, in order
	Fetched []entities.RepositoryIdentity
}

var _ repositories.FetcherRepository = (*StubFetcherRepository)(nil)

func (it *StubFetcherRepository) Fetch(
	_ context.Context, identity entities.RepositoryIdentity, _ string,
) (string, error) {
	it.Fetched = append(it.Fetched, identity)
	if it.Err != nil {
		return "", it.Err
	}
	return it.Dir, nil
}
