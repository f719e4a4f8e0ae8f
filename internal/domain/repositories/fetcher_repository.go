package repositories

import (
	"context"

	"github.com/rios0rios0/smartupdate/internal/domain/entities"
)

// FetcherRepository materializes a repository working tree on disk so the
// artifact cache has a snapshot producer. Implementations clone into a
// temporary directory; the caller owns the returned path and removes it
// after caching.
type FetcherRepository interface {
	Fetch(ctx context.Context, identity entities.RepositoryIdentity, token string) (string, error)
}
