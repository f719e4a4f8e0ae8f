// Package gitclone fetches repository working trees over HTTPS.
package gitclone

import (
	"context"
	"fmt"
	"os"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/transport/http"
	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/smartupdate/internal/domain/entities"
)

// Fetcher clones repositories into temporary directories. Callers own the
// returned directory and remove it when done; the cache keeps its own copy.
type Fetcher struct{}

// NewFetcher creates the git fetcher.
func NewFetcher() *Fetcher { return &Fetcher{} }

// Fetch clones the repository at depth 1 and returns the checkout path.
func (it *Fetcher) Fetch(ctx context.Context, identity entities.RepositoryIdentity, token string) (string, error) {
	dir, err := os.MkdirTemp("", "smartupdate-clone-*")
	if err != nil {
		return "", fmt.Errorf("failed to create clone directory: %w", err)
	}

	options := &git.CloneOptions{
		URL:          fmt.Sprintf("https://github.com/%s/%s.git", identity.Owner, identity.Name),
		Depth:        1,
		SingleBranch: true,
	}
	if token != "" {
		options.Auth = &http.BasicAuth{Username: "x-access-token", Password: token}
	}

	logger.Infof("Cloning %s", identity.String())
	if _, cloneErr := git.PlainCloneContext(ctx, dir, false, options); cloneErr != nil {
		_ = os.RemoveAll(dir)
		return "", fmt.Errorf("failed to clone %q: %w", identity.String(), cloneErr)
	}

	return dir, nil
}
