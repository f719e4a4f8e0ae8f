package commands

import (
	"fmt"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/smartupdate/internal/domain/entities"
	"github.com/rios0rios0/smartupdate/internal/infrastructure/cache"
)

// CacheCommand exposes the artifact cache maintenance operations.
type CacheCommand struct {
	artifacts *cache.Cache
}

// NewCacheCommand creates a CacheCommand over the given cache.
func NewCacheCommand(artifacts *cache.Cache) *CacheCommand {
	return &CacheCommand{artifacts: artifacts}
}

// Stats reports the cache entry counts and disk usage.
func (it *CacheCommand) Stats() (cache.Stats, error) {
	return it.artifacts.Stats()
}

// Cleanup removes every expired entry and returns how many were removed.
func (it *CacheCommand) Cleanup() (int, error) {
	return it.artifacts.SweepExpired()
}

// Clear invalidates the given repositories, or everything when none are
// named.
func (it *CacheCommand) Clear(refs []string) error {
	if len(refs) == 0 {
		return it.clearAll()
	}

	for _, ref := range refs {
		identity, err := entities.ParseRepositoryIdentity(ref)
		if err != nil {
			return err
		}
		if invalidateErr := it.artifacts.Invalidate(identity); invalidateErr != nil {
			return invalidateErr
		}
		logger.Infof("Invalidated cache for %s", identity.String())
	}
	return nil
}

func (it *CacheCommand) clearAll() error {
	stats, err := it.artifacts.Stats()
	if err != nil {
		return err
	}

	removed, err := it.artifacts.SweepAll()
	if err != nil {
		return err
	}
	logger.Infof("Cleared %d of %d cache entries", removed, stats.Total)
	if removed < stats.Total {
		return fmt.Errorf("failed to clear %d cache entries", stats.Total-removed)
	}
	return nil
}
