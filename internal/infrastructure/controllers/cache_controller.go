package controllers

import (
	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rios0rios0/smartupdate/internal/domain/commands"
	"github.com/rios0rios0/smartupdate/internal/domain/entities"
)

// CacheController handles the "cache" subcommand and its actions.
type CacheController struct {
	command *commands.CacheCommand
}

// NewCacheController creates a new CacheController.
func NewCacheController(command *commands.CacheCommand) *CacheController {
	return &CacheController{command: command}
}

// GetBind returns the Cobra command metadata for the cache controller.
func (it *CacheController) GetBind() entities.ControllerBind {
	return entities.ControllerBind{
		Use:   "cache {stats|cleanup|clear} [owner/repo...]",
		Short: "Inspect and maintain the repository artifact cache",
		Long: `stats    show entry counts, disk usage, and the configured TTL
cleanup  remove entries past their TTL
clear    remove specific repositories, or everything when none are named`,
	}
}

// Execute dispatches the cache action named in the arguments.
func (it *CacheController) Execute(_ *cobra.Command, args []string) {
	if len(args) == 0 {
		logger.Error("a cache action is required: stats, cleanup, or clear")
		return
	}

	switch args[0] {
	case "stats":
		stats, err := it.command.Stats()
		if err != nil {
			logger.Errorf("failed to read cache stats: %v", err)
			return
		}
		logger.Infof(
			"Cache entries: %d total, %d valid, %d expired; %d bytes on disk; TTL %s",
			stats.Total, stats.Valid, stats.Expired, stats.BytesOnDisk, stats.TTL,
		)
	case "cleanup":
		removed, err := it.command.Cleanup()
		if err != nil {
			logger.Errorf("cache cleanup failed: %v", err)
			return
		}
		logger.Infof("Removed %d expired entries", removed)
	case "clear":
		if err := it.command.Clear(args[1:]); err != nil {
			logger.Errorf("cache clear failed: %v", err)
		}
	default:
		logger.Errorf("unknown cache action %q", args[0])
	}
}
