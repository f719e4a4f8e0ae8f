package controllers

import (
	"context"
	"encoding/json"
	"os"

	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rios0rios0/smartupdate/internal/domain/commands"
	"github.com/rios0rios0/smartupdate/internal/domain/entities"
)

// UpdateController handles the "update" subcommand.
type UpdateController struct {
	command commands.Update
}

// NewUpdateController creates a new UpdateController.
func NewUpdateController(command commands.Update) *UpdateController {
	return &UpdateController{command: command}
}

// GetBind returns the Cobra command metadata for the update controller.
func (it *UpdateController) GetBind() entities.ControllerBind {
	return entities.ControllerBind{
		Use:   "update <owner/repo>",
		Short: "Apply, test, and publish dependency updates for a repository",
		Long: `Apply the known dependency updates to the repository's manifests,
run its build/test commands, roll back packages that break the build
(up to three times), and open a pull request with what passes.

If the rollback budget is spent without a passing build, an issue is
filed instead, carrying the final build transcript.`,
	}
}

// Execute runs one update cycle for the repository named in the arguments.
func (it *UpdateController) Execute(cmd *cobra.Command, args []string) {
	if len(args) == 0 {
		logger.Error("a repository (owner/name or URL) is required")
		return
	}

	ctx := context.Background()
	verbose, _ := cmd.Flags().GetBool("verbose")
	baseBranch, _ := cmd.Flags().GetString("base-branch")
	updatesPath, _ := cmd.Flags().GetString("updates")

	settings := loadSettings(cmd)
	if settings == nil {
		return
	}

	updates, err := readUpdatesFile(updatesPath)
	if err != nil {
		logger.Errorf("failed to read updates file: %v", err)
		return
	}

	outcome, err := it.command.Execute(ctx, settings, commands.UpdateOptions{
		Repository: args[0],
		BaseBranch: baseBranch,
		Updates:    updates,
		Verbose:    verbose,
	})
	if err != nil {
		logger.Errorf("Update failed: %v", err)
		return
	}

	logger.Infof("Outcome: %s (%s)", outcome.Kind, outcome.Summary)
}

// AddFlags adds the update-specific flags to the given Cobra command.
func (it *UpdateController) AddFlags(cmd *cobra.Command) {
	cmd.Flags().String("base-branch", "", "Pull request target branch (defaults to the repository default)")
	cmd.Flags().String("updates", "",
		"Path to a JSON file listing the updates to apply (defaults to the cached analysis)")
}

// readUpdatesFile loads an explicit update list; an empty path means the
// cached analysis is used instead.
func readUpdatesFile(path string) ([]entities.DependencyUpdate, error) {
	if path == "" {
		return nil, nil
	}
	raw, err := os.ReadFile(path) //nolint:gosec // operator-supplied path
	if err != nil {
		return nil, err
	}
	var updates []entities.DependencyUpdate
	if unmarshalErr := json.Unmarshal(raw, &updates); unmarshalErr != nil {
		return nil, unmarshalErr
	}
	return updates, nil
}

// loadSettings resolves the configuration from --config, the default
// locations, or the environment.
func loadSettings(cmd *cobra.Command) *entities.Settings {
	configPath, _ := cmd.Flags().GetString("config")
	if configPath == "" {
		found, err := entities.FindConfigFile()
		if err != nil {
			logger.Debug("No config file found, using defaults and the environment")
			return entities.DefaultSettings()
		}
		configPath = found
	}

	settings, err := entities.NewSettings(configPath)
	if err != nil {
		logger.Errorf("failed to load config: %v", err)
		return nil
	}
	logger.Infof("Using config file: %s", configPath)
	return settings
}
