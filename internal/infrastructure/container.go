package infrastructure

import (
	logger "github.com/sirupsen/logrus"
	"go.uber.org/dig"

	"github.com/rios0rios0/smartupdate/internal/domain/entities"
	"github.com/rios0rios0/smartupdate/internal/domain/repositories"
	"github.com/rios0rios0/smartupdate/internal/infrastructure/cache"
	"github.com/rios0rios0/smartupdate/internal/infrastructure/diagnose"
	"github.com/rios0rios0/smartupdate/internal/infrastructure/gitclone"
	"github.com/rios0rios0/smartupdate/internal/infrastructure/manifest"
	"github.com/rios0rios0/smartupdate/internal/infrastructure/runner"
	"github.com/rios0rios0/smartupdate/internal/infrastructure/toolserver"
)

// RegisterProviders registers all infrastructure providers with the DIG
// container.
func RegisterProviders(container *dig.Container) error {
	if err := container.Provide(resolveSettings); err != nil {
		return err
	}
	if err := container.Provide(cache.NewFromSettings); err != nil {
		return err
	}
	if err := container.Provide(manifest.NewDefaultRegistry); err != nil {
		return err
	}

	if err := container.Provide(runner.NewBuildRunner); err != nil {
		return err
	}
	if err := container.Provide(gitclone.NewFetcher); err != nil {
		return err
	}
	if err := container.Provide(diagnose.NewTranscriptDiagnoser); err != nil {
		return err
	}
	if err := container.Provide(func(settings *entities.Settings) repositories.ToolServerRepository {
		return toolserver.NewClient(settings.ToolServer, settings.Token)
	}); err != nil {
		return err
	}

	// Bind interfaces to implementations
	if err := container.Provide(func(impl *runner.BuildRunner) repositories.BuildRunnerRepository {
		return impl
	}); err != nil {
		return err
	}
	if err := container.Provide(func(impl *gitclone.Fetcher) repositories.FetcherRepository {
		return impl
	}); err != nil {
		return err
	}
	if err := container.Provide(func(impl *diagnose.TranscriptDiagnoser) repositories.DiagnoserRepository {
		return impl
	}); err != nil {
		return err
	}

	return nil
}

// resolveSettings loads the configuration from the default locations, or
// falls back to defaults plus the environment.
func resolveSettings() *entities.Settings {
	path, err := entities.FindConfigFile()
	if err != nil {
		return entities.DefaultSettings()
	}

	settings, loadErr := entities.NewSettings(path)
	if loadErr != nil {
		logger.Warnf("Ignoring unreadable config file %q: %s", path, loadErr)
		return entities.DefaultSettings()
	}
	return settings
}
