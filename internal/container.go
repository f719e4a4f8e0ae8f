package internal

import (
	"go.uber.org/dig"

	"github.com/rios0rios0/smartupdate/internal/domain/commands"
	"github.com/rios0rios0/smartupdate/internal/domain/entities"
	"github.com/rios0rios0/smartupdate/internal/infrastructure"
	"github.com/rios0rios0/smartupdate/internal/infrastructure/controllers"
)

// AppInternal aggregates the application surface built by the container.
type AppInternal struct {
	controllers *[]entities.Controller
}

// NewAppInternal creates the AppInternal with all controllers.
func NewAppInternal(controllerList *[]entities.Controller) *AppInternal {
	return &AppInternal{controllers: controllerList}
}

// GetControllers returns the registered controllers.
func (it *AppInternal) GetControllers() []entities.Controller {
	return *it.controllers
}

// RegisterProviders registers all internal providers with the DIG container.
func RegisterProviders(container *dig.Container) error {
	// Register all layers (bottom-up: infrastructure -> domain entities -> domain commands -> controllers)
	if err := infrastructure.RegisterProviders(container); err != nil {
		return err
	}
	if err := entities.RegisterProviders(container); err != nil {
		return err
	}
	if err := commands.RegisterProviders(container); err != nil {
		return err
	}
	if err := controllers.RegisterProviders(container); err != nil {
		return err
	}

	// Register the main app internal
	if err := container.Provide(NewAppInternal); err != nil {
		return err
	}

	return nil
}
