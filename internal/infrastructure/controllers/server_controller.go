package controllers

import (
	"context"
	"strings"

	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rios0rios0/smartupdate/internal/domain/commands"
	"github.com/rios0rios0/smartupdate/internal/domain/entities"
)

// ServerController handles the "server" subcommand.
type ServerController struct {
	command *commands.ServerCommand
}

// NewServerController creates a new ServerController.
func NewServerController(command *commands.ServerCommand) *ServerController {
	return &ServerController{command: command}
}

// GetBind returns the Cobra command metadata for the server controller.
func (it *ServerController) GetBind() entities.ControllerBind {
	return entities.ControllerBind{
		Use:   "server {status|stop}",
		Short: "Inspect or stop the tool-server session",
		Long: `status  connect (or report why not) and list the available remote operations
stop    tear down the session and its container`,
	}
}

// Execute dispatches the server action named in the arguments.
func (it *ServerController) Execute(_ *cobra.Command, args []string) {
	action := "status"
	if len(args) > 0 {
		action = args[0]
	}

	switch action {
	case "status":
		info, tools := it.command.Status(context.Background())
		logger.Infof("Session status: %s", info.Status)
		if info.ContainerID != "" {
			logger.Infof("Container: %s", info.ContainerID)
		}
		if info.ErrorMessage != "" {
			logger.Warnf("Last error: %s", info.ErrorMessage)
		}
		if info.ReconnectAttempts > 0 {
			logger.Infof("Reconnect attempts: %d", info.ReconnectAttempts)
		}
		if len(tools) > 0 {
			logger.Infof("Available operations (%d): %s", len(tools), strings.Join(tools, ", "))
		}
	case "stop":
		it.command.Shutdown()
		logger.Info("Session stopped")
	default:
		logger.Errorf("unknown server action %q", action)
	}
}
