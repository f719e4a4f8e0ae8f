package commands

import (
	"context"

	"github.com/rios0rios0/smartupdate/internal/domain/entities"
	"github.com/rios0rios0/smartupdate/internal/domain/repositories"
)

// ServerCommand reports and controls the tool-server session.
type ServerCommand struct {
	toolServer repositories.ToolServerRepository
}

// NewServerCommand creates a ServerCommand over the given session gateway.
func NewServerCommand(toolServer repositories.ToolServerRepository) *ServerCommand {
	return &ServerCommand{toolServer: toolServer}
}

// Status connects if possible and returns the session snapshot plus the
// enumerated tool names. A failed connection still yields the snapshot so
// the caller can show the error state.
func (it *ServerCommand) Status(ctx context.Context) (entities.SessionInfo, []string) {
	_ = it.toolServer.EnsureConnected(ctx)
	return it.toolServer.Info(), it.toolServer.Tools()
}

// Shutdown stops the session. Valid from any state.
func (it *ServerCommand) Shutdown() {
	it.toolServer.Stop()
}
