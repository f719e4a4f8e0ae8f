//go:build unit

package commands_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rios0rios0/smartupdate/internal/domain/commands"
	"github.com/rios0rios0/smartupdate/internal/domain/entities"
	doubles "github.com/rios0rios0/smartupdate/test/infrastructure/repositorydoubles"
)

func TestServerCommand(t *testing.T) {
	t.Parallel()

	t.Run("should report the session snapshot and tool names", func(t *testing.T) {
		// given
		spy := &doubles.SpyToolServerRepository{
			InfoResult: entities.SessionInfo{Status: entities.SessionRunning, ToolsCount: 2},
			ToolNames:  []string{"create_branch", "push_files"},
		}
		cmd := commands.NewServerCommand(spy)

		// when
		info, tools := cmd.Status(context.Background())

		// then
		assert.Equal(t, entities.SessionRunning, info.Status)
		assert.Equal(t, []string{"create_branch", "push_files"}, tools)
		assert.Equal(t, 1, spy.EnsureCalls)
	})

	t.Run("should still report the snapshot when connecting fails", func(t *testing.T) {
		// given
		spy := &doubles.SpyToolServerRepository{
			EnsureErr: entities.ErrMissingToken,
			InfoResult: entities.SessionInfo{
				Status:       entities.SessionError,
				ErrorMessage: entities.ErrMissingToken.Error(),
			},
		}
		cmd := commands.NewServerCommand(spy)

		// when
		info, tools := cmd.Status(context.Background())

		// then
		assert.Equal(t, entities.SessionError, info.Status)
		assert.Empty(t, tools)
	})

	t.Run("should stop the session on shutdown", func(t *testing.T) {
		// given
		spy := &doubles.SpyToolServerRepository{}
		cmd := commands.NewServerCommand(spy)

		// when
		cmd.Shutdown()

		// then
		assert.Equal(t, 1, spy.StopCalls)
	})
}
