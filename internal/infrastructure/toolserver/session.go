// Package toolserver owns the single live connection to the external tool
// server, a child process launched through a container runtime and spoken to
// over framed stdio. All remote calls in the process funnel through one
// session.
package toolserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"
	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/smartupdate/internal/domain/entities"
)

const (
	maxReconnectAttempts = 3
	reconnectBackoff     = time.Second
	handshakeTimeout     = 30 * time.Second

	tokenEnvVar = "GITHUB_PERSONAL_ACCESS_TOKEN"
)

// wireClient is the stdio channel surface the session drives. Satisfied by
// the real MCP client; tests substitute a scripted fake.
type wireClient interface {
	Initialize(ctx context.Context, request mcp.InitializeRequest) (*mcp.InitializeResult, error)
	ListTools(ctx context.Context, request mcp.ListToolsRequest) (*mcp.ListToolsResult, error)
	CallTool(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error)
	Close() error
}

// spawnFunc launches the tool-server child process and returns its channel.
type spawnFunc func(settings entities.ToolServerSettings, token string) (wireClient, error)

// Session is the tool-server connection state machine. State transitions are
// guarded by the mutex so start, stop, and reconnect cannot interleave
// destructively; the actual call I/O happens outside the lock and is
// serialized by the Invoker.
type Session struct {
	mutex    sync.Mutex
	settings entities.ToolServerSettings
	token    string
	spawn    spawnFunc

	status            entities.SessionStatus
	errorMessage      string
	reconnectAttempts int
	containerID       string
	tools             []string
	channel           wireClient
}

// NewSession creates a stopped session. No process is spawned until Start.
func NewSession(settings entities.ToolServerSettings, token string) *Session {
	return &Session{
		settings: settings,
		token:    token,
		spawn:    spawnContainer,
		status:   entities.SessionStopped,
	}
}

// Start launches the tool server and performs the capability handshake. A
// fresh Start resets the reconnect attempt counter.
func (it *Session) Start(ctx context.Context) error {
	it.mutex.Lock()
	defer it.mutex.Unlock()

	it.reconnectAttempts = 0
	return it.startLocked(ctx)
}

func (it *Session) startLocked(ctx context.Context) error {
	if it.token == "" {
		it.status = entities.SessionError
		it.errorMessage = entities.ErrMissingToken.Error()
		return entities.ErrMissingToken
	}

	it.status = entities.SessionStarting
	it.teardownLocked()

	channel, err := it.spawn(it.settings, it.token)
	if err != nil {
		it.status = entities.SessionError
		it.errorMessage = err.Error()
		return fmt.Errorf("failed to launch tool server: %w", err)
	}

	handshakeCtx, cancel := context.WithTimeout(ctx, handshakeTimeout)
	defer cancel()

	if handshakeErr := it.handshakeLocked(handshakeCtx, channel); handshakeErr != nil {
		_ = channel.Close()
		it.status = entities.SessionError
		it.errorMessage = handshakeErr.Error()
		return handshakeErr
	}

	it.channel = channel
	it.containerID = lookupContainerID(it.settings)
	it.status = entities.SessionRunning
	it.errorMessage = ""

	logger.Infof("Tool server running with %d tools available", len(it.tools))
	return nil
}

func (it *Session) handshakeLocked(ctx context.Context, channel wireClient) error {
	initRequest := mcp.InitializeRequest{}
	initRequest.Params.ProtocolVersion = mcp.LATEST_PROTOCOL_VERSION
	initRequest.Params.ClientInfo = mcp.Implementation{Name: "smartupdate", Version: "1.0.0"}

	if _, err := channel.Initialize(ctx, initRequest); err != nil {
		return fmt.Errorf("tool server handshake failed: %w", err)
	}

	toolsResult, err := channel.ListTools(ctx, mcp.ListToolsRequest{})
	if err != nil {
		return fmt.Errorf("failed to enumerate tool server operations: %w", err)
	}

	tools := make([]string, 0, len(toolsResult.Tools))
	for _, tool := range toolsResult.Tools {
		tools = append(tools, tool.Name)
	}
	it.tools = tools
	return nil
}

// EnsureConnected is a no-op when running, starts when stopped, and
// reconnects from an error state.
func (it *Session) EnsureConnected(ctx context.Context) error {
	it.mutex.Lock()
	defer it.mutex.Unlock()
	return it.ensureConnectedLocked(ctx)
}

func (it *Session) ensureConnectedLocked(ctx context.Context) error {
	switch it.status {
	case entities.SessionRunning:
		return nil
	case entities.SessionStopped, entities.SessionStarting:
		return it.startLocked(ctx)
	case entities.SessionError, entities.SessionReconnecting:
		return it.reconnectLocked(ctx)
	}
	return it.startLocked(ctx)
}

// Reconnect tears down any partial state, waits a short backoff, and re-runs
// the start sequence. The attempt counter is bounded; once spent, the
// session stays in a terminal error state until a fresh Start.
func (it *Session) Reconnect(ctx context.Context) error {
	it.mutex.Lock()
	defer it.mutex.Unlock()
	return it.reconnectLocked(ctx)
}

func (it *Session) reconnectLocked(ctx context.Context) error {
	if it.reconnectAttempts >= maxReconnectAttempts {
		it.status = entities.SessionError
		it.errorMessage = entities.ErrReconnectExhausted.Error()
		return entities.ErrReconnectExhausted
	}
	it.reconnectAttempts++
	it.status = entities.SessionReconnecting

	logger.Warnf("Reconnecting to tool server (attempt %d/%d)", it.reconnectAttempts, maxReconnectAttempts)
	it.teardownLocked()

	select {
	case <-time.After(reconnectBackoff):
	case <-ctx.Done():
		it.status = entities.SessionError
		it.errorMessage = ctx.Err().Error()
		return fmt.Errorf("reconnect aborted: %w", ctx.Err())
	}

	return it.startLocked(ctx)
}

// Stop releases the child process and channel. Valid from any state.
func (it *Session) Stop() {
	it.mutex.Lock()
	defer it.mutex.Unlock()

	it.teardownLocked()
	it.status = entities.SessionStopped
	it.errorMessage = ""
	it.tools = nil
	it.containerID = ""
}

func (it *Session) teardownLocked() {
	if it.channel != nil {
		_ = it.channel.Close()
		it.channel = nil
	}
}

// Info returns a point-in-time snapshot of the session state.
func (it *Session) Info() entities.SessionInfo {
	it.mutex.Lock()
	defer it.mutex.Unlock()

	return entities.SessionInfo{
		Status:            it.status,
		ContainerID:       it.containerID,
		ToolsCount:        len(it.tools),
		ErrorMessage:      it.errorMessage,
		ReconnectAttempts: it.reconnectAttempts,
	}
}

// Tools returns the remote operation names recorded by the handshake.
func (it *Session) Tools() []string {
	it.mutex.Lock()
	defer it.mutex.Unlock()

	tools := make([]string, len(it.tools))
	copy(tools, it.tools)
	return tools
}

// Call invokes one remote operation. A channel-level fault marks the session
// errored and triggers exactly one reconnect plus one retry of the same call
// before the failure is surfaced.
func (it *Session) Call(ctx context.Context, operation string, args map[string]any) (json.RawMessage, error) {
	if err := it.EnsureConnected(ctx); err != nil {
		return nil, err
	}

	payload, err := it.callOnce(ctx, operation, args)
	if err == nil {
		return payload, nil
	}
	if !isChannelFault(err) {
		return nil, err
	}

	it.mutex.Lock()
	it.status = entities.SessionError
	it.errorMessage = err.Error()
	reconnectErr := it.reconnectLocked(ctx)
	it.mutex.Unlock()
	if reconnectErr != nil {
		return nil, fmt.Errorf("%w: %s", entities.ErrChannelFault, err.Error())
	}

	logger.Warnf("Retrying '%s' after reconnect", operation)
	return it.callOnce(ctx, operation, args)
}

func (it *Session) callOnce(ctx context.Context, operation string, args map[string]any) (json.RawMessage, error) {
	it.mutex.Lock()
	channel := it.channel
	it.mutex.Unlock()
	if channel == nil {
		return nil, entities.ErrChannelFault
	}

	request := mcp.CallToolRequest{}
	request.Params.Name = operation
	request.Params.Arguments = args

	result, err := channel.CallTool(ctx, request)
	if err != nil {
		return nil, fmt.Errorf("%w: %s failed: %s", entities.ErrChannelFault, operation, err.Error())
	}

	text := collectText(result.Content)
	if result.IsError {
		return nil, fmt.Errorf("tool server rejected %q: %s", operation, text)
	}
	return json.RawMessage(text), nil
}

func isChannelFault(err error) bool {
	return errors.Is(err, entities.ErrChannelFault)
}

func collectText(contents []mcp.Content) string {
	var builder strings.Builder
	for _, content := range contents {
		if text, ok := mcp.AsTextContent(content); ok {
			builder.WriteString(text.Text)
		}
	}
	return builder.String()
}

// spawnContainer launches the tool-server image through the configured
// container runtime, with stdio attached for the framed channel.
func spawnContainer(settings entities.ToolServerSettings, token string) (wireClient, error) {
	runtime := settings.Runtime
	if runtime == "" {
		runtime = detectRuntime()
	}
	if runtime == "" {
		return nil, errors.New("no container runtime found on PATH")
	}

	args := []string{
		"run", "-i", "--rm",
		"-e", tokenEnvVar,
		settings.Image,
		"stdio",
	}
	env := []string{tokenEnvVar + "=" + token}

	return client.NewStdioMCPClient(runtime, env, args...)
}

// detectRuntime prefers docker and falls back to podman.
func detectRuntime() string {
	for _, candidate := range []string{"docker", "podman"} {
		if _, err := exec.LookPath(candidate); err == nil {
			return candidate
		}
	}
	return ""
}

// lookupContainerID asks the runtime for the newest container running the
// configured image. Best effort only; an empty result is not an error.
func lookupContainerID(settings entities.ToolServerSettings) string {
	runtime := settings.Runtime
	if runtime == "" {
		runtime = detectRuntime()
	}
	if runtime == "" {
		return ""
	}

	output, err := exec.Command( //nolint:gosec // runtime and image come from configuration
		runtime, "ps", "-q", "--latest", "--filter", "ancestor="+settings.Image,
	).Output()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(strings.SplitN(string(output), "\n", 2)[0])
}
