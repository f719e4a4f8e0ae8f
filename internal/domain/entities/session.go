package entities

// SessionStatus is the lifecycle state of the tool-server session.
type SessionStatus string

const (
	SessionStopped      SessionStatus = "stopped"
	SessionStarting     SessionStatus = "starting"
	SessionRunning      SessionStatus = "running"
	SessionError        SessionStatus = "error"
	SessionReconnecting SessionStatus = "reconnecting"
)

// SessionInfo is a point-in-time snapshot of the session state, safe to
// hand to callers on any goroutine.
type SessionInfo struct {
	Status            SessionStatus
	ContainerID       string // best effort; empty is not an error
	ToolsCount        int
	ErrorMessage      string
	ReconnectAttempts int
}
