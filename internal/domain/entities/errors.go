package entities

import "errors"

// Infrastructure failures. Each is recovered at most once locally and then
// surfaced to the caller as a typed failure; callers match with errors.Is.
var (
	// ErrMissingToken means no credential is configured for the tool server.
	// Fatal for the session: no process is spawned and no retry happens.
	ErrMissingToken = errors.New("tool server token not configured")

	// ErrUnsupportedFormat means the manifest dialect is not registered.
	// Fatal for that call only.
	ErrUnsupportedFormat = errors.New("unsupported manifest format")

	// ErrChannelFault is an I/O break on the tool-server connection.
	// Triggers exactly one reconnect plus one retry of the failed call.
	ErrChannelFault = errors.New("tool server channel fault")

	// ErrReconnectExhausted means the reconnect attempt budget is spent.
	// Terminal until a fresh Start resets the counter.
	ErrReconnectExhausted = errors.New("tool server reconnect attempts exhausted")

	// ErrCallTimeout is a tool-call deadline hit. Distinct from a channel
	// fault: it does not by itself trigger a reconnect.
	ErrCallTimeout = errors.New("tool server call timed out")
)
