package dispatch

import "errors"

var (
	// ErrRequestTimeout is the deadline-race fault: the routing collaborator
	// did not answer within the configured routing timeout.
	ErrRequestTimeout = errors.New("routing deadline exceeded")

	// ErrUnknownHost is raised when no virtual host matches the request.
	ErrUnknownHost = errors.New("no virtual host for request")

	// ErrHostNotReady is raised when the matched host has no bound router.
	ErrHostNotReady = errors.New("virtual host not ready to route")

	// ErrBodyTooLarge is raised when the declared content length exceeds the
	// server maximum.
	ErrBodyTooLarge = errors.New("declared content length exceeds maximum")

	// ErrIllegalMethodBody is raised when a body arrives on a conventionally
	// bodyless method and strict checking is enabled.
	ErrIllegalMethodBody = errors.New("request body not allowed for method")

	// ErrNilRegistry is returned when a server is created without a host
	// registry.
	ErrNilRegistry = errors.New("host registry is required")

	// ErrServerAlreadyRunning is returned by Start on a running server.
	ErrServerAlreadyRunning = errors.New("server is already running")
)
