package vhost

import "errors"

var (
	// ErrInvalidPattern is returned for hostname patterns the registry
	// cannot match: empty, or wildcards anywhere but a single leading "*.".
	ErrInvalidPattern = errors.New("invalid hostname pattern")

	// ErrInvalidPort is returned for port bindings outside 1-65535.
	ErrInvalidPort = errors.New("invalid port binding")

	// ErrNoBindings is returned when a host without port bindings is added
	// to a registry.
	ErrNoBindings = errors.New("virtual host has no port bindings")
)
