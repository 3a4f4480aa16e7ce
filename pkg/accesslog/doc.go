// Package accesslog is a logging collaborator that turns request outcomes
// into structured slog lines.
package accesslog
