// Package handler defines the contracts between the dispatcher and routing
// collaborators: the per-request context, the Router interface, and the
// routing result shape.
package handler
