// Package vhost implements virtual hosts and the ordered registry that
// resolves an incoming (hostname, port) pair to one of them.
//
// Hostname patterns support a single leading "*." wildcard with DNS-style
// semantics: "*.example.com" matches "a.example.com" but never "example.com"
// itself. Matching is case-insensitive and first-registered-wins.
//
// A host owns at most one routing collaborator. Router binding is first-come
// and process-wide exclusive: binding an already-claimed router is a no-op,
// and rebinding requires an explicit release by the current owner.
package vhost
