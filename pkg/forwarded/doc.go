// Package forwarded resolves the effective client address and target
// hostname from proxy forwarding headers (X-Forwarded-For, X-Real-IP, and
// optionally X-Forwarded-Host).
//
// The leftmost X-Forwarded-For entry wins, matching the convention that
// proxies append themselves to the right. Host overriding must be opted into
// explicitly since the header is client-controlled on direct connections.
package forwarded
