package vhost

import (
	"sync"
)

// Registry is the ordered collection of virtual hosts a server resolves
// against. Resolution is a linear scan in registration order — first match
// wins, which makes overlapping patterns a deliberate, documented tie-break
// rather than an accident. The set is read on every request and mutated
// rarely, so an RWMutex is enough.
type Registry struct {
	mu    sync.RWMutex
	hosts []*Host
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Add appends a host. Hosts without port bindings cannot serve traffic and
// are rejected.
func (g *Registry) Add(h *Host) error {
	if len(h.Bindings()) == 0 {
		return ErrNoBindings
	}
	g.mu.Lock()
	g.hosts = append(g.hosts, h)
	g.mu.Unlock()
	return nil
}

// Remove deletes the host from the registry, preserving the order of the
// remaining hosts.
func (g *Registry) Remove(h *Host) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for i, cur := range g.hosts {
		if cur == h {
			g.hosts = append(g.hosts[:i], g.hosts[i+1:]...)
			return
		}
	}
}

// Resolve returns the first host matching (hostname, port), or nil. This
// sits on the hot path of every request.
func (g *Registry) Resolve(hostname string, port int) *Host {
	g.mu.RLock()
	defer g.mu.RUnlock()
	for _, h := range g.hosts {
		if h.Matches(hostname, port) {
			return h
		}
	}
	return nil
}

// Hosts returns a snapshot of the registered hosts in order.
func (g *Registry) Hosts() []*Host {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return append([]*Host(nil), g.hosts...)
}

// Port describes one distinct listening port aggregated across all hosts.
type Port struct {
	Number int
	Secure bool
}

// Ports returns the distinct ports the registry's hosts bind, in first-seen
// order. A port is secure when any binding on it is secure.
func (g *Registry) Ports() []Port {
	g.mu.RLock()
	defer g.mu.RUnlock()

	var ports []Port
	index := make(map[int]int)
	for _, h := range g.hosts {
		for _, b := range h.bindings {
			if i, ok := index[b.Port]; ok {
				if b.Secure {
					ports[i].Secure = true
				}
				continue
			}
			index[b.Port] = len(ports)
			ports = append(ports, Port{Number: b.Port, Secure: b.Secure})
		}
	}
	return ports
}
