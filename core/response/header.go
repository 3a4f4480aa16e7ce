package response

import "net/textproto"

// Header is an ordered, case-insensitive header multimap. Unlike http.Header
// it preserves insertion order of keys, so composed responses hit the wire in
// a stable order. Keys are canonicalized on every operation.
type Header struct {
	entries []headerEntry
}

type headerEntry struct {
	name   string
	values []string
}

func canonical(name string) string {
	return textproto.CanonicalMIMEHeaderKey(name)
}

func (h *Header) find(name string) *headerEntry {
	for i := range h.entries {
		if h.entries[i].name == name {
			return &h.entries[i]
		}
	}
	return nil
}

// Add appends a value under name, keeping any existing values.
func (h *Header) Add(name, value string) {
	name = canonical(name)
	if e := h.find(name); e != nil {
		e.values = append(e.values, value)
		return
	}
	h.entries = append(h.entries, headerEntry{name: name, values: []string{value}})
}

// Set replaces all values under name with the single given value.
func (h *Header) Set(name, value string) {
	name = canonical(name)
	if e := h.find(name); e != nil {
		e.values = []string{value}
		return
	}
	h.entries = append(h.entries, headerEntry{name: name, values: []string{value}})
}

// Get returns the first value under name, or "" when absent.
func (h *Header) Get(name string) string {
	if e := h.find(canonical(name)); e != nil && len(e.values) > 0 {
		return e.values[0]
	}
	return ""
}

// Values returns all values under name in insertion order.
func (h *Header) Values(name string) []string {
	if e := h.find(canonical(name)); e != nil {
		return e.values
	}
	return nil
}

// Has reports whether at least one value exists under name.
func (h *Header) Has(name string) bool {
	return h.find(canonical(name)) != nil
}

// Del removes all values under name.
func (h *Header) Del(name string) {
	name = canonical(name)
	for i := range h.entries {
		if h.entries[i].name == name {
			h.entries = append(h.entries[:i], h.entries[i+1:]...)
			return
		}
	}
}

// Len returns the number of distinct header names.
func (h *Header) Len() int {
	return len(h.entries)
}

// Each calls fn for every (name, values) pair in insertion order.
func (h *Header) Each(fn func(name string, values []string)) {
	for i := range h.entries {
		fn(h.entries[i].name, h.entries[i].values)
	}
}

// Clone returns a deep copy of the header map.
func (h *Header) Clone() *Header {
	c := &Header{entries: make([]headerEntry, len(h.entries))}
	for i := range h.entries {
		c.entries[i].name = h.entries[i].name
		c.entries[i].values = append([]string(nil), h.entries[i].values...)
	}
	return c
}
