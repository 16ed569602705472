package source

import (
	"sync"
)

// StaticSource is an in-memory endpoint source for programmatic
// registration. Every mutation increments the version token, so an
// attached router picks the change up on its next operation.
type StaticSource struct {
	mu        sync.RWMutex
	endpoints []Endpoint
	version   int64
}

// NewStaticSource creates a StaticSource with the given initial
// endpoint set at version 1.
func NewStaticSource(endpoints ...Endpoint) *StaticSource {
	s := &StaticSource{version: 1}
	s.endpoints = append(s.endpoints, endpoints...)
	return s
}

// Snapshot implements EndpointSource.
func (s *StaticSource) Snapshot() ([]Endpoint, int64) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Endpoint, len(s.endpoints))
	copy(out, s.endpoints)
	return out, s.version
}

// Set replaces the endpoint set and bumps the version.
func (s *StaticSource) Set(endpoints ...Endpoint) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.endpoints = make([]Endpoint, len(endpoints))
	copy(s.endpoints, endpoints)
	s.version++
}

// Add appends endpoints to the set and bumps the version.
func (s *StaticSource) Add(endpoints ...Endpoint) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.endpoints = append(s.endpoints, endpoints...)
	s.version++
}

// Remove deletes all endpoints with the given route name and bumps the
// version. It reports whether anything was removed.
func (s *StaticSource) Remove(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.endpoints[:0]
	removed := false
	for _, ep := range s.endpoints {
		if ep.Name == name {
			removed = true
			continue
		}
		kept = append(kept, ep)
	}
	s.endpoints = kept
	if removed {
		s.version++
	}
	return removed
}

// Bump increments the version without changing the endpoint set,
// forcing a rebuild on the next router operation.
func (s *StaticSource) Bump() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.version++
}

// Version returns the current version token.
func (s *StaticSource) Version() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}
