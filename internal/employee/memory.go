package employee

import (
	"context"
	"strings"
	"sync"
)

var _ Lookup = (*InMemory)(nil)

// InMemory is a Lookup backed by a map, used in dev mode and tests.
type InMemory struct {
	mu      sync.RWMutex
	links   Linker
	byEmail map[string]Record
}

// NewInMemory returns an empty store.
func NewInMemory(links Linker) *InMemory {
	return &InMemory{links: links, byEmail: make(map[string]Record)}
}

// Add inserts or replaces an employee keyed by email.
func (s *InMemory) Add(rec Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byEmail[strings.ToLower(strings.TrimSpace(rec.Email))] = rec
}

// Delete removes the employee with email, if any.
func (s *InMemory) Delete(email string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.byEmail, strings.ToLower(strings.TrimSpace(email)))
}

func (s *InMemory) ForAuthentication(_ context.Context, q GetForAuthentication) (AuthenticatedEmployee, error) {
	email := q.Normalized()
	if email == "" {
		return AuthenticatedEmployee{}, ErrNotFound
	}
	s.mu.RLock()
	rec, ok := s.byEmail[email]
	s.mu.RUnlock()
	if !ok || !rec.Active {
		return AuthenticatedEmployee{}, ErrNotFound
	}
	return rec.authenticated(s.links), nil
}
