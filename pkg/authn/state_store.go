package authn

import (
	"context"
	"sync"
	"time"
)

// StateStore persists one-time OAuth2 state tokens between the authorization
// redirect and the provider callback. Consume validates and burns a token in
// one step, so a state can never authenticate two callbacks.
type StateStore interface {
	Store(ctx context.Context, state string, expiresAt time.Time) error
	// Consume returns ErrInvalidState for unknown or expired tokens.
	Consume(ctx context.Context, state string) error
}

// MemoryStateStore keeps state tokens in process memory. Suitable for a
// single-instance deployment or tests; multi-instance deployments need the
// Redis-backed store so the callback can land on any instance.
type MemoryStateStore struct {
	mu     sync.Mutex
	states map[string]time.Time
}

// NewMemoryStateStore creates an in-memory state store.
func NewMemoryStateStore() *MemoryStateStore {
	return &MemoryStateStore{states: make(map[string]time.Time)}
}

func (s *MemoryStateStore) Store(ctx context.Context, state string, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[state] = expiresAt
	return nil
}

func (s *MemoryStateStore) Consume(ctx context.Context, state string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	expiresAt, ok := s.states[state]
	if !ok {
		return ErrInvalidState
	}
	delete(s.states, state)
	if time.Now().After(expiresAt) {
		return ErrInvalidState
	}
	return nil
}

var _ StateStore = (*MemoryStateStore)(nil)
