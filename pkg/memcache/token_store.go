// Package mem holds short-lived, single-use values: CSRF tokens, password reset tokens and flash
// messages.
package mem

import (
	"context"
	"sync"
	"time"
)

type TokenStore interface {
	Set(ctx context.Context, key string, value string, ttl time.Duration) error

	// Consume returns the value for key if not expired and removes it (single-use).
	Consume(ctx context.Context, key string) (string, bool, error)
}

type entry struct {
	value     string
	expiresAt time.Time
}

// MemoryTokens is the in-process TokenStore, used when no Redis is configured.
type MemoryTokens struct {
	mu   sync.RWMutex
	data map[string]entry
	now  func() time.Time
}

func NewMemoryTokens() *MemoryTokens {
	return &MemoryTokens{
		data: make(map[string]entry),
		now:  time.Now,
	}
}

func (s *MemoryTokens) Set(_ context.Context, key string, value string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = entry{
		value:     value,
		expiresAt: s.now().Add(ttl),
	}
	return nil
}

func (s *MemoryTokens) Consume(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.data[key]
	if !ok {
		return "", false, nil
	}
	delete(s.data, key) // single-use, and cleanup when expired
	if s.now().After(e.expiresAt) {
		return "", false, nil
	}
	return e.value, true, nil
}

// Sweep drops expired entries.
func (s *MemoryTokens) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	now := s.now()
	for k, e := range s.data {
		if now.After(e.expiresAt) {
			delete(s.data, k)
			n++
		}
	}
	return n
}
