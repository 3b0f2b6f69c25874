package memory

import (
	"context"
	"sync"

	"github.com/custodia-labs/nowplaying/internal/core/domain"
	"github.com/custodia-labs/nowplaying/internal/core/ports/driven"
)

// Ensure TokenStore implements the interface.
var _ driven.TokenStore = (*TokenStore)(nil)

// TokenStore keeps the token record in process memory.
// It backs service tests.
type TokenStore struct {
	mu      sync.Mutex
	record  *domain.TokenRecord
	saves   int
	saveErr error
}

// NewTokenStore creates an empty in-memory token store.
func NewTokenStore() *TokenStore {
	return &TokenStore{}
}

// Save replaces the stored record.
func (s *TokenStore) Save(_ context.Context, record domain.TokenRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	s.record = &record
	s.saves++
	return nil
}

// Load returns the stored record, or false if none is stored.
func (s *TokenStore) Load(_ context.Context) (domain.TokenRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.record == nil {
		return domain.TokenRecord{}, false
	}
	return *s.record, true
}

// Clear removes the stored record.
func (s *TokenStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record = nil
	return nil
}

// Saves returns how many successful saves have happened.
func (s *TokenStore) Saves() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}

// FailSaves makes every later Save return err. Pass nil to clear.
func (s *TokenStore) FailSaves(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saveErr = err
}
