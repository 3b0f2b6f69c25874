package driven

import (
	"context"

	"github.com/custodia-labs/nowplaying/internal/core/domain"
)

// TokenStore persists the single token record, encrypted at rest.
type TokenStore interface {
	// Save atomically replaces any stored record.
	Save(ctx context.Context, record domain.TokenRecord) error

	// Load returns the stored record.
	// Returns false if nothing is stored or the stored data is unreadable.
	Load(ctx context.Context) (domain.TokenRecord, bool)

	// Clear removes the stored record. Clearing an empty store is not an error.
	Clear(ctx context.Context) error
}

// Protector seals data so that only the current user can read it back.
type Protector interface {
	// Protect encrypts plain.
	Protect(plain []byte) ([]byte, error)

	// Unprotect decrypts data produced by Protect.
	// Returns domain.ErrUnprotectFailed for tampered or foreign data.
	Unprotect(sealed []byte) ([]byte, error)
}

// TokenWatcher reports changes to the persisted token record made by
// other processes.
type TokenWatcher interface {
	// Watch calls onChange after each write or removal until ctx is done.
	Watch(ctx context.Context, onChange func()) error
}
