// Package file provides the encrypted on-disk token store.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/custodia-labs/nowplaying/internal/core/domain"
	"github.com/custodia-labs/nowplaying/internal/core/ports/driven"
	"github.com/custodia-labs/nowplaying/internal/logger"
)

// Ensure TokenStore implements the interface.
var _ driven.TokenStore = (*TokenStore)(nil)

// TokenFileName is the sealed token file inside the store directory.
const TokenFileName = "tokens.dat"

// TokenStore keeps one sealed TokenRecord in a file.
type TokenStore struct {
	mu        sync.Mutex
	path      string
	protector driven.Protector
}

// NewTokenStore creates a token store writing to dir/tokens.dat.
// The directory is created on first Save.
func NewTokenStore(dir string, protector driven.Protector) *TokenStore {
	return &TokenStore{
		path:      filepath.Join(dir, TokenFileName),
		protector: protector,
	}
}

// Path returns the token file path.
func (s *TokenStore) Path() string {
	return s.path
}

// Save seals the record and atomically replaces the token file.
func (s *TokenStore) Save(ctx context.Context, record domain.TokenRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("encode tokens: %w", err)
	}
	sealed, err := s.protector.Protect(data)
	if err != nil {
		return fmt.Errorf("protect tokens: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("create token directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, TokenFileName+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = os.Remove(tmpPath)
		}
	}()

	if err := tmp.Chmod(0600); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if _, err := tmp.Write(sealed); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		return fmt.Errorf("replace token file: %w", err)
	}
	committed = true
	return nil
}

// Load returns the stored record. Any failure to read, unseal, or parse
// the file is reported as absence.
func (s *TokenStore) Load(_ context.Context) (domain.TokenRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sealed, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			logger.Debug("tokenstore: read %s: %v", s.path, err)
		}
		return domain.TokenRecord{}, false
	}

	data, err := s.protector.Unprotect(sealed)
	if err != nil {
		logger.Debug("tokenstore: unprotect %s: %v", s.path, err)
		return domain.TokenRecord{}, false
	}

	var record domain.TokenRecord
	if err := json.Unmarshal(data, &record); err != nil {
		logger.Debug("tokenstore: decode %s: %v", s.path, err)
		return domain.TokenRecord{}, false
	}
	if !record.Valid() {
		logger.Debug("tokenstore: %s holds an incomplete record", s.path)
		return domain.TokenRecord{}, false
	}
	return record, true
}

// Clear deletes the token file. A missing file is not an error.
func (s *TokenStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove token file: %w", err)
	}
	return nil
}
