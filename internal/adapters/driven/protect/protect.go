// Package protect seals small secrets for the current user with a
// per-user key file and XChaCha20-Poly1305.
package protect

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/crypto/chacha20poly1305"

	"github.com/custodia-labs/nowplaying/internal/core/domain"
	"github.com/custodia-labs/nowplaying/internal/core/ports/driven"
)

// Ensure KeyFileProtector implements the interface.
var _ driven.Protector = (*KeyFileProtector)(nil)

// KeyFileName is the key file created inside the protector directory.
const KeyFileName = "key"

// sealVersion prefixes every sealed blob so the layout can evolve.
const sealVersion byte = 1

// KeyFileProtector encrypts with a random 32-byte key stored in a file
// readable only by its owner. The key is created on first Protect.
type KeyFileProtector struct {
	path string

	mu  sync.Mutex
	key []byte
}

// NewKeyFileProtector creates a protector whose key lives in dir.
func NewKeyFileProtector(dir string) *KeyFileProtector {
	return &KeyFileProtector{path: filepath.Join(dir, KeyFileName)}
}

// Protect encrypts plain. The output is version | nonce | ciphertext.
func (p *KeyFileProtector) Protect(plain []byte) ([]byte, error) {
	key, err := p.loadKey(true)
	if err != nil {
		return nil, err
	}
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}

	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("generate nonce: %w", err)
	}

	out := append([]byte{sealVersion}, nonce...)
	return aead.Seal(out, nonce, plain, []byte{sealVersion}), nil
}

// Unprotect decrypts data produced by Protect.
func (p *KeyFileProtector) Unprotect(sealed []byte) ([]byte, error) {
	key, err := p.loadKey(false)
	if err != nil {
		return nil, err
	}
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}

	if len(sealed) < 1+aead.NonceSize()+aead.Overhead() || sealed[0] != sealVersion {
		return nil, domain.ErrUnprotectFailed
	}
	nonce := sealed[1 : 1+aead.NonceSize()]
	plain, err := aead.Open(nil, nonce, sealed[1+aead.NonceSize():], sealed[:1])
	if err != nil {
		return nil, domain.ErrUnprotectFailed
	}
	return plain, nil
}

// loadKey reads the key file, creating it when create is set.
func (p *KeyFileProtector) loadKey(create bool) ([]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.key != nil {
		return p.key, nil
	}

	key, err := os.ReadFile(p.path)
	switch {
	case err == nil:
		if len(key) != chacha20poly1305.KeySize {
			return nil, fmt.Errorf("%w: key file has wrong size", domain.ErrUnprotectFailed)
		}
		p.key = key
		return key, nil
	case errors.Is(err, fs.ErrNotExist) && create:
		return p.createKey()
	case errors.Is(err, fs.ErrNotExist):
		return nil, fmt.Errorf("%w: no key file", domain.ErrUnprotectFailed)
	default:
		return nil, fmt.Errorf("read key file: %w", err)
	}
}

func (p *KeyFileProtector) createKey() ([]byte, error) {
	key := make([]byte, chacha20poly1305.KeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("generate key: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(p.path), 0700); err != nil {
		return nil, fmt.Errorf("create key directory: %w", err)
	}
	// Exclusive create: when two processes race, the first key written wins.
	f, err := os.OpenFile(p.path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
	if errors.Is(err, fs.ErrExist) {
		existing, rerr := os.ReadFile(p.path)
		if rerr != nil || len(existing) != chacha20poly1305.KeySize {
			return nil, fmt.Errorf("read concurrent key file: %w", err)
		}
		p.key = existing
		return existing, nil
	}
	if err != nil {
		return nil, fmt.Errorf("create key file: %w", err)
	}
	if _, err := f.Write(key); err != nil {
		f.Close()
		return nil, fmt.Errorf("write key file: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("close key file: %w", err)
	}
	p.key = key
	return key, nil
}
