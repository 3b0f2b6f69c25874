package services

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// verifierBytes is the amount of entropy behind a code verifier. It
// encodes to 86 characters, inside the 43-128 range of RFC 7636.
const verifierBytes = 64

// generateCodeVerifier returns a fresh PKCE code verifier.
func generateCodeVerifier() (string, error) {
	buf := make([]byte, verifierBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// generateCodeChallenge derives the S256 challenge sent with the
// authorize request.
func generateCodeChallenge(verifier string) string {
	sum := sha256.Sum256([]byte(verifier))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

// generateState returns the anti-forgery nonce echoed by the redirect:
// a random UUID as 32 hex characters.
func generateState() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("generate uuid: %w", err)
	}
	return strings.ReplaceAll(id.String(), "-", ""), nil
}
