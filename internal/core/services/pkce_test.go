package services

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var unreserved = regexp.MustCompile(`^[A-Za-z0-9\-._~]+$`)

func TestGenerateCodeVerifier(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 50; i++ {
		verifier, err := generateCodeVerifier()
		require.NoError(t, err)

		assert.Len(t, verifier, 86)
		assert.Regexp(t, unreserved, verifier)

		raw, err := base64.RawURLEncoding.DecodeString(verifier)
		require.NoError(t, err)
		assert.Len(t, raw, verifierBytes)

		_, dup := seen[verifier]
		assert.False(t, dup, "verifier repeated")
		seen[verifier] = struct{}{}
	}
}

func TestGenerateCodeChallenge(t *testing.T) {
	t.Run("RFC 7636 appendix B", func(t *testing.T) {
		verifier := "dBjftJeZ4CVP-mB92K27uhbUJU1p1r_wW1gFWFOEjXk"
		assert.Equal(t, "E9Melhoa2OwvFrEMTJguCHaoeK1t8URWbuGJSstw-cM", generateCodeChallenge(verifier))
	})

	t.Run("digest of generated verifiers", func(t *testing.T) {
		for i := 0; i < 20; i++ {
			verifier, err := generateCodeVerifier()
			require.NoError(t, err)

			sum := sha256.Sum256([]byte(verifier))
			challenge := generateCodeChallenge(verifier)
			assert.Equal(t, base64.RawURLEncoding.EncodeToString(sum[:]), challenge)
			assert.Len(t, challenge, 43)
			assert.NotContains(t, challenge, "=")
		}
	})

	t.Run("deterministic", func(t *testing.T) {
		assert.Equal(t, generateCodeChallenge("abc"), generateCodeChallenge("abc"))
		assert.NotEqual(t, generateCodeChallenge("abc"), generateCodeChallenge("abd"))
	})
}

func TestGenerateState(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 50; i++ {
		state, err := generateState()
		require.NoError(t, err)

		assert.Len(t, state, 32)
		_, err = hex.DecodeString(state)
		assert.NoError(t, err, "state should be hex")

		_, dup := seen[state]
		assert.False(t, dup, "state repeated")
		seen[state] = struct{}{}
	}
}
