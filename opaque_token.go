package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"

	goerrors "github.com/goliatone/go-errors"
)

// opaqueTokenBytes is the entropy of a single-use token. 32 random bytes
// keep collisions negligible at any plausible account volume.
const opaqueTokenBytes = 32

// OpaqueToken pairs the plaintext delivered to the user with the digest that
// is the only value ever persisted, so a database compromise cannot yield
// usable tokens.
type OpaqueToken struct {
	Plaintext string
	Hash      []byte
}

// GenerateOpaqueToken returns a fresh random single-use token for
// verification and reset links.
func GenerateOpaqueToken() (OpaqueToken, error) {
	buf := make([]byte, opaqueTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return OpaqueToken{}, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to generate opaque token")
	}

	plaintext := hex.EncodeToString(buf)
	return OpaqueToken{
		Plaintext: plaintext,
		Hash:      HashOpaqueToken(plaintext),
	}, nil
}

// HashOpaqueToken maps a plaintext token to its stored digest. The mapping
// is deterministic so lookup-by-hash succeeds at consumption time.
func HashOpaqueToken(plaintext string) []byte {
	sum := sha256.Sum256([]byte(plaintext))
	return sum[:]
}

// OpaqueTokenMatches compares a plaintext token against a stored digest in
// constant time.
func OpaqueTokenMatches(plaintext string, hash []byte) bool {
	if len(hash) == 0 {
		return false
	}
	return subtle.ConstantTimeCompare(HashOpaqueToken(plaintext), hash) == 1
}
