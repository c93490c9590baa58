package authsvc

import (
	"crypto/sha256"
	"encoding/base64"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// Credentials hashes and verifies passwords with bcrypt. Passwords are
// reduced to a base64 SHA-256 digest first, so bcrypt's 72 byte input limit
// never truncates or rejects a password.
type Credentials struct {
	Cost int
}

// NewCredentials returns a Credentials using cost, falling back to
// bcrypt.DefaultCost when cost is out of range.
func NewCredentials(cost int) Credentials {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}

	return Credentials{Cost: cost}
}

// Hash returns the salted bcrypt hash of password.
func (c Credentials) Hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword(prehash(password), c.Cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}

	return string(hash), nil
}

// Verify reports whether password matches hash. Malformed hashes never match.
func (c Credentials) Verify(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), prehash(password)) == nil
}

func prehash(password string) []byte {
	sum := sha256.Sum256([]byte(password))

	out := make([]byte, base64.StdEncoding.EncodedLen(len(sum)))
	base64.StdEncoding.Encode(out, sum[:])

	return out
}
