// Package auth hashes and verifies passwords.
package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// Hasher produces self-describing bcrypt digests: algorithm version, cost and
// salt are encoded in the digest itself.
type Hasher struct {
	cost  int
	dummy []byte
}

// NewHasher returns a Hasher using cost, or bcrypt.DefaultCost when cost is out of range.
func NewHasher(cost int) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	dummy, err := bcrypt.GenerateFromPassword([]byte("asfalto-dummy-password"), cost)
	if err != nil {
		panic(fmt.Sprintf("auth: generating dummy digest: %v", err))
	}
	return &Hasher{cost: cost, dummy: dummy}
}

// Hash returns a salted digest of plaintext. Two calls never return the same digest.
func (h *Hasher) Hash(plaintext string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(digest), nil
}

// Verify reports whether plaintext matches digest. The final comparison is constant time.
func (h *Hasher) Verify(plaintext, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext)) == nil
}

// Burn spends the same effort as a failed Verify, for lookups that found no digest.
func (h *Hasher) Burn(plaintext string) {
	_ = bcrypt.CompareHashAndPassword(h.dummy, []byte(plaintext))
}

// Cost returns the bcrypt cost digests are produced with.
func (h *Hasher) Cost() int {
	return h.cost
}
