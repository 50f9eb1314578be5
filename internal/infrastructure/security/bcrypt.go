package security

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// BcryptPinHasher hashes and verifies account pins using bcrypt. Only the
// digest is ever persisted.
type BcryptPinHasher struct {
	cost int
}

func NewBcryptPinHasher(cost int) *BcryptPinHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &BcryptPinHasher{cost: cost}
}

func (h *BcryptPinHasher) Hash(rawPin string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(rawPin), h.cost)
	if err != nil {
		return "", fmt.Errorf("hash pin: %w", err)
	}
	return string(digest), nil
}

func (h *BcryptPinHasher) Verify(rawPin, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(rawPin)) == nil
}
