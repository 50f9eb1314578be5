package testutil

import (
	"time"

	"github.com/MrGreenNV/bank-rest-test/internal/domain/account"
	"github.com/google/uuid"
)

// PinDigest is the digest scheme shared by MockPinHasher and the fixtures.
func PinDigest(rawPin string) string {
	return "digest:" + rawPin
}

// NewTestAccount builds an active account with the given name, pin and
// balance in cents. The sequence/number is assigned when the account is
// seeded into a MockAccountRepository.
func NewTestAccount(name, pin string, balanceCents int64) *account.Account {
	now := time.Now()
	return &account.Account{
		ID:        uuid.New(),
		Name:      name,
		Balance:   balanceCents,
		PinDigest: PinDigest(pin),
		Version:   0,
		Status:    account.StatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// NewDeactivatedAccount builds a soft-deleted account.
func NewDeactivatedAccount(name, pin string, balanceCents int64) *account.Account {
	a := NewTestAccount(name, pin, balanceCents)
	a.Status = account.StatusDeleted
	return a
}

func UUIDPtr(id uuid.UUID) *uuid.UUID {
	return &id
}
