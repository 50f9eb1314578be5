package service

import (
	"context"

	"github.com/MrGreenNV/bank-rest-test/internal/domain/account"
	"github.com/google/uuid"
)

// TransactionManager runs a function inside a store transaction. Every
// read-modify-write of the engine goes through it so row locks taken inside
// fn are held until commit.
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// PinHasher hashes a raw pin and verifies a raw pin against a stored digest.
// The raw pin never leaves this boundary.
type PinHasher interface {
	Hash(rawPin string) (string, error)
	Verify(rawPin, digest string) bool
}

// AccountCache is an optional read cache in front of the store. Lookups on
// the cache are best effort; a miss or a cache failure falls through to the
// repository.
type AccountCache interface {
	GetByID(ctx context.Context, id uuid.UUID) (*account.Account, bool)
	GetByName(ctx context.Context, name string) (*account.Account, bool)
	Set(ctx context.Context, a *account.Account)
	Invalidate(ctx context.Context, id uuid.UUID, names ...string)
}
