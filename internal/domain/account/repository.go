package account

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the interface for account persistence
type Repository interface {
	// Create inserts a new account. The store assigns the sequence used for
	// the display number; implementations must set Seq and Number on the
	// passed account before returning.
	Create(ctx context.Context, account *Account) error

	// GetByID retrieves an account by ID regardless of status
	GetByID(ctx context.Context, id uuid.UUID) (*Account, error)

	// GetByName retrieves an account by its name regardless of status
	GetByName(ctx context.Context, name string) (*Account, error)

	// ExistsActiveByName reports whether an active account holds the name
	ExistsActiveByName(ctx context.Context, name string) (bool, error)

	// List retrieves accounts, soft-deleted included. A non-positive limit
	// means no limit.
	List(ctx context.Context, limit, offset int) ([]*Account, error)

	// Update updates an existing account with optimistic locking
	Update(ctx context.Context, account *Account) error

	// Delete permanently removes an account record
	Delete(ctx context.Context, id uuid.UUID) error

	// Lock locks an account for update (SELECT FOR UPDATE)
	Lock(ctx context.Context, id uuid.UUID) (*Account, error)
}
