package service

import (
	"github.com/google/uuid"
)

// Controllers convert their HTTP DTOs to these types.

// CreateAccountRequest holds the input for opening an account.
type CreateAccountRequest struct {
	Name string
	Pin  string
}

// RenameAccountRequest holds the input for renaming an account.
type RenameAccountRequest struct {
	NewName string
	Pin     string
}

// TransferRequest holds the input for moving funds from the authenticated
// account to the account holding DestinationName.
type TransferRequest struct {
	Pin             string
	DestinationName string
	Amount          int64 // in cents
}

// Ref identifies an account by id or by name. Both keys share identical
// not-found semantics.
type Ref struct {
	ID   *uuid.UUID
	Name string
}

func RefByID(id uuid.UUID) Ref {
	return Ref{ID: &id}
}

func RefByName(name string) Ref {
	return Ref{Name: name}
}

// ParseRef interprets s as an account id when it parses as a UUID, and as an
// account name otherwise.
func ParseRef(s string) Ref {
	if id, err := uuid.Parse(s); err == nil {
		return RefByID(id)
	}
	return RefByName(s)
}
