package account

import (
	"fmt"
	"time"

	"github.com/MrGreenNV/bank-rest-test/internal/domain/errors"
	"github.com/google/uuid"
)

type Status string

const (
	StatusActive  Status = "active"
	StatusDeleted Status = "deleted"
)

// branchCode is the fixed per-branch prefix of every display account number.
const branchCode = "4070281050000"

type Account struct {
	ID        uuid.UUID
	Seq       int64 // store-assigned sequence, source of the display number
	Number    string
	Name      string
	Balance   int64 // in cents
	PinDigest string
	Version   int // Optimistic locking
	Status    Status
	CreatedAt time.Time
	UpdatedAt time.Time
}

func NewAccount(name, pinDigest string) (*Account, error) {
	if name == "" {
		return nil, errors.NewValidationError("account_name", "cannot be empty")
	}
	if pinDigest == "" {
		return nil, errors.NewValidationError("pin", "digest cannot be empty")
	}

	now := time.Now()
	return &Account{
		ID:        uuid.New(),
		Name:      name,
		Balance:   0,
		PinDigest: pinDigest,
		Version:   0,
		Status:    StatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// NumberFor derives the display account number from a store-assigned sequence.
func NumberFor(seq int64) string {
	return fmt.Sprintf("%s%07d", branchCode, seq)
}

// AssignNumber fixes the display number once the store has assigned a sequence.
// The number is derived exactly once and never recomputed afterwards.
func (a *Account) AssignNumber(seq int64) {
	a.Seq = seq
	a.Number = NumberFor(seq)
}

func (a *Account) Credit(amount int64) error {
	if amount <= 0 {
		return errors.ErrInvalidAmount
	}

	a.Balance += amount
	a.Version++
	a.UpdatedAt = time.Now()
	return nil
}

func (a *Account) Debit(amount int64) error {
	if amount <= 0 {
		return errors.ErrInvalidAmount
	}
	if a.Balance < amount {
		return errors.ErrInsufficientFunds
	}

	a.Balance -= amount
	a.Version++
	a.UpdatedAt = time.Now()
	return nil
}

func (a *Account) Rename(newName string) error {
	if newName == "" {
		return errors.NewValidationError("new_account_name", "cannot be empty")
	}

	a.Name = newName
	a.Version++
	a.UpdatedAt = time.Now()
	return nil
}

// Deactivate soft-deletes the account. The record stays fetchable; there is
// no transition back to active.
func (a *Account) Deactivate() {
	a.Status = StatusDeleted
	a.Version++
	a.UpdatedAt = time.Now()
}
